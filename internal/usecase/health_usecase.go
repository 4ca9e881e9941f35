package usecase

import (
	"context"
	"time"
)

// Pinger is any dependency that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthUsecase interface {
	Check(ctx context.Context) (map[string]string, bool)
}

type healthUsecase struct {
	deps map[string]Pinger
}

func NewHealthUsecase(deps map[string]Pinger) HealthUsecase {
	return &healthUsecase{deps: deps}
}

// Check pings each dependency with a short timeout. ok is false when any ping fails.
func (u *healthUsecase) Check(ctx context.Context) (map[string]string, bool) {
	result := map[string]string{"status": "ok"}
	ok := true
	for name, dep := range u.deps {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err := dep.Ping(pingCtx)
		cancel()
		if err != nil {
			result[name] = "down"
			ok = false
			continue
		}
		result[name] = "up"
	}
	if !ok {
		result["status"] = "degraded"
	}
	return result, ok
}
