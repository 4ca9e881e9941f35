package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type EventType string

const (
	EventTokenRejected       EventType = "token_rejected"
	EventHRNotLinked         EventType = "hr_not_linked"
	EventHRNotApproved       EventType = "hr_not_approved"
	EventAdminDenied         EventType = "admin_denied"
	EventRateLimitTriggered  EventType = "rate_limit_triggered"
	EventUploadRejected      EventType = "upload_rejected"
	EventHRStatusChanged     EventType = "hr_status_changed"
	EventSubscriptionUpdated EventType = "subscription_updated"
	EventJobDeleted          EventType = "job_deleted"
)

// Severity is derived from the event type, never supplied by callers.
type Severity string

const (
	SeverityINFO Severity = "INFO"
	SeverityWARN Severity = "WARN"
	SeverityHIGH Severity = "HIGH"
)

var eventSeverity = map[EventType]Severity{
	EventHRStatusChanged:     SeverityINFO,
	EventSubscriptionUpdated: SeverityINFO,
	EventJobDeleted:          SeverityINFO,

	EventTokenRejected:      SeverityWARN,
	EventHRNotLinked:        SeverityWARN,
	EventHRNotApproved:      SeverityWARN,
	EventRateLimitTriggered: SeverityWARN,
	EventUploadRejected:     SeverityWARN,

	EventAdminDenied: SeverityHIGH,
}

// SeverityOf defaults to WARN for unmapped events.
func SeverityOf(event EventType) Severity {
	if s, ok := eventSeverity[event]; ok {
		return s
	}
	return SeverityWARN
}

// AuditEvent is one security-relevant occurrence.
type AuditEvent struct {
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
	Event     EventType         `bson:"event" json:"event"`
	Severity  Severity          `bson:"severity" json:"severity"`
	Subject   string            `bson:"subject,omitempty" json:"subject,omitempty"`
	IP        string            `bson:"ip,omitempty" json:"ip,omitempty"`
	RequestID string            `bson:"request_id,omitempty" json:"request_id,omitempty"`
	Path      string            `bson:"path,omitempty" json:"path,omitempty"`
	Details   map[string]string `bson:"details,omitempty" json:"details,omitempty"`
}

// AuditSink persists events. It is called off the request goroutine.
type AuditSink interface {
	InsertEvent(ctx context.Context, event AuditEvent) error
}

// AuditLogger writes security events through zap and optionally to a sink.
type AuditLogger struct {
	zl   *zap.Logger
	sink AuditSink
}

// NewAuditLogger builds a production zap logger writing to stdout.
func NewAuditLogger(service string) *AuditLogger {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.MessageKey = "message"
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	zl, err := cfg.Build(zap.AddCaller())
	if err != nil {
		zl, _ = zap.NewProduction()
	}
	return &AuditLogger{zl: zl.With(zap.String("service", service), zap.String("channel", "security"))}
}

// NewAuditLoggerWith wraps an existing zap logger; tests pass zaptest or observer loggers.
func NewAuditLoggerWith(zl *zap.Logger) *AuditLogger {
	return &AuditLogger{zl: zl}
}

func (a *AuditLogger) SetSink(sink AuditSink) {
	a.sink = sink
}

// Record logs the event. A nil receiver is a no-op so callers need not guard.
func (a *AuditLogger) Record(ctx context.Context, event AuditEvent) {
	if a == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Severity = SeverityOf(event.Event)

	fields := []zap.Field{
		zap.String("event", string(event.Event)),
		zap.String("severity", string(event.Severity)),
	}
	if event.Subject != "" {
		fields = append(fields, zap.String("subject", event.Subject))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if event.Path != "" {
		fields = append(fields, zap.String("path", event.Path))
	}
	if len(event.Details) > 0 {
		fields = append(fields, zap.Any("details", event.Details))
	}

	a.zl.Log(levelFor(event.Severity), string(event.Event), fields...)

	if a.sink != nil {
		go func(e AuditEvent) {
			// request context may already be cancelled
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := a.sink.InsertEvent(ctx, e); err != nil {
				a.zl.Error("failed to persist security event", zap.Error(err))
			}
		}(event)
	}
}

func (a *AuditLogger) Sync() error {
	if a == nil {
		return nil
	}
	return a.zl.Sync()
}

func levelFor(s Severity) zapcore.Level {
	switch s {
	case SeverityINFO:
		return zapcore.InfoLevel
	case SeverityHIGH:
		return zapcore.ErrorLevel
	default:
		return zapcore.WarnLevel
	}
}

// MaskEmail turns "jane@example.com" into "j***@example.com".
func MaskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 0 {
		if len(email) < 3 {
			return "***"
		}
		return HashValue(email)
	}
	return email[:1] + "***" + email[at:]
}

// HashValue returns the first 16 hex chars of the SHA-256 of value.
func HashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:8])
}
