package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"trujobs-api/internal/delivery/http/middleware"
	"trujobs-api/internal/delivery/http/response"
	"trujobs-api/internal/domain"
	"trujobs-api/internal/usecase"
	"trujobs-api/pkg/auth"
	"trujobs-api/pkg/metrics"
	"trujobs-api/pkg/security"
)

// Guards are the per-route middleware chains built once in NewRouter.
type Guards struct {
	Authenticated gin.HandlerFunc
	OptionalHR    gin.HandlerFunc
	ApprovedHR    gin.HandlersChain
	Admin         gin.HandlerFunc
	UploadLimit   gin.HandlerFunc
}

type RouterDeps struct {
	HRUC     domain.HRUsecase
	JobUC    domain.JobUsecase
	AdminUC  domain.AdminUsecase
	UploadUC domain.UploadUsecase
	HealthUC usecase.HealthUsecase

	Verifier    auth.Verifier
	Admins      domain.AdminAllowList
	RateLimiter *middleware.RateLimiter
	Metrics     *metrics.Metrics
	Audit       *security.AuditLogger

	GlobalLimit middleware.RateLimitConfig
	UploadLimit middleware.RateLimitConfig

	CORSOrigins    []string
	Release        bool
	UploadMaxBytes int64
}

func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()

	// CORS must be first so preflights are answered before anything else runs
	r.Use(middleware.CORS(deps.CORSOrigins, deps.Release))
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.ErrorHandler())
	if deps.RateLimiter != nil {
		r.Use(deps.RateLimiter.Limit(deps.GlobalLimit))
	}

	if deps.UploadMaxBytes > 0 {
		r.MaxMultipartMemory = deps.UploadMaxBytes
	}

	guards := Guards{
		Authenticated: middleware.Authenticate(deps.Verifier, deps.Audit),
		OptionalHR:    middleware.AttachHR(deps.HRUC, false, deps.Audit),
		ApprovedHR: gin.HandlersChain{
			middleware.Authenticate(deps.Verifier, deps.Audit),
			middleware.AttachHR(deps.HRUC, true, deps.Audit),
			middleware.RequireApprovedHR(deps.Audit),
		},
		Admin:       middleware.RequireAdmin(deps.Admins, deps.Audit),
		UploadLimit: passThrough,
	}
	if deps.RateLimiter != nil {
		guards.UploadLimit = deps.RateLimiter.Limit(deps.UploadLimit)
	}

	v1 := r.Group("/v1")
	health := &HealthHandler{healthUC: deps.HealthUC}
	v1.GET("/health", health.Health)
	if deps.Metrics != nil {
		v1.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	v1.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	NewHRHandler(r, guards, deps.HRUC, deps.JobUC)
	NewJobHandler(r, guards, deps.JobUC)
	NewAdminHandler(r, guards, deps.AdminUC)
	NewUploadHandler(r, guards, deps.UploadUC, deps.UploadMaxBytes)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, "Route not found", nil)
	})

	return r
}

func passThrough(c *gin.Context) { c.Next() }
