package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	otelmetric "go.opentelemetry.io/otel/metric"

	accessrequestHTTP "github.com/yury-opolev/safeexchange-sub000/internal/accessrequest/http"
	identityHTTP "github.com/yury-opolev/safeexchange-sub000/internal/identity/http"
	identityUseCase "github.com/yury-opolev/safeexchange-sub000/internal/identity/usecase"
	"github.com/yury-opolev/safeexchange-sub000/internal/metrics"
	permissionHTTP "github.com/yury-opolev/safeexchange-sub000/internal/permission/http"
	secretHTTP "github.com/yury-opolev/safeexchange-sub000/internal/secret/http"
)

// RouterConfig holds the knobs the router needs from application configuration.
type RouterConfig struct {
	CORSEnabled             bool
	CORSAllowOrigins        string
	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int
	MetricsEnabled          bool
	MetricsNamespace        string
}

// RouterDeps carries the handlers and middleware collaborators for route registration.
type RouterDeps struct {
	Resolver             identityUseCase.ResolverUseCase
	SecretHandler        *secretHTTP.SecretHandler
	AccessHandler        *permissionHTTP.AccessHandler
	AccessRequestHandler *accessrequestHTTP.AccessRequestHandler
	MeterProvider        otelmetric.MeterProvider
	Logger               *slog.Logger
}

// NewRouter builds the Gin engine with all middleware and routes registered.
// Everything under /v1 requires an authenticated subject.
func NewRouter(cfg RouterConfig, deps RouterDeps) *gin.Engine {
	router := gin.New()

	router.Use(RecoveryMiddleware(deps.Logger))
	router.Use(RequestIDMiddleware())
	router.Use(CustomLoggerMiddleware(deps.Logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, deps.Logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.MetricsEnabled && deps.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(deps.MeterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	v1 := router.Group("/v1")
	v1.Use(identityHTTP.SubjectMiddleware(deps.Resolver, deps.Logger))
	if cfg.RateLimitEnabled {
		v1.Use(identityHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, deps.Logger))
	}

	secrets := v1.Group("/secrets")
	{
		secrets.POST("", deps.SecretHandler.CreateHandler)
		secrets.GET("/:name", deps.SecretHandler.GetHandler)
		secrets.PATCH("/:name", deps.SecretHandler.UpdateHandler)
		secrets.DELETE("/:name", deps.SecretHandler.DeleteHandler)

		secrets.POST("/:name/access", deps.AccessHandler.GrantHandler)
		secrets.DELETE("/:name/access", deps.AccessHandler.RevokeHandler)
		secrets.GET("/:name/access", deps.AccessHandler.ListHandler)

		secrets.POST("/:name/contents", deps.SecretHandler.AddContentHandler)
		secrets.GET("/:name/contents/:content", deps.SecretHandler.DownloadContentHandler)
		secrets.PATCH("/:name/contents/:content", deps.SecretHandler.UpdateContentInfoHandler)
		secrets.DELETE("/:name/contents/:content", deps.SecretHandler.DeleteContentHandler)
		secrets.POST("/:name/contents/:content/drop", deps.SecretHandler.DropContentHandler)
		secrets.POST("/:name/contents/:content/chunks", deps.SecretHandler.UploadChunkHandler)
		secrets.GET("/:name/contents/:content/chunks/:chunk", deps.SecretHandler.DownloadChunkHandler)
	}

	accessRequests := v1.Group("/access-requests")
	{
		accessRequests.POST("", deps.AccessRequestHandler.CreateHandler)
		accessRequests.GET("", deps.AccessRequestHandler.ListHandler)
		accessRequests.POST("/:id/approve", deps.AccessRequestHandler.ApproveHandler)
		accessRequests.POST("/:id/reject", deps.AccessRequestHandler.RejectHandler)
		accessRequests.DELETE("/:id", deps.AccessRequestHandler.CancelHandler)
	}

	return router
}
