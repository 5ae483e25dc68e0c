package handler

import (
	"net/http"
	"time"

	"sgo/internal/logger"
	"sgo/internal/metrics"
	"sgo/internal/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by every handler guarded by authentication.
type RouteRegistrar interface {
	RegisterRoutes(router *gin.RouterGroup)
}

type RouterOptions struct {
	Auth           *middleware.Auth
	LoginLimiter   gin.HandlerFunc
	Metrics        *metrics.Metrics
	AllowedOrigins []string
	Users          *UserHandler
	Handlers       []RouteRegistrar
}

// NewRouter builds the engine with the global middleware chain, the public
// login routes and every protected handler.
func NewRouter(opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), logger.GinMiddleware())
	if opts.Metrics != nil {
		router.Use(opts.Metrics.GinMiddleware())
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = opts.AllowedOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", logger.RequestIDHeader}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.ExposeHeaders = []string{"Content-Disposition", logger.RequestIDHeader}
	corsConfig.MaxAge = 12 * time.Hour
	if len(corsConfig.AllowOrigins) > 0 {
		router.Use(cors.New(corsConfig))
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "OK"})
	})

	limiter := opts.LoginLimiter
	if limiter == nil {
		limiter = func(c *gin.Context) { c.Next() }
	}
	public := router.Group("")
	opts.Users.RegisterPublicRoutes(public, limiter)

	protected := router.Group("", opts.Auth.RequireRole())
	opts.Users.RegisterRoutes(protected)
	for _, h := range opts.Handlers {
		h.RegisterRoutes(protected)
	}
	return router
}
