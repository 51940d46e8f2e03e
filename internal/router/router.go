package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/opsboard/backend/internal/api"
	"github.com/opsboard/backend/internal/middleware"
)

// Handlers collects the API handlers the router mounts.
type Handlers struct {
	Auth     *api.AuthHandler
	Recipe   *api.RecipeHandler
	Supply   *api.SupplyHandler
	Fleet    *api.FleetHandler
	Vendor   *api.VendorHandler
	Activity *api.ActivityHandler
	Insight  *api.InsightHandler
	Report   *api.ReportHandler
	Upload   *api.UploadHandler
}

// Options carries the cross-cutting pieces the router wires around handlers.
type Options struct {
	TokenValidator   middleware.TokenValidator
	ActivityRecorder middleware.ActivityRecorder
	RateLimiter      *middleware.RateLimiter
	AllowedOrigins   []string
}

// SetupRouter configures the application routes
func SetupRouter(h Handlers, opts Options) *gin.Engine {
	router := gin.Default()

	router.Use(middleware.CORS(opts.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Auth handler mounts its own public and protected routes.
	h.Auth.RegisterRoutes(v1)

	protected := v1.Group("")
	protected.Use(middleware.AuthMiddleware(opts.TokenValidator))
	if opts.ActivityRecorder != nil {
		protected.Use(middleware.ActivityLog(opts.ActivityRecorder))
	}
	if opts.RateLimiter != nil {
		protected.Use(limitMutations(opts.RateLimiter))
	}

	h.Recipe.RegisterRoutes(protected)
	h.Supply.RegisterRoutes(protected)
	h.Fleet.RegisterRoutes(protected)
	h.Vendor.RegisterRoutes(protected)
	h.Activity.RegisterRoutes(protected)
	h.Insight.RegisterRoutes(protected)
	h.Report.RegisterRoutes(protected)
	if h.Upload != nil {
		h.Upload.RegisterRoutes(protected)
	}

	return router
}

// limitMutations applies the rate limiter to mutating requests only.
func limitMutations(limiter *middleware.RateLimiter) gin.HandlerFunc {
	limit := limiter.Middleware()
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			limit(c)
		default:
			c.Next()
		}
	}
}
