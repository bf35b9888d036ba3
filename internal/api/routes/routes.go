package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/swiftride/dispatch-backend/internal/api/handlers"
	"github.com/swiftride/dispatch-backend/internal/api/middleware"
	"github.com/swiftride/dispatch-backend/pkg/auth"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *gin.Engine, h *handlers.Handlers, tokens *auth.Manager, allowedOrigins []string, nrApp *newrelic.Application) {
	if nrApp != nil {
		r.Use(nrgin.Middleware(nrApp))
	}

	corsConfig := cors.DefaultConfig()
	if len(allowedOrigins) == 1 && allowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = allowedOrigins
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	adminOnly := middleware.RequireRole(tokens, auth.RoleAdmin)

	v1 := r.Group("/v1")
	{
		// Driver live channel
		v1.GET("/ws/driver", h.HandleDriverWS)

		rides := v1.Group("/rides")
		{
			rides.POST("", h.CreateRide)
			rides.GET("", adminOnly, h.ListRides)
			rides.GET("/:id", h.GetRide)
			rides.POST("/:id/assign", adminOnly, h.AssignDriver)
			rides.POST("/:id/start", h.StartRide)
			rides.POST("/:id/complete", h.CompleteRide)
			rides.POST("/:id/cancel", h.CancelRide)
		}

		drivers := v1.Group("/drivers")
		{
			drivers.POST("", adminOnly, h.CreateDriver)
			drivers.GET("", adminOnly, h.ListDrivers)
			drivers.GET("/available", h.ListAvailableDrivers)
			drivers.POST("/:id/approval", adminOnly, h.ApproveDriver)
			drivers.POST("/:id/status", h.UpdateDriverStatus)
			drivers.GET("/:id/rides", h.ListDriverRides)
		}

		customers := v1.Group("/customers")
		{
			customers.POST("", adminOnly, h.CreateCustomer)
			customers.GET("/:id", h.GetCustomer)
			customers.GET("/:id/rides", h.ListCustomerRides)
		}
	}
}
