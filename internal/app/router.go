package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"dispatch/internal/handler"
	"dispatch/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	RideHandler      *handler.RideHandler
	OrderHandler     *handler.OrderHandler
	DriverHandler    *handler.DriverHandler
	LogisticsHandler *handler.LogisticsHandler
	RedisClient      *redis.Client
	NewRelicApp      *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Ride (dispatch) routes.
		rides := v1.Group("/rides")
		{
			rides.POST("", deps.RideHandler.CreateRide)
			rides.GET("", deps.RideHandler.GetAll)
			rides.GET("/:id", deps.RideHandler.GetRide)
			rides.POST("/:id/orders", deps.RideHandler.AppendOrders)
			rides.DELETE("/:id/orders/:orderId", deps.RideHandler.RemoveOrder)
			rides.POST("/:id/recompute", deps.RideHandler.Recompute)
			rides.POST("/:id/status", deps.RideHandler.AdvanceStatus)
			rides.PUT("/:id/departure", deps.RideHandler.SetDeparture)
		}

		// Order routes (the slice ride planning depends on).
		orders := v1.Group("/orders")
		{
			orders.GET("/:id", deps.OrderHandler.GetOrder)
			orders.PUT("/:id/address", deps.OrderHandler.UpdateAddress)
		}

		// Driver routes.
		drivers := v1.Group("/drivers")
		{
			drivers.POST("/register", deps.DriverHandler.Register)
			drivers.GET("", deps.DriverHandler.GetAll)
		}

		// Settings routes.
		settings := v1.Group("/settings")
		{
			settings.GET("/logistics", deps.LogisticsHandler.Get)
			settings.PUT("/logistics", deps.LogisticsHandler.Update)
		}
	}

	return router
}
