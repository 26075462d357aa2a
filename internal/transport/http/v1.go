package http

import (
	"github.com/gin-gonic/gin"

	"github.com/voltpass/vpc-backend/internal/handler"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

func loadV1Routes(r *gin.Engine, h *handler.Handler, appConfig *config.AppConfig, logger *logger.Logger) {
	v1 := r.Group("/api/v1")

	orders := v1.Group("/orders")
	{
		orders.POST("", h.OrderHandler.CreateOrder)
		orders.GET("", h.OrderHandler.ListOrders)
		orders.GET("/:id", h.OrderHandler.GetOrder)
	}

	health := v1.Group("/health")
	{
		health.GET("/db", h.HealthHandler.Database)
	}

	// health check
	r.GET("/healthz", h.HealthHandler.Basic)

	// prometheus scrape endpoint
	r.GET("/metrics", h.MetricsHandler.Handler())
}
