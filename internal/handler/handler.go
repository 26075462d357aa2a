package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"

	"github.com/voltpass/vpc-backend/internal/addresspool"
	"github.com/voltpass/vpc-backend/internal/handler/health"
	"github.com/voltpass/vpc-backend/internal/handler/metrics"
	"github.com/voltpass/vpc-backend/internal/handler/order"
	"github.com/voltpass/vpc-backend/internal/monitoring"
	oracleService "github.com/voltpass/vpc-backend/internal/oracle"
	"github.com/voltpass/vpc-backend/internal/store"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

type Handler struct {
	OrderHandler   order.IHandler
	HealthHandler  health.IHealthHandler
	MetricsHandler *metrics.MetricsHandler
}

func New(appConfig *config.AppConfig, logger *logger.Logger,
	db *gorm.DB,
	s *store.Store,
	pool *addresspool.Pool,
	oracleSvc oracleService.IOracle,
	orderMetrics *monitoring.OrderMetrics,
	metricsRegistry *prometheus.Registry) *Handler {
	return &Handler{
		OrderHandler:   order.New(db, s, pool, oracleSvc, orderMetrics, appConfig, logger),
		HealthHandler:  health.New(appConfig, logger, db, pool),
		MetricsHandler: metrics.NewMetricsHandler(metricsRegistry),
	}
}
