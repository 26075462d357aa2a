package health

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/voltpass/vpc-backend/internal/addresspool"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

// BasicHealthResponse is the payload of the /healthz endpoint.
type BasicHealthResponse struct {
	Message string         `json:"message"`
	Pools   map[string]int `json:"pools"`
}

// DatabaseHealthResponse reports order store connectivity.
type DatabaseHealthResponse struct {
	Status     string `json:"status"`
	DurationMs int64  `json:"duration_ms"`
}

type HealthHandler struct {
	config *config.AppConfig
	logger *logger.Logger
	db     *gorm.DB
	pool   *addresspool.Pool
}

// New creates a new health handler instance
func New(config *config.AppConfig, logger *logger.Logger, db *gorm.DB, pool *addresspool.Pool) IHealthHandler {
	return &HealthHandler{
		config: config,
		logger: logger,
		db:     db,
		pool:   pool,
	}
}

// Basic handles the basic health check endpoint (/healthz)
// @Summary Basic health check
// @Description Returns availability status and free deposit slots per currency
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} BasicHealthResponse
// @Router /healthz [get]
func (h *HealthHandler) Basic(c *gin.Context) {
	pools := make(map[string]int)
	for _, key := range h.pool.PoolKeys() {
		pools[key] = h.pool.Available(key)
	}

	c.JSON(http.StatusOK, BasicHealthResponse{
		Message: "ok",
		Pools:   pools,
	})
}

// Database handles the database health check endpoint
// @Summary Database health check
// @Description Validates order store connectivity
// @Tags health
// @Accept json
// @Produce json
// @Success 200 {object} DatabaseHealthResponse
// @Failure 503 {object} DatabaseHealthResponse
// @Router /api/v1/health/db [get]
func (h *HealthHandler) Database(c *gin.Context) {
	start := time.Now()

	ctx := context.Background()
	if c.Request != nil {
		ctx = c.Request.Context()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		h.logger.Error("[Database][Ping]", map[string]string{
			"error": err.Error(),
		})
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, DatabaseHealthResponse{
		Status:     status,
		DurationMs: time.Since(start).Milliseconds(),
	})
}
