package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/voltpass/vpc-backend/internal/addresspool"
	"github.com/voltpass/vpc-backend/internal/btcrpc"
	"github.com/voltpass/vpc-backend/internal/ethrpc"
	"github.com/voltpass/vpc-backend/internal/model"
	"github.com/voltpass/vpc-backend/internal/monitoring"
	"github.com/voltpass/vpc-backend/internal/oracle"
	"github.com/voltpass/vpc-backend/internal/oracle/coingecko"
	"github.com/voltpass/vpc-backend/internal/reconciler"
	"github.com/voltpass/vpc-backend/internal/solrpc"
	"github.com/voltpass/vpc-backend/internal/store"
	"github.com/voltpass/vpc-backend/internal/store/sqlite"
	transporthttp "github.com/voltpass/vpc-backend/internal/transport/http"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
	"github.com/voltpass/vpc-backend/internal/utils/webhook"
	"github.com/voltpass/vpc-backend/internal/verifier"
)

func Init() {
	appConfig := config.New()
	logger := logger.New(appConfig.Environment)

	db := sqlite.New(appConfig, logger)
	s := store.New()

	pool := addresspool.New(appConfig, logger)
	reservePendingSlots(db, s, pool, logger)

	coingeckoClient := coingecko.New(appConfig, logger)
	oracleSvc := oracle.New(coingeckoClient, appConfig, logger)

	btcRpc := btcrpc.New(appConfig, logger)

	var ethRpc ethrpc.IEthRpc
	if rpc, err := ethrpc.New(appConfig, logger); err != nil {
		logger.Error("[Init][ethrpc]", map[string]string{
			"error": err.Error(),
		})
	} else {
		ethRpc = rpc
	}

	sender, err := solrpc.New(appConfig, logger)
	if err != nil {
		logger.Error("[Init][solrpc]", map[string]string{
			"error": err.Error(),
		})
		sender = solrpc.NewDisabled()
	}

	alert := webhook.New(logger)

	metricsRegistry := prometheus.NewRegistry()
	orderMetrics := monitoring.NewOrderMetrics()
	orderMetrics.MustRegister(metricsRegistry)

	paymentVerifier := verifier.New(btcRpc, ethRpc, logger)
	rec := reconciler.New(db, s, pool, paymentVerifier, sender, alert, orderMetrics, appConfig, logger)

	tickTimeout := time.Duration(appConfig.Reconcile.TickTimeoutSeconds) * time.Second
	c := cron.New()
	c.AddFunc(fmt.Sprintf("@every %ds", appConfig.Reconcile.IntervalSeconds), func() {
		ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
		defer cancel()

		if err := rec.Reconcile(ctx); err != nil {
			logger.Error("[Init][Reconcile]", map[string]string{
				"error": err.Error(),
			})
		}
	})
	c.Start()

	engine := transporthttp.NewHttpServer(appConfig, logger, db, s, pool, oracleSvc, orderMetrics, metricsRegistry)

	httpServer := &http.Server{
		Addr:    ":" + appConfig.ApiServer.Port,
		Handler: engine,
	}

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("[Init][ListenAndServe]", map[string]string{
				"error": err.Error(),
			})
		}
	}()
	logger.Info("server started", map[string]string{
		"port": appConfig.ApiServer.Port,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	// let the in-flight reconcile tick finish before closing the registry
	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("[Init][Shutdown]", map[string]string{
			"error": err.Error(),
		})
	}
}

// reservePendingSlots rebuilds pool state from the persisted registry so a
// restart never hands out an address a live order is still watching.
func reservePendingSlots(db *gorm.DB, s *store.Store, pool *addresspool.Pool, logger *logger.Logger) {
	pending, err := s.Order.FindByStatus(db, model.OrderStatusPending)
	if err != nil {
		logger.Fatal("[reservePendingSlots][FindByStatus]", map[string]string{
			"error": err.Error(),
		})
		return
	}

	for _, o := range pending {
		pool.Reserve(o.PoolKey, o.DepositSlot)
	}
}
