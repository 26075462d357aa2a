package reconciler

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/voltpass/vpc-backend/internal/addresspool"
	"github.com/voltpass/vpc-backend/internal/model"
	"github.com/voltpass/vpc-backend/internal/monitoring"
	"github.com/voltpass/vpc-backend/internal/solrpc"
	"github.com/voltpass/vpc-backend/internal/store"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
	"github.com/voltpass/vpc-backend/internal/utils/webhook"
	"github.com/voltpass/vpc-backend/internal/verifier"
)

type Reconciler struct {
	db        *gorm.DB
	store     *store.Store
	pool      *addresspool.Pool
	verifier  verifier.IVerifier
	sender    solrpc.ITokenSender
	alert     *webhook.Client
	metrics   *monitoring.OrderMetrics
	appConfig *config.AppConfig
	logger    *logger.Logger
}

func New(
	db *gorm.DB,
	store *store.Store,
	pool *addresspool.Pool,
	verifier verifier.IVerifier,
	sender solrpc.ITokenSender,
	alert *webhook.Client,
	metrics *monitoring.OrderMetrics,
	appConfig *config.AppConfig,
	logger *logger.Logger,
) IReconciler {
	return &Reconciler{
		db:        db,
		store:     store,
		pool:      pool,
		verifier:  verifier,
		sender:    sender,
		alert:     alert,
		metrics:   metrics,
		appConfig: appConfig,
		logger:    logger,
	}
}

func (r *Reconciler) Reconcile(ctx context.Context) error {
	start := time.Now()
	defer func() {
		r.metrics.ObserveTickDuration(time.Since(start).Seconds())
		for _, poolKey := range r.pool.PoolKeys() {
			r.metrics.SetPoolAvailable(poolKey, r.pool.Available(poolKey))
		}
	}()

	// snapshot at tick start; handlers keep mutating the live registry
	pending, err := r.store.Order.FindByStatus(r.db, model.OrderStatusPending)
	if err != nil {
		r.logger.Error("[Reconcile][FindByStatus]", map[string]string{
			"error": err.Error(),
		})
		return err
	}

	changed := []*model.Order{}
	now := time.Now()

	for i := range pending {
		o := &pending[i]

		if o.Expired(now) && !r.appConfig.NoTimeout(o.Method) {
			// the snapshot may be stale: a status lookup can have expired
			// this order mid-tick and its slot may already belong to a newer
			// order. Only the caller that wins the transition releases.
			won, err := r.store.Order.MarkExpired(r.db, o.OrderID)
			if err != nil {
				r.logger.Error("[Reconcile][MarkExpired]", map[string]string{
					"order_id": o.OrderID,
					"error":    err.Error(),
				})
				continue
			}
			if !won {
				continue
			}

			r.pool.Release(o.PoolKey, o.DepositSlot)
			r.metrics.RecordOrderExpired(o.Method)
			r.logger.Info("order expired", map[string]string{
				"order_id": o.OrderID,
				"method":   o.Method,
			})
			continue
		}

		paid, txid, err := r.verifier.Verify(ctx, o)
		if err != nil {
			// transient: the order stays PENDING and is retried next tick
			r.logger.Error("[Reconcile][Verify]", map[string]string{
				"order_id": o.OrderID,
				"method":   o.Method,
				"error":    err.Error(),
			})
			continue
		}
		if !paid {
			continue
		}

		won, err := r.store.Order.MarkPaid(r.db, o.OrderID, txid)
		if err != nil {
			r.logger.Error("[Reconcile][MarkPaid]", map[string]string{
				"order_id": o.OrderID,
				"error":    err.Error(),
			})
			continue
		}
		if !won {
			continue
		}

		o.Status = model.OrderStatusPaid
		o.Txid = txid
		r.metrics.RecordOrderPaid(o.Method)
		r.logger.Info("payment confirmed", map[string]string{
			"order_id": o.OrderID,
			"txid":     txid,
		})

		// the deposit address has done its job whatever the payout outcome
		r.pool.Release(o.PoolKey, o.DepositSlot)

		r.disburse(ctx, o)
		changed = append(changed, o)
	}

	// PAID orders still owing tokens from earlier ticks
	owed, err := r.store.Order.FindUndisbursed(r.db, r.appConfig.Reconcile.MaxDisburseAttempts)
	if err != nil {
		r.logger.Error("[Reconcile][FindUndisbursed]", map[string]string{
			"error": err.Error(),
		})
	} else {
		for i := range owed {
			o := &owed[i]
			r.metrics.RecordDisbursementRetry()
			r.disburse(ctx, o)
			changed = append(changed, o)
		}
	}

	if len(changed) == 0 {
		return nil
	}

	return store.DoInTx(r.db, func(tx *gorm.DB) error {
		for _, o := range changed {
			if err := r.store.Order.Update(tx, o); err != nil {
				r.logger.Error("[Reconcile][Update]", map[string]string{
					"order_id": o.OrderID,
					"error":    err.Error(),
				})
				return err
			}
		}
		return nil
	})
}

// disburse attempts the VPC payout for a PAID order. Failure never reverts the
// order; the debt is tracked through DisbursedAt and retried until the attempt
// budget runs out, at which point the operator is alerted.
func (r *Reconciler) disburse(ctx context.Context, o *model.Order) {
	sig, err := r.sender.SendVPC(ctx, o.BuyerSolana, o.VPCAmount)
	o.DisburseAttempts++

	if err != nil {
		o.Notes = fmt.Sprintf("Failed to send VPC: %s", err)
		r.metrics.RecordDisbursementFailure()
		r.logger.Error("[disburse][SendVPC]", map[string]string{
			"order_id": o.OrderID,
			"attempt":  fmt.Sprintf("%d", o.DisburseAttempts),
			"error":    err.Error(),
		})

		if o.DisburseAttempts >= r.appConfig.Reconcile.MaxDisburseAttempts {
			r.metrics.RecordDisbursementGivenUp()
			r.alert.SendAlert(ctx, r.appConfig.Alert.WebhookURL, map[string]string{
				"alert":    "disbursement retries exhausted",
				"order_id": o.OrderID,
				"buyer":    o.BuyerSolana,
				"amount":   o.VPCAmount.String(),
			})
		}
		return
	}

	now := time.Now()
	o.DisbursedAt = &now
	o.Notes = fmt.Sprintf("VPC sent in TX: %s", sig)
	r.logger.Info("VPC disbursed", map[string]string{
		"order_id": o.OrderID,
		"tx":       sig,
	})
}
