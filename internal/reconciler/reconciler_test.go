package reconciler

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/voltpass/vpc-backend/internal/addresspool"
	"github.com/voltpass/vpc-backend/internal/consts"
	"github.com/voltpass/vpc-backend/internal/model"
	"github.com/voltpass/vpc-backend/internal/monitoring"
	"github.com/voltpass/vpc-backend/internal/store"
	"github.com/voltpass/vpc-backend/internal/types/environments"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
	"github.com/voltpass/vpc-backend/internal/utils/webhook"
)

type fakeVerifier struct {
	paid bool
	txid string
	err  error

	// onVerify, when set, runs before the result is returned. Used to
	// interleave registry activity with an in-flight tick.
	onVerify func(o *model.Order)
}

func (f *fakeVerifier) Verify(_ context.Context, o *model.Order) (bool, string, error) {
	if f.onVerify != nil {
		f.onVerify(o)
	}
	return f.paid, f.txid, f.err
}

type fakeSender struct {
	sig   string
	err   error
	calls int
}

func (f *fakeSender) SendVPC(_ context.Context, _ string, _ decimal.Decimal) (string, error) {
	f.calls++
	return f.sig, f.err
}

type fixture struct {
	db     *gorm.DB
	store  *store.Store
	pool   *addresspool.Pool
	config *config.AppConfig
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWithAddresses(t, map[string][]string{
		consts.PoolKeySol: {"SolDepositAddr1"},
		consts.PoolKeyBTC: {"bc1qdepositaddr1"},
	})
}

func newFixtureWithAddresses(t *testing.T, addresses map[string][]string) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "orders.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.Order{}))

	cfg := &config.AppConfig{
		Order: config.OrderConfig{
			TTLMinutes:       30,
			NoTimeoutMethods: []string{consts.MethodBitcoin},
		},
		Reconcile: config.ReconcileConfig{
			IntervalSeconds:     10,
			MaxDisburseAttempts: 3,
		},
		DepositAddresses: addresses,
	}

	return &fixture{
		db:     db,
		store:  store.New(),
		pool:   addresspool.New(cfg, logger.New(environments.Test)),
		config: cfg,
	}
}

func (f *fixture) newReconciler(t *testing.T, v *fakeVerifier, s *fakeSender) IReconciler {
	t.Helper()

	log := logger.New(environments.Test)
	return New(f.db, f.store, f.pool, v, s, webhook.New(log),
		monitoring.NewOrderMetrics(), f.config, log)
}

// seedPending checks a slot out of the pool and persists a matching PENDING
// order, the way intake does.
func (f *fixture) seedPending(t *testing.T, orderID, method string, expiresAt time.Time) *model.Order {
	t.Helper()

	poolKey := consts.MethodPoolKeys[method]
	slot, err := f.pool.Checkout(poolKey)
	require.NoError(t, err)

	o := &model.Order{
		OrderID:        orderID,
		Status:         model.OrderStatusPending,
		ExpiresAt:      expiresAt,
		USDAmount:      decimal.NewFromInt(50),
		Method:         method,
		PoolKey:        poolKey,
		DepositAddress: slot.Address,
		DepositSlot:    slot.SlotID,
		BuyerSolana:    "Sol1111111111111111111111",
		VPCAmount:      decimal.NewFromInt(500),
		PayAmount:      decimal.NewFromInt(50),
		PaySymbol:      "USDT_SOL",
	}
	_, err = f.store.Order.Create(f.db, o)
	require.NoError(t, err)
	return o
}

func TestReconcileExpiresStaleOrder(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "stale", consts.MethodUSDTSol, time.Now().Add(-time.Minute))

	r := f.newReconciler(t, &fakeVerifier{}, &fakeSender{})
	require.NoError(t, r.Reconcile(context.Background()))

	got, err := f.store.Order.GetByOrderID(f.db, "stale")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusExpired, got.Status)
	assert.Empty(t, got.Txid)
	assert.Equal(t, 1, f.pool.Available(consts.PoolKeySol), "slot must return to the pool")
}

func TestReconcileKeepsLiveOrderPending(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "live", consts.MethodUSDTSol, time.Now().Add(10*time.Minute))

	r := f.newReconciler(t, &fakeVerifier{}, &fakeSender{})
	require.NoError(t, r.Reconcile(context.Background()))

	got, err := f.store.Order.GetByOrderID(f.db, "live")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.Equal(t, 0, f.pool.Available(consts.PoolKeySol))
}

func TestReconcileExemptsNoTimeoutMethod(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "btc-stale", consts.MethodBitcoin, time.Now().Add(-time.Hour))

	r := f.newReconciler(t, &fakeVerifier{}, &fakeSender{})
	require.NoError(t, r.Reconcile(context.Background()))

	got, err := f.store.Order.GetByOrderID(f.db, "btc-stale")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status, "bitcoin orders never hard-expire")
}

func TestReconcilePaidOrderDisbursed(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "paid", consts.MethodUSDTSol, time.Now().Add(10*time.Minute))

	sender := &fakeSender{sig: "solana-sig"}
	r := f.newReconciler(t, &fakeVerifier{paid: true, txid: "funding-tx"}, sender)
	require.NoError(t, r.Reconcile(context.Background()))

	got, err := f.store.Order.GetByOrderID(f.db, "paid")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, got.Status)
	assert.Equal(t, "funding-tx", got.Txid)
	assert.Contains(t, got.Notes, "solana-sig")
	assert.NotNil(t, got.DisbursedAt)
	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, 1, f.pool.Available(consts.PoolKeySol))
}

func TestReconcileDisbursementFailureKeepsOrderPaid(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "owed", consts.MethodUSDTSol, time.Now().Add(10*time.Minute))

	sender := &fakeSender{err: errors.New("rpc transport error")}
	r := f.newReconciler(t, &fakeVerifier{paid: true, txid: "funding-tx"}, sender)
	require.NoError(t, r.Reconcile(context.Background()))

	got, err := f.store.Order.GetByOrderID(f.db, "owed")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, got.Status, "payment received, payout is a separate concern")
	assert.Equal(t, "funding-tx", got.Txid)
	assert.Contains(t, got.Notes, "Failed to send VPC")
	assert.Nil(t, got.DisbursedAt)
	assert.Equal(t, 1, got.DisburseAttempts)
	assert.Equal(t, 1, f.pool.Available(consts.PoolKeySol), "slot released regardless of payout outcome")
}

func TestReconcileVerifierErrorLeavesOrderUntouched(t *testing.T) {
	f := newFixture(t)
	f.seedPending(t, "pending", consts.MethodUSDTSol, time.Now().Add(10*time.Minute))

	sender := &fakeSender{}
	r := f.newReconciler(t, &fakeVerifier{err: errors.New("verifier timeout")}, sender)
	require.NoError(t, r.Reconcile(context.Background()))

	got, err := f.store.Order.GetByOrderID(f.db, "pending")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)
	assert.Empty(t, got.Txid)
	assert.Equal(t, 0, sender.calls)
}

func TestReconcileRetriesOwedDisbursement(t *testing.T) {
	f := newFixture(t)
	o := f.seedPending(t, "owed", consts.MethodUSDTSol, time.Now().Add(10*time.Minute))

	// simulate an earlier tick: paid but the payout failed once
	o.Status = model.OrderStatusPaid
	o.Txid = "funding-tx"
	o.DisburseAttempts = 1
	o.Notes = "Failed to send VPC: rpc transport error"
	require.NoError(t, f.store.Order.Update(f.db, o))

	sender := &fakeSender{sig: "retry-sig"}
	r := f.newReconciler(t, &fakeVerifier{}, sender)
	require.NoError(t, r.Reconcile(context.Background()))

	got, err := f.store.Order.GetByOrderID(f.db, "owed")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, got.Status)
	assert.NotNil(t, got.DisbursedAt)
	assert.Contains(t, got.Notes, "retry-sig")
	assert.Equal(t, 2, got.DisburseAttempts)
	assert.Equal(t, 1, sender.calls)
}

func TestReconcileStopsRetryingAfterBudget(t *testing.T) {
	f := newFixture(t)
	o := f.seedPending(t, "exhausted", consts.MethodUSDTSol, time.Now().Add(10*time.Minute))

	o.Status = model.OrderStatusPaid
	o.Txid = "funding-tx"
	o.DisburseAttempts = 3 // at MaxDisburseAttempts
	require.NoError(t, f.store.Order.Update(f.db, o))

	sender := &fakeSender{sig: "should-not-happen"}
	r := f.newReconciler(t, &fakeVerifier{}, sender)
	require.NoError(t, r.Reconcile(context.Background()))

	assert.Equal(t, 0, sender.calls)
}

func TestReconcileStaleSnapshotDoesNotReleaseReassignedSlot(t *testing.T) {
	f := newFixtureWithAddresses(t, map[string][]string{
		consts.PoolKeySol: {"SolAddrA", "SolAddrB"},
	})

	f.seedPending(t, "watched", consts.MethodUSDTSol, time.Now().Add(10*time.Minute))
	stale := f.seedPending(t, "stale", consts.MethodUSDTSol, time.Now().Add(-time.Minute))

	// while the tick is busy verifying the first order, a status lookup
	// expires the stale one, frees its slot, and a new purchase takes it
	v := &fakeVerifier{}
	v.onVerify = func(_ *model.Order) {
		v.onVerify = nil

		won, err := f.store.Order.MarkExpired(f.db, stale.OrderID)
		require.NoError(t, err)
		require.True(t, won)
		f.pool.Release(stale.PoolKey, stale.DepositSlot)

		slot, err := f.pool.Checkout(consts.PoolKeySol)
		require.NoError(t, err)
		require.Equal(t, stale.DepositSlot, slot.SlotID)

		fresh := &model.Order{
			OrderID:        "fresh",
			Status:         model.OrderStatusPending,
			ExpiresAt:      time.Now().Add(30 * time.Minute),
			USDAmount:      decimal.NewFromInt(50),
			Method:         consts.MethodUSDTSol,
			PoolKey:        consts.PoolKeySol,
			DepositAddress: slot.Address,
			DepositSlot:    slot.SlotID,
			BuyerSolana:    "Sol2222222222222222222222",
			VPCAmount:      decimal.NewFromInt(500),
			PayAmount:      decimal.NewFromInt(50),
			PaySymbol:      "USDT_SOL",
		}
		_, err = f.store.Order.Create(f.db, fresh)
		require.NoError(t, err)
	}

	r := f.newReconciler(t, v, &fakeSender{})
	require.NoError(t, r.Reconcile(context.Background()))

	// the tick's stale view of the expired order must not free the slot the
	// fresh order now owns
	assert.Equal(t, 0, f.pool.Available(consts.PoolKeySol))
	_, err := f.pool.Checkout(consts.PoolKeySol)
	assert.ErrorIs(t, err, addresspool.ErrNoCapacity)

	got, err := f.store.Order.GetByOrderID(f.db, "fresh")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPending, got.Status)
}
