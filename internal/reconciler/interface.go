package reconciler

import "context"

type IReconciler interface {
	// Reconcile runs one tick: drives every PENDING order toward a terminal
	// state and retries owed disbursements. All changed orders are persisted
	// in one batch at the end of the tick.
	Reconcile(ctx context.Context) error
}
