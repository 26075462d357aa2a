package verifier

import (
	"context"

	"github.com/voltpass/vpc-backend/internal/model"
)

type IVerifier interface {
	// Verify checks whether the order's deposit address has received the
	// required payment. A transient error leaves the order untouched; it is
	// simply retried on the next reconciliation tick.
	Verify(ctx context.Context, order *model.Order) (paid bool, txid string, err error)
}
