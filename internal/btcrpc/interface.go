package btcrpc

import (
	"context"

	"github.com/shopspring/decimal"
)

type IBtcRpc interface {
	// GetIncomingPayment looks for a confirmed payment of at least minAmount
	// BTC to the deposit address. Returns the funding txid when found.
	GetIncomingPayment(ctx context.Context, address string, minAmount decimal.Decimal) (txid string, paid bool, err error)
}
