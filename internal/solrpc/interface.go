package solrpc

import (
	"context"

	"github.com/shopspring/decimal"
)

type ITokenSender interface {
	// SendVPC transfers the VPC amount to the buyer's Solana address and
	// returns the transaction signature.
	SendVPC(ctx context.Context, destination string, amount decimal.Decimal) (string, error)
}
