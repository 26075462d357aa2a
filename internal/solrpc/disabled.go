package solrpc

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// disabledSender stands in when no wallet key is configured. Every send fails,
// which keeps orders PAID with the failure noted until an operator steps in.
type disabledSender struct{}

func NewDisabled() ITokenSender {
	return &disabledSender{}
}

func (d *disabledSender) SendVPC(_ context.Context, _ string, _ decimal.Decimal) (string, error) {
	return "", errors.New("solana wallet not configured")
}
