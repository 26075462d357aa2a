package oracle

import (
	"context"

	"github.com/shopspring/decimal"
)

type IOracle interface {
	// QuoteVPCAmount returns the VPC amount delivered for a USD purchase,
	// including any promo bonus. Fixed at order creation.
	QuoteVPCAmount(usd decimal.Decimal, promo string) decimal.Decimal

	// QuotePayAmount returns the crypto amount and symbol the buyer must send
	// for the method. A degraded price feed falls back to a default price and
	// never fails the quote.
	QuotePayAmount(ctx context.Context, usd decimal.Decimal, method string) (decimal.Decimal, string)
}
