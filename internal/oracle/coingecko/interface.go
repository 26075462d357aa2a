package coingecko

import (
	"context"

	"github.com/shopspring/decimal"
)

type IClient interface {
	// GetUSDPrice returns the USD price of a CoinGecko asset id.
	GetUSDPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
}
