package ethrpc

import (
	"context"

	"github.com/shopspring/decimal"
)

type IEthRpc interface {
	// GetIncomingUSDTTransfer looks for an ERC20 USDT transfer of at least
	// minAmount to the deposit address. Returns the funding tx hash when found.
	GetIncomingUSDTTransfer(ctx context.Context, toAddress string, minAmount decimal.Decimal) (txid string, paid bool, err error)
}
