package verifier

import (
	"context"

	"github.com/voltpass/vpc-backend/internal/btcrpc"
	"github.com/voltpass/vpc-backend/internal/consts"
	"github.com/voltpass/vpc-backend/internal/ethrpc"
	"github.com/voltpass/vpc-backend/internal/model"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

// Router picks the payment check appropriate to the order's method. On-chain
// checks exist for bitcoin and ERC20 USDT; the remaining transports fall back
// to the manual stub.
type Router struct {
	btcRpc btcrpc.IBtcRpc
	ethRpc ethrpc.IEthRpc
	stub   IVerifier
	logger *logger.Logger
}

func New(btcRpc btcrpc.IBtcRpc, ethRpc ethrpc.IEthRpc, logger *logger.Logger) IVerifier {
	return &Router{
		btcRpc: btcRpc,
		ethRpc: ethRpc,
		stub:   NewStub(),
		logger: logger,
	}
}

func (r *Router) Verify(ctx context.Context, order *model.Order) (bool, string, error) {
	switch order.Method {
	case consts.MethodBitcoin:
		txid, paid, err := r.btcRpc.GetIncomingPayment(ctx, order.DepositAddress, order.PayAmount)
		return paid, txid, err
	case consts.MethodUSDTERC20:
		if r.ethRpc == nil {
			return r.stub.Verify(ctx, order)
		}
		txid, paid, err := r.ethRpc.GetIncomingUSDTTransfer(ctx, order.DepositAddress, order.PayAmount)
		return paid, txid, err
	default:
		return r.stub.Verify(ctx, order)
	}
}
