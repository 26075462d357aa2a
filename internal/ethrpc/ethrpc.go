package ethrpc

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/voltpass/vpc-backend/internal/consts"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

// transferTopic is the keccak hash of the ERC20 Transfer event signature.
var transferTopic = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// lookbackBlocks bounds one log filter query. Roughly a day of mainnet blocks,
// far longer than any order TTL.
const lookbackBlocks = 7200

type ethClient interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]types.Log, error)
}

type EthRpc struct {
	client       ethClient
	usdtContract common.Address
	logger       *logger.Logger
}

func New(appConfig *config.AppConfig, logger *logger.Logger) (IEthRpc, error) {
	client, err := ethclient.Dial(appConfig.Ethereum.RPCEndpoint)
	if err != nil {
		return nil, errors.Wrap(err, "failed to dial eth rpc endpoint")
	}

	return &EthRpc{
		client:       client,
		usdtContract: common.HexToAddress(appConfig.Ethereum.USDTContractAddr),
		logger:       logger,
	}, nil
}

func (e *EthRpc) GetIncomingUSDTTransfer(ctx context.Context, toAddress string, minAmount decimal.Decimal) (string, bool, error) {
	if !common.IsHexAddress(toAddress) {
		return "", false, errors.Errorf("invalid ethereum address %s", toAddress)
	}

	latest, err := e.client.BlockNumber(ctx)
	if err != nil {
		return "", false, errors.Wrap(err, "failed to get latest block")
	}

	fromBlock := int64(0)
	if latest > lookbackBlocks {
		fromBlock = int64(latest - lookbackBlocks)
	}

	logs, err := e.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		Addresses: []common.Address{e.usdtContract},
		Topics: [][]common.Hash{
			{transferTopic},
			nil, // any sender
			{common.BytesToHash(common.HexToAddress(toAddress).Bytes())},
		},
	})
	if err != nil {
		return "", false, errors.Wrap(err, "failed to filter transfer logs")
	}

	for _, lg := range logs {
		amount := decimal.NewFromBigInt(new(big.Int).SetBytes(lg.Data), -consts.USDT_DECIMALS)
		if amount.GreaterThanOrEqual(minAmount) {
			return lg.TxHash.Hex(), true, nil
		}
	}

	return "", false, nil
}
