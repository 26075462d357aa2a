package btcrpc

import (
	"context"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/voltpass/vpc-backend/internal/btcrpc/blockstream"
	"github.com/voltpass/vpc-backend/internal/consts"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

var satsPerBTC = decimal.New(1, consts.BTC_DECIMALS)

type BtcRpc struct {
	blockstream blockstream.IBlockStream
	appConfig   *config.AppConfig
	logger      *logger.Logger
}

func New(appConfig *config.AppConfig, logger *logger.Logger) IBtcRpc {
	return &BtcRpc{
		blockstream: blockstream.New(appConfig, logger),
		appConfig:   appConfig,
		logger:      logger,
	}
}

func (b *BtcRpc) GetIncomingPayment(ctx context.Context, address string, minAmount decimal.Decimal) (string, bool, error) {
	if _, err := btcutil.DecodeAddress(address, &chaincfg.MainNetParams); err != nil {
		return "", false, errors.Wrapf(err, "invalid bitcoin address %s", address)
	}

	txs, err := b.blockstream.GetAddressTxs(ctx, address)
	if err != nil {
		return "", false, err
	}

	minSats := minAmount.Mul(satsPerBTC)

	for _, tx := range txs {
		if !tx.Status.Confirmed {
			continue
		}

		received := int64(0)
		for _, vout := range tx.Vout {
			if vout.ScriptpubkeyAddress == address {
				received += vout.Value
			}
		}

		if decimal.NewFromInt(received).GreaterThanOrEqual(minSats) {
			return tx.Txid, true, nil
		}
	}

	return "", false, nil
}
