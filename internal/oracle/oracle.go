package oracle

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/voltpass/vpc-backend/internal/consts"
	"github.com/voltpass/vpc-backend/internal/oracle/coingecko"
	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

// fallbackUSDPrice is used when the price feed is unreachable. Blocking a
// purchase on a pricing dependency is not acceptable.
var fallbackUSDPrice = decimal.NewFromInt(1)

type PriceOracle struct {
	coingecko coingecko.IClient
	appConfig *config.AppConfig
	logger    *logger.Logger
}

func New(coingecko coingecko.IClient, appConfig *config.AppConfig, logger *logger.Logger) IOracle {
	return &PriceOracle{
		coingecko: coingecko,
		appConfig: appConfig,
		logger:    logger,
	}
}

func (o *PriceOracle) QuoteVPCAmount(usd decimal.Decimal, promo string) decimal.Decimal {
	tokenPrice := decimal.NewFromFloat(o.appConfig.Pricing.TokenPriceUSD)
	if tokenPrice.IsZero() {
		tokenPrice = fallbackUSDPrice
	}

	amount := usd.Div(tokenPrice)

	if promo != "" {
		if pct, ok := o.appConfig.Pricing.PromoBonuses[strings.ToUpper(promo)]; ok {
			bonus := amount.Mul(decimal.NewFromFloat(pct)).Div(decimal.NewFromInt(100))
			amount = amount.Add(bonus)
		}
	}

	return amount.Round(consts.PayAmountPrecision)
}

func (o *PriceOracle) QuotePayAmount(ctx context.Context, usd decimal.Decimal, method string) (decimal.Decimal, string) {
	assetID, ok := consts.CoingeckoIDs[method]
	if !ok {
		assetID = "tether"
	}

	price, err := o.coingecko.GetUSDPrice(ctx, assetID)
	if err != nil {
		o.logger.Error("[QuotePayAmount][GetUSDPrice] falling back to default price", map[string]string{
			"asset_id": assetID,
			"error":    err.Error(),
		})
		price = fallbackUSDPrice
	}

	return usd.Div(price).Round(consts.PayAmountPrecision), strings.ToUpper(method)
}
