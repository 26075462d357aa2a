package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

type client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
}

func New(appConfig *config.AppConfig, logger *logger.Logger) IClient {
	return &client{
		baseURL: appConfig.Pricing.CoingeckoAPIURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (c *client) GetUSDPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	url := fmt.Sprintf("%s/simple/price?ids=%s&vs_currencies=usd", c.baseURL, assetID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to create price request")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to request price")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decimal.Zero, errors.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
	}

	// {"tether":{"usd":1.0}}
	var payload map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, errors.Wrap(err, "failed to decode price response")
	}

	price, ok := payload[assetID]["usd"]
	if !ok {
		return decimal.Zero, errors.Errorf("no usd price for asset %s", assetID)
	}

	return price, nil
}
