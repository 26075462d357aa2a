package blockstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/voltpass/vpc-backend/internal/utils/config"
	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

const maxRetries = 3

type blockstream struct {
	baseURL string
	client  *http.Client
	logger  *logger.Logger
}

func New(cfg *config.AppConfig, logger *logger.Logger) IBlockStream {
	return &blockstream{
		baseURL: cfg.Bitcoin.BlockstreamAPIURL,
		client:  &http.Client{},
		logger:  logger,
	}
}

func (c *blockstream) GetAddressTxs(ctx context.Context, address string) ([]Transaction, error) {
	url := fmt.Sprintf("%s/address/%s/txs", c.baseURL, address)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, errors.Wrap(err, "failed to create request")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = errors.Wrap(err, "failed to request address transactions")
			c.logger.Error("[GetAddressTxs][client.Do]", map[string]string{
				"error":   err.Error(),
				"attempt": strconv.Itoa(attempt),
			})
			if sleepErr := sleepWithContext(ctx, time.Duration(attempt)*time.Second); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = errors.Wrap(err, "failed to read response")
			continue
		}

		if resp.StatusCode != http.StatusOK {
			lastErr = errors.Errorf("unexpected status code %d: %s", resp.StatusCode, string(body))
			c.logger.Error("[GetAddressTxs] upstream error", map[string]string{
				"statusCode": strconv.Itoa(resp.StatusCode),
				"attempt":    strconv.Itoa(attempt),
			})
			if sleepErr := sleepWithContext(ctx, time.Duration(attempt)*time.Second); sleepErr != nil {
				return nil, lastErr
			}
			continue
		}

		var txs []Transaction
		if err := json.Unmarshal(body, &txs); err != nil {
			return nil, errors.Wrap(err, "failed to decode address transactions")
		}
		return txs, nil
	}

	return nil, lastErr
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
