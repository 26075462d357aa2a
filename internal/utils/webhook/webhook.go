package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/voltpass/vpc-backend/internal/utils/logger"
)

// Client posts operator alerts to a configured webhook URL. Alerts are
// best-effort; a failed delivery is logged and dropped.
type Client struct {
	httpClient *http.Client
	logger     *logger.Logger
}

func New(logger *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// SendAlert posts a JSON alert payload. A blank URL disables alerting.
func (c *Client) SendAlert(ctx context.Context, webhookURL string, payload map[string]string) {
	if webhookURL == "" {
		return
	}

	body, err := json.Marshal(payload)
	if err != nil {
		c.logger.Error("failed to encode alert payload", map[string]string{
			"error": err.Error(),
		})
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		c.logger.Error("failed to create alert request", map[string]string{
			"url":   webhookURL,
			"error": err.Error(),
		})
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("failed to deliver operator alert", map[string]string{
			"url":   webhookURL,
			"error": err.Error(),
		})
		return
	}
	defer resp.Body.Close()

	c.logger.Info("operator alert delivered", map[string]string{
		"url":         webhookURL,
		"status_code": resp.Status,
	})
}
