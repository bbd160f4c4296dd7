package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/Zachkp/portfolio/internal/contact"
	"github.com/Zachkp/portfolio/internal/logging"
)

type WebhookConfig struct {
	URL      string        `env:"CONTACT_WEBHOOK_URL"`
	Token    string        `env:"CONTACT_WEBHOOK_TOKEN"`
	Timeout  time.Duration `env:"CONTACT_WEBHOOK_TIMEOUT" envDefault:"10s"`
	RetryMax int           `env:"CONTACT_WEBHOOK_RETRIES" envDefault:"3"`
}

func LoadWebhookConfig() (WebhookConfig, error) {
	var cfg WebhookConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse webhook env: %w", err)
	}
	if cfg.URL == "" {
		return cfg, fmt.Errorf("CONTACT_WEBHOOK_URL is not set")
	}
	return cfg, nil
}

// Webhook posts each submission as JSON to an external endpoint. A
// delivery succeeds on a 2xx response whose body, when JSON, does not
// carry "ok": false.
type Webhook struct {
	cfg    WebhookConfig
	client *retryablehttp.Client
}

func NewWebhook(cfg WebhookConfig) *Webhook {
	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = cfg.Timeout
	client.Logger = logging.Component("webhook")
	return &Webhook{cfg: cfg, client: client}
}

func (w *Webhook) Submit(ctx context.Context, f contact.Form) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return err
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if w.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+w.cfg.Token)
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("webhook: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook: status %d: %s", resp.StatusCode, gjson.GetBytes(body, "error").String())
	}
	if gjson.ValidBytes(body) {
		if ok := gjson.GetBytes(body, "ok"); ok.Exists() && !ok.Bool() {
			return fmt.Errorf("webhook: rejected: %s", gjson.GetBytes(body, "error").String())
		}
	}
	return nil
}
