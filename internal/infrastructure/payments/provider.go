// Package payments implements the HTTP client for the external payment
// processor and the webhook signature check.
package payments

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/keralahub/culturalhub/internal/core/ports"
)

const requestTimeout = 15 * time.Second

// Config captures the payment processor settings.
type Config struct {
	BaseURL       string // e.g. https://api.payments.example
	SecretKey     string
	WebhookSecret string
}

// Provider creates payment intents via the processor's REST API.
// Transient failures (network, 5xx) are retried with exponential backoff;
// 4xx responses are terminal.
type Provider struct {
	cfg    Config
	client *http.Client
}

func NewProvider(cfg Config) *Provider {
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
	}
}

type intentResponse struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
	Error        struct {
		Message string `json:"message"`
	} `json:"error"`
}

// CreateIntent asks the processor for a payment intent. Amount is in the
// smallest currency unit; metadata is attached for webhook correlation.
func (p *Provider) CreateIntent(ctx context.Context, amount int64, currency string, metadata map[string]string) (*ports.PaymentIntent, error) {
	form := url.Values{}
	form.Set("amount", strconv.FormatInt(amount, 10))
	form.Set("currency", currency)
	for k, v := range metadata {
		form.Set("metadata["+k+"]", v)
	}

	var intent *ports.PaymentIntent
	backoff := retry.WithMaxRetries(3, retry.NewExponential(200*time.Millisecond))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost,
			strings.TrimSuffix(p.cfg.BaseURL, "/")+"/v1/payment_intents",
			strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(p.cfg.SecretKey, "")

		resp, err := p.client.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return retry.RetryableError(err)
		}

		if resp.StatusCode >= 500 {
			return retry.RetryableError(fmt.Errorf("provider returned %d", resp.StatusCode))
		}

		var parsed intentResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return fmt.Errorf("decode provider response: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("provider rejected intent: %s", parsed.Error.Message)
		}

		intent = &ports.PaymentIntent{ID: parsed.ID, ClientSecret: parsed.ClientSecret}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return intent, nil
}

// WebhookEvent is the provider's webhook payload.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID string `json:"id"` // payment intent id
		} `json:"object"`
	} `json:"data"`
}

// VerifySignature checks the webhook body against the shared-secret HMAC
// carried in the signature header.
func (p *Provider) VerifySignature(body []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(p.cfg.WebhookSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
