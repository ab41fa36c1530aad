package notify

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/lfmachado/rebanho/internal/config"
)

// Client delivers out-of-band notifications (herd reminders, password reset
// links) to the configured webhook endpoint. The endpoint is whatever bridge
// the operator points it at: a messaging gateway, a mail relay, etc.
type Client interface {
	Enviar(ctx context.Context, msg Mensagem) error
}

// Mensagem is the payload posted to the webhook.
type Mensagem struct {
	Destinatario string `json:"destinatario"`
	Assunto      string `json:"assunto"`
	Corpo        string `json:"corpo"`
}

// WebhookClient is a resty-backed implementation of Client.
type WebhookClient struct {
	httpClient *resty.Client
}

// NewClient builds the webhook client from configuration.
func NewClient(cfg config.NotifyConfig) *WebhookClient {
	restyClient := resty.New()
	restyClient.
		SetBaseURL(cfg.WebhookURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	if cfg.Token != "" {
		restyClient.SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Token))
	}

	return &WebhookClient{httpClient: restyClient}
}

// Enviar posts the message and treats any non-2xx status as a failure.
func (c *WebhookClient) Enviar(ctx context.Context, msg Mensagem) error {
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(msg).
		Post("")
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return fmt.Errorf("notification endpoint error: status=%d body=%s", resp.StatusCode(), resp.String())
	}

	return nil
}
