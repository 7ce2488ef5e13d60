// Package email implements the client for the transactional mail service.
// Emails are rendered server-side from a template name plus parameters; this
// client only ships the payload.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/web3camp/cohort-hub/internal/application/dispatch"
	"github.com/web3camp/cohort-hub/internal/domain/shared"
)

// ClientConfig contains configuration for the mail service client.
type ClientConfig struct {
	// BaseURL is the mail service endpoint.
	BaseURL string

	// APIKey authenticates against the mail service.
	APIKey string

	// From is the sender address.
	From string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL, apiKey string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		From:    "oi@web3camp.dev",
		Timeout: 15 * time.Second,
	}
}

// Client talks to the mail service. Implements dispatch.EmailSender.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a mail service client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 15 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     config.Logger.With("client", "email"),
	}
}

// sendRequest is the wire format of a send call.
type sendRequest struct {
	From     string               `json:"from"`
	To       string               `json:"to"`
	Subject  string               `json:"subject"`
	Template string               `json:"template"`
	Params   dispatch.EmailParams `json:"params"`
}

// Send implements dispatch.EmailSender.
func (c *Client) Send(ctx context.Context, template, subject, to string, params dispatch.EmailParams) error {
	if to == "" {
		return fmt.Errorf("%w: empty recipient", shared.ErrInvalidInput)
	}

	body, err := json.Marshal(sendRequest{
		From:     c.config.From,
		To:       to,
		Subject:  subject,
		Template: template,
		Params:   params,
	})
	if err != nil {
		return fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/send", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return shared.NewExternalError("email", "Send", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return shared.NewExternalError("email", "Send",
			fmt.Errorf("mail service returned %d: %s", resp.StatusCode, detail))
	}

	c.logger.Debug("email sent", "template", template, "to", to)
	return nil
}
