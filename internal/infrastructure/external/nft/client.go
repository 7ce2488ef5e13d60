// Package nft implements the client for the NFT minting routine. Minting
// itself (contract interaction, gas handling) lives in a separate service;
// this client only submits mint requests.
package nft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/web3camp/cohort-hub/internal/domain/cohort"
	"github.com/web3camp/cohort-hub/internal/domain/shared"
	"github.com/web3camp/cohort-hub/internal/domain/user"
)

// ClientConfig contains configuration for the minting service client.
type ClientConfig struct {
	// BaseURL is the minting service endpoint.
	BaseURL string

	// APIKey authenticates against the minting service.
	APIKey string

	// Timeout is the HTTP request timeout. Minting is slow; keep this
	// generous.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(baseURL, apiKey string) ClientConfig {
	return ClientConfig{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Timeout: 60 * time.Second,
	}
}

// Client talks to the minting service. Implements dispatch.Minter.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a minting service client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     config.Logger.With("client", "nft"),
	}
}

// mintRequest is the wire format of a mint call.
type mintRequest struct {
	CohortID  string `json:"cohort_id"`
	CourseID  string `json:"course_id"`
	NFTTitle  string `json:"nft_title"`
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
}

// Mint implements dispatch.Minter.
func (c *Client) Mint(ctx context.Context, co cohort.Cohort, nftTitle string, u user.User) error {
	body, err := json.Marshal(mintRequest{
		CohortID:  co.ID,
		CourseID:  co.CourseID,
		NFTTitle:  nftTitle,
		UserID:    u.ID,
		UserEmail: u.Email,
	})
	if err != nil {
		return fmt.Errorf("marshal mint request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/mint", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mint request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return shared.NewExternalError("nft", "Mint", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return shared.NewExternalError("nft", "Mint",
			fmt.Errorf("mint service returned %d: %s", resp.StatusCode, detail))
	}

	c.logger.Info("mint submitted", "user_id", u.ID, "cohort_id", co.ID, "nft_title", nftTitle)
	return nil
}
