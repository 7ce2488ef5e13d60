// Package discord implements the slice of the Discord REST API this service
// needs: adding a guild role to a member.
package discord

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/web3camp/cohort-hub/internal/domain/shared"
)

// ClientConfig contains configuration for the Discord client.
type ClientConfig struct {
	// BaseURL is the Discord API base URL (default: https://discord.com/api/v10).
	BaseURL string

	// BotToken is the bot token used for authorization.
	BotToken string

	// GuildID is the community server all cohorts live in.
	GuildID string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(botToken, guildID string) ClientConfig {
	return ClientConfig{
		BaseURL:  "https://discord.com/api/v10",
		BotToken: botToken,
		GuildID:  guildID,
		Timeout:  10 * time.Second,
	}
}

// Client talks to the Discord REST API. Implements dispatch.RoleGranter.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a Discord client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://discord.com/api/v10"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     config.Logger.With("client", "discord"),
	}
}

// apiError is Discord's error envelope.
type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// GrantRole implements dispatch.RoleGranter via
// PUT /guilds/{guild}/members/{user}/roles/{role}. Discord answers 204 on
// success, including when the member already has the role.
func (c *Client) GrantRole(ctx context.Context, discordUserID, roleID string) error {
	if discordUserID == "" || roleID == "" {
		return fmt.Errorf("%w: discord user id and role id are required", shared.ErrInvalidInput)
	}

	url := fmt.Sprintf("%s/guilds/%s/members/%s/roles/%s",
		c.config.BaseURL, c.config.GuildID, discordUserID, roleID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return fmt.Errorf("build role request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.config.BotToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return shared.NewExternalError("discord", "GrantRole", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		c.logger.Debug("role granted", "discord_user_id", discordUserID, "role_id", roleID)
		return nil
	}

	var ae apiError
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	if err := json.Unmarshal(body, &ae); err == nil && ae.Message != "" {
		return shared.NewExternalError("discord", "GrantRole",
			fmt.Errorf("discord returned %d (code %d): %s", resp.StatusCode, ae.Code, ae.Message))
	}
	return shared.NewExternalError("discord", "GrantRole",
		fmt.Errorf("discord returned %d: %s", resp.StatusCode, body))
}
