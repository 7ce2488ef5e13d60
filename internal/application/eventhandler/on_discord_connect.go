package eventhandler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/web3camp/cohort-hub/internal/application/dispatch"
	"github.com/web3camp/cohort-hub/internal/domain/cohort"
	"github.com/web3camp/cohort-hub/internal/domain/eligibility"
	"github.com/web3camp/cohort-hub/internal/domain/shared"
	"github.com/web3camp/cohort-hub/internal/domain/user"
)

// OnDiscordConnectHandler grants the role of every cohort the user belongs to
// once they link a Discord account. Fires on every user document update and
// bails out unless the Discord identity actually changed.
type OnDiscordConnectHandler struct {
	cohorts    cohort.Repository
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// NewOnDiscordConnectHandler creates the handler.
func NewOnDiscordConnectHandler(
	cohorts cohort.Repository,
	dispatcher *dispatch.Dispatcher,
	logger *slog.Logger,
) *OnDiscordConnectHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnDiscordConnectHandler{
		cohorts:    cohorts,
		dispatcher: dispatcher,
		logger:     logger.With("handler", "on_discord_connect"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnDiscordConnectHandler) Handle(ctx context.Context, event shared.Event) error {
	userEvent, ok := event.(user.UpdatedEvent)
	if !ok {
		h.logger.Warn("received non-UserUpdatedEvent", "event_type", event.EventType())
		return nil
	}

	if !user.DiscordNewlyConnected(userEvent.Before, userEvent.After) {
		return nil
	}

	u := userEvent.After
	for _, membership := range u.Cohorts {
		c, err := h.cohorts.Get(ctx, membership.CohortID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				h.logger.Warn("cohort document missing, skipping role grant",
					"user_id", u.ID,
					"cohort_id", membership.CohortID,
				)
				continue
			}
			return err
		}
		h.dispatcher.Dispatch(ctx, eligibility.GrantDiscordRole(u.Discord.ID, c.DiscordRoleID))
	}

	h.logger.Info("processed discord connect",
		"user_id", u.ID,
		"discord_user_id", u.Discord.ID,
		"cohorts", len(u.Cohorts),
	)
	return nil
}
