// Package eventhandler contains the handlers reacting to document-change
// events: cohort signups, Discord connections and lesson submissions.
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

// ═══════════════════════════════════════════════════════════════════════════
// ON COHORT SIGNUP HANDLER
//
// Fires on every user document update. For each cohort the user newly joined:
// 1. Send the cohort's signup email
// 2. Grant the cohort's Discord role
//
// The two actions run concurrently and are waited on jointly; neither cancels
// the other on failure.
// ═══════════════════════════════════════════════════════════════════════════

// OnCohortSignupHandler handles new cohort memberships on user updates.
type OnCohortSignupHandler struct {
	cohorts    cohort.Repository
	courses    cohort.CourseRepository
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger
}

// NewOnCohortSignupHandler creates the handler.
func NewOnCohortSignupHandler(
	cohorts cohort.Repository,
	courses cohort.CourseRepository,
	dispatcher *dispatch.Dispatcher,
	logger *slog.Logger,
) *OnCohortSignupHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnCohortSignupHandler{
		cohorts:    cohorts,
		courses:    courses,
		dispatcher: dispatcher,
		logger:     logger.With("handler", "on_cohort_signup"),
	}
}

// Handle implements shared.EventHandler.
func (h *OnCohortSignupHandler) Handle(ctx context.Context, event shared.Event) error {
	userEvent, ok := event.(user.UpdatedEvent)
	if !ok {
		h.logger.Warn("received non-UserUpdatedEvent", "event_type", event.EventType())
		return nil
	}

	added := user.NewCohortMemberships(userEvent.Before, userEvent.After)
	if len(added) == 0 {
		return nil
	}

	for _, membership := range added {
		if err := h.notifySignup(ctx, userEvent.After, membership); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				h.logger.Warn("cohort or course document missing, skipping signup notification",
					"user_id", userEvent.After.ID,
					"cohort_id", membership.CohortID,
				)
				continue
			}
			return err
		}
	}
	return nil
}

func (h *OnCohortSignupHandler) notifySignup(ctx context.Context, u user.User, membership user.CohortMembership) error {
	c, err := h.cohorts.Get(ctx, membership.CohortID)
	if err != nil {
		return err
	}
	course, err := h.courses.Get(ctx, c.CourseID)
	if err != nil {
		return err
	}

	email := eligibility.SendCohortSignupEmail(c, course, u)
	role := eligibility.GrantDiscordRole(u.Discord.ID, c.DiscordRoleID)

	tasks := []dispatch.Task{
		{
			Name: "send_signup_email",
			Run: func(ctx context.Context) error {
				return h.dispatcher.Dispatch(ctx, email)
			},
		},
		{
			Name: "grant_cohort_role",
			Run: func(ctx context.Context) error {
				return h.dispatcher.Dispatch(ctx, role)
			},
		},
	}

	for _, outcome := range dispatch.WaitAll(ctx, tasks) {
		if outcome.Err != nil {
			h.logger.Warn("signup action failed",
				"action", outcome.Name,
				"user_id", u.ID,
				"cohort_id", membership.CohortID,
				"error", outcome.Err,
			)
		}
	}

	h.logger.Info("processed cohort signup",
		"user_id", u.ID,
		"cohort_id", membership.CohortID,
	)
	return nil
}
