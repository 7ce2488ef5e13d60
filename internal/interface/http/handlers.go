package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/web3camp/cohort-hub/internal/application/dispatch"
	"github.com/web3camp/cohort-hub/internal/domain/shared"
	"github.com/web3camp/cohort-hub/internal/infrastructure/messaging"
)

// DefaultEmailSubject is used when the caller passes no subject.
const DefaultEmailSubject = "🏕️ Seu primeiro Smart Contract na Ethereum"

type handlers struct {
	deps   Dependencies
	logger *slog.Logger
}

// plainText writes a short plain-text body with the transport-default status.
func plainText(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, body)
}

// health pings the document store.
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	if h.deps.DB != nil {
		if err := h.deps.DB.Ping(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			plainText(w, "db unreachable")
			return
		}
	}
	plainText(w, "OK")
}

// sendEmail sends a single templated email synchronously and reports the
// sender outcome. This is the one path where a collaborator failure reaches
// a caller.
func (h *handlers) sendEmail(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	subject := q.Get("subject")
	if subject == "" {
		subject = DefaultEmailSubject
	}

	err := h.deps.Dispatcher.SendEmail(r.Context(), q.Get("template"), subject, q.Get("to"), dispatch.EmailParams{})
	if err != nil {
		plainText(w, err.Error())
		return
	}
	plainText(w, "OK")
}

// sendEmailToCohort enqueues one email task per cohort member. The response
// is "OK" as soon as the fan-out is queued: callers cannot distinguish
// partial from total delivery success from the response alone.
func (h *handlers) sendEmailToCohort(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()
	cohortID := q.Get("cohort_id")

	users, err := h.deps.Users.ListAll(ctx)
	if err != nil {
		h.logger.Error("list users failed", "error", err)
		plainText(w, "error listing users")
		return
	}

	queued := 0
	for _, u := range users {
		if u.Email == "" {
			continue
		}
		membership, ok := u.MembershipFor(cohortID)
		if !ok {
			continue
		}

		c, err := h.deps.Cohorts.Get(ctx, membership.CohortID)
		if err != nil {
			h.logger.Warn("cohort lookup failed during fan-out",
				"cohort_id", membership.CohortID, "error", err)
			continue
		}
		course, err := h.deps.Courses.Get(ctx, c.CourseID)
		if err != nil {
			h.logger.Warn("course lookup failed during fan-out",
				"course_id", c.CourseID, "error", err)
			continue
		}

		subject := q.Get("subject")
		if subject == "" {
			subject = c.EmailContent.Subject
		}

		task := messaging.EmailTask{
			To:       u.Email,
			Template: q.Get("template"),
			Subject:  subject,
			Params:   dispatch.EmailParams{Cohort: c, Course: course},
		}
		if err := h.deps.Queue.Publish(ctx, task); err != nil {
			h.logger.Error("enqueue failed", "to", u.Email, "error", err)
			continue
		}
		queued++
	}

	h.logger.Info("cohort email fan-out queued", "cohort_id", cohortID, "emails", queued)
	plainText(w, "OK")
}

// addUserToDiscord grants one role to one Discord user. Always answers "OK";
// the grant outcome is only visible in logs.
func (h *handlers) addUserToDiscord(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.deps.Dispatcher.GrantRole(r.Context(), q.Get("user_id"), q.Get("role_id"))
	plainText(w, "OK")
}

// addCohortToDiscord grants the cohort role to every member with a linked
// Discord identity. Only the user's first cohort membership is considered,
// matching the enrollment flow which writes the active cohort first.
func (h *handlers) addCohortToDiscord(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	cohortID := r.URL.Query().Get("cohort_id")

	c, err := h.deps.Cohorts.Get(ctx, cohortID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("invalid cohort", "cohort_id", cohortID)
			plainText(w, "invalid cohort")
			return
		}
		h.logger.Error("cohort lookup failed", "cohort_id", cohortID, "error", err)
		plainText(w, "error loading cohort")
		return
	}

	users, err := h.deps.Users.ListAll(ctx)
	if err != nil {
		h.logger.Error("list users failed", "error", err)
		plainText(w, "error listing users")
		return
	}
	if len(users) == 0 {
		h.logger.Info("no users to change")
		plainText(w, "no users")
		return
	}

	for _, u := range users {
		if len(u.Cohorts) == 0 || u.Cohorts[0].CohortID != cohortID || !u.Discord.Connected() {
			continue
		}
		h.logger.Info("granting cohort role",
			"role_id", c.DiscordRoleID,
			"discord_username", u.Discord.Username,
		)
		h.deps.Dispatcher.GrantRole(ctx, u.Discord.ID, c.DiscordRoleID)
	}
	plainText(w, "OK")
}
