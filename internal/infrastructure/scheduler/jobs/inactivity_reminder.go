// Package jobs contains implementations of scheduled jobs.
package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/web3camp/cohort-hub/internal/application/dispatch"
	"github.com/web3camp/cohort-hub/internal/domain/cohort"
	"github.com/web3camp/cohort-hub/internal/domain/eligibility"
	"github.com/web3camp/cohort-hub/internal/domain/shared"
	"github.com/web3camp/cohort-hub/internal/domain/submission"
	"github.com/web3camp/cohort-hub/internal/domain/user"
)

// ═══════════════════════════════════════════════════════════════════════════
// INACTIVITY REMINDER JOB
//
// Runs once per day. Finds the cohort whose kickoff happened roughly two days
// ago (the 47-49h window) and emails every member who has not submitted a
// single lesson yet. There is no send-state: the narrow window against a
// daily schedule is what keeps the reminder a one-shot.
//
// Only the first cohort inside the window is handled per run.
// ═══════════════════════════════════════════════════════════════════════════

// InactivityReminderJob finds inactive cohort members and reminds them.
type InactivityReminderJob struct {
	users      user.Repository
	cohorts    cohort.Repository
	courses    cohort.CourseRepository
	ledger     submission.Ledger
	dispatcher *dispatch.Dispatcher
	logger     *slog.Logger

	// now is injectable for tests.
	now func() time.Time
}

// InactivityReminderStats summarizes one run.
type InactivityReminderStats struct {
	CohortID      string
	UsersChecked  int
	RemindersSent int
	SendFailures  int
	Skipped       int
}

// NewInactivityReminderJob creates the job.
func NewInactivityReminderJob(
	users user.Repository,
	cohorts cohort.Repository,
	courses cohort.CourseRepository,
	ledger submission.Ledger,
	dispatcher *dispatch.Dispatcher,
	logger *slog.Logger,
) *InactivityReminderJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &InactivityReminderJob{
		users:      users,
		cohorts:    cohorts,
		courses:    courses,
		ledger:     ledger,
		dispatcher: dispatcher,
		logger:     logger.With("job", "inactivity_reminder"),
		now:        time.Now,
	}
}

// Name implements scheduler.Job.
func (j *InactivityReminderJob) Name() string {
	return "inactivity_reminder"
}

// Run implements scheduler.Job.
func (j *InactivityReminderJob) Run(ctx context.Context) error {
	_, err := j.run(ctx)
	return err
}

func (j *InactivityReminderJob) run(ctx context.Context) (InactivityReminderStats, error) {
	var stats InactivityReminderStats
	now := j.now()

	cohorts, err := j.cohorts.ListAll(ctx)
	if err != nil {
		return stats, err
	}

	target, ok := eligibility.FirstCohortInWindow(cohorts, now)
	if !ok {
		j.logger.Info("no cohort inside the reminder window")
		return stats, nil
	}
	stats.CohortID = target.ID

	course, err := j.courses.Get(ctx, target.CourseID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			j.logger.Warn("course document missing, skipping run", "cohort_id", target.ID)
			return stats, nil
		}
		return stats, err
	}
	users, err := j.users.ListAll(ctx)
	if err != nil {
		return stats, err
	}

	for _, u := range users {
		stats.UsersChecked++

		_, member := u.MembershipFor(target.ID)
		if !member || u.Email == "" {
			stats.Skipped++
			continue
		}

		inactive, err := eligibility.HasNoSubmissions(ctx, u.ID, target.ID, j.ledger)
		if err != nil {
			j.logger.Error("submission lookup failed", "user_id", u.ID, "error", err)
			stats.Skipped++
			continue
		}
		if !inactive {
			stats.Skipped++
			continue
		}

		if err := j.dispatcher.Dispatch(ctx, eligibility.SendInactivityReminder(target, course, u)); err != nil {
			stats.SendFailures++
			continue
		}
		stats.RemindersSent++
	}

	j.logger.Info("inactivity reminder run finished",
		"cohort_id", stats.CohortID,
		"users_checked", stats.UsersChecked,
		"reminders_sent", stats.RemindersSent,
		"send_failures", stats.SendFailures,
	)
	return stats, nil
}
