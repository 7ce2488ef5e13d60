package eligibility

import (
	"context"
	"time"

	"github.com/web3camp/cohort-hub/internal/domain/cohort"
	"github.com/web3camp/cohort-hub/internal/domain/submission"
)

// FinalLesson is the submission that triggers the graduation flow.
// TODO: read the last lesson from the course document instead of pinning the
// file name here; requires the content team to standardize lesson ordering.
const FinalLesson = "Lesson_2_Finalize_Celebrate.md"

// GraduatedRoleID is the Discord role granted to users who complete a course.
const GraduatedRoleID = "985557210794958948"

// Reminder window bounds, in hours after cohort kickoff. The daily job fires
// once a day, so a 2-hour window means the reminder is sent at most once.
// A misfiring schedule can double-send or skip entirely; there is no explicit
// send-state tracked anywhere.
const (
	reminderWindowOpenHours  = 47.0
	reminderWindowCloseHours = 49.0
)

// HasCompletedCourse reports whether the user has at least one submission for
// every required lesson of the course. The ledger is injected so the rule
// stays pure over its inputs.
//
// A course with an empty requirement set is vacuously complete. That matches
// current production behavior and is intentional until the content team says
// otherwise.
func HasCompletedCourse(ctx context.Context, userID string, course cohort.Course, ledger submission.Ledger) (bool, error) {
	subs, err := ledger.FetchSubmissions(ctx, userID, course.ID)
	if err != nil {
		return false, err
	}

	submitted := make(map[string]struct{}, len(subs))
	for _, s := range subs {
		submitted[s.Lesson] = struct{}{}
	}

	for _, lesson := range course.RequiredLessons {
		if _, ok := submitted[lesson]; !ok {
			return false, nil
		}
	}
	return true, nil
}

// IsInNotificationWindow reports whether now falls inside the day-2 reminder
// window: the absolute elapsed time since kickoff, in hours, lies strictly
// between 47 and 49. Both bounds are exclusive.
func IsInNotificationWindow(kickoff, now time.Time) bool {
	hours := now.Sub(kickoff).Hours()
	if hours < 0 {
		hours = -hours
	}
	return hours > reminderWindowOpenHours && hours < reminderWindowCloseHours
}

// HasNoSubmissions reports whether the user has zero submissions in the cohort.
func HasNoSubmissions(ctx context.Context, userID, cohortID string, ledger submission.Ledger) (bool, error) {
	n, err := ledger.CountForUserInCohort(ctx, userID, cohortID)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// FirstCohortInWindow returns the first cohort whose kickoff falls inside the
// reminder window, preserving single-cohort-per-run semantics: if two cohorts
// ever qualify on the same day, only the first is used. This is a synchronous
// filter; nothing is mutated while iterating.
func FirstCohortInWindow(cohorts []cohort.Cohort, now time.Time) (cohort.Cohort, bool) {
	for _, c := range cohorts {
		if IsInNotificationWindow(c.KickoffAt, now) {
			return c, true
		}
	}
	return cohort.Cohort{}, false
}
