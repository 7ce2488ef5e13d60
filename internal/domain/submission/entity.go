// Package submission contains the lesson submission model and the ledger
// capability the eligibility rules read from.
package submission

import (
	"context"
	"time"

	"github.com/web3camp/cohort-hub/internal/domain/shared"
)

// LessonSubmission records that a user submitted work for a lesson.
// Submissions are append-only; they are never mutated or deleted.
type LessonSubmission struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	CohortID  string    `json:"cohort_id"`
	Lesson    string    `json:"lesson"`
	CreatedAt time.Time `json:"created_at"`
}

// Ledger is the injected read capability over the submission store.
// Decision logic depends on this interface so it stays testable with a fake.
type Ledger interface {
	// FetchSubmissions returns the user's submissions across any cohort of
	// the given course.
	FetchSubmissions(ctx context.Context, userID, courseID string) ([]LessonSubmission, error)

	// CountForUserInCohort returns how many submissions the user has made
	// within one cohort.
	CountForUserInCohort(ctx context.Context, userID, cohortID string) (int, error)
}

// CreatedEvent is published when a submission document is created.
type CreatedEvent struct {
	shared.BaseEvent
	Submission LessonSubmission `json:"submission"`
}

// NewCreatedEvent creates a CreatedEvent for the given submission.
func NewCreatedEvent(s LessonSubmission) CreatedEvent {
	return CreatedEvent{
		BaseEvent:  shared.NewBaseEvent(shared.EventSubmissionCreated, s.ID),
		Submission: s,
	}
}
