// Package cohort contains the cohort and course document models.
package cohort

import (
	"context"
	"time"
)

// EmailContent describes the email sent to members of a cohort.
type EmailContent struct {
	Subject string `json:"subject"`
	// Template is the mail template name, e.g. "on_cohort_signup".
	Template string `json:"template,omitempty"`
}

// Cohort is a time-boxed group of users progressing through a course together.
type Cohort struct {
	ID            string       `json:"id"`
	CourseID      string       `json:"course_id"`
	KickoffAt     time.Time    `json:"kickoff_start_time"`
	DiscordRoleID string       `json:"discord_role"`
	EmailContent  EmailContent `json:"email_content"`
}

// Course describes a course and the lessons required to complete it.
type Course struct {
	ID string `json:"id"`
	// RequiredLessons are the lesson identifiers a user must submit.
	// An empty set means the course is trivially complete.
	RequiredLessons []string `json:"required_lessons"`
	NFTTitle        string   `json:"nft_title"`
}

// Repository is the read surface over cohort documents.
type Repository interface {
	// Get returns the cohort document or shared.ErrNotFound.
	Get(ctx context.Context, id string) (Cohort, error)

	// ListAll returns a point-in-time snapshot of every cohort document.
	ListAll(ctx context.Context) ([]Cohort, error)
}

// CourseRepository is the read surface over course documents.
type CourseRepository interface {
	// Get returns the course document or shared.ErrNotFound.
	Get(ctx context.Context, id string) (Course, error)
}
