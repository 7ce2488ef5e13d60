package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/web3camp/cohort-hub/internal/domain/cohort"
	"github.com/web3camp/cohort-hub/internal/domain/shared"
	"github.com/web3camp/cohort-hub/internal/domain/submission"
	"github.com/web3camp/cohort-hub/internal/domain/user"
)

// ══════════════════════════════════════════════════════════════════════════════
// USER REPOSITORY
// ══════════════════════════════════════════════════════════════════════════════

// UserRepository implements user.Repository over the document store.
type UserRepository struct {
	store *DocStore
}

// NewUserRepository creates a UserRepository.
func NewUserRepository(store *DocStore) *UserRepository {
	return &UserRepository{store: store}
}

// Get implements user.Repository.
func (r *UserRepository) Get(ctx context.Context, id string) (user.User, error) {
	data, err := r.store.Get(ctx, CollectionUsers, id)
	if err != nil {
		if IsNoRows(err) {
			return user.User{}, shared.NewNotFound("user", id)
		}
		return user.User{}, fmt.Errorf("get user %s: %w", id, err)
	}

	var u user.User
	if err := decode(data, &u); err != nil {
		return user.User{}, err
	}
	u.ID = id
	return u, nil
}

// ListAll implements user.Repository.
func (r *UserRepository) ListAll(ctx context.Context) ([]user.User, error) {
	docs, err := r.store.ListAll(ctx, CollectionUsers)
	if err != nil {
		return nil, err
	}

	users := make([]user.User, 0, len(docs))
	for _, data := range docs {
		var u user.User
		if err := decode(data, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// COHORT AND COURSE REPOSITORIES
// ══════════════════════════════════════════════════════════════════════════════

// CohortRepository implements cohort.Repository over the document store.
type CohortRepository struct {
	store *DocStore
}

// NewCohortRepository creates a CohortRepository.
func NewCohortRepository(store *DocStore) *CohortRepository {
	return &CohortRepository{store: store}
}

// Get implements cohort.Repository.
func (r *CohortRepository) Get(ctx context.Context, id string) (cohort.Cohort, error) {
	data, err := r.store.Get(ctx, CollectionCohorts, id)
	if err != nil {
		if IsNoRows(err) {
			return cohort.Cohort{}, shared.NewNotFound("cohort", id)
		}
		return cohort.Cohort{}, fmt.Errorf("get cohort %s: %w", id, err)
	}

	var c cohort.Cohort
	if err := decode(data, &c); err != nil {
		return cohort.Cohort{}, err
	}
	c.ID = id
	return c, nil
}

// ListAll implements cohort.Repository.
func (r *CohortRepository) ListAll(ctx context.Context) ([]cohort.Cohort, error) {
	docs, err := r.store.ListAll(ctx, CollectionCohorts)
	if err != nil {
		return nil, err
	}

	cohorts := make([]cohort.Cohort, 0, len(docs))
	for _, data := range docs {
		var c cohort.Cohort
		if err := decode(data, &c); err != nil {
			return nil, err
		}
		cohorts = append(cohorts, c)
	}
	return cohorts, nil
}

// CourseRepository implements cohort.CourseRepository over the document store.
type CourseRepository struct {
	store *DocStore
}

// NewCourseRepository creates a CourseRepository.
func NewCourseRepository(store *DocStore) *CourseRepository {
	return &CourseRepository{store: store}
}

// Get implements cohort.CourseRepository.
func (r *CourseRepository) Get(ctx context.Context, id string) (cohort.Course, error) {
	data, err := r.store.Get(ctx, CollectionCourses, id)
	if err != nil {
		if IsNoRows(err) {
			return cohort.Course{}, shared.NewNotFound("course", id)
		}
		return cohort.Course{}, fmt.Errorf("get course %s: %w", id, err)
	}

	var c cohort.Course
	if err := decode(data, &c); err != nil {
		return cohort.Course{}, err
	}
	c.ID = id
	return c, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// SUBMISSION LEDGER
// ══════════════════════════════════════════════════════════════════════════════

// SubmissionLedger implements submission.Ledger over the append-only
// lessons_submissions table.
type SubmissionLedger struct {
	conn *Connection
}

// NewSubmissionLedger creates a SubmissionLedger.
func NewSubmissionLedger(conn *Connection) *SubmissionLedger {
	return &SubmissionLedger{conn: conn}
}

// FetchSubmissions implements submission.Ledger. Cohorts of the course are
// resolved through the documents table so submissions from any cohort of the
// course count toward completion.
func (l *SubmissionLedger) FetchSubmissions(ctx context.Context, userID, courseID string) ([]submission.LessonSubmission, error) {
	query := `
		SELECT s.id, s.user_id, s.cohort_id, s.lesson, s.created_at
		FROM lessons_submissions s
		WHERE s.user_id = $1
		  AND s.cohort_id IN (
			SELECT id FROM documents
			WHERE collection = 'cohorts' AND data->>'course_id' = $2
		  )
		ORDER BY s.created_at
	`

	rows, err := l.conn.Query(ctx, query, userID, courseID)
	if err != nil {
		return nil, fmt.Errorf("fetch submissions: %w", err)
	}
	defer rows.Close()

	var out []submission.LessonSubmission
	for rows.Next() {
		var s submission.LessonSubmission
		if err := rows.Scan(&s.ID, &s.UserID, &s.CohortID, &s.Lesson, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountForUserInCohort implements submission.Ledger.
func (l *SubmissionLedger) CountForUserInCohort(ctx context.Context, userID, cohortID string) (int, error) {
	var n int
	err := l.conn.QueryRow(ctx,
		`SELECT COUNT(*) FROM lessons_submissions WHERE user_id = $1 AND cohort_id = $2`,
		userID, cohortID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count submissions: %w", err)
	}
	return n, nil
}

/// Append records a new submission. Append-only: no update or delete exists.
func (l *SubmissionLedger) Append(ctx context.Context, s submission.LessonSubmission) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := l.conn.Exec(ctx, `
		INSERT INTO lessons_submissions (id, user_id, cohort_id, lesson, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.CohortID, s.Lesson, s.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append submission: %w", err)
	}
	return nil
}
