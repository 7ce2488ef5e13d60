package eligibility

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3camp/cohort-hub/internal/domain/cohort"
	"github.com/web3camp/cohort-hub/internal/domain/submission"
)

// fakeLedger implements submission.Ledger over in-memory records.
type fakeLedger struct {
	byCourse map[string][]submission.LessonSubmission
	byCohort map[string]int
}

func (f *fakeLedger) FetchSubmissions(_ context.Context, userID, courseID string) ([]submission.LessonSubmission, error) {
	var out []submission.LessonSubmission
	for _, s := range f.byCourse[courseID] {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeLedger) CountForUserInCohort(_ context.Context, userID, cohortID string) (int, error) {
	return f.byCohort[userID+"/"+cohortID], nil
}

func TestIsInNotificationWindow(t *testing.T) {
	kickoff := time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		elapsed time.Duration
		want    bool
	}{
		{"exactly 48h", 48 * time.Hour, true},
		{"exactly 47h is outside", 47 * time.Hour, false},
		{"exactly 49h is outside", 49 * time.Hour, false},
		{"just inside lower bound", 47*time.Hour + time.Minute, true},
		{"just inside upper bound", 49*time.Hour - time.Minute, true},
		{"one hour after kickoff", time.Hour, false},
		{"48h before kickoff (absolute value)", -48 * time.Hour, true},
		{"far before kickoff", -100 * time.Hour, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := kickoff.Add(tt.elapsed)
			assert.Equal(t, tt.want, IsInNotificationWindow(kickoff, now))
		})
	}
}

func TestHasCompletedCourse(t *testing.T) {
	course := cohort.Course{
		ID:              "solidity-intro",
		RequiredLessons: []string{"Lesson_0_Welcome.md", "Lesson_1_Deploy.md", FinalLesson},
	}

	ledger := &fakeLedger{byCourse: map[string][]submission.LessonSubmission{
		"solidity-intro": {
			{UserID: "u1", Lesson: "Lesson_0_Welcome.md"},
			{UserID: "u1", Lesson: "Lesson_1_Deploy.md"},
			{UserID: "u1", Lesson: FinalLesson},
			{UserID: "u2", Lesson: "Lesson_0_Welcome.md"},
		},
	}}

	done, err := HasCompletedCourse(context.Background(), "u1", course, ledger)
	require.NoError(t, err)
	assert.True(t, done)

	done, err = HasCompletedCourse(context.Background(), "u2", course, ledger)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestHasCompletedCourse_DuplicateSubmissionsCountOnce(t *testing.T) {
	course := cohort.Course{
		ID:              "c",
		RequiredLessons: []string{"a.md", "b.md"},
	}
	ledger := &fakeLedger{byCourse: map[string][]submission.LessonSubmission{
		"c": {
			{UserID: "u1", Lesson: "a.md"},
			{UserID: "u1", Lesson: "a.md"},
		},
	}}

	done, err := HasCompletedCourse(context.Background(), "u1", course, ledger)
	require.NoError(t, err)
	assert.False(t, done)
}

func TestHasCompletedCourse_EmptyRequirementSetIsVacuouslyComplete(t *testing.T) {
	// Current behavior: zero required lessons means everyone "completed".
	course := cohort.Course{ID: "empty"}
	ledger := &fakeLedger{byCourse: map[string][]submission.LessonSubmission{}}

	done, err := HasCompletedCourse(context.Background(), "u1", course, ledger)
	require.NoError(t, err)
	assert.True(t, done)
}

func TestHasNoSubmissions(t *testing.T) {
	ledger := &fakeLedger{byCohort: map[string]int{"u1/A": 3}}

	none, err := HasNoSubmissions(context.Background(), "u1", "A", ledger)
	require.NoError(t, err)
	assert.False(t, none)

	none, err = HasNoSubmissions(context.Background(), "u2", "A", ledger)
	require.NoError(t, err)
	assert.True(t, none)
}

func TestFirstCohortInWindow(t *testing.T) {
	now := time.Date(2024, 3, 3, 19, 0, 0, 0, time.UTC)

	outside := cohort.Cohort{ID: "old", KickoffAt: now.Add(-200 * time.Hour)}
	first := cohort.Cohort{ID: "first", KickoffAt: now.Add(-48 * time.Hour)}
	second := cohort.Cohort{ID: "second", KickoffAt: now.Add(-48 * time.Hour)}

	got, ok := FirstCohortInWindow([]cohort.Cohort{outside, first, second}, now)
	assert.True(t, ok)
	// Single-cohort-per-run: the first match wins even when two qualify.
	assert.Equal(t, "first", got.ID)

	_, ok = FirstCohortInWindow([]cohort.Cohort{outside}, now)
	assert.False(t, ok)
}
