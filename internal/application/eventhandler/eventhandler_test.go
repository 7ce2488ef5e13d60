package eventhandler

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3camp/cohort-hub/internal/application/dispatch"
	"github.com/web3camp/cohort-hub/internal/domain/cohort"
	"github.com/web3camp/cohort-hub/internal/domain/eligibility"
	"github.com/web3camp/cohort-hub/internal/domain/shared"
	"github.com/web3camp/cohort-hub/internal/domain/submission"
	"github.com/web3camp/cohort-hub/internal/domain/user"
)

// ═══════════════════════════════════════════════════════════════════════════
// FAKES
// ═══════════════════════════════════════════════════════════════════════════

type fakeUserRepo struct {
	users map[string]user.User
}

func (f *fakeUserRepo) Get(_ context.Context, id string) (user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return user.User{}, shared.NewNotFound("user", id)
	}
	return u, nil
}

func (f *fakeUserRepo) ListAll(_ context.Context) ([]user.User, error) {
	var out []user.User
	for _, u := range f.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeCohortRepo struct {
	cohorts map[string]cohort.Cohort
	courses map[string]cohort.Course
}

func (f *fakeCohortRepo) Get(_ context.Context, id string) (cohort.Cohort, error) {
	c, ok := f.cohorts[id]
	if !ok {
		return cohort.Cohort{}, shared.NewNotFound("cohort", id)
	}
	return c, nil
}

func (f *fakeCohortRepo) ListAll(_ context.Context) ([]cohort.Cohort, error) {
	var out []cohort.Cohort
	for _, c := range f.cohorts {
		out = append(out, c)
	}
	return out, nil
}

type fakeCourseRepo struct {
	courses map[string]cohort.Course
}

func (f *fakeCourseRepo) Get(_ context.Context, id string) (cohort.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return cohort.Course{}, shared.NewNotFound("course", id)
	}
	return c, nil
}

type fakeLedger struct {
	submissions []submission.LessonSubmission
}

func (f *fakeLedger) FetchSubmissions(_ context.Context, userID, _ string) ([]submission.LessonSubmission, error) {
	var out []submission.LessonSubmission
	for _, s := range f.submissions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeLedger) CountForUserInCohort(_ context.Context, userID, cohortID string) (int, error) {
	n := 0
	for _, s := range f.submissions {
		if s.UserID == userID && s.CohortID == cohortID {
			n++
		}
	}
	return n, nil
}

// fakeCollaborators records every outbound call; safe for concurrent use
// because signup actions run in parallel.
type fakeCollaborators struct {
	mu sync.Mutex

	emails []sentEmail
	grants []roleGrant
	mints  []mintCall

	emailErr error
	grantErr error
}

type sentEmail struct {
	Template, Subject, To string
	Params                dispatch.EmailParams
}

type roleGrant struct {
	DiscordUserID, RoleID string
}

type mintCall struct {
	CohortID, NFTTitle, UserID string
}

func (f *fakeCollaborators) Send(_ context.Context, template, subject, to string, params dispatch.EmailParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emails = append(f.emails, sentEmail{template, subject, to, params})
	return f.emailErr
}

func (f *fakeCollaborators) GrantRole(_ context.Context, discordUserID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.grants = append(f.grants, roleGrant{discordUserID, roleID})
	return f.grantErr
}

func (f *fakeCollaborators) Mint(_ context.Context, c cohort.Cohort, nftTitle string, u user.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mints = append(f.mints, mintCall{c.ID, nftTitle, u.ID})
	return nil
}

func newFixture() (*fakeCohortRepo, *fakeCourseRepo, *fakeCollaborators, *dispatch.Dispatcher) {
	cohorts := &fakeCohortRepo{
		cohorts: map[string]cohort.Cohort{
			"A": {
				ID:            "A",
				CourseID:      "solidity-intro",
				DiscordRoleID: "role-A",
				EmailContent:  cohort.EmailContent{Subject: "Seu primeiro Smart Contract"},
			},
		},
	}
	courses := &fakeCourseRepo{
		courses: map[string]cohort.Course{
			"solidity-intro": {
				ID:              "solidity-intro",
				RequiredLessons: []string{"Lesson_0_Welcome.md", "Lesson_1_Deploy.md", eligibility.FinalLesson},
				NFTTitle:        "Solidity Pioneer",
			},
		},
	}
	collab := &fakeCollaborators{}
	d := dispatch.NewDispatcher(collab, collab, collab, nil)
	return cohorts, courses, collab, d
}

// ═══════════════════════════════════════════════════════════════════════════
// COHORT SIGNUP
// ═══════════════════════════════════════════════════════════════════════════

func TestOnCohortSignup_NewMembershipSendsEmailAndGrantsRole(t *testing.T) {
	cohorts, courses, collab, d := newFixture()
	h := NewOnCohortSignupHandler(cohorts, courses, d, nil)

	before := user.User{ID: "u1", Email: "ana@example.com", Discord: user.DiscordIdentity{ID: "42"}}
	after := before
	after.Cohorts = []user.CohortMembership{{CohortID: "A"}}

	err := h.Handle(context.Background(), user.NewUpdatedEvent(before, after))
	require.NoError(t, err)

	require.Len(t, collab.emails, 1)
	assert.Equal(t, eligibility.SignupEmailTemplate, collab.emails[0].Template)
	assert.Equal(t, "Seu primeiro Smart Contract", collab.emails[0].Subject)
	assert.Equal(t, "ana@example.com", collab.emails[0].To)
	assert.Equal(t, "A", collab.emails[0].Params.Cohort.ID)
	assert.Equal(t, "solidity-intro", collab.emails[0].Params.Course.ID)

	require.Len(t, collab.grants, 1)
	assert.Equal(t, roleGrant{"42", "role-A"}, collab.grants[0])
}

func TestOnCohortSignup_NoChangeDoesNothing(t *testing.T) {
	cohorts, courses, collab, d := newFixture()
	h := NewOnCohortSignupHandler(cohorts, courses, d, nil)

	u := user.User{ID: "u1", Email: "ana@example.com", Cohorts: []user.CohortMembership{{CohortID: "A"}}}

	err := h.Handle(context.Background(), user.NewUpdatedEvent(u, u))
	require.NoError(t, err)
	assert.Empty(t, collab.emails)
	assert.Empty(t, collab.grants)
}

func TestOnCohortSignup_EmailFailureDoesNotCancelRoleGrant(t *testing.T) {
	cohorts, courses, collab, d := newFixture()
	collab.emailErr = errors.New("smtp down")
	h := NewOnCohortSignupHandler(cohorts, courses, d, nil)

	before := user.User{ID: "u1", Email: "ana@example.com", Discord: user.DiscordIdentity{ID: "42"}}
	after := before
	after.Cohorts = []user.CohortMembership{{CohortID: "A"}}

	err := h.Handle(context.Background(), user.NewUpdatedEvent(before, after))
	require.NoError(t, err)
	assert.Len(t, collab.grants, 1)
}

func TestOnCohortSignup_MissingCohortSkipsMembership(t *testing.T) {
	cohorts, courses, collab, d := newFixture()
	h := NewOnCohortSignupHandler(cohorts, courses, d, nil)

	before := user.User{ID: "u1", Email: "ana@example.com"}
	after := before
	after.Cohorts = []user.CohortMembership{{CohortID: "ghost"}, {CohortID: "A"}}

	err := h.Handle(context.Background(), user.NewUpdatedEvent(before, after))
	require.NoError(t, err)
	// Membership in the missing cohort is skipped; the valid one still fires.
	assert.Len(t, collab.emails, 1)
}

// ═══════════════════════════════════════════════════════════════════════════
// DISCORD CONNECT
// ═══════════════════════════════════════════════════════════════════════════

func TestOnDiscordConnect_GrantsRolePerCohort(t *testing.T) {
	cohorts, _, collab, d := newFixture()
	cohorts.cohorts["B"] = cohort.Cohort{ID: "B", CourseID: "solidity-intro", DiscordRoleID: "role-B"}
	h := NewOnDiscordConnectHandler(cohorts, d, nil)

	before := user.User{
		ID:      "u1",
		Cohorts: []user.CohortMembership{{CohortID: "A"}, {CohortID: "B"}},
	}
	after := before
	after.Discord = user.DiscordIdentity{ID: "42", Username: "ana"}

	err := h.Handle(context.Background(), user.NewUpdatedEvent(before, after))
	require.NoError(t, err)
	assert.ElementsMatch(t, []roleGrant{{"42", "role-A"}, {"42", "role-B"}}, collab.grants)
}

func TestOnDiscordConnect_UnchangedIdentityDoesNothing(t *testing.T) {
	cohorts, _, collab, d := newFixture()
	h := NewOnDiscordConnectHandler(cohorts, d, nil)

	u := user.User{
		ID:      "u1",
		Discord: user.DiscordIdentity{ID: "42"},
		Cohorts: []user.CohortMembership{{CohortID: "A"}},
	}

	err := h.Handle(context.Background(), user.NewUpdatedEvent(u, u))
	require.NoError(t, err)
	assert.Empty(t, collab.grants)
}

// ═══════════════════════════════════════════════════════════════════════════
// LESSON SUBMITTED / GRADUATION
// ═══════════════════════════════════════════════════════════════════════════

func graduationFixture(t *testing.T, submissions []submission.LessonSubmission) (*OnLessonSubmittedHandler, *fakeCollaborators) {
	t.Helper()
	cohorts, courses, collab, d := newFixture()
	users := &fakeUserRepo{users: map[string]user.User{
		"u1": {ID: "u1", Email: "ana@example.com", Discord: user.DiscordIdentity{ID: "42"}},
	}}
	ledger := &fakeLedger{submissions: submissions}
	return NewOnLessonSubmittedHandler(users, cohorts, courses, ledger, d, nil), collab
}

func TestOnLessonSubmitted_FinalLessonMintsOnce(t *testing.T) {
	h, collab := graduationFixture(t, []submission.LessonSubmission{
		{UserID: "u1", CohortID: "A", Lesson: "Lesson_0_Welcome.md"},
		{UserID: "u1", CohortID: "A", Lesson: "Lesson_1_Deploy.md"},
		{UserID: "u1", CohortID: "A", Lesson: eligibility.FinalLesson},
	})

	created := submission.LessonSubmission{ID: "s1", UserID: "u1", CohortID: "A", Lesson: eligibility.FinalLesson}
	err := h.Handle(context.Background(), submission.NewCreatedEvent(created))
	require.NoError(t, err)

	require.Len(t, collab.mints, 1)
	assert.Equal(t, mintCall{"A", "Solidity Pioneer", "u1"}, collab.mints[0])

	require.Len(t, collab.grants, 1)
	assert.Equal(t, roleGrant{"42", eligibility.GraduatedRoleID}, collab.grants[0])
}

func TestOnLessonSubmitted_OtherLessonIsIgnored(t *testing.T) {
	h, collab := graduationFixture(t, nil)

	created := submission.LessonSubmission{ID: "s1", UserID: "u1", CohortID: "A", Lesson: "Lesson_1_Deploy.md"}
	err := h.Handle(context.Background(), submission.NewCreatedEvent(created))
	require.NoError(t, err)
	assert.Empty(t, collab.mints)
	assert.Empty(t, collab.grants)
}

func TestOnLessonSubmitted_IncompleteCourseShortCircuits(t *testing.T) {
	// Final lesson submitted but an earlier lesson is missing.
	h, collab := graduationFixture(t, []submission.LessonSubmission{
		{UserID: "u1", CohortID: "A", Lesson: eligibility.FinalLesson},
	})

	created := submission.LessonSubmission{ID: "s1", UserID: "u1", CohortID: "A", Lesson: eligibility.FinalLesson}
	err := h.Handle(context.Background(), submission.NewCreatedEvent(created))
	require.NoError(t, err)
	assert.Empty(t, collab.mints)
	assert.Empty(t, collab.grants)
}
