package dispatch

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/web3camp/cohort-hub/internal/domain/cohort"
	"github.com/web3camp/cohort-hub/internal/domain/eligibility"
	"github.com/web3camp/cohort-hub/internal/domain/user"
)

type stubEmail struct {
	calls []string
	err   error
}

func (s *stubEmail) Send(_ context.Context, template, _, to string, _ EmailParams) error {
	s.calls = append(s.calls, template+"->"+to)
	return s.err
}

type stubRoles struct {
	calls []string
	err   error
}

func (s *stubRoles) GrantRole(_ context.Context, discordUserID, roleID string) error {
	s.calls = append(s.calls, discordUserID+"/"+roleID)
	return s.err
}

type stubMinter struct {
	calls int
	err   error
}

func (s *stubMinter) Mint(context.Context, cohort.Cohort, string, user.User) error {
	s.calls++
	return s.err
}

func TestDispatch_EmailOutcomeIsReturned(t *testing.T) {
	email := &stubEmail{err: errors.New("mail service down")}
	d := NewDispatcher(email, &stubRoles{}, &stubMinter{}, nil)

	c := cohort.Cohort{ID: "A", EmailContent: cohort.EmailContent{Subject: "Bem-vindo"}}
	u := user.User{ID: "u1", Email: "aluno@example.com"}

	err := d.Dispatch(context.Background(), eligibility.SendCohortSignupEmail(c, cohort.Course{}, u))
	require.Error(t, err)
	assert.Equal(t, []string{eligibility.SignupEmailTemplate + "->aluno@example.com"}, email.calls)
}

func TestDispatch_RoleFailureIsSwallowed(t *testing.T) {
	roles := &stubRoles{err: errors.New("missing permissions")}
	d := NewDispatcher(&stubEmail{}, roles, &stubMinter{}, nil)

	err := d.Dispatch(context.Background(), eligibility.GrantDiscordRole("discord-1", "role-1"))
	require.NoError(t, err)
	assert.Equal(t, []string{"discord-1/role-1"}, roles.calls)
}

func TestDispatch_RoleSkippedWithoutDiscordIdentity(t *testing.T) {
	roles := &stubRoles{}
	d := NewDispatcher(&stubEmail{}, roles, &stubMinter{}, nil)

	err := d.Dispatch(context.Background(), eligibility.GrantDiscordRole("", "role-1"))
	require.NoError(t, err)
	assert.Empty(t, roles.calls)
}

func TestDispatch_MintFailureIsSwallowed(t *testing.T) {
	minter := &stubMinter{err: errors.New("chain unavailable")}
	d := NewDispatcher(&stubEmail{}, &stubRoles{}, minter, nil)

	decision := eligibility.MintGraduationNFT(
		cohort.Cohort{ID: "A"},
		cohort.Course{NFTTitle: "Pioneer"},
		user.User{ID: "u1"},
	)
	err := d.Dispatch(context.Background(), decision)
	require.NoError(t, err)
	assert.Equal(t, 1, minter.calls)
}

func TestDispatch_UnknownKind(t *testing.T) {
	d := NewDispatcher(&stubEmail{}, &stubRoles{}, &stubMinter{}, nil)

	err := d.Dispatch(context.Background(), eligibility.Decision{Kind: "frobnicate"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown decision kind")
}
