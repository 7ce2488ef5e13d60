// Package dispatch turns eligibility decisions into calls against the
// external collaborators: the email service, the Discord role API and the
// NFT minting routine.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/web3camp/cohort-hub/internal/domain/cohort"
	"github.com/web3camp/cohort-hub/internal/domain/eligibility"
	"github.com/web3camp/cohort-hub/internal/domain/user"
)

// EmailParams carries the template parameters for cohort emails.
type EmailParams struct {
	Cohort cohort.Cohort `json:"cohort"`
	Course cohort.Course `json:"course"`
}

// EmailSender sends a templated email to a single recipient.
type EmailSender interface {
	Send(ctx context.Context, template, subject, to string, params EmailParams) error
}

// RoleGranter assigns a Discord role to a platform-external user id.
type RoleGranter interface {
	GrantRole(ctx context.Context, discordUserID, roleID string) error
}

// Minter mints the graduation NFT for a user.
type Minter interface {
	Mint(ctx context.Context, c cohort.Cohort, nftTitle string, u user.User) error
}

// Dispatcher issues collaborator calls on behalf of the trigger handlers.
//
// The error policy is deliberately asymmetric. Email outcomes are returned to
// the caller because the send path is also reachable from a synchronous HTTP
// handler that reports the result upstream. Role grants and mints are only
// ever reached from async triggers, where there is nobody to report to: their
// failures are logged and dropped.
//
// TODO: route role grants and mints through a durable queue so a collaborator
// outage does not silently lose the action.
type Dispatcher struct {
	email  EmailSender
	roles  RoleGranter
	minter Minter
	logger *slog.Logger
}

// NewDispatcher creates a Dispatcher over the given collaborators.
func NewDispatcher(email EmailSender, roles RoleGranter, minter Minter, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		email:  email,
		roles:  roles,
		minter: minter,
		logger: logger.With("component", "dispatcher"),
	}
}

// Dispatch executes one eligibility decision. Email decisions return the
// collaborator outcome; role and mint decisions always return nil, with
// failures handled by the log-and-drop policy.
func (d *Dispatcher) Dispatch(ctx context.Context, decision eligibility.Decision) error {
	switch decision.Kind {
	case eligibility.KindSendCohortSignupEmail, eligibility.KindSendInactivityReminder:
		params := EmailParams{Cohort: decision.Cohort, Course: decision.Course}
		return d.SendEmail(ctx, decision.Template, decision.Subject, decision.Recipient, params)

	case eligibility.KindGrantDiscordRole:
		d.GrantRole(ctx, decision.DiscordUserID, decision.RoleID)
		return nil

	case eligibility.KindMintGraduationNFT:
		d.Mint(ctx, decision.Cohort, decision.NFTTitle, decision.User)
		return nil

	default:
		return fmt.Errorf("dispatch: unknown decision kind %q", decision.Kind)
	}
}

// SendEmail sends a templated email and returns the collaborator outcome.
func (d *Dispatcher) SendEmail(ctx context.Context, template, subject, to string, params EmailParams) error {
	err := d.email.Send(ctx, template, subject, to, params)
	if err != nil {
		d.logger.Error("email send failed",
			"template", template,
			"to", to,
			"error", err,
		)
	}
	return err
}

// GrantRole grants a Discord role. Failures are logged and dropped.
func (d *Dispatcher) GrantRole(ctx context.Context, discordUserID, roleID string) {
	if discordUserID == "" {
		d.logger.Debug("skipping role grant: user has no discord identity", "role_id", roleID)
		return
	}
	if err := d.roles.GrantRole(ctx, discordUserID, roleID); err != nil {
		d.logger.Error("role grant failed",
			"discord_user_id", discordUserID,
			"role_id", roleID,
			"error", err,
		)
	}
}

// Mint mints the graduation NFT. Failures are logged and dropped.
func (d *Dispatcher) Mint(ctx context.Context, c cohort.Cohort, nftTitle string, u user.User) {
	if err := d.minter.Mint(ctx, c, nftTitle, u); err != nil {
		d.logger.Error("nft mint failed",
			"cohort_id", c.ID,
			"user_id", u.ID,
			"error", err,
		)
	}
}
