// Package eligibility implements the notification eligibility rules: which
// users should receive which emails, role grants or NFT mints in response to
// a state change. Decisions are derived values, never persisted.
package eligibility

import (
	"github.com/web3camp/cohort-hub/internal/domain/cohort"
	"github.com/web3camp/cohort-hub/internal/domain/user"
)

// DecisionKind tags an eligibility decision.
type DecisionKind string

const (
	// KindSendCohortSignupEmail - the user just joined a cohort.
	KindSendCohortSignupEmail DecisionKind = "send_cohort_signup_email"

	// KindGrantDiscordRole - the user should receive a Discord role.
	KindGrantDiscordRole DecisionKind = "grant_discord_role"

	// KindMintGraduationNFT - the user completed the course.
	KindMintGraduationNFT DecisionKind = "mint_graduation_nft"

	// KindSendInactivityReminder - the user has been inactive since kickoff.
	KindSendInactivityReminder DecisionKind = "send_inactivity_reminder"
)

// Email template names, resolved server-side by the mail service.
const (
	SignupEmailTemplate   = "on_cohort_signup"
	ReminderEmailTemplate = "kickoff_email"
)

// Decision is a tagged eligibility outcome carrying the payload the
// dispatcher needs for the corresponding collaborator call. Only the fields
// of the matching kind are meaningful.
type Decision struct {
	Kind DecisionKind

	// Email payload (signup email, inactivity reminder).
	Template  string
	Subject   string
	Recipient string
	Cohort    cohort.Cohort
	Course    cohort.Course

	// Role payload.
	DiscordUserID string
	RoleID        string

	// Mint payload.
	NFTTitle string
	User     user.User
}

// SendCohortSignupEmail builds the signup email decision. The subject comes
// from the cohort's configured email content.
func SendCohortSignupEmail(c cohort.Cohort, course cohort.Course, u user.User) Decision {
	return Decision{
		Kind:      KindSendCohortSignupEmail,
		Template:  SignupEmailTemplate,
		Subject:   c.EmailContent.Subject,
		Recipient: u.Email,
		Cohort:    c,
		Course:    course,
	}
}

// GrantDiscordRole builds a role grant decision.
func GrantDiscordRole(discordUserID, roleID string) Decision {
	return Decision{
		Kind:          KindGrantDiscordRole,
		DiscordUserID: discordUserID,
		RoleID:        roleID,
	}
}

// MintGraduationNFT builds the mint decision for a graduating user.
func MintGraduationNFT(c cohort.Cohort, course cohort.Course, u user.User) Decision {
	return Decision{
		Kind:     KindMintGraduationNFT,
		Cohort:   c,
		NFTTitle: course.NFTTitle,
		User:     u,
	}
}

// SendInactivityReminder builds the day-2 reminder decision.
func SendInactivityReminder(c cohort.Cohort, course cohort.Course, u user.User) Decision {
	return Decision{
		Kind:      KindSendInactivityReminder,
		Template:  ReminderEmailTemplate,
		Subject:   c.EmailContent.Subject,
		Recipient: u.Email,
		Cohort:    c,
		Course:    course,
	}
}
