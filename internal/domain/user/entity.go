// Package user contains the user document model and the snapshot diff rules
// that drive signup and Discord-connect notifications. This is core business
// logic - no external dependencies.
package user

import (
	"context"

	"github.com/web3camp/cohort-hub/internal/domain/shared"
)

// DiscordIdentity is the linked chat-platform identity of a user.
// The zero value means "not connected".
type DiscordIdentity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Connected reports whether the identity is present.
func (d DiscordIdentity) Connected() bool {
	return d.ID != ""
}

// CohortMembership records that a user joined a cohort.
// Memberships only ever grow; the platform never removes one.
type CohortMembership struct {
	CohortID string `json:"cohort_id"`
}

// User is a point-in-time snapshot of a user document. The storage layer
// mutates documents; this package only compares snapshots.
type User struct {
	ID      string             `json:"id"`
	Email   string             `json:"email"`
	Discord DiscordIdentity    `json:"discord"`
	Cohorts []CohortMembership `json:"cohorts"`
}

// MembershipFor returns the user's membership in the given cohort, if any.
func (u User) MembershipFor(cohortID string) (CohortMembership, bool) {
	for _, m := range u.Cohorts {
		if m.CohortID == cohortID {
			return m, true
		}
	}
	return CohortMembership{}, false
}

// NewCohortMemberships computes the memberships present in after whose cohort
// id is absent from before. A nil or empty before membership list is treated
// as the empty set, so every membership of after counts as new.
//
// Because memberships only grow, set difference by cohort id is sufficient.
// Total and pure: no error conditions.
func NewCohortMemberships(before, after User) []CohortMembership {
	seen := make(map[string]struct{}, len(before.Cohorts))
	for _, m := range before.Cohorts {
		seen[m.CohortID] = struct{}{}
	}

	var added []CohortMembership
	for _, m := range after.Cohorts {
		if _, ok := seen[m.CohortID]; !ok {
			added = append(added, m)
		}
	}
	return added
}

// DiscordNewlyConnected reports whether after carries a Discord identity that
// before did not: true iff after has a non-empty id AND it differs from
// before's id (including the case where before had none). Total and pure.
func DiscordNewlyConnected(before, after User) bool {
	return after.Discord.ID != "" && after.Discord.ID != before.Discord.ID
}

// Repository is the read surface the handlers need over user documents.
type Repository interface {
	// Get returns the user document or shared.ErrNotFound.
	Get(ctx context.Context, id string) (User, error)

	// ListAll returns a point-in-time snapshot of every user document.
	// No consistency guarantee against concurrent writes.
	ListAll(ctx context.Context) ([]User, error)
}

// UpdatedEvent is published when a user document changes.
type UpdatedEvent struct {
	shared.BaseEvent
	Before User `json:"before"`
	After  User `json:"after"`
}

// NewUpdatedEvent creates an UpdatedEvent for the given snapshots.
func NewUpdatedEvent(before, after User) UpdatedEvent {
	return UpdatedEvent{
		BaseEvent: shared.NewBaseEvent(shared.EventUserUpdated, after.ID),
		Before:    before,
		After:     after,
	}
}
