// Package identity is the backing identity and profile store: it owns
// credentials, profile rows, assignment lists, and the persisted
// session slot the session manager resumes from.
package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/pkg/enums"
)

// ErrProfileMissing reports that an identity exists but has no profile
// row yet. Signup can leave the store in this state when the profile
// insert fails after the identity is created; there is deliberately no
// compensating rollback.
var ErrProfileMissing = errors.New("identity has no profile")

// EventKind tags a session-change notification.
type EventKind string

const (
	EventSignedIn  EventKind = "signed_in"
	EventSignedOut EventKind = "signed_out"
)

// Event is a session-change notification. IdentityID is set only for
// signed-in events.
type Event struct {
	Kind       EventKind
	IdentityID uuid.UUID
}

// Session is the persisted authentication state for one client slot.
type Session struct {
	IdentityID uuid.UUID
	Email      string
}

// Profile carries the application-level data attached to an identity.
type Profile struct {
	Name string
	Role enums.UserRole
}

// ProfileRecord is the insert payload for a new profile row.
type ProfileRecord struct {
	ID   uuid.UUID
	Name string
	Role enums.UserRole
}

// Store is the identity and profile contract the session manager
// consumes. Signed-in and signed-out notifications fire on the same
// goroutine that triggered them; cancelling a subscription blocks
// until any in-flight delivery finishes, so no callback runs after
// cancel returns.
type Store interface {
	CurrentSession(ctx context.Context) (*Session, error)
	OnSessionChange(fn func(Event)) (cancel func())
	SignInWithPassword(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, email, password string) (uuid.UUID, error)
	SignOut(ctx context.Context) error
	Profile(ctx context.Context, identityID uuid.UUID) (*Profile, error)
	InsertProfile(ctx context.Context, record ProfileRecord) error
	ListAssignments(ctx context.Context, kind enums.AssignmentKind, userID uuid.UUID) ([]uuid.UUID, error)
}
