// Package access holds the role model and the pure capability
// predicates every handler uses to gate visibility and actions.
package access

import (
	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/pkg/enums"
)

// User is the resolved identity a session publishes: profile data plus
// the three assignment lists access decisions read from. Values are
// replaced wholesale on session changes, never mutated in place.
type User struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  enums.UserRole

	AssignedPropertyIDs  []uuid.UUID
	AssignedEquipmentIDs []uuid.UUID
	AssignedTaskIDs      []uuid.UUID
}

// Clone returns a deep copy so callers can hand the value across
// goroutine boundaries without sharing slice backing arrays.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.AssignedPropertyIDs = append([]uuid.UUID(nil), u.AssignedPropertyIDs...)
	out.AssignedEquipmentIDs = append([]uuid.UUID(nil), u.AssignedEquipmentIDs...)
	out.AssignedTaskIDs = append([]uuid.UUID(nil), u.AssignedTaskIDs...)
	return &out
}

func contains(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
