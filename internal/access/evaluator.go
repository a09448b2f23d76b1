package access

import (
	"github.com/google/uuid"

	"github.com/terra-cloud/terra-backend/pkg/enums"
)

// Evaluator answers capability questions for one User. All methods are
// pure and total: a nil user yields the most restrictive answer, never
// an error. The role asymmetries below (managers get blanket equipment
// access but assignment-scoped properties and tasks) are deliberate
// policy and must not be unified.
type Evaluator struct {
	user *User
}

// NewEvaluator wraps the given user, which may be nil for an
// unauthenticated caller.
func NewEvaluator(user *User) *Evaluator {
	return &Evaluator{user: user}
}

// User returns the wrapped user, nil when unauthenticated.
func (e *Evaluator) User() *User {
	return e.user
}

func (e *Evaluator) IsAdmin() bool {
	return e.user != nil && e.user.Role == enums.UserRoleAdmin
}

func (e *Evaluator) IsManager() bool {
	return e.user != nil && e.user.Role == enums.UserRoleManager
}

func (e *Evaluator) IsFieldTechnician() bool {
	return e.user != nil && e.user.Role == enums.UserRoleFieldTechnician
}

// CanAccessProperty is a flat two-tier rule: admins see everything,
// managers and technicians alike are limited to their assignment list.
func (e *Evaluator) CanAccessProperty(propertyID uuid.UUID) bool {
	if e.user == nil {
		return false
	}
	switch e.user.Role {
	case enums.UserRoleAdmin:
		return true
	case enums.UserRoleManager, enums.UserRoleFieldTechnician:
		return contains(e.user.AssignedPropertyIDs, propertyID)
	default:
		return false
	}
}

// CanAccessEquipment gives managers blanket access to the shared
// equipment pool; technicians stay assignment-scoped.
func (e *Evaluator) CanAccessEquipment(equipmentID uuid.UUID) bool {
	if e.user == nil {
		return false
	}
	switch e.user.Role {
	case enums.UserRoleAdmin, enums.UserRoleManager:
		return true
	case enums.UserRoleFieldTechnician:
		return contains(e.user.AssignedEquipmentIDs, equipmentID)
	default:
		return false
	}
}

// CanAccessTask is assignment-scoped for managers too, unlike
// equipment.
func (e *Evaluator) CanAccessTask(taskID uuid.UUID) bool {
	if e.user == nil {
		return false
	}
	switch e.user.Role {
	case enums.UserRoleAdmin:
		return true
	case enums.UserRoleManager, enums.UserRoleFieldTechnician:
		return contains(e.user.AssignedTaskIDs, taskID)
	default:
		return false
	}
}

func (e *Evaluator) CanViewEmployees() bool {
	if e.user == nil {
		return false
	}
	switch e.user.Role {
	case enums.UserRoleAdmin, enums.UserRoleManager:
		return true
	case enums.UserRoleFieldTechnician:
		return false
	default:
		return false
	}
}

// UserProperties returns a copy of the assignment list. Admins get
// their own (usually empty) list, not "all properties"; callers that
// need everything check IsAdmin separately. The result is always
// non-nil: repositories treat nil as "no restriction", so an empty
// assignment list must stay an empty slice.
func (e *Evaluator) UserProperties() []uuid.UUID {
	if e.user == nil {
		return []uuid.UUID{}
	}
	return append([]uuid.UUID{}, e.user.AssignedPropertyIDs...)
}
