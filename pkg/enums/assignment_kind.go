package enums

import "fmt"

// AssignmentKind identifies which resource type an assignment row scopes.
type AssignmentKind string

const (
	AssignmentKindProperty  AssignmentKind = "property"
	AssignmentKindEquipment AssignmentKind = "equipment"
	AssignmentKindTask      AssignmentKind = "task"
)

var validAssignmentKinds = []AssignmentKind{
	AssignmentKindProperty,
	AssignmentKindEquipment,
	AssignmentKindTask,
}

// String implements fmt.Stringer.
func (k AssignmentKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known AssignmentKind.
func (k AssignmentKind) IsValid() bool {
	for _, candidate := range validAssignmentKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseAssignmentKind converts raw input into an AssignmentKind.
func ParseAssignmentKind(value string) (AssignmentKind, error) {
	for _, candidate := range validAssignmentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment kind %q", value)
}
