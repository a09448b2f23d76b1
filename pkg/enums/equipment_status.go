package enums

import "fmt"

// EquipmentStatus tracks the operational state of a piece of equipment.
type EquipmentStatus string

const (
	EquipmentStatusOperational EquipmentStatus = "operational"
	EquipmentStatusMaintenance EquipmentStatus = "maintenance"
	EquipmentStatusRetired     EquipmentStatus = "retired"
)

var validEquipmentStatuses = []EquipmentStatus{
	EquipmentStatusOperational,
	EquipmentStatusMaintenance,
	EquipmentStatusRetired,
}

// IsValid reports whether the value is a known EquipmentStatus.
func (s EquipmentStatus) IsValid() bool {
	for _, candidate := range validEquipmentStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseEquipmentStatus converts raw input into an EquipmentStatus.
func ParseEquipmentStatus(value string) (EquipmentStatus, error) {
	for _, candidate := range validEquipmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid equipment status %q", value)
}
