package enums

import "fmt"

// AdjustmentStatus tracks an inventory adjustment intent from write to apply.
type AdjustmentStatus string

const (
	AdjustmentStatusPending AdjustmentStatus = "pending"
	AdjustmentStatusApplied AdjustmentStatus = "applied"
)

var validAdjustmentStatuses = []AdjustmentStatus{
	AdjustmentStatusPending,
	AdjustmentStatusApplied,
}

// String implements fmt.Stringer.
func (a AdjustmentStatus) String() string {
	return string(a)
}

// IsValid reports whether the value is a known AdjustmentStatus.
func (a AdjustmentStatus) IsValid() bool {
	for _, candidate := range validAdjustmentStatuses {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseAdjustmentStatus converts raw input into an AdjustmentStatus.
func ParseAdjustmentStatus(value string) (AdjustmentStatus, error) {
	for _, candidate := range validAdjustmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid adjustment status %q", value)
}
