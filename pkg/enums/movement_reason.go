package enums

import "fmt"

// MovementReason classifies a stock journal entry.
type MovementReason string

const (
	MovementReasonReserve MovementReason = "reserve"
	MovementReasonRelease MovementReason = "release"
	MovementReasonRestock MovementReason = "restock"
	MovementReasonManual  MovementReason = "manual"
)

var validMovementReasons = []MovementReason{
	MovementReasonReserve,
	MovementReasonRelease,
	MovementReasonRestock,
	MovementReasonManual,
}

// String implements fmt.Stringer.
func (m MovementReason) String() string {
	return string(m)
}

// IsValid reports whether the value is a known MovementReason.
func (m MovementReason) IsValid() bool {
	for _, candidate := range validMovementReasons {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMovementReason converts raw input into a MovementReason.
func ParseMovementReason(value string) (MovementReason, error) {
	for _, candidate := range validMovementReasons {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement reason %q", value)
}
