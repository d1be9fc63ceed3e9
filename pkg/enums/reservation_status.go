package enums

import "fmt"

// ReservationStatus tracks the reservation lifecycle.
type ReservationStatus string

const (
	ReservationStatusRequested ReservationStatus = "requested"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusPickedUp  ReservationStatus = "picked_up"
	ReservationStatusReturned  ReservationStatus = "returned"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusRequested,
	ReservationStatusConfirmed,
	ReservationStatusPickedUp,
	ReservationStatusReturned,
	ReservationStatusCancelled,
}

// String implements fmt.Stringer.
func (s ReservationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ReservationStatus.
func (s ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	switch s {
	case ReservationStatusRequested:
		return next == ReservationStatusConfirmed || next == ReservationStatusCancelled
	case ReservationStatusConfirmed:
		return next == ReservationStatusPickedUp || next == ReservationStatusCancelled
	case ReservationStatusPickedUp:
		return next == ReservationStatusReturned
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s ReservationStatus) IsTerminal() bool {
	return s == ReservationStatusReturned || s == ReservationStatusCancelled
}

// ParseReservationStatus converts raw input into a ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
