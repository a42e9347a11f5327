package booking

import "github.com/yeremiapane/table-reservation/models"

// CheckTransition enforces the reservation state machine. The admin bump that
// demotes a reservation to PENDING does not go through here.
func CheckTransition(from, to models.ReservationStatus) error {
	if !to.Valid() {
		return ErrInvalidStatusTransition.Withf("unknown status %q", to)
	}
	if !from.CanTransitionTo(to) {
		return ErrInvalidStatusTransition.Withf("cannot change status from %s to %s", from, to)
	}
	return nil
}

// CheckEditable rejects changes to reservations in a terminal status.
func CheckEditable(status models.ReservationStatus) error {
	if status.IsTerminal() {
		return ErrNotEditable.Withf("reservation is %s and can no longer be changed", status)
	}
	return nil
}
