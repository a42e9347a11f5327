package booking

import (
	"errors"
	"fmt"
)

// Error is a categorized, user-facing failure carrying a stable code.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) ErrorCode() string {
	return e.Code
}

// Is matches any *Error with the same code, so errors.Is(err, ErrPastDate)
// holds for messages built with Withf.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Withf returns a copy of e with a more specific message.
func (e *Error) Withf(format string, args ...interface{}) *Error {
	return &Error{Code: e.Code, Message: fmt.Sprintf(format, args...)}
}

var (
	ErrInvalidDate             = &Error{Code: "INVALID_DATE", Message: "date must be formatted as YYYY-MM-DD"}
	ErrPastDate                = &Error{Code: "PAST_DATE", Message: "reservation date is in the past"}
	ErrInvalidTimeSlot         = &Error{Code: "INVALID_TIME_SLOT", Message: "start time is not a bookable slot"}
	ErrInvalidGuestCount       = &Error{Code: "INVALID_GUEST_COUNT", Message: fmt.Sprintf("guest count must be between %d and %d", MinPartySize, MaxPartySize)}
	ErrBookingTooFarAhead      = &Error{Code: "BOOKING_TOO_FAR_AHEAD", Message: "reservation date is beyond the booking horizon"}
	ErrNoTablesAvailable       = &Error{Code: "NO_TABLES_AVAILABLE", Message: "no tables available"}
	ErrInsufficientCapacity    = &Error{Code: "INSUFFICIENT_CAPACITY", Message: "selected tables cannot seat the party"}
	ErrInvalidTableSelection   = &Error{Code: "INVALID_TABLE_SELECTION", Message: fmt.Sprintf("between 1 and %d distinct tables must be selected", MaxTablesPerReservation)}
	ErrInvalidStatusTransition = &Error{Code: "INVALID_STATUS_TRANSITION", Message: "status transition is not allowed"}
	ErrNotEditable             = &Error{Code: "NOT_EDITABLE", Message: "reservation can no longer be changed"}
	ErrNotFound                = &Error{Code: "NOT_FOUND", Message: "reservation not found"}
	ErrForbidden               = &Error{Code: "FORBIDDEN", Message: "you do not have permission for this reservation"}
	ErrRestaurantNotFound      = &Error{Code: "RESTAURANT_NOT_FOUND", Message: "restaurant not found"}
	ErrTableNotFound           = &Error{Code: "TABLE_NOT_FOUND", Message: "table not found"}
)

// NoTablesAvailableError reports a failed allocation with the request that
// could not be seated.
type NoTablesAvailableError struct {
	GuestCount int
	Date       string
	Time       string
}

func (e *NoTablesAvailableError) Error() string {
	if e.Date == "" {
		return fmt.Sprintf("no tables available for %d guests at %s", e.GuestCount, e.Time)
	}
	return fmt.Sprintf("no tables available for %d guests on %s at %s", e.GuestCount, e.Date, e.Time)
}

func (e *NoTablesAvailableError) ErrorCode() string {
	return ErrNoTablesAvailable.Code
}

func (e *NoTablesAvailableError) Is(target error) bool {
	return target == ErrNoTablesAvailable
}

// CodeOf returns the stable code carried by err, or "" for uncategorized errors.
func CodeOf(err error) string {
	var coded interface{ ErrorCode() string }
	if errors.As(err, &coded) {
		return coded.ErrorCode()
	}
	return ""
}
