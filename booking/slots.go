package booking

import (
	"fmt"
	"strconv"
	"time"
)

const (
	DateLayout = "2006-01-02"

	SlotInterval    = 30 * time.Minute
	BookingDuration = 2 * time.Hour

	MinPartySize            = 1
	MaxPartySize            = 12
	MaxTablesPerReservation = 2
)

const (
	openingTime  Clock = 11 * 60
	lastSlotTime Clock = 21 * 60
)

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock parses a zero-padded "HH:MM" string.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidTimeSlot.Withf("invalid time %q, expected HH:MM", s)
	}
	h, errH := strconv.Atoi(s[:2])
	m, errM := strconv.Atoi(s[3:])
	if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, ErrInvalidTimeSlot.Withf("invalid time %q, expected HH:MM", s)
	}
	return Clock(h*60 + m), nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

func (c Clock) Add(d time.Duration) Clock {
	return c + Clock(d/time.Minute)
}

// GenerateSlots returns every bookable start time of a day in order.
func GenerateSlots() []Clock {
	step := Clock(SlotInterval / time.Minute)
	slots := make([]Clock, 0, int((lastSlotTime-openingTime)/step)+1)
	for t := openingTime; t <= lastSlotTime; t += step {
		slots = append(slots, t)
	}
	return slots
}

// IsValidSlot reports whether s is one of GenerateSlots. Times are never
// rounded to a neighbouring slot.
func IsValidSlot(s string) bool {
	c, err := ParseClock(s)
	if err != nil {
		return false
	}
	for _, slot := range GenerateSlots() {
		if slot == c {
			return true
		}
	}
	return false
}

// EndTime returns start plus BookingDuration for a valid slot.
func EndTime(start string) (string, error) {
	if !IsValidSlot(start) {
		return "", ErrInvalidTimeSlot.Withf("%q is not a bookable slot", start)
	}
	c, _ := ParseClock(start)
	return c.Add(BookingDuration).String(), nil
}

// ParseDate parses a calendar day in the given location.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate.Withf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// ValidateDate rejects malformed dates and days strictly before the day of now.
func ValidateDate(date string, now time.Time) error {
	d, err := ParseDate(date, now.Location())
	if err != nil {
		return err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.Before(today) {
		return ErrPastDate.Withf("%s is in the past", date)
	}
	return nil
}

// ValidateHorizon rejects dates more than maxDays after the day of now.
// maxDays <= 0 disables the check.
func ValidateHorizon(date string, now time.Time, maxDays int) error {
	if maxDays <= 0 {
		return nil
	}
	d, err := ParseDate(date, now.Location())
	if err != nil {
		return err
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.After(today.AddDate(0, 0, maxDays)) {
		return ErrBookingTooFarAhead.Withf("reservations can be made at most %d days ahead", maxDays)
	}
	return nil
}

func ValidateGuestCount(n int) error {
	if n < MinPartySize || n > MaxPartySize {
		return ErrInvalidGuestCount
	}
	return nil
}
