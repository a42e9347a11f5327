package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yeremiapane/table-reservation/booking"
	"github.com/yeremiapane/table-reservation/models"
)

type TimeSlot struct {
	Time       string `json:"time"`
	EndTime    string `json:"end_time"`
	Available  bool   `json:"available"`
	TableCount int    `json:"table_count"`
}

// GetAvailability projects, for every slot of date, whether the allocator
// would seat a party of guests right now. Days in the past or beyond the
// booking horizon report every slot as unavailable. Nothing is reserved.
func (s *BookingService) GetAvailability(ctx context.Context, restaurantID uint, date string, guests int) ([]TimeSlot, error) {
	if err := booking.ValidateGuestCount(guests); err != nil {
		return nil, err
	}
	if _, err := booking.ParseDate(date, s.location); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)
	var restaurant models.Restaurant
	if err := db.First(&restaurant, restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrRestaurantNotFound
		}
		return nil, wrapStorage("load restaurant", err)
	}

	now := s.today()
	closed := booking.ValidateDate(date, now) != nil || booking.ValidateHorizon(date, now, s.maxAdvanceDays) != nil

	roster, err := loadRoster(db, restaurantID)
	if err != nil {
		return nil, err
	}
	reservations, err := activeReservations(db, restaurantID, date, 0)
	if err != nil {
		return nil, err
	}

	slots := booking.GenerateSlots()
	result := make([]TimeSlot, 0, len(slots))
	for _, slot := range slots {
		ts := TimeSlot{Time: slot.String(), EndTime: slot.Add(booking.BookingDuration).String()}
		if !closed {
			tables, err := booking.Allocate(roster, conflictSet(reservations, ts.Time, ts.EndTime), booking.Request{GuestCount: guests, Date: date, Time: ts.Time})
			if err == nil {
				ts.Available = true
				ts.TableCount = len(tables)
			}
		}
		result = append(result, ts)
	}
	return result, nil
}
