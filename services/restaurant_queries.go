package services

import (
	"context"

	"github.com/yeremiapane/table-reservation/models"
)

// DaySummary is an admin's overview of one restaurant day.
type DaySummary struct {
	RestaurantID uint                             `json:"restaurant_id"`
	Date         string                           `json:"date"`
	Reservations int                              `json:"reservations"`
	ByStatus     map[models.ReservationStatus]int `json:"by_status"`
	Guests       int                              `json:"guests"`
	Unseated     int                              `json:"unseated"`
	ActiveTables int                              `json:"active_tables"`
}

// ListTables returns the full floor plan of a restaurant, retired tables
// included, in grid order.
func (s *BookingService) ListTables(ctx context.Context, caller Caller, restaurantID uint) ([]models.Table, error) {
	if err := s.CheckRestaurantAccess(ctx, caller, restaurantID); err != nil {
		return nil, err
	}
	var tables []models.Table
	if err := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID).
		Order("grid_row, grid_col").Find(&tables).Error; err != nil {
		return nil, wrapStorage("list tables", err)
	}
	return tables, nil
}

// GetDaySummary counts a day's reservations per status. Guests and Unseated
// only consider active reservations; Unseated ones were bumped and hold no table.
func (s *BookingService) GetDaySummary(ctx context.Context, caller Caller, restaurantID uint, date string) (*DaySummary, error) {
	reservations, err := s.ListRestaurantReservations(ctx, caller, restaurantID, date)
	if err != nil {
		return nil, err
	}
	roster, err := loadRoster(s.db.WithContext(ctx), restaurantID)
	if err != nil {
		return nil, err
	}

	summary := &DaySummary{
		RestaurantID: restaurantID,
		Date:         date,
		Reservations: len(reservations),
		ByStatus:     make(map[models.ReservationStatus]int),
		ActiveTables: len(roster),
	}
	for _, r := range reservations {
		summary.ByStatus[r.Status]++
		if r.Status.IsTerminal() {
			continue
		}
		summary.Guests += r.GuestCount
		if len(r.Tables) == 0 {
			summary.Unseated++
		}
	}
	return summary, nil
}
