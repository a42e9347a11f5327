package services

import (
	"gorm.io/gorm"

	"github.com/yeremiapane/table-reservation/booking"
	"github.com/yeremiapane/table-reservation/models"
)

// activeReservations returns the PENDING and CONFIRMED reservations of a
// restaurant day with their tables, skipping excludeID when non-zero.
func activeReservations(tx *gorm.DB, restaurantID uint, date string, excludeID uint) ([]models.Reservation, error) {
	q := tx.Preload("Tables").
		Where("restaurant_id = ? AND date = ? AND status IN ?", restaurantID, date, models.ActiveStatuses)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var reservations []models.Reservation
	if err := q.Order("start_time, id").Find(&reservations).Error; err != nil {
		return nil, wrapStorage("load reservations", err)
	}
	return reservations, nil
}

// conflictSet returns the ids of tables claimed by any of reservations whose
// window overlaps [start,end). Callers pass only active reservations.
func conflictSet(reservations []models.Reservation, start, end string) map[uint]bool {
	occupied := make(map[uint]bool)
	for _, r := range reservations {
		if !booking.Overlaps(r.StartTime, r.EndTime, start, end) {
			continue
		}
		for _, t := range r.Tables {
			occupied[t.ID] = true
		}
	}
	return occupied
}

// occupiedTables is the conflict index for one window of a restaurant day.
func occupiedTables(tx *gorm.DB, restaurantID uint, date, start, end string, excludeID uint) (map[uint]bool, error) {
	reservations, err := activeReservations(tx, restaurantID, date, excludeID)
	if err != nil {
		return nil, err
	}
	return conflictSet(reservations, start, end), nil
}

// loadRoster returns the active tables of a restaurant.
func loadRoster(tx *gorm.DB, restaurantID uint) ([]models.Table, error) {
	var tables []models.Table
	if err := tx.Where("restaurant_id = ? AND is_active = ?", restaurantID, true).Order("id").Find(&tables).Error; err != nil {
		return nil, wrapStorage("load tables", err)
	}
	return tables, nil
}

// loadSelectedTables resolves an explicit selection. Every id must be an
// active table of the restaurant.
func loadSelectedTables(tx *gorm.DB, restaurantID uint, ids []uint) ([]models.Table, error) {
	if err := booking.CheckSelection(ids); err != nil {
		return nil, err
	}
	var found []models.Table
	if err := tx.Where("id IN ? AND restaurant_id = ? AND is_active = ?", ids, restaurantID, true).Find(&found).Error; err != nil {
		return nil, wrapStorage("load selected tables", err)
	}
	byID := make(map[uint]models.Table, len(found))
	for _, t := range found {
		byID[t.ID] = t
	}
	tables := make([]models.Table, 0, len(ids))
	for _, id := range ids {
		t, ok := byID[id]
		if !ok {
			return nil, booking.ErrTableNotFound.Withf("table %d does not exist, is retired, or belongs to another restaurant", id)
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// bumpConflicts strips the tables of every active reservation that overlaps
// [start,end) and holds one of tableIDs, and demotes it to PENDING. It must
// run before the caller inserts its own table rows.
func bumpConflicts(tx *gorm.DB, restaurantID uint, date, start, end string, tableIDs []uint, excludeID uint) ([]models.Reservation, error) {
	reservations, err := activeReservations(tx, restaurantID, date, excludeID)
	if err != nil {
		return nil, err
	}

	var bumped []models.Reservation
	for _, r := range reservations {
		if !booking.Overlaps(r.StartTime, r.EndTime, start, end) || !holdsAny(r, tableIDs) {
			continue
		}
		if err := tx.Where("reservation_id = ?", r.ID).Delete(&models.ReservationTable{}).Error; err != nil {
			return nil, wrapStorage("release bumped tables", err)
		}
		if err := tx.Model(&models.Reservation{}).Where("id = ?", r.ID).
			Update("status", models.StatusPending).Error; err != nil {
			return nil, wrapStorage("demote bumped reservation", err)
		}
		r.Status = models.StatusPending
		r.Tables = []models.Table{}
		bumped = append(bumped, r)
	}
	return bumped, nil
}

func holdsAny(r models.Reservation, tableIDs []uint) bool {
	for _, id := range tableIDs {
		if r.HoldsTable(id) {
			return true
		}
	}
	return false
}

// replaceTables swaps the reservation's table rows for tables.
func replaceTables(tx *gorm.DB, reservationID uint, tables []models.Table) error {
	if err := tx.Where("reservation_id = ?", reservationID).Delete(&models.ReservationTable{}).Error; err != nil {
		return wrapStorage("delete table assignments", err)
	}
	if len(tables) == 0 {
		return nil
	}
	rows := make([]models.ReservationTable, 0, len(tables))
	for _, t := range tables {
		rows = append(rows, models.ReservationTable{ReservationID: reservationID, TableID: t.ID})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return wrapStorage("insert table assignments", err)
	}
	return nil
}
