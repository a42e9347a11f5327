package services

import (
	"context"
	"errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/table-reservation/booking"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/utils"
)

const (
	mysqlDeadlock        = 1213
	mysqlLockWaitTimeout = 1205
)

// isSerializationFailure reports storage conflicts that are safe to retry.
func isSerializationFailure(err error) bool {
	var myErr *mysqldriver.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDeadlock || myErr.Number == mysqlLockWaitTimeout
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	return false
}

// inDayTx runs fn in one transaction while holding the in-process locks of
// every (restaurant, date) it touches. A serialization failure is retried once.
func (s *BookingService) inDayTx(ctx context.Context, restaurantID uint, dates []string, fn func(tx *gorm.DB) error) error {
	keys := make([]string, 0, len(dates))
	for _, d := range dates {
		keys = append(keys, DayKey(restaurantID, d))
	}
	unlock := s.locks.Lock(keys...)
	defer unlock()

	err := s.db.WithContext(ctx).Transaction(fn)
	if isSerializationFailure(err) {
		utils.InfoLogger.WithFields(logrus.Fields{
			"restaurant_id": restaurantID,
			"dates":         dates,
		}).Warnf("serialization failure, retrying once: %v", err)
		err = s.db.WithContext(ctx).Transaction(fn)
	}
	return err
}

// lockRestaurant loads the restaurant row. Under MySQL the row is locked FOR
// UPDATE, which serializes booking transactions of one restaurant across
// processes until commit.
func lockRestaurant(tx *gorm.DB, restaurantID uint) (*models.Restaurant, error) {
	q := tx
	if tx.Dialector.Name() == "mysql" {
		q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var restaurant models.Restaurant
	if err := q.First(&restaurant, restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrRestaurantNotFound
		}
		return nil, wrapStorage("load restaurant", err)
	}
	return &restaurant, nil
}
