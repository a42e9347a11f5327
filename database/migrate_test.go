package database

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-reservation/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	return db
}

func TestMigrateCreatesSchema(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"restaurants", "tables", "reservations", "reservation_tables"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	// Running again is harmless.
	require.NoError(t, Migrate(db))
}

func TestGridPositionIsUniquePerRestaurant(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	require.NoError(t, db.Create(&models.Table{RestaurantID: 1, Label: "A1", Capacity: 2, GridRow: 0, GridCol: 0, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Table{RestaurantID: 2, Label: "A1", Capacity: 2, GridRow: 0, GridCol: 0, IsActive: true}).Error)
	assert.Error(t, db.Create(&models.Table{RestaurantID: 1, Label: "A2", Capacity: 4, GridRow: 0, GridCol: 0, IsActive: true}).Error)
}

func TestReservationTablesPreload(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, Migrate(db))

	t1 := models.Table{RestaurantID: 1, Label: "T1", Capacity: 2, GridRow: 0, GridCol: 0, IsActive: true}
	t2 := models.Table{RestaurantID: 1, Label: "T2", Capacity: 4, GridRow: 0, GridCol: 1, IsActive: true}
	require.NoError(t, db.Create(&t1).Error)
	require.NoError(t, db.Create(&t2).Error)

	res := models.Reservation{CustomerID: 9, RestaurantID: 1, Date: "2030-01-02", StartTime: "18:00", EndTime: "20:00",
		GuestCount: 5, Status: models.StatusConfirmed, CreatedBy: models.CreatedByCustomer}
	require.NoError(t, db.Create(&res).Error)
	require.NoError(t, db.Create(&[]models.ReservationTable{
		{ReservationID: res.ID, TableID: t1.ID},
		{ReservationID: res.ID, TableID: t2.ID},
	}).Error)

	var loaded models.Reservation
	require.NoError(t, db.Preload("Tables").First(&loaded, res.ID).Error)
	assert.ElementsMatch(t, []uint{t1.ID, t2.ID}, models.TableIDs(loaded.Tables))
}
