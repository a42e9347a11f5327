package database

import (
	"fmt"

	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/utils"
	"gorm.io/gorm"
)

// Migrate creates or updates the reservation schema.
func Migrate(db *gorm.DB) error {
	if err := db.SetupJoinTable(&models.Reservation{}, "Tables", &models.ReservationTable{}); err != nil {
		return fmt.Errorf("setup reservation_tables join: %w", err)
	}

	err := db.AutoMigrate(
		&models.Restaurant{},
		&models.Table{},
		&models.Reservation{},
		&models.ReservationTable{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}
