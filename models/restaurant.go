package models

import "time"

type Restaurant struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	AdminID   uint      `gorm:"not null;uniqueIndex" json:"admin_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Address   string    `gorm:"type:varchar(255)" json:"address"`
	GridRows  int       `gorm:"not null;default:1" json:"grid_rows"`
	GridCols  int       `gorm:"not null;default:1" json:"grid_cols"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
	Tables    []Table   `gorm:"foreignKey:RestaurantID" json:"tables,omitempty"`
}

// OwnedBy reports whether the given admin manages this restaurant.
func (r *Restaurant) OwnedBy(adminID uint) bool {
	return adminID != 0 && r.AdminID == adminID
}

// InGrid reports whether a grid coordinate lies inside the restaurant floor plan.
func (r *Restaurant) InGrid(row, col int) bool {
	return row >= 0 && col >= 0 && row < r.GridRows && col < r.GridCols
}
