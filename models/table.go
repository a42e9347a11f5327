package models

import "time"

// TableCapacity is the seat count of a table. Only the tiers listed in
// CapacityTiers are valid.
type TableCapacity int

const (
	CapacityTwo  TableCapacity = 2
	CapacityFour TableCapacity = 4
	CapacitySix  TableCapacity = 6
)

var CapacityTiers = []TableCapacity{CapacityTwo, CapacityFour, CapacitySix}

func (c TableCapacity) Valid() bool {
	for _, tier := range CapacityTiers {
		if c == tier {
			return true
		}
	}
	return false
}

type Table struct {
	ID           uint          `gorm:"primaryKey" json:"id"`
	RestaurantID uint          `gorm:"not null;index;uniqueIndex:idx_table_grid" json:"restaurant_id"`
	Label        string        `gorm:"type:varchar(50);not null" json:"label"`
	Capacity     TableCapacity `gorm:"not null" json:"capacity"`
	GridRow      int           `gorm:"not null;uniqueIndex:idx_table_grid" json:"grid_row"`
	GridCol      int           `gorm:"not null;uniqueIndex:idx_table_grid" json:"grid_col"`
	IsActive     bool          `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time     `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time     `gorm:"not null" json:"updated_at"`
}

// TotalCapacity sums the seats of the given tables.
func TotalCapacity(tables []Table) int {
	total := 0
	for _, t := range tables {
		total += int(t.Capacity)
	}
	return total
}

// TableIDs returns the ids of the given tables in order.
func TableIDs(tables []Table) []uint {
	ids := make([]uint, 0, len(tables))
	for _, t := range tables {
		ids = append(ids, t.ID)
	}
	return ids
}
