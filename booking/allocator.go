package booking

import (
	"sort"

	"github.com/yeremiapane/table-reservation/models"
)

// Request describes the party to seat. Date and Time are carried into
// NoTablesAvailableError for diagnostics only.
type Request struct {
	GuestCount int
	Date       string
	Time       string
}

// Allocate picks the tables for req from the active roster, ignoring tables
// in occupied. A single table is preferred: the smallest one that fits. When
// none fits, the pair with the smallest combined capacity wins, ties going to
// the pair whose larger table is smaller. Remaining ties resolve by table id.
func Allocate(roster []models.Table, occupied map[uint]bool, req Request) ([]models.Table, error) {
	free := make([]models.Table, 0, len(roster))
	for _, t := range roster {
		if t.IsActive && !occupied[t.ID] {
			free = append(free, t)
		}
	}
	sort.SliceStable(free, func(i, j int) bool {
		if free[i].Capacity != free[j].Capacity {
			return free[i].Capacity < free[j].Capacity
		}
		return free[i].ID < free[j].ID
	})

	for _, t := range free {
		if int(t.Capacity) >= req.GuestCount {
			return []models.Table{t}, nil
		}
	}

	bestI, bestJ := -1, -1
	bestTotal, bestLarger := 0, 0
	for i := 0; i < len(free); i++ {
		for j := i + 1; j < len(free); j++ {
			total := int(free[i].Capacity + free[j].Capacity)
			if total < req.GuestCount {
				continue
			}
			larger := int(free[j].Capacity)
			if bestI < 0 || total < bestTotal || (total == bestTotal && larger < bestLarger) {
				bestI, bestJ, bestTotal, bestLarger = i, j, total, larger
			}
		}
	}
	if bestI < 0 {
		return nil, &NoTablesAvailableError{GuestCount: req.GuestCount, Date: req.Date, Time: req.Time}
	}
	return []models.Table{free[bestI], free[bestJ]}, nil
}

// CheckSelection validates an explicit table id list: one or two distinct ids.
func CheckSelection(ids []uint) error {
	if len(ids) == 0 || len(ids) > MaxTablesPerReservation {
		return ErrInvalidTableSelection
	}
	seen := make(map[uint]bool, len(ids))
	for _, id := range ids {
		if id == 0 || seen[id] {
			return ErrInvalidTableSelection
		}
		seen[id] = true
	}
	return nil
}

// CheckCapacity fails when the tables cannot seat guests.
func CheckCapacity(tables []models.Table, guests int) error {
	if total := models.TotalCapacity(tables); total < guests {
		return ErrInsufficientCapacity.Withf("selected tables seat %d, party has %d guests", total, guests)
	}
	return nil
}
