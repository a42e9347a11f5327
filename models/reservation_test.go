package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReservationStatusTransitions(t *testing.T) {
	cases := []struct {
		from ReservationStatus
		to   ReservationStatus
		want bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusPending, false},
		{StatusConfirmed, StatusConfirmed, false},
		{StatusCancelled, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCancelled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCompleted, StatusConfirmed, false},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestReservationStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusConfirmed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, ReservationStatus("SEATED").Valid())
}

func TestTableCapacityTiers(t *testing.T) {
	assert.True(t, CapacityTwo.Valid())
	assert.True(t, CapacitySix.Valid())
	assert.False(t, TableCapacity(3).Valid())
	assert.False(t, TableCapacity(0).Valid())

	tables := []Table{{ID: 1, Capacity: CapacityTwo}, {ID: 7, Capacity: CapacityFour}}
	assert.Equal(t, 6, TotalCapacity(tables))
	assert.Equal(t, []uint{1, 7}, TableIDs(tables))
}

func TestRestaurantOwnershipAndGrid(t *testing.T) {
	r := Restaurant{AdminID: 3, GridRows: 2, GridCols: 3}
	assert.True(t, r.OwnedBy(3))
	assert.False(t, r.OwnedBy(4))
	assert.False(t, r.OwnedBy(0))
	assert.True(t, r.InGrid(1, 2))
	assert.False(t, r.InGrid(2, 0))
	assert.False(t, r.InGrid(0, -1))
}

func TestReservationHoldsTable(t *testing.T) {
	r := Reservation{Tables: []Table{{ID: 2}, {ID: 5}}}
	assert.True(t, r.HoldsTable(5))
	assert.False(t, r.HoldsTable(3))
}
