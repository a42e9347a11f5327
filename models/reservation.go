package models

import "time"

type ReservationStatus string

const (
	StatusPending   ReservationStatus = "PENDING"
	StatusConfirmed ReservationStatus = "CONFIRMED"
	StatusCancelled ReservationStatus = "CANCELLED"
	StatusCompleted ReservationStatus = "COMPLETED"
)

// ActiveStatuses are the statuses whose reservations hold their tables.
var ActiveStatuses = []ReservationStatus{StatusPending, StatusConfirmed}

var statusTransitions = map[ReservationStatus][]ReservationStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCancelled, StatusCompleted},
}

func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal is true for CANCELLED and COMPLETED.
func (s ReservationStatus) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo reports whether next is a legal successor of s.
// Re-applying the current status is never legal.
func (s ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type CreatorKind string

const (
	CreatedByCustomer CreatorKind = "CUSTOMER"
	CreatedByAdmin    CreatorKind = "ADMIN"
)

type Reservation struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	CustomerID     uint              `gorm:"not null;index" json:"customer_id"`
	RestaurantID   uint              `gorm:"not null;index:idx_reservation_day" json:"restaurant_id"`
	Date           string            `gorm:"type:varchar(10);not null;index:idx_reservation_day" json:"date"`
	StartTime      string            `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime        string            `gorm:"type:varchar(5);not null" json:"end_time"`
	GuestCount     int               `gorm:"not null" json:"guest_count"`
	Status         ReservationStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	SpecialRequest *string           `gorm:"type:text" json:"special_request,omitempty"`
	CreatedBy      CreatorKind       `gorm:"type:varchar(20);not null" json:"created_by"`
	CreatedAt      time.Time         `gorm:"not null" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"not null" json:"updated_at"`
	Tables         []Table           `gorm:"many2many:reservation_tables" json:"tables"`
}

// HoldsTable reports whether tableID is among the assigned tables.
func (r *Reservation) HoldsTable(tableID uint) bool {
	for _, t := range r.Tables {
		if t.ID == tableID {
			return true
		}
	}
	return false
}

// ReservationTable is the junction row between a reservation and one of its
// tables. A reservation owns one or two rows, replaced wholesale on edit.
type ReservationTable struct {
	ReservationID uint `gorm:"primaryKey;autoIncrement:false" json:"reservation_id"`
	TableID       uint `gorm:"primaryKey;autoIncrement:false;index" json:"table_id"`
}
