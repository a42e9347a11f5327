package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yeremiapane/table-reservation/booking"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/realtime"
	"github.com/yeremiapane/table-reservation/utils"
)

// maxLockAttempts bounds how often an edit chases a reservation whose date
// changed between the unlocked read and acquiring the day lock.
const maxLockAttempts = 3

var errDateMoved = errors.New("reservation moved to another date while waiting for its lock")

// Caller is the already-authenticated identity behind a request.
type Caller struct {
	UserID uint
	Role   string
}

func (c Caller) IsAdmin() bool {
	return c.Role == utils.RoleAdmin
}

// BookingService assigns tables to reservations and governs their lifecycle.
// Every mutation runs conflict check, allocation and commit in one
// transaction under the (restaurant, date) lock.
type BookingService struct {
	db             *gorm.DB
	locks          *DayLocker
	notifier       realtime.Notifier
	now            func() time.Time
	location       *time.Location
	maxAdvanceDays int
}

type Option func(*BookingService)

func WithNotifier(n realtime.Notifier) Option {
	return func(s *BookingService) {
		if n != nil {
			s.notifier = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *BookingService) { s.now = now }
}

func WithLocation(loc *time.Location) Option {
	return func(s *BookingService) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithMaxAdvanceDays limits how far ahead a booking may be made. 0 disables the limit.
func WithMaxAdvanceDays(days int) Option {
	return func(s *BookingService) { s.maxAdvanceDays = days }
}

func NewBookingService(db *gorm.DB, opts ...Option) *BookingService {
	s := &BookingService{
		db:       db,
		locks:    NewDayLocker(),
		notifier: realtime.Discard{},
		now:      time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateReservationInput struct {
	RestaurantID   uint
	Date           string
	StartTime      string
	GuestCount     int
	SpecialRequest *string
}

type AdminCreateReservationInput struct {
	RestaurantID   uint
	CustomerID     uint
	TableIDs       []uint
	Date           string
	StartTime      string
	GuestCount     int
	SpecialRequest *string
}

// UpdateReservationInput holds the fields to change; nil leaves a field as is.
// CustomerID and TableIDs are reserved to admins. An empty SpecialRequest
// clears it.
type UpdateReservationInput struct {
	CustomerID     *uint
	TableIDs       []uint
	Date           *string
	StartTime      *string
	GuestCount     *int
	SpecialRequest *string
}

type BookingResult struct {
	Reservation *models.Reservation
	Bumped      []models.Reservation
	BumpedCount int
}

// CreateReservation books the customer's party on automatically allocated tables.
func (s *BookingService) CreateReservation(ctx context.Context, caller Caller, in CreateReservationInput) (*models.Reservation, error) {
	if err := s.validateSlot(in.Date, in.StartTime, in.GuestCount); err != nil {
		return nil, err
	}
	end, err := booking.EndTime(in.StartTime)
	if err != nil {
		return nil, err
	}

	var res *models.Reservation
	err = s.inDayTx(ctx, in.RestaurantID, []string{in.Date}, func(tx *gorm.DB) error {
		if _, err := lockRestaurant(tx, in.RestaurantID); err != nil {
			return err
		}
		roster, err := loadRoster(tx, in.RestaurantID)
		if err != nil {
			return err
		}
		occupied, err := occupiedTables(tx, in.RestaurantID, in.Date, in.StartTime, end, 0)
		if err != nil {
			return err
		}
		tables, err := booking.Allocate(roster, occupied, booking.Request{GuestCount: in.GuestCount, Date: in.Date, Time: in.StartTime})
		if err != nil {
			return err
		}

		res = &models.Reservation{
			CustomerID:     caller.UserID,
			RestaurantID:   in.RestaurantID,
			Date:           in.Date,
			StartTime:      in.StartTime,
			EndTime:        end,
			GuestCount:     in.GuestCount,
			Status:         models.StatusConfirmed,
			SpecialRequest: normalizeRequest(in.SpecialRequest),
			CreatedBy:      models.CreatedByCustomer,
		}
		if err := tx.Omit(clause.Associations).Create(res).Error; err != nil {
			return wrapStorage("create reservation", err)
		}
		if err := replaceTables(tx, res.ID, tables); err != nil {
			return err
		}
		res.Tables = tables
		return nil
	})
	if err != nil {
		logFailure("create reservation", in.RestaurantID, in.Date, err)
		return nil, err
	}

	logCommitted("reservation created", res, 0)
	s.publish(ctx, realtime.EventReservationCreated, res)
	return res, nil
}

// AdminCreateReservation books explicit tables, bumping any active
// reservation that overlaps the window on one of them.
func (s *BookingService) AdminCreateReservation(ctx context.Context, caller Caller, in AdminCreateReservationInput) (*BookingResult, error) {
	if !caller.IsAdmin() {
		return nil, booking.ErrForbidden
	}
	if err := booking.CheckSelection(in.TableIDs); err != nil {
		return nil, err
	}
	if err := s.validateSlot(in.Date, in.StartTime, in.GuestCount); err != nil {
		return nil, err
	}
	end, err := booking.EndTime(in.StartTime)
	if err != nil {
		return nil, err
	}

	result := &BookingResult{}
	err = s.inDayTx(ctx, in.RestaurantID, []string{in.Date}, func(tx *gorm.DB) error {
		restaurant, err := lockRestaurant(tx, in.RestaurantID)
		if err != nil {
			return err
		}
		if !restaurant.OwnedBy(caller.UserID) {
			return booking.ErrForbidden.Withf("restaurant %d is managed by another admin", restaurant.ID)
		}
		tables, err := loadSelectedTables(tx, restaurant.ID, in.TableIDs)
		if err != nil {
			return err
		}
		if err := booking.CheckCapacity(tables, in.GuestCount); err != nil {
			return err
		}
		bumped, err := bumpConflicts(tx, restaurant.ID, in.Date, in.StartTime, end, in.TableIDs, 0)
		if err != nil {
			return err
		}

		res := &models.Reservation{
			CustomerID:     in.CustomerID,
			RestaurantID:   restaurant.ID,
			Date:           in.Date,
			StartTime:      in.StartTime,
			EndTime:        end,
			GuestCount:     in.GuestCount,
			Status:         models.StatusConfirmed,
			SpecialRequest: normalizeRequest(in.SpecialRequest),
			CreatedBy:      models.CreatedByAdmin,
		}
		if err := tx.Omit(clause.Associations).Create(res).Error; err != nil {
			return wrapStorage("create reservation", err)
		}
		if err := replaceTables(tx, res.ID, tables); err != nil {
			return err
		}
		res.Tables = tables

		result.Reservation = res
		result.Bumped = bumped
		result.BumpedCount = len(bumped)
		return nil
	})
	if err != nil {
		logFailure("admin create reservation", in.RestaurantID, in.Date, err)
		return nil, err
	}

	logCommitted("reservation created by admin", result.Reservation, result.BumpedCount)
	s.publish(ctx, realtime.EventReservationCreated, result.Reservation)
	s.publishBumped(ctx, result.Bumped)
	return result, nil
}

// UpdateReservation edits a non-terminal reservation. Without explicit
// tables the current ones are kept when they still fit the new window and
// party size, otherwise tables are allocated afresh.
func (s *BookingService) UpdateReservation(ctx context.Context, caller Caller, id uint, in UpdateReservationInput) (*BookingResult, error) {
	if !caller.IsAdmin() && (in.TableIDs != nil || in.CustomerID != nil) {
		return nil, booking.ErrForbidden.Withf("only restaurant admins can assign tables or customers")
	}
	if in.TableIDs != nil {
		if err := booking.CheckSelection(in.TableIDs); err != nil {
			return nil, err
		}
	}

	var extraDates []string
	if in.Date != nil {
		extraDates = append(extraDates, *in.Date)
	}

	result := &BookingResult{}
	err := s.withReservation(ctx, id, extraDates, func(tx *gorm.DB, res *models.Reservation, restaurant *models.Restaurant) error {
		if err := authorize(caller, res, restaurant); err != nil {
			return err
		}
		if err := booking.CheckEditable(res.Status); err != nil {
			return err
		}

		date, start, guests := res.Date, res.StartTime, res.GuestCount
		if in.Date != nil {
			date = *in.Date
		}
		if in.StartTime != nil {
			start = *in.StartTime
		}
		if in.GuestCount != nil {
			guests = *in.GuestCount
		}
		if err := booking.ValidateGuestCount(guests); err != nil {
			return err
		}
		if date != res.Date || start != res.StartTime {
			now := s.today()
			if err := booking.ValidateDate(date, now); err != nil {
				return err
			}
			if err := booking.ValidateHorizon(date, now, s.maxAdvanceDays); err != nil {
				return err
			}
		}
		end, err := booking.EndTime(start)
		if err != nil {
			return err
		}

		var tables []models.Table
		result.Bumped = nil
		if in.TableIDs != nil {
			tables, err = loadSelectedTables(tx, res.RestaurantID, in.TableIDs)
			if err != nil {
				return err
			}
			if err := booking.CheckCapacity(tables, guests); err != nil {
				return err
			}
			result.Bumped, err = bumpConflicts(tx, res.RestaurantID, date, start, end, in.TableIDs, res.ID)
			if err != nil {
				return err
			}
		} else {
			occupied, err := occupiedTables(tx, res.RestaurantID, date, start, end, res.ID)
			if err != nil {
				return err
			}
			if stillFits(res.Tables, occupied, guests) {
				tables = res.Tables
			} else {
				roster, err := loadRoster(tx, res.RestaurantID)
				if err != nil {
					return err
				}
				tables, err = booking.Allocate(roster, occupied, booking.Request{GuestCount: guests, Date: date, Time: start})
				if err != nil {
					return err
				}
			}
		}

		updates := map[string]interface{}{
			"date":        date,
			"start_time":  start,
			"end_time":    end,
			"guest_count": guests,
		}
		if in.SpecialRequest != nil {
			if req := normalizeRequest(in.SpecialRequest); req != nil {
				updates["special_request"] = *req
			} else {
				updates["special_request"] = nil
			}
		}
		if in.CustomerID != nil {
			updates["customer_id"] = *in.CustomerID
		}
		if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).Updates(updates).Error; err != nil {
			return wrapStorage("update reservation", err)
		}
		if err := replaceTables(tx, res.ID, tables); err != nil {
			return err
		}

		updated, err := reloadReservation(tx, res.ID)
		if err != nil {
			return err
		}
		result.Reservation = updated
		result.BumpedCount = len(result.Bumped)
		return nil
	})
	if err != nil {
		logFailure("update reservation", 0, "", err)
		return nil, err
	}

	logCommitted("reservation updated", result.Reservation, result.BumpedCount)
	s.publish(ctx, realtime.EventReservationUpdated, result.Reservation)
	s.publishBumped(ctx, result.Bumped)
	return result, nil
}

// CancelReservation moves a reservation to CANCELLED. The row and its table
// rows are kept; the tables stop counting as occupied.
func (s *BookingService) CancelReservation(ctx context.Context, caller Caller, id uint) (*models.Reservation, error) {
	return s.changeStatus(ctx, caller, id, models.StatusCancelled)
}

// UpdateStatus applies an admin status change through the state machine.
func (s *BookingService) UpdateStatus(ctx context.Context, caller Caller, id uint, status models.ReservationStatus) (*models.Reservation, error) {
	if !caller.IsAdmin() {
		return nil, booking.ErrForbidden
	}
	return s.changeStatus(ctx, caller, id, status)
}

func (s *BookingService) changeStatus(ctx context.Context, caller Caller, id uint, target models.ReservationStatus) (*models.Reservation, error) {
	var updated *models.Reservation
	err := s.withReservation(ctx, id, nil, func(tx *gorm.DB, res *models.Reservation, restaurant *models.Restaurant) error {
		if err := authorize(caller, res, restaurant); err != nil {
			return err
		}
		if err := booking.CheckTransition(res.Status, target); err != nil {
			return err
		}
		if err := tx.Model(&models.Reservation{}).Where("id = ?", res.ID).Update("status", target).Error; err != nil {
			return wrapStorage("update status", err)
		}
		var err error
		updated, err = reloadReservation(tx, res.ID)
		return err
	})
	if err != nil {
		logFailure("change status to "+string(target), 0, "", err)
		return nil, err
	}

	logCommitted("reservation status changed to "+string(target), updated, 0)
	eventType := realtime.EventReservationStatus
	if target == models.StatusCancelled {
		eventType = realtime.EventReservationCancelled
	}
	s.publish(ctx, eventType, updated)
	return updated, nil
}

// GetReservation returns a reservation visible to the caller.
func (s *BookingService) GetReservation(ctx context.Context, caller Caller, id uint) (*models.Reservation, error) {
	res, err := reloadReservation(s.db.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, res.RestaurantID).Error; err != nil {
		return nil, wrapStorage("load restaurant", err)
	}
	if err := authorize(caller, res, &restaurant); err != nil {
		return nil, err
	}
	return res, nil
}

// ListCustomerReservations returns the caller's reservations, latest first,
// optionally filtered by status.
func (s *BookingService) ListCustomerReservations(ctx context.Context, caller Caller, status models.ReservationStatus) ([]models.Reservation, error) {
	q := s.db.WithContext(ctx).Preload("Tables").Where("customer_id = ?", caller.UserID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reservations []models.Reservation
	if err := q.Order("date DESC, start_time DESC, id DESC").Find(&reservations).Error; err != nil {
		return nil, wrapStorage("list reservations", err)
	}
	return reservations, nil
}

// ListRestaurantReservations returns one day of a restaurant's bookings for its admin.
func (s *BookingService) ListRestaurantReservations(ctx context.Context, caller Caller, restaurantID uint, date string) ([]models.Reservation, error) {
	if _, err := booking.ParseDate(date, s.location); err != nil {
		return nil, err
	}
	if err := s.CheckRestaurantAccess(ctx, caller, restaurantID); err != nil {
		return nil, err
	}
	var reservations []models.Reservation
	if err := s.db.WithContext(ctx).Preload("Tables").
		Where("restaurant_id = ? AND date = ?", restaurantID, date).
		Order("start_time, id").Find(&reservations).Error; err != nil {
		return nil, wrapStorage("list reservations", err)
	}
	return reservations, nil
}

// CheckRestaurantAccess fails unless caller is the admin of restaurantID.
func (s *BookingService) CheckRestaurantAccess(ctx context.Context, caller Caller, restaurantID uint) error {
	var restaurant models.Restaurant
	if err := s.db.WithContext(ctx).First(&restaurant, restaurantID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return booking.ErrRestaurantNotFound
		}
		return wrapStorage("load restaurant", err)
	}
	if !caller.IsAdmin() || !restaurant.OwnedBy(caller.UserID) {
		return booking.ErrForbidden.Withf("restaurant %d is managed by another admin", restaurantID)
	}
	return nil
}

// withReservation runs fn in a day-locked transaction with the reservation
// re-read under the lock. extraDates are locked too (a move's target day).
func (s *BookingService) withReservation(ctx context.Context, id uint, extraDates []string,
	fn func(tx *gorm.DB, res *models.Reservation, restaurant *models.Restaurant) error) error {
	for attempt := 0; attempt < maxLockAttempts; attempt++ {
		current, err := reloadReservation(s.db.WithContext(ctx), id)
		if err != nil {
			return err
		}
		dates := append([]string{current.Date}, extraDates...)
		err = s.inDayTx(ctx, current.RestaurantID, dates, func(tx *gorm.DB) error {
			restaurant, err := lockRestaurant(tx, current.RestaurantID)
			if err != nil {
				return err
			}
			res, err := reloadReservation(tx, id)
			if err != nil {
				return err
			}
			if res.Date != current.Date {
				return errDateMoved
			}
			return fn(tx, res, restaurant)
		})
		if !errors.Is(err, errDateMoved) {
			return err
		}
	}
	return wrapStorage("lock reservation day", errDateMoved)
}

func (s *BookingService) validateSlot(date, start string, guests int) error {
	if err := booking.ValidateGuestCount(guests); err != nil {
		return err
	}
	now := s.today()
	if err := booking.ValidateDate(date, now); err != nil {
		return err
	}
	if err := booking.ValidateHorizon(date, now, s.maxAdvanceDays); err != nil {
		return err
	}
	if !booking.IsValidSlot(start) {
		return booking.ErrInvalidTimeSlot.Withf("%q is not a bookable slot", start)
	}
	return nil
}

func (s *BookingService) today() time.Time {
	return s.now().In(s.location)
}

func (s *BookingService) publish(ctx context.Context, eventType string, res *models.Reservation) {
	s.notifier.Publish(ctx, realtime.NewEvent(eventType, res.RestaurantID, res.Date, res))
}

func (s *BookingService) publishBumped(ctx context.Context, bumped []models.Reservation) {
	for i := range bumped {
		s.publish(ctx, realtime.EventReservationBumped, &bumped[i])
	}
}

func reloadReservation(tx *gorm.DB, id uint) (*models.Reservation, error) {
	var res models.Reservation
	if err := tx.Preload("Tables").First(&res, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, booking.ErrNotFound
		}
		return nil, wrapStorage("load reservation", err)
	}
	return &res, nil
}

// authorize lets admins act on their restaurant's bookings and customers on their own.
func authorize(caller Caller, res *models.Reservation, restaurant *models.Restaurant) error {
	if caller.IsAdmin() {
		if !restaurant.OwnedBy(caller.UserID) {
			return booking.ErrForbidden
		}
		return nil
	}
	if caller.UserID == 0 || res.CustomerID != caller.UserID {
		return booking.ErrForbidden
	}
	return nil
}

// stillFits reports whether the current tables can keep serving an edited
// reservation.
func stillFits(tables []models.Table, occupied map[uint]bool, guests int) bool {
	if len(tables) == 0 {
		return false
	}
	for _, t := range tables {
		if !t.IsActive || occupied[t.ID] {
			return false
		}
	}
	return models.TotalCapacity(tables) >= guests
}

func normalizeRequest(req *string) *string {
	if req == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*req)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func wrapStorage(op string, err error) error {
	return fmt.Errorf("%s: %w", op, err)
}

func logCommitted(msg string, res *models.Reservation, bumped int) {
	utils.InfoLogger.WithFields(logrus.Fields{
		"reservation_id": res.ID,
		"restaurant_id":  res.RestaurantID,
		"date":           res.Date,
		"start_time":     res.StartTime,
		"tables":         models.TableIDs(res.Tables),
		"status":         res.Status,
		"bumped":         bumped,
	}).Info(msg)
}

func logFailure(op string, restaurantID uint, date string, err error) {
	fields := logrus.Fields{"op": op}
	if restaurantID != 0 {
		fields["restaurant_id"] = restaurantID
		fields["date"] = date
	}
	if code := booking.CodeOf(err); code != "" {
		utils.InfoLogger.WithFields(fields).WithField("code", code).Info(err.Error())
		return
	}
	utils.ErrorLogger.WithFields(fields).Errorf("booking failed: %v", err)
}
