package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-reservation/booking"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

type ReservationController struct {
	Service *services.BookingService
}

func NewReservationController(svc *services.BookingService) *ReservationController {
	return &ReservationController{Service: svc}
}

type createReservationRequest struct {
	RestaurantID   uint    `json:"restaurant_id" binding:"required"`
	Date           string  `json:"date" binding:"required"`
	StartTime      string  `json:"start_time" binding:"required"`
	GuestCount     int     `json:"guest_count"`
	SpecialRequest *string `json:"special_request"`
}

type updateReservationRequest struct {
	Date           *string `json:"date"`
	StartTime      *string `json:"start_time"`
	GuestCount     *int    `json:"guest_count"`
	SpecialRequest *string `json:"special_request"`
}

// CreateReservation -> customer books a table, allocated automatically
func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	res, err := rc.Service.CreateReservation(c.Request.Context(), callerFrom(c), services.CreateReservationInput{
		RestaurantID:   req.RestaurantID,
		Date:           req.Date,
		StartTime:      req.StartTime,
		GuestCount:     req.GuestCount,
		SpecialRequest: req.SpecialRequest,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", res)
}

// GetReservation -> detail of one of the caller's reservations
func (rc *ReservationController) GetReservation(c *gin.Context) {
	id, ok := idParam(c, "reservation_id")
	if !ok {
		return
	}
	res, err := rc.Service.GetReservation(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", res)
}

// ListMyReservations -> caller's reservations, optionally ?status=
func (rc *ReservationController) ListMyReservations(c *gin.Context) {
	status := models.ReservationStatus(c.Query("status"))
	if status != "" && !status.Valid() {
		utils.RespondAppError(c, http.StatusBadRequest, codeBadRequest, "unknown status "+strconv.Quote(string(status)))
		return
	}
	reservations, err := rc.Service.ListCustomerReservations(c.Request.Context(), callerFrom(c), status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

// UpdateReservation -> change date, time, party size or special request
func (rc *ReservationController) UpdateReservation(c *gin.Context) {
	id, ok := idParam(c, "reservation_id")
	if !ok {
		return
	}
	var req updateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := rc.Service.UpdateReservation(c.Request.Context(), callerFrom(c), id, services.UpdateReservationInput{
		Date:           req.Date,
		StartTime:      req.StartTime,
		GuestCount:     req.GuestCount,
		SpecialRequest: req.SpecialRequest,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", result.Reservation)
}

// CancelReservation -> releases the tables; the reservation is kept as CANCELLED
func (rc *ReservationController) CancelReservation(c *gin.Context) {
	id, ok := idParam(c, "reservation_id")
	if !ok {
		return
	}
	res, err := rc.Service.CancelReservation(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", res)
}

// GetAvailability -> /restaurants/:restaurant_id/availability?date=YYYY-MM-DD&guests=N
func (rc *ReservationController) GetAvailability(c *gin.Context) {
	restaurantID, ok := idParam(c, "restaurant_id")
	if !ok {
		return
	}
	date := c.Query("date")
	if date == "" {
		respondServiceError(c, booking.ErrInvalidDate)
		return
	}
	guests, err := strconv.Atoi(c.Query("guests"))
	if err != nil {
		respondServiceError(c, booking.ErrInvalidGuestCount)
		return
	}

	slots, err := rc.Service.GetAvailability(c.Request.Context(), restaurantID, date, guests)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Availability", gin.H{
		"restaurant_id": restaurantID,
		"date":          date,
		"guests":        guests,
		"slots":         slots,
	})
}
