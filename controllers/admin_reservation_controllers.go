package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

type AdminReservationController struct {
	Service *services.BookingService
}

func NewAdminReservationController(svc *services.BookingService) *AdminReservationController {
	return &AdminReservationController{Service: svc}
}

type adminCreateReservationRequest struct {
	RestaurantID   uint    `json:"restaurant_id" binding:"required"`
	CustomerID     uint    `json:"customer_id" binding:"required"`
	TableIDs       []uint  `json:"table_ids" binding:"required"`
	Date           string  `json:"date" binding:"required"`
	StartTime      string  `json:"start_time" binding:"required"`
	GuestCount     int     `json:"guest_count"`
	SpecialRequest *string `json:"special_request"`
}

type adminUpdateReservationRequest struct {
	CustomerID     *uint   `json:"customer_id"`
	TableIDs       []uint  `json:"table_ids"`
	Date           *string `json:"date"`
	StartTime      *string `json:"start_time"`
	GuestCount     *int    `json:"guest_count"`
	SpecialRequest *string `json:"special_request"`
}

type updateStatusRequest struct {
	Status models.ReservationStatus `json:"status" binding:"required"`
}

// CreateReservation -> admin books explicit tables, bumping overlapping bookings
func (ac *AdminReservationController) CreateReservation(c *gin.Context) {
	var req adminCreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := ac.Service.AdminCreateReservation(c.Request.Context(), callerFrom(c), services.AdminCreateReservationInput{
		RestaurantID:   req.RestaurantID,
		CustomerID:     req.CustomerID,
		TableIDs:       req.TableIDs,
		Date:           req.Date,
		StartTime:      req.StartTime,
		GuestCount:     req.GuestCount,
		SpecialRequest: req.SpecialRequest,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", newBookingResponse(result))
}

// GetReservation -> any reservation of the admin's restaurant
func (ac *AdminReservationController) GetReservation(c *gin.Context) {
	id, ok := idParam(c, "reservation_id")
	if !ok {
		return
	}
	res, err := ac.Service.GetReservation(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation detail", res)
}

// UpdateReservation -> edit including table assignment and customer
func (ac *AdminReservationController) UpdateReservation(c *gin.Context) {
	id, ok := idParam(c, "reservation_id")
	if !ok {
		return
	}
	var req adminUpdateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	result, err := ac.Service.UpdateReservation(c.Request.Context(), callerFrom(c), id, services.UpdateReservationInput{
		CustomerID:     req.CustomerID,
		TableIDs:       req.TableIDs,
		Date:           req.Date,
		StartTime:      req.StartTime,
		GuestCount:     req.GuestCount,
		SpecialRequest: req.SpecialRequest,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", newBookingResponse(result))
}

// UpdateStatus -> confirm, complete or cancel
func (ac *AdminReservationController) UpdateStatus(c *gin.Context) {
	id, ok := idParam(c, "reservation_id")
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	res, err := ac.Service.UpdateStatus(c.Request.Context(), callerFrom(c), id, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation status updated", res)
}

// CancelReservation -> DELETE cancels; rows are kept for history
func (ac *AdminReservationController) CancelReservation(c *gin.Context) {
	id, ok := idParam(c, "reservation_id")
	if !ok {
		return
	}
	res, err := ac.Service.CancelReservation(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation cancelled", res)
}

// ListReservations -> /admin/restaurants/:restaurant_id/reservations?date=YYYY-MM-DD
func (ac *AdminReservationController) ListReservations(c *gin.Context) {
	restaurantID, ok := idParam(c, "restaurant_id")
	if !ok {
		return
	}
	reservations, err := ac.Service.ListRestaurantReservations(c.Request.Context(), callerFrom(c), restaurantID, c.Query("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}
