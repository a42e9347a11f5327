package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/yeremiapane/table-reservation/booking"
	"github.com/yeremiapane/table-reservation/middlewares"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

// errorStatus maps booking error codes to HTTP statuses.
var errorStatus = map[string]int{
	booking.ErrInvalidDate.Code:             http.StatusBadRequest,
	booking.ErrPastDate.Code:                http.StatusBadRequest,
	booking.ErrInvalidTimeSlot.Code:         http.StatusBadRequest,
	booking.ErrInvalidGuestCount.Code:       http.StatusBadRequest,
	booking.ErrBookingTooFarAhead.Code:      http.StatusBadRequest,
	booking.ErrInvalidTableSelection.Code:   http.StatusBadRequest,
	booking.ErrInsufficientCapacity.Code:    http.StatusUnprocessableEntity,
	booking.ErrNoTablesAvailable.Code:       http.StatusConflict,
	booking.ErrInvalidStatusTransition.Code: http.StatusConflict,
	booking.ErrNotEditable.Code:             http.StatusConflict,
	booking.ErrForbidden.Code:               http.StatusForbidden,
	booking.ErrNotFound.Code:                http.StatusNotFound,
	booking.ErrRestaurantNotFound.Code:      http.StatusNotFound,
	booking.ErrTableNotFound.Code:           http.StatusNotFound,
}

const (
	codeBadRequest = "BAD_REQUEST"
	codeInternal   = "INTERNAL_ERROR"
)

func respondServiceError(c *gin.Context, err error) {
	code := booking.CodeOf(err)
	status, ok := errorStatus[code]
	if !ok {
		utils.ErrorLogger.WithFields(logrus.Fields{
			"request_id": c.GetString(middlewares.ContextRequestID),
			"path":       c.FullPath(),
		}).Errorf("request failed: %v", err)
		utils.RespondAppError(c, http.StatusInternalServerError, codeInternal, "internal server error")
		return
	}
	utils.RespondAppError(c, status, code, err.Error())
}

func respondBadRequest(c *gin.Context, err error) {
	utils.RespondAppError(c, http.StatusBadRequest, codeBadRequest, err.Error())
}

// callerFrom reads the identity stored by the auth middleware.
func callerFrom(c *gin.Context) services.Caller {
	userID, _ := c.Get(middlewares.ContextUserID)
	id, _ := userID.(uint)
	return services.Caller{UserID: id, Role: c.GetString(middlewares.ContextRole)}
}

// idParam parses a positive numeric path parameter, responding 400 when it is not one.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.RespondAppError(c, http.StatusBadRequest, codeBadRequest, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bookingResponse is the body of admin mutations that may bump other reservations.
type bookingResponse struct {
	Reservation          interface{} `json:"reservation"`
	BumpedCount          int         `json:"bumped_count"`
	BumpedReservationIDs []uint      `json:"bumped_reservation_ids"`
}

func newBookingResponse(result *services.BookingResult) bookingResponse {
	ids := make([]uint, 0, len(result.Bumped))
	for _, r := range result.Bumped {
		ids = append(ids, r.ID)
	}
	return bookingResponse{Reservation: result.Reservation, BumpedCount: result.BumpedCount, BumpedReservationIDs: ids}
}
