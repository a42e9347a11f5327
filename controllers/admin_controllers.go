package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

type AdminController struct {
	Service *services.BookingService
}

func NewAdminController(svc *services.BookingService) *AdminController {
	return &AdminController{Service: svc}
}

// GetDaySummary -> reservation counts for one day of the admin's restaurant
func (ac *AdminController) GetDaySummary(c *gin.Context) {
	restaurantID, ok := idParam(c, "restaurant_id")
	if !ok {
		return
	}
	summary, err := ac.Service.GetDaySummary(c.Request.Context(), callerFrom(c), restaurantID, c.Query("date"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Day summary", summary)
}
