package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

type TableController struct {
	Service *services.BookingService
}

func NewTableController(svc *services.BookingService) *TableController {
	return &TableController{Service: svc}
}

// GetAllTables -> floor plan of the restaurant, retired tables included
func (tc *TableController) GetAllTables(c *gin.Context) {
	restaurantID, ok := idParam(c, "restaurant_id")
	if !ok {
		return
	}
	tables, err := tc.Service.ListTables(c.Request.Context(), callerFrom(c), restaurantID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}
