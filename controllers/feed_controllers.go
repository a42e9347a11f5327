package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/yeremiapane/table-reservation/realtime"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

type FeedController struct {
	Service  *services.BookingService
	Hub      *realtime.Hub
	upgrader websocket.Upgrader
}

// NewFeedController accepts upgrades from allowedOrigin, or from anywhere when it is "*" or empty.
func NewFeedController(svc *services.BookingService, hub *realtime.Hub, allowedOrigin string) *FeedController {
	return &FeedController{
		Service: svc,
		Hub:     hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

// Subscribe -> websocket stream of one restaurant's reservation events
func (fc *FeedController) Subscribe(c *gin.Context) {
	restaurantID, ok := idParam(c, "restaurant_id")
	if !ok {
		return
	}
	caller := callerFrom(c)
	if err := fc.Service.CheckRestaurantAccess(c.Request.Context(), caller, restaurantID); err != nil {
		respondServiceError(c, err)
		return
	}

	ws, err := fc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("Websocket upgrade failed for restaurant %d: %v", restaurantID, err)
		return
	}

	fc.Hub.Register(ws, restaurantID)
	utils.InfoLogger.Printf("Admin %d subscribed to reservations of restaurant %d", caller.UserID, restaurantID)

	// The feed is one-way; reading only detects the disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	fc.Hub.Unregister(ws)
}
