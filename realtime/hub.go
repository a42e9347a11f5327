package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yeremiapane/table-reservation/utils"
)

const writeWait = 5 * time.Second

// Hub holds the websocket clients following each restaurant's reservation feed.
type Hub struct {
	clients map[*websocket.Conn]uint // conn -> restaurant id
	mutex   sync.Mutex
}

func NewHub() *Hub {
	return &Hub{clients: make(map[*websocket.Conn]uint)}
}

// Register subscribes conn to the events of one restaurant.
func (h *Hub) Register(conn *websocket.Conn, restaurantID uint) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.clients[conn] = restaurantID
}

// Unregister drops conn and closes it.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if _, ok := h.clients[conn]; ok {
		delete(h.clients, conn)
		conn.Close()
	}
}

// ClientCount returns how many clients follow restaurantID.
func (h *Hub) ClientCount(restaurantID uint) int {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	n := 0
	for _, id := range h.clients {
		if id == restaurantID {
			n++
		}
	}
	return n
}

// Publish writes evt to every client of evt.RestaurantID. Clients that fail
// a write are dropped.
func (h *Hub) Publish(_ context.Context, evt Event) {
	data, err := json.Marshal(evt)
	if err != nil {
		utils.ErrorLogger.Printf("Error marshaling event %s: %v", evt.Event, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for conn, restaurantID := range h.clients {
		if restaurantID != evt.RestaurantID {
			continue
		}
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			utils.ErrorLogger.Printf("Error sending %s to client of restaurant %d: %v", evt.Event, restaurantID, err)
			delete(h.clients, conn)
			conn.Close()
		}
	}
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}
