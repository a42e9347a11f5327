package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newHubServer serves websocket upgrades that subscribe to ?restaurant=<id>.
func newHubServer(t *testing.T, hub *Hub) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseUint(r.URL.Query().Get("restaurant"), 10, 64)
		if err != nil {
			http.Error(w, "bad restaurant", http.StatusBadRequest)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Register(conn, uint(id))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, restaurantID uint) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?restaurant=" + strconv.FormatUint(uint64(restaurantID), 10)
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, restaurantID uint, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.ClientCount(restaurantID) == n }, time.Second, 10*time.Millisecond)
}

func TestHubDeliversOnlyToRestaurantSubscribers(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := newHubServer(t, hub)

	mine := dial(t, srv, 1)
	other := dial(t, srv, 2)
	waitForClients(t, hub, 1, 1)
	waitForClients(t, hub, 2, 1)

	hub.Publish(context.Background(), NewEvent(EventReservationCreated, 1, "2030-01-02", map[string]uint{"id": 42}))

	require.NoError(t, mine.SetReadDeadline(time.Now().Add(time.Second)))
	_, data, err := mine.ReadMessage()
	require.NoError(t, err)

	var got Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, EventReservationCreated, got.Event)
	assert.Equal(t, uint(1), got.RestaurantID)
	assert.Equal(t, "2030-01-02", got.Date)
	assert.NotEmpty(t, got.ID)

	require.NoError(t, other.SetReadDeadline(time.Now().Add(100*time.Millisecond)))
	_, _, err = other.ReadMessage()
	assert.Error(t, err)
}

func TestHubUnregister(t *testing.T) {
	hub := NewHub()
	defer hub.Close()
	srv := newHubServer(t, hub)

	dial(t, srv, 3)
	waitForClients(t, hub, 3, 1)

	hub.mutex.Lock()
	var conn *websocket.Conn
	for c := range hub.clients {
		conn = c
	}
	hub.mutex.Unlock()

	hub.Unregister(conn)
	assert.Zero(t, hub.ClientCount(3))
	// Unregistering twice is harmless.
	hub.Unregister(conn)
}

type countingNotifier struct{ n int }

func (c *countingNotifier) Publish(context.Context, Event) { c.n++ }

func TestFanout(t *testing.T) {
	a, b := &countingNotifier{}, &countingNotifier{}
	fan := Fanout{a, nil, b, Discard{}}

	fan.Publish(context.Background(), NewEvent(EventReservationBumped, 1, "2030-01-02", nil))
	fan.Publish(context.Background(), NewEvent(EventReservationCancelled, 1, "2030-01-02", nil))

	assert.Equal(t, 2, a.n)
	assert.Equal(t, 2, b.n)
}

func TestEncodeMessageKeysByRestaurant(t *testing.T) {
	evt := NewEvent(EventReservationUpdated, 17, "2030-01-02", map[string]int{"guest_count": 4})

	msg, err := encodeMessage(evt)
	require.NoError(t, err)
	assert.Equal(t, "17", string(msg.Key))
	require.Len(t, msg.Headers, 1)
	assert.Equal(t, "event", msg.Headers[0].Key)
	assert.Equal(t, EventReservationUpdated, string(msg.Headers[0].Value))
	assert.Equal(t, evt.OccurredAt, msg.Time)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, evt.ID, decoded.ID)
	assert.Equal(t, uint(17), decoded.RestaurantID)
}
