package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/yeremiapane/table-reservation/database"
	"github.com/yeremiapane/table-reservation/models"
	"github.com/yeremiapane/table-reservation/realtime"
	"github.com/yeremiapane/table-reservation/router"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	os.Exit(m.Run())
}

// TestEndToEndIntegration menguji flow utama:
// 1. Admin subscribes to the restaurant feed over websocket
// 2. Customer checks availability and books
// 3. Admin books the same table, bumping the customer
// 4. Feed receives created, created, bumped
func TestEndToEndIntegration(t *testing.T) {
	db := setupTestDB(t)
	restaurant := seedRestaurant(t, db)

	hub := realtime.NewHub()
	defer hub.Close()
	svc := services.NewBookingService(db,
		services.WithNotifier(hub),
		services.WithClock(func() time.Time { return time.Date(2030, 1, 1, 8, 0, 0, 0, time.UTC) }),
		services.WithLocation(time.UTC),
	)
	r := router.SetupRouter(svc, hub, router.Options{CORSOrigin: "*"})
	srv := httptest.NewServer(r)
	defer srv.Close()

	adminTok, err := utils.GenerateToken(restaurant.AdminID, utils.RoleAdmin)
	require.NoError(t, err)
	customerTok, err := utils.GenerateToken(7, utils.RoleCustomer)
	require.NoError(t, err)

	// 1. Subscribe
	wsURL := fmt.Sprintf("ws%s/ws/restaurants/%d/reservations?token=%s", strings.TrimPrefix(srv.URL, "http"), restaurant.ID, adminTok)
	feed, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer feed.Close()
	require.Eventually(t, func() bool { return hub.ClientCount(restaurant.ID) == 1 }, time.Second, 10*time.Millisecond)

	// 2. Availability + booking
	resp := call(t, srv, http.MethodGet, fmt.Sprintf("/restaurants/%d/availability?date=2030-01-02&guests=2", restaurant.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.code)

	resp = call(t, srv, http.MethodPost, "/reservations", customerTok, map[string]interface{}{
		"restaurant_id": restaurant.ID, "date": "2030-01-02", "start_time": "19:00", "guest_count": 2,
	})
	require.Equal(t, http.StatusCreated, resp.code, resp.body)
	var booked models.Reservation
	require.NoError(t, json.Unmarshal(resp.data, &booked))
	require.Len(t, booked.Tables, 1)

	// 3. Admin seizes the table
	resp = call(t, srv, http.MethodPost, "/admin/reservations", adminTok, map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"customer_id":   88,
		"table_ids":     []uint{booked.Tables[0].ID},
		"date":          "2030-01-02",
		"start_time":    "20:00",
		"guest_count":   2,
	})
	require.Equal(t, http.StatusCreated, resp.code, resp.body)

	// 4. Feed
	var events []string
	for len(events) < 3 {
		require.NoError(t, feed.SetReadDeadline(time.Now().Add(2*time.Second)))
		_, data, err := feed.ReadMessage()
		require.NoError(t, err)
		var evt realtime.Event
		require.NoError(t, json.Unmarshal(data, &evt))
		assert.Equal(t, restaurant.ID, evt.RestaurantID)
		events = append(events, evt.Event)
	}
	assert.Equal(t, []string{
		realtime.EventReservationCreated,
		realtime.EventReservationCreated,
		realtime.EventReservationBumped,
	}, events)

	// Customers cannot follow the feed.
	_, wsResp, err := websocket.DefaultDialer.Dial(strings.Replace(wsURL, adminTok, customerTok, 1), nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusForbidden, wsResp.StatusCode)

	resp = call(t, srv, http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, resp.code)
	assert.NotEmpty(t, resp.header.Get("X-Request-ID"))
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))
	return db
}

func seedRestaurant(t *testing.T, db *gorm.DB) models.Restaurant {
	restaurant := models.Restaurant{AdminID: 100, Name: "Warung Senja", Address: "Jl. Braga 1", GridRows: 1, GridCols: 2}
	require.NoError(t, db.Create(&restaurant).Error)
	require.NoError(t, db.Create(&models.Table{RestaurantID: restaurant.ID, Label: "A1", Capacity: models.CapacityTwo, GridCol: 0, IsActive: true}).Error)
	require.NoError(t, db.Create(&models.Table{RestaurantID: restaurant.ID, Label: "A2", Capacity: models.CapacityFour, GridCol: 1, IsActive: true}).Error)
	return restaurant
}

type apiResponse struct {
	code   int
	header http.Header
	body   string
	data   json.RawMessage
}

func call(t *testing.T, srv *httptest.Server, method, path, token string, body interface{}) apiResponse {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	var raw bytes.Buffer
	_, err = raw.ReadFrom(res.Body)
	require.NoError(t, err)
	if raw.Len() > 0 {
		require.NoError(t, json.Unmarshal(raw.Bytes(), &envelope))
	}
	return apiResponse{code: res.StatusCode, header: res.Header, body: raw.String(), data: envelope.Data}
}
