package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/controllers"
	"github.com/yeremiapane/table-reservation/middlewares"
	"github.com/yeremiapane/table-reservation/realtime"
	"github.com/yeremiapane/table-reservation/services"
	"github.com/yeremiapane/table-reservation/utils"
)

type Options struct {
	CORSOrigin     string
	RateLimitRPS   float64
	RateLimitBurst int
}

func SetupRouter(svc *services.BookingService, hub *realtime.Hub, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(middlewares.RequestID())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).RateLimit())

	// Inisialisasi controller
	reservationCtrl := controllers.NewReservationController(svc)
	adminReservationCtrl := controllers.NewAdminReservationController(svc)
	adminCtrl := controllers.NewAdminController(svc)
	tableCtrl := controllers.NewTableController(svc)
	feedCtrl := controllers.NewFeedController(svc, hub, opts.CORSOrigin)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	r.GET("/restaurants/:restaurant_id/availability", reservationCtrl.GetAvailability)

	// ----------------------------------------------------------------
	//                      CUSTOMER ROUTES
	// ----------------------------------------------------------------
	customer := r.Group("/reservations")
	customer.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(utils.RoleCustomer))
	{
		customer.POST("", reservationCtrl.CreateReservation)
		customer.GET("", reservationCtrl.ListMyReservations)
		customer.GET("/:reservation_id", reservationCtrl.GetReservation)
		customer.PATCH("/:reservation_id", reservationCtrl.UpdateReservation)
		customer.POST("/:reservation_id/cancel", reservationCtrl.CancelReservation)
	}

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireRole(utils.RoleAdmin))
	{
		admin.POST("/reservations", adminReservationCtrl.CreateReservation)
		admin.GET("/reservations/:reservation_id", adminReservationCtrl.GetReservation)
		admin.PATCH("/reservations/:reservation_id", adminReservationCtrl.UpdateReservation)
		admin.PATCH("/reservations/:reservation_id/status", adminReservationCtrl.UpdateStatus)
		admin.DELETE("/reservations/:reservation_id", adminReservationCtrl.CancelReservation)

		admin.GET("/restaurants/:restaurant_id/reservations", adminReservationCtrl.ListReservations)
		admin.GET("/restaurants/:restaurant_id/summary", adminCtrl.GetDaySummary)
		admin.GET("/restaurants/:restaurant_id/tables", tableCtrl.GetAllTables)
	}

	// WebSocket endpoint, token dikirim lewat query string
	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware(), middlewares.RequireRole(utils.RoleAdmin))
	{
		ws.GET("/restaurants/:restaurant_id/reservations", feedCtrl.Subscribe)
	}

	return r
}
