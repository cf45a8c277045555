package server

import (
	"context"
	"net/http"

	"courtslot/internal/auth"
	"courtslot/internal/availability"
	"courtslot/internal/booking"
	"courtslot/internal/config"
	"courtslot/internal/payment"
	"courtslot/internal/resource"
	"courtslot/internal/schedule"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Dependencies struct {
	DB           *sqlx.DB
	Redis        *redis.Client
	Resources    *resource.Handler
	Schedules    *schedule.Handler
	Availability *availability.Handler
	Bookings     *booking.Handler
	Payments     *payment.Handler
}

type Server struct {
	router *gin.Engine
	http   *http.Server
}

func New(cfg *config.Config, deps Dependencies) *Server {
	RegisterCustomValidators()

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(corsMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	router.GET("/health", Health)
	router.GET("/readyz", Ready(deps.DB, deps.Redis))
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	// The gateway authenticates with its shared secret, not a bearer token.
	router.POST("/payments/callback", deps.Payments.Callback)

	authMiddleware := auth.AuthMiddleware(cfg.AuthTokenSecret)

	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/resources", deps.Resources.ListResources)
		protected.GET("/resources/:resourceID", deps.Resources.GetResource)
		protected.GET("/resources/:resourceID/availability", deps.Availability.GetOpenSlots)

		protected.POST("/bookings", deps.Bookings.CreateBooking)
		protected.GET("/bookings", deps.Bookings.ListBookings)
		protected.GET("/bookings/:bookingID", deps.Bookings.GetBooking)
		protected.POST("/bookings/:bookingID/deposit", deps.Bookings.ConfirmDeposit)
		protected.POST("/bookings/:bookingID/cancel", deps.Bookings.CancelBooking)

		protected.GET("/recurring-availability/resolve", deps.Schedules.ResolveRecurring)
	}

	owner := router.Group("/")
	owner.Use(authMiddleware, auth.RequireRole(auth.RoleOwner))
	{
		owner.POST("/resources", deps.Resources.CreateResource)
		owner.PATCH("/resources/:resourceID/status", deps.Resources.UpdateStatus)
		owner.PUT("/resources/:resourceID/hours", deps.Resources.ReplaceHours)

		owner.POST("/recurring-availability", deps.Schedules.AddRecurring)
		owner.GET("/recurring-availability", deps.Schedules.ListRecurring)
		owner.DELETE("/recurring-availability/:availabilityID", deps.Schedules.RemoveRecurring)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.POST("/bookings/:bookingID/confirm", deps.Bookings.ConfirmBooking)
		admin.POST("/bookings/:bookingID/complete", deps.Bookings.CompleteBooking)
		admin.POST("/bookings/:bookingID/cancel", deps.Bookings.CancelBooking)
		admin.POST("/bookings/:bookingID/no-show", deps.Bookings.MarkNoShow)
		admin.GET("/bookings", deps.Bookings.ListBookings)
	}

	return &Server{router: router}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
