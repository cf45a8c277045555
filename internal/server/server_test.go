package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"courtslot/internal/availability"
	"courtslot/internal/booking"
	"courtslot/internal/config"
	"courtslot/internal/payment"
	"courtslot/internal/resource"
	"courtslot/internal/schedule"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		AuthTokenSecret: "test-secret",
		RateLimitRPS:    100,
		RateLimitBurst:  100,
	}
	return New(cfg, Dependencies{
		Resources:    resource.NewHandler(nil),
		Schedules:    schedule.NewHandler(nil),
		Availability: availability.NewHandler(nil),
		Bookings:     booking.NewHandler(nil),
		Payments:     payment.NewHandler(nil, "gateway-secret"),
	})
}

func TestHealthRoute(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	srv := newTestServer()

	for _, path := range []string{"/bookings", "/resources", "/recurring-availability/resolve"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest("POST", "/admin/bookings/1/confirm", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCallbackRouteIsPublicButSigned(t *testing.T) {
	srv := newTestServer()

	req := httptest.NewRequest("POST", "/payments/callback", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	// Reachable without a bearer token, rejected for the missing signature.
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
