// Package payment receives the external gateway's deposit callbacks. The
// gateway is the source of truth for payment results; this handler only maps
// its events onto booking transitions.
package payment

import (
	"crypto/subtle"
	"net/http"

	"courtslot/internal/api"
	"courtslot/internal/booking"
	"courtslot/internal/logger"

	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the shared secret agreed with the gateway.
const SignatureHeader = "X-Gateway-Signature"

const (
	EventDepositSucceeded = "deposit_succeeded"
	EventDepositFailed    = "deposit_failed"
)

type CallbackRequest struct {
	BookingID int64  `json:"booking_id" binding:"required"`
	Event     string `json:"event" binding:"required,oneof=deposit_succeeded deposit_failed"`
	Amount    int64  `json:"amount"`
}

type Handler struct {
	bookings booking.Service
	secret   string
}

func NewHandler(bookings booking.Service, secret string) *Handler {
	return &Handler{bookings: bookings, secret: secret}
}

// @Summary      Payment gateway callback
// @Description  Applies a gateway deposit event to the referenced booking
// @Tags         payments
// @Accept       json
// @Produce      json
// @Param        X-Gateway-Signature header string true "Shared gateway secret"
// @Param        request body payment.CallbackRequest true "Gateway event"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      410 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /payments/callback [post]
func (h *Handler) Callback(c *gin.Context) {
	// An unset secret must fail closed, never match an empty header.
	if h.secret == "" {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Gateway secret not configured"})
		return
	}

	sig := c.GetHeader(SignatureHeader)
	if subtle.ConstantTimeCompare([]byte(sig), []byte(h.secret)) != 1 {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Invalid gateway signature"})
		return
	}

	var req CallbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.BindingError(err))
		return
	}

	logger.Info("gateway callback", "booking_id", req.BookingID, "event", req.Event)

	var (
		b   *booking.Booking
		err error
	)
	switch req.Event {
	case EventDepositSucceeded:
		if req.Amount <= 0 {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "amount must be positive"})
			return
		}
		b, err = h.bookings.ConfirmDeposit(c.Request.Context(), req.BookingID, req.Amount)
	case EventDepositFailed:
		b, err = h.bookings.MarkPaymentFailed(c.Request.Context(), req.BookingID)
	}

	if err != nil {
		booking.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}
