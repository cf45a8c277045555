package booking

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"courtslot/internal/api"
	"courtslot/internal/auth"
	"courtslot/internal/conflict"
	"courtslot/internal/interval"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func bookingID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("bookingID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid booking ID"})
		return 0, false
	}
	return id, true
}

// WriteError maps domain errors onto the HTTP surface. Conflicts carry the
// losing tuples so the client can retry selectively.
func WriteError(c *gin.Context, err error) {
	var conflictErr *conflict.ConflictError
	switch {
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, api.ErrorResponse{
			Error:   "One or more slots are already held",
			Details: conflictErr.Conflicts,
		})
	case errors.Is(err, ErrBookingNotFound):
		c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Booking not found"})
	case errors.Is(err, ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrExpired):
		c.JSON(http.StatusGone, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrPolicyViolation):
		c.JSON(http.StatusUnprocessableEntity, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrInvalidTransition):
		c.JSON(http.StatusConflict, api.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Internal server error"})
	}
}

// @Summary      Create a booking
// @Description  Reserve one or more slots atomically; the booking starts in pending_payment
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body booking.CreateBookingRequest true "Requested slots"
// @Success      201 {object} booking.BookingWithDetails
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings [post]
func (h *Handler) CreateBooking(c *gin.Context) {
	consumerID, exists := auth.GetSubjectID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.BindingError(err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), consumerID, req)
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// @Summary      Get a booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.BookingWithDetails
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings/{bookingID} [get]
func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	consumerID, exists := auth.GetSubjectID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}
	if role, ok := auth.GetSubjectRole(c); ok && role == auth.RoleAdmin {
		consumerID = ""
	}

	b, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}
	// Another consumer's booking looks like a missing one.
	if consumerID != "" && b.ConsumerID != consumerID {
		WriteError(c, ErrBookingNotFound)
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary      List bookings
// @Description  Consumers see their own bookings; admins may filter by any consumer
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Filter by status"
// @Param        resource_id query int false "Filter by resource"
// @Param        from query string false "Earliest slot date (YYYY-MM-DD)"
// @Param        to query string false "Latest slot date (YYYY-MM-DD)"
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Success      200 {object} api.PagedResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /bookings [get]
func (h *Handler) ListBookings(c *gin.Context) {
	consumerID, exists := auth.GetSubjectID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	filters := ListFilters{ConsumerID: consumerID}
	if role, ok := auth.GetSubjectRole(c); ok && role == auth.RoleAdmin {
		filters.ConsumerID = c.Query("consumer_id")
	}

	if v := c.Query("status"); v != "" {
		status, ok := ParseStatus(v)
		if !ok {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Unknown status " + v})
			return
		}
		filters.Status = status
	}
	if v := c.Query("resource_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid resource_id"})
			return
		}
		filters.ResourceID = id
	}
	if v := c.Query("from"); v != "" {
		d, err := interval.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "from must be YYYY-MM-DD"})
			return
		}
		filters.From = d
	}
	if v := c.Query("to"); v != "" {
		d, err := interval.ParseDate(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "to must be YYYY-MM-DD"})
			return
		}
		filters.To = d
	}
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "20"))

	bookings, total, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, api.PagedResponse{
		Items:    bookings,
		Total:    total,
		Page:     filters.Page,
		PageSize: filters.PageSize,
	})
}

// @Summary      Confirm a deposit
// @Description  Move a pending booking to deposited once the minimum deposit is paid
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Param        request body booking.ConfirmDepositRequest true "Deposit amount"
// @Success      200 {object} booking.Booking
// @Failure      400 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      410 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/deposit [post]
func (h *Handler) ConfirmDeposit(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	var req ConfirmDepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.BindingError(err))
		return
	}

	b, err := h.service.ConfirmDeposit(c.Request.Context(), id, req.Amount)
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary      Confirm a booking
// @Description  Owner or admin acknowledges a deposited booking
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/confirm [post]
func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Confirm(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary      Complete a booking
// @Description  Idempotent; allowed once the last interval has ended
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/complete [post]
func (h *Handler) CompleteBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.Complete(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}

// @Summary      Cancel a booking
// @Description  Cancels and evaluates the refund against the cancellation window
// @Tags         bookings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Param        request body booking.CancelBookingRequest true "Cancellation payload"
// @Success      200 {object} refund.CancellationRecord
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Router       /bookings/{bookingID}/cancel [post]
func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	consumerID, exists := auth.GetSubjectID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}
	if role, ok := auth.GetSubjectRole(c); ok && role == auth.RoleAdmin {
		consumerID = ""
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.BindingError(err))
		return
	}

	requestedAt := time.Now()
	if req.RequestedAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.RequestedAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "requested_at must be RFC 3339"})
			return
		}
		requestedAt = parsed
	}

	rec, err := h.service.Cancel(c.Request.Context(), id, consumerID, req.Reason, requestedAt)
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}

// @Summary      Mark a no-show
// @Description  Admin-only: flag a confirmed booking whose consumer never arrived
// @Tags         bookings
// @Produce      json
// @Security     BearerAuth
// @Param        bookingID path int true "Booking ID"
// @Success      200 {object} booking.Booking
// @Failure      404 {object} api.ErrorResponse
// @Failure      409 {object} api.ErrorResponse
// @Failure      422 {object} api.ErrorResponse
// @Router       /admin/bookings/{bookingID}/no-show [post]
func (h *Handler) MarkNoShow(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}

	b, err := h.service.MarkNoShow(c.Request.Context(), id)
	if err != nil {
		WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, b)
}
