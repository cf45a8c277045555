package schedule

import (
	"errors"
	"net/http"
	"strconv"

	"courtslot/internal/api"
	"courtslot/internal/auth"
	"courtslot/internal/interval"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Declare a weekly availability window
// @Tags         availability
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body schedule.AddAvailabilityRequest true "Window payload"
// @Success      201 {object} schedule.RecurringAvailability
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /availability/recurring [post]
func (h *Handler) AddRecurring(c *gin.Context) {
	ownerID, exists := auth.GetSubjectID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	var req AddAvailabilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.BindingError(err))
		return
	}

	created, err := h.service.Add(c.Request.Context(), ownerID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidWindow) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to add availability"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// @Summary      Remove a weekly availability window
// @Tags         availability
// @Produce      json
// @Security     BearerAuth
// @Param        availabilityID path int true "Availability ID"
// @Success      200 {object} api.MessageResponse
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /availability/recurring/{availabilityID} [delete]
func (h *Handler) RemoveRecurring(c *gin.Context) {
	ownerID, exists := auth.GetSubjectID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	id, err := strconv.ParseInt(c.Param("availabilityID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid availability ID"})
		return
	}

	if err := h.service.Remove(c.Request.Context(), id, ownerID); err != nil {
		if errors.Is(err, ErrAvailabilityNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Availability not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to remove availability"})
		return
	}

	c.JSON(http.StatusOK, api.MessageResponse{Message: "Availability removed"})
}

// @Summary      List my weekly availability windows
// @Tags         availability
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} schedule.RecurringAvailability
// @Failure      500 {object} api.ErrorResponse
// @Router       /availability/recurring [get]
func (h *Handler) ListRecurring(c *gin.Context) {
	ownerID, exists := auth.GetSubjectID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	rows, err := h.service.ListByOwner(c.Request.Context(), ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch availability"})
		return
	}

	c.JSON(http.StatusOK, rows)
}

// @Summary      Resolve weekly windows into concrete dates
// @Tags         availability
// @Produce      json
// @Security     BearerAuth
// @Param        from query string true "Start date (YYYY-MM-DD)"
// @Param        to   query string true "End date (YYYY-MM-DD)"
// @Success      200 {array} schedule.ResolvedWindow
// @Failure      400 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /availability/recurring/resolve [get]
func (h *Handler) ResolveRecurring(c *gin.Context) {
	ownerID, exists := auth.GetSubjectID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	from, err := interval.ParseDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid from date, use YYYY-MM-DD"})
		return
	}
	to, err := interval.ParseDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid to date, use YYYY-MM-DD"})
		return
	}
	if to.Before(from) {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "to must not precede from"})
		return
	}

	windows, err := h.service.Resolve(c.Request.Context(), ownerID, from, to)
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to resolve availability"})
		return
	}

	c.JSON(http.StatusOK, windows)
}
