package availability

import (
	"errors"
	"net/http"
	"strconv"

	"courtslot/internal/api"
	"courtslot/internal/interval"
	"courtslot/internal/resource"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// @Summary      Open slots for a resource
// @Description  Computed view over operating hours, recurring windows and active bookings
// @Tags         availability
// @Produce      json
// @Security     BearerAuth
// @Param        resourceID path int true "Resource ID"
// @Param        from query string true "First date (YYYY-MM-DD)"
// @Param        to query string true "Last date (YYYY-MM-DD)"
// @Param        kind query string false "Resource kind filter (court|coach)"
// @Success      200 {array} availability.DaySlots
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /resources/{resourceID}/availability [get]
func (h *Handler) GetOpenSlots(c *gin.Context) {
	resourceID, err := strconv.ParseInt(c.Param("resourceID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid resource ID"})
		return
	}

	from, err := interval.ParseDate(c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "from must be YYYY-MM-DD"})
		return
	}
	to, err := interval.ParseDate(c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "to must be YYYY-MM-DD"})
		return
	}

	days, err := h.service.OpenSlots(c.Request.Context(), resourceID, from, to, c.Query("kind"))
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRange):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, resource.ErrResourceNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Resource not found"})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to compute availability"})
		}
		return
	}

	c.JSON(http.StatusOK, days)
}
