package resource

import (
	"errors"
	"net/http"
	"strconv"

	"courtslot/internal/api"
	"courtslot/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func resourceID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("resourceID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "Invalid resource ID"})
		return 0, false
	}
	return id, true
}

// @Summary      Register a bookable resource
// @Description  Owner-only: register a court or coach calendar
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body resource.CreateResourceRequest true "Resource payload"
// @Success      201 {object} resource.ResourceWithHours
// @Failure      400 {object} api.ErrorResponse
// @Failure      401 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /resources [post]
func (h *Handler) CreateResource(c *gin.Context) {
	ownerID, exists := auth.GetSubjectID(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "Not authenticated"})
		return
	}

	var req CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.BindingError(err))
		return
	}

	created, err := h.service.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		if errors.Is(err, ErrInvalidResource) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to create resource"})
		return
	}

	c.JSON(http.StatusCreated, created)
}

// @Summary      List resources
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} resource.Resource
// @Failure      500 {object} api.ErrorResponse
// @Router       /resources [get]
func (h *Handler) ListResources(c *gin.Context) {
	resources, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch resources"})
		return
	}

	c.JSON(http.StatusOK, resources)
}

// @Summary      Get one resource with its weekly hours
// @Tags         resources
// @Produce      json
// @Security     BearerAuth
// @Param        resourceID path int true "Resource ID"
// @Success      200 {object} resource.ResourceWithHours
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /resources/{resourceID} [get]
func (h *Handler) GetResource(c *gin.Context) {
	id, ok := resourceID(c)
	if !ok {
		return
	}

	res, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Resource not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to fetch resource"})
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary      Update resource status
// @Description  Owner-only: activate, soft-retire or put a resource in maintenance
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resourceID path int true "Resource ID"
// @Param        request body resource.UpdateStatusRequest true "Status payload"
// @Success      200 {object} resource.Resource
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /resources/{resourceID}/status [patch]
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := resourceID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.BindingError(err))
		return
	}

	res, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, ErrResourceNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Resource not found"})
		case errors.Is(err, ErrInvalidResource):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update resource"})
		}
		return
	}

	c.JSON(http.StatusOK, res)
}

// @Summary      Replace weekly operating hours
// @Tags         resources
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        resourceID path int true "Resource ID"
// @Param        request body resource.ReplaceHoursRequest true "Hours payload"
// @Success      200 {array} resource.OperatingHours
// @Failure      400 {object} api.ErrorResponse
// @Failure      404 {object} api.ErrorResponse
// @Failure      500 {object} api.ErrorResponse
// @Router       /resources/{resourceID}/hours [put]
func (h *Handler) ReplaceHours(c *gin.Context) {
	id, ok := resourceID(c)
	if !ok {
		return
	}

	var req ReplaceHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, api.BindingError(err))
		return
	}

	hours, err := h.service.ReplaceHours(c.Request.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, ErrResourceNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "Resource not found"})
		case errors.Is(err, ErrInvalidResource):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "Failed to update hours"})
		}
		return
	}

	c.JSON(http.StatusOK, hours)
}
