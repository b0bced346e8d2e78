package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"globobook/internal/pkg/response"
	"globobook/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings/:idOrCode", h.Get)
}

func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings/:code/check-in", h.CheckIn)
}

// Create godoc
// @Summary      Create a booking
// @Description  Prices the booking server-side, persists it as pending and returns the checkout URL
// @Tags         Bookings
// @Accept       json
// @Produce      json
// @Param        body body CreateBookingRequest true "Booking payload"
// @Success      201 {object} CreateBookingResponse
// @Failure      400 {object} map[string]interface{}
// @Failure      502 {object} map[string]interface{}
// @Router       /bookings [post]
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "Invalid booking input", fields)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, ErrValidation), errors.Is(err, ErrUnknownAddon):
			response.Error(c, http.StatusBadRequest, "VALIDATION_FAILED", err.Error())
		case errors.Is(err, ErrPaymentProvider):
			response.Error(c, http.StatusBadGateway, "PAYMENT_PROVIDER_ERROR", "Could not start a payment session")
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not create booking")
		}
		return
	}
	response.Success(c, http.StatusCreated, resp)
}

// Get godoc
// @Summary      Booking status lookup
// @Tags         Bookings
// @Produce      json
// @Param        idOrCode path string true "Booking id or confirmation code"
// @Success      200 {object} BookingView
// @Failure      404 {object} map[string]interface{}
// @Router       /bookings/{idOrCode} [get]
func (h *Handler) Get(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("idOrCode"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not load booking")
		return
	}
	response.Success(c, http.StatusOK, view)
}

// CheckIn godoc
// @Summary      Staff check-in by confirmation code
// @Tags         Bookings
// @Security     BearerAuth
// @Produce      json
// @Param        code path string true "Confirmation code"
// @Success      200 {object} BookingView
// @Failure      404 {object} map[string]interface{}
// @Failure      409 {object} map[string]interface{}
// @Router       /bookings/{code}/check-in [post]
func (h *Handler) CheckIn(c *gin.Context) {
	view, err := h.service.CheckIn(c.Request.Context(), c.Param("code"))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Booking not found")
		case errors.Is(err, ErrInvalidState):
			response.Error(c, http.StatusConflict, "INVALID_STATE", err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Could not check in booking")
		}
		return
	}
	response.Success(c, http.StatusOK, view)
}
