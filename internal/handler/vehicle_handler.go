package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zemo-rentals/service-reservation/internal/application"
	"github.com/zemo-rentals/service-reservation/internal/auth"
	"github.com/zemo-rentals/service-reservation/internal/middleware"
	"github.com/zemo-rentals/service-reservation/internal/response"
)

// VehicleHandler serves availability checks and price quotes for a
// vehicle's calendar.
type VehicleHandler struct {
	service *application.ReservationService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(service *application.ReservationService) *VehicleHandler {
	return &VehicleHandler{service: service}
}

// RegisterRoutes registers vehicle availability routes on the given
// router group.
func (h *VehicleHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	vehicles := r.Group("/api/v1/vehicles")
	vehicles.Use(authMW)
	{
		vehicles.GET("/:id/availability", h.CheckAvailability)
		vehicles.GET("/:id/quote", h.GetQuote)
	}
}

// CheckAvailability handles GET /api/v1/vehicles/:id/availability.
func (h *VehicleHandler) CheckAvailability(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}
	start, end, err := parseDates(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.BadRequest(c, "start_date and end_date must be YYYY-MM-DD")
		return
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), vehicleID, start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetQuote handles GET /api/v1/vehicles/:id/quote.
func (h *VehicleHandler) GetQuote(c *gin.Context) {
	vehicleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}
	start, end, err := parseDates(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		response.BadRequest(c, "start_date and end_date must be YYYY-MM-DD")
		return
	}
	var insurance int64
	if raw := c.Query("insurance_premium_cents"); raw != "" {
		insurance, err = parseCents(raw)
		if err != nil {
			response.BadRequest(c, "invalid insurance_premium_cents")
			return
		}
	}

	result, err := h.service.GetQuote(c.Request.Context(), application.QuoteInput{
		VehicleID:             vehicleID,
		StartDate:             start,
		EndDate:               end,
		InsurancePremiumCents: insurance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
