package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zemo-rentals/service-reservation/internal/application"
	"github.com/zemo-rentals/service-reservation/internal/auth"
	"github.com/zemo-rentals/service-reservation/internal/domain/inspection"
	"github.com/zemo-rentals/service-reservation/internal/middleware"
	"github.com/zemo-rentals/service-reservation/internal/response"
)

// InspectionHandler handles HTTP requests for vehicle inspections and
// deposit settlement.
type InspectionHandler struct {
	service *application.InspectionService
}

// NewInspectionHandler creates a new InspectionHandler.
func NewInspectionHandler(service *application.InspectionService) *InspectionHandler {
	return &InspectionHandler{service: service}
}

// RegisterRoutes registers inspection routes on the given router group.
func (h *InspectionHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("/:id/inspections/pickup", middleware.RequireRole(auth.RoleHost), h.SubmitPickup)
		bookings.POST("/:id/inspections/return", middleware.RequireRole(auth.RoleHost), h.SubmitReturn)
		bookings.GET("/:id/inspections", h.ListInspections)
		bookings.GET("/:id/settlement", h.GetSettlement)
	}
}

// PhotoRequest is one photo in an inspection submission.
type PhotoRequest struct {
	URL         string `json:"url" binding:"required"`
	Category    string `json:"category" binding:"required"`
	Description string `json:"description"`
}

// DamageRequest is one damage item in an inspection submission.
type DamageRequest struct {
	Category          string `json:"category" binding:"required"`
	Severity          string `json:"severity" binding:"required"`
	Location          string `json:"location" binding:"required"`
	Description       string `json:"description"`
	ExplicitCostCents int64  `json:"explicit_cost_cents"`
}

// SubmitInspectionRequest is the body for the pickup and return routes.
type SubmitInspectionRequest struct {
	MileageKm int64           `json:"mileage_km" binding:"required"`
	FuelLevel float64         `json:"fuel_level"`
	Photos    []PhotoRequest  `json:"photos" binding:"required"`
	Damages   []DamageRequest `json:"damages"`
	Notes     string          `json:"notes"`
}

func (r SubmitInspectionRequest) toInput(bookingID uuid.UUID, t inspection.InspectionType) application.SubmitInspectionInput {
	photos := make([]inspection.Photo, len(r.Photos))
	for i, p := range r.Photos {
		photos[i] = inspection.Photo{
			URL:         p.URL,
			Category:    inspection.PhotoCategory(p.Category),
			Description: p.Description,
		}
	}
	damages := make([]inspection.DamageItem, len(r.Damages))
	for i, d := range r.Damages {
		damages[i] = inspection.DamageItem{
			Category:          inspection.DamageCategory(d.Category),
			Severity:          inspection.DamageSeverity(d.Severity),
			Location:          d.Location,
			Description:       d.Description,
			ExplicitCostCents: d.ExplicitCostCents,
		}
	}
	return application.SubmitInspectionInput{
		BookingID: bookingID,
		Type:      t,
		MileageKm: r.MileageKm,
		FuelLevel: r.FuelLevel,
		Photos:    photos,
		Damages:   damages,
		Notes:     r.Notes,
	}
}

// SubmitPickup handles POST /api/v1/bookings/:id/inspections/pickup.
func (h *InspectionHandler) SubmitPickup(c *gin.Context) {
	h.submit(c, inspection.TypePickup)
}

// SubmitReturn handles POST /api/v1/bookings/:id/inspections/return.
func (h *InspectionHandler) SubmitReturn(c *gin.Context) {
	h.submit(c, inspection.TypeReturn)
}

func (h *InspectionHandler) submit(c *gin.Context, t inspection.InspectionType) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req SubmitInspectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	input := req.toInput(bookingID, t)
	var result *application.InspectionOutcome
	if t == inspection.TypePickup {
		result, err = h.service.SubmitPickupInspection(c.Request.Context(), userID, input)
	} else {
		result, err = h.service.SubmitReturnInspection(c.Request.Context(), userID, input)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListInspections handles GET /api/v1/bookings/:id/inspections.
func (h *InspectionHandler) ListInspections(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetInspections(c.Request.Context(), bookingID, userID, isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetSettlement handles GET /api/v1/bookings/:id/settlement.
func (h *InspectionHandler) GetSettlement(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetSettlement(c.Request.Context(), bookingID, userID, isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
