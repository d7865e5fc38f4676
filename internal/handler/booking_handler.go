package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zemo-rentals/service-reservation/internal/application"
	"github.com/zemo-rentals/service-reservation/internal/auth"
	"github.com/zemo-rentals/service-reservation/internal/domain/reservation"
	"github.com/zemo-rentals/service-reservation/internal/middleware"
	"github.com/zemo-rentals/service-reservation/internal/response"
)

const dateLayout = "2006-01-02"

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	service *application.ReservationService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(service *application.ReservationService) *BookingHandler {
	return &BookingHandler{service: service}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("", middleware.RequireRole(auth.RoleRenter), h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.GET("/:id", h.GetBooking)
		bookings.GET("/code/:code", h.GetBookingByCode)
		bookings.POST("/:id/confirm", middleware.RequireRole(auth.RoleHost), h.ConfirmBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}
}

// CreateBookingRequest is the body for POST /api/v1/bookings.
type CreateBookingRequest struct {
	VehicleID             uuid.UUID `json:"vehicle_id" binding:"required"`
	StartDate             string    `json:"start_date" binding:"required"`
	EndDate               string    `json:"end_date" binding:"required"`
	InsurancePremiumCents int64     `json:"insurance_premium_cents"`
	PickupLocation        string    `json:"pickup_location"`
	DropoffLocation       string    `json:"dropoff_location"`
	SpecialRequests       string    `json:"special_requests"`
}

// CreateBooking handles POST /api/v1/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	start, end, err := parseDates(req.StartDate, req.EndDate)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), userID, application.CreateBookingInput{
		VehicleID:             req.VehicleID,
		StartDate:             start,
		EndDate:               end,
		InsurancePremiumCents: req.InsurancePremiumCents,
		PickupLocation:        req.PickupLocation,
		DropoffLocation:       req.DropoffLocation,
		SpecialRequests:       req.SpecialRequests,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListBookings handles GET /api/v1/bookings. Renters see their own
// bookings; hosts see bookings on their vehicles, filterable by status.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}
	role, _ := middleware.GetUserRole(c)
	page, limit := parsePagination(c)

	switch role {
	case auth.RoleHost:
		var status *reservation.BookingStatus
		if raw := c.Query("status"); raw != "" {
			parsed, err := reservation.ParseBookingStatus(raw)
			if err != nil {
				response.BadRequest(c, "unknown status filter")
				return
			}
			status = &parsed
		}
		result, err := h.service.ListHostBookings(c.Request.Context(), userID, status, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)

	default:
		result, err := h.service.ListRenterBookings(c.Request.Context(), userID, page, limit)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
	}
}

// GetBooking handles GET /api/v1/bookings/:id.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetBooking(c.Request.Context(), id, userID, isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// GetBookingByCode handles GET /api/v1/bookings/code/:code.
func (h *BookingHandler) GetBookingByCode(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.GetBookingByCode(c.Request.Context(), c.Param("code"), userID, isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// ConfirmBooking handles POST /api/v1/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	result, err := h.service.ConfirmBooking(c.Request.Context(), id, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// CancelBookingRequest is the body for POST /api/v1/bookings/:id/cancel.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// CancelBooking handles POST /api/v1/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req CancelBookingRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.CancelBooking(c.Request.Context(), id, userID, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// --- shared helpers ---

func parseDate(raw string) (time.Time, error) {
	return time.Parse(dateLayout, raw)
}

func parseDates(start, end string) (time.Time, time.Time, error) {
	s, err := parseDate(start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	e, err := parseDate(end)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return s, e, nil
}

func parsePagination(c *gin.Context) (int, int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func parseCents(raw string) (int64, error) {
	return strconv.ParseInt(raw, 10, 64)
}

func isAdmin(c *gin.Context) bool {
	role, _ := middleware.GetUserRole(c)
	return role == auth.RoleAdmin
}
