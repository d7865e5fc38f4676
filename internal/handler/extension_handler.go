package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/zemo-rentals/service-reservation/internal/application"
	"github.com/zemo-rentals/service-reservation/internal/auth"
	"github.com/zemo-rentals/service-reservation/internal/middleware"
	"github.com/zemo-rentals/service-reservation/internal/response"
)

// ExtensionHandler handles HTTP requests for extension negotiation.
type ExtensionHandler struct {
	service *application.ExtensionService
}

// NewExtensionHandler creates a new ExtensionHandler.
func NewExtensionHandler(service *application.ExtensionService) *ExtensionHandler {
	return &ExtensionHandler{service: service}
}

// RegisterRoutes registers extension routes on the given router group.
func (h *ExtensionHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("/:id/extensions", middleware.RequireRole(auth.RoleRenter), h.ProposeExtension)
		bookings.GET("/:id/extensions", h.ListExtensions)
	}

	extensions := r.Group("/api/v1/extensions")
	extensions.Use(authMW)
	{
		extensions.POST("/:id/approve", middleware.RequireRole(auth.RoleHost), h.ApproveExtension)
		extensions.POST("/:id/reject", middleware.RequireRole(auth.RoleHost), h.RejectExtension)
	}
}

// ProposeExtensionRequest is the body for POST /api/v1/bookings/:id/extensions.
type ProposeExtensionRequest struct {
	NewEndDate string `json:"new_end_date" binding:"required"`
	Reason     string `json:"reason"`
}

// ProposeExtension handles POST /api/v1/bookings/:id/extensions.
func (h *ExtensionHandler) ProposeExtension(c *gin.Context) {
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

	var req ProposeExtensionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	newEnd, err := parseDate(req.NewEndDate)
	if err != nil {
		response.BadRequest(c, "new_end_date must be YYYY-MM-DD")
		return
	}

	result, err := h.service.ProposeExtension(c.Request.Context(), bookingID, userID, newEnd, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// ListExtensions handles GET /api/v1/bookings/:id/extensions.
func (h *ExtensionHandler) ListExtensions(c *gin.Context) {
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

	result, err := h.service.ListExtensions(c.Request.Context(), bookingID, userID, isAdmin(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RespondExtensionRequest is the body for the approve and reject routes.
type RespondExtensionRequest struct {
	Note string `json:"note"`
}

// ApproveExtension handles POST /api/v1/extensions/:id/approve.
func (h *ExtensionHandler) ApproveExtension(c *gin.Context) {
	extensionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid extension ID")
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req RespondExtensionRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.ApproveExtension(c.Request.Context(), extensionID, userID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// RejectExtension handles POST /api/v1/extensions/:id/reject.
func (h *ExtensionHandler) RejectExtension(c *gin.Context) {
	extensionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid extension ID")
		return
	}
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "unauthorized")
		return
	}

	var req RespondExtensionRequest
	_ = c.ShouldBindJSON(&req)

	result, err := h.service.RejectExtension(c.Request.Context(), extensionID, userID, req.Note)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}
