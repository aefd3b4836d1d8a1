package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skylift-transfers/service-shuttle/internal/application"
	"github.com/skylift-transfers/service-shuttle/internal/fare"
	"github.com/skylift-transfers/service-shuttle/internal/platform/auth"
	"github.com/skylift-transfers/service-shuttle/internal/platform/middleware"
	"github.com/skylift-transfers/service-shuttle/internal/platform/response"
)

// AdminHandler handles admin HTTP requests: fleet management, email
// templates, booking oversight and fare edits.
type AdminHandler struct {
	bookings  *application.BookingService
	fleet     *application.FleetService
	templates *application.TemplateService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, fleet *application.FleetService, templates *application.TemplateService) *AdminHandler {
	return &AdminHandler{bookings: bookings, fleet: fleet, templates: templates}
}

// RegisterRoutes registers all admin routes on the given router group.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/bookings/stats", h.GetBookingStats)
		admin.POST("/bookings/:id/confirm", h.ConfirmBooking)
		admin.POST("/bookings/:id/assign", h.AssignDriver)
		admin.PUT("/bookings/:id/fare", h.UpdateFare)
		admin.POST("/bookings/:id/fare/recalculate", h.RefreshFare)

		admin.POST("/drivers", h.CreateDriver)
		admin.GET("/drivers", h.ListDrivers)
		admin.GET("/drivers/:id", h.GetDriver)
		admin.PUT("/drivers/:id", h.UpdateDriver)
		admin.PUT("/drivers/:id/status", h.SetDriverStatus)
		admin.PUT("/drivers/:id/vehicle", h.AssignVehicleToDriver)
		admin.DELETE("/drivers/:id", h.DeleteDriver)

		admin.POST("/vehicles", h.CreateVehicle)
		admin.GET("/vehicles", h.ListVehicles)
		admin.GET("/vehicles/:id", h.GetVehicle)
		admin.PUT("/vehicles/:id", h.UpdateVehicle)
		admin.DELETE("/vehicles/:id", h.DeleteVehicle)

		admin.POST("/email-templates", h.CreateTemplate)
		admin.GET("/email-templates", h.ListTemplates)
		admin.GET("/email-templates/:id", h.GetTemplate)
		admin.PUT("/email-templates/:id", h.UpdateTemplate)
		admin.DELETE("/email-templates/:id", h.DeleteTemplate)
	}
}

// --- Bookings ---

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// GetBookingStats handles GET /api/v1/admin/bookings/stats.
func (h *AdminHandler) GetBookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ConfirmBooking handles POST /api/v1/admin/bookings/:id/confirm.
func (h *AdminHandler) ConfirmBooking(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.bookings.ConfirmBooking(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AssignDriver handles POST /api/v1/admin/bookings/:id/assign.
func (h *AdminHandler) AssignDriver(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var body struct {
		DriverID  uuid.UUID `json:"driver_id" binding:"required"`
		VehicleID uuid.UUID `json:"vehicle_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.AssignDriver(c.Request.Context(), bookingID, body.DriverID, body.VehicleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateFare handles PUT /api/v1/admin/bookings/:id/fare. The submitted
// components replace the stored ones and the breakdown is re-derived.
func (h *AdminHandler) UpdateFare(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	var components fare.Components
	if err := c.ShouldBindJSON(&components); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.UpdateFare(c.Request.Context(), bookingID, components)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// RefreshFare handles POST /api/v1/admin/bookings/:id/fare/recalculate.
func (h *AdminHandler) RefreshFare(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	result, err := h.bookings.RefreshFare(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// --- Drivers ---

// CreateDriver handles POST /api/v1/admin/drivers.
func (h *AdminHandler) CreateDriver(c *gin.Context) {
	var req application.CreateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.fleet.CreateDriver(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListDrivers handles GET /api/v1/admin/drivers.
func (h *AdminHandler) ListDrivers(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.fleet.ListDrivers(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// GetDriver handles GET /api/v1/admin/drivers/:id.
func (h *AdminHandler) GetDriver(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid driver ID")
		return
	}

	result, err := h.fleet.GetDriver(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateDriver handles PUT /api/v1/admin/drivers/:id.
func (h *AdminHandler) UpdateDriver(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid driver ID")
		return
	}

	var req application.UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.fleet.UpdateDriver(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// SetDriverStatus handles PUT /api/v1/admin/drivers/:id/status.
func (h *AdminHandler) SetDriverStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid driver ID")
		return
	}

	var body struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.fleet.SetDriverStatus(c.Request.Context(), id, *body.Active)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AssignVehicleToDriver handles PUT /api/v1/admin/drivers/:id/vehicle.
func (h *AdminHandler) AssignVehicleToDriver(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid driver ID")
		return
	}

	var body struct {
		VehicleID uuid.UUID `json:"vehicle_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.fleet.AssignVehicleToDriver(c.Request.Context(), id, body.VehicleID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteDriver handles DELETE /api/v1/admin/drivers/:id.
func (h *AdminHandler) DeleteDriver(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid driver ID")
		return
	}

	if err := h.fleet.DeleteDriver(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// --- Vehicles ---

// CreateVehicle handles POST /api/v1/admin/vehicles.
func (h *AdminHandler) CreateVehicle(c *gin.Context) {
	var req application.CreateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.fleet.CreateVehicle(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListVehicles handles GET /api/v1/admin/vehicles.
func (h *AdminHandler) ListVehicles(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.fleet.ListVehicles(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// GetVehicle handles GET /api/v1/admin/vehicles/:id.
func (h *AdminHandler) GetVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	result, err := h.fleet.GetVehicle(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateVehicle handles PUT /api/v1/admin/vehicles/:id.
func (h *AdminHandler) UpdateVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	var req application.UpdateVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.fleet.UpdateVehicle(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteVehicle handles DELETE /api/v1/admin/vehicles/:id.
func (h *AdminHandler) DeleteVehicle(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid vehicle ID")
		return
	}

	if err := h.fleet.DeleteVehicle(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// --- Email templates ---

// CreateTemplate handles POST /api/v1/admin/email-templates.
func (h *AdminHandler) CreateTemplate(c *gin.Context) {
	var req application.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.templates.CreateTemplate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListTemplates handles GET /api/v1/admin/email-templates.
func (h *AdminHandler) ListTemplates(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.templates.ListTemplates(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// GetTemplate handles GET /api/v1/admin/email-templates/:id.
func (h *AdminHandler) GetTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template ID")
		return
	}

	result, err := h.templates.GetTemplate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// UpdateTemplate handles PUT /api/v1/admin/email-templates/:id.
func (h *AdminHandler) UpdateTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template ID")
		return
	}

	var req application.UpdateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.templates.UpdateTemplate(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeleteTemplate handles DELETE /api/v1/admin/email-templates/:id.
func (h *AdminHandler) DeleteTemplate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid template ID")
		return
	}

	if err := h.templates.DeleteTemplate(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}
