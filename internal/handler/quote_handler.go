package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/skylift-transfers/service-shuttle/internal/application"
	"github.com/skylift-transfers/service-shuttle/internal/fare"
	"github.com/skylift-transfers/service-shuttle/internal/platform/response"
	"github.com/skylift-transfers/service-shuttle/internal/routing"
)

// QuoteHandler handles HTTP requests for the booking wizard's pricing flow.
type QuoteHandler struct {
	service *application.QuoteService
}

// NewQuoteHandler creates a new QuoteHandler.
func NewQuoteHandler(service *application.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: service}
}

// RegisterRoutes registers all quote routes on the given router group. The
// wizard is public: quotes require no authentication.
func (h *QuoteHandler) RegisterRoutes(r *gin.RouterGroup) {
	quotes := r.Group("/api/v1/quotes")
	{
		quotes.POST("", h.Quote)
		quotes.POST("/local", h.LocalQuote)
		quotes.POST("/prefetch", h.PrefetchRoute)
	}
}

// Quote handles POST /api/v1/quotes. Resolves the route and prices the trip.
func (h *QuoteHandler) Quote(c *gin.Context) {
	var req application.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.Quote(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// localQuoteRequest is the body for a purely local recomputation.
type localQuoteRequest struct {
	Components    fare.Components `json:"components"`
	PaymentMethod string          `json:"payment_method" binding:"required"`
}

// LocalQuote handles POST /api/v1/quotes/local. Re-derives the breakdown from
// the submitted components without any route or pricing round trip.
func (h *QuoteHandler) LocalQuote(c *gin.Context) {
	var req localQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.LocalQuote(req.Components, req.PaymentMethod)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// prefetchRequest is the body for a debounced route prefetch.
type prefetchRequest struct {
	SessionKey     string   `json:"session_key" binding:"required"`
	PickupAddress  string   `json:"pickup_address" binding:"required"`
	DropoffAddress string   `json:"dropoff_address" binding:"required"`
	Stops          []string `json:"stops"`
}

// PrefetchRoute handles POST /api/v1/quotes/prefetch. Schedules a route cache
// warm after the quiet window; the response returns immediately.
func (h *QuoteHandler) PrefetchRoute(c *gin.Context) {
	var req prefetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	h.service.PrefetchRoute(req.SessionKey, routing.RouteQuery{
		Pickup:  req.PickupAddress,
		Dropoff: req.DropoffAddress,
		Stops:   req.Stops,
	})

	response.Success(c, gin.H{"scheduled": true})
}
