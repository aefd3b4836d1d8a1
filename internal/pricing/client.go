package pricing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/skylift-transfers/service-shuttle/internal/platform/domain"
)

// Waypoint is an address with optional resolved coordinates, as the pricing
// service expects it.
type Waypoint struct {
	Address string  `json:"address"`
	Lat     float64 `json:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty"`
}

// CalculateRequest is the body of POST /pricing/calculate.
type CalculateRequest struct {
	Pickup          Waypoint `json:"pickup"`
	Dropoff         Waypoint `json:"dropoff"`
	Miles           float64  `json:"miles"`
	StopsCount      int      `json:"stopsCount"`
	ChildSeatsCount int      `json:"childSeatsCount"`
	IsRoundTrip     bool     `json:"isRoundTrip"`
	VehicleTypeID   string   `json:"vehicleTypeId"`
	PaymentMethod   string   `json:"paymentMethod"`
}

// CalculateResponse is the authoritative breakdown returned by the pricing
// service.
type CalculateResponse struct {
	BasePrice         float64 `json:"basePrice"`
	DistancePrice     float64 `json:"distancePrice"`
	StopsCharge       float64 `json:"stopsCharge"`
	ChildSeatsCharge  float64 `json:"childSeatsCharge"`
	RoundTripDiscount float64 `json:"roundTripDiscount"`
	ReturnTripPrice   float64 `json:"returnTripPrice"`
	Subtotal          float64 `json:"subtotal"`
	PaymentDiscount   float64 `json:"paymentDiscount"`
	FinalTotal        float64 `json:"finalTotal"`
	AreaName          string  `json:"areaName"`
	PricingMethod     string  `json:"pricingMethod"`
	Distance          float64 `json:"distance"`
	SurgeMultiplier   float64 `json:"surgeMultiplier"`
	SurgeName         string  `json:"surgeName"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Client calls the remote pricing service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a pricing client for the given base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Calculate posts the trip parameters and returns the service's breakdown.
// Non-2xx responses surface the server's message when it sent one.
func (c *Client) Calculate(ctx context.Context, req CalculateRequest) (*CalculateResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal pricing request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/pricing/calculate", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build pricing request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, domain.NewPricingError("pricing service unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errBody errorResponse
		if decodeErr := json.NewDecoder(resp.Body).Decode(&errBody); decodeErr == nil {
			if msg := errBody.Message; msg != "" {
				return nil, domain.NewPricingError(msg)
			}
			if msg := errBody.Error; msg != "" {
				return nil, domain.NewPricingError(msg)
			}
		}
		return nil, domain.NewPricingError(fmt.Sprintf("pricing service returned status %d", resp.StatusCode))
	}

	var result CalculateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, domain.NewPricingError("malformed pricing response").WithCause(err)
	}
	return &result, nil
}
