package routing

import "strings"

// Per-stop dwell time added on top of the provider's transit duration, in minutes.
const stopDwellMinutes = 15

// LatLng is a geographic coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteQuery describes a trip as entered in the booking wizard: a pickup
// address, a dropoff address and zero or more ordered intermediate stops.
type RouteQuery struct {
	Pickup  string
	Dropoff string
	Stops   []string
}

// ValidStops returns the trimmed, non-empty stops in their original order.
func (q RouteQuery) ValidStops() []string {
	stops := make([]string, 0, len(q.Stops))
	for _, s := range q.Stops {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			stops = append(stops, trimmed)
		}
	}
	return stops
}

// CacheKey returns the identity of the query: the trimmed non-empty fields
// joined in order. Two queries that differ only in surrounding whitespace or
// empty stop slots produce the same key.
func (q RouteQuery) CacheKey() string {
	parts := make([]string, 0, 2+len(q.Stops))
	parts = append(parts, strings.TrimSpace(q.Pickup))
	parts = append(parts, q.ValidStops()...)
	parts = append(parts, strings.TrimSpace(q.Dropoff))
	return strings.Join(parts, "|")
}

// RouteResult is the resolved route for a query. It is immutable once
// produced; a new query always yields a new RouteResult.
type RouteResult struct {
	DistanceText    string   `json:"distance_text"`
	DurationText    string   `json:"duration_text"`
	DistanceMiles   float64  `json:"distance_miles"`
	DurationMinutes int      `json:"duration_minutes"`
	ValidStopCount  int      `json:"valid_stop_count"`
	PickupCoords    *LatLng  `json:"pickup_coords,omitempty"`
	DropoffCoords   *LatLng  `json:"dropoff_coords,omitempty"`
	StopCoords      []LatLng `json:"stop_coords,omitempty"`
}
