package routing

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

// RouteLegs is the raw output of a directions call: summed leg totals plus
// the provider's human-readable strings.
type RouteLegs struct {
	DistanceMeters  int
	DurationSeconds int
	DistanceText    string
	DurationText    string
}

// Provider issues single-address geocode requests and single multi-waypoint
// directions requests against an external mapping service.
type Provider interface {
	Geocode(ctx context.Context, address string) (LatLng, error)
	Directions(ctx context.Context, origin, destination string, waypoints []string) (RouteLegs, error)
}

// GoogleProvider implements Provider on the Google Maps Platform.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a GoogleProvider with the given API key.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create maps client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

// Geocode resolves a single address to coordinates.
func (p *GoogleProvider) Geocode(ctx context.Context, address string) (LatLng, error) {
	results, err := p.client.Geocode(ctx, &maps.GeocodingRequest{Address: address})
	if err != nil {
		return LatLng{}, fmt.Errorf("geocode api error: %w", err)
	}
	if len(results) == 0 {
		return LatLng{}, fmt.Errorf("no geocode result for %q", address)
	}

	loc := results[0].Geometry.Location
	return LatLng{Lat: loc.Lat, Lng: loc.Lng}, nil
}

// Directions requests a driving route through the waypoints and sums the leg
// distances and durations.
func (p *GoogleProvider) Directions(ctx context.Context, origin, destination string, waypoints []string) (RouteLegs, error) {
	r := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Waypoints:   waypoints,
		Mode:        maps.TravelModeDriving,
	}

	routes, _, err := p.client.Directions(ctx, r)
	if err != nil {
		return RouteLegs{}, fmt.Errorf("directions api error: %w", err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return RouteLegs{}, fmt.Errorf("no route found from %q to %q", origin, destination)
	}

	var legs RouteLegs
	for _, leg := range routes[0].Legs {
		legs.DistanceMeters += leg.Distance.Meters
		legs.DurationSeconds += int(leg.Duration.Seconds())
	}
	// The human-readable strings come from the first and last leg boundaries;
	// for multi-leg trips the summed totals are reformatted.
	if len(routes[0].Legs) == 1 {
		legs.DistanceText = routes[0].Legs[0].Distance.HumanReadable
		legs.DurationText = routes[0].Legs[0].Duration.String()
	} else {
		legs.DistanceText = fmt.Sprintf("%.1f mi", float64(legs.DistanceMeters)/metersPerMile)
		legs.DurationText = fmt.Sprintf("%d min", legs.DurationSeconds/60)
	}
	return legs, nil
}

const metersPerMile = 1609.344
