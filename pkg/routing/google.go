// Package routing adapts the Google Maps Directions API to the single call
// the scheduling engine needs: (origin, destination, depart time) to
// (meters, seconds).
package routing

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"googlemaps.github.io/maps"

	"github.com/transitly/scheduler/internal/model"
)

// Provider issues a single remote routing call. Implementations are
// stateless; ErrNoRoute distinguishes "the provider answered with no legs"
// from a transport failure.
type Provider interface {
	Directions(ctx context.Context, origin, destination string, departAt time.Time) (model.Direction, error)
}

// ErrNoRoute is returned when the provider answers successfully but with no
// route between the addresses.
var ErrNoRoute = fmt.Errorf("routing: no route found between the specified locations")

// GoogleProvider is the production Provider backed by the Google Maps
// Directions API.
type GoogleProvider struct {
	client *maps.Client
}

// NewGoogleProvider creates a provider for the given API key.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("routing: create client: %w", err)
	}
	return &GoogleProvider{client: client}, nil
}

// Directions maps one address pair to driving distance and duration.
// A zero departAt omits the departure-time hint.
func (p *GoogleProvider) Directions(ctx context.Context, origin, destination string, departAt time.Time) (model.Direction, error) {
	req := &maps.DirectionsRequest{
		Origin:      origin,
		Destination: destination,
		Mode:        maps.TravelModeDriving,
	}
	if !departAt.IsZero() && departAt.After(time.Now()) {
		req.DepartureTime = strconv.FormatInt(departAt.Unix(), 10)
	}

	routes, _, err := p.client.Directions(ctx, req)
	if err != nil {
		return model.Direction{}, fmt.Errorf("routing: directions %q -> %q: %w", origin, destination, err)
	}
	if len(routes) == 0 || len(routes[0].Legs) == 0 {
		return model.Direction{}, ErrNoRoute
	}

	leg := routes[0].Legs[0]
	return model.Direction{
		DistanceInMeter:   leg.Distance.Meters,
		DurationInSeconds: int(leg.Duration / time.Second),
	}, nil
}
