// Package places resolves free-text locations through Google Places
// autocomplete.
package places

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"googlemaps.github.io/maps"

	"eventspot/logger"
)

var ErrNoAPIKey = errors.New("places: no Google Maps API key configured")

type Suggestion struct {
	PlaceID     string
	Description string
}

// Place is a resolved suggestion. Address falls back to the place name when
// Google has no formatted address for it.
type Place struct {
	PlaceID string
	Address string
	Lat     float64
	Lng     float64
}

type Client struct {
	maps *maps.Client

	mu    sync.Mutex
	token maps.PlaceAutocompleteSessionToken
}

func New(apiKey string, opts ...maps.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}
	mc, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("new: unable to create maps client: %w", err)
	}
	return &Client{maps: mc, token: maps.NewPlaceAutocompleteSessionToken()}, nil
}

func (c *Client) sessionToken() maps.PlaceAutocompleteSessionToken {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// Suggest returns autocomplete predictions for input.
func (c *Client) Suggest(ctx context.Context, input string) ([]Suggestion, error) {
	res, err := c.maps.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input:        input,
		SessionToken: c.sessionToken(),
	})
	if err != nil {
		return nil, fmt.Errorf("suggest: autocomplete failed: %w", err)
	}

	suggestions := make([]Suggestion, 0, len(res.Predictions))
	for _, p := range res.Predictions {
		suggestions = append(suggestions, Suggestion{PlaceID: p.PlaceID, Description: p.Description})
	}
	logger.Debugf(ctx, "places: %d suggestions for %q", len(suggestions), input)
	return suggestions, nil
}

// Resolve looks up the address and coordinates of a suggestion and ends the
// autocomplete session.
func (c *Client) Resolve(ctx context.Context, placeID string) (Place, error) {
	res, err := c.maps.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:      placeID,
		SessionToken: c.sessionToken(),
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskFormattedAddress,
			maps.PlaceDetailsFieldMaskGeometryLocation,
			maps.PlaceDetailsFieldMaskName,
		},
	})
	if err != nil {
		return Place{}, fmt.Errorf("resolve: place details failed: %w", err)
	}

	c.mu.Lock()
	c.token = maps.NewPlaceAutocompleteSessionToken()
	c.mu.Unlock()

	address := res.FormattedAddress
	if address == "" {
		address = res.Name
	}
	return Place{
		PlaceID: placeID,
		Address: address,
		Lat:     res.Geometry.Location.Lat,
		Lng:     res.Geometry.Location.Lng,
	}, nil
}
