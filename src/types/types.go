package types

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrMissingCredential = errors.New("GOOGLE_PLACES_API_KEY is not set")
	ErrRouteUnsupported  = errors.New("provider does not support routes")
)

// Place is a ranked restroom returned to clients.
// Enrichment fields stay nil for places that were not enriched; nil means unknown.
type Place struct {
	ID                           string  `json:"id"`
	DisplayName                  string  `json:"displayName"`
	Latitude                     float64 `json:"latitude"`
	Longitude                    float64 `json:"longitude"`
	FormattedAddress             string  `json:"formattedAddress,omitempty"`
	Distance                     int     `json:"distance"`
	Is24h                        *bool   `json:"is24h,omitempty"`
	WheelchairAccessibleEntrance *bool   `json:"wheelchairAccessibleEntrance,omitempty"`
	GoodForChildren              *bool   `json:"goodForChildren,omitempty"`
	WalkingDistanceMeters        *int    `json:"walkingDistanceMeters,omitempty"`
	WalkingDurationMinutes       *int    `json:"walkingDurationMinutes,omitempty"`
}

type GeoPoint struct {
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// RawPlace is a search hit as the provider returned it.
type RawPlace struct {
	ID       string
	Name     string
	Address  string
	Location *GeoPoint
}

type SearchQuery struct {
	Center   GeoPoint
	Radius   int
	Max      int
	Category string
	Text     string
	Language string
}

type OpeningTime struct {
	Day    *int `json:"day"`
	Hour   *int `json:"hour"`
	Minute *int `json:"minute"`
}

type OpeningPeriod struct {
	Open  *OpeningTime `json:"open"`
	Close *OpeningTime `json:"close"`
}

// PlaceDetails keeps the raw attribute values; callers decide what counts as true.
type PlaceDetails struct {
	Periods                      []OpeningPeriod
	WheelchairAccessibleEntrance any
	GoodForChildren              any
}

type Route struct {
	DistanceMeters *int
	Duration       string
}

type PlaceProvider interface {
	Ready() error
	SearchNearby(ctx context.Context, q SearchQuery) ([]RawPlace, error)
	SearchText(ctx context.Context, q SearchQuery) ([]RawPlace, error)
	GetDetails(ctx context.Context, placeID, language string) (*PlaceDetails, error)
	ComputeRoute(ctx context.Context, origin GeoPoint, placeID, language string) (*Route, error)
}

// UpstreamError is a non-2xx answer from the places provider.
type UpstreamError struct {
	Op     string
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: upstream status %d", e.Op, e.Status)
}
