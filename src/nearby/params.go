package nearby

import (
	"errors"
	"math"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultRadius = 2000
	MaxRadius     = 50000
	MaxResults    = 20
)

var (
	ErrMissingCoordinates = errors.New("lat and lng are required")
	ErrInvalidCoordinates = errors.New("invalid lat or lng")
)

type Params struct {
	Lat    float64
	Lng    float64
	Radius int
	Max    int
}

// ParseParams validates the nearby query string. Bad radius or max values fall
// back to defaults instead of failing the request.
func ParseParams(q url.Values, defaultMax int) (Params, error) {
	latStr := strings.TrimSpace(q.Get("lat"))
	lngStr := strings.TrimSpace(q.Get("lng"))
	if latStr == "" || lngStr == "" {
		return Params{}, ErrMissingCoordinates
	}

	lat, ok := parseFinite(latStr)
	if !ok {
		return Params{}, ErrInvalidCoordinates
	}
	lng, ok := parseFinite(lngStr)
	if !ok {
		return Params{}, ErrInvalidCoordinates
	}

	return Params{
		Lat:    lat,
		Lng:    lng,
		Radius: clampPositive(q.Get("radius"), DefaultRadius, MaxRadius),
		Max:    clampPositive(q.Get("max"), defaultMax, MaxResults),
	}, nil
}

func parseFinite(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func clampPositive(s string, def, upper int) int {
	f, ok := parseFinite(strings.TrimSpace(s))
	if !ok || f < 1 {
		return min(def, upper)
	}
	if f > float64(upper) {
		return upper
	}
	return int(f)
}
