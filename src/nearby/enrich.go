package nearby

import (
	"QuickToilet/src/logging"
	"QuickToilet/src/types"
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"

	"golang.org/x/sync/errgroup"
)

var durationToken = regexp.MustCompile(`^(\d+(?:\.\d+)?)s$`)

type enrichment struct {
	details *types.PlaceDetails
	route   *types.Route
}

// enrich fills detail and route fields of the first EnrichCount places in place.
// Lookup failures leave the place unenriched.
func (s *Service) enrich(ctx context.Context, places []types.Place, origin types.GeoPoint) {
	n := min(EnrichCount, len(places))
	if n == 0 {
		return
	}
	logger := logging.FromContextOr(ctx, s.logger)
	results := make([]enrichment, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		id := places[i].ID

		g.Go(func() error {
			err := protect(func() error {
				d, err := s.provider.GetDetails(ctx, id, s.opts.Language)
				results[i].details = d
				return err
			})
			if err != nil {
				results[i].details = nil
				logger.Debug("details lookup failed", "place_id", id, "error", err)
			}
			return nil
		})

		if !s.opts.RoutesEnabled {
			continue
		}
		g.Go(func() error {
			err := protect(func() error {
				r, err := s.provider.ComputeRoute(ctx, origin, id, s.opts.Language)
				results[i].route = r
				return err
			})
			if err != nil {
				results[i].route = nil
				if !errors.Is(err, types.ErrRouteUnsupported) {
					logger.Debug("route lookup failed", "place_id", id, "error", err)
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	for i, res := range results {
		if res.details != nil {
			applyDetails(&places[i], res.details)
		}
		if res.route == nil {
			continue
		}
		meters, minutes, err := RouteSummary(res.route)
		if err != nil {
			logger.Debug("route ignored", "place_id", places[i].ID, "error", err)
			continue
		}
		places[i].WalkingDistanceMeters = &meters
		places[i].WalkingDurationMinutes = &minutes
	}
}

func applyDetails(p *types.Place, d *types.PlaceDetails) {
	is24h := Is24h(d)
	wheelchair := IsWheelchairAccessible(d)
	kids := IsGoodForChildren(d)
	p.Is24h = &is24h
	p.WheelchairAccessibleEntrance = &wheelchair
	p.GoodForChildren = &kids
}

// Is24h reports a period opening Sunday 00:00 with no close time.
func Is24h(d *types.PlaceDetails) bool {
	for _, p := range d.Periods {
		if p.Open == nil || p.Close != nil {
			continue
		}
		if isZero(p.Open.Day) && isZero(p.Open.Hour) && isZero(p.Open.Minute) {
			return true
		}
	}
	return false
}

func isZero(v *int) bool {
	return v != nil && *v == 0
}

func IsWheelchairAccessible(d *types.PlaceDetails) bool {
	switch v := d.WheelchairAccessibleEntrance.(type) {
	case bool:
		return v
	case string:
		return v == "TRUE"
	}
	return false
}

func IsGoodForChildren(d *types.PlaceDetails) bool {
	v, ok := d.GoodForChildren.(bool)
	return ok && v
}

// ParseDuration parses a "<int>[.<frac>]s" token into seconds.
func ParseDuration(token string) (float64, error) {
	m := durationToken.FindStringSubmatch(token)
	if m == nil {
		return 0, fmt.Errorf("malformed duration %q", token)
	}
	return strconv.ParseFloat(m[1], 64)
}

// RouteSummary returns route meters and whole minutes, at least 1.
func RouteSummary(r *types.Route) (int, int, error) {
	if r.DistanceMeters == nil {
		return 0, 0, errors.New("route has no distance")
	}
	seconds, err := ParseDuration(r.Duration)
	if err != nil {
		return 0, 0, err
	}
	minutes := max(1, int(math.Round(seconds/60)))
	return *r.DistanceMeters, minutes, nil
}
