package nearby

import (
	"QuickToilet/src/logging"
	"QuickToilet/src/types"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

const (
	// EnrichCount is how many ranked places get detail and route lookups.
	EnrichCount = 3

	placeIDPrefix = "places/"
)

// ErrProviderPanic wraps a panic raised by a provider call.
var ErrProviderPanic = errors.New("place provider panicked")

type Options struct {
	Category      string
	TextQuery     string
	Language      string
	RoutesEnabled bool
}

type Service struct {
	provider types.PlaceProvider
	opts     Options
	logger   *slog.Logger
}

func NewService(provider types.PlaceProvider, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{provider: provider, opts: opts, logger: logger}
}

// Ready reports whether the provider has the configuration it needs.
func (s *Service) Ready() error {
	return s.provider.Ready()
}

// Search runs both provider searches, ranks the merged result by distance and
// enriches the first EnrichCount places.
func (s *Service) Search(ctx context.Context, p Params) ([]types.Place, error) {
	logger := logging.FromContextOr(ctx, s.logger)
	q := types.SearchQuery{
		Center:   types.GeoPoint{Lat: p.Lat, Lon: p.Lng},
		Radius:   p.Radius,
		Max:      p.Max,
		Category: s.opts.Category,
		Text:     s.opts.TextQuery,
		Language: s.opts.Language,
	}

	var nearbyRaw, textRaw []types.RawPlace
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return protect(func() error {
			raw, err := s.provider.SearchNearby(gctx, q)
			if err != nil {
				return err
			}
			nearbyRaw = raw
			return nil
		})
	})

	g.Go(func() error {
		err := protect(func() error {
			raw, err := s.provider.SearchText(gctx, q)
			if err != nil {
				return err
			}
			textRaw = raw
			return nil
		})
		if err != nil {
			logger.Warn("text search failed, using radius search only", "error", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("nearby search: %w", err)
	}

	places := Merge(ToPlaces(nearbyRaw, q.Center), ToPlaces(textRaw, q.Center))
	Rank(places)
	if len(places) > p.Max {
		places = places[:p.Max]
	}

	s.enrich(ctx, places, q.Center)
	return places, nil
}

// ToPlaces drops incomplete hits and computes the distance from origin once.
func ToPlaces(raw []types.RawPlace, origin types.GeoPoint) []types.Place {
	places := make([]types.Place, 0, len(raw))
	for _, r := range raw {
		if r.ID == "" || (r.Name == "" && r.Address == "") || r.Location == nil {
			continue
		}
		name := r.Name
		if name == "" {
			name = r.Address
		}
		places = append(places, types.Place{
			ID:               NormalizeID(r.ID),
			DisplayName:      name,
			Latitude:         r.Location.Lat,
			Longitude:        r.Location.Lon,
			FormattedAddress: r.Address,
			Distance:         HaversineDistance(origin.Lat, origin.Lon, r.Location.Lat, r.Location.Lon),
		})
	}
	return places
}

func NormalizeID(id string) string {
	return strings.TrimPrefix(id, placeIDPrefix)
}

// Merge keeps primary order and appends secondary places whose id is new.
func Merge(primary, secondary []types.Place) []types.Place {
	seen := make(map[string]struct{}, len(primary)+len(secondary))
	merged := make([]types.Place, 0, len(primary)+len(secondary))
	for _, list := range [][]types.Place{primary, secondary} {
		for _, p := range list {
			if _, ok := seen[p.ID]; ok {
				continue
			}
			seen[p.ID] = struct{}{}
			merged = append(merged, p)
		}
	}
	return merged
}

func Rank(places []types.Place) {
	sort.SliceStable(places, func(i, j int) bool {
		return places[i].Distance < places[j].Distance
	})
}

// protect runs fn and reports a panic as an error wrapping ErrProviderPanic.
func protect(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrProviderPanic, r)
		}
	}()
	return fn()
}
