package db

import (
	"QuickToilet/src/types"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/olivere/elastic/v7"
)

const textSearchSize = 20

// Restroom is the document stored in the restroom index.
type Restroom struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Address         string            `json:"address"`
	Category        string            `json:"category"`
	Location        *elastic.GeoPoint `json:"location,omitempty"`
	Open24h         bool              `json:"open_24h"`
	Wheelchair      bool              `json:"wheelchair"`
	GoodForChildren bool              `json:"good_for_children"`
}

// ElasticStore serves restroom searches from a self-hosted index.
// It has no routing data, so ComputeRoute always reports ErrRouteUnsupported.
type ElasticStore struct {
	Client *elastic.Client
	Index  string
	logger *slog.Logger
}

func NewElasticStore(url, index string, logger *slog.Logger, opts ...elastic.ClientOptionFunc) (*ElasticStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts = append([]elastic.ClientOptionFunc{elastic.SetURL(url), elastic.SetSniff(false)}, opts...)
	client, err := elastic.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("elastic client: %w", err)
	}
	return &ElasticStore{Client: client, Index: index, logger: logger}, nil
}

func (es *ElasticStore) Ready() error {
	return nil
}

func (es *ElasticStore) Stop() {
	es.Client.Stop()
}

func (es *ElasticStore) distanceSort(center types.GeoPoint) *elastic.GeoDistanceSort {
	return elastic.NewGeoDistanceSort("location").
		Point(center.Lat, center.Lon).
		Asc().
		Unit("m").
		DistanceType("arc").
		IgnoreUnmapped(true)
}

func (es *ElasticStore) SearchNearby(ctx context.Context, q types.SearchQuery) ([]types.RawPlace, error) {
	query := elastic.NewBoolQuery().Filter(
		elastic.NewGeoDistanceQuery("location").
			Point(q.Center.Lat, q.Center.Lon).
			Distance(fmt.Sprintf("%dm", q.Radius)),
	)
	if q.Category != "" {
		query = query.Filter(elastic.NewTermQuery("category", q.Category))
	}

	res, err := es.Client.Search().
		Index(es.Index).
		Query(query).
		SortBy(es.distanceSort(q.Center)).
		Size(q.Max).
		Do(ctx)
	if err != nil {
		return nil, upstreamError("searchNearby", err)
	}
	return es.hitsToRaw(res), nil
}

func (es *ElasticStore) SearchText(ctx context.Context, q types.SearchQuery) ([]types.RawPlace, error) {
	res, err := es.Client.Search().
		Index(es.Index).
		Query(elastic.NewMultiMatchQuery(q.Text, "name", "address", "category")).
		SortBy(es.distanceSort(q.Center)).
		Size(textSearchSize).
		Do(ctx)
	if err != nil {
		return nil, upstreamError("searchText", err)
	}
	return es.hitsToRaw(res), nil
}

func (es *ElasticStore) GetDetails(ctx context.Context, placeID, _ string) (*types.PlaceDetails, error) {
	res, err := es.Client.Get().Index(es.Index).Id(placeID).Do(ctx)
	if err != nil {
		return nil, upstreamError("placeDetails", err)
	}
	if !res.Found || res.Source == nil {
		return nil, &types.UpstreamError{Op: "placeDetails", Status: 404, Body: placeID}
	}

	var r Restroom
	if err := json.Unmarshal(res.Source, &r); err != nil {
		return nil, fmt.Errorf("placeDetails: %w", err)
	}
	return restroomDetails(r), nil
}

func (es *ElasticStore) ComputeRoute(context.Context, types.GeoPoint, string, string) (*types.Route, error) {
	return nil, types.ErrRouteUnsupported
}

// restroomDetails maps the stored flags onto the provider-neutral detail shape.
// An always-open restroom is a single period opening Sunday 00:00 without a close.
func restroomDetails(r Restroom) *types.PlaceDetails {
	d := &types.PlaceDetails{
		WheelchairAccessibleEntrance: r.Wheelchair,
		GoodForChildren:              r.GoodForChildren,
	}
	if r.Open24h {
		zero := 0
		d.Periods = []types.OpeningPeriod{{
			Open: &types.OpeningTime{Day: &zero, Hour: &zero, Minute: &zero},
		}}
	}
	return d
}

func (es *ElasticStore) hitsToRaw(res *elastic.SearchResult) []types.RawPlace {
	if res.Hits == nil {
		return nil
	}
	out := make([]types.RawPlace, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var r Restroom
		if err := json.Unmarshal(hit.Source, &r); err != nil {
			es.logger.Warn("skipping undecodable hit", "id", hit.Id, "error", err)
			continue
		}
		place := types.RawPlace{ID: hit.Id, Name: r.Name, Address: r.Address}
		if r.Location != nil {
			place.Location = &types.GeoPoint{Lat: r.Location.Lat, Lon: r.Location.Lon}
		}
		out = append(out, place)
	}
	return out
}

func upstreamError(op string, err error) error {
	var e *elastic.Error
	if errors.As(err, &e) {
		body := ""
		if e.Details != nil {
			body = e.Details.Reason
		}
		return &types.UpstreamError{Op: op, Status: e.Status, Body: body}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (es *ElasticStore) CreateIndexWithMapping(ctx context.Context, pathStruct string) error {
	exists, err := es.Client.IndexExists(es.Index).Do(ctx)
	if err != nil {
		return fmt.Errorf("check index %s: %w", es.Index, err)
	}
	if exists {
		es.logger.Info("index already exists", "index", es.Index)
		return nil
	}

	schemaBytes, err := os.ReadFile(pathStruct)
	if err != nil {
		return err
	}

	createIndex, err := es.Client.CreateIndex(es.Index).BodyString(string(schemaBytes)).Do(ctx)
	if err != nil {
		return fmt.Errorf("create index %s: %w", es.Index, err)
	}
	if !createIndex.Acknowledged {
		es.logger.Warn("create index was not acknowledged", "index", es.Index)
	}

	settings := map[string]interface{}{
		"index": map[string]interface{}{
			"number_of_replicas": 0,
		},
	}
	if err = es.updateIndexSettings(ctx, settings); err != nil {
		return err
	}

	es.logger.Info("index created", "index", es.Index)
	return nil
}

func (es *ElasticStore) updateIndexSettings(ctx context.Context, settings map[string]interface{}) error {
	if _, err := es.Client.IndexPutSettings(es.Index).BodyJson(settings).Do(ctx); err != nil {
		return fmt.Errorf("update settings %s: %w", es.Index, err)
	}
	return nil
}
