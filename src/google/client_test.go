package google

import (
	"QuickToilet/src/types"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, key string, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(key, 5*time.Second, WithBaseURLs(srv.URL+"/v1", srv.URL))
}

func query() types.SearchQuery {
	return types.SearchQuery{
		Center:   types.GeoPoint{Lat: 35.69, Lon: 139.70},
		Radius:   2000,
		Max:      10,
		Category: "public_bathroom",
		Text:     "公衆トイレ",
		Language: "ja",
	}
}

func TestSearchNearbyRequestAndDecode(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/places:searchNearby", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Goog-Api-Key"))
		assert.Equal(t, "places.id,places.displayName,places.location,places.formattedAddress", r.Header.Get("X-Goog-FieldMask"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		io.WriteString(w, `{"places":[
			{"id":"places/abc","displayName":{"text":"新宿公衆トイレ"},"location":{"latitude":35.691,"longitude":139.701},"formattedAddress":"日本、〒160-0022 東京都新宿区"},
			{"id":"places/nolat","displayName":{"text":"X"},"location":{"longitude":139.7}},
			{"id":"places/noname","location":{"latitude":35.6,"longitude":139.7}}
		]}`)
	})

	raw, err := c.SearchNearby(context.Background(), query())
	require.NoError(t, err)
	require.Len(t, raw, 3)

	assert.Equal(t, "places/abc", raw[0].ID)
	assert.Equal(t, "新宿公衆トイレ", raw[0].Name)
	require.NotNil(t, raw[0].Location)
	assert.Equal(t, 35.691, raw[0].Location.Lat)
	assert.Nil(t, raw[1].Location, "partial coordinates are treated as absent")
	assert.Empty(t, raw[2].Name)

	assert.Equal(t, []any{"public_bathroom"}, got["includedTypes"])
	assert.Equal(t, float64(10), got["maxResultCount"])
	assert.Equal(t, "ja", got["languageCode"])
	circle := got["locationRestriction"].(map[string]any)["circle"].(map[string]any)
	assert.Equal(t, float64(2000), circle["radius"])
}

func TestSearchText(t *testing.T) {
	var got textRequest
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/places:searchText", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{}`)
	})

	raw, err := c.SearchText(context.Background(), query())
	require.NoError(t, err)
	assert.Empty(t, raw)
	assert.Equal(t, "公衆トイレ", got.TextQuery)
	assert.Equal(t, 20, got.PageSize)
	assert.Equal(t, "DISTANCE", got.RankPreference)
	assert.Equal(t, 35.69, got.LocationBias.Circle.Center.Latitude)
}

func TestUpstreamError(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"error":{"message":"bad radius"}}`)
	})

	_, err := c.SearchNearby(context.Background(), query())
	var upstream *types.UpstreamError
	require.ErrorAs(t, err, &upstream)
	assert.Equal(t, http.StatusBadRequest, upstream.Status)
	assert.Contains(t, upstream.Body, "bad radius")
	assert.Equal(t, "searchNearby", upstream.Op)
}

func TestMissingKeySkipsNetwork(t *testing.T) {
	called := false
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	assert.ErrorIs(t, c.Ready(), types.ErrMissingCredential)
	_, err := c.SearchNearby(context.Background(), query())
	assert.ErrorIs(t, err, types.ErrMissingCredential)
	assert.False(t, called)
}

func TestGetDetails(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/v1/places/abc", r.URL.Path)
		assert.Equal(t, "ja", r.URL.Query().Get("languageCode"))
		assert.Equal(t, "regularOpeningHours,accessibilityOptions,goodForChildren", r.Header.Get("X-Goog-FieldMask"))
		io.WriteString(w, `{
			"regularOpeningHours":{"periods":[{"open":{"day":0,"hour":0,"minute":0}}]},
			"accessibilityOptions":{"wheelchairAccessibleEntrance":"TRUE"},
			"goodForChildren":true
		}`)
	})

	d, err := c.GetDetails(context.Background(), "abc", "ja")
	require.NoError(t, err)
	require.Len(t, d.Periods, 1)
	require.NotNil(t, d.Periods[0].Open)
	assert.Equal(t, 0, *d.Periods[0].Open.Day)
	assert.Nil(t, d.Periods[0].Close)
	assert.Equal(t, "TRUE", d.WheelchairAccessibleEntrance)
	assert.Equal(t, true, d.GoodForChildren)
}

func TestGetDetailsEmptyPayload(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	})

	d, err := c.GetDetails(context.Background(), "abc", "")
	require.NoError(t, err)
	assert.Empty(t, d.Periods)
	assert.Nil(t, d.WheelchairAccessibleEntrance)
}

func TestGetDetailsMalformed(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"regularOpeningHours":`)
	})

	_, err := c.GetDetails(context.Background(), "abc", "ja")
	assert.Error(t, err)
}

func TestComputeRoute(t *testing.T) {
	var got routesRequest
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/directions/v2:computeRoutes", r.URL.Path)
		assert.Equal(t, "routes.distanceMeters,routes.duration", r.Header.Get("X-Goog-FieldMask"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		io.WriteString(w, `{"routes":[{"distanceMeters":812,"duration":"640s"}]}`)
	})

	route, err := c.ComputeRoute(context.Background(), types.GeoPoint{Lat: 35.69, Lon: 139.70}, "abc", "ja")
	require.NoError(t, err)
	require.NotNil(t, route.DistanceMeters)
	assert.Equal(t, 812, *route.DistanceMeters)
	assert.Equal(t, "640s", route.Duration)

	assert.Equal(t, "WALK", got.TravelMode)
	assert.Equal(t, "abc", got.Destination.PlaceID)
	require.NotNil(t, got.Origin.Location)
	assert.Equal(t, 139.70, got.Origin.Location.LatLng.Longitude)
}

func TestComputeRouteEmpty(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"routes":[]}`)
	})

	_, err := c.ComputeRoute(context.Background(), types.GeoPoint{}, "abc", "ja")
	assert.ErrorIs(t, err, errNoRoute)
}
