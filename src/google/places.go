package google

import (
	"QuickToilet/src/types"
	"context"
	"net/http"
	"net/url"
	"strings"
)

const textSearchPageSize = 20

var (
	searchFieldMask = strings.Join([]string{
		"places.id",
		"places.displayName",
		"places.location",
		"places.formattedAddress",
	}, ",")
	detailsFieldMask = strings.Join([]string{
		"regularOpeningHours",
		"accessibilityOptions",
		"goodForChildren",
	}, ",")
)

type latLng struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type circle struct {
	Center latLng  `json:"center"`
	Radius float64 `json:"radius"`
}

type area struct {
	Circle circle `json:"circle"`
}

type nearbyRequest struct {
	IncludedTypes       []string `json:"includedTypes"`
	LocationRestriction area     `json:"locationRestriction"`
	MaxResultCount      int      `json:"maxResultCount"`
	LanguageCode        string   `json:"languageCode,omitempty"`
}

type textRequest struct {
	TextQuery      string `json:"textQuery"`
	LanguageCode   string `json:"languageCode,omitempty"`
	PageSize       int    `json:"pageSize"`
	RankPreference string `json:"rankPreference"`
	LocationBias   area   `json:"locationBias"`
}

type rawPlace struct {
	ID          string `json:"id"`
	DisplayName *struct {
		Text string `json:"text"`
	} `json:"displayName"`
	Location *struct {
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"location"`
	FormattedAddress string `json:"formattedAddress"`
}

type searchResponse struct {
	Places []rawPlace `json:"places"`
}

type detailsResponse struct {
	RegularOpeningHours *struct {
		Periods []types.OpeningPeriod `json:"periods"`
	} `json:"regularOpeningHours"`
	AccessibilityOptions *struct {
		WheelchairAccessibleEntrance any `json:"wheelchairAccessibleEntrance"`
	} `json:"accessibilityOptions"`
	GoodForChildren any `json:"goodForChildren"`
}

func regionOf(q types.SearchQuery) area {
	return area{Circle: circle{
		Center: latLng{Latitude: q.Center.Lat, Longitude: q.Center.Lon},
		Radius: float64(q.Radius),
	}}
}

// SearchNearby runs places:searchNearby restricted to the query circle and category.
func (c *Client) SearchNearby(ctx context.Context, q types.SearchQuery) ([]types.RawPlace, error) {
	body := nearbyRequest{
		IncludedTypes:       []string{q.Category},
		LocationRestriction: regionOf(q),
		MaxResultCount:      q.Max,
		LanguageCode:        q.Language,
	}
	var resp searchResponse
	if err := c.do(ctx, "searchNearby", http.MethodPost, c.placesBaseURL+"/places:searchNearby", searchFieldMask, body, &resp); err != nil {
		return nil, err
	}
	return toRaw(resp.Places), nil
}

// SearchText runs places:searchText biased towards the query circle, nearest first.
func (c *Client) SearchText(ctx context.Context, q types.SearchQuery) ([]types.RawPlace, error) {
	body := textRequest{
		TextQuery:      q.Text,
		LanguageCode:   q.Language,
		PageSize:       textSearchPageSize,
		RankPreference: "DISTANCE",
		LocationBias:   regionOf(q),
	}
	var resp searchResponse
	if err := c.do(ctx, "searchText", http.MethodPost, c.placesBaseURL+"/places:searchText", searchFieldMask, body, &resp); err != nil {
		return nil, err
	}
	return toRaw(resp.Places), nil
}

func (c *Client) GetDetails(ctx context.Context, placeID, language string) (*types.PlaceDetails, error) {
	u := c.placesBaseURL + "/places/" + url.PathEscape(placeID)
	if language != "" {
		u += "?languageCode=" + url.QueryEscape(language)
	}
	var resp detailsResponse
	if err := c.do(ctx, "placeDetails", http.MethodGet, u, detailsFieldMask, nil, &resp); err != nil {
		return nil, err
	}

	d := &types.PlaceDetails{GoodForChildren: resp.GoodForChildren}
	if resp.RegularOpeningHours != nil {
		d.Periods = resp.RegularOpeningHours.Periods
	}
	if resp.AccessibilityOptions != nil {
		d.WheelchairAccessibleEntrance = resp.AccessibilityOptions.WheelchairAccessibleEntrance
	}
	return d, nil
}

func toRaw(list []rawPlace) []types.RawPlace {
	out := make([]types.RawPlace, 0, len(list))
	for _, p := range list {
		r := types.RawPlace{ID: p.ID, Address: p.FormattedAddress}
		if p.DisplayName != nil {
			r.Name = p.DisplayName.Text
		}
		if p.Location != nil && p.Location.Latitude != nil && p.Location.Longitude != nil {
			r.Location = &types.GeoPoint{Lat: *p.Location.Latitude, Lon: *p.Location.Longitude}
		}
		out = append(out, r)
	}
	return out
}
