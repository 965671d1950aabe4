package google

import (
	"QuickToilet/src/types"
	"context"
	"errors"
	"net/http"
)

const routesFieldMask = "routes.distanceMeters,routes.duration"

var errNoRoute = errors.New("computeRoutes: no route returned")

type waypointLocation struct {
	LatLng latLng `json:"latLng"`
}

type waypoint struct {
	Location *waypointLocation `json:"location,omitempty"`
	PlaceID  string            `json:"placeId,omitempty"`
}

type routesRequest struct {
	Origin       waypoint `json:"origin"`
	Destination  waypoint `json:"destination"`
	TravelMode   string   `json:"travelMode"`
	LanguageCode string   `json:"languageCode,omitempty"`
}

type routesResponse struct {
	Routes []struct {
		DistanceMeters *int   `json:"distanceMeters"`
		Duration       string `json:"duration"`
	} `json:"routes"`
}

// ComputeRoute asks for a walking route from origin to the place. The first
// route is returned as is; callers validate distance and duration.
func (c *Client) ComputeRoute(ctx context.Context, origin types.GeoPoint, placeID, language string) (*types.Route, error) {
	body := routesRequest{
		Origin: waypoint{Location: &waypointLocation{
			LatLng: latLng{Latitude: origin.Lat, Longitude: origin.Lon},
		}},
		Destination:  waypoint{PlaceID: placeID},
		TravelMode:   "WALK",
		LanguageCode: language,
	}

	var resp routesResponse
	if err := c.do(ctx, "computeRoutes", http.MethodPost, c.routesBaseURL+"/directions/v2:computeRoutes", routesFieldMask, body, &resp); err != nil {
		return nil, err
	}
	if len(resp.Routes) == 0 {
		return nil, errNoRoute
	}
	r := resp.Routes[0]
	return &types.Route{DistanceMeters: r.DistanceMeters, Duration: r.Duration}, nil
}
