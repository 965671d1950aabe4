package handlers

import (
	"QuickToilet/src/logging"
	"QuickToilet/src/nearby"
	"QuickToilet/src/present"
	"QuickToilet/src/types"
	"html/template"
	"net/http"
	"os"
)

const (
	pageSize   = 3
	pageRadius = 2000
	pageMax    = 10

	msgInvalidLocation = "現在地の座標が正しくありません。"
	msgSearchFailed    = "検索に失敗しました。しばらくしてから再度お試しください。"
)

type PageOptions struct {
	Estimator present.WalkingEstimator
}

type PlaceCard struct {
	types.Place
	DistanceText  string
	WalkMinutes   int
	ShortAddress  string
	NavigationURL string
}

type PlacesPage struct {
	Name      string
	HasOrigin bool
	UserLat   float64
	UserLng   float64
	Places    []PlaceCard
	Total     int
	Error     string
}

// HandlePlacesHTML renders the nearest restrooms for ?lat=&lng=. Without
// coordinates it renders the shell whose script asks the browser for a position.
func HandlePlacesHTML(w http.ResponseWriter, r *http.Request, searcher NearbySearcher, tmpl *template.Template, opts PageOptions) {
	data, status := handleGetPlaces(r, searcher, opts)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := tmpl.Execute(w, data); err != nil {
		logging.FromContext(r.Context()).Error("render places page", "error", err)
	}
}

func handleGetPlaces(r *http.Request, searcher NearbySearcher, opts PageOptions) (*PlacesPage, int) {
	data := &PlacesPage{Name: "Quick Toilet"}
	q := r.URL.Query()
	if q.Get("lat") == "" && q.Get("lng") == "" {
		return data, http.StatusOK
	}

	params, err := nearby.ParseParams(q, pageMax)
	if err != nil {
		data.Error = msgInvalidLocation
		return data, http.StatusBadRequest
	}
	params.Radius = pageRadius
	params.Max = pageMax
	data.HasOrigin = true
	data.UserLat = params.Lat
	data.UserLng = params.Lng

	logger := logging.FromContext(r.Context())
	if err := searcher.Ready(); err != nil {
		logger.Error("nearby search is not configured", "error", err)
		data.Error = msgSearchFailed
		return data, http.StatusInternalServerError
	}

	places, err := searcher.Search(r.Context(), params)
	if err != nil {
		status, _ := searchFailure(err)
		logger.Error("nearby search failed", "status", status, "error", err)
		data.Error = msgSearchFailed
		return data, status
	}

	data.Total = len(places)
	if len(places) > pageSize {
		places = places[:pageSize]
	}
	ua := r.UserAgent()
	for _, p := range places {
		data.Places = append(data.Places, PlaceCard{
			Place:         p,
			DistanceText:  present.FormatDistance(p.Distance),
			WalkMinutes:   opts.Estimator.WalkingMinutes(p),
			ShortAddress:  present.ShortAddress(p.FormattedAddress),
			NavigationURL: present.NavigationURL(ua, p.Latitude, p.Longitude),
		})
	}
	return data, http.StatusOK
}

func LoadTemplate(filename string) (*template.Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	return template.New("places").Funcs(template.FuncMap{
		"add":   func(a, b int) int { return a + b },
		"isSet": func(b *bool) bool { return b != nil && *b },
	}).Parse(string(data))
}
