package handlers

import (
	"QuickToilet/src/logging"
	"QuickToilet/src/nearby"
	"QuickToilet/src/types"
	"context"
	"encoding/json"
	"errors"
	"net/http"
)

type NearbySearcher interface {
	Ready() error
	Search(ctx context.Context, p nearby.Params) ([]types.Place, error)
}

type APIOptions struct {
	DefaultMax int
	NoStore    bool
}

type nearbyResponse struct {
	Places []types.Place `json:"places"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func HandleNearbyAPI(w http.ResponseWriter, r *http.Request, searcher NearbySearcher, opts APIOptions) {
	logger := logging.FromContext(r.Context())

	if err := searcher.Ready(); err != nil {
		logger.Error("nearby search is not configured", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}

	params, err := nearby.ParseParams(r.URL.Query(), opts.DefaultMax)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	places, err := searcher.Search(r.Context(), params)
	if err != nil {
		status, body := searchFailure(err)
		logger.Error("nearby search failed", "status", status, "error", err)
		writeJSON(w, status, body)
		return
	}
	if places == nil {
		places = []types.Place{}
	}

	if opts.NoStore {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
	}
	writeJSON(w, http.StatusOK, nearbyResponse{Places: places})
}

// searchFailure maps a Search error onto the HTTP status and body clients see.
func searchFailure(err error) (int, errorResponse) {
	var upstream *types.UpstreamError
	switch {
	case errors.As(err, &upstream):
		status := http.StatusBadGateway
		if upstream.Status == http.StatusBadRequest {
			status = http.StatusBadRequest
		}
		return status, errorResponse{Error: "Places API request failed", Details: upstream.Body}
	case errors.Is(err, types.ErrMissingCredential):
		return http.StatusInternalServerError, errorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, errorResponse{Error: "Server error"}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandlePanic answers 500 for any panic raised while serving a request.
func HandlePanic(w http.ResponseWriter, r *http.Request, v any) {
	logging.FromContext(r.Context()).Error("panic while serving request", "panic", v)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Server error"})
}
