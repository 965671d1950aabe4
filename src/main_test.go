package main

import (
	"QuickToilet/src/config"
	"QuickToilet/src/handlers"
	"QuickToilet/src/nearby"
	"QuickToilet/src/types"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type panicky struct{}

func (panicky) Ready() error { return nil }

func (panicky) Search(context.Context, nearby.Params) ([]types.Place, error) {
	panic("unexpected")
}

func TestHandleKitRoutes(t *testing.T) {
	tmpl, err := handlers.LoadTemplate("templates/places.html")
	require.NoError(t, err)
	router := handleKit(panicky{}, tmpl, config.Default())

	cases := []struct {
		method, target string
		status         int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/api/nearby", http.StatusBadRequest},
		{http.MethodGet, "/api/nearby?lat=35&lng=139", http.StatusInternalServerError},
		{http.MethodPost, "/api/nearby", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/unknown", http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.target, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.target, nil))
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
