package main

import (
	"QuickToilet/src/config"
	"QuickToilet/src/db"
	"QuickToilet/src/google"
	"QuickToilet/src/handlers"
	"QuickToilet/src/logging"
	"QuickToilet/src/nearby"
	"QuickToilet/src/present"
	"QuickToilet/src/types"
	"context"
	"errors"
	"html/template"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/julienschmidt/httprouter"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	provider, closeProvider, err := newProvider(ctx, cfg, logger)
	if err != nil {
		logger.Error("init places provider", "provider", cfg.Provider, "error", err)
		os.Exit(1)
	}
	defer closeProvider()

	if err := provider.Ready(); err != nil {
		logger.Warn("places provider is not configured, /api/nearby will answer 500", "error", err)
	}

	tmpl, err := handlers.LoadTemplate(cfg.TemplatePath)
	if err != nil {
		logger.Error("load template", "path", cfg.TemplatePath, "error", err)
		os.Exit(1)
	}

	service := nearby.NewService(provider, nearby.Options{
		Category:      cfg.Category,
		TextQuery:     cfg.TextQuery,
		Language:      cfg.Language,
		RoutesEnabled: cfg.RoutesEnabled,
	}, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handlers.RequestLogger(handleKit(service, tmpl, cfg), logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", "error", err)
		}
	}()

	logger.Info("server started", "addr", cfg.Addr, "provider", cfg.Provider)
	if err = srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func newProvider(ctx context.Context, cfg *config.Config, logger *slog.Logger) (types.PlaceProvider, func(), error) {
	if cfg.Provider != config.ProviderElastic {
		return google.NewClient(cfg.GoogleAPIKey, cfg.HTTPTimeout), func() {}, nil
	}

	store, err := db.NewElasticStore(cfg.ElasticURL, cfg.ElasticIndex, logger)
	if err != nil {
		return nil, nil, err
	}
	if err = store.CreateIndexWithMapping(ctx, cfg.ElasticSchema); err != nil {
		store.Stop()
		return nil, nil, err
	}
	if cfg.ElasticData != "" {
		n, err := store.LoadData(ctx, cfg.ElasticData)
		if err != nil {
			store.Stop()
			return nil, nil, err
		}
		logger.Info("restrooms loaded", "count", n, "index", cfg.ElasticIndex)
	}
	return store, store.Stop, nil
}

func handleKit(service handlers.NearbySearcher, tmpl *template.Template, cfg *config.Config) http.Handler {
	router := httprouter.New()
	router.PanicHandler = handlers.HandlePanic

	apiOpts := handlers.APIOptions{DefaultMax: cfg.DefaultMax, NoStore: cfg.NoStore}
	router.GET("/api/nearby", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		handlers.HandleNearbyAPI(w, r, service, apiOpts)
	})

	pageOpts := handlers.PageOptions{Estimator: present.WalkingEstimator{
		PathFactor:      cfg.WalkPathFactor,
		MetersPerMinute: cfg.WalkSpeed,
	}}
	router.GET("/", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		handlers.HandlePlacesHTML(w, r, service, tmpl, pageOpts)
	})

	router.HandlerFunc(http.MethodGet, "/healthz", handlers.HandleHealth)
	return router
}
