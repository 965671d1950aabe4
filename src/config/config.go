package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ProviderGoogle  = "google"
	ProviderElastic = "elastic"
)

type Config struct {
	Addr           string
	Provider       string
	GoogleAPIKey   string
	Language       string
	TextQuery      string
	Category       string
	RoutesEnabled  bool
	DefaultMax     int
	NoStore        bool
	HTTPTimeout    time.Duration
	ElasticURL     string
	ElasticIndex   string
	ElasticSchema  string
	ElasticData    string
	TemplatePath   string
	WalkPathFactor float64
	WalkSpeed      float64
	LogLevel       slog.Level
}

func Default() *Config {
	return &Config{
		Addr:           ":8888",
		Provider:       ProviderGoogle,
		Language:       "ja",
		TextQuery:      "公衆トイレ",
		Category:       "public_bathroom",
		RoutesEnabled:  true,
		DefaultMax:     20,
		NoStore:        true,
		HTTPTimeout:    15 * time.Second,
		ElasticURL:     "http://localhost:9200",
		ElasticIndex:   "restrooms",
		ElasticSchema:  "./src/templates/schema.json",
		ElasticData:    "./materials/restrooms.csv",
		TemplatePath:   "./src/templates/places.html",
		WalkPathFactor: 1.35,
		WalkSpeed:      80,
		LogLevel:       slog.LevelInfo,
	}
}

// Load reads .env when present and overlays environment variables on Default.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env not found, using process environment")
	}
	return FromEnv(os.LookupEnv)
}

func FromEnv(lookup func(string) (string, bool)) (*Config, error) {
	cfg := Default()
	r := reader{lookup: lookup}

	r.str("ADDR", &cfg.Addr)
	r.str("PLACES_PROVIDER", &cfg.Provider)
	r.str("GOOGLE_PLACES_API_KEY", &cfg.GoogleAPIKey)
	r.str("PLACES_LANGUAGE", &cfg.Language)
	r.str("PLACES_TEXT_QUERY", &cfg.TextQuery)
	r.str("PLACES_CATEGORY", &cfg.Category)
	r.boolean("ROUTES_ENABLED", &cfg.RoutesEnabled)
	r.integer("DEFAULT_MAX", &cfg.DefaultMax)
	r.boolean("NO_STORE", &cfg.NoStore)
	r.duration("HTTP_TIMEOUT", &cfg.HTTPTimeout)
	r.str("ELASTIC_URL", &cfg.ElasticURL)
	r.str("ELASTIC_INDEX", &cfg.ElasticIndex)
	r.str("ELASTIC_SCHEMA", &cfg.ElasticSchema)
	r.str("ELASTIC_DATA", &cfg.ElasticData)
	r.str("TEMPLATE_PATH", &cfg.TemplatePath)
	r.float("WALK_PATH_FACTOR", &cfg.WalkPathFactor)
	r.float("WALK_SPEED", &cfg.WalkSpeed)
	r.level("LOG_LEVEL", &cfg.LogLevel)

	if r.err != nil {
		return nil, r.err
	}

	cfg.Provider = strings.ToLower(cfg.Provider)
	if cfg.Provider != ProviderGoogle && cfg.Provider != ProviderElastic {
		return nil, fmt.Errorf("PLACES_PROVIDER: unknown provider %q", cfg.Provider)
	}
	if cfg.DefaultMax < 1 || cfg.DefaultMax > 20 {
		return nil, fmt.Errorf("DEFAULT_MAX: must be between 1 and 20, got %d", cfg.DefaultMax)
	}
	if cfg.WalkSpeed <= 0 {
		return nil, fmt.Errorf("WALK_SPEED: must be positive, got %v", cfg.WalkSpeed)
	}
	return cfg, nil
}

// reader keeps the first parse error so Load can report it once.
type reader struct {
	lookup func(string) (string, bool)
	err    error
}

func (r *reader) get(key string) (string, bool) {
	if r.err != nil {
		return "", false
	}
	v, ok := r.lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func (r *reader) str(key string, dst *string) {
	if v, ok := r.get(key); ok {
		*dst = v
	}
}

func (r *reader) boolean(key string, dst *bool) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = b
}

func (r *reader) integer(key string, dst *int) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = n
}

func (r *reader) float(key string, dst *float64) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = f
}

func (r *reader) duration(key string, dst *time.Duration) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
		return
	}
	*dst = d
}

func (r *reader) level(key string, dst *slog.Level) {
	v, ok := r.get(key)
	if !ok {
		return
	}
	if err := dst.UnmarshalText([]byte(v)); err != nil {
		r.err = fmt.Errorf("%s: %w", key, err)
	}
}
