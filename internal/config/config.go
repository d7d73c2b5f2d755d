package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/i474232898/danish-weather/internal/weather"
)

const DefaultUserAgent = "DanishWeatherApp/1.0 (+https://github.com/i474232898/danish-weather)"

type AppConfig struct {
	Port string `mapstructure:"PORT" validate:"required,numeric"`

	// Location refreshed by the scheduler and served by /weather/latest.
	Latitude       float64 `mapstructure:"LATITUDE" validate:"gte=-90,lte=90"`
	Longitude      float64 `mapstructure:"LONGITUDE" validate:"gte=-180,lte=180"`
	LocationName   string  `mapstructure:"LOCATION_NAME" validate:"required"`
	GeocoderAPIKey string  `mapstructure:"GEOCODER_API_KEY"`

	RefreshInterval time.Duration `mapstructure:"REFRESH_INTERVAL" validate:"gt=0"`
	RefreshTimeout  time.Duration `mapstructure:"REFRESH_TIMEOUT" validate:"gt=0"`
	SnapshotMaxAge  time.Duration `mapstructure:"SNAPSHOT_MAX_AGE" validate:"gte=0"`

	// Retrying client used by the adapters.
	FetchTimeout     time.Duration `mapstructure:"FETCH_TIMEOUT" validate:"gt=0"`
	FetchMaxRetries  int           `mapstructure:"FETCH_MAX_RETRIES" validate:"gte=0,lte=10"`
	FetchBackoffStep time.Duration `mapstructure:"FETCH_BACKOFF_STEP" validate:"gte=0"`

	// Proxy side.
	UpstreamTimeout time.Duration `mapstructure:"UPSTREAM_TIMEOUT" validate:"gt=0"`
	ProxyBaseURL    string        `mapstructure:"PROXY_BASE_URL" validate:"omitempty,url"`
	MetNorwayURL    string        `mapstructure:"METNO_URL" validate:"required,url"`
	OpenMeteoURL    string        `mapstructure:"OPENMETEO_URL" validate:"required,url"`
	UserAgent       string        `mapstructure:"USER_AGENT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"oneof=trace debug info warn error"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"oneof=json console"`
	ZipkinURL string `mapstructure:"ZIPKIN_URL" validate:"omitempty,url"`
}

// Coordinate returns the configured refresh location.
func (c *AppConfig) Coordinate() weather.Coordinate {
	return weather.Coordinate{Latitude: c.Latitude, Longitude: c.Longitude}
}

var defaults = map[string]any{
	"PORT":               "8080",
	"LATITUDE":           55.6761,
	"LONGITUDE":          12.5683,
	"LOCATION_NAME":      "Location",
	"GEOCODER_API_KEY":   "",
	"REFRESH_INTERVAL":   "10m",
	"REFRESH_TIMEOUT":    "45s",
	"SNAPSHOT_MAX_AGE":   "30m",
	"FETCH_TIMEOUT":      "5s",
	"FETCH_MAX_RETRIES":  2,
	"FETCH_BACKOFF_STEP": "1s",
	"UPSTREAM_TIMEOUT":   "10s",
	"PROXY_BASE_URL":     "",
	"METNO_URL":          "https://api.met.no/weatherapi/locationforecast/2.0/compact",
	"OPENMETEO_URL":      "https://api.open-meteo.com/v1/forecast",
	"USER_AGENT":         DefaultUserAgent,
	"LOG_LEVEL":          "info",
	"LOG_FORMAT":         "json",
	"ZIPKIN_URL":         "",
}

// Load reads configuration from an optional .env file and the environment,
// with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("could not load .env file")
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*AppConfig, error) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	cfg := &AppConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.ProxyBaseURL == "" {
		cfg.ProxyBaseURL = "http://127.0.0.1:" + cfg.Port
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
