package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/danish-weather/internal/weather"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, weather.Coordinate{Latitude: 55.6761, Longitude: 12.5683}, cfg.Coordinate())
	assert.Equal(t, "Location", cfg.LocationName)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 45*time.Second, cfg.RefreshTimeout)
	assert.Equal(t, 5*time.Second, cfg.FetchTimeout)
	assert.Equal(t, 2, cfg.FetchMaxRetries)
	assert.Equal(t, time.Second, cfg.FetchBackoffStep)
	assert.Equal(t, 10*time.Second, cfg.UpstreamTimeout)
	assert.Equal(t, "http://127.0.0.1:8080", cfg.ProxyBaseURL)
	assert.Equal(t, DefaultUserAgent, cfg.UserAgent)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.ZipkinURL)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LATITUDE", "59.9139")
	t.Setenv("LONGITUDE", "10.7522")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("FETCH_MAX_RETRIES", "4")
	t.Setenv("LOG_FORMAT", "console")

	cfg, err := load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 59.9139, cfg.Latitude)
	assert.Equal(t, 10.7522, cfg.Longitude)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 4, cfg.FetchMaxRetries)
	assert.Equal(t, "console", cfg.LogFormat)
	assert.Equal(t, "http://127.0.0.1:9090", cfg.ProxyBaseURL)
}

func TestLoad_ExplicitProxyURL(t *testing.T) {
	t.Setenv("PROXY_BASE_URL", "http://weather-proxy:8080")

	cfg, err := load(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "http://weather-proxy:8080", cfg.ProxyBaseURL)
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string]string{
		"LATITUDE":          "123",
		"LOG_LEVEL":         "verbose",
		"FETCH_MAX_RETRIES": "-1",
		"REFRESH_INTERVAL":  "0s",
		"METNO_URL":         "not a url",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)

			_, err := load(viper.New())
			assert.Error(t, err)
		})
	}
}
