package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/i474232898/danish-weather/internal/common"
	"github.com/i474232898/danish-weather/internal/weather"
)

const DefaultMetNorwayURL = "https://api.met.no/weatherapi/locationforecast/2.0/compact"

// MetNorway fetches the compact locationforecast that backs the YR adapter.
// MET Norway rejects requests without an identifying User-Agent.
type MetNorway struct {
	client    *http.Client
	baseURL   string
	userAgent string
	circuit   *gobreaker.CircuitBreaker
}

func NewMetNorway(client *http.Client, baseURL, userAgent string) *MetNorway {
	if baseURL == "" {
		baseURL = DefaultMetNorwayURL
	}
	return &MetNorway{
		client:    client,
		baseURL:   baseURL,
		userAgent: userAgent,
		circuit:   newBreaker("metno"),
	}
}

func (m *MetNorway) Name() string {
	return weather.ProviderYR
}

func (m *MetNorway) Fetch(ctx context.Context, coord weather.Coordinate) (json.RawMessage, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", common.FormatDegrees(coord.Latitude))
		values.Set("lon", common.FormatDegrees(coord.Longitude))

		u := fmt.Sprintf("%s?%s", m.baseURL, values.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("User-Agent", m.userAgent)
		req.Header.Set("Cache-Control", "no-cache")
		return req, nil
	}

	return doRequest(ctx, m.Name(), m.client, m.circuit, buildRequest)
}
