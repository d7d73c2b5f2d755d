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

const (
	DefaultOpenMeteoURL = "https://api.open-meteo.com/v1/forecast"

	openMeteoCurrentFields = "temperature_2m,wind_speed_10m,weather_code"
)

// OpenMeteo fetches the flat "current" block that backs the DMI adapter.
type OpenMeteo struct {
	client  *http.Client
	baseURL string
	circuit *gobreaker.CircuitBreaker
}

func NewOpenMeteo(client *http.Client, baseURL string) *OpenMeteo {
	if baseURL == "" {
		baseURL = DefaultOpenMeteoURL
	}
	return &OpenMeteo{
		client:  client,
		baseURL: baseURL,
		circuit: newBreaker("openmeteo"),
	}
}

func (o *OpenMeteo) Name() string {
	return weather.ProviderDMI
}

func (o *OpenMeteo) Fetch(ctx context.Context, coord weather.Coordinate) (json.RawMessage, error) {
	buildRequest := func(ctx context.Context) (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", common.FormatDegrees(coord.Latitude))
		values.Set("longitude", common.FormatDegrees(coord.Longitude))
		values.Set("current", openMeteoCurrentFields)

		u := fmt.Sprintf("%s?%s", o.baseURL, values.Encode())
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Cache-Control", "no-cache")
		return req, nil
	}

	return doRequest(ctx, o.Name(), o.client, o.circuit, buildRequest)
}
