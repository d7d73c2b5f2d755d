package providers

import (
	"context"

	"github.com/i474232898/danish-weather/internal/weather"
)

const (
	yrResponsePrefix   = "Invalid YR.no response"
	yrConditionsPrefix = "Invalid YR.no conditions"
)

// YR adapts the MET Norway locationforecast payload served by the proxy.
type YR struct {
	client Fetcher
	opts   Options
	schema *weather.Schema
}

func NewYR(client Fetcher, opts Options) *YR {
	return &YR{
		client: client,
		opts:   opts.withDefaults(),
		schema: weather.YRSchema,
	}
}

func (a *YR) Name() string {
	return weather.ProviderYR
}

// FetchWeatherData returns the normalized document built from the first
// timestep of the MET Norway timeseries.
func (a *YR) FetchWeatherData(ctx context.Context, coord weather.Coordinate) (weather.WeatherData, error) {
	env, err := fetchPayload(ctx, a.client, a.opts.ProxyBaseURL, weather.ProviderYR, coord)
	if err != nil {
		return weather.WeatherData{}, err
	}

	step := env.payload.Get("properties.timeseries.0")
	if !step.IsObject() {
		return weather.WeatherData{}, structuralError(weather.ProviderYR, "Invalid MET Norway response structure", env.upstream)
	}
	details := step.Get("data.instant.details")

	symbol := weather.UnknownSymbol
	if s := text(step.Get("data.next_1_hours.summary.symbol_code")); s != nil {
		symbol = *s
	}
	code := weather.SymbolCode(symbol)
	description := weather.Describe(code)

	cand := weather.Candidate{
		Temperature:     number(details.Get("air_temperature")),
		TemperatureUnit: weather.UnitCelsius,
		WindSpeed:       number(details.Get("wind_speed")),
		WindSpeedUnit:   weather.UnitMetersPerSecond,
		Humidity:        number(details.Get("relative_humidity")),
		Code:            &code,
		Description:     &description,
		Timestamp:       text(step.Get("time")),
	}
	if dir := number(details.Get("wind_from_direction")); dir != nil {
		cand.WindDirection = dir
		cand.WindDirectionUnit = weather.UnitDegrees
	}

	current, err := a.schema.Validate(cand)
	if err != nil {
		return weather.WeatherData{}, invalid(weather.ProviderYR, yrResponsePrefix, err)
	}

	data := weather.WeatherData{
		Location: weather.Location{
			ID:   locationID(weather.ProviderYR, coord),
			Name: a.opts.locationName(ctx, coord),
		},
		Current:     current,
		Forecast:    []weather.ForecastEntry{},
		LastUpdated: weather.Timestamp(a.opts.Now()),
	}
	if err := a.schema.ValidateData(data); err != nil {
		return weather.WeatherData{}, invalid(weather.ProviderYR, yrResponsePrefix, err)
	}
	return data, nil
}

// FetchObservation returns only the current conditions.
func (a *YR) FetchObservation(ctx context.Context, coord weather.Coordinate) (weather.Observation, error) {
	data, err := a.FetchWeatherData(ctx, coord)
	if err != nil {
		return weather.Observation{}, err
	}

	obs, err := a.schema.Validate(weather.CandidateOf(data.Current))
	if err != nil {
		return weather.Observation{}, invalid(weather.ProviderYR, yrConditionsPrefix, err)
	}
	return obs, nil
}
