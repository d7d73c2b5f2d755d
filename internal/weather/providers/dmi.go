package providers

import (
	"context"

	"github.com/i474232898/danish-weather/internal/weather"
)

const (
	dmiResponsePrefix   = "Invalid DMI response"
	dmiConditionsPrefix = "Invalid DMI conditions"

	dmiCountry = "DK"

	// Open-Meteo reports wind speed in km/h.
	kmhPerMetersPerSecond = 3.6
)

// DMI adapts the Open-Meteo "current" block served by the proxy.
type DMI struct {
	client Fetcher
	opts   Options
	schema *weather.Schema
}

func NewDMI(client Fetcher, opts Options) *DMI {
	return &DMI{
		client: client,
		opts:   opts.withDefaults(),
		schema: weather.DMISchema,
	}
}

func (a *DMI) Name() string {
	return weather.ProviderDMI
}

func (a *DMI) FetchWeatherData(ctx context.Context, coord weather.Coordinate) (weather.WeatherData, error) {
	env, err := fetchPayload(ctx, a.client, a.opts.ProxyBaseURL, weather.ProviderDMI, coord)
	if err != nil {
		return weather.WeatherData{}, err
	}

	current := env.payload.Get("current")
	if !current.IsObject() {
		return weather.WeatherData{}, structuralError(weather.ProviderDMI, "Invalid Open-Meteo response structure", env.upstream)
	}

	cand := weather.Candidate{
		Temperature:     number(current.Get("temperature_2m")),
		TemperatureUnit: weather.UnitDegreeCelsius,
		WindSpeedUnit:   weather.UnitMetersPerSecond,
		Timestamp:       text(current.Get("time")),
	}
	if kmh := number(current.Get("wind_speed_10m")); kmh != nil {
		ms := *kmh / kmhPerMetersPerSecond
		cand.WindSpeed = &ms
	}
	if h := number(current.Get("relative_humidity_2m")); h != nil {
		cand.Humidity = h
	} else {
		cand.Humidity = number(current.Get("relative_humidity"))
	}

	description := weather.UnknownDescription
	if n := number(current.Get("weather_code")); n != nil {
		code, ok := weather.WMOCodeOf(*n)
		if !ok {
			return weather.WeatherData{}, invalid(weather.ProviderDMI, dmiResponsePrefix, &weather.ValidationError{
				Issues: []weather.FieldIssue{{Field: "weatherDescription.code", Rule: "type", Param: "integer"}},
			})
		}
		description = weather.Describe(code)
		cand.Code = &code
	}
	cand.Description = &description

	obs, err := a.schema.Validate(cand)
	if err != nil {
		return weather.WeatherData{}, invalid(weather.ProviderDMI, dmiResponsePrefix, err)
	}

	lat, lon := coord.Latitude, coord.Longitude
	data := weather.WeatherData{
		Location: weather.Location{
			ID:        locationID(weather.ProviderDMI, coord),
			Name:      a.opts.locationName(ctx, coord),
			Country:   dmiCountry,
			Latitude:  &lat,
			Longitude: &lon,
		},
		Current:     obs,
		Forecast:    []weather.ForecastEntry{},
		LastUpdated: weather.Timestamp(a.opts.Now()),
	}
	if err := a.schema.ValidateData(data); err != nil {
		return weather.WeatherData{}, invalid(weather.ProviderDMI, dmiResponsePrefix, err)
	}
	return data, nil
}

func (a *DMI) FetchObservation(ctx context.Context, coord weather.Coordinate) (weather.Observation, error) {
	data, err := a.FetchWeatherData(ctx, coord)
	if err != nil {
		return weather.Observation{}, err
	}

	obs, err := a.schema.Validate(weather.CandidateOf(data.Current))
	if err != nil {
		return weather.Observation{}, invalid(weather.ProviderDMI, dmiConditionsPrefix, err)
	}
	return obs, nil
}
