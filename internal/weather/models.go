package weather

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/danish-weather/internal/common"
)

// Provider names used as keys throughout the pipeline.
const (
	ProviderYR  = "yr"
	ProviderDMI = "dmi"
)

// TimestampLayout matches the ISO-8601 form with millisecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// TemperatureUnit is the unit literal a provider publishes for temperature.
// Both values mean degrees Celsius.
type TemperatureUnit string

const (
	UnitCelsius       TemperatureUnit = "celsius"
	UnitDegreeCelsius TemperatureUnit = "°C"
)

// IsCelsius reports whether u is one of the known Celsius spellings.
func (u TemperatureUnit) IsCelsius() bool {
	return u == UnitCelsius || u == UnitDegreeCelsius
}

const (
	UnitMetersPerSecond = "m/s"
	UnitDegrees         = "degrees"
)

var coordinateRules = validator.New()

// Coordinate is a point in decimal degrees.
type Coordinate struct {
	// required rejects an exact 0, so (0, 0) is never accepted.
	Latitude  float64 `json:"latitude" validate:"required,gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"required,gte=-180,lte=180"`
}

// Validate checks that c is usable for a provider query. NaN fails the range rules.
func (c Coordinate) Validate() error {
	// -0 must count as zero too.
	c.Latitude, c.Longitude = c.Latitude+0, c.Longitude+0
	return coordinateRules.Struct(c)
}

// Key returns a canonical string key for indexing this coordinate in stores.
func (c Coordinate) Key() string {
	return common.FormatDegrees(c.Latitude) + "," + common.FormatDegrees(c.Longitude)
}

// Temperature is a temperature reading in Celsius.
type Temperature struct {
	Value float64         `json:"value"`
	Unit  TemperatureUnit `json:"unit"`
}

// Measurement is a value with a fixed unit literal.
type Measurement struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// WeatherCode is a provider condition code. YR publishes symbolic codes
// ("clearsky_day"), DMI publishes WMO integers.
type WeatherCode struct {
	Symbol  string
	WMO     int
	Numeric bool
}

// SymbolCode builds a symbolic code.
func SymbolCode(s string) WeatherCode {
	return WeatherCode{Symbol: s}
}

// WMOCode builds a numeric WMO code.
func WMOCode(n int) WeatherCode {
	return WeatherCode{WMO: n, Numeric: true}
}

func (c WeatherCode) String() string {
	if c.Numeric {
		return strconv.Itoa(c.WMO)
	}
	return c.Symbol
}

func (c WeatherCode) MarshalJSON() ([]byte, error) {
	if c.Numeric {
		return json.Marshal(c.WMO)
	}
	return json.Marshal(c.Symbol)
}

func (c *WeatherCode) UnmarshalJSON(b []byte) error {
	var n int
	if err := json.Unmarshal(b, &n); err == nil {
		*c = WMOCode(n)
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("weather code must be a string or integer: %s", string(b))
	}
	*c = SymbolCode(s)
	return nil
}

// Description is a condition code together with its human-readable text.
type Description struct {
	Code        WeatherCode `json:"code"`
	Description string      `json:"description"`
}

// Observation is the provider-agnostic current reading produced by every adapter.
type Observation struct {
	Temperature        Temperature  `json:"temperature"`
	WindSpeed          Measurement  `json:"windSpeed"`
	WindDirection      *Measurement `json:"windDirection,omitempty"`
	Humidity           *float64     `json:"humidity,omitempty"`
	WeatherDescription Description  `json:"weatherDescription"`
	Timestamp          string       `json:"timestamp"`
}

// ForecastEntry shares the per-field shape of Observation.
type ForecastEntry struct {
	Time               string      `json:"time" validate:"required"`
	Temperature        Temperature `json:"temperature"`
	Precipitation      *float64    `json:"precipitation,omitempty" validate:"omitempty,finite,gte=0"`
	WeatherDescription Description `json:"weatherDescription"`
	WindSpeed          Measurement `json:"windSpeed"`
}

// Location identifies the point an adapter reported on. Country and the
// coordinate are only published by DMI.
type Location struct {
	ID        string   `json:"id" validate:"required"`
	Name      string   `json:"name" validate:"required"`
	Country   string   `json:"country,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// WeatherData is the full normalized document an adapter produces.
type WeatherData struct {
	Location    Location        `json:"location"`
	Current     Observation     `json:"current"`
	Forecast    []ForecastEntry `json:"forecast" validate:"dive"`
	LastUpdated string          `json:"lastUpdated" validate:"required"`
}

// ProviderErrors holds the stringified failure per provider, nil on success.
type ProviderErrors struct {
	YR  *string `json:"yr"`
	DMI *string `json:"dmi"`
}

// AggregatedResult is the side-by-side view of both providers. For each
// provider exactly one of the observation and the error is set.
type AggregatedResult struct {
	YR     *Observation   `json:"yr"`
	DMI    *Observation   `json:"dmi"`
	Errors ProviderErrors `json:"errors"`
}

// Failed reports whether neither provider produced an observation.
func (r AggregatedResult) Failed() bool {
	return r.YR == nil && r.DMI == nil
}

// Timestamp formats t the way lastUpdated fields are published.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
