package weather

import (
	"errors"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Candidate is an adapter's pre-validation view of the current observation.
// Pointer fields are nil when the upstream omitted them.
type Candidate struct {
	Temperature       *float64        `schema:"temperature.value" validate:"required,finite"`
	TemperatureUnit   TemperatureUnit `schema:"temperature.unit" validate:"required"`
	WindSpeed         *float64        `schema:"windSpeed.value" validate:"required,finite"`
	WindSpeedUnit     string          `schema:"windSpeed.unit" validate:"eq=m/s"`
	WindDirection     *float64        `schema:"windDirection.value" validate:"omitempty,finite,gte=0,lte=360"`
	WindDirectionUnit string          `schema:"windDirection.unit"`
	Humidity          *float64        `schema:"humidity" validate:"omitempty,finite,gte=0,lte=100"`
	Code              *WeatherCode    `schema:"weatherDescription.code" validate:"required"`
	Description       *string         `schema:"weatherDescription.description" validate:"required"`
	Timestamp         *string         `schema:"timestamp" validate:"required"`
}

// CandidateOf turns an observation back into a candidate so it can be
// re-checked against a schema.
func CandidateOf(o Observation) Candidate {
	c := Candidate{
		Temperature:     &o.Temperature.Value,
		TemperatureUnit: o.Temperature.Unit,
		WindSpeed:       &o.WindSpeed.Value,
		WindSpeedUnit:   o.WindSpeed.Unit,
		Humidity:        o.Humidity,
		Code:            &o.WeatherDescription.Code,
		Description:     &o.WeatherDescription.Description,
		Timestamp:       &o.Timestamp,
	}
	if o.WindDirection != nil {
		c.WindDirection = &o.WindDirection.Value
		c.WindDirectionUnit = o.WindDirection.Unit
	}
	return c
}

// Schema is the normalized shape one provider must produce.
type Schema struct {
	Provider        string
	TemperatureUnit TemperatureUnit
	// NumericCode is true when weatherDescription.code must be a WMO integer.
	NumericCode bool
	// Country, when set, is the literal location.country must carry; it also
	// makes the location coordinate mandatory.
	Country string

	validate *validator.Validate
}

var (
	YRSchema  = NewSchema(ProviderYR, UnitCelsius, false, "")
	DMISchema = NewSchema(ProviderDMI, UnitDegreeCelsius, true, "DK")
)

// NewSchema builds a schema with its own validator instance.
func NewSchema(provider string, unit TemperatureUnit, numericCode bool, country string) *Schema {
	s := &Schema{
		Provider:        provider,
		TemperatureUnit: unit,
		NumericCode:     numericCode,
		Country:         country,
	}

	v := validator.New()
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("finite", isFinite)
	v.RegisterStructValidation(s.candidateRules, Candidate{})
	v.RegisterStructValidation(s.forecastRules, ForecastEntry{})
	v.RegisterStructValidation(s.locationRules, Location{})
	s.validate = v

	return s
}

// Validate checks a candidate and, on success, returns the observation it describes.
func (s *Schema) Validate(c Candidate) (Observation, error) {
	if err := s.check(c, ""); err != nil {
		return Observation{}, err
	}

	obs := Observation{
		Temperature:        Temperature{Value: *c.Temperature, Unit: c.TemperatureUnit},
		WindSpeed:          Measurement{Value: *c.WindSpeed, Unit: c.WindSpeedUnit},
		WeatherDescription: Description{Code: *c.Code, Description: *c.Description},
		Timestamp:          *c.Timestamp,
	}
	if c.WindDirection != nil {
		obs.WindDirection = &Measurement{Value: *c.WindDirection, Unit: c.WindDirectionUnit}
	}
	if c.Humidity != nil {
		h := *c.Humidity
		obs.Humidity = &h
	}
	return obs, nil
}

// ValidateData checks a full normalized document, including its current block.
func (s *Schema) ValidateData(d WeatherData) error {
	var issues []FieldIssue

	if err := s.check(d, ""); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		issues = append(issues, verr.Issues...)
	}
	if err := s.check(CandidateOf(d.Current), "current."); err != nil {
		var verr *ValidationError
		if !errors.As(err, &verr) {
			return err
		}
		issues = append(issues, verr.Issues...)
	}

	if len(issues) > 0 {
		return &ValidationError{Issues: issues}
	}
	return nil
}

func (s *Schema) check(v any, prefix string) error {
	err := s.validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	issues := make([]FieldIssue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, FieldIssue{
			Field: prefix + trimRoot(fe.Namespace()),
			Rule:  fe.Tag(),
			Param: fe.Param(),
		})
	}
	return &ValidationError{Issues: issues}
}

func (s *Schema) candidateRules(sl validator.StructLevel) {
	c := sl.Current().Interface().(Candidate)

	switch {
	case c.TemperatureUnit == "":
	case !c.TemperatureUnit.IsCelsius():
		sl.ReportError(c.TemperatureUnit, "temperature.unit", "TemperatureUnit", "celsius", "")
	case c.TemperatureUnit != s.TemperatureUnit:
		sl.ReportError(c.TemperatureUnit, "temperature.unit", "TemperatureUnit", "eq", string(s.TemperatureUnit))
	}
	if c.WindDirection != nil && c.WindDirectionUnit != UnitDegrees {
		sl.ReportError(c.WindDirectionUnit, "windDirection.unit", "WindDirectionUnit", "eq", UnitDegrees)
	}
	if c.Code != nil && c.Code.Numeric != s.NumericCode {
		sl.ReportError(*c.Code, "weatherDescription.code", "Code", "type", s.codeType())
	}
}

func (s *Schema) forecastRules(sl validator.StructLevel) {
	f := sl.Current().Interface().(ForecastEntry)

	if f.Temperature.Unit != s.TemperatureUnit {
		sl.ReportError(f.Temperature.Unit, "temperature.unit", "Temperature", "eq", string(s.TemperatureUnit))
	}
	if !finite(f.Temperature.Value) {
		sl.ReportError(f.Temperature.Value, "temperature.value", "Temperature", "finite", "")
	}
	if f.WindSpeed.Unit != UnitMetersPerSecond {
		sl.ReportError(f.WindSpeed.Unit, "windSpeed.unit", "WindSpeed", "eq", UnitMetersPerSecond)
	}
	if !finite(f.WindSpeed.Value) {
		sl.ReportError(f.WindSpeed.Value, "windSpeed.value", "WindSpeed", "finite", "")
	}
	if f.WeatherDescription.Code.Numeric != s.NumericCode {
		sl.ReportError(f.WeatherDescription.Code, "weatherDescription.code", "WeatherDescription", "type", s.codeType())
	}
}

func (s *Schema) locationRules(sl validator.StructLevel) {
	if s.Country == "" {
		return
	}
	l := sl.Current().Interface().(Location)

	if l.Country != s.Country {
		sl.ReportError(l.Country, "country", "Country", "eq", s.Country)
	}
	if l.Latitude == nil {
		sl.ReportError(l.Latitude, "latitude", "Latitude", "required", "")
	}
	if l.Longitude == nil {
		sl.ReportError(l.Longitude, "longitude", "Longitude", "required", "")
	}
}

func (s *Schema) codeType() string {
	if s.NumericCode {
		return "number"
	}
	return "string"
}

func fieldName(f reflect.StructField) string {
	name := f.Tag.Get("schema")
	if name == "" {
		name = strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	}
	if name == "-" {
		return ""
	}
	return name
}

// trimRoot drops the top-level struct name validator puts in front of every namespace.
func trimRoot(ns string) string {
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func isFinite(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Float32, reflect.Float64:
		return finite(f.Float())
	}
	return true
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
