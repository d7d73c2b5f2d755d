package weather

import "math"

// UnknownDescription is returned for any code missing from the tables below.
const UnknownDescription = "Unknown"

// UnknownSymbol is the YR code used when a timestep carries no summary.
const UnknownSymbol = "unknown"

// yrSymbols maps MET Norway symbol codes to descriptions.
var yrSymbols = map[string]string{
	"clearsky_day":               "Clear sky",
	"clearsky_night":             "Clear sky",
	"clearsky_polartwilight":     "Clear sky",
	"cloudy":                     "Cloudy",
	"partlycloudy_day":           "Partly cloudy",
	"partlycloudy_night":         "Partly cloudy",
	"partlycloudy_polartwilight": "Partly cloudy",
	"lightrain":                  "Light rain",
	"lightsnow":                  "Light snow",
	"rain":                       "Rain",
	"snow":                       "Snow",
	"rainandthunder":             "Rain and thunder",
	"snowandthunder":             "Snow and thunder",
}

// wmoCodes maps WMO weather interpretation codes (as used by Open-Meteo).
var wmoCodes = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	56: "Light freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	66: "Light freezing rain",
	67: "Heavy freezing rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	85: "Slight snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// DescribeSymbol translates a YR symbol code.
func DescribeSymbol(code string) string {
	if d, ok := yrSymbols[code]; ok {
		return d
	}
	return UnknownDescription
}

// DescribeWMO translates a WMO weather code.
func DescribeWMO(code int) string {
	if d, ok := wmoCodes[code]; ok {
		return d
	}
	return UnknownDescription
}

// WMOCodeOf accepts a JSON number as a WMO code. Only integral values within
// int32 range qualify.
func WMOCodeOf(v float64) (WeatherCode, bool) {
	if v != math.Trunc(v) || v < math.MinInt32 || v > math.MaxInt32 {
		return WeatherCode{}, false
	}
	return WMOCode(int(v)), true
}

// Describe translates either kind of code.
func Describe(code WeatherCode) string {
	if code.Numeric {
		return DescribeWMO(code.WMO)
	}
	return DescribeSymbol(code.Symbol)
}
