package httpapi

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/danish-weather/internal/store"
	"github.com/i474232898/danish-weather/internal/upstream"
	"github.com/i474232898/danish-weather/internal/weather"
)

// InvalidCoordinates is reported for both providers when the query is unusable.
const InvalidCoordinates = "Invalid latitude or longitude"

// ProxyFetcher returns the raw upstream payloads for a coordinate.
type ProxyFetcher interface {
	Fetch(ctx context.Context, coord weather.Coordinate) upstream.Result
}

// Aggregator returns the normalized side-by-side view for a coordinate.
type Aggregator interface {
	Aggregate(ctx context.Context, coord weather.Coordinate) weather.AggregatedResult
}

// LatestReader serves the last refresh result.
type LatestReader interface {
	GetLatest(coord weather.Coordinate) (store.Snapshot, error)
}

// Deps are the collaborators behind the routes. Routes whose dependency is
// nil are not mounted.
type Deps struct {
	Proxy      ProxyFetcher
	Aggregator Aggregator
	Latest     LatestReader
	// Default is the coordinate /weather/latest serves when the query has none.
	Default weather.Coordinate
}

// ErrorHandler renders every non-domain failure as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Proxy != nil {
		// The adapters reach the proxy at this path.
		app.Get("/api/weather", func(c *fiber.Ctx) error {
			coord, err := parseCoordinateQuery(c)
			if err != nil {
				return invalidCoordinates(c)
			}

			res := deps.Proxy.Fetch(c.UserContext(), coord)
			return c.Status(statusFor(res.Failed())).JSON(res)
		})
	}

	v1 := app.Group("/api/v1")

	if deps.Aggregator != nil {
		v1.Get("/weather/compare", func(c *fiber.Ctx) error {
			coord, err := parseCoordinateQuery(c)
			if err != nil {
				return invalidCoordinates(c)
			}

			res := deps.Aggregator.Aggregate(c.UserContext(), coord)
			return c.Status(statusFor(res.Failed())).JSON(res)
		})
	}

	if deps.Latest != nil {
		v1.Get("/weather/latest", func(c *fiber.Ctx) error {
			coord := deps.Default
			if c.Query("latitude") != "" || c.Query("longitude") != "" {
				q, err := parseCoordinateQuery(c)
				if err != nil {
					return fiber.NewError(fiber.StatusBadRequest, InvalidCoordinates)
				}
				coord = q
			}

			snap, err := deps.Latest.GetLatest(coord)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
				}
				return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
			}

			return c.JSON(snap)
		})
	}
}

func parseCoordinateQuery(c *fiber.Ctx) (weather.Coordinate, error) {
	lat, err := strconv.ParseFloat(c.Query("latitude"), 64)
	if err != nil {
		return weather.Coordinate{}, err
	}
	lon, err := strconv.ParseFloat(c.Query("longitude"), 64)
	if err != nil {
		return weather.Coordinate{}, err
	}

	coord := weather.Coordinate{Latitude: lat, Longitude: lon}
	if err := coord.Validate(); err != nil {
		return weather.Coordinate{}, err
	}
	return coord, nil
}

func invalidCoordinates(c *fiber.Ctx) error {
	msg := InvalidCoordinates
	return c.Status(fiber.StatusBadRequest).JSON(weather.AggregatedResult{
		Errors: weather.ProviderErrors{YR: &msg, DMI: &msg},
	})
}

func statusFor(failed bool) int {
	if failed {
		return fiber.StatusServiceUnavailable
	}
	return fiber.StatusOK
}
