package location

import (
	"context"
	"errors"
	"sync"

	"github.com/kelvins/geocoder"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/danish-weather/internal/weather"
)

var errNoAddress = errors.New("no address for coordinate")

// Resolver turns a coordinate into the display name adapters put in
// location.name. Reverse geocoding needs a Google Maps API key; without one
// the fallback name is used. Successful lookups are cached per coordinate.
type Resolver struct {
	apiKey   string
	fallback string
	reverse  func(geocoder.Location) ([]geocoder.Address, error)

	mu    sync.Mutex
	names map[string]string
}

func NewResolver(apiKey, fallback string) *Resolver {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	return &Resolver{
		apiKey:   apiKey,
		fallback: fallback,
		reverse:  geocoder.GeocodingReverse,
		names:    make(map[string]string),
	}
}

// Name returns the locality for coord, or the fallback when the lookup is
// disabled, fails or does not finish before ctx is done.
func (r *Resolver) Name(ctx context.Context, coord weather.Coordinate) string {
	if r.apiKey == "" || r.reverse == nil {
		return r.fallback
	}
	if name, ok := r.cached(coord); ok {
		return name
	}

	type result struct {
		name string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		name, err := r.lookup(coord)
		done <- result{name: name, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil {
			log.Warn().
				Str("component", "location").
				Str("coordinate", coord.Key()).
				Err(res.err).
				Msg("reverse geocoding failed, using fallback name")
			return r.fallback
		}
		r.remember(coord, res.name)
		return res.name
	case <-ctx.Done():
		log.Warn().
			Str("component", "location").
			Err(ctx.Err()).
			Msg("reverse geocoding timed out, using fallback name")
		return r.fallback
	}
}

func (r *Resolver) cached(coord weather.Coordinate) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name, ok := r.names[coord.Key()]
	return name, ok
}

func (r *Resolver) remember(coord weather.Coordinate, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.names == nil {
		r.names = make(map[string]string)
	}
	r.names[coord.Key()] = name
}

func (r *Resolver) lookup(coord weather.Coordinate) (string, error) {
	addresses, err := r.reverse(geocoder.Location{
		Latitude:  coord.Latitude,
		Longitude: coord.Longitude,
	})
	if err != nil {
		return "", err
	}

	for _, a := range addresses {
		if a.City != "" {
			return a.City, nil
		}
	}
	for _, a := range addresses {
		if a.FormattedAddress != "" {
			return a.FormattedAddress, nil
		}
	}
	return "", errNoAddress
}
