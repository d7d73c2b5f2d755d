package location

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kelvins/geocoder"
	"github.com/stretchr/testify/assert"

	"github.com/i474232898/danish-weather/internal/weather"
)

var copenhagen = weather.Coordinate{Latitude: 55.6761, Longitude: 12.5683}

func TestResolver_NoKeyUsesFallback(t *testing.T) {
	r := NewResolver("", "Location")
	r.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
		t.Fatal("lookup must not run without an API key")
		return nil, nil
	}

	assert.Equal(t, "Location", r.Name(context.Background(), copenhagen))
}

func TestResolver_PrefersCity(t *testing.T) {
	r := &Resolver{apiKey: "k", fallback: "Location"}
	r.reverse = func(loc geocoder.Location) ([]geocoder.Address, error) {
		assert.Equal(t, 55.6761, loc.Latitude)
		assert.Equal(t, 12.5683, loc.Longitude)
		return []geocoder.Address{
			{FormattedAddress: "Rådhuspladsen 1, 1550 København"},
			{City: "Copenhagen", Country: "Denmark"},
		}, nil
	}

	assert.Equal(t, "Copenhagen", r.Name(context.Background(), copenhagen))
}

func TestResolver_CachesNames(t *testing.T) {
	calls := 0
	r := &Resolver{apiKey: "k", fallback: "Location"}
	r.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
		calls++
		return []geocoder.Address{{City: "Copenhagen"}}, nil
	}

	assert.Equal(t, "Copenhagen", r.Name(context.Background(), copenhagen))
	assert.Equal(t, "Copenhagen", r.Name(context.Background(), copenhagen))
	assert.Equal(t, 1, calls)
}

func TestResolver_FormattedAddressWhenNoCity(t *testing.T) {
	r := &Resolver{apiKey: "k", fallback: "Location"}
	r.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
		return []geocoder.Address{{FormattedAddress: "Øresund"}}, nil
	}

	assert.Equal(t, "Øresund", r.Name(context.Background(), copenhagen))
}

func TestResolver_Failures(t *testing.T) {
	cases := map[string]func(geocoder.Location) ([]geocoder.Address, error){
		"error":   func(geocoder.Location) ([]geocoder.Address, error) { return nil, errors.New("REQUEST_DENIED") },
		"no data": func(geocoder.Location) ([]geocoder.Address, error) { return nil, nil },
	}

	for name, reverse := range cases {
		t.Run(name, func(t *testing.T) {
			r := &Resolver{apiKey: "k", fallback: "Location", reverse: reverse}
			assert.Equal(t, "Location", r.Name(context.Background(), copenhagen))
		})
	}
}

func TestResolver_ContextDone(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	r := &Resolver{apiKey: "k", fallback: "Location"}
	r.reverse = func(geocoder.Location) ([]geocoder.Address, error) {
		<-release
		return []geocoder.Address{{City: "Copenhagen"}}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.Equal(t, "Location", r.Name(ctx, copenhagen))
}
