package main

import (
	"math"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/danish-weather/internal/config"
)

func TestCompare_RejectsInvalidCoordinates(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := &config.AppConfig{FetchTimeout: time.Second, FetchBackoffStep: time.Millisecond}

	cases := map[string]CompareCmd{
		"zero latitude":      {Latitude: 0, Longitude: 12.5683},
		"latitude too large": {Latitude: 200, Longitude: 12.5683},
		"longitude too low":  {Latitude: 55.6761, Longitude: -181},
		"NaN latitude":       {Latitude: math.NaN(), Longitude: 12.5683},
	}

	for name, cmd := range cases {
		t.Run(name, func(t *testing.T) {
			cmd.ProxyURL = srv.URL

			err := cmd.Run(cfg)
			require.Error(t, err)
			assert.ErrorIs(t, err, errInvalidCoordinate)
		})
	}
	assert.Equal(t, int32(0), hits.Load())
}
