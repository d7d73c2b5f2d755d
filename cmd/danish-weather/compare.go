package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/i474232898/danish-weather/internal/config"
	"github.com/i474232898/danish-weather/internal/weather"
)

var (
	errAllProvidersFailed = errors.New("both providers failed")
	errInvalidCoordinate  = errors.New("invalid latitude or longitude")
)

type CompareCmd struct {
	Latitude  float64 `help:"Latitude in decimal degrees." required:""`
	Longitude float64 `help:"Longitude in decimal degrees." required:""`
	ProxyURL  string  `name:"proxy-url" help:"Base URL of a running server. Defaults to PROXY_BASE_URL."`
}

func (c *CompareCmd) Run(cfg *config.AppConfig) error {
	coord := weather.Coordinate{Latitude: c.Latitude, Longitude: c.Longitude}
	if err := coord.Validate(); err != nil {
		return fmt.Errorf("%w: %v", errInvalidCoordinate, err)
	}

	proxyURL := c.ProxyURL
	if proxyURL == "" {
		proxyURL = cfg.ProxyBaseURL
	}

	res := newAggregator(cfg, proxyURL).Aggregate(context.Background(), coord)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}

	if res.Failed() {
		return errAllProvidersFailed
	}
	return nil
}
