package main

import (
	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/danish-weather/internal/config"
	"github.com/i474232898/danish-weather/internal/logging"
)

const serviceName = "danish-weather"

type CLI struct {
	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the HTTP server, upstream proxy and periodic refresh."`
	Compare CompareCmd `cmd:"" help:"Compare YR and DMI once for a coordinate and print the result."`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name(serviceName),
		kong.Description("Side-by-side current weather from YR (MET Norway) and DMI (Open-Meteo)."),
		kong.UsageOnError(),
		kong.Bind(cfg),
	)
	ctx.FatalIfErrorf(ctx.Run())
}
