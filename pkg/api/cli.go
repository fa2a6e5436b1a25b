package api

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/tagkartan/tagkartan/pkg/crossings"
	"github.com/tagkartan/tagkartan/pkg/redis_client"
	"github.com/tagkartan/tagkartan/pkg/stations"
	"github.com/tagkartan/tagkartan/pkg/trafikverket"
	"github.com/tagkartan/tagkartan/pkg/tracker"
	"github.com/tagkartan/tagkartan/pkg/trainstate"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "server",
		Usage: "Track live train positions and serve the reconciled map state",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run the trackers and the map state API",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Usage:   "path to a YAML config file",
						EnvVars: []string{"TAGKARTAN_CONFIG"},
					},
					&cli.StringFlag{
						Name:  "focus-train",
						Usage: "train ident to focus once on first sighting (deep link)",
					},
				},
				Action: func(c *cli.Context) error {
					config, err := tracker.LoadConfig(c.String("config"))
					if err != nil {
						return err
					}
					if c.String("focus-train") != "" {
						config.FocusTrain = c.String("focus-train")
					}

					if err := redis_client.Connect(); err != nil {
						return err
					}

					crossings.CreateGeometryCache()

					client := trafikverket.NewClient()
					if client.APIKey == "" {
						log.Fatal().Msg("\"TAGKARTAN_TRAFIKVERKET_API_KEY\" not set in environment")
					}

					directory := stations.NewDirectory()
					directory.Load(context.Background(), client)

					sink, err := tracker.NewQueueSink()
					if err != nil {
						return err
					}

					registry := trainstate.NewRegistry()
					store := trainstate.NewStore(registry)

					manager, err := tracker.NewManager(client, directory, store, registry, sink, config)
					if err != nil {
						return err
					}

					manager.Run()

					crossingSet := crossings.NewSet(client)

					return SetupServer(config.Listen, manager, crossingSet)
				},
			},
		},
	}
}
