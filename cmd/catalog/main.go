// Command catalog queries the Spotify catalog from the command line. It
// reads the same environment as the web server and prints JSON on stdout.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"Spotify-Wrapper-Go/pkg/config"
	"Spotify-Wrapper-Go/pkg/db"
	"Spotify-Wrapper-Go/pkg/logging"
	"Spotify-Wrapper-Go/pkg/music"
	"Spotify-Wrapper-Go/pkg/spotify"
)

func main() {
	cfg := config.Load()
	log, closer, err := logging.New(cfg.Log)
	if err != nil {
		logrus.WithError(err).Fatal("logger init")
	}
	defer closer.Close()

	runner := NewRunner(RunnerOpts{
		Connect: func(ctx context.Context) (music.Catalog, error) {
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			aliases, err := cfg.Aliases()
			if err != nil {
				return nil, err
			}
			return spotify.NewWrapper(ctx, cfg.ClientID, cfg.ClientSecret,
				spotify.WithAliases(aliases),
				spotify.WithLogger(log),
			)
		},
		OpenDB: func() (*db.DB, error) { return db.New(cfg.DatabasePath) },
		Logger: log,
	})

	app := &cli.Command{
		Name:     "catalog",
		Usage:    "Browse artists, albums, tracks and audio features",
		Commands: runner.register(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := app.Run(ctx, os.Args); err != nil {
		log.WithError(err).Error("command failed")
		closer.Close()
		os.Exit(1)
	}
}
