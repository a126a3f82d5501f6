package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"Spotify-Wrapper-Go/pkg/db"
	"Spotify-Wrapper-Go/pkg/music"
)

var errMissingArgument = errors.New("missing argument")

// Runner holds the dependencies shared by the subcommands. The catalog and
// the snapshot store are opened on first use so that help output works
// without credentials.
type Runner struct {
	connect func(ctx context.Context) (music.Catalog, error)
	openDB  func() (*db.DB, error)
	log     logrus.FieldLogger
	output  io.Writer

	catalog music.Catalog
}

// RunnerOpts configures a Runner.
type RunnerOpts struct {
	Connect func(ctx context.Context) (music.Catalog, error)
	OpenDB  func() (*db.DB, error)
	Logger  logrus.FieldLogger
	Output  io.Writer
}

// NewRunner fills unset options with defaults.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	return &Runner{connect: opts.Connect, openDB: opts.OpenDB, log: opts.Logger, output: opts.Output}
}

func (r *Runner) register() []*cli.Command {
	return []*cli.Command{
		{
			Name:      "search",
			Usage:     "Find an artist by name",
			ArgsUsage: "<name>",
			Action:    r.Search,
		},
		{
			Name:      "albums",
			Usage:     "List the albums of an artist",
			ArgsUsage: "<artist-id>",
			Action:    r.Albums,
		},
		{
			Name:      "tracks",
			Usage:     "List the tracks of an album",
			ArgsUsage: "<album-id>",
			Action:    r.Tracks,
		},
		{
			Name:      "features",
			Usage:     "Fetch audio features for up to 100 tracks",
			ArgsUsage: "<track-id>...",
			Action:    r.Features,
		},
		{
			Name:      "walk",
			Usage:     "Collect an artist's albums, tracks and audio features",
			ArgsUsage: "<name>",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "save",
					Usage: "Store the result as a snapshot",
				},
			},
			Action: r.Walk,
		},
	}
}

func (r *Runner) getCatalog(ctx context.Context) (music.Catalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}
	if r.connect == nil {
		return nil, errors.New("no catalog configured")
	}
	c, err := r.connect(ctx)
	if err != nil {
		return nil, err
	}
	r.catalog = c
	return c, nil
}

// Search prints the artist matching the first argument.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("%w: artist name", errMissingArgument)
	}
	c, err := r.getCatalog(ctx)
	if err != nil {
		return err
	}
	artist, err := c.SearchArtist(ctx, name).Result()
	if err != nil {
		return fmt.Errorf("search %q: %w", name, err)
	}
	return r.writeJSON(artist)
}

// Albums prints the deduplicated albums of an artist id.
func (r *Runner) Albums(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("%w: artist id", errMissingArgument)
	}
	c, err := r.getCatalog(ctx)
	if err != nil {
		return err
	}
	albums, err := c.GetAlbumsOfArtist(ctx, id)
	if err != nil {
		return err
	}
	return r.writeJSON(albums)
}

// Tracks prints the tracks of an album id.
func (r *Runner) Tracks(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("%w: album id", errMissingArgument)
	}
	c, err := r.getCatalog(ctx)
	if err != nil {
		return err
	}
	tracks, err := c.GetTracksOfAlbum(ctx, id)
	if err != nil {
		return err
	}
	return r.writeJSON(tracks)
}

// Features prints audio features for the track ids given as arguments.
func (r *Runner) Features(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: track ids", errMissingArgument)
	}
	c, err := r.getCatalog(ctx)
	if err != nil {
		return err
	}
	feats, err := c.GetAudioFeaturesOfTracks(ctx, ids)
	if err != nil {
		return err
	}
	return r.writeJSON(feats)
}

// Walk prints the full discography of the named artist and, with --save,
// stores it as a snapshot.
func (r *Runner) Walk(ctx context.Context, cmd *cli.Command) error {
	name := cmd.Args().First()
	if name == "" {
		return fmt.Errorf("%w: artist name", errMissingArgument)
	}
	c, err := r.getCatalog(ctx)
	if err != nil {
		return err
	}
	d, err := music.Walker{Catalog: c, Log: r.log}.Walk(ctx, name)
	if err != nil {
		return err
	}
	if cmd.Bool("save") {
		if r.openDB == nil {
			return errors.New("no snapshot store configured")
		}
		database, err := r.openDB()
		if err != nil {
			return fmt.Errorf("open db: %w", err)
		}
		defer database.Close()
		id, err := database.SaveSnapshot(ctx, d)
		if err != nil {
			return err
		}
		r.log.WithFields(logrus.Fields{"snapshot": id, "artist": d.Artist.Name}).Info("snapshot saved")
	}
	return r.writeJSON(d)
}

func (r *Runner) writeJSON(data any) error {
	out, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	out = append(out, '\n')
	if _, err := r.output.Write(out); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
