package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/urfave/cli/v3"
	libspotify "github.com/zmb3/spotify"

	"Spotify-Wrapper-Go/pkg/db"
	"Spotify-Wrapper-Go/pkg/music"
)

type mockCatalog struct {
	result  music.ArtistResult
	featIDs []string
}

func (m *mockCatalog) SearchArtist(context.Context, string) music.ArtistResult { return m.result }

func (m *mockCatalog) GetAlbumsOfArtist(context.Context, string) ([]music.Album, error) {
	return []music.Album{{ID: "a1", Name: "Album"}}, nil
}

func (m *mockCatalog) GetTracksOfAlbum(context.Context, string) ([]music.Track, error) {
	return []music.Track{{ID: "t1", Name: "One"}, {ID: "t2", Name: "Two"}}, nil
}

func (m *mockCatalog) GetAudioFeaturesOfTracks(_ context.Context, ids []string) ([]*music.AudioFeatures, error) {
	m.featIDs = ids
	out := make([]*music.AudioFeatures, len(ids))
	for i, id := range ids {
		out[i] = &music.AudioFeatures{ID: libspotify.ID(id), Energy: 0.5}
	}
	return out, nil
}

func foundCatalog() *mockCatalog {
	return &mockCatalog{result: music.ArtistResult{
		Status: music.Found,
		Artist: &music.Artist{SimpleArtist: libspotify.SimpleArtist{ID: "art", Name: "Band"}},
	}}
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{Name: "catalog", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"catalog"}, args...))
}

func newTestRunner(c music.Catalog, out *bytes.Buffer, dbPath string) *Runner {
	log, _ := logtest.NewNullLogger()
	return NewRunner(RunnerOpts{
		Connect: func(context.Context) (music.Catalog, error) { return c, nil },
		OpenDB:  func() (*db.DB, error) { return db.New(dbPath) },
		Logger:  log,
		Output:  out,
	})
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner defaults", func(t *testing.T) {
		r := NewRunner(RunnerOpts{})
		if r.log == nil || r.output == nil {
			t.Error("expected defaults to be set")
		}
	})

	t.Run("search prints artist", func(t *testing.T) {
		out := &bytes.Buffer{}
		r := newTestRunner(foundCatalog(), out, "")
		if err := run(t, r, "search", "band"); err != nil {
			t.Fatal(err)
		}
		var a music.Artist
		if err := json.Unmarshal(out.Bytes(), &a); err != nil {
			t.Fatal(err)
		}
		if a.ID != "art" {
			t.Errorf("unexpected artist %+v", a.SimpleArtist)
		}
	})

	t.Run("search not found", func(t *testing.T) {
		r := newTestRunner(&mockCatalog{}, &bytes.Buffer{}, "")
		err := run(t, r, "search", "nobody")
		if !errors.Is(err, music.ErrArtistNotFound) {
			t.Fatalf("expected ErrArtistNotFound, got %v", err)
		}
	})

	t.Run("missing argument", func(t *testing.T) {
		r := newTestRunner(foundCatalog(), &bytes.Buffer{}, "")
		for _, sub := range []string{"search", "albums", "tracks", "features", "walk"} {
			if err := run(t, r, sub); !errors.Is(err, errMissingArgument) {
				t.Errorf("%s: expected errMissingArgument, got %v", sub, err)
			}
		}
	})

	t.Run("connect error", func(t *testing.T) {
		boom := errors.New("no credentials")
		r := NewRunner(RunnerOpts{
			Connect: func(context.Context) (music.Catalog, error) { return nil, boom },
			Output:  &bytes.Buffer{},
		})
		if err := run(t, r, "albums", "x"); !errors.Is(err, boom) {
			t.Fatalf("expected connect error, got %v", err)
		}
	})

	t.Run("features passes all ids", func(t *testing.T) {
		c := foundCatalog()
		out := &bytes.Buffer{}
		r := newTestRunner(c, out, "")
		if err := run(t, r, "features", "t1", "t2", "t3"); err != nil {
			t.Fatal(err)
		}
		if len(c.featIDs) != 3 {
			t.Errorf("expected 3 ids, got %v", c.featIDs)
		}
		var feats []*music.AudioFeatures
		if err := json.Unmarshal(out.Bytes(), &feats); err != nil || len(feats) != 3 {
			t.Errorf("unexpected output %s", out)
		}
	})

	t.Run("walk saves snapshot", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "catalog.db")
		out := &bytes.Buffer{}
		r := newTestRunner(foundCatalog(), out, path)
		if err := run(t, r, "walk", "--save", "band"); err != nil {
			t.Fatal(err)
		}
		var d music.Discography
		if err := json.Unmarshal(out.Bytes(), &d); err != nil {
			t.Fatal(err)
		}
		if d.TrackCount() != 2 {
			t.Errorf("expected 2 tracks, got %d", d.TrackCount())
		}

		database, err := db.New(path)
		if err != nil {
			t.Fatal(err)
		}
		defer database.Close()
		list, err := database.ListSnapshots(context.Background())
		if err != nil || len(list) != 1 || list[0].ArtistName != "Band" {
			t.Fatalf("snapshot not stored: %v %+v", err, list)
		}
	})
}
