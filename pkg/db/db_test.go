package db

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	libspotify "github.com/zmb3/spotify"

	"Spotify-Wrapper-Go/pkg/music"
)

func sampleDiscography() *music.Discography {
	artist := music.Artist{SimpleArtist: libspotify.SimpleArtist{ID: "art", Name: "Mötley Crüe"}, Genres: []string{"glam metal"}}
	return &music.Discography{
		Artist: artist,
		Albums: []music.AlbumTracks{
			{
				Album: music.Album{ID: "a1", Name: "Shout at the Devil"},
				Tracks: []music.TrackFeatures{
					{Track: music.Track{ID: "t1", Name: "In the Beginning"}, Features: &music.AudioFeatures{ID: "t1", Tempo: 90.5, Energy: 0.25}},
					{Track: music.Track{ID: "t2", Name: "Shout at the Devil"}},
				},
			},
			{Album: music.Album{ID: "a2", Name: "Empty"}},
		},
	}
}

// TestSaveAndGetSnapshot verifies a discography reads back with album and
// track order, metadata and absent features preserved.
func TestSaveAndGetSnapshot(t *testing.T) {
	d, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	ctx := context.Background()

	id, err := d.SaveSnapshot(ctx, sampleDiscography())
	if err != nil {
		t.Fatal(err)
	}
	s, err := d.GetSnapshot(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	got := s.Discography
	if got.Artist.Name != "Mötley Crüe" || len(got.Artist.Genres) != 1 {
		t.Errorf("artist not preserved: %+v", got.Artist)
	}
	if len(got.Albums) != 2 || got.Albums[0].Album.ID != "a1" || got.Albums[1].Album.Name != "Empty" {
		t.Fatalf("albums not preserved: %+v", got.Albums)
	}
	tracks := got.Albums[0].Tracks
	if len(tracks) != 2 || tracks[0].Track.ID != "t1" || tracks[1].Track.ID != "t2" {
		t.Fatalf("tracks not preserved: %+v", tracks)
	}
	if tracks[0].Features == nil || tracks[0].Features.Tempo != 90.5 {
		t.Errorf("features not preserved: %+v", tracks[0].Features)
	}
	if tracks[1].Features != nil {
		t.Errorf("absent features should stay nil")
	}
	if len(got.Albums[1].Tracks) != 0 {
		t.Errorf("empty album gained tracks")
	}
	if s.CreatedAt.IsZero() {
		t.Errorf("created_at not set")
	}
}

func TestGetSnapshotMissing(t *testing.T) {
	d, err := New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()
	if _, err := d.GetSnapshot(context.Background(), "nope"); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows, got %v", err)
	}
}

// TestListAndDeleteSnapshots uses a file database to check summaries and
// deletion of dependent rows.
func TestListAndDeleteSnapshots(t *testing.T) {
	d, err := New("test.db")
	if err != nil {
		t.Fatal(err)
	}
	defer func() {
		d.Close()
		os.Remove("test.db")
	}()
	ctx := context.Background()

	first, err := d.SaveSnapshot(ctx, sampleDiscography())
	if err != nil {
		t.Fatal(err)
	}
	second, err := d.SaveSnapshot(ctx, &music.Discography{Artist: music.Artist{SimpleArtist: libspotify.SimpleArtist{ID: "other", Name: "Other"}}})
	if err != nil {
		t.Fatal(err)
	}

	list, err := d.ListSnapshots(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second || list[1].ID != first {
		t.Fatalf("unexpected listing: %+v", list)
	}
	if list[1].Albums != 2 || list[1].Tracks != 2 || list[1].ArtistName != "Mötley Crüe" {
		t.Errorf("unexpected summary: %+v", list[1])
	}

	if err := d.DeleteSnapshot(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := d.DeleteSnapshot(ctx, first); !errors.Is(err, sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows on second delete, got %v", err)
	}
	var n int
	if err := d.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks WHERE snapshot_id=?`, first).Scan(&n); err != nil || n != 0 {
		t.Fatalf("tracks left behind: %d %v", n, err)
	}
}
