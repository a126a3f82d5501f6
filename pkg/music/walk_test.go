package music

import (
	"context"
	"errors"
	"fmt"
	"testing"

	libspotify "github.com/zmb3/spotify"
)

type fakeCatalog struct {
	result    ArtistResult
	albums    []Album
	albumErr  error
	tracks    map[string][]Track
	featCalls [][]string
	missing   map[string]bool
}

func (f *fakeCatalog) SearchArtist(context.Context, string) ArtistResult { return f.result }

func (f *fakeCatalog) GetAlbumsOfArtist(context.Context, string) ([]Album, error) {
	return f.albums, f.albumErr
}

func (f *fakeCatalog) GetTracksOfAlbum(_ context.Context, id string) ([]Track, error) {
	return f.tracks[id], nil
}

func (f *fakeCatalog) GetAudioFeaturesOfTracks(_ context.Context, ids []string) ([]*AudioFeatures, error) {
	f.featCalls = append(f.featCalls, ids)
	out := make([]*AudioFeatures, len(ids))
	for i, id := range ids {
		if f.missing[id] {
			continue
		}
		out[i] = &AudioFeatures{ID: libspotify.ID(id), Tempo: 100}
	}
	return out, nil
}

func newAlbum(id, name string) Album {
	return Album{ID: libspotify.ID(id), Name: name}
}

func newTrack(id string) Track {
	return Track{ID: libspotify.ID(id), Name: "Track " + id}
}

func found(name string) ArtistResult {
	return ArtistResult{Status: Found, Artist: &Artist{SimpleArtist: libspotify.SimpleArtist{ID: "art", Name: name}}}
}

// TestWalkCollectsEverything checks that albums, tracks and features are
// stitched together in listing order with absent features left nil.
func TestWalkCollectsEverything(t *testing.T) {
	fc := &fakeCatalog{
		result: found("Band"),
		albums: []Album{newAlbum("a1", "First"), newAlbum("a2", "Second")},
		tracks: map[string][]Track{
			"a1": {newTrack("t1"), newTrack("t2")},
			"a2": {newTrack("t3")},
		},
		missing: map[string]bool{"t2": true},
	}
	d, err := Walker{Catalog: fc}.Walk(context.Background(), "band")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Artist.Name != "Band" || len(d.Albums) != 2 || d.TrackCount() != 3 {
		t.Fatalf("unexpected discography: %+v", d)
	}
	if d.Albums[0].Tracks[0].Features == nil || d.Albums[0].Tracks[0].Features.ID != "t1" {
		t.Errorf("t1 features not attached: %+v", d.Albums[0].Tracks[0])
	}
	if d.Albums[0].Tracks[1].Features != nil {
		t.Errorf("t2 should have no features")
	}
	if d.Albums[1].Tracks[0].Features.ID != "t3" {
		t.Errorf("t3 features misaligned: %+v", d.Albums[1].Tracks[0].Features)
	}
	if len(fc.featCalls) != 1 {
		t.Errorf("expected one features call, got %d", len(fc.featCalls))
	}
}

// TestWalkBatchesFeatures verifies track ids are chunked to the request cap.
func TestWalkBatchesFeatures(t *testing.T) {
	var tracks []Track
	for i := 0; i < 250; i++ {
		tracks = append(tracks, newTrack(fmt.Sprintf("t%d", i)))
	}
	fc := &fakeCatalog{
		result: found("Band"),
		albums: []Album{newAlbum("a1", "Long")},
		tracks: map[string][]Track{"a1": tracks},
	}
	d, err := Walker{Catalog: fc}.Walk(context.Background(), "band")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.featCalls) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(fc.featCalls))
	}
	for i, want := range []int{100, 100, 50} {
		if len(fc.featCalls[i]) != want {
			t.Errorf("batch %d: expected %d ids got %d", i, want, len(fc.featCalls[i]))
		}
	}
	last := d.Albums[0].Tracks[249]
	if last.Features == nil || last.Features.ID != "t249" {
		t.Errorf("last track features misaligned: %+v", last.Features)
	}
}

func TestWalkNotFound(t *testing.T) {
	fc := &fakeCatalog{result: ArtistResult{Status: NotFound}}
	_, err := Walker{Catalog: fc}.Walk(context.Background(), "nobody")
	if !errors.Is(err, ErrArtistNotFound) {
		t.Fatalf("expected ErrArtistNotFound, got %v", err)
	}
}

func TestWalkPropagatesErrors(t *testing.T) {
	boom := errors.New("boom")
	fc := &fakeCatalog{result: ArtistResult{Status: Failed, Err: boom}}
	if _, err := (Walker{Catalog: fc}).Walk(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected search cause, got %v", err)
	}

	fc = &fakeCatalog{result: found("Band"), albumErr: boom}
	if _, err := (Walker{Catalog: fc}).Walk(context.Background(), "x"); !errors.Is(err, boom) {
		t.Fatalf("expected album error, got %v", err)
	}
}

func TestArtistResult(t *testing.T) {
	if _, err := (ArtistResult{Status: NotFound}).Result(); !errors.Is(err, ErrArtistNotFound) {
		t.Errorf("not found should map to ErrArtistNotFound, got %v", err)
	}
	a, err := found("X").Result()
	if err != nil || a.Name != "X" {
		t.Errorf("unexpected found result: %v %v", a, err)
	}
	if Failed.String() != "failed" || Found.String() != "found" || NotFound.String() != "not_found" {
		t.Errorf("unexpected status strings")
	}
}
