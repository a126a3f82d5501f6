// This file implements the discography walker which chains the catalog
// lookups: the artist found by name feeds the album listing, every album
// feeds a track listing, and all collected track ids feed the audio feature
// lookup.

package music

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
)

// MaxAudioFeatureIDs is the largest number of track ids sent in one audio
// features request by the Walker.
const MaxAudioFeatureIDs = 100

// TrackFeatures pairs a track with its audio features. Features is nil when
// the service has none for the track.
type TrackFeatures struct {
	Track    Track          `json:"track"`
	Features *AudioFeatures `json:"features"`
}

// AlbumTracks is an album together with its tracks.
type AlbumTracks struct {
	Album  Album           `json:"album"`
	Tracks []TrackFeatures `json:"tracks"`
}

// Discography is everything the catalog knows about one artist.
type Discography struct {
	Artist Artist        `json:"artist"`
	Albums []AlbumTracks `json:"albums"`
}

// TrackCount returns the number of tracks across all albums.
func (d *Discography) TrackCount() int {
	n := 0
	for _, a := range d.Albums {
		n += len(a.Tracks)
	}
	return n
}

// Walker walks a Catalog from an artist name down to audio features. Calls
// are issued sequentially.
type Walker struct {
	Catalog Catalog
	Log     logrus.FieldLogger
}

func (w Walker) logger() logrus.FieldLogger {
	if w.Log == nil {
		return logrus.StandardLogger()
	}
	return w.Log
}

// Walk resolves bandName and collects its albums, tracks and audio features.
// ErrArtistNotFound is returned when the search finds nothing; a failed
// search returns its cause.
func (w Walker) Walk(ctx context.Context, bandName string) (*Discography, error) {
	artist, err := w.Catalog.SearchArtist(ctx, bandName).Result()
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", bandName, err)
	}
	log := w.logger().WithFields(logrus.Fields{"artist": artist.Name, "artist_id": artist.ID})

	albums, err := w.Catalog.GetAlbumsOfArtist(ctx, string(artist.ID))
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", bandName, err)
	}
	log.WithField("albums", len(albums)).Debug("albums listed")

	d := &Discography{Artist: *artist, Albums: make([]AlbumTracks, len(albums))}
	var ids []string
	for i, album := range albums {
		tracks, err := w.Catalog.GetTracksOfAlbum(ctx, string(album.ID))
		if err != nil {
			return nil, fmt.Errorf("walk %q: album %s: %w", bandName, album.ID, err)
		}
		d.Albums[i] = AlbumTracks{Album: album, Tracks: make([]TrackFeatures, len(tracks))}
		for j, t := range tracks {
			d.Albums[i].Tracks[j].Track = t
			ids = append(ids, string(t.ID))
		}
	}

	feats, err := w.features(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("walk %q: %w", bandName, err)
	}
	k := 0
	for i := range d.Albums {
		for j := range d.Albums[i].Tracks {
			if k < len(feats) {
				d.Albums[i].Tracks[j].Features = feats[k]
			}
			k++
		}
	}
	log.WithField("tracks", len(ids)).Info("discography walked")
	return d, nil
}

// features fetches audio features in chunks of MaxAudioFeatureIDs and returns
// a slice aligned with ids.
func (w Walker) features(ctx context.Context, ids []string) ([]*AudioFeatures, error) {
	out := make([]*AudioFeatures, 0, len(ids))
	for start := 0; start < len(ids); start += MaxAudioFeatureIDs {
		end := min(start+MaxAudioFeatureIDs, len(ids))
		batch, err := w.Catalog.GetAudioFeaturesOfTracks(ctx, ids[start:end])
		if err != nil {
			return nil, fmt.Errorf("audio features %d-%d: %w", start, end, err)
		}
		// Pad short responses so positions stay aligned with ids.
		for len(batch) < end-start {
			batch = append(batch, nil)
		}
		out = append(out, batch[:end-start]...)
	}
	return out, nil
}
