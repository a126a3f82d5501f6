// Package music defines the domain types and the catalog interface used to
// browse an artist's discography. Implementations wrap a streaming service
// (see package spotify); handlers and commands depend only on this package so
// they can be exercised against fakes.
//
// The entity types are aliases of the zmb3/spotify structures so the
// service-provided metadata (genres, images, external URLs and so on) travels
// with every value without being copied into parallel structs.
package music

import (
	"context"
	"errors"

	libspotify "github.com/zmb3/spotify"
)

// Artist is a full artist record as returned by an artist search.
type Artist = libspotify.FullArtist

// Album is an album entry from an artist's album listing.
type Album = libspotify.SimpleAlbum

// Track is a track entry from an album's track listing.
type Track = libspotify.SimpleTrack

// AudioFeatures holds the service-computed descriptors of a track. A nil
// *AudioFeatures marks a track the service has no features for.
type AudioFeatures = libspotify.AudioFeatures

// ErrArtistNotFound is returned by ArtistResult.Result when the search
// completed but no artist matched the requested name.
var ErrArtistNotFound = errors.New("artist not found")

// SearchStatus is the outcome of an artist search.
type SearchStatus int

const (
	// NotFound means the lookup succeeded but nothing matched.
	NotFound SearchStatus = iota
	// Found means exactly one matching artist was selected.
	Found
	// Failed means the lookup itself did not complete.
	Failed
)

func (s SearchStatus) String() string {
	switch s {
	case Found:
		return "found"
	case Failed:
		return "failed"
	default:
		return "not_found"
	}
}

// ArtistResult lets callers tell "the artist does not exist" apart from "the
// lookup failed". Artist is set only for Found and Err only for Failed.
type ArtistResult struct {
	Status SearchStatus
	Artist *Artist
	Err    error
}

// Result converts the typed outcome into the usual (value, error) pair.
// NotFound maps to ErrArtistNotFound and Failed to the underlying cause.
func (r ArtistResult) Result() (*Artist, error) {
	switch r.Status {
	case Found:
		return r.Artist, nil
	case Failed:
		return nil, r.Err
	default:
		return nil, ErrArtistNotFound
	}
}

// Catalog exposes the artist → albums → tracks → features lookups.
type Catalog interface {
	// SearchArtist resolves a band name to a single artist. It never
	// returns an error value; failures are reported through the result.
	SearchArtist(ctx context.Context, bandName string) ArtistResult

	// GetAlbumsOfArtist returns every full album of the artist, following
	// pagination and keeping only the first album of each name (compared
	// case-insensitively).
	GetAlbumsOfArtist(ctx context.Context, artistID string) ([]Album, error)

	// GetTracksOfAlbum returns every track of the album in listing order.
	GetTracksOfAlbum(ctx context.Context, albumID string) ([]Track, error)

	// GetAudioFeaturesOfTracks looks up features for all ids in a single
	// request. The result is aligned with trackIDs and contains nil for ids
	// without features.
	GetAudioFeaturesOfTracks(ctx context.Context, trackIDs []string) ([]*AudioFeatures, error)
}
