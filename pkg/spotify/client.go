package spotify

import (
	"github.com/zmb3/spotify"
)

// api is the subset of catalog calls used by Wrapper. It lets the concrete
// client be replaced in tests.
type api interface {
	searchArtists(query string, limit int) (*spotify.SearchResult, error)
	artistAlbums(artistID spotify.ID, limit int) (*spotify.SimpleAlbumPage, error)
	albumTracks(albumID spotify.ID, limit int) (*spotify.SimpleTrackPage, error)
	audioFeatures(ids ...spotify.ID) ([]*spotify.AudioFeatures, error)
	nextAlbums(p *spotify.SimpleAlbumPage) error
	nextTracks(p *spotify.SimpleTrackPage) error
}

// client adapts *spotify.Client to api.
type client struct {
	c *spotify.Client
}

func (cl client) searchArtists(query string, limit int) (*spotify.SearchResult, error) {
	return cl.c.SearchOpt(query, spotify.SearchTypeArtist, &spotify.Options{Limit: &limit})
}

// artistAlbums lists full albums only; singles, compilations and
// appearances are excluded.
func (cl client) artistAlbums(artistID spotify.ID, limit int) (*spotify.SimpleAlbumPage, error) {
	return cl.c.GetArtistAlbumsOpt(artistID, &spotify.Options{Limit: &limit}, spotify.AlbumTypeAlbum)
}

func (cl client) albumTracks(albumID spotify.ID, limit int) (*spotify.SimpleTrackPage, error) {
	return cl.c.GetAlbumTracksOpt(albumID, &spotify.Options{Limit: &limit})
}

func (cl client) audioFeatures(ids ...spotify.ID) ([]*spotify.AudioFeatures, error) {
	return cl.c.GetAudioFeatures(ids...)
}

// nextAlbums replaces p with the page its Next cursor points to.
func (cl client) nextAlbums(p *spotify.SimpleAlbumPage) error {
	return cl.c.NextPage(p)
}

func (cl client) nextTracks(p *spotify.SimpleTrackPage) error {
	return cl.c.NextPage(p)
}
