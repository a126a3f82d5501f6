// Package spotify wraps the zmb3/spotify client with the lookups needed to
// browse an artist's discography: find an artist by name, list its albums,
// list each album's tracks and fetch audio features for a batch of tracks.
// Authentication uses the client credentials flow so no user login is
// required.
//
// All exported methods accept a context. The wrapped library does not
// support contexts, so cancellation is checked explicitly before each
// request, including every page of a paginated listing.
//
// SearchArtist never returns an error value: failures are logged and
// reported as a music.ArtistResult with status Failed. The listing methods
// return errors from the underlying client wrapped with the operation.
package spotify

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"Spotify-Wrapper-Go/pkg/metrics"
	"Spotify-Wrapper-Go/pkg/music"
)

const (
	searchLimit = 20
	pageLimit   = 50
)

var errMalformedSearch = errors.New("search response has no artists section")

// Wrapper is the catalog client. It holds the credentials it was built with
// and a single authenticated client handle reused by every call.
type Wrapper struct {
	clientID     string
	clientSecret string

	client  api
	aliases Aliases
	log     logrus.FieldLogger
	metrics *metrics.Metrics
}

// Compile-time check that Wrapper satisfies music.Catalog.
var _ music.Catalog = (*Wrapper)(nil)

type options struct {
	aliases    Aliases
	log        logrus.FieldLogger
	metrics    *metrics.Metrics
	tokenURL   string
	httpClient *http.Client
}

// Option customises a Wrapper.
type Option func(*options)

// WithAliases replaces the built-in alias table.
func WithAliases(a Aliases) Option {
	return func(o *options) { o.aliases = a }
}

// WithLogger sets the logger used for search failures and debug output.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) { o.log = l }
}

// WithMetrics records operation counts and latencies on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithTokenURL overrides the OAuth token endpoint.
func WithTokenURL(u string) Option {
	return func(o *options) { o.tokenURL = u }
}

// WithHTTPClient sets the HTTP client used for the token exchange and as the
// base transport of the authenticated client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

func defaultOptions() options {
	return options{
		aliases:  DefaultAliases(),
		log:      logrus.StandardLogger(),
		tokenURL: spotify.TokenURL,
	}
}

// NewWrapper authenticates with the client credentials flow and returns a
// Wrapper ready for API calls. The first token is fetched immediately so bad
// credentials surface here; later tokens are refreshed automatically.
func NewWrapper(ctx context.Context, clientID, clientSecret string, opts ...Option) (*Wrapper, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     o.tokenURL,
	}
	// The token source outlives ctx, so only its values are kept.
	ctx = context.WithoutCancel(ctx)
	if o.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
	}

	token, err := config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("spotify token: %w", err)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.ReuseTokenSource(token, config.TokenSource(ctx)))
	c := spotify.NewClient(httpClient)

	w := newWrapper(client{c: &c}, o)
	w.clientID = clientID
	w.clientSecret = clientSecret
	return w, nil
}

func newWrapper(c api, o options) *Wrapper {
	if o.aliases == nil {
		o.aliases = Aliases{}
	}
	if o.log == nil {
		o.log = logrus.StandardLogger()
	}
	return &Wrapper{client: c, aliases: o.aliases, log: o.log, metrics: o.metrics}
}

// ClientID returns the client identifier the wrapper authenticated with.
func (w *Wrapper) ClientID() string { return w.clientID }

// SearchArtist looks up bandName and returns the first artist whose name
// matches it exactly once case and diacritics are ignored. Names listed in
// the alias table are replaced by their corrected query first.
func (w *Wrapper) SearchArtist(ctx context.Context, bandName string) music.ArtistResult {
	start := time.Now()
	res := w.searchArtist(ctx, bandName)
	w.metrics.Observe("search_artist", res.Status.String(), start)
	if res.Status == music.Failed {
		w.log.WithError(res.Err).WithField("band", bandName).Error("error searching artist")
	}
	return res
}

func (w *Wrapper) searchArtist(ctx context.Context, bandName string) music.ArtistResult {
	query := matchKey(w.aliases.Resolve(bandName))

	if err := ctx.Err(); err != nil {
		return failed(err)
	}
	results, err := w.client.searchArtists(query, searchLimit)
	if err != nil {
		return failed(err)
	}
	if results == nil || results.Artists == nil {
		return failed(errMalformedSearch)
	}
	if results.Artists.Total == 0 {
		return music.ArtistResult{Status: music.NotFound}
	}
	for i := range results.Artists.Artists {
		a := results.Artists.Artists[i]
		if matchKey(a.Name) == query {
			return music.ArtistResult{Status: music.Found, Artist: &a}
		}
	}
	w.log.WithFields(logrus.Fields{"query": query, "candidates": len(results.Artists.Artists)}).Debug("no exact artist match")
	return music.ArtistResult{Status: music.NotFound}
}

func failed(err error) music.ArtistResult {
	return music.ArtistResult{Status: music.Failed, Err: fmt.Errorf("search artist: %w", err)}
}

// albumPages lists the artist's albums page by page.
func (w *Wrapper) albumPages(ctx context.Context, artistID string) iter.Seq2[music.Album, error] {
	return Paginate(ctx,
		func(prev *spotify.SimpleAlbumPage) (*spotify.SimpleAlbumPage, error) {
			w.metrics.Page("artist_albums")
			if prev == nil {
				return w.client.artistAlbums(spotify.ID(artistID), pageLimit)
			}
			next := *prev
			next.Albums = nil
			if err := w.client.nextAlbums(&next); err != nil {
				return nil, err
			}
			return &next, nil
		},
		func(p *spotify.SimpleAlbumPage) []music.Album { return p.Albums },
		func(p *spotify.SimpleAlbumPage) bool { return p.Next != "" },
	)
}

// GetAlbumsOfArtist returns the artist's full albums across all pages. When
// several entries share a name (compared case-insensitively) only the first
// one in listing order is kept.
func (w *Wrapper) GetAlbumsOfArtist(ctx context.Context, artistID string) ([]music.Album, error) {
	start := time.Now()
	seen := make(map[string]struct{})
	var albums []music.Album
	for album, err := range w.albumPages(ctx, artistID) {
		if err != nil {
			w.metrics.Observe("get_albums", "error", start)
			return nil, fmt.Errorf("get albums of artist %s: %w", artistID, err)
		}
		name := strings.ToLower(album.Name)
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		albums = append(albums, album)
	}
	w.metrics.Observe("get_albums", "ok", start)
	w.log.WithFields(logrus.Fields{"artist_id": artistID, "albums": len(albums)}).Debug("albums listed")
	return albums, nil
}

// GetTracksOfAlbum returns every track of the album across all pages, in
// listing order and without deduplication.
func (w *Wrapper) GetTracksOfAlbum(ctx context.Context, albumID string) ([]music.Track, error) {
	start := time.Now()
	seq := Paginate(ctx,
		func(prev *spotify.SimpleTrackPage) (*spotify.SimpleTrackPage, error) {
			w.metrics.Page("album_tracks")
			if prev == nil {
				return w.client.albumTracks(spotify.ID(albumID), pageLimit)
			}
			next := *prev
			next.Tracks = nil
			if err := w.client.nextTracks(&next); err != nil {
				return nil, err
			}
			return &next, nil
		},
		func(p *spotify.SimpleTrackPage) []music.Track { return p.Tracks },
		func(p *spotify.SimpleTrackPage) bool { return p.Next != "" },
	)
	tracks, err := Collect(seq)
	if err != nil {
		w.metrics.Observe("get_tracks", "error", start)
		return nil, fmt.Errorf("get tracks of album %s: %w", albumID, err)
	}
	w.metrics.Observe("get_tracks", "ok", start)
	return tracks, nil
}

// GetAudioFeaturesOfTracks fetches features for every id in one request and
// returns the service's list unmodified: it is aligned with trackIDs and
// holds nil where the service has no features. The request is not split, so
// inputs above the service's batch limit are rejected by the service.
func (w *Wrapper) GetAudioFeaturesOfTracks(ctx context.Context, trackIDs []string) ([]*music.AudioFeatures, error) {
	if len(trackIDs) == 0 {
		return []*music.AudioFeatures{}, nil
	}
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}
	feats, err := w.client.audioFeatures(ids...)
	if err != nil {
		w.metrics.Observe("get_audio_features", "error", start)
		return nil, fmt.Errorf("get audio features of %d tracks: %w", len(trackIDs), err)
	}
	w.metrics.Observe("get_audio_features", "ok", start)
	return feats, nil
}
