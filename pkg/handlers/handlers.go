// Package handlers exposes the catalog over a JSON HTTP API. Handlers depend
// on the music.Catalog interface so they can be tested with fakes, and on the
// snapshot store for persisted discographies.
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/zmb3/spotify"

	"Spotify-Wrapper-Go/pkg/db"
	"Spotify-Wrapper-Go/pkg/music"
)

// Application bundles the dependencies used by the HTTP handlers.
type Application struct {
	Catalog music.Catalog
	DB      *db.DB
	Log     logrus.FieldLogger
}

func (app *Application) logger() logrus.FieldLogger {
	if app.Log == nil {
		return logrus.StandardLogger()
	}
	return app.Log
}

// Routes registers every API route on a new ServeMux.
func (app *Application) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/artists/search", app.SearchArtist)
	mux.HandleFunc("GET /api/artists/{id}/albums", app.AlbumsOfArtist)
	mux.HandleFunc("GET /api/albums/{id}/tracks", app.TracksOfAlbum)
	mux.HandleFunc("GET /api/audio-features", app.AudioFeatures)
	mux.HandleFunc("POST /api/snapshots", app.CreateSnapshot)
	mux.HandleFunc("GET /api/snapshots", app.ListSnapshots)
	mux.HandleFunc("GET /api/snapshots/{id}", app.GetSnapshot)
	mux.HandleFunc("DELETE /api/snapshots/{id}", app.DeleteSnapshot)
	return mux
}

// SearchArtist resolves the "name" query parameter to a single artist.
// Not found maps to 404 and a failed lookup to 502 so clients can tell the
// two apart.
func (app *Application) SearchArtist(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		respondJSONError(w, http.StatusBadRequest, "name is required")
		return
	}
	res := app.Catalog.SearchArtist(r.Context(), name)
	switch res.Status {
	case music.Found:
		respondJSON(w, app.logger(), http.StatusOK, res.Artist)
	case music.Failed:
		respondJSONError(w, http.StatusBadGateway, "artist lookup failed")
	default:
		respondJSONError(w, http.StatusNotFound, "artist not found")
	}
}

// AlbumsOfArtist lists the deduplicated full albums of an artist.
func (app *Application) AlbumsOfArtist(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	albums, err := app.Catalog.GetAlbumsOfArtist(r.Context(), id)
	if err != nil {
		app.upstreamError(w, err, "failed to list albums")
		return
	}
	if albums == nil {
		albums = []music.Album{}
	}
	respondJSON(w, app.logger(), http.StatusOK, albums)
}

// TracksOfAlbum lists every track of an album.
func (app *Application) TracksOfAlbum(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	tracks, err := app.Catalog.GetTracksOfAlbum(r.Context(), id)
	if err != nil {
		app.upstreamError(w, err, "failed to list tracks")
		return
	}
	if tracks == nil {
		tracks = []music.Track{}
	}
	respondJSON(w, app.logger(), http.StatusOK, tracks)
}

// AudioFeatures returns features for the comma separated "ids" parameter.
// The response is aligned with the ids and holds null for tracks without
// features.
func (app *Application) AudioFeatures(w http.ResponseWriter, r *http.Request) {
	var ids []string
	for _, id := range strings.Split(r.URL.Query().Get("ids"), ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		respondJSONError(w, http.StatusBadRequest, "ids is required")
		return
	}
	feats, err := app.Catalog.GetAudioFeaturesOfTracks(r.Context(), ids)
	if err != nil {
		app.upstreamError(w, err, "failed to load audio features")
		return
	}
	respondJSON(w, app.logger(), http.StatusOK, feats)
}

// upstreamError maps a catalog error to a response. Errors the service
// reports for a bad or unknown id become 404; anything else is a 502.
func (app *Application) upstreamError(w http.ResponseWriter, err error, msg string) {
	var serr spotify.Error
	if errors.As(err, &serr) && (serr.Status == http.StatusNotFound || serr.Status == http.StatusBadRequest) {
		respondJSONError(w, http.StatusNotFound, serr.Message)
		return
	}
	app.logger().WithError(err).Error(msg)
	respondJSONError(w, http.StatusBadGateway, msg)
}
