// This file contains the endpoints that walk a discography and manage the
// stored snapshots.

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"Spotify-Wrapper-Go/pkg/db"
	"Spotify-Wrapper-Go/pkg/music"
)

// CreateSnapshot walks the discography of the artist named in the JSON body
// ({"artist": "..."}) and stores it. The new snapshot ID is returned with
// status 201.
func (app *Application) CreateSnapshot(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Artist string `json:"artist"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Artist) == "" {
		respondJSONError(w, http.StatusBadRequest, "artist is required")
		return
	}
	if app.DB == nil {
		respondJSONError(w, http.StatusInternalServerError, "db not configured")
		return
	}

	walker := music.Walker{Catalog: app.Catalog, Log: app.logger()}
	d, err := walker.Walk(r.Context(), req.Artist)
	if err != nil {
		if errors.Is(err, music.ErrArtistNotFound) {
			respondJSONError(w, http.StatusNotFound, "artist not found")
			return
		}
		app.upstreamError(w, err, "failed to walk discography")
		return
	}
	id, err := app.DB.SaveSnapshot(r.Context(), d)
	if err != nil {
		app.logger().WithError(err).Error("save snapshot")
		respondJSONError(w, http.StatusInternalServerError, "failed to save snapshot")
		return
	}
	respondJSON(w, app.logger(), http.StatusCreated, map[string]any{
		"id":     id,
		"artist": d.Artist.Name,
		"albums": len(d.Albums),
		"tracks": d.TrackCount(),
	})
}

// ListSnapshots returns summaries of the stored snapshots, newest first.
func (app *Application) ListSnapshots(w http.ResponseWriter, r *http.Request) {
	if app.DB == nil {
		respondJSONError(w, http.StatusInternalServerError, "db not configured")
		return
	}
	list, err := app.DB.ListSnapshots(r.Context())
	if err != nil {
		app.logger().WithError(err).Error("list snapshots")
		respondJSONError(w, http.StatusInternalServerError, "failed to list snapshots")
		return
	}
	if list == nil {
		list = []db.SnapshotSummary{}
	}
	respondJSON(w, app.logger(), http.StatusOK, list)
}

// GetSnapshot returns one stored snapshot or 404.
func (app *Application) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	if app.DB == nil {
		respondJSONError(w, http.StatusInternalServerError, "db not configured")
		return
	}
	s, err := app.DB.GetSnapshot(r.Context(), r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		respondJSONError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	if err != nil {
		app.logger().WithError(err).Error("get snapshot")
		respondJSONError(w, http.StatusInternalServerError, "failed to load snapshot")
		return
	}
	respondJSON(w, app.logger(), http.StatusOK, s)
}

// DeleteSnapshot removes a stored snapshot. It responds 204 on success and
// 404 when the snapshot does not exist.
func (app *Application) DeleteSnapshot(w http.ResponseWriter, r *http.Request) {
	if app.DB == nil {
		respondJSONError(w, http.StatusInternalServerError, "db not configured")
		return
	}
	err := app.DB.DeleteSnapshot(r.Context(), r.PathValue("id"))
	if errors.Is(err, sql.ErrNoRows) {
		respondJSONError(w, http.StatusNotFound, "snapshot not found")
		return
	}
	if err != nil {
		app.logger().WithError(err).Error("delete snapshot")
		respondJSONError(w, http.StatusInternalServerError, "failed to delete snapshot")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
