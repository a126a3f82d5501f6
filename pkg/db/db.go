// Package db provides the persistence layer for discography snapshots. It
// wraps a SQLite database; callers open a single DB instance using New and
// reuse it for all operations.
//
// A snapshot stores one walked discography: the artist, its albums in listing
// order, each album's tracks and the audio features found for them. Entities
// keep their full service metadata as JSON next to the columns used for
// lookups, so a snapshot reads back exactly as it was saved.

package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"Spotify-Wrapper-Go/pkg/music"
)

// DB wraps a sql.DB connection and exposes the snapshot helpers.
type DB struct {
	*sql.DB
}

// New opens the SQLite database located at path. If the file does not exist
// it is created along with the required schema.
func New(path string) (*DB, error) {
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		d.SetMaxOpenConns(1)
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (id TEXT PRIMARY KEY, artist_id TEXT NOT NULL, artist_name TEXT NOT NULL, artist_json TEXT NOT NULL, created_at TIMESTAMP NOT NULL)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_artist ON snapshots(artist_id)`,
		`CREATE TABLE IF NOT EXISTS albums (snapshot_id TEXT NOT NULL, position INTEGER NOT NULL, album_id TEXT NOT NULL, name TEXT NOT NULL, album_json TEXT NOT NULL, PRIMARY KEY (snapshot_id, position))`,
		`CREATE TABLE IF NOT EXISTS tracks (snapshot_id TEXT NOT NULL, album_position INTEGER NOT NULL, position INTEGER NOT NULL, track_id TEXT NOT NULL, name TEXT NOT NULL, track_json TEXT NOT NULL, PRIMARY KEY (snapshot_id, album_position, position))`,
		`CREATE TABLE IF NOT EXISTS audio_features (snapshot_id TEXT NOT NULL, album_position INTEGER NOT NULL, position INTEGER NOT NULL, tempo REAL, energy REAL, danceability REAL, valence REAL, features_json TEXT NOT NULL, PRIMARY KEY (snapshot_id, album_position, position))`,
	}
	for _, s := range stmts {
		if _, err := d.Exec(s); err != nil {
			d.Close()
			return nil, fmt.Errorf("init db: %w", err)
		}
	}
	return &DB{d}, nil
}

// Snapshot is a stored discography.
type Snapshot struct {
	ID          string            `json:"id"`
	CreatedAt   time.Time         `json:"created_at"`
	Discography music.Discography `json:"discography"`
}

// SnapshotSummary describes a snapshot without loading its contents.
type SnapshotSummary struct {
	ID         string    `json:"id"`
	ArtistID   string    `json:"artist_id"`
	ArtistName string    `json:"artist_name"`
	Albums     int       `json:"albums"`
	Tracks     int       `json:"tracks"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaveSnapshot stores d in a single transaction and returns the new
// snapshot ID.
func (db *DB) SaveSnapshot(ctx context.Context, d *music.Discography) (string, error) {
	id := uuid.NewString()
	artistJSON, err := json.Marshal(d.Artist)
	if err != nil {
		return "", err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO snapshots(id, artist_id, artist_name, artist_json, created_at) VALUES(?,?,?,?,?)`,
		id, string(d.Artist.ID), d.Artist.Name, string(artistJSON), time.Now().UTC()); err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	for i, at := range d.Albums {
		albumJSON, err := json.Marshal(at.Album)
		if err != nil {
			return "", err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO albums(snapshot_id, position, album_id, name, album_json) VALUES(?,?,?,?,?)`,
			id, i, string(at.Album.ID), at.Album.Name, string(albumJSON)); err != nil {
			return "", fmt.Errorf("save album %s: %w", at.Album.ID, err)
		}
		for j, tf := range at.Tracks {
			trackJSON, err := json.Marshal(tf.Track)
			if err != nil {
				return "", err
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO tracks(snapshot_id, album_position, position, track_id, name, track_json) VALUES(?,?,?,?,?,?)`,
				id, i, j, string(tf.Track.ID), tf.Track.Name, string(trackJSON)); err != nil {
				return "", fmt.Errorf("save track %s: %w", tf.Track.ID, err)
			}
			if tf.Features == nil {
				continue
			}
			featJSON, err := json.Marshal(tf.Features)
			if err != nil {
				return "", err
			}
			f := tf.Features
			if _, err := tx.ExecContext(ctx, `INSERT INTO audio_features(snapshot_id, album_position, position, tempo, energy, danceability, valence, features_json) VALUES(?,?,?,?,?,?,?,?)`,
				id, i, j, f.Tempo, f.Energy, f.Danceability, f.Valence, string(featJSON)); err != nil {
				return "", fmt.Errorf("save features %s: %w", tf.Track.ID, err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// GetSnapshot loads the snapshot with the given ID. sql.ErrNoRows is
// returned if the ID does not exist.
func (db *DB) GetSnapshot(ctx context.Context, id string) (Snapshot, error) {
	s := Snapshot{ID: id}
	var artistJSON string
	err := db.QueryRowContext(ctx, `SELECT artist_json, created_at FROM snapshots WHERE id=?`, id).Scan(&artistJSON, &s.CreatedAt)
	if err != nil {
		return Snapshot{}, err
	}
	if err := json.Unmarshal([]byte(artistJSON), &s.Discography.Artist); err != nil {
		return Snapshot{}, err
	}

	rows, err := db.QueryContext(ctx, `SELECT album_json FROM albums WHERE snapshot_id=? ORDER BY position`, id)
	if err != nil {
		return Snapshot{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return Snapshot{}, err
		}
		var at music.AlbumTracks
		if err := json.Unmarshal([]byte(data), &at.Album); err != nil {
			return Snapshot{}, err
		}
		s.Discography.Albums = append(s.Discography.Albums, at)
	}
	if err := rows.Err(); err != nil {
		return Snapshot{}, err
	}

	trows, err := db.QueryContext(ctx, `SELECT t.album_position, t.track_json, f.features_json
		FROM tracks t LEFT JOIN audio_features f
		ON f.snapshot_id = t.snapshot_id AND f.album_position = t.album_position AND f.position = t.position
		WHERE t.snapshot_id=? ORDER BY t.album_position, t.position`, id)
	if err != nil {
		return Snapshot{}, err
	}
	defer trows.Close()
	for trows.Next() {
		var (
			albumPos  int
			trackJSON string
			featJSON  sql.NullString
		)
		if err := trows.Scan(&albumPos, &trackJSON, &featJSON); err != nil {
			return Snapshot{}, err
		}
		if albumPos < 0 || albumPos >= len(s.Discography.Albums) {
			return Snapshot{}, fmt.Errorf("snapshot %s: track for unknown album %d", id, albumPos)
		}
		var tf music.TrackFeatures
		if err := json.Unmarshal([]byte(trackJSON), &tf.Track); err != nil {
			return Snapshot{}, err
		}
		if featJSON.Valid {
			tf.Features = new(music.AudioFeatures)
			if err := json.Unmarshal([]byte(featJSON.String), tf.Features); err != nil {
				return Snapshot{}, err
			}
		}
		s.Discography.Albums[albumPos].Tracks = append(s.Discography.Albums[albumPos].Tracks, tf)
	}
	return s, trows.Err()
}

// ListSnapshots returns summaries of all snapshots, newest first.
func (db *DB) ListSnapshots(ctx context.Context) ([]SnapshotSummary, error) {
	rows, err := db.QueryContext(ctx, `SELECT s.id, s.artist_id, s.artist_name, s.created_at,
		(SELECT COUNT(*) FROM albums a WHERE a.snapshot_id = s.id),
		(SELECT COUNT(*) FROM tracks t WHERE t.snapshot_id = s.id)
		FROM snapshots s ORDER BY s.rowid DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var res []SnapshotSummary
	for rows.Next() {
		var ss SnapshotSummary
		if err := rows.Scan(&ss.ID, &ss.ArtistID, &ss.ArtistName, &ss.CreatedAt, &ss.Albums, &ss.Tracks); err != nil {
			return nil, err
		}
		res = append(res, ss)
	}
	return res, rows.Err()
}

// DeleteSnapshot removes a snapshot and everything stored with it.
// sql.ErrNoRows is returned when the snapshot does not exist which allows
// callers to respond with a 404.
func (db *DB) DeleteSnapshot(ctx context.Context, id string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	for _, table := range []string{"albums", "tracks", "audio_features"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE snapshot_id=?`, id); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	return tx.Commit()
}
