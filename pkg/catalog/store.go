package catalog

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS videos (
	id             TEXT PRIMARY KEY,
	path           TEXT NOT NULL,
	name           TEXT NOT NULL,
	size_bytes     INTEGER NOT NULL,
	duration_sec   REAL NOT NULL,
	width          INTEGER,
	height         INTEGER,
	added_at       TEXT NOT NULL,
	directory      TEXT NOT NULL,
	thumbnail_path TEXT,
	sprite_path    TEXT,
	fingerprint    TEXT NOT NULL,
	favorite       INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_videos_fingerprint ON videos(fingerprint);
CREATE INDEX IF NOT EXISTS idx_videos_directory ON videos(directory);
`

// Store is the sqlite-backed catalog database.
type Store struct {
	db *sql.DB
}

// OpenStore opens (creating if necessary) the catalog database at path.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("catalog: open database %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Upsert inserts or replaces a video record by ID.
func (s *Store) Upsert(v *Video) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO videos (
			id, path, name, size_bytes, duration_sec, width, height,
			added_at, directory, thumbnail_path, sprite_path,
			fingerprint, favorite
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.Path, v.Name, v.SizeBytes, v.DurationSec, v.Width, v.Height,
		v.AddedAt.UTC().Format(time.RFC3339Nano), v.Directory,
		v.ThumbnailPath, v.SpritePath, v.Fingerprint, boolInt(v.Favorite),
	)
	if err != nil {
		return fmt.Errorf("catalog: upsert %s: %w", v.Path, err)
	}
	return nil
}

// All returns every video, newest first.
func (s *Store) All() ([]Video, error) {
	rows, err := s.db.Query(`
		SELECT id, path, name, size_bytes, duration_sec, width, height,
		       added_at, directory, thumbnail_path, sprite_path,
		       fingerprint, favorite
		FROM videos ORDER BY added_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list videos: %w", err)
	}
	defer rows.Close()

	var videos []Video
	for rows.Next() {
		var v Video
		var addedAt string
		var favorite int
		if err := rows.Scan(
			&v.ID, &v.Path, &v.Name, &v.SizeBytes, &v.DurationSec,
			&v.Width, &v.Height, &addedAt, &v.Directory,
			&v.ThumbnailPath, &v.SpritePath, &v.Fingerprint, &favorite,
		); err != nil {
			return nil, fmt.Errorf("catalog: scan row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, addedAt); err == nil {
			v.AddedAt = t
		}
		v.Favorite = favorite != 0
		videos = append(videos, v)
	}
	return videos, rows.Err()
}

// Get returns the video with the given ID, or sql.ErrNoRows.
func (s *Store) Get(id string) (*Video, error) {
	row := s.db.QueryRow(`
		SELECT id, path, name, size_bytes, duration_sec, width, height,
		       added_at, directory, thumbnail_path, sprite_path,
		       fingerprint, favorite
		FROM videos WHERE id = ?`, id)

	var v Video
	var addedAt string
	var favorite int
	if err := row.Scan(
		&v.ID, &v.Path, &v.Name, &v.SizeBytes, &v.DurationSec,
		&v.Width, &v.Height, &addedAt, &v.Directory,
		&v.ThumbnailPath, &v.SpritePath, &v.Fingerprint, &favorite,
	); err != nil {
		return nil, err
	}
	if t, err := time.Parse(time.RFC3339Nano, addedAt); err == nil {
		v.AddedAt = t
	}
	v.Favorite = favorite != 0
	return &v, nil
}

// SetFavorite updates the favorite flag for one video.
func (s *Store) SetFavorite(id string, favorite bool) error {
	_, err := s.db.Exec(`UPDATE videos SET favorite = ? WHERE id = ?`, boolInt(favorite), id)
	if err != nil {
		return fmt.Errorf("catalog: set favorite %s: %w", id, err)
	}
	return nil
}

// Fingerprints returns the set of known fingerprints, used to skip
// already-processed files during a rescan.
func (s *Store) Fingerprints() (map[string]struct{}, error) {
	rows, err := s.db.Query(`SELECT fingerprint FROM videos`)
	if err != nil {
		return nil, fmt.Errorf("catalog: list fingerprints: %w", err)
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("catalog: scan fingerprint: %w", err)
		}
		set[fp] = struct{}{}
	}
	return set, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
