package resolver

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/latoulicious/Minuet/pkg/player"
)

// TrackCache persists resolved track metadata in SQLite so repeat plays
// of the same video skip the extraction round-trip. Entries carry an
// expiry because stream URLs stop working once their signature lapses.
type TrackCache struct {
	db *sql.DB
}

// NewTrackCache opens (or creates) the cache database at path.
func NewTrackCache(path string) (*TrackCache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %v", err)
	}

	createTable := `
	CREATE TABLE IF NOT EXISTS track_cache (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		video_id TEXT UNIQUE NOT NULL,
		track_data TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		expires_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_track_cache_video_id ON track_cache(video_id);
	CREATE INDEX IF NOT EXISTS idx_track_cache_expires ON track_cache(expires_at);
	`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize cache database: %v", err)
	}

	return &TrackCache{db: db}, nil
}

// Get returns the cached track for a video ID. Expired entries are
// treated as absent.
func (c *TrackCache) Get(videoID string) (player.Track, bool) {
	var data string
	err := c.db.QueryRow(
		"SELECT track_data FROM track_cache WHERE video_id = ? AND expires_at > ?",
		videoID, time.Now(),
	).Scan(&data)
	if err != nil {
		return player.Track{}, false
	}

	var t player.Track
	if err := json.Unmarshal([]byte(data), &t); err != nil {
		return player.Track{}, false
	}
	return t, true
}

// Put stores a resolved track with the given TTL, replacing any previous
// entry for the same video.
func (c *TrackCache) Put(t player.Track, ttl time.Duration) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal track: %v", err)
	}

	_, err = c.db.Exec(
		"INSERT OR REPLACE INTO track_cache (video_id, track_data, expires_at) VALUES (?, ?, ?)",
		t.ID, string(data), time.Now().Add(ttl),
	)
	return err
}

// CleanExpired removes entries past their expiry.
func (c *TrackCache) CleanExpired() error {
	_, err := c.db.Exec("DELETE FROM track_cache WHERE expires_at < ?", time.Now())
	return err
}

// Close closes the underlying database.
func (c *TrackCache) Close() error {
	return c.db.Close()
}
