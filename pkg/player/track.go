package player

import "time"

// Track describes a single resolved, playable audio item. Tracks are
// immutable once created; the queue and session pass them by value.
type Track struct {
	ID          string        // source-specific identifier (e.g. YouTube video ID)
	Title       string        // display title
	URL         string        // direct audio stream URL fed to the pipeline
	SourceURL   string        // original page URL, if any
	Duration    time.Duration // 0 when the source does not report one
	RequestedBy string        // username of the requester
	AddedAt     time.Time
}
