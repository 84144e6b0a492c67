package player

// EventType identifies what a session event announces.
type EventType int

const (
	// EventNowPlaying fires when playback advances to a new track without
	// a direct user command (auto-advance, loop restart).
	EventNowPlaying EventType = iota
	// EventQueueChanged fires after a structural queue mutation.
	EventQueueChanged
	// EventPlaybackError fires when the pipeline reports a fatal failure
	// for the current track.
	EventPlaybackError
	// EventSessionEnded fires once when the session is closed.
	EventSessionEnded
)

func (t EventType) String() string {
	switch t {
	case EventNowPlaying:
		return "now_playing"
	case EventQueueChanged:
		return "queue_changed"
	case EventPlaybackError:
		return "playback_error"
	case EventSessionEnded:
		return "session_ended"
	default:
		return "unknown"
	}
}

// Event is pushed by a session when something worth announcing happens
// outside the direct request/response path of a command.
type Event struct {
	Type    EventType
	GuildID string
	Track   *Track // the track concerned, if any
	Err     error  // set for EventPlaybackError
}
