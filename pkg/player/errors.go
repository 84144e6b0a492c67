package player

import "errors"

var (
	// ErrNothingPlaying is returned by playback controls issued against a
	// guild with no active track.
	ErrNothingPlaying = errors.New("nothing is currently playing")

	// ErrInvalidStateTransition is returned when a control does not apply
	// to the session's current state, e.g. pausing twice.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrIndexOutOfRange is returned by queue operations given a position
	// outside [0, len).
	ErrIndexOutOfRange = errors.New("queue index out of range")

	// ErrResolutionFailed wraps upstream failures to turn a query or URL
	// into a playable track.
	ErrResolutionFailed = errors.New("could not resolve a playable track")

	// ErrPipeline wraps fatal errors reported by the audio pipeline.
	ErrPipeline = errors.New("audio pipeline failure")

	// ErrSessionClosed is returned by commands issued against a session
	// that was already evicted from the registry.
	ErrSessionClosed = errors.New("session is closed")
)
