package player

// Pipeline launches audio streams for a session. Start returns once the
// stream is launched; it must not block for the duration of playback.
// Implementations live outside this package (the real one spawns ffmpeg
// and feeds a Discord voice connection).
type Pipeline interface {
	Start(track Track) (Handle, error)
}

// Handle controls one live pipeline invocation.
//
// Stop is best-effort and must be safe to call after the stream already
// finished. Done yields exactly one value: nil on natural completion, a
// non-nil error on fatal failure. A stopped invocation may still deliver
// a value on Done; the session discards it via the epoch check.
type Handle interface {
	Stop()
	Pause() error
	Resume() error
	Done() <-chan error
}
