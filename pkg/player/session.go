package player

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// State is the playback state of a session.
type State int

const (
	StateIdle State = iota
	StatePlaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// LoopMode is the repeat setting of a session.
type LoopMode int

const (
	LoopOff LoopMode = iota
	LoopQueue
	LoopTrack
)

func (m LoopMode) String() string {
	switch m {
	case LoopOff:
		return "off"
	case LoopQueue:
		return "queue"
	case LoopTrack:
		return "track"
	default:
		return "unknown"
	}
}

// advanceReason distinguishes why playback moves past the current track.
// Loop handling depends on it: a naturally finished track may restart or
// re-queue, a skipped track only re-queues, a failed track does neither.
type advanceReason int

const (
	advanceSkip advanceReason = iota
	advanceFinished
	advanceFailed
)

// SessionConfig controls per-session policy.
type SessionConfig struct {
	// ClearQueueOnStop drops pending tracks when Stop is called. When
	// false, Stop only clears the now-playing slot and the queue survives
	// for a later play command.
	ClearQueueOnStop bool
	// EventBuffer is the capacity of the session's event channel.
	EventBuffer int
}

// DefaultSessionConfig returns the default session policy.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		ClearQueueOnStop: true,
		EventBuffer:      16,
	}
}

// Session owns playback for one guild: the queue, the now-playing slot
// and the single live pipeline invocation. Every public method runs
// under s.mu, and pipeline completion notifications pass through the
// same lock, so commands and notifications never interleave mid-mutation.
//
// Each pipeline start opens a new epoch. Slow pipeline calls are issued
// outside the lock; when they land, the epoch is compared against the
// session's current one and anything stale is discarded. That is what
// keeps a user skip and a completion notification for the same track
// from double-advancing the queue.
type Session struct {
	guildID  string
	pipeline Pipeline

	mu         sync.Mutex
	state      State
	queue      *Queue
	nowPlaying *Track
	loop       LoopMode
	epoch      uint64
	handle     Handle
	closed     bool

	startedAt  time.Time // start of the current track, shifted on resume
	pausedAt   time.Time
	lastActive time.Time

	clearOnStop bool
	events      chan Event
}

// NewSession creates a session for a guild. The pipeline must be
// non-nil; cfg may be nil for defaults.
func NewSession(guildID string, pipeline Pipeline, cfg *SessionConfig) *Session {
	if cfg == nil {
		cfg = DefaultSessionConfig()
	}
	return &Session{
		guildID:     guildID,
		pipeline:    pipeline,
		state:       StateIdle,
		queue:       NewQueue(),
		clearOnStop: cfg.ClearQueueOnStop,
		events:      make(chan Event, cfg.EventBuffer),
		lastActive:  time.Now(),
	}
}

// GuildID returns the guild this session belongs to.
func (s *Session) GuildID() string {
	return s.guildID
}

// Events returns the session's event stream. The channel is closed when
// the session is closed.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Enqueue adds a track. If nothing is playing the track is promoted
// straight to now-playing and the pipeline is started; the returned
// position is then 0. Otherwise the track joins the queue and the
// returned position is its 1-based place among the pending tracks.
func (s *Session) Enqueue(t Track) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrSessionClosed
	}
	s.touchLocked()
	if s.nowPlaying != nil {
		pos := s.queue.Append(t)
		s.mu.Unlock()
		s.emit(Event{Type: EventQueueChanged, GuildID: s.guildID, Track: &t})
		return pos, nil
	}
	epoch := s.promoteLocked(t)
	s.mu.Unlock()

	s.launch(t, epoch)
	return 0, nil
}

// Skip stops the current track and advances to the next one. It returns
// the newly playing track, or nil if the queue was empty and the session
// went idle. Skipping an idle session fails with ErrNothingPlaying.
func (s *Session) Skip() (*Track, error) {
	s.mu.Lock()
	s.touchLocked()
	if s.state == StateIdle {
		s.mu.Unlock()
		return nil, ErrNothingPlaying
	}
	old := s.handle
	next, nextEpoch, ok := s.advanceLocked(advanceSkip)
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	if !ok {
		return nil, nil
	}
	s.launch(next, nextEpoch)
	return &next, nil
}

// Pause suspends playback. Fails unless the session is playing.
func (s *Session) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if s.state != StatePlaying {
		return fmt.Errorf("%w: cannot pause while %s", ErrInvalidStateTransition, s.state)
	}
	if s.handle != nil {
		if err := s.handle.Pause(); err != nil {
			return err
		}
	}
	s.state = StatePaused
	s.pausedAt = time.Now()
	return nil
}

// Resume continues a paused session. Fails unless the session is paused.
func (s *Session) Resume() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	if s.state != StatePaused {
		return fmt.Errorf("%w: cannot resume while %s", ErrInvalidStateTransition, s.state)
	}
	if s.handle != nil {
		if err := s.handle.Resume(); err != nil {
			return err
		}
	}
	// Shift the track start so Position keeps excluding the pause gap.
	s.startedAt = s.startedAt.Add(time.Since(s.pausedAt))
	s.state = StatePlaying
	return nil
}

// Stop halts playback and returns the session to idle. It is idempotent:
// stopping an idle session is a no-op that reports success. Whether the
// pending queue survives is per-session policy (ClearQueueOnStop).
func (s *Session) Stop() error {
	s.mu.Lock()
	s.touchLocked()
	old := s.handle
	s.handle = nil
	s.nowPlaying = nil
	s.state = StateIdle
	s.epoch++ // anything still in flight is now stale
	if s.clearOnStop {
		s.queue.Clear()
	}
	s.mu.Unlock()

	if old != nil {
		old.Stop()
	}
	return nil
}

// Remove deletes the pending track at index (0-based) and returns it.
// The now-playing track is unaffected.
func (s *Session) Remove(index int) (Track, error) {
	s.mu.Lock()
	s.touchLocked()
	removed, err := s.queue.RemoveAt(index)
	s.mu.Unlock()
	if err != nil {
		return Track{}, err
	}
	s.emit(Event{Type: EventQueueChanged, GuildID: s.guildID, Track: &removed})
	return removed, nil
}

// SwapTracks exchanges two pending tracks.
func (s *Session) SwapTracks(i, j int) error {
	s.mu.Lock()
	s.touchLocked()
	err := s.queue.Swap(i, j)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.emit(Event{Type: EventQueueChanged, GuildID: s.guildID})
	return nil
}

// MoveTrack relocates a pending track to another position.
func (s *Session) MoveTrack(from, to int) error {
	s.mu.Lock()
	s.touchLocked()
	err := s.queue.Move(from, to)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.emit(Event{Type: EventQueueChanged, GuildID: s.guildID})
	return nil
}

// ClearQueue drops all pending tracks. The now-playing track is
// unaffected.
func (s *Session) ClearQueue() {
	s.mu.Lock()
	s.touchLocked()
	s.queue.Clear()
	s.mu.Unlock()
	s.emit(Event{Type: EventQueueChanged, GuildID: s.guildID})
}

// Snapshot returns a consistent copy of the pending tracks.
func (s *Session) Snapshot() []Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Snapshot()
}

// NowPlaying returns the current track, if any.
func (s *Session) NowPlaying() (Track, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nowPlaying == nil {
		return Track{}, false
	}
	return *s.nowPlaying, true
}

// State returns the session's playback state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Position returns how far into the current track playback is, with
// pause gaps excluded.
func (s *Session) Position() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StatePlaying:
		return time.Since(s.startedAt)
	case StatePaused:
		return s.pausedAt.Sub(s.startedAt)
	default:
		return 0
	}
}

// Loop returns the session's loop mode.
func (s *Session) Loop() LoopMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop
}

// SetLoop changes the session's loop mode.
func (s *Session) SetLoop(mode LoopMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLocked()
	s.loop = mode
}

// QueueLen returns the number of pending tracks.
func (s *Session) QueueLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// IsIdle reports whether the session has nothing playing and nothing
// pending, i.e. it is a candidate for idle eviction.
func (s *Session) IsIdle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateIdle && s.queue.Len() == 0
}

// LastActive returns when the session last handled a command.
func (s *Session) LastActive() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

// Close stops playback and shuts the event stream. Used by the registry
// on eviction; a closed session rejects further enqueues.
func (s *Session) Close() {
	_ = s.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	select {
	case s.events <- Event{Type: EventSessionEnded, GuildID: s.guildID}:
	default:
	}
	close(s.events)
}

// promoteLocked makes t the now-playing track and opens a new epoch.
// Caller holds s.mu.
func (s *Session) promoteLocked(t Track) uint64 {
	s.nowPlaying = &t
	s.state = StatePlaying
	s.startedAt = time.Now()
	s.epoch++
	return s.epoch
}

// advanceLocked clears the now-playing slot and promotes the next track
// according to the loop mode. It returns the new track and its epoch, or
// ok=false after transitioning to idle. Caller holds s.mu.
func (s *Session) advanceLocked(reason advanceReason) (Track, uint64, bool) {
	prev := s.nowPlaying
	s.nowPlaying = nil
	s.handle = nil

	if prev != nil {
		switch {
		case reason == advanceFinished && s.loop == LoopTrack:
			epoch := s.promoteLocked(*prev)
			return *prev, epoch, true
		case reason != advanceFailed && s.loop == LoopQueue:
			s.queue.Append(*prev)
		}
	}

	next, ok := s.queue.PopFront()
	if !ok {
		s.state = StateIdle
		s.epoch++ // invalidate anything still in flight
		return Track{}, 0, false
	}
	epoch := s.promoteLocked(next)
	return next, epoch, true
}

// launch starts the pipeline for an epoch opened under the lock. It runs
// outside the lock so a slow process spawn does not block unrelated
// commands; if a later command superseded the epoch in the meantime the
// invocation is stopped and forgotten.
func (s *Session) launch(t Track, epoch uint64) {
	h, err := s.pipeline.Start(t)

	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		if err == nil && h != nil {
			h.Stop()
		}
		return
	}
	if err != nil {
		log.Printf("[Session %s] pipeline start failed for %q: %v", s.guildID, t.Title, err)
		next, nextEpoch, ok := s.advanceLocked(advanceFailed)
		s.mu.Unlock()
		s.emit(Event{
			Type:    EventPlaybackError,
			GuildID: s.guildID,
			Track:   &t,
			Err:     fmt.Errorf("%w: %v", ErrPipeline, err),
		})
		if ok {
			s.emit(Event{Type: EventNowPlaying, GuildID: s.guildID, Track: &next})
			s.launch(next, nextEpoch)
		}
		return
	}
	s.handle = h
	// A pause issued while the start was in flight wins.
	if s.state == StatePaused {
		if perr := h.Pause(); perr != nil {
			log.Printf("[Session %s] late pause failed: %v", s.guildID, perr)
		}
	}
	s.mu.Unlock()

	go s.watch(h, epoch)
}

// watch waits for the pipeline invocation to finish and feeds the result
// back through the session lock.
func (s *Session) watch(h Handle, epoch uint64) {
	err := <-h.Done()
	s.onPipelineDone(epoch, err)
}

// onPipelineDone handles a completion notification. Notifications whose
// epoch no longer matches belong to an invocation that was stopped or
// superseded and are dropped without touching any state.
func (s *Session) onPipelineDone(epoch uint64, cause error) {
	s.mu.Lock()
	if epoch != s.epoch {
		s.mu.Unlock()
		log.Printf("[Session %s] dropped stale pipeline notification (epoch %d)", s.guildID, epoch)
		return
	}

	reason := advanceFinished
	var failed *Track
	if cause != nil {
		reason = advanceFailed
		if s.nowPlaying != nil {
			t := *s.nowPlaying
			failed = &t
		}
	}
	next, nextEpoch, ok := s.advanceLocked(reason)
	s.mu.Unlock()

	if cause != nil {
		log.Printf("[Session %s] pipeline error, advancing: %v", s.guildID, cause)
		s.emit(Event{
			Type:    EventPlaybackError,
			GuildID: s.guildID,
			Track:   failed,
			Err:     fmt.Errorf("%w: %v", ErrPipeline, cause),
		})
	}
	if !ok {
		return
	}
	s.emit(Event{Type: EventNowPlaying, GuildID: s.guildID, Track: &next})
	s.launch(next, nextEpoch)
}

// emit pushes an event without blocking; a listener that falls behind
// loses events rather than stalling playback.
func (s *Session) emit(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		log.Printf("[Session %s] event dropped (listener behind): %s", s.guildID, ev.Type)
	}
}

// touchLocked records command activity for idle eviction. Caller holds
// s.mu.
func (s *Session) touchLocked() {
	s.lastActive = time.Now()
}
