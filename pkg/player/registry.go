package player

import (
	"log"
	"sync"
	"time"
)

// Factory builds a fresh session for a guild. The registry calls it at
// most once per live guild entry.
type Factory func(guildID string) *Session

// Registry maps guild IDs to their playback sessions. Creation and
// lookup run under the registry's own lock; it never reaches into a
// session's internals, and sessions for different guilds never block
// each other.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	factory  Factory
}

// NewRegistry creates a registry backed by the given session factory.
func NewRegistry(factory Factory) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		factory:  factory,
	}
}

// GetOrCreate returns the guild's session, creating it if absent.
// Concurrent callers for the same guild always receive the same session.
func (r *Registry) GetOrCreate(guildID string) *Session {
	r.mu.RLock()
	s, ok := r.sessions[guildID]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[guildID]; ok {
		return s
	}
	s = r.factory(guildID)
	r.sessions[guildID] = s
	return s
}

// Get returns the guild's session without creating one. Commands that
// require an existing session (skip, pause) use this so that a guild
// that never played anything gets ErrNothingPlaying instead of a fresh
// empty session.
func (r *Registry) Get(guildID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[guildID]
	return s, ok
}

// Remove evicts and closes the guild's session. A later GetOrCreate for
// the same guild produces a fresh session with an empty queue.
func (r *Registry) Remove(guildID string) {
	r.mu.Lock()
	s, ok := r.sessions[guildID]
	if ok {
		delete(r.sessions, guildID)
	}
	r.mu.Unlock()

	if ok {
		s.Close()
	}
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Shutdown closes every session. Used when the process is going down.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	victims := make([]*Session, 0, len(r.sessions))
	for guildID, s := range r.sessions {
		victims = append(victims, s)
		delete(r.sessions, guildID)
	}
	r.mu.Unlock()

	for _, s := range victims {
		s.Close()
	}
}

// Sweep evicts sessions that have been idle with an empty queue for
// longer than maxIdle, and returns the affected guild IDs. Closing
// happens after the map lock is released.
func (r *Registry) Sweep(maxIdle time.Duration) []string {
	cutoff := time.Now().Add(-maxIdle)

	r.mu.Lock()
	var victims []*Session
	for guildID, s := range r.sessions {
		if s.IsIdle() && s.LastActive().Before(cutoff) {
			victims = append(victims, s)
			delete(r.sessions, guildID)
		}
	}
	r.mu.Unlock()

	evicted := make([]string, 0, len(victims))
	for _, s := range victims {
		log.Printf("[Registry] evicting idle session for guild %s", s.GuildID())
		s.Close()
		evicted = append(evicted, s.GuildID())
	}
	return evicted
}
