package player

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry() *Registry {
	return NewRegistry(func(guildID string) *Session {
		return NewSession(guildID, &fakePipeline{}, nil)
	})
}

func TestRegistryGetOrCreate(t *testing.T) {
	r := newTestRegistry()

	s1 := r.GetOrCreate("guild-1")
	require.NotNil(t, s1)
	assert.Equal(t, "guild-1", s1.GuildID())

	s2 := r.GetOrCreate("guild-1")
	assert.Same(t, s1, s2, "same guild must yield the same session")

	other := r.GetOrCreate("guild-2")
	assert.NotSame(t, s1, other)
	assert.Equal(t, 2, r.Len())
}

func TestRegistryGetDoesNotCreate(t *testing.T) {
	r := newTestRegistry()

	_, ok := r.Get("guild-1")
	assert.False(t, ok)
	assert.Equal(t, 0, r.Len(), "non-creating lookup must not insert a session")

	r.GetOrCreate("guild-1")
	s, ok := r.Get("guild-1")
	assert.True(t, ok)
	assert.NotNil(t, s)
}

func TestRegistryConcurrentGetOrCreate(t *testing.T) {
	r := newTestRegistry()

	const callers = 64
	results := make([]*Session, callers)
	var wg sync.WaitGroup
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func(i int) {
			defer wg.Done()
			results[i] = r.GetOrCreate("guild-1")
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		require.Same(t, results[0], results[i],
			"concurrent callers must never see two sessions for one guild")
	}
	assert.Equal(t, 1, r.Len())
}

func TestRegistryRemoveProducesFreshSession(t *testing.T) {
	r := newTestRegistry()

	s1 := r.GetOrCreate("guild-1")
	_, _ = s1.Enqueue(track("A"))
	_, _ = s1.Enqueue(track("B"))

	r.Remove("guild-1")
	assert.Equal(t, 0, r.Len())

	s2 := r.GetOrCreate("guild-1")
	assert.NotSame(t, s1, s2)
	assert.Equal(t, 0, s2.QueueLen(), "fresh session starts with an empty queue")
	assert.Equal(t, StateIdle, s2.State())

	r.Remove("guild-missing") // removing an absent guild is a no-op
}

func TestRegistrySweepEvictsIdleSessions(t *testing.T) {
	r := newTestRegistry()

	idle := r.GetOrCreate("guild-idle")
	busy := r.GetOrCreate("guild-busy")
	_, _ = busy.Enqueue(track("A"))

	// Backdate both sessions past the idle cutoff.
	for _, s := range []*Session{idle, busy} {
		s.mu.Lock()
		s.lastActive = time.Now().Add(-time.Hour)
		s.mu.Unlock()
	}

	evicted := r.Sweep(10 * time.Minute)
	assert.Equal(t, []string{"guild-idle"}, evicted)
	assert.Equal(t, 1, r.Len())

	_, ok := r.Get("guild-idle")
	assert.False(t, ok)
	_, ok = r.Get("guild-busy")
	assert.True(t, ok, "a playing session must survive the sweep")
}

func TestRegistrySweepKeepsRecentlyActive(t *testing.T) {
	r := newTestRegistry()
	r.GetOrCreate("guild-1")

	evicted := r.Sweep(10 * time.Minute)
	assert.Empty(t, evicted)
	assert.Equal(t, 1, r.Len())
}

func TestRegistryGuildsAreIndependent(t *testing.T) {
	r := newTestRegistry()

	const guilds = 8
	var wg sync.WaitGroup
	wg.Add(guilds)
	for i := 0; i < guilds; i++ {
		go func(i int) {
			defer wg.Done()
			gid := fmt.Sprintf("guild-%d", i)
			s := r.GetOrCreate(gid)
			for j := 0; j < 50; j++ {
				_, _ = s.Enqueue(track(fmt.Sprintf("t%d", j)))
			}
			_, _ = s.Skip()
		}(i)
	}
	wg.Wait()

	for i := 0; i < guilds; i++ {
		s, ok := r.Get(fmt.Sprintf("guild-%d", i))
		require.True(t, ok)
		assert.Equal(t, 48, s.QueueLen())
	}
}
