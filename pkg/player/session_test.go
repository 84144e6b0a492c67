package player

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHandle is a controllable pipeline invocation. Tests drive
// completion by calling finish.
type fakeHandle struct {
	track Track
	done  chan error

	mu      sync.Mutex
	stopped bool
	paused  bool
}

func (h *fakeHandle) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.stopped = true
}

func (h *fakeHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = true
	return nil
}

func (h *fakeHandle) Resume() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.paused = false
	return nil
}

func (h *fakeHandle) Done() <-chan error {
	return h.done
}

func (h *fakeHandle) finish(err error) {
	h.done <- err
}

func (h *fakeHandle) isStopped() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stopped
}

type fakePipeline struct {
	mu       sync.Mutex
	handles  []*fakeHandle
	failNext int // fail this many upcoming Start calls
}

func (p *fakePipeline) Start(t Track) (Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.failNext > 0 {
		p.failNext--
		return nil, errors.New("spawn failed")
	}
	h := &fakeHandle{track: t, done: make(chan error, 1)}
	p.handles = append(p.handles, h)
	return h, nil
}

func (p *fakePipeline) last() *fakeHandle {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.handles) == 0 {
		return nil
	}
	return p.handles[len(p.handles)-1]
}

func (p *fakePipeline) startCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.handles)
}

func newTestSession(t *testing.T) (*Session, *fakePipeline) {
	t.Helper()
	p := &fakePipeline{}
	return NewSession("guild-1", p, nil), p
}

func nowPlayingTitle(t *testing.T, s *Session) string {
	t.Helper()
	np, ok := s.NowPlaying()
	require.True(t, ok, "expected a now-playing track")
	return np.Title
}

func waitForTitle(t *testing.T, s *Session, title string) {
	t.Helper()
	require.Eventually(t, func() bool {
		np, ok := s.NowPlaying()
		return ok && np.Title == title
	}, time.Second, 2*time.Millisecond)
}

func TestEnqueueStartsPlaybackWhenIdle(t *testing.T) {
	s, p := newTestSession(t)

	pos, err := s.Enqueue(track("A"))
	require.NoError(t, err)
	assert.Equal(t, 0, pos, "first track goes straight to now-playing")
	assert.Equal(t, StatePlaying, s.State())
	assert.Equal(t, "A", nowPlayingTitle(t, s))
	assert.Equal(t, 1, p.startCount())

	pos, err = s.Enqueue(track("B"))
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, "A", nowPlayingTitle(t, s), "enqueue while playing must not change now-playing")
	assert.Equal(t, []string{"B"}, titles(s.Snapshot()))
	assert.Equal(t, 1, p.startCount(), "no second pipeline start while A plays")
}

func TestSkipAdvancesToNext(t *testing.T) {
	s, p := newTestSession(t)
	_, _ = s.Enqueue(track("A"))
	_, _ = s.Enqueue(track("B"))
	first := p.last()

	next, err := s.Skip()
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "B", next.Title)
	assert.Equal(t, "B", nowPlayingTitle(t, s))
	assert.Equal(t, 0, s.QueueLen())
	assert.True(t, first.isStopped(), "skip must stop the superseded invocation")
}

func TestSkipWithEmptyQueueGoesIdle(t *testing.T) {
	s, _ := newTestSession(t)
	_, _ = s.Enqueue(track("A"))

	next, err := s.Skip()
	require.NoError(t, err)
	assert.Nil(t, next)
	assert.Equal(t, StateIdle, s.State())
	_, ok := s.NowPlaying()
	assert.False(t, ok)
}

func TestSkipWhileIdleFails(t *testing.T) {
	s, p := newTestSession(t)

	_, err := s.Skip()
	assert.ErrorIs(t, err, ErrNothingPlaying)
	assert.Equal(t, StateIdle, s.State())
	assert.Equal(t, 0, p.startCount())
}

func TestPauseResumeTransitions(t *testing.T) {
	s, p := newTestSession(t)

	err := s.Pause()
	assert.ErrorIs(t, err, ErrInvalidStateTransition, "pausing an idle session")

	_, _ = s.Enqueue(track("A"))

	require.NoError(t, s.Pause())
	assert.Equal(t, StatePaused, s.State())

	err = s.Pause()
	assert.ErrorIs(t, err, ErrInvalidStateTransition, "double pause")

	require.NoError(t, s.Resume())
	assert.Equal(t, StatePlaying, s.State())

	err = s.Resume()
	assert.ErrorIs(t, err, ErrInvalidStateTransition, "resume while already playing")

	h := p.last()
	require.NoError(t, s.Pause())
	h.mu.Lock()
	paused := h.paused
	h.mu.Unlock()
	assert.True(t, paused, "pause must reach the pipeline handle")
}

func TestSkipWhilePaused(t *testing.T) {
	s, _ := newTestSession(t)
	_, _ = s.Enqueue(track("A"))
	_, _ = s.Enqueue(track("B"))
	require.NoError(t, s.Pause())

	next, err := s.Skip()
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, "B", next.Title)
	assert.Equal(t, StatePlaying, s.State(), "skip out of pause resumes playback")
}

func TestStopIsIdempotent(t *testing.T) {
	s, p := newTestSession(t)

	require.NoError(t, s.Stop(), "stopping an idle session succeeds")
	assert.Equal(t, StateIdle, s.State())

	_, _ = s.Enqueue(track("A"))
	h := p.last()
	require.NoError(t, s.Stop())
	require.NoError(t, s.Stop())
	assert.Equal(t, StateIdle, s.State())
	assert.True(t, h.isStopped())
}

func TestStopQueuePolicy(t *testing.T) {
	tests := []struct {
		name       string
		clearQueue bool
		wantLen    int
	}{
		{"clear on stop", true, 0},
		{"keep on stop", false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultSessionConfig()
			cfg.ClearQueueOnStop = tt.clearQueue
			s := NewSession("guild-1", &fakePipeline{}, cfg)

			_, _ = s.Enqueue(track("A"))
			_, _ = s.Enqueue(track("B"))
			_, _ = s.Enqueue(track("C"))

			require.NoError(t, s.Stop())
			assert.Equal(t, StateIdle, s.State())
			_, ok := s.NowPlaying()
			assert.False(t, ok)
			assert.Equal(t, tt.wantLen, s.QueueLen())
		})
	}
}

func TestNaturalCompletionAdvances(t *testing.T) {
	s, p := newTestSession(t)
	_, _ = s.Enqueue(track("A"))
	_, _ = s.Enqueue(track("B"))

	p.last().finish(nil)

	waitForTitle(t, s, "B")
	assert.Equal(t, 0, s.QueueLen())
}

func TestCompletionOfLastTrackGoesIdle(t *testing.T) {
	s, p := newTestSession(t)
	_, _ = s.Enqueue(track("A"))

	p.last().finish(nil)

	require.Eventually(t, func() bool {
		return s.State() == StateIdle
	}, time.Second, 2*time.Millisecond)
	_, ok := s.NowPlaying()
	assert.False(t, ok)
}

func TestStaleCompletionIsIgnored(t *testing.T) {
	s, p := newTestSession(t)
	_, _ = s.Enqueue(track("A"))
	_, _ = s.Enqueue(track("B"))
	_, _ = s.Enqueue(track("C"))
	first := p.last()

	next, err := s.Skip()
	require.NoError(t, err)
	assert.Equal(t, "B", next.Title)

	// Completion for the stopped invocation of A arrives late. It must
	// not pop the queue or touch now-playing.
	first.finish(nil)
	time.Sleep(20 * time.Millisecond)

	assert.Equal(t, "B", nowPlayingTitle(t, s))
	assert.Equal(t, []string{"C"}, titles(s.Snapshot()))
}

func TestPipelineErrorAdvancesAndReports(t *testing.T) {
	s, p := newTestSession(t)
	_, _ = s.Enqueue(track("A"))
	_, _ = s.Enqueue(track("B"))

	p.last().finish(errors.New("transcode died"))

	waitForTitle(t, s, "B")

	var sawError bool
	for done := false; !done; {
		select {
		case ev := <-s.Events():
			if ev.Type == EventPlaybackError {
				sawError = true
				assert.ErrorIs(t, ev.Err, ErrPipeline)
				done = true
			}
		case <-time.After(time.Second):
			done = true
		}
	}
	assert.True(t, sawError, "expected a playback error event")
}

func TestStartFailureAdvancesPastBadTrack(t *testing.T) {
	s, p := newTestSession(t)
	_, _ = s.Enqueue(track("A"))
	_, _ = s.Enqueue(track("B"))
	_, _ = s.Enqueue(track("C"))

	// B's spawn will fail synchronously; skip should land on C.
	p.mu.Lock()
	p.failNext = 1
	p.mu.Unlock()

	next, err := s.Skip()
	require.NoError(t, err)
	assert.Equal(t, "B", next.Title, "skip reports the track it tried to start")

	waitForTitle(t, s, "C")
	assert.Equal(t, 0, s.QueueLen())
}

func TestLoopTrackRestartsOnCompletionOnly(t *testing.T) {
	s, p := newTestSession(t)
	_, _ = s.Enqueue(track("A"))
	_, _ = s.Enqueue(track("B"))
	s.SetLoop(LoopTrack)

	p.last().finish(nil)

	require.Eventually(t, func() bool {
		return p.startCount() == 2
	}, time.Second, 2*time.Millisecond)
	assert.Equal(t, "A", nowPlayingTitle(t, s), "track loop restarts the same track")
	assert.Equal(t, []string{"B"}, titles(s.Snapshot()))

	// An explicit skip always advances, even under track loop.
	next, err := s.Skip()
	require.NoError(t, err)
	assert.Equal(t, "B", next.Title)
}

func TestLoopQueueRecyclesFinishedTracks(t *testing.T) {
	s, p := newTestSession(t)
	_, _ = s.Enqueue(track("A"))
	_, _ = s.Enqueue(track("B"))
	s.SetLoop(LoopQueue)

	p.last().finish(nil)

	waitForTitle(t, s, "B")
	assert.Equal(t, []string{"A"}, titles(s.Snapshot()), "finished track returns to the tail")
}

func TestQueueMutationsDoNotTouchNowPlaying(t *testing.T) {
	s, _ := newTestSession(t)
	_, _ = s.Enqueue(track("A"))
	_, _ = s.Enqueue(track("B"))
	_, _ = s.Enqueue(track("C"))
	_, _ = s.Enqueue(track("D"))

	require.NoError(t, s.SwapTracks(0, 2))
	assert.Equal(t, []string{"D", "C", "B"}, titles(s.Snapshot()))

	require.NoError(t, s.MoveTrack(2, 0))
	assert.Equal(t, []string{"B", "D", "C"}, titles(s.Snapshot()))

	removed, err := s.Remove(1)
	require.NoError(t, err)
	assert.Equal(t, "D", removed.Title)

	_, err = s.Remove(5)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	assert.Equal(t, "A", nowPlayingTitle(t, s))
}

func TestEnqueueAfterCloseFails(t *testing.T) {
	s, _ := newTestSession(t)
	s.Close()

	_, err := s.Enqueue(track("A"))
	assert.ErrorIs(t, err, ErrSessionClosed)

	_, ok := <-s.Events()
	_ = ok // drained SessionEnded or already closed; either way no panic
}

// Concurrent remove(0) and skip on [X playing, Y queued] must converge
// to one of the two legal outcomes and never double-pop or lose Y.
func TestConcurrentRemoveAndSkip(t *testing.T) {
	for trial := 0; trial < 300; trial++ {
		p := &fakePipeline{}
		s := NewSession("guild-1", p, nil)
		_, _ = s.Enqueue(track("X"))
		_, _ = s.Enqueue(track("Y"))

		var wg sync.WaitGroup
		var removeErr, skipErr error
		var skipped *Track
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, removeErr = s.Remove(0)
		}()
		go func() {
			defer wg.Done()
			skipped, skipErr = s.Skip()
		}()
		wg.Wait()

		require.NoError(t, skipErr)
		assert.Equal(t, 0, s.QueueLen())

		np, playing := s.NowPlaying()
		if removeErr == nil {
			// Remove won: Y left the queue before skip could pop it.
			assert.False(t, playing, "trial %d: session should be idle", trial)
			assert.Nil(t, skipped)
		} else {
			// Skip won: Y is now playing, remove saw an empty queue.
			require.ErrorIs(t, removeErr, ErrIndexOutOfRange)
			require.True(t, playing, "trial %d", trial)
			assert.Equal(t, "Y", np.Title)
			assert.NotNil(t, skipped)
		}
	}
}

func TestPositionExcludesPauseGaps(t *testing.T) {
	s, _ := newTestSession(t)
	assert.Equal(t, time.Duration(0), s.Position())

	_, _ = s.Enqueue(track("A"))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, s.Pause())

	frozen := s.Position()
	assert.Greater(t, frozen, time.Duration(0))
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, frozen, s.Position(), "position must not move while paused")

	require.NoError(t, s.Resume())
	assert.GreaterOrEqual(t, s.Position(), frozen)
}
