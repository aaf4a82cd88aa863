package player

import (
	"context"
	"sync"
	"time"

	"TuneVault/logger"
	"TuneVault/model"
)

// Persistence triggers: immediately on pause and track change, debounced on
// seek, and on a heartbeat while playing. Saves are fire-and-forget; a failed
// or slow save never blocks local playback and is retried by whatever trigger
// fires next.
const (
	SeekDebounce      = 400 * time.Millisecond
	HeartbeatInterval = 5 * time.Second
)

// PersistFunc pushes a snapshot to the server.
type PersistFunc func(ctx context.Context, state *model.PlaybackState) error

// SnapshotFunc captures the player's current state.
type SnapshotFunc func() *model.PlaybackState

// Saver schedules playback-state persistence.
type Saver struct {
	persist   PersistFunc
	snapshot  SnapshotFunc
	debounce  time.Duration
	heartbeat time.Duration

	mu    sync.Mutex
	timer *time.Timer
	stop  chan struct{}
	wg    sync.WaitGroup
}

// NewSaver builds a saver with the default intervals.
func NewSaver(persist PersistFunc, snapshot SnapshotFunc) *Saver {
	return &Saver{
		persist:   persist,
		snapshot:  snapshot,
		debounce:  SeekDebounce,
		heartbeat: HeartbeatInterval,
	}
}

// Start launches the heartbeat loop. It persists every interval while the
// snapshot reports playing, and goes quiet while paused.
func (s *Saver) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop != nil {
		return
	}
	// The goroutine selects on its own captured channel, never the field:
	// Stop nils the field while the loop is still draining ticks.
	stop := make(chan struct{})
	s.stop = stop
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.heartbeat)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if state := s.snapshot(); state != nil && state.IsPlaying {
					s.flush(state)
				}
			}
		}
	}()
}

// Stop halts the heartbeat and any pending debounced save, flushing one last
// snapshot so a clean shutdown doesn't lose position.
func (s *Saver) Stop() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	s.wg.Wait()
	s.OnPause()
}

// OnPause persists immediately.
func (s *Saver) OnPause() {
	if state := s.snapshot(); state != nil {
		s.flush(state)
	}
}

// OnTrackChange persists immediately.
func (s *Saver) OnTrackChange() {
	s.OnPause()
}

// OnSeek schedules a debounced persist; rapid scrubbing collapses into one
// save after the user settles.
func (s *Saver) OnSeek() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.debounce, func() {
		if state := s.snapshot(); state != nil {
			s.flush(state)
		}
	})
}

// flush sends one snapshot, swallowing errors. Routine autosave failure is
// never surfaced to the user.
func (s *Saver) flush(state *model.PlaybackState) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.persist(ctx, state); err != nil {
		logger.Debug("playback autosave failed, will retry on next trigger",
			logger.Int64("userId", state.UserID), logger.ErrorField(err))
	}
}
