package player

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"TuneVault/model"
)

func testSaver(persist PersistFunc, playing *atomic.Bool) *Saver {
	s := NewSaver(persist, func() *model.PlaybackState {
		return &model.PlaybackState{UserID: 1, IsPlaying: playing.Load()}
	})
	s.debounce = 50 * time.Millisecond
	s.heartbeat = 60 * time.Millisecond
	return s
}

func TestSaver_PauseFlushesImmediately(t *testing.T) {
	var calls atomic.Int64
	var playing atomic.Bool
	s := testSaver(func(ctx context.Context, state *model.PlaybackState) error {
		calls.Add(1)
		return nil
	}, &playing)

	s.OnPause()
	if calls.Load() != 1 {
		t.Errorf("saves after pause = %d, want 1", calls.Load())
	}
}

func TestSaver_SeekDebounces(t *testing.T) {
	var calls atomic.Int64
	var playing atomic.Bool
	s := testSaver(func(ctx context.Context, state *model.PlaybackState) error {
		calls.Add(1)
		return nil
	}, &playing)

	// Rapid scrubbing collapses into a single save.
	for i := 0; i < 5; i++ {
		s.OnSeek()
		time.Sleep(10 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if calls.Load() != 1 {
		t.Errorf("saves after scrubbing = %d, want 1", calls.Load())
	}
}

func TestSaver_HeartbeatOnlyWhilePlaying(t *testing.T) {
	var calls atomic.Int64
	var playing atomic.Bool
	s := testSaver(func(ctx context.Context, state *model.PlaybackState) error {
		calls.Add(1)
		return nil
	}, &playing)

	s.Start()
	time.Sleep(200 * time.Millisecond)
	if calls.Load() != 0 {
		t.Errorf("heartbeat saved %d times while paused, want 0", calls.Load())
	}

	playing.Store(true)
	time.Sleep(200 * time.Millisecond)
	if calls.Load() == 0 {
		t.Error("heartbeat never saved while playing")
	}

	playing.Store(false)
	s.Stop()
}

func TestSaver_SwallowsErrors(t *testing.T) {
	var playing atomic.Bool
	s := testSaver(func(ctx context.Context, state *model.PlaybackState) error {
		return errors.New("network down")
	}, &playing)

	// Must not panic or propagate; the next trigger simply retries.
	s.OnPause()
	s.OnTrackChange()
}

func TestSaver_StopReturnsWhileHeartbeatRunning(t *testing.T) {
	var calls atomic.Int64
	var playing atomic.Bool
	playing.Store(true)
	s := testSaver(func(ctx context.Context, state *model.PlaybackState) error {
		calls.Add(1)
		return nil
	}, &playing)

	s.Start()
	time.Sleep(200 * time.Millisecond) // several heartbeat ticks

	done := make(chan struct{})
	go func() {
		s.Stop()
		s.Stop() // repeated stop is a no-op
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return; heartbeat goroutine still running")
	}
}

func TestSaver_StopFlushesFinalSnapshot(t *testing.T) {
	var calls atomic.Int64
	var playing atomic.Bool
	s := testSaver(func(ctx context.Context, state *model.PlaybackState) error {
		calls.Add(1)
		return nil
	}, &playing)

	s.Start()
	s.Stop()
	if calls.Load() != 1 {
		t.Errorf("saves after stop = %d, want 1 final flush", calls.Load())
	}
}
