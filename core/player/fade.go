package player

import (
	"sync"
	"time"
)

// Fade timings. Short ramps around every transition avoid audible clicks on
// the audio output; the end window is how close to a track's end the
// auto-fade-out begins.
const (
	FadeOutDuration = 90 * time.Millisecond
	FadeInDuration  = 100 * time.Millisecond
	EndFadeWindow   = 180 * time.Millisecond

	fadeStep = 10 * time.Millisecond
)

// AudioOutput is the singleton audio device the fader drives.
type AudioOutput interface {
	SetVolume(v float64)
	Play()
	Pause()
	Seek(positionSeconds float64)
}

// Fader ramps the output volume around transitions. At most one fade runs at
// a time: starting a new one cancels the in-flight one and waits for its
// goroutine to stop before touching the output again, so fades never overlap.
type Fader struct {
	out AudioOutput

	mu     sync.Mutex
	volume float64 // last volume the fader set or was told about
	cancel chan struct{}
	done   chan struct{}
}

// NewFader wraps the audio output at the given starting volume.
func NewFader(out AudioOutput, volume float64) *Fader {
	return &Fader{out: out, volume: volume}
}

// Volume returns the volume the fader last settled on or is ramping toward
// from.
func (f *Fader) Volume() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume
}

// SetVolume adopts an externally chosen volume, cancelling any ramp.
func (f *Fader) SetVolume(v float64) {
	f.Cancel()
	f.mu.Lock()
	f.volume = v
	f.mu.Unlock()
	f.out.SetVolume(v)
}

// FadeTo ramps the volume to target over the given duration, then runs the
// completion callback (which may pause or switch the track). Any in-flight
// fade is cancelled first, and its callback never fires.
func (f *Fader) FadeTo(target float64, duration time.Duration, then func()) {
	f.Cancel()

	f.mu.Lock()
	start := f.volume
	cancel := make(chan struct{})
	done := make(chan struct{})
	f.cancel = cancel
	f.done = done
	f.mu.Unlock()

	go func() {
		defer close(done)

		steps := int(duration / fadeStep)
		if steps < 1 {
			steps = 1
		}
		ticker := time.NewTicker(fadeStep)
		defer ticker.Stop()

		for i := 1; i <= steps; i++ {
			select {
			case <-cancel:
				return
			case <-ticker.C:
			}
			v := start + (target-start)*float64(i)/float64(steps)
			f.mu.Lock()
			f.volume = v
			f.mu.Unlock()
			f.out.SetVolume(v)
		}

		// Detach before the callback so a chained FadeTo inside it does
		// not cancel-wait on this goroutine's own done channel.
		f.mu.Lock()
		if f.cancel == cancel {
			f.cancel, f.done = nil, nil
		}
		f.mu.Unlock()

		if then != nil {
			then()
		}
	}()
}

// Cancel stops any in-flight fade and waits for its goroutine to finish.
// The volume stays wherever the ramp had reached.
func (f *Fader) Cancel() {
	f.mu.Lock()
	cancel, done := f.cancel, f.done
	f.cancel, f.done = nil, nil
	f.mu.Unlock()

	if cancel != nil {
		close(cancel)
		<-done
	}
}

// TransitionTo performs a click-free switch: fade out, run the switch (seek,
// source change), fade back in to the pre-fade volume.
func (f *Fader) TransitionTo(switchTrack func()) {
	restore := f.Volume()
	f.FadeTo(0, FadeOutDuration, func() {
		f.out.Pause()
		if switchTrack != nil {
			switchTrack()
		}
		f.out.Play()
		f.FadeTo(restore, FadeInDuration, nil)
	})
}

// NearEnd reports whether the position is inside the end-of-track auto-fade
// window for a track of the given duration.
func NearEnd(positionSeconds float64, durationSeconds int) bool {
	if durationSeconds <= 0 {
		return false
	}
	remaining := float64(durationSeconds) - positionSeconds
	return remaining >= 0 && remaining <= EndFadeWindow.Seconds()
}
