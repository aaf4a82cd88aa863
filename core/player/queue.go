package player

import (
	"math/rand"
	"sync"
	"time"

	"TuneVault/model"
)

// Action is the continuation decision derived from queue position, repeat
// mode and direction.
type Action int

const (
	// ActionNone means nothing changes (e.g. previous at the start of the
	// queue without repeat).
	ActionNone Action = iota
	// ActionPlay means move to the returned index and start from position 0.
	ActionPlay
	// ActionRestart means replay the current index from position 0.
	ActionRestart
	// ActionStop means stop playback and leave the index unchanged.
	ActionStop
)

// Controller derives "what plays next" from the queue, current index,
// shuffle and repeat mode. The queue order itself is never mutated by
// shuffle; shuffle only changes the selection rule.
type Controller struct {
	mu      sync.Mutex
	queue   []model.QueueEntry
	index   int
	shuffle bool
	repeat  model.RepeatMode
	rng     *rand.Rand
}

// NewController builds a controller over the given queue. An out-of-range
// index is clamped into the queue.
func NewController(queue []model.QueueEntry, index int) *Controller {
	c := &Controller{
		queue:  append([]model.QueueEntry(nil), queue...),
		repeat: model.RepeatOff,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	c.index = c.clamp(index)
	return c
}

func (c *Controller) clamp(index int) int {
	if index < 0 {
		return 0
	}
	if len(c.queue) == 0 {
		return 0
	}
	if index >= len(c.queue) {
		return len(c.queue) - 1
	}
	return index
}

// Queue returns a copy of the queue in its underlying order.
func (c *Controller) Queue() []model.QueueEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.QueueEntry(nil), c.queue...)
}

// Index returns the current track index.
func (c *Controller) Index() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.index
}

// Current returns the entry at the current index.
func (c *Controller) Current() (model.QueueEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 {
		return model.QueueEntry{}, false
	}
	return c.queue[c.index], true
}

// SetShuffle toggles the random selection rule.
func (c *Controller) SetShuffle(on bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shuffle = on
}

// Shuffle reports whether shuffle is enabled.
func (c *Controller) Shuffle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.shuffle
}

// SetRepeat sets the repeat mode.
func (c *Controller) SetRepeat(mode model.RepeatMode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.repeat = model.NormalizeRepeatMode(string(mode))
}

// Repeat returns the repeat mode.
func (c *Controller) Repeat() model.RepeatMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.repeat
}

// JumpTo makes the given index current.
func (c *Controller) JumpTo(index int) (Action, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.queue) == 0 || index < 0 || index >= len(c.queue) {
		return ActionNone, c.index
	}
	c.index = index
	return ActionPlay, c.index
}

// Advance is the manual "next" transition:
//
//	not at end                 -> index+1, play from 0
//	at end, repeat = queue     -> index 0, play from 0
//	at end, repeat = off/track -> stop, index unchanged
//
// Repeat-track restarts only on natural track end (TrackEnded), never on a
// manual skip. Shuffle replaces the linear step with a random index.
func (c *Controller) Advance() (Action, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return ActionStop, c.index
	}

	if c.shuffle && len(c.queue) > 1 {
		c.index = c.randomOther()
		return ActionPlay, c.index
	}

	if c.index < len(c.queue)-1 {
		c.index++
		return ActionPlay, c.index
	}
	if c.repeat == model.RepeatQueue {
		c.index = 0
		return ActionPlay, c.index
	}
	return ActionStop, c.index
}

// Previous is the "back" transition: step back if possible, wrap to the last
// index under repeat-queue, otherwise do nothing. Shuffle intercepts here the
// same way it does for Advance.
func (c *Controller) Previous() (Action, int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return ActionNone, c.index
	}

	if c.shuffle && len(c.queue) > 1 {
		c.index = c.randomOther()
		return ActionPlay, c.index
	}

	if c.index > 0 {
		c.index--
		return ActionPlay, c.index
	}
	if c.repeat == model.RepeatQueue {
		c.index = len(c.queue) - 1
		return ActionPlay, c.index
	}
	return ActionNone, c.index
}

// TrackEnded handles natural end-of-track. Under repeat-track the same index
// restarts at position 0; otherwise the advance rules apply.
func (c *Controller) TrackEnded() (Action, int) {
	c.mu.Lock()
	if c.repeat == model.RepeatTrack && len(c.queue) > 0 {
		defer c.mu.Unlock()
		return ActionRestart, c.index
	}
	c.mu.Unlock()
	return c.Advance()
}

// randomOther picks a random index different from the current one. Caller
// holds the lock and guarantees len(queue) > 1.
func (c *Controller) randomOther() int {
	next := c.rng.Intn(len(c.queue) - 1)
	if next >= c.index {
		next++
	}
	return next
}

// ReorderUpcoming replaces the portion of the queue strictly after the
// current index. The already-played prefix and the current track are never
// touched. The new order must contain exactly the current upcoming entries;
// anything else is ignored and the queue is left as-is.
func (c *Controller) ReorderUpcoming(upcoming []model.QueueEntry) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return false
	}
	current := c.queue[c.index+1:]
	if !sameEntries(current, upcoming) {
		return false
	}
	c.queue = append(c.queue[:c.index+1], upcoming...)
	return true
}

// RemoveUpcoming drops entries with the given track id strictly after the
// current index. A duplicate of the current track earlier in the queue, or
// the current track itself, is never removed.
func (c *Controller) RemoveUpcoming(trackID int64) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.queue) == 0 {
		return 0
	}
	removed := 0
	kept := c.queue[: c.index+1 : c.index+1]
	for _, e := range c.queue[c.index+1:] {
		if e.TrackID == trackID {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	c.queue = kept
	return removed
}

// AppendUpcoming adds entries to the end of the queue.
func (c *Controller) AppendUpcoming(entries ...model.QueueEntry) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append(c.queue, entries...)
}

// Replace swaps the whole queue and index, e.g. when starting a playlist.
func (c *Controller) Replace(queue []model.QueueEntry, index int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.queue = append([]model.QueueEntry(nil), queue...)
	c.index = c.clamp(index)
}

func sameEntries(a, b []model.QueueEntry) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[model.QueueEntry]int, len(a))
	for _, e := range a {
		counts[e]++
	}
	for _, e := range b {
		if counts[e] == 0 {
			return false
		}
		counts[e]--
	}
	return true
}
