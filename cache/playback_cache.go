package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"TuneVault/model"

	"github.com/redis/go-redis/v9"
)

// Write-through cache in front of the playback_states table. Saves land in
// Redis and MySQL; loads try Redis first. Entries expire so a cold cache is
// just a database read, never stale data.

const playbackTTL = 24 * time.Hour

// playbackKey builds the Redis key for a user's playback snapshot.
func playbackKey(userID int64) string {
	return fmt.Sprintf("playback:%d", userID)
}

// cachedPlayback carries the queue column explicitly since the model hides
// it from API JSON.
type cachedPlayback struct {
	model.PlaybackState
	Queue string `json:"queueJson"`
}

// PutPlayback stores a snapshot in Redis.
func (s *Store) PutPlayback(ctx context.Context, state *model.PlaybackState) error {
	if s == nil || s.Client == nil {
		return nil // cache disabled
	}

	data, err := json.Marshal(cachedPlayback{PlaybackState: *state, Queue: state.QueueJSON})
	if err != nil {
		return fmt.Errorf("failed to marshal playback state: %w", err)
	}

	if err := s.Client.Set(ctx, playbackKey(state.UserID), data, playbackTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache playback state: %w", err)
	}
	return nil
}

// GetPlayback returns a cached snapshot, or (nil, nil) on a miss.
func (s *Store) GetPlayback(ctx context.Context, userID int64) (*model.PlaybackState, error) {
	if s == nil || s.Client == nil {
		return nil, nil
	}

	data, err := s.Client.Get(ctx, playbackKey(userID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read cached playback state: %w", err)
	}

	var cached cachedPlayback
	if err := json.Unmarshal(data, &cached); err != nil {
		// A corrupt entry behaves like a miss; the database copy wins.
		return nil, nil
	}
	state := cached.PlaybackState
	state.QueueJSON = cached.Queue
	return &state, nil
}

// InvalidatePlayback drops a user's cached snapshot.
func (s *Store) InvalidatePlayback(ctx context.Context, userID int64) error {
	if s == nil || s.Client == nil {
		return nil
	}
	if err := s.Client.Del(ctx, playbackKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached playback state: %w", err)
	}
	return nil
}
