package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// RepeatMode controls queue continuation when a track ends.
type RepeatMode string

const (
	RepeatOff   RepeatMode = "off"   // stop at end of queue
	RepeatQueue RepeatMode = "queue" // wrap to the first track
	RepeatTrack RepeatMode = "track" // restart the same track
)

// NormalizeRepeatMode maps unknown or missing values to RepeatOff.
func NormalizeRepeatMode(s string) RepeatMode {
	switch RepeatMode(s) {
	case RepeatQueue:
		return RepeatQueue
	case RepeatTrack:
		return RepeatTrack
	default:
		return RepeatOff
	}
}

// QueueKind tags where a queue entry came from, since access rules differ
// between a user's own library and the shared featured set.
type QueueKind string

const (
	QueueKindUser     QueueKind = "user"
	QueueKindFeatured QueueKind = "featured"
)

// QueueEntry is one tagged track reference in a playback queue. Entries are
// weak references: the track may be deleted or unfeatured after the queue is
// persisted, so validity is re-checked at read time.
type QueueEntry struct {
	TrackID int64     `json:"id"`
	Kind    QueueKind `json:"kind"`
}

// PlaybackState is the durable snapshot of one user's player, one row per
// user. TrackTitle/TrackArtist are denormalized from the current track at
// save time so a "track removed" state can still be shown after deletion.
type PlaybackState struct {
	UserID            int64      `gorm:"column:user_id;primaryKey" json:"userId"`
	TrackID           int64      `gorm:"column:track_id" json:"trackId"`
	TrackTitle        string     `gorm:"column:track_title" json:"trackTitle"`
	TrackArtist       string     `gorm:"column:track_artist" json:"trackArtist"`
	Position          float64    `gorm:"column:position" json:"position"` // seconds into the current track
	IsPlaying         bool       `gorm:"column:is_playing" json:"isPlaying"`
	Volume            float64    `gorm:"column:volume" json:"volume"` // 0..1
	Shuffle           bool       `gorm:"column:shuffle" json:"shuffle"`
	RepeatMode        RepeatMode `gorm:"column:repeat_mode;type:varchar(8)" json:"repeatMode"`
	CurrentTrackIndex int        `gorm:"column:current_track_index" json:"currentTrackIndex"`
	QueueJSON         string     `gorm:"column:queue;type:json" json:"-"`
	UpdatedAt         time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

// TableName overrides the GORM table name.
func (PlaybackState) TableName() string {
	return "playback_states"
}

// Queue decodes the persisted queue column into canonical tagged entries.
func (s *PlaybackState) Queue() ([]QueueEntry, error) {
	if s.QueueJSON == "" {
		return []QueueEntry{}, nil
	}
	return ParseQueue([]byte(s.QueueJSON))
}

// SetQueue encodes entries into the persisted queue column.
func (s *PlaybackState) SetQueue(entries []QueueEntry) error {
	if entries == nil {
		entries = []QueueEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to marshal playback queue: %w", err)
	}
	s.QueueJSON = string(data)
	return nil
}

// ParseQueue normalizes every persisted queue shape into canonical tagged
// entries. Three shapes exist in the wild:
//
//	[1, 2, 3]                          legacy flat id array, kind defaults to user
//	[{"id":1,"kind":"featured"}, ...]  tagged entries
//	{"queue":[...],"repeatMode":"..."} wrapper written by an old client build
//
// Normalization happens once here, at the read boundary; the rest of the
// system only ever sees tagged entries.
func ParseQueue(data []byte) ([]QueueEntry, error) {
	var raw json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse queue payload: %w", err)
	}

	trimmed := firstNonSpace(raw)
	if trimmed == '{' {
		var wrapper struct {
			Queue json.RawMessage `json:"queue"`
		}
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			return nil, fmt.Errorf("failed to parse wrapped queue: %w", err)
		}
		if wrapper.Queue == nil {
			return []QueueEntry{}, nil
		}
		return ParseQueue(wrapper.Queue)
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("failed to parse queue array: %w", err)
	}

	entries := make([]QueueEntry, 0, len(items))
	for _, item := range items {
		if firstNonSpace(item) == '{' {
			var entry QueueEntry
			if err := json.Unmarshal(item, &entry); err != nil {
				return nil, fmt.Errorf("failed to parse queue entry: %w", err)
			}
			if entry.Kind != QueueKindFeatured {
				entry.Kind = QueueKindUser
			}
			entries = append(entries, entry)
			continue
		}
		var id int64
		if err := json.Unmarshal(item, &id); err != nil {
			return nil, fmt.Errorf("failed to parse legacy queue id: %w", err)
		}
		entries = append(entries, QueueEntry{TrackID: id, Kind: QueueKindUser})
	}
	return entries, nil
}

func firstNonSpace(data []byte) byte {
	for _, b := range data {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		}
		return b
	}
	return 0
}
