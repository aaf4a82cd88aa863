package model

import (
	"database/sql"
	"time"
)

// Track represents an audio track in the music library.
// OwnerID is NULL for system-owned tracks; IsFeatured is denormalized from
// featured-set membership and must only be flipped through the featured
// repository so the two never disagree.
type Track struct {
	ID            int64          `json:"id"`
	OwnerID       sql.NullInt64  `json:"ownerId,omitempty"`
	Title         string         `json:"title"`
	Artist        sql.NullString `json:"artist,omitempty"`
	Album         sql.NullString `json:"album,omitempty"`
	Genre         sql.NullString `json:"genre,omitempty"`
	Duration      int            `json:"duration"` // seconds
	StorageKey    string         `json:"-"`        // opaque object-storage key, never exposed directly
	ImageKey      sql.NullString `json:"imageKey,omitempty"`
	ImageBlurhash sql.NullString `json:"imageBlurhash,omitempty"`
	IsFeatured    bool           `json:"isFeatured"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// AccessibleBy reports whether userID may read (and stream) this track:
// the track is theirs or it is in the shared featured set.
func (t *Track) AccessibleBy(userID int64) bool {
	if t.IsFeatured {
		return true
	}
	return t.OwnerID.Valid && t.OwnerID.Int64 == userID
}
