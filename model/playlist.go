package model

import "time"

// Playlist represents a user-owned ordered track collection. The shared
// featured set is stored as a playlist owned by the reserved system user.
type Playlist struct {
	ID        int64     `json:"id"`
	OwnerID   int64     `json:"ownerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"` // bumped on any membership or order change
}

// PlaylistTrack is a membership row joining a playlist and a track.
// Positions within one playlist are unique but not necessarily contiguous;
// ascending position defines display and playback order.
type PlaylistTrack struct {
	ID         int64     `json:"id"`
	PlaylistID int64     `json:"playlistId"`
	TrackID    int64     `json:"trackId"`
	Position   int       `json:"position"`
	CreatedAt  time.Time `json:"createdAt"`
}
