package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// FeaturedPlaylistName names the reserved playlist owned by the system user.
const FeaturedPlaylistName = "Featured"

// FeaturedRepository manages the single admin-curated featured set. Every
// mutation keeps tracks.is_featured and featured membership in agreement
// within one transaction; the two must never disagree.
type FeaturedRepository interface {
	List() ([]*PlaylistTrackView, error)
	Add(trackID int64, position *int) (*PlaylistTrackView, error)
	Remove(trackID int64) error
	Reorder(orderedTrackIDs []int64) error
	PlaylistID() (int64, error)
}

// mysqlFeaturedRepository implements FeaturedRepository for MySQL.
type mysqlFeaturedRepository struct {
	DB        *sql.DB
	playlists PlaylistRepository

	mu         sync.Mutex
	playlistID int64 // cached after the lazy ensure
}

// NewMySQLFeaturedRepository creates a new instance of mysqlFeaturedRepository.
func NewMySQLFeaturedRepository(database *sql.DB, playlists PlaylistRepository) FeaturedRepository {
	return &mysqlFeaturedRepository{DB: database, playlists: playlists}
}

// PlaylistID returns the featured playlist's id, creating the system user and
// the playlist on first use. The unique constraint on the system user's email
// is the idempotency guard; the playlist lookup runs under it.
func (r *mysqlFeaturedRepository) PlaylistID() (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.playlistID != 0 {
		return r.playlistID, nil
	}

	users := NewMySQLUserRepository(r.DB)
	systemID, err := users.EnsureSystemUser()
	if err != nil {
		return 0, err
	}

	var playlistID int64
	err = r.DB.QueryRow(`SELECT id FROM playlists WHERE owner_id = ? AND name = ?`,
		systemID, FeaturedPlaylistName).Scan(&playlistID)
	if err == sql.ErrNoRows {
		created, err := r.playlists.CreatePlaylist(systemID, FeaturedPlaylistName)
		if err != nil {
			return 0, fmt.Errorf("failed to create featured playlist: %w", err)
		}
		playlistID = created.ID
	} else if err != nil {
		return 0, fmt.Errorf("failed to look up featured playlist: %w", err)
	}

	r.playlistID = playlistID
	return playlistID, nil
}

// List returns featured tracks in position order.
func (r *mysqlFeaturedRepository) List() ([]*PlaylistTrackView, error) {
	playlistID, err := r.PlaylistID()
	if err != nil {
		return nil, err
	}
	return r.playlists.ListTracks(playlistID)
}

// Add puts a track into the featured set and flips its is_featured flag in
// the same transaction. Adding a track that is already featured is an
// idempotent no-op returning the existing membership. A nil position appends;
// an explicit position inserts at that slot.
func (r *mysqlFeaturedRepository) Add(trackID int64, position *int) (*PlaylistTrackView, error) {
	playlistID, err := r.PlaylistID()
	if err != nil {
		return nil, err
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`,
		playlistID, trackID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check featured membership: %w", err)
	}

	if exists == 0 {
		var trackExists int
		if err := tx.QueryRow(`SELECT COUNT(*) FROM tracks WHERE id = ?`, trackID).Scan(&trackExists); err != nil {
			return nil, fmt.Errorf("failed to check track existence: %w", err)
		}
		if trackExists == 0 {
			return nil, ErrNotFound
		}

		if position != nil {
			if err := InsertMemberAt(tx, playlistID, trackID, *position); err != nil {
				return nil, err
			}
		} else {
			if _, err := AppendMember(tx, playlistID, trackID); err != nil {
				return nil, err
			}
		}
		if err := setFeaturedFlag(tx, trackID, true); err != nil {
			return nil, err
		}
		if err := touchPlaylist(tx, playlistID); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit featured Add: %w", err)
	}

	return r.findMember(playlistID, trackID)
}

// Remove deletes the membership, compacts remaining positions to
// (index+1)*GAP and clears the track's is_featured flag, all in one
// transaction. The featured list is small and always shown in full, so
// compacting on every remove keeps position values bounded.
func (r *mysqlFeaturedRepository) Remove(trackID int64) error {
	playlistID, err := r.PlaylistID()
	if err != nil {
		return err
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := RemoveMember(tx, playlistID, trackID); err != nil {
		return err
	}
	if err := CompactMembers(tx, playlistID); err != nil {
		return err
	}
	if err := setFeaturedFlag(tx, trackID, false); err != nil {
		return err
	}
	if err := touchPlaylist(tx, playlistID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit featured Remove: %w", err)
	}
	return nil
}

// Reorder applies a complete target ordering to the featured set.
func (r *mysqlFeaturedRepository) Reorder(orderedTrackIDs []int64) error {
	playlistID, err := r.PlaylistID()
	if err != nil {
		return err
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := ReorderMembers(tx, playlistID, orderedTrackIDs); err != nil {
		return err
	}
	if err := touchPlaylist(tx, playlistID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit featured Reorder: %w", err)
	}
	return nil
}

func (r *mysqlFeaturedRepository) findMember(playlistID, trackID int64) (*PlaylistTrackView, error) {
	tracks, err := r.playlists.ListTracks(playlistID)
	if err != nil {
		return nil, err
	}
	for _, t := range tracks {
		if t.ID == trackID {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

func setFeaturedFlag(tx *sql.Tx, trackID int64, featured bool) error {
	if _, err := tx.Exec(`UPDATE tracks SET is_featured = ?, updated_at = ? WHERE id = ?`,
		featured, time.Now(), trackID); err != nil {
		return fmt.Errorf("failed to update is_featured for track %d: %w", trackID, err)
	}
	return nil
}
