package repository

import (
	"database/sql"
	"fmt"
	"time"

	"TuneVault/model"
)

// PlaylistTrackView is a track annotated with its position in a collection.
type PlaylistTrackView struct {
	model.Track
	Position int `json:"position"`
}

// PlaylistRepository defines the interface for playlist operations. Every
// mutation checks ownership before touching membership rows and bumps the
// playlist's updated_at so callers can sort by recent modification.
type PlaylistRepository interface {
	CreatePlaylist(ownerID int64, name string) (*model.Playlist, error)
	DeletePlaylist(ownerID, playlistID int64) error
	GetPlaylistByID(playlistID int64) (*model.Playlist, error)
	GetPlaylistsByOwner(ownerID int64) ([]*model.Playlist, error)
	AddTrack(ownerID, playlistID, trackID int64) (int, error)
	RemoveTrack(ownerID, playlistID, trackID int64) error
	Reorder(ownerID, playlistID int64, orderedTrackIDs []int64) error
	ListTracks(playlistID int64) ([]*PlaylistTrackView, error)
}

// mysqlPlaylistRepository implements PlaylistRepository for MySQL.
type mysqlPlaylistRepository struct {
	DB *sql.DB
}

// NewMySQLPlaylistRepository creates a new instance of mysqlPlaylistRepository.
func NewMySQLPlaylistRepository(database *sql.DB) PlaylistRepository {
	return &mysqlPlaylistRepository{DB: database}
}

// CreatePlaylist creates an empty playlist for the owner.
func (r *mysqlPlaylistRepository) CreatePlaylist(ownerID int64, name string) (*model.Playlist, error) {
	now := time.Now()
	res, err := r.DB.Exec(`INSERT INTO playlists (owner_id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		ownerID, name, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to execute CreatePlaylist: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to get last insert ID for CreatePlaylist: %w", err)
	}
	return &model.Playlist{ID: id, OwnerID: ownerID, Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

// DeletePlaylist removes an owned playlist; membership rows cascade.
func (r *mysqlPlaylistRepository) DeletePlaylist(ownerID, playlistID int64) error {
	if err := r.checkOwnership(ownerID, playlistID); err != nil {
		return err
	}
	if _, err := r.DB.Exec(`DELETE FROM playlists WHERE id = ?`, playlistID); err != nil {
		return fmt.Errorf("failed to execute DeletePlaylist for playlist %d: %w", playlistID, err)
	}
	return nil
}

// GetPlaylistByID retrieves a playlist by id. Returns (nil, nil) when absent.
func (r *mysqlPlaylistRepository) GetPlaylistByID(playlistID int64) (*model.Playlist, error) {
	row := r.DB.QueryRow(`SELECT id, owner_id, name, created_at, updated_at FROM playlists WHERE id = ?`, playlistID)
	p := &model.Playlist{}
	err := row.Scan(&p.ID, &p.OwnerID, &p.Name, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan playlist %d: %w", playlistID, err)
	}
	return p, nil
}

// GetPlaylistsByOwner retrieves the owner's playlists, most recently
// modified first.
func (r *mysqlPlaylistRepository) GetPlaylistsByOwner(ownerID int64) ([]*model.Playlist, error) {
	rows, err := r.DB.Query(`SELECT id, owner_id, name, created_at, updated_at FROM playlists WHERE owner_id = ? ORDER BY updated_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query playlists for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	playlists := make([]*model.Playlist, 0)
	for rows.Next() {
		p := &model.Playlist{}
		if err := rows.Scan(&p.ID, &p.OwnerID, &p.Name, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist in GetPlaylistsByOwner: %w", err)
		}
		playlists = append(playlists, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetPlaylistsByOwner: %w", err)
	}
	return playlists, nil
}

// AddTrack appends a track to an owned playlist. The track must belong to the
// user or be featured; a track already in the playlist is a conflict, not a
// no-op, because a silent skip on a personal order-sensitive list would
// surprise the user.
func (r *mysqlPlaylistRepository) AddTrack(ownerID, playlistID, trackID int64) (int, error) {
	if err := r.checkOwnership(ownerID, playlistID); err != nil {
		return 0, err
	}
	if err := r.checkTrackAccess(ownerID, trackID); err != nil {
		return 0, err
	}

	tx, err := r.DB.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM playlist_tracks WHERE playlist_id = ? AND track_id = ?`,
		playlistID, trackID).Scan(&exists); err != nil {
		return 0, fmt.Errorf("failed to check membership: %w", err)
	}
	if exists > 0 {
		return 0, ErrDuplicateTrack
	}

	position, err := AppendMember(tx, playlistID, trackID)
	if err != nil {
		return 0, err
	}
	if err := touchPlaylist(tx, playlistID); err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit AddTrack: %w", err)
	}
	return position, nil
}

// RemoveTrack removes a track from an owned playlist. Remaining positions are
// left sparse; they are renumbered on the next full reorder.
func (r *mysqlPlaylistRepository) RemoveTrack(ownerID, playlistID, trackID int64) error {
	if err := r.checkOwnership(ownerID, playlistID); err != nil {
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
	if err := touchPlaylist(tx, playlistID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit RemoveTrack: %w", err)
	}
	return nil
}

// Reorder applies a complete target ordering to an owned playlist.
func (r *mysqlPlaylistRepository) Reorder(ownerID, playlistID int64, orderedTrackIDs []int64) error {
	if err := r.checkOwnership(ownerID, playlistID); err != nil {
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
		return fmt.Errorf("failed to commit Reorder: %w", err)
	}
	return nil
}

// ListTracks returns the playlist's tracks in position order.
func (r *mysqlPlaylistRepository) ListTracks(playlistID int64) ([]*PlaylistTrackView, error) {
	query := `SELECT t.id, t.owner_id, t.title, t.artist, t.album, t.genre, t.duration, t.storage_key,
	          t.image_key, t.image_blurhash, t.is_featured, t.created_at, t.updated_at, pt.position
	          FROM playlist_tracks pt
	          JOIN tracks t ON t.id = pt.track_id
	          WHERE pt.playlist_id = ?
	          ORDER BY pt.position ASC, pt.id ASC`
	rows, err := r.DB.Query(query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks of playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	tracks := make([]*PlaylistTrackView, 0)
	for rows.Next() {
		v := &PlaylistTrackView{}
		err := rows.Scan(&v.ID, &v.OwnerID, &v.Title, &v.Artist, &v.Album, &v.Genre, &v.Duration,
			&v.StorageKey, &v.ImageKey, &v.ImageBlurhash, &v.IsFeatured, &v.CreatedAt, &v.UpdatedAt, &v.Position)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in ListTracks: %w", err)
		}
		tracks = append(tracks, v)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in ListTracks: %w", err)
	}
	return tracks, nil
}

// checkOwnership verifies the playlist exists and belongs to the user.
func (r *mysqlPlaylistRepository) checkOwnership(ownerID, playlistID int64) error {
	var actual int64
	err := r.DB.QueryRow(`SELECT owner_id FROM playlists WHERE id = ?`, playlistID).Scan(&actual)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to check playlist ownership: %w", err)
	}
	if actual != ownerID {
		return ErrForbidden
	}
	return nil
}

// checkTrackAccess verifies the track exists and is owned by the user or
// featured. Arbitrary cross-user private tracks can't be playlisted.
func (r *mysqlPlaylistRepository) checkTrackAccess(userID, trackID int64) error {
	var owner sql.NullInt64
	var featured bool
	err := r.DB.QueryRow(`SELECT owner_id, is_featured FROM tracks WHERE id = ?`, trackID).Scan(&owner, &featured)
	if err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return fmt.Errorf("failed to check track access: %w", err)
	}
	if featured {
		return nil
	}
	if owner.Valid && owner.Int64 == userID {
		return nil
	}
	return ErrForbidden
}

func touchPlaylist(tx *sql.Tx, playlistID int64) error {
	if _, err := tx.Exec(`UPDATE playlists SET updated_at = ? WHERE id = ?`, time.Now(), playlistID); err != nil {
		return fmt.Errorf("failed to bump playlist updated_at: %w", err)
	}
	return nil
}
