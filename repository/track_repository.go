package repository

import (
	"database/sql"
	"fmt"
	"time"

	"TuneVault/model"
)

// TrackRepository defines the interface for track data operations.
type TrackRepository interface {
	CreateTrack(track *model.Track) (int64, error)
	GetTrackByID(id int64) (*model.Track, error)
	GetTracksByOwner(ownerID int64) ([]*model.Track, error)
	UpdateTrackMetadata(track *model.Track) error
	DeleteTrack(trackID int64) error
}

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	DB *sql.DB
}

// NewMySQLTrackRepository creates a new instance of mysqlTrackRepository.
func NewMySQLTrackRepository(database *sql.DB) TrackRepository {
	return &mysqlTrackRepository{DB: database}
}

const trackColumns = `id, owner_id, title, artist, album, genre, duration, storage_key, image_key, image_blurhash, is_featured, created_at, updated_at`

func scanTrack(row interface{ Scan(...interface{}) error }) (*model.Track, error) {
	track := &model.Track{}
	err := row.Scan(&track.ID, &track.OwnerID, &track.Title, &track.Artist, &track.Album, &track.Genre,
		&track.Duration, &track.StorageKey, &track.ImageKey, &track.ImageBlurhash, &track.IsFeatured,
		&track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return track, nil
}

// CreateTrack adds a new track to the database.
func (r *mysqlTrackRepository) CreateTrack(track *model.Track) (int64, error) {
	query := `INSERT INTO tracks (owner_id, title, artist, album, genre, duration, storage_key, image_key, image_blurhash, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	now := time.Now()
	res, err := r.DB.Exec(query, track.OwnerID, track.Title, track.Artist, track.Album, track.Genre,
		track.Duration, track.StorageKey, track.ImageKey, track.ImageBlurhash, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	return id, nil
}

// GetTrackByID retrieves a track by its ID. Returns (nil, nil) when absent.
func (r *mysqlTrackRepository) GetTrackByID(id int64) (*model.Track, error) {
	row := r.DB.QueryRow(`SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	track, err := scanTrack(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // track not found
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return track, nil
}

// GetTracksByOwner retrieves all tracks owned by a user, newest first.
func (r *mysqlTrackRepository) GetTracksByOwner(ownerID int64) ([]*model.Track, error) {
	rows, err := r.DB.Query(`SELECT `+trackColumns+` FROM tracks WHERE owner_id = ? ORDER BY created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks for owner %d: %w", ownerID, err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in GetTracksByOwner: %w", err)
		}
		tracks = append(tracks, track)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetTracksByOwner: %w", err)
	}
	return tracks, nil
}

// UpdateTrackMetadata updates the editable metadata fields of a track.
func (r *mysqlTrackRepository) UpdateTrackMetadata(track *model.Track) error {
	query := `UPDATE tracks SET title = ?, artist = ?, album = ?, genre = ?, image_key = ?, image_blurhash = ?, updated_at = ? WHERE id = ?`
	res, err := r.DB.Exec(query, track.Title, track.Artist, track.Album, track.Genre,
		track.ImageKey, track.ImageBlurhash, time.Now(), track.ID)
	if err != nil {
		return fmt.Errorf("failed to execute UpdateTrackMetadata for track %d: %w", track.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTrack removes a track. Membership rows in playlists and the featured
// set cascade at the schema level; playback queues keep their weak reference
// and drop it at read time.
func (r *mysqlTrackRepository) DeleteTrack(trackID int64) error {
	res, err := r.DB.Exec(`DELETE FROM tracks WHERE id = ?`, trackID)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteTrack for track %d: %w", trackID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
