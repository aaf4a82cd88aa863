package repository

import (
	"errors"
	"fmt"
	"time"

	"TuneVault/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PlaybackRepository persists one playback snapshot per user. Rows are
// upserted on every save and never explicitly deleted; last write wins when
// two sessions save concurrently.
type PlaybackRepository interface {
	Save(state *model.PlaybackState) error
	Get(userID int64) (*model.PlaybackState, error)
}

// gormPlaybackRepository implements PlaybackRepository with GORM.
type gormPlaybackRepository struct {
	DB *gorm.DB
}

// NewGormPlaybackRepository creates a new instance of gormPlaybackRepository.
func NewGormPlaybackRepository(database *gorm.DB) PlaybackRepository {
	return &gormPlaybackRepository{DB: database}
}

// Save upserts the user's snapshot, creating the row if absent.
func (r *gormPlaybackRepository) Save(state *model.PlaybackState) error {
	state.UpdatedAt = time.Now()
	err := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		UpdateAll: true,
	}).Create(state).Error
	if err != nil {
		return fmt.Errorf("failed to upsert playback state for user %d: %w", state.UserID, err)
	}
	return nil
}

// Get returns the user's snapshot, or (nil, nil) for a fresh user.
func (r *gormPlaybackRepository) Get(userID int64) (*model.PlaybackState, error) {
	var state model.PlaybackState
	err := r.DB.Where("user_id = ?", userID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query playback state for user %d: %w", userID, err)
	}
	return &state, nil
}
