package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"TuneVault/logger"
	"TuneVault/model"
)

// savePlaybackRequest is the client snapshot. Queue is raw because three
// shapes exist in persisted data (legacy flat ids, tagged entries, wrapped
// object); model.ParseQueue normalizes them once at this boundary.
type savePlaybackRequest struct {
	TrackID           int64           `json:"trackId"`
	Position          float64         `json:"position"`
	IsPlaying         bool            `json:"isPlaying"`
	Volume            float64         `json:"volume"`
	Shuffle           bool            `json:"shuffle"`
	RepeatMode        string          `json:"repeatMode"`
	CurrentTrackIndex int             `json:"currentTrackIndex"`
	Queue             json.RawMessage `json:"queue"`
}

// playbackResponse is the canonical snapshot returned to clients.
type playbackResponse struct {
	TrackID           int64              `json:"trackId"`
	TrackTitle        string             `json:"trackTitle"`
	TrackArtist       string             `json:"trackArtist"`
	TrackAvailable    bool               `json:"trackAvailable"`
	Position          float64            `json:"position"`
	IsPlaying         bool               `json:"isPlaying"`
	Volume            float64            `json:"volume"`
	Shuffle           bool               `json:"shuffle"`
	RepeatMode        model.RepeatMode   `json:"repeatMode"`
	CurrentTrackIndex int                `json:"currentTrackIndex"`
	Queue             []model.QueueEntry `json:"queue"`
	UpdatedAt         time.Time          `json:"updatedAt"`
}

// SavePlaybackHandler upserts the caller's playback snapshot.
func (h *APIHandler) SavePlaybackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req savePlaybackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	status, msg := h.savePlayback(r.Context(), userID, &req)
	if status != http.StatusOK {
		http.Error(w, msg, status)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

// savePlayback validates and persists one snapshot. Shared by the HTTP
// handler and the websocket heartbeat. Returns an HTTP status and, when not
// OK, a client-facing message.
func (h *APIHandler) savePlayback(ctx context.Context, userID int64, req *savePlaybackRequest) (int, string) {
	if req.TrackID <= 0 {
		return http.StatusBadRequest, "trackId is required"
	}
	if req.Volume < 0 || req.Volume > 1 {
		return http.StatusBadRequest, "volume must be between 0 and 1"
	}
	if req.Position < 0 {
		return http.StatusBadRequest, "position must be non-negative"
	}
	if req.CurrentTrackIndex < 0 {
		return http.StatusBadRequest, "currentTrackIndex must be non-negative"
	}

	// The current track must be accessible; an inaccessible current track
	// rejects the whole save.
	current, err := h.trackRepo.GetTrackByID(req.TrackID)
	if err != nil {
		logger.Error("[Playback] failed to look up current track", logger.ErrorField(err))
		return http.StatusInternalServerError, "Internal server error"
	}
	if current == nil {
		return http.StatusNotFound, "Current track not found"
	}
	if !current.AccessibleBy(userID) {
		return http.StatusForbidden, "Current track is not accessible"
	}

	var entries []model.QueueEntry
	if len(req.Queue) > 0 {
		entries, err = model.ParseQueue(req.Queue)
		if err != nil {
			return http.StatusBadRequest, "Invalid queue payload"
		}
	}

	// Queue entries are filtered, not fatal: a partial persisted queue beats
	// blocking playback persistence entirely.
	kept, dropped := h.accessibleQueue(entries, userID)
	if dropped > 0 {
		logger.Debug("[Playback] dropped inaccessible queue entries",
			logger.Int64("userId", userID), logger.Int("dropped", dropped))
	}

	state := &model.PlaybackState{
		UserID:            userID,
		TrackID:           current.ID,
		TrackTitle:        current.Title,
		TrackArtist:       current.Artist.String,
		Position:          req.Position,
		IsPlaying:         req.IsPlaying,
		Volume:            req.Volume,
		Shuffle:           req.Shuffle,
		RepeatMode:        model.NormalizeRepeatMode(req.RepeatMode),
		CurrentTrackIndex: req.CurrentTrackIndex,
	}
	if err := state.SetQueue(kept); err != nil {
		logger.Error("[Playback] failed to encode queue", logger.ErrorField(err))
		return http.StatusInternalServerError, "Internal server error"
	}

	if err := h.playbackRepo.Save(state); err != nil {
		logger.Error("[Playback] failed to save state", logger.ErrorField(err))
		return http.StatusInternalServerError, "Internal server error"
	}

	if err := h.cache.PutPlayback(ctx, state); err != nil {
		logger.Warn("[Playback] failed to cache state", logger.ErrorField(err))
		// Drop whatever snapshot the cache still holds so the cache-first
		// load can't serve a state older than the row just written.
		if err := h.cache.InvalidatePlayback(ctx, userID); err != nil {
			logger.Warn("[Playback] failed to invalidate stale cache entry", logger.ErrorField(err))
		}
	}
	return http.StatusOK, ""
}

// GetPlaybackHandler returns the caller's snapshot with every queue entry
// re-validated against current existence and access. Dangling references
// shrink the queue silently; the current track is returned from its
// denormalized fields even when it no longer resolves, flagged unavailable.
func (h *APIHandler) GetPlaybackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	state, err := h.cache.GetPlayback(r.Context(), userID)
	if err != nil {
		logger.Warn("[Playback] cache read failed", logger.ErrorField(err))
		state = nil
	}
	if state == nil {
		state, err = h.playbackRepo.Get(userID)
		if err != nil {
			logger.Error("[Playback] failed to load state", logger.ErrorField(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
	}
	if state == nil {
		// Fresh user, nothing to resume. An explicit JSON null, not an
		// empty body.
		respondJSON(w, http.StatusOK, json.RawMessage("null"))
		return
	}

	entries, err := state.Queue()
	if err != nil {
		logger.Warn("[Playback] stored queue unreadable, returning empty queue",
			logger.Int64("userId", userID), logger.ErrorField(err))
		entries = []model.QueueEntry{}
	}
	kept, _ := h.accessibleQueue(entries, userID)

	available := false
	if track, err := h.trackRepo.GetTrackByID(state.TrackID); err == nil && track != nil {
		available = track.AccessibleBy(userID)
	}

	respondJSON(w, http.StatusOK, &playbackResponse{
		TrackID:           state.TrackID,
		TrackTitle:        state.TrackTitle,
		TrackArtist:       state.TrackArtist,
		TrackAvailable:    available,
		Position:          state.Position,
		IsPlaying:         state.IsPlaying,
		Volume:            state.Volume,
		Shuffle:           state.Shuffle,
		RepeatMode:        model.NormalizeRepeatMode(string(state.RepeatMode)),
		CurrentTrackIndex: state.CurrentTrackIndex,
		Queue:             kept,
		UpdatedAt:         state.UpdatedAt,
	})
}

// accessibleQueue keeps the entries whose track still exists and is owned by
// the user or featured, re-tagging each kept entry's kind from the track's
// current featured status. Returns the kept entries and the dropped count.
func (h *APIHandler) accessibleQueue(entries []model.QueueEntry, userID int64) ([]model.QueueEntry, int) {
	kept := make([]model.QueueEntry, 0, len(entries))
	dropped := 0
	for _, entry := range entries {
		track, err := h.trackRepo.GetTrackByID(entry.TrackID)
		if err != nil || track == nil || !track.AccessibleBy(userID) {
			dropped++
			continue
		}
		kind := model.QueueKindUser
		if track.IsFeatured && !(track.OwnerID.Valid && track.OwnerID.Int64 == userID) {
			kind = model.QueueKindFeatured
		}
		kept = append(kept, model.QueueEntry{TrackID: entry.TrackID, Kind: kind})
	}
	return kept, dropped
}
