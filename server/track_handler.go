package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"

	"TuneVault/logger"
	"TuneVault/model"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// GetTracksHandler lists the caller's own tracks.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	tracks, err := h.trackRepo.GetTracksByOwner(userID)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

// createTrackRequest finalizes an upload: the client already PUT the audio
// bytes to the presigned URL and now registers the metadata.
type createTrackRequest struct {
	Title         string `json:"title"`
	Artist        string `json:"artist"`
	Album         string `json:"album"`
	Genre         string `json:"genre"`
	Duration      int    `json:"duration"`
	StorageKey    string `json:"storageKey"`
	ImageKey      string `json:"imageKey"`
	ImageBlurhash string `json:"imageBlurhash"`
}

// CreateTrackHandler registers an uploaded track.
func (h *APIHandler) CreateTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" || req.StorageKey == "" {
		http.Error(w, "Title and storageKey are required", http.StatusBadRequest)
		return
	}
	if req.Duration < 0 {
		http.Error(w, "Duration must be non-negative", http.StatusBadRequest)
		return
	}

	track := &model.Track{
		OwnerID:       sql.NullInt64{Int64: userID, Valid: true},
		Title:         req.Title,
		Artist:        nullString(req.Artist),
		Album:         nullString(req.Album),
		Genre:         nullString(req.Genre),
		Duration:      req.Duration,
		StorageKey:    req.StorageKey,
		ImageKey:      nullString(req.ImageKey),
		ImageBlurhash: nullString(req.ImageBlurhash),
	}

	id, err := h.trackRepo.CreateTrack(track)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	track.ID = id

	logger.Info("[Track] track registered", logger.Int64("trackId", id), logger.String("title", track.Title))
	respondJSON(w, http.StatusCreated, track)
}

// UpdateTrackHandler edits metadata on an owned track.
func (h *APIHandler) UpdateTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	trackID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid track id", http.StatusBadRequest)
		return
	}

	track, err := h.trackRepo.GetTrackByID(trackID)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}
	if !track.OwnerID.Valid || track.OwnerID.Int64 != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	var req createTrackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Title == "" {
		http.Error(w, "Title is required", http.StatusBadRequest)
		return
	}

	track.Title = req.Title
	track.Artist = nullString(req.Artist)
	track.Album = nullString(req.Album)
	track.Genre = nullString(req.Genre)
	track.ImageKey = nullString(req.ImageKey)
	track.ImageBlurhash = nullString(req.ImageBlurhash)

	if err := h.trackRepo.UpdateTrackMetadata(track); err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, track)
}

// DeleteTrackHandler removes an owned track (admins may remove any). The
// featured membership goes first so the flag invariant holds; playlist rows
// cascade; playback queues drop the dangling reference at read time.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	trackID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid track id", http.StatusBadRequest)
		return
	}

	track, err := h.trackRepo.GetTrackByID(trackID)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}
	isOwner := track.OwnerID.Valid && track.OwnerID.Int64 == userID
	if !isOwner && !IsAdminFromContext(r.Context()) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	if track.IsFeatured {
		if err := h.featuredRepo.Remove(trackID); err != nil {
			respondRepoError(w, err)
			return
		}
	}
	if err := h.trackRepo.DeleteTrack(trackID); err != nil {
		respondRepoError(w, err)
		return
	}

	// Storage cleanup is best-effort; a leaked object is not worth failing
	// the delete over.
	if h.objects != nil {
		if err := h.objects.Remove(r.Context(), track.StorageKey); err != nil {
			logger.Warn("[Track] failed to remove audio object",
				logger.String("storageKey", track.StorageKey), logger.ErrorField(err))
		}
	}

	logger.Info("[Track] track deleted", logger.Int64("trackId", trackID))
	w.WriteHeader(http.StatusNoContent)
}

// UploadURLHandler issues a presigned PUT URL under a fresh storage key.
func (h *APIHandler) UploadURLHandler(w http.ResponseWriter, r *http.Request) {
	if _, err := GetUserIDFromContext(r.Context()); err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	storageKey := fmt.Sprintf("audio/%s%s", uuid.NewString(), filepath.Ext(req.FileName))
	url, err := h.objects.PresignPut(r.Context(), storageKey)
	if err != nil {
		logger.Error("[Track] failed to presign upload", logger.ErrorField(err))
		http.Error(w, "Failed to issue upload URL", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"storageKey": storageKey,
		"uploadUrl":  url,
	})
}

// StreamURLHandler issues a presigned GET URL for a track the caller may
// hear: their own or a featured one.
func (h *APIHandler) StreamURLHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	trackID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid track id", http.StatusBadRequest)
		return
	}

	track, err := h.trackRepo.GetTrackByID(trackID)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if track == nil {
		http.Error(w, "Track not found", http.StatusNotFound)
		return
	}
	if !track.AccessibleBy(userID) {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	url, err := h.objects.PresignGet(r.Context(), track.StorageKey)
	if err != nil {
		logger.Error("[Track] failed to presign stream", logger.ErrorField(err))
		http.Error(w, "Failed to issue stream URL", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"streamUrl": url})
}

func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
