package server

import (
	"encoding/json"
	"net/http"

	"TuneVault/logger"
)

// GetPlaylistsHandler lists the caller's playlists, most recently modified
// first.
func (h *APIHandler) GetPlaylistsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	playlists, err := h.playlistRepo.GetPlaylistsByOwner(userID)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, playlists)
}

// CreatePlaylistHandler creates an empty playlist.
func (h *APIHandler) CreatePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Name is required", http.StatusBadRequest)
		return
	}

	playlist, err := h.playlistRepo.CreatePlaylist(userID, req.Name)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	logger.Info("[Playlist] playlist created",
		logger.Int64("playlistId", playlist.ID), logger.Int64("userId", userID))
	respondJSON(w, http.StatusCreated, playlist)
}

// DeletePlaylistHandler removes an owned playlist and its membership rows.
func (h *APIHandler) DeletePlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	playlistID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid playlist id", http.StatusBadRequest)
		return
	}

	if err := h.playlistRepo.DeletePlaylist(userID, playlistID); err != nil {
		respondRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPlaylistTracksHandler lists an owned playlist's tracks in position
// order.
func (h *APIHandler) GetPlaylistTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	playlistID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid playlist id", http.StatusBadRequest)
		return
	}

	playlist, err := h.playlistRepo.GetPlaylistByID(playlistID)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	if playlist == nil {
		http.Error(w, "Playlist not found", http.StatusNotFound)
		return
	}
	if playlist.OwnerID != userID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	tracks, err := h.playlistRepo.ListTracks(playlistID)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

// AddPlaylistTrackHandler appends a track to an owned playlist. The track
// must be the caller's own or featured; duplicates are a conflict.
func (h *APIHandler) AddPlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	playlistID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid playlist id", http.StatusBadRequest)
		return
	}

	var req struct {
		TrackID int64 `json:"trackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TrackID <= 0 {
		http.Error(w, "trackId is required", http.StatusBadRequest)
		return
	}

	position, err := h.playlistRepo.AddTrack(userID, playlistID, req.TrackID)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"playlistId": playlistID,
		"trackId":    req.TrackID,
		"position":   position,
	})
}

// RemovePlaylistTrackHandler removes a track from an owned playlist.
func (h *APIHandler) RemovePlaylistTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	playlistID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid playlist id", http.StatusBadRequest)
		return
	}
	trackID, err := pathID(r, "trackId")
	if err != nil {
		http.Error(w, "Invalid track id", http.StatusBadRequest)
		return
	}

	if err := h.playlistRepo.RemoveTrack(userID, playlistID, trackID); err != nil {
		respondRepoError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ReorderPlaylistHandler applies a complete target ordering to an owned
// playlist.
func (h *APIHandler) ReorderPlaylistHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	playlistID, err := pathID(r, "id")
	if err != nil {
		http.Error(w, "Invalid playlist id", http.StatusBadRequest)
		return
	}

	var req struct {
		TrackIDs []int64 `json:"trackIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.playlistRepo.Reorder(userID, playlistID, req.TrackIDs); err != nil {
		respondRepoError(w, err)
		return
	}

	tracks, err := h.playlistRepo.ListTracks(playlistID)
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}
