package server

import (
	"encoding/json"
	"net/http"

	"TuneVault/logger"
)

// GetFeaturedHandler lists the shared featured set in position order.
// Listing never surfaces internal errors as anything but a degraded result.
func (h *APIHandler) GetFeaturedHandler(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.featuredRepo.List()
	if err != nil {
		logger.Error("[Featured] failed to list featured tracks", logger.ErrorField(err))
		respondJSON(w, http.StatusOK, []interface{}{})
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}

// AddFeaturedHandler puts a track into the featured set. Admin-only;
// idempotent, so re-adding an already-featured track returns the existing
// membership rather than erroring.
func (h *APIHandler) AddFeaturedHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackID  int64 `json:"trackId"`
		Position *int  `json:"position,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.TrackID <= 0 {
		http.Error(w, "trackId is required", http.StatusBadRequest)
		return
	}

	member, err := h.featuredRepo.Add(req.TrackID, req.Position)
	if err != nil {
		respondRepoError(w, err)
		return
	}

	logger.Info("[Featured] track featured", logger.Int64("trackId", req.TrackID))
	respondJSON(w, http.StatusOK, member)
}

// RemoveFeaturedHandler takes a track out of the featured set. Allowed for
// admins and for the track's owner.
func (h *APIHandler) RemoveFeaturedHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	trackID, err := pathID(r, "trackId")
	if err != nil {
		http.Error(w, "Invalid track id", http.StatusBadRequest)
		return
	}

	if !IsAdminFromContext(r.Context()) {
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
	}

	if err := h.featuredRepo.Remove(trackID); err != nil {
		respondRepoError(w, err)
		return
	}

	logger.Info("[Featured] track unfeatured", logger.Int64("trackId", trackID))
	w.WriteHeader(http.StatusNoContent)
}

// ReorderFeaturedHandler applies a complete target ordering. Admin-only; the
// list must contain exactly the current members.
func (h *APIHandler) ReorderFeaturedHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		TrackIDs []int64 `json:"trackIds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.featuredRepo.Reorder(req.TrackIDs); err != nil {
		respondRepoError(w, err)
		return
	}

	tracks, err := h.featuredRepo.List()
	if err != nil {
		respondRepoError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tracks)
}
