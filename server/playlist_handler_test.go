package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"TuneVault/model"
	"TuneVault/repository"

	"github.com/gorilla/mux"
)

func TestCreatePlaylist_RequiresName(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/playlists", []byte(`{}`), 1, false)
	h.CreatePlaylistHandler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAddPlaylistTrack_DuplicateConflict(t *testing.T) {
	playlists := newMockPlaylistRepo(&model.Playlist{ID: 1, OwnerID: 1, Name: "Mix"})
	playlists.addErr = repository.ErrDuplicateTrack
	h := newTestHandler(nil, playlists, nil, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/playlists/1/tracks", []byte(`{"trackId": 5}`), 1, false)
	r = mux.SetURLVars(r, map[string]string{"id": "1"})
	h.AddPlaylistTrackHandler(w, r)

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestAddPlaylistTrack_ForeignPlaylistForbidden(t *testing.T) {
	playlists := newMockPlaylistRepo(&model.Playlist{ID: 1, OwnerID: 2, Name: "Not Mine"})
	h := newTestHandler(nil, playlists, nil, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/playlists/1/tracks", []byte(`{"trackId": 5}`), 1, false)
	r = mux.SetURLVars(r, map[string]string{"id": "1"})
	h.AddPlaylistTrackHandler(w, r)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestGetPlaylistTracks_ForeignPlaylistForbidden(t *testing.T) {
	playlists := newMockPlaylistRepo(&model.Playlist{ID: 1, OwnerID: 2, Name: "Not Mine"})
	h := newTestHandler(nil, playlists, nil, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodGet, "/api/playlists/1/tracks", nil, 1, false)
	r = mux.SetURLVars(r, map[string]string{"id": "1"})
	h.GetPlaylistTracksHandler(w, r)

	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", w.Code)
	}
}

func TestGetPlaylistTracks_MissingPlaylist(t *testing.T) {
	h := newTestHandler(nil, newMockPlaylistRepo(), nil, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodGet, "/api/playlists/9/tracks", nil, 1, false)
	r = mux.SetURLVars(r, map[string]string{"id": "9"})
	h.GetPlaylistTracksHandler(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestReorderPlaylist_MismatchMapsToBadRequest(t *testing.T) {
	playlists := newMockPlaylistRepo(&model.Playlist{ID: 1, OwnerID: 1, Name: "Mix"})
	playlists.reorderErr = repository.ErrReorderMismatch
	h := newTestHandler(nil, playlists, nil, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPut, "/api/playlists/1/order", []byte(`{"trackIds": [3, 1]}`), 1, false)
	r = mux.SetURLVars(r, map[string]string{"id": "1"})
	h.ReorderPlaylistHandler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDeletePlaylist(t *testing.T) {
	playlists := newMockPlaylistRepo(&model.Playlist{ID: 1, OwnerID: 1, Name: "Mix"})
	h := newTestHandler(nil, playlists, nil, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodDelete, "/api/playlists/1", nil, 1, false)
	r = mux.SetURLVars(r, map[string]string{"id": "1"})
	h.DeletePlaylistHandler(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if _, ok := playlists.playlists[1]; ok {
		t.Error("playlist still present after delete")
	}
}
