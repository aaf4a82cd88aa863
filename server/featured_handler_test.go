package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"TuneVault/repository"

	"github.com/gorilla/mux"
)

func TestGetFeatured_ErrorDegradesToEmptyList(t *testing.T) {
	featured := &mockFeaturedRepo{listErr: errors.New("db down")}
	h := newTestHandler(nil, nil, featured, nil)

	w := httptest.NewRecorder()
	h.GetFeaturedHandler(w, httptest.NewRequest(http.MethodGet, "/api/featured", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("body = %q, want []", body)
	}
}

func TestAddFeatured_RequiresTrackID(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/featured", []byte(`{"position": 1}`), 1, true)
	h.AddFeaturedHandler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAddFeatured_UnknownTrack(t *testing.T) {
	featured := &mockFeaturedRepo{addErr: repository.ErrNotFound}
	h := newTestHandler(nil, nil, featured, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPost, "/api/featured", []byte(`{"trackId": 99}`), 1, true)
	h.AddFeaturedHandler(w, r)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAddFeatured_RepeatedAddReturnsSameMembership(t *testing.T) {
	featured := &mockFeaturedRepo{}
	h := newTestHandler(nil, nil, featured, nil)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r := authedRequest(http.MethodPost, "/api/featured", []byte(`{"trackId": 3}`), 1, true)
		h.AddFeaturedHandler(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("add %d status = %d, want 200", i+1, w.Code)
		}
	}
	if len(featured.members) != 1 {
		t.Errorf("members = %d, want 1 after repeated add", len(featured.members))
	}
}

func TestRemoveFeatured_OwnerAllowed(t *testing.T) {
	tracks := newMockTrackRepo(ownedTrack(3, 1, "Mine"))
	featured := &mockFeaturedRepo{}
	h := newTestHandler(tracks, nil, featured, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodDelete, "/api/featured/3", nil, 1, false)
	r = mux.SetURLVars(r, map[string]string{"trackId": "3"})
	h.RemoveFeaturedHandler(w, r)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if len(featured.removed) != 1 || featured.removed[0] != 3 {
		t.Errorf("removed = %v, want [3]", featured.removed)
	}
}

func TestRemoveFeatured_NonOwnerForbidden(t *testing.T) {
	tracks := newMockTrackRepo(ownedTrack(3, 2, "Theirs"))
	featured := &mockFeaturedRepo{}
	h := newTestHandler(tracks, nil, featured, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodDelete, "/api/featured/3", nil, 1, false)
	r = mux.SetURLVars(r, map[string]string{"trackId": "3"})
	h.RemoveFeaturedHandler(w, r)

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
	if len(featured.removed) != 0 {
		t.Errorf("remove went through despite forbidden: %v", featured.removed)
	}
}

func TestRemoveFeatured_AdminBypassesOwnership(t *testing.T) {
	tracks := newMockTrackRepo(ownedTrack(3, 2, "Theirs"))
	featured := &mockFeaturedRepo{}
	h := newTestHandler(tracks, nil, featured, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodDelete, "/api/featured/3", nil, 1, true)
	r = mux.SetURLVars(r, map[string]string{"trackId": "3"})
	h.RemoveFeaturedHandler(w, r)

	if w.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", w.Code)
	}
}

func TestReorderFeatured_MismatchMapsToBadRequest(t *testing.T) {
	featured := &mockFeaturedRepo{reorderErr: repository.ErrReorderMismatch}
	h := newTestHandler(nil, nil, featured, nil)

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPut, "/api/featured/order", []byte(`{"trackIds": [2, 1]}`), 1, true)
	h.ReorderFeaturedHandler(w, r)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestReorderFeatured_ReturnsRefreshedList(t *testing.T) {
	featured := &mockFeaturedRepo{}
	h := newTestHandler(nil, nil, featured, nil)

	// Seed two members through the repo.
	if _, err := featured.Add(1, nil); err != nil {
		t.Fatalf("seed add failed: %v", err)
	}
	if _, err := featured.Add(2, nil); err != nil {
		t.Fatalf("seed add failed: %v", err)
	}

	w := httptest.NewRecorder()
	r := authedRequest(http.MethodPut, "/api/featured/order", []byte(`{"trackIds": [2, 1]}`), 1, true)
	h.ReorderFeaturedHandler(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var list []*repository.PlaylistTrackView
	if err := json.NewDecoder(w.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("refreshed list has %d members, want 2", len(list))
	}
}
