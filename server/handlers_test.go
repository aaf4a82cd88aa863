package server

import (
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"TuneVault/core/auth"
)

func TestMain(m *testing.M) {
	auth.SetSecret("test-secret")
	os.Exit(m.Run())
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)

	token, err := auth.GenerateToken(42, "alice", false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var gotID int64
	next := func(w http.ResponseWriter, r *http.Request) {
		id, err := GetUserIDFromContext(r.Context())
		if err != nil {
			t.Errorf("user id missing from context: %v", err)
		}
		gotID = id
		w.WriteHeader(http.StatusOK)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/tracks", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	h.AuthMiddleware(next)(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if gotID != 42 {
		t.Errorf("context user id = %d, want 42", gotID)
	}
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)
	next := func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler reached without valid credentials")
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc123"},
		{"garbage token", "Bearer not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, "/api/tracks", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			h.AuthMiddleware(next)(w, r)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", w.Code)
			}
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	h := newTestHandler(nil, nil, nil, nil)
	next := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}

	adminToken, err := auth.GenerateToken(1, "admin", true)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	userToken, err := auth.GenerateToken(2, "bob", false)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/featured", nil)
	r.Header.Set("Authorization", "Bearer "+adminToken)
	h.AdminMiddleware(next)(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("admin status = %d, want 200", w.Code)
	}

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/featured", nil)
	r.Header.Set("Authorization", "Bearer "+userToken)
	h.AdminMiddleware(next)(w, r)
	if w.Code != http.StatusForbidden {
		t.Errorf("non-admin status = %d, want 403", w.Code)
	}
}
