package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"TuneVault/cache"
	"TuneVault/config"
	"TuneVault/core/auth"
	"TuneVault/logger"
	"TuneVault/repository"
	"TuneVault/storage"
)

// APIHandler handles all API requests.
type APIHandler struct {
	userRepo     repository.UserRepository
	trackRepo    repository.TrackRepository
	playlistRepo repository.PlaylistRepository
	featuredRepo repository.FeaturedRepository
	playbackRepo repository.PlaybackRepository
	objects      storage.ObjectStore
	cache        *cache.Store
	cfg          *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	userRepo repository.UserRepository,
	trackRepo repository.TrackRepository,
	playlistRepo repository.PlaylistRepository,
	featuredRepo repository.FeaturedRepository,
	playbackRepo repository.PlaybackRepository,
	objects storage.ObjectStore,
	cacheStore *cache.Store,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		userRepo:     userRepo,
		trackRepo:    trackRepo,
		playlistRepo: playlistRepo,
		featuredRepo: featuredRepo,
		playbackRepo: playbackRepo,
		objects:      objects,
		cache:        cacheStore,
		cfg:          cfg,
	}
}

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		if err := json.NewEncoder(w).Encode(v); err != nil {
			logger.Error("[API] failed to encode response", logger.ErrorField(err))
		}
	}
}

// respondRepoError maps repository sentinels onto HTTP statuses.
func respondRepoError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, repository.ErrForbidden):
		http.Error(w, "Forbidden", http.StatusForbidden)
	case errors.Is(err, repository.ErrDuplicateTrack):
		http.Error(w, "Track already in playlist", http.StatusConflict)
	case errors.Is(err, repository.ErrDuplicateUser):
		http.Error(w, "Username or email already exists", http.StatusConflict)
	case errors.Is(err, repository.ErrReorderMismatch):
		http.Error(w, "Reorder list must contain exactly the current members", http.StatusBadRequest)
	default:
		logger.Error("[API] internal error", logger.ErrorField(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// AuthMiddleware checks for a valid JWT token and stores the identity in the
// request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			http.Error(w, "Invalid authorization header format", http.StatusUnauthorized)
			return
		}

		claims, err := auth.ParseToken(parts[1])
		if err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), "userID", claims.UserID)
		ctx = context.WithValue(ctx, "username", claims.Username)
		ctx = context.WithValue(ctx, "isAdmin", claims.IsAdmin)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// AdminMiddleware requires an authenticated admin.
func (h *APIHandler) AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdminFromContext(r.Context()) {
			http.Error(w, "Admin privilege required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserIDFromContext extracts the user ID from the request context.
func GetUserIDFromContext(ctx context.Context) (int64, error) {
	userID, ok := ctx.Value("userID").(int64)
	if !ok {
		return 0, fmt.Errorf("user ID not found in context")
	}
	return userID, nil
}

// IsAdminFromContext reports whether the request carries the admin role.
func IsAdminFromContext(ctx context.Context) bool {
	isAdmin, ok := ctx.Value("isAdmin").(bool)
	return ok && isAdmin
}
