package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"TuneVault/cache"
	"TuneVault/config"
	"TuneVault/core/auth"
	"TuneVault/db"
	"TuneVault/logger"
	"TuneVault/model"
	"TuneVault/repository"
	"TuneVault/storage"

	"github.com/gorilla/mux"
)

// Start initializes dependencies and runs the HTTP server until interrupted.
func Start() {
	cfg := config.Load()

	logger.InitLogger(logger.Config{
		Level:      logger.InfoLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    100,
		MaxBackups: 5,
		MaxAge:     30,
		Compress:   true,
	})

	auth.SetSecret(cfg.JWTSecret)

	if err := storage.InitMinio(cfg); err != nil {
		log.Fatalf("Failed to initialize MinIO: %v", err)
	}

	if err := db.ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.DB.Close()

	if err := db.InitDB(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := db.ConnectGormDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database with GORM: %v", err)
	}
	defer db.CloseGormDB()

	if err := db.AutoMigrateModels(&model.PlaybackState{}); err != nil {
		log.Fatalf("Failed to migrate playback state model: %v", err)
	}

	// Redis is an accelerator, not a dependency; without it every playback
	// load just hits MySQL.
	var cacheStore *cache.Store
	if err := db.ConnectRedis(cfg); err != nil {
		logger.Warn("[Server] Redis unavailable, running without playback cache", logger.ErrorField(err))
	} else {
		defer db.CloseRedis()
		cacheStore = cache.NewStore(db.RedisClient)
	}

	userRepo := repository.NewMySQLUserRepository(db.DB)
	trackRepo := repository.NewMySQLTrackRepository(db.DB)
	playlistRepo := repository.NewMySQLPlaylistRepository(db.DB)
	featuredRepo := repository.NewMySQLFeaturedRepository(db.DB, playlistRepo)
	playbackRepo := repository.NewGormPlaybackRepository(db.GormDB)
	objects := storage.NewMinioObjectStore(storage.GetMinioClient(), cfg.MinioBucket,
		time.Duration(cfg.PresignExpiry)*time.Second)

	apiHandler := NewAPIHandler(userRepo, trackRepo, playlistRepo, featuredRepo, playbackRepo,
		objects, cacheStore, cfg)

	router := mux.NewRouter()
	router.Use(corsMiddleware)

	// Auth
	router.HandleFunc("/api/auth/register", apiHandler.RegisterHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/auth/login", apiHandler.LoginHandler).Methods(http.MethodPost)

	// Tracks
	router.HandleFunc("/api/tracks", apiHandler.AuthMiddleware(apiHandler.GetTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/tracks", apiHandler.AuthMiddleware(apiHandler.CreateTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/tracks/{id}", apiHandler.AuthMiddleware(apiHandler.UpdateTrackHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/tracks/{id}", apiHandler.AuthMiddleware(apiHandler.DeleteTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/tracks/{id}/stream-url", apiHandler.AuthMiddleware(apiHandler.StreamURLHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/upload-url", apiHandler.AuthMiddleware(apiHandler.UploadURLHandler)).Methods(http.MethodPost)

	// Featured set
	router.HandleFunc("/api/featured", apiHandler.AuthMiddleware(apiHandler.GetFeaturedHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/featured", apiHandler.AdminMiddleware(apiHandler.AddFeaturedHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/featured/order", apiHandler.AdminMiddleware(apiHandler.ReorderFeaturedHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/featured/{trackId}", apiHandler.AuthMiddleware(apiHandler.RemoveFeaturedHandler)).Methods(http.MethodDelete)

	// Playlists
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.GetPlaylistsHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists", apiHandler.AuthMiddleware(apiHandler.CreatePlaylistHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}", apiHandler.AuthMiddleware(apiHandler.DeletePlaylistHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/tracks", apiHandler.AuthMiddleware(apiHandler.GetPlaylistTracksHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playlists/{id}/tracks", apiHandler.AuthMiddleware(apiHandler.AddPlaylistTrackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/api/playlists/{id}/tracks/{trackId}", apiHandler.AuthMiddleware(apiHandler.RemovePlaylistTrackHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/playlists/{id}/order", apiHandler.AuthMiddleware(apiHandler.ReorderPlaylistHandler)).Methods(http.MethodPut)

	// Playback state
	router.HandleFunc("/api/playback", apiHandler.AuthMiddleware(apiHandler.GetPlaybackHandler)).Methods(http.MethodGet)
	router.HandleFunc("/api/playback", apiHandler.AuthMiddleware(apiHandler.SavePlaybackHandler)).Methods(http.MethodPost)
	router.HandleFunc("/ws/playback", apiHandler.PlaybackSyncHandler)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("[Server] listening", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-stop
	logger.Info("[Server] shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Info("[Server] stopped")
}

// corsMiddleware allows browser clients on other origins.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS, HEAD")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Range")
		w.Header().Set("Access-Control-Max-Age", "86400")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
