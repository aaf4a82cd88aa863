package importer

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"TuneVault/logger"
	"TuneVault/model"
	"TuneVault/repository"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
)

// Watcher ingests audio files dropped into a local directory: each new file
// is uploaded to object storage under a fresh uuid key and registered as a
// track owned by the configured user.
type Watcher struct {
	dir     string
	ownerID int64
	bucket  string
	client  *minio.Client
	tracks  repository.TrackRepository
}

// NewWatcher builds a watcher over dir importing tracks for ownerID.
func NewWatcher(dir string, ownerID int64, client *minio.Client, bucket string, tracks repository.TrackRepository) *Watcher {
	return &Watcher{dir: dir, ownerID: ownerID, bucket: bucket, client: client, tracks: tracks}
}

var audioExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
}

// Run watches the drop directory until the context is cancelled. Files
// already present at startup are imported first.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}

	if err := w.importExisting(ctx); err != nil {
		logger.Warn("[Importer] initial sweep failed", logger.ErrorField(err))
	}

	logger.Info("[Importer] watching drop folder", logger.String("dir", w.dir))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if _, supported := audioExtensions[strings.ToLower(filepath.Ext(event.Name))]; !supported {
				continue
			}
			// Writers may still be flushing when the event arrives.
			time.Sleep(500 * time.Millisecond)
			if err := w.importFile(ctx, event.Name); err != nil {
				logger.Error("[Importer] import failed",
					logger.String("file", event.Name), logger.ErrorField(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("[Importer] watch error", logger.ErrorField(err))
		}
	}
}

func (w *Watcher) importExisting(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("failed to read drop folder: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := filepath.Join(w.dir, entry.Name())
		if _, supported := audioExtensions[strings.ToLower(filepath.Ext(name))]; !supported {
			continue
		}
		if err := w.importFile(ctx, name); err != nil {
			logger.Error("[Importer] import failed",
				logger.String("file", name), logger.ErrorField(err))
		}
	}
	return nil
}

// importFile uploads one file and registers the track, then removes the
// local copy so the folder doesn't re-import on restart.
func (w *Watcher) importFile(ctx context.Context, path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	contentType := audioExtensions[ext]

	storageKey := fmt.Sprintf("audio/%s%s", uuid.NewString(), ext)
	_, err := w.client.FPutObject(ctx, w.bucket, storageKey, path, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", path, err)
	}

	title := strings.TrimSuffix(filepath.Base(path), ext)
	track := &model.Track{
		OwnerID:    sql.NullInt64{Int64: w.ownerID, Valid: true},
		Title:      title,
		StorageKey: storageKey,
	}
	id, err := w.tracks.CreateTrack(track)
	if err != nil {
		return fmt.Errorf("failed to register imported track: %w", err)
	}

	if err := os.Remove(path); err != nil {
		logger.Warn("[Importer] could not remove imported file",
			logger.String("file", path), logger.ErrorField(err))
	}

	logger.Info("[Importer] track imported",
		logger.Int64("trackId", id), logger.String("title", title), logger.String("storageKey", storageKey))
	return nil
}
