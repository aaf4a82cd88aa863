package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"TuneVault/config"
	"TuneVault/core/importer"
	"TuneVault/db"
	"TuneVault/logger"
	"TuneVault/repository"
	"TuneVault/storage"

	"github.com/spf13/cobra"
)

var importOwner int64

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Watch a local folder and import dropped audio files",
	Long:  `Watch IMPORT_DIR for audio files; each one is uploaded to object storage and registered as a track for the given owner.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if cfg.ImportDir == "" {
			fmt.Fprintln(os.Stderr, "IMPORT_DIR is not configured")
			os.Exit(1)
		}
		if importOwner <= 0 {
			fmt.Fprintln(os.Stderr, "--owner is required")
			os.Exit(1)
		}

		logger.InitLogger(logger.Config{Level: logger.InfoLevel, OutputPath: cfg.LogPath,
			MaxSize: 100, MaxBackups: 5, MaxAge: 30, Compress: true})

		if err := storage.InitMinio(cfg); err != nil {
			log.Fatalf("Failed to initialize MinIO: %v", err)
		}
		if err := db.ConnectDB(cfg); err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer db.DB.Close()

		trackRepo := repository.NewMySQLTrackRepository(db.DB)
		watcher := importer.NewWatcher(cfg.ImportDir, importOwner,
			storage.GetMinioClient(), cfg.MinioBucket, trackRepo)

		ctx, cancel := context.WithCancel(context.Background())
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-stop
			cancel()
		}()

		if err := watcher.Run(ctx); err != nil && err != context.Canceled {
			log.Fatalf("Importer stopped: %v", err)
		}
	},
}

func init() {
	importCmd.Flags().Int64Var(&importOwner, "owner", 0, "user id that owns imported tracks")
	rootCmd.AddCommand(importCmd)
}
