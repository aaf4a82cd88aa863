package cmd

import (
	"fmt"
	"os"

	"TuneVault/config"
	"TuneVault/storage"

	"github.com/spf13/cobra"
)

var minioCmd = &cobra.Command{
	Use:   "minio",
	Short: "Check the object storage connection",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if err := storage.InitMinio(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "MinIO check failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("MinIO connection OK")
	},
}

func init() {
	rootCmd.AddCommand(minioCmd)
}
