package cmd

import (
	"fmt"
	"os"

	"TuneVault/config"
	"TuneVault/db"

	"github.com/spf13/cobra"
)

var redisCmd = &cobra.Command{
	Use:   "redis",
	Short: "Check the Redis connection",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()
		if err := db.ConnectRedis(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Redis check failed: %v\n", err)
			os.Exit(1)
		}
		defer db.CloseRedis()
		if err := db.TestRedis(); err != nil {
			fmt.Fprintf(os.Stderr, "Redis round-trip failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Redis connection OK")
	},
}

func init() {
	rootCmd.AddCommand(redisCmd)
}
