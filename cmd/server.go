package cmd

import (
	"TuneVault/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the TuneVault HTTP server",
	Long:  `Start the TuneVault API server: library, playlists, featured set and playback state.`,
	Run: func(cmd *cobra.Command, args []string) {
		server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
