package cmd

import (
	"jukeboxd/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the jukebox daemon",
	Long:  `Start the HTTP control server and the playback loop.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return server.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
