package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jukeboxd",
	Short: "jukeboxd is a network-controlled audio jukebox daemon.",
	Long: `jukeboxd keeps a bounded queue of uploaded audio tracks and plays
them through the local audio output. Clients enqueue tracks and drive
playback (play, pause, stop, seek, skip, volume, next/prev) over a small
HTTP API.`,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
