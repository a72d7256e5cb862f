// Package main provides the filedrop command-line interface.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"filedrop/internal/server"
)

// rootCmd is the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "filedrop",
	Short: "Minimal HTTP/1.1 file drop server",
	Long: `filedrop - a minimal HTTP/1.1 server for uploading and sharing files.

Files are confined to a single uploads directory. The server parses HTTP
itself over raw TCP and dispatches each connection to a fixed pool of
workers.`,
	Example: `  # Serve on the default localhost:7878
  filedrop serve

  # Serve on all interfaces with 8 workers
  filedrop serve --addr 0.0.0.0:8080 --workers 8`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			server.DefaultLogger.SetLevel(server.LogLevelDebug)
		}
	},
}

// Execute runs the root command. Called once from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
}
