package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"filedrop/internal/server"
)

var (
	serveConfigFile   string
	serveAddr         string
	serveWorkers      int
	serveUploadsDir   string
	serveTemplatesDir string
	serveAuditDB      string
	serveRateLimit    int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the file drop server",
	Long: `Start the HTTP/1.1 file drop server.

The uploads directory is created if it does not exist. Configuration is
read from defaults, then an optional YAML config file, then FD_* environment
variables, then flags.`,
	Example: `  # Defaults (localhost:7878, 4 workers, ./uploads, ./templates)
  filedrop serve

  # With a config file and an audit database
  filedrop serve --config filedrop.yaml --audit-db state/audit.db`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := server.LoadConfig(serveConfigFile)
		if err != nil {
			return err
		}

		// Flags beat file and environment.
		if cmd.Flags().Changed("addr") {
			cfg.Addr = serveAddr
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers = serveWorkers
		}
		if cmd.Flags().Changed("uploads-dir") {
			cfg.UploadsDir = serveUploadsDir
		}
		if cmd.Flags().Changed("templates-dir") {
			cfg.TemplatesDir = serveTemplatesDir
		}
		if cmd.Flags().Changed("audit-db") {
			cfg.AuditDB = serveAuditDB
		}
		if cmd.Flags().Changed("rate-limit") {
			cfg.RateLimit = serveRateLimit
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		srv, err := server.New(cfg)
		if err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			server.Info("shutting down", map[string]any{"signal": sig.String()})
			return srv.Close()
		case err := <-errCh:
			_ = srv.Close()
			return err
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "Path to a YAML config file")
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "localhost:7878", "Address to listen on")
	serveCmd.Flags().IntVarP(&serveWorkers, "workers", "w", 4, "Number of worker threads")
	serveCmd.Flags().StringVar(&serveUploadsDir, "uploads-dir", "uploads", "Directory holding uploaded files")
	serveCmd.Flags().StringVar(&serveTemplatesDir, "templates-dir", "templates", "Directory holding the HTML templates")
	serveCmd.Flags().StringVar(&serveAuditDB, "audit-db", "", "SQLite audit database path (empty disables auditing)")
	serveCmd.Flags().IntVar(&serveRateLimit, "rate-limit", 0, "Requests per minute per IP (0 disables)")
}
