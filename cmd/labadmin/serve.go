package main

import (
	"github.com/spf13/cobra"

	"github.com/jwalitptl/labadmin/internal/stub"
	"github.com/jwalitptl/labadmin/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the fixture API server",
	Long: `Serve starts an in-memory API with seeded fixtures for every
resource and settings page. It speaks the same envelopes, CSRF dance
and validation errors as the production backend, so the client can be
developed and demoed without one.

Data lives in memory only and resets on restart.

Example:
  labadmin serve --port 8090`,
	RunE: runServe,
}

var servePort int

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	port := servePort
	if port == 0 {
		port = cfg.Stub.Port
	}

	log := logger.NewLogger(nil)
	opts := []stub.Option{stub.WithLogger(log)}
	if cfg.API.Token != "" {
		opts = append(opts, stub.WithToken(cfg.API.Token))
	}

	srv := stub.NewServer(opts...)
	log.Info("fixture server listening", "port", port)
	return srv.Run(port)
}
