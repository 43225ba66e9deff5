// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/casemap/internal/api"
	"github.com/pdiddy/casemap/internal/secrets"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve outline conversion over HTTP",
	Long: `Serve starts an HTTP server. POST an outline to /api/outline to receive
the .xmind archive; malformed outlines return 422 with the offending line.
POST an archive to /api/inspect for its summary. GET /health reports
liveness. Nothing is written to disk.

When <secrets_dir>/casemap-api-token exists, /api routes require
"Authorization: Bearer <token>".`,
	RunE: runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.Int64("max-body-bytes", 4<<20, "largest accepted request body")
	flags.Duration("shutdown-timeout", 0, "graceful shutdown limit (default 10s)")
	flags.String("secrets-dir", ".secrets", "directory holding casemap-api-token")

	bindFlags(flags, map[string]string{
		"addr":             "server.addr",
		"max-body-bytes":   "server.max_body_bytes",
		"shutdown-timeout": "server.shutdown_timeout",
		"secrets-dir":      "server.secrets_dir",
	})

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	creds, err := secrets.Load(cfg.Server.SecretsDir, logger)
	if err != nil {
		return err
	}
	token := creds.Get(secrets.APIToken)
	if token == "" {
		logger.Warn("no api token configured, /api routes are open", "secrets_dir", cfg.Server.SecretsDir)
	}

	ctx, stop := signalContext()
	defer stop()
	return api.NewServer(cfg, logger, token).ListenAndServe(ctx)
}
