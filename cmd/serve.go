package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/abhisek/spansk/internal/logger"
	"github.com/abhisek/spansk/internal/metrics"
	"github.com/abhisek/spansk/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}

		backend, err := openBackend(cmd, cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		if cfg.UsePostgres() {
			logger.Success("Connected to Postgres")
		} else {
			logger.Success("Opened SQLite database")
		}
		if cfg.AdminIDs.Len() == 0 {
			logger.Warning("No admin IDs configured; admin routes will reject every caller")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := server.New(cfg, backend, metrics.NewRegistry())
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Port to listen on (overrides SPANSK_PORT)")
}

