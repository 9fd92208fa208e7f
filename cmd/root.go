package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/spansk/internal/config"
	"github.com/abhisek/spansk/internal/store"
	"github.com/abhisek/spansk/internal/store/postgres"
)

var rootCmd = &cobra.Command{
	Use:   "spansk",
	Short: "Rewards engine for the spansk grammar app",
	Long: "spansk serves XP, streaks, medals and the leaderboard for learners of\n" +
		"Spanish grammar, and records their exercise attempts.",
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides SPANSK_DB env var)")
	rootCmd.PersistentFlags().String("dsn", "", "Postgres connection URL (overrides SPANSK_DATABASE_URL; wins over --db)")
	rootCmd.PersistentFlags().String("env-file", "", "Load environment from this dotenv file instead of .env")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(leaderboardCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads dotenv and environment configuration, then applies
// the global flags on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var files []string
	if f, _ := cmd.Flags().GetString("env-file"); f != "" {
		files = append(files, f)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return config.Config{}, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DBPath = p
	}
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		cfg.DatabaseURL = dsn
	}
	return cfg, nil
}

// openBackend opens Postgres when a database URL is configured and the
// local SQLite file otherwise.
func openBackend(cmd *cobra.Command, cfg config.Config) (store.Backend, error) {
	if cfg.UsePostgres() {
		pg, err := postgres.Open(cmd.Context(), cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return pg, nil
	}

	path, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}

// resolveDBPath returns the configured SQLite path, falling back to the
// default XDG location.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, store.EnsureDir(cfg.DBPath)
	}
	return store.DefaultDBPath()
}
