package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/spansk/internal/stats"
	"github.com/abhisek/spansk/internal/ui/components"
	"github.com/abhisek/spansk/internal/ui/theme"
)

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the ranked learner list",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		backend, err := openBackend(cmd, cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		svc := stats.NewService(backend, stats.WithLocation(cfg.Location))
		ranker := stats.NewRanker(svc, backend, cfg.FetchRate, nil)
		entries, err := ranker.CalculateLeaderboard(cmd.Context(), limit)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		fmt.Println(theme.Title.Render("Rangliste"))
		fmt.Println()
		fmt.Println(components.LeaderboardTable(entries))
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().IntP("limit", "n", 10, "Number of learners to show")
	leaderboardCmd.Flags().Bool("json", false, "Print entries as JSON")
}
