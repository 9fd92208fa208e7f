package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/spansk/internal/stats"
	"github.com/abhisek/spansk/internal/store"
	"github.com/abhisek/spansk/internal/ui/components"
)

var statsCmd = &cobra.Command{
	Use:   "stats <user-id>",
	Short: "Show a learner's XP, streak, medal and badges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		backend, err := openBackend(cmd, cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		userID := args[0]
		svc := stats.NewService(backend, stats.WithLocation(cfg.Location))
		st, err := svc.CalculateUserStats(cmd.Context(), userID)
		if err != nil {
			return err
		}

		title := userID
		p, err := backend.GetProfile(cmd.Context(), userID)
		switch {
		case err == nil:
			title = p.DisplayName
		case !errors.Is(err, store.ErrNotFound):
			return err
		}

		width, _ := cmd.Flags().GetInt("width")
		fmt.Println(components.StatsCard(title, *st, st.Achievements(svc.Now()), width))
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("width", 60, "Card width in columns")
}
