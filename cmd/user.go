package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/abhisek/spansk/internal/logger"
	"github.com/abhisek/spansk/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage learner profiles",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create or rename a learner profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		name, _ := cmd.Flags().GetString("name")
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("--name is required")
		}
		if id == "" {
			id = uuid.NewString()
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		backend, err := openBackend(cmd, cfg)
		if err != nil {
			return err
		}
		defer backend.Close()

		p, err := backend.UpsertProfile(cmd.Context(), store.Profile{ID: id, DisplayName: name})
		if err != nil {
			return err
		}
		logger.Success("Profile %s saved as %q", p.ID, p.DisplayName)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List learner profiles",
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

		profiles, err := backend.ListProfiles(cmd.Context(), store.MaxProfiles)
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			fmt.Println("No profiles found.")
			return nil
		}

		fmt.Printf("%-36s  %-24s  %s\n", "ID", "Name", "Created")
		fmt.Println(strings.Repeat("─", 80))
		for _, p := range profiles {
			fmt.Printf("%-36s  %-24s  %s\n", p.ID, p.DisplayName, p.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	userAddCmd.Flags().String("id", "", "Profile ID (generated when empty)")
	userAddCmd.Flags().String("name", "", "Display name (required)")

	userCmd.AddCommand(userAddCmd)
	userCmd.AddCommand(userListCmd)
}
