package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jgoulah/energyviz/internal/session"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE:  runLogout,
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}

func runLogout(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store := session.NewStore(cfg.GetSessionFile())
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Println("✓ Logged out")
	return nil
}
