package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/energyviz/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the API, session and local snapshot state",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	fmt.Printf("Config:   %s\n", getConfigPath())
	fmt.Printf("API:      %s\n", cfg.GetBaseURL())

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}
	if store.Authenticated() {
		fmt.Printf("Session:  ✓ logged in (%s)\n", store.Path())
	} else {
		fmt.Println("Session:  ⚠ not logged in")
	}

	start, end := cfg.GetDateBounds()
	windowStart, windowEnd := cfg.GetWindow()
	fmt.Printf("Dates:    %s to %s (%s range, window %s to %s)\n", start, end, cfg.GetRangePolicy(), windowStart, windowEnd)

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	fmt.Printf("Database: %s\n", getDBPath())
	for _, c := range models.Collections {
		last, err := db.LastFetch(c)
		if err != nil {
			return err
		}
		if last == nil {
			fmt.Printf("  ⚠ %-11s no snapshot\n", c)
			continue
		}
		fmt.Printf("  ✓ %-11s %s records, fetched %s\n", c, humanize.Comma(int64(last.RecordCount)), humanize.Time(last.FetchedAt))
	}
	return nil
}
