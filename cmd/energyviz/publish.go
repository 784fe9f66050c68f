package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/energyviz/internal/aggregate"
	"github.com/jgoulah/energyviz/internal/publisher"
)

var (
	publishCollection string
	publishSince      string
	publishUntil      string
	publishLimit      int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish daily totals to MQTT",
	Long: `Reads the local snapshot and publishes one retained message per day to
<topic_prefix>/<collection>/daily with {"date", "energy_kwh"}.`,
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishCollection, "collection", "", "Collection to publish (consumption or generation, default: both)")
	publishCmd.Flags().StringVar(&publishSince, "since", "", "Only publish days since this date (YYYY-MM-DD or relative like 7d)")
	publishCmd.Flags().StringVar(&publishUntil, "until", "", "Only publish days until this date (YYYY-MM-DD)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of days per collection (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	collections, err := collectionsFlag(publishCollection)
	if err != nil {
		return err
	}
	start, end, err := dayBounds(publishSince, publishUntil)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	pub, err := publisher.New(cfg)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	totalPublished := 0
	for _, c := range collections {
		records, err := db.ListRecords(c)
		if err != nil {
			return fmt.Errorf("listing data for %s: %w", c, err)
		}

		days := aggregate.Daily(c, records, start, end)
		if len(days) == 0 {
			fmt.Printf("No data in date range for %s\n", c)
			continue
		}

		if publishLimit > 0 && len(days) > publishLimit {
			fmt.Printf("Limiting to the last %d days (--limit flag)\n", publishLimit)
		}
		days = publisher.LatestDays(days, publishLimit)

		fmt.Printf("Publishing %d days for %s to %s...\n", len(days), c, pub.Topic(c))
		n, err := pub.PublishDaily(days)
		totalPublished += n
		if err != nil {
			fmt.Printf("⚠ Published %d/%d days for %s: %v\n", n, len(days), c, err)
			continue
		}
		fmt.Printf("✓ Published %d days for %s\n", n, c)
	}

	fmt.Printf("\nTotal days published: %d\n", totalPublished)
	return nil
}
