package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/energyviz/internal/aggregate"
)

var (
	listCollection string
	listSince      string
	listUntil      string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List daily totals from the local snapshot",
	Long:  `Displays per-day energy totals for the stored collections.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listCollection, "collection", "", "Filter by collection (consumption or generation)")
	listCmd.Flags().StringVar(&listSince, "since", "", "Only show days since this date (YYYY-MM-DD or relative like 7d)")
	listCmd.Flags().StringVar(&listUntil, "until", "", "Only show days until this date (YYYY-MM-DD)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	collections, err := collectionsFlag(listCollection)
	if err != nil {
		return err
	}
	start, end, err := dayBounds(listSince, listUntil)
	if err != nil {
		return err
	}

	// Open database
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	for _, c := range collections {
		records, err := db.ListRecords(c)
		if err != nil {
			return fmt.Errorf("listing data for %s: %w", c, err)
		}

		last, err := db.LastFetch(c)
		if err != nil {
			return err
		}
		if last == nil {
			fmt.Printf("No data found for %s (run 'energyviz fetch')\n", c)
			continue
		}

		days := aggregate.Daily(c, records, start, end)
		fmt.Printf("\n%s (fetched %s, %s records):\n", c.Label(), humanize.Time(last.FetchedAt), humanize.Comma(int64(last.RecordCount)))
		fmt.Println("----------------------------------------")
		fmt.Printf("%-12s  %14s\n", "Date", "kWh")
		fmt.Println("----------------------------------------")

		var total float64
		for _, day := range days {
			fmt.Printf("%-12s  %14s\n", day.DateString(), humanize.CommafWithDigits(day.KWh, 2))
			total += day.KWh
		}

		fmt.Println("----------------------------------------")
		fmt.Printf("Total: %s kWh (%d days)\n", humanize.CommafWithDigits(total, 2), len(days))
	}

	return nil
}
