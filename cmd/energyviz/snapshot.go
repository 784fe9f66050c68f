package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jgoulah/energyviz/internal/render"
	"github.com/jgoulah/energyviz/internal/snapshot"
)

var (
	snapshotOut     string
	snapshotOffline bool
	snapshotTimeout time.Duration
	snapshotVisible bool
	snapshotFlags   selectionFlags
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture the HTML dashboard as PNG or PDF",
	Long: `Renders the HTML dashboard and captures it with headless Chrome.
The output format follows the file extension (.png or .pdf).`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().StringVar(&snapshotOut, "out", "dashboard.png", "Output file (.png or .pdf)")
	snapshotCmd.Flags().BoolVar(&snapshotOffline, "offline", false, "Read the local snapshot instead of the API")
	snapshotCmd.Flags().DurationVar(&snapshotTimeout, "timeout", time.Minute, "Browser timeout")
	snapshotCmd.Flags().BoolVar(&snapshotVisible, "visible", false, "Show the browser window while capturing")
	snapshotFlags.register(snapshotCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	if _, err := snapshot.FormatFor(snapshotOut); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), snapshotTimeout)
	defer cancel()

	view, err := loadView(ctx, cfg, snapshotOffline)
	if err != nil {
		return err
	}
	defer view.Close()

	if err := snapshotFlags.apply(view); err != nil {
		return err
	}

	page, err := render.HTML(view.Series())
	if err != nil {
		return err
	}

	opts := snapshot.DefaultOptions()
	opts.Visible = snapshotVisible
	fmt.Println("Capturing dashboard with browser...")
	if err := snapshot.WriteFile(ctx, snapshotOut, page, opts); err != nil {
		return err
	}
	fmt.Printf("✓ Wrote %s\n", snapshotOut)
	return nil
}
