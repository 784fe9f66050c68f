package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jgoulah/energyviz/internal/render"
)

var (
	renderOut     string
	renderOffline bool
	renderFlags   selectionFlags
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Write the dashboard as a static HTML page",
	RunE:  runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderOut, "out", "dashboard.html", "Output HTML file")
	renderCmd.Flags().BoolVar(&renderOffline, "offline", false, "Read the local snapshot instead of the API")
	renderFlags.register(renderCmd)
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	view, err := loadView(context.Background(), cfg, renderOffline)
	if err != nil {
		return err
	}
	defer view.Close()

	if err := renderFlags.apply(view); err != nil {
		return err
	}

	f, err := os.Create(renderOut)
	if err != nil {
		return fmt.Errorf("creating %s: %w", renderOut, err)
	}
	defer f.Close()

	data := view.Series()
	if err := render.WriteHTML(f, data); err != nil {
		return err
	}

	fmt.Printf("✓ Wrote %s (%s to %s, %d days with data)\n", renderOut, data.Start, data.End, len(data.Dates.Labels))
	return nil
}
