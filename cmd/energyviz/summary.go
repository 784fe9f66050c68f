package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/jgoulah/energyviz/internal/aggregate"
	"github.com/jgoulah/energyviz/pkg/models"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the sector and source breakdown of the local snapshot",
	RunE:  runSummary,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}

var (
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#87CEEB"))
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")).Width(18)
	trackStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#45475A"))
	barColors    = map[models.Field]lipgloss.Color{
		models.FieldSector: lipgloss.Color("#89B4FA"),
		models.FieldSource: lipgloss.Color("#A6E3A1"),
	}
)

const barWidth = 30

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	consumption, err := db.ListRecords(models.Consumption)
	if err != nil {
		return err
	}
	generation, err := db.ListRecords(models.Generation)
	if err != nil {
		return err
	}

	fmt.Println(renderBreakdown("Consumption by sector", aggregate.ByCategory(consumption, models.FieldSector)))
	fmt.Println(renderBreakdown("Generation by source", aggregate.ByCategory(generation, models.FieldSource)))
	return nil
}

// renderBreakdown draws one bar per category with its share of the total
func renderBreakdown(title string, series aggregate.CategorySeries) string {
	var sb strings.Builder
	sb.WriteString(headingStyle.Render(title) + "\n")

	total := series.Sum()
	if len(series.Labels) == 0 || total <= 0 {
		sb.WriteString("  no data\n")
		return sb.String()
	}

	barStyle := lipgloss.NewStyle().Foreground(barColors[series.Field])
	for i, label := range series.Labels {
		if label == "" {
			label = "(none)"
		}
		share := series.Totals[i] / total
		filled := min(max(int(share*barWidth+0.5), 0), barWidth)
		sb.WriteString(fmt.Sprintf("  %s %s%s %5.1f%%  %s kWh\n",
			labelStyle.Render(label),
			barStyle.Render(strings.Repeat("█", filled)),
			trackStyle.Render(strings.Repeat("░", barWidth-filled)),
			share*100,
			humanize.CommafWithDigits(series.Totals[i], 2),
		))
	}
	sb.WriteString(fmt.Sprintf("  %s %s kWh\n", labelStyle.Render("total"), humanize.CommafWithDigits(total, 2)))
	return sb.String()
}
