package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mum4k/termdash/cell"
	"github.com/mum4k/termdash/widgets/barchart"
	"github.com/mum4k/termdash/widgets/linechart"
	"github.com/mum4k/termdash/widgets/text"

	"github.com/jgoulah/energyviz/internal/aggregate"
	"github.com/jgoulah/energyviz/internal/filter"
	"github.com/jgoulah/energyviz/pkg/models"
)

var seriesColors = map[models.Collection]cell.Color{
	models.Consumption: cell.ColorBlue,
	models.Generation:  cell.ColorGreen,
}

// CreateLineChart plots the visible datasets against the day labels
func CreateLineChart(data aggregate.SeriesData) (*linechart.LineChart, error) {
	lc, err := linechart.New(
		linechart.AxesCellOpts(cell.FgColor(cell.ColorWhite)),
		linechart.YLabelCellOpts(cell.FgColor(cell.ColorYellow)),
		linechart.XLabelCellOpts(cell.FgColor(cell.ColorCyan)),
		linechart.YAxisAdaptive(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating line chart: %w", err)
	}

	if len(data.Dates.Labels) == 0 {
		return lc, nil
	}

	xLabels := make(map[int]string, len(data.Dates.Labels))
	for i, day := range data.Dates.Labels {
		xLabels[i] = day
	}

	for _, ds := range data.Datasets {
		if err := lc.Series(string(ds.Collection), ds.Values,
			linechart.SeriesCellOpts(cell.FgColor(seriesColors[ds.Collection])),
			linechart.SeriesXLabels(xLabels),
		); err != nil {
			return nil, fmt.Errorf("plotting %s: %w", ds.Collection, err)
		}
	}
	return lc, nil
}

// CreateBarChart draws categorical totals rounded to whole kWh
func CreateBarChart(series aggregate.CategorySeries, color cell.Color) (*barchart.BarChart, error) {
	labels := make([]string, len(series.Labels))
	for i, l := range series.Labels {
		if l == "" {
			l = "(none)"
		}
		labels[i] = l
	}

	bc, err := barchart.New(
		barchart.BarColors(repeatColor(color, len(labels))),
		barchart.ValueColors(repeatColor(cell.ColorBlack, len(labels))),
		barchart.ShowValues(),
		barchart.Labels(labels),
	)
	if err != nil {
		return nil, fmt.Errorf("creating bar chart: %w", err)
	}

	if len(series.Totals) == 0 {
		return bc, nil
	}

	values := make([]int, len(series.Totals))
	maxValue := 1
	for i, v := range series.Totals {
		values[i] = int(math.Round(math.Max(v, 0)))
		maxValue = max(maxValue, values[i])
	}
	if err := bc.Values(values, maxValue); err != nil {
		return nil, fmt.Errorf("setting bar values: %w", err)
	}
	return bc, nil
}

func repeatColor(c cell.Color, n int) []cell.Color {
	out := make([]cell.Color, n)
	for i := range out {
		out[i] = c
	}
	return out
}

// CreateTextWidget creates the filter/status panel
func CreateTextWidget() (*text.Text, error) {
	return text.New(text.WrapAtWords())
}

// LineSpec is one line of the status panel
type LineSpec struct {
	Text  string
	Color cell.Color
}

// BuildStatusLines describes the current selection and the last fetch
func BuildStatusLines(st *filter.State, data aggregate.SeriesData, fetchStatus string) []LineSpec {
	var lines []LineSpec
	appendLine := func(txt string, color cell.Color) {
		lines = append(lines, LineSpec{Text: txt, Color: color})
	}

	start, end := st.Bounds()
	appendLine(fmt.Sprintf("Range: %s to %s (%d days)", start, end, st.Range.End-st.Range.Start+1), cell.ColorYellow)

	for _, c := range models.Collections {
		mark := "[ ]"
		if st.Visible(c) {
			mark = "[x]"
		}
		total := sum(data.Dates.Values(c))
		appendLine(fmt.Sprintf("%s %s  %s kWh", mark, c.Label(), humanize.CommafWithDigits(total, 2)), seriesColors[c])
	}

	appendLine("", 0)
	appendLine("Consumption locations (1-9 toggle, a all):", cell.ColorCyan)
	for i, loc := range st.ConsumptionLocations.Known() {
		appendLine(fmt.Sprintf("  %s %s", selectionMark(i, st.ConsumptionLocations.Contains(loc)), displayName(loc)), 0)
	}
	appendLine("Generation locations (A all):", cell.ColorCyan)
	for _, loc := range st.GenerationLocations.Known() {
		mark := "[ ]"
		if st.GenerationLocations.Contains(loc) {
			mark = "[x]"
		}
		appendLine(fmt.Sprintf("    %s %s", mark, displayName(loc)), 0)
	}

	appendLine("", 0)
	if fetchStatus != "" {
		color := cell.ColorGreen
		if strings.Contains(fetchStatus, "failed") {
			color = cell.ColorRed
		}
		appendLine(fetchStatus, color)
	}
	return lines
}

func selectionMark(i int, selected bool) string {
	mark := "[ ]"
	if selected {
		mark = "[x]"
	}
	if i < 9 {
		return fmt.Sprintf("%d %s", i+1, mark)
	}
	return "  " + mark
}

func displayName(v string) string {
	if v == "" {
		return "(none)"
	}
	return v
}

func sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// UpdateStatusText rewrites the status panel
func UpdateStatusText(w *text.Text, lines []LineSpec) error {
	w.Reset()
	for _, ln := range lines {
		var err error
		if ln.Color != 0 {
			err = w.Write(ln.Text+"\n", text.WriteCellOpts(cell.FgColor(ln.Color)))
		} else {
			err = w.Write(ln.Text + "\n")
		}
		if err != nil {
			return fmt.Errorf("writing status: %w", err)
		}
	}
	return nil
}
