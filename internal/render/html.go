// Package render draws aggregated series as an HTML dashboard page
// (line, bar and pie charts) using go-echarts.
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/jgoulah/energyviz/internal/aggregate"
)

// PageTitle is the HTML document title
const PageTitle = "Energy Dashboard"

// Round2 rounds a value for display. Aggregation itself never rounds.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LineChart plots the visible date datasets
func LineChart(data aggregate.SeriesData) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Energy Consumption vs Generation",
			Subtitle: fmt.Sprintf("%s to %s", data.Start, data.End),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "bottom"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kWh"}),
	)

	line.SetXAxis(data.Dates.Labels)
	for _, ds := range data.Datasets {
		points := make([]opts.LineData, 0, len(ds.Values))
		for _, v := range ds.Values {
			points = append(points, opts.LineData{Value: Round2(v)})
		}
		line.AddSeries(ds.Label, points)
	}
	return line
}

// BarChart plots categorical totals
func BarChart(title string, series aggregate.CategorySeries) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithYAxisOpts(opts.YAxis{Name: "kWh"}),
	)

	items := make([]opts.BarData, 0, len(series.Totals))
	for _, v := range series.Totals {
		items = append(items, opts.BarData{Value: Round2(v)})
	}
	bar.SetXAxis(categoryLabels(series.Labels)).
		AddSeries(title, items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: true, Position: "top"}))
	return bar
}

// PieChart plots categorical shares
func PieChart(title string, series aggregate.CategorySeries) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true, Trigger: "item"}),
		charts.WithLegendOpts(opts.Legend{Show: true, Top: "bottom"}),
	)

	labels := categoryLabels(series.Labels)
	items := make([]opts.PieData, 0, len(series.Totals))
	for i, v := range series.Totals {
		items = append(items, opts.PieData{Name: labels[i], Value: Round2(v)})
	}
	pie.AddSeries(title, items).
		SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: true}))
	return pie
}

// Page assembles the full dashboard
func Page(data aggregate.SeriesData) *components.Page {
	page := components.NewPage()
	page.PageTitle = PageTitle
	page.SetLayout(components.PageFlexLayout)

	page.AddCharts(
		LineChart(data),
		BarChart("Consumption by Sector", data.Sectors),
		PieChart("Sector Share", data.Sectors),
		BarChart("Generation by Source", data.Sources),
	)
	return page
}

// WriteHTML renders the dashboard page to w
func WriteHTML(w io.Writer, data aggregate.SeriesData) error {
	if err := Page(data).Render(w); err != nil {
		return fmt.Errorf("rendering dashboard: %w", err)
	}
	return nil
}

// HTML renders the dashboard page into memory
func HTML(data aggregate.SeriesData) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// categoryLabels gives the empty bucket a visible name
func categoryLabels(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		if l == "" {
			l = "(none)"
		}
		out[i] = l
	}
	return out
}
