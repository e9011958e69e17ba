package report

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"ask_analytics/stats"
)

func trendScopeTitle(c stats.Comparison) string {
	if c.Scope == "" {
		return "Ask a Librarian Service"
	}
	return c.Scope
}

// renderTrendComparison composes the two-period trend page: the
// whole-period metric deltas up top, then chat volume and percentage
// change month by month.
func renderTrendComparison(c stats.Comparison) ([]byte, error) {
	page := components.NewPage()
	page.PageTitle = trendScopeTitle(c) + " - Trend Comparison"
	page.AddCharts(
		metricDeltaBar(c),
		monthlyVolumeBar(c),
		monthlyChangeLine(c),
	)
	return renderToBytes(page)
}

// metricDeltaBar shows each headline metric's value in both periods
// side by side.
func metricDeltaBar(c stats.Comparison) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Period Comparison - " + trendScopeTitle(c),
			Subtitle: fmt.Sprintf("%s vs %s", c.PeriodA, c.PeriodB),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
	)
	labels := make([]string, 0, len(c.Metrics))
	seriesA := make([]opts.BarData, 0, len(c.Metrics))
	seriesB := make([]opts.BarData, 0, len(c.Metrics))
	for _, m := range c.Metrics {
		labels = append(labels, m.Name)
		seriesA = append(seriesA, opts.BarData{Value: round1(m.PeriodA)})
		seriesB = append(seriesB, opts.BarData{Value: round1(m.PeriodB)})
	}
	bar.SetXAxis(labels).
		AddSeries(c.PeriodA.String(), seriesA).
		AddSeries(c.PeriodB.String(), seriesB)
	return bar
}

// monthlyVolumeBar pairs the n-th month of each period on one axis.
func monthlyVolumeBar(c stats.Comparison) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Monthly Chat Volume by Period"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
	)
	labels := make([]string, 0, len(c.Months))
	seriesA := make([]opts.BarData, 0, len(c.Months))
	seriesB := make([]opts.BarData, 0, len(c.Months))
	for _, m := range c.Months {
		labels = append(labels, m.LabelA+" / "+m.LabelB)
		seriesA = append(seriesA, opts.BarData{Value: m.Chats.PeriodA})
		seriesB = append(seriesB, opts.BarData{Value: m.Chats.PeriodB})
	}
	bar.SetXAxis(labels).
		AddSeries(c.PeriodA.String(), seriesA).
		AddSeries(c.PeriodB.String(), seriesB)
	return bar
}

// monthlyChangeLine plots the month-over-month percentage change for
// volume, duration, and wait. Months with a zero baseline render as
// gaps rather than a fabricated number.
func monthlyChangeLine(c stats.Comparison) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Monthly Change (%)"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
	)
	labels := make([]string, 0, len(c.Months))
	chats := make([]opts.LineData, 0, len(c.Months))
	durations := make([]opts.LineData, 0, len(c.Months))
	waits := make([]opts.LineData, 0, len(c.Months))
	for _, m := range c.Months {
		labels = append(labels, m.LabelA+" / "+m.LabelB)
		chats = append(chats, pctPoint(m.Chats.PctChange))
		durations = append(durations, pctPoint(m.AvgDuration.PctChange))
		waits = append(waits, pctPoint(m.AvgWait.PctChange))
	}
	line.SetXAxis(labels).
		AddSeries("Chats", chats).
		AddSeries("Avg duration", durations).
		AddSeries("Avg wait", waits)
	return line
}

func pctPoint(pct *float64) opts.LineData {
	if pct == nil {
		return opts.LineData{Value: nil}
	}
	return opts.LineData{Value: round1(*pct)}
}
