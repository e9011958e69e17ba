package report

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"ask_analytics/stats"
)

// renderDashboard composes the full catalog into one page, headed by a
// summary chart whose subtitle carries the headline numbers.
func renderDashboard(b stats.Bundle, flows []stats.Flow) ([]byte, error) {
	page := components.NewPage()
	page.PageTitle = scopeTitle(b) + " - Dashboard"
	page.AddCharts(
		summaryBar(b),
		monthlyLine(b),
		hourlyBar(b),
		weekdayBar(b),
		operatorBar(b),
		schoolBar(b),
		queueBar(b),
		chordGraph(b, flows),
	)
	return renderToBytes(page)
}

// summaryBar is the headline card: wait and duration summaries as one
// small bar, with the scalar stats packed into the subtitle.
func summaryBar(b stats.Bundle) *charts.Bar {
	bar := charts.NewBar()
	subtitle := fmt.Sprintf(
		"%s | %d chats | %d operators | avg duration %.1f min | avg wait %.1f min | %.1f chat hours",
		b.Period, b.Basic.TotalChats, b.Basic.UniqueOperators,
		b.Basic.AvgDurationMin, b.Basic.AvgWaitMin, b.Basic.TotalChatHours,
	)
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Service Summary - " + scopeTitle(b),
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)
	labels := []string{"Avg duration", "Median duration", "Avg wait", "Median wait", "Wait p90"}
	data := []opts.BarData{
		{Value: round1(b.Basic.AvgDurationMin)},
		{Value: round1(b.Basic.MedianDurationMin)},
		{Value: round1(b.Basic.AvgWaitMin)},
		{Value: round1(b.Basic.MedianWaitMin)},
		{Value: round1(b.Basic.Wait90thMin)},
	}
	bar.SetXAxis(labels).AddSeries("Minutes", data)
	return bar
}
