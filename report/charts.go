package report

import (
	"bytes"
	"fmt"
	"io"
	"sort"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"ask_analytics/chatlog"
	"ask_analytics/stats"
)

func scopeTitle(b stats.Bundle) string {
	if b.Scope == "" {
		return "Ask a Librarian Service"
	}
	return b.Scope
}

func periodSubtitle(b stats.Bundle) string {
	return fmt.Sprintf("%s | %d chats", b.Period, b.Basic.TotalChats)
}

func hourlyBar(b stats.Bundle) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Hourly Chat Distribution - " + scopeTitle(b),
			Subtitle: periodSubtitle(b),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)
	labels := make([]string, 24)
	data := make([]opts.BarData, 24)
	for h := 0; h < 24; h++ {
		labels[h] = fmt.Sprintf("%02d:00", h)
		data[h] = opts.BarData{Value: b.Time.ByHour[h]}
	}
	bar.SetXAxis(labels).AddSeries("Chats", data)
	return bar
}

func weekdayBar(b stats.Bundle) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Chats by Day of Week"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)
	labels := make([]string, 7)
	data := make([]opts.BarData, 7)
	for d := 0; d < 7; d++ {
		labels[d] = stats.WeekdayCount{Weekday: d}.Label()
		data[d] = opts.BarData{Value: b.Time.ByWeekday[d]}
	}
	bar.SetXAxis(labels).AddSeries("Chats", data)
	return bar
}

func operatorBar(b stats.Bundle) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Operator Workload - " + scopeTitle(b),
			Subtitle: periodSubtitle(b),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
		charts.WithLegendOpts(opts.Legend{Show: true}),
	)
	labels := make([]string, 0, len(b.Operators.Ranking))
	chats := make([]opts.BarData, 0, len(b.Operators.Ranking))
	avgDur := make([]opts.BarData, 0, len(b.Operators.Ranking))
	for _, load := range b.Operators.Ranking {
		labels = append(labels, load.Operator)
		chats = append(chats, opts.BarData{Value: load.Chats})
		avgDur = append(avgDur, opts.BarData{Value: round1(load.AvgDurationMin)})
	}
	bar.SetXAxis(labels).
		AddSeries("Chats", chats).
		AddSeries("Avg duration (min)", avgDur)
	return bar
}

func monthlyLine(b stats.Bundle) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Monthly Chat Volume - " + scopeTitle(b),
			Subtitle: periodSubtitle(b),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)
	labels := make([]string, 0, len(b.Time.ByMonth))
	data := make([]opts.LineData, 0, len(b.Time.ByMonth))
	for _, m := range b.Time.ByMonth {
		labels = append(labels, m.Label())
		data = append(data, opts.LineData{Value: m.Chats})
	}
	line.SetXAxis(labels).AddSeries("Chats", data,
		charts.WithLabelOpts(opts.Label{Show: true}))
	return line
}

// schoolBar folds the per-queue volumes into their owning institutions.
// Queues no registered school claims are left out.
func schoolBar(b stats.Bundle) *charts.Bar {
	totals := make(map[string]int)
	for _, q := range b.Queues.PerQueue {
		school, ok := chatlog.SchoolByQueue(q.Queue)
		if !ok {
			continue
		}
		totals[school.ShortName] += q.Chats
	}
	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Chat Volume by School"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)
	data := make([]opts.BarData, 0, len(names))
	for _, name := range names {
		data = append(data, opts.BarData{Value: totals[name]})
	}
	bar.SetXAxis(names).AddSeries("Chats", data)
	return bar
}

func queueBar(b stats.Bundle) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Chat Volume by Queue"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: true}),
	)
	labels := make([]string, 0, len(b.Queues.PerQueue))
	data := make([]opts.BarData, 0, len(b.Queues.PerQueue))
	for _, q := range b.Queues.PerQueue {
		labels = append(labels, q.Queue)
		data = append(data, opts.BarData{Value: q.Chats})
	}
	bar.SetXAxis(labels).AddSeries("Chats", data)
	return bar
}

func renderTimeDistribution(b stats.Bundle) ([]byte, error) {
	page := components.NewPage()
	page.PageTitle = scopeTitle(b) + " - Time Distribution"
	page.AddCharts(hourlyBar(b), weekdayBar(b))
	return renderToBytes(page)
}

func renderOperatorPerformance(b stats.Bundle) ([]byte, error) {
	bar := operatorBar(b)
	bar.Initialization.PageTitle = scopeTitle(b) + " - Operator Performance"
	return renderToBytes(bar)
}

func renderSeasonalTrend(b stats.Bundle) ([]byte, error) {
	line := monthlyLine(b)
	line.Initialization.PageTitle = scopeTitle(b) + " - Seasonal Trend"
	return renderToBytes(line)
}

type renderable interface {
	Render(w io.Writer) error
}

func renderToBytes(r renderable) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.Render(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
