package stats

import (
	"time"

	"ask_analytics/chatlog"
)

// Metric names used by period comparisons.
const (
	MetricTotalChats      = "total_chats"
	MetricAvgDuration     = "avg_duration_min"
	MetricMedianDuration  = "median_duration_min"
	MetricAvgWait         = "avg_wait_min"
	MetricUniqueOperators = "unique_operators"
)

// MetricDelta compares one metric across two periods. PctChange is nil
// when the baseline is zero; a zero baseline never produces an infinity
// or an error.
type MetricDelta struct {
	Name      string
	PeriodA   float64
	PeriodB   float64
	Delta     float64
	PctChange *float64
}

// MonthDelta compares one pair of calendar months, the n-th month of
// the first period against the n-th of the second. A month beyond the
// shorter period's end carries a "-" label and zero values.
type MonthDelta struct {
	LabelA string
	LabelB string

	Chats       MetricDelta
	AvgDuration MetricDelta
	AvgWait     MetricDelta
}

// Comparison is the two-period delta report: whole-period metric deltas
// plus a month-by-month trend breakdown.
type Comparison struct {
	Scope   string
	PeriodA chatlog.DateRange
	PeriodB chatlog.DateRange
	Metrics []MetricDelta
	Months  []MonthDelta
}

// Compare computes per-metric values for both periods with the signed
// difference and percentage change. Empty periods compare as zeros, so a
// scope with no baseline traffic reports nil percentage changes rather
// than failing.
func Compare(a, b Bundle) Comparison {
	cmp := Comparison{Scope: a.Scope, PeriodA: a.Period, PeriodB: b.Period}
	if cmp.Scope == "" {
		cmp.Scope = b.Scope
	}
	pairs := []struct {
		name string
		av   float64
		bv   float64
	}{
		{MetricTotalChats, float64(a.Basic.TotalChats), float64(b.Basic.TotalChats)},
		{MetricAvgDuration, a.Basic.AvgDurationMin, b.Basic.AvgDurationMin},
		{MetricMedianDuration, a.Basic.MedianDurationMin, b.Basic.MedianDurationMin},
		{MetricAvgWait, a.Basic.AvgWaitMin, b.Basic.AvgWaitMin},
		{MetricUniqueOperators, float64(a.Basic.UniqueOperators), float64(b.Basic.UniqueOperators)},
	}
	for _, p := range pairs {
		cmp.Metrics = append(cmp.Metrics, MetricDelta{
			Name:      p.name,
			PeriodA:   p.av,
			PeriodB:   p.bv,
			Delta:     p.bv - p.av,
			PctChange: pctChange(p.av, p.bv),
		})
	}
	cmp.Months = compareMonths(a, b)
	return cmp
}

// compareMonths pairs the calendar months of the two periods by
// position, so a year-over-year comparison lines September up with
// September. Months a period covers but logged no chats in still appear
// with zero values.
func compareMonths(a, b Bundle) []MonthDelta {
	ma := monthsOf(a)
	mb := monthsOf(b)
	n := len(ma)
	if len(mb) > n {
		n = len(mb)
	}
	var out []MonthDelta
	for i := 0; i < n; i++ {
		var av, bv MonthCount
		labelA, labelB := "-", "-"
		if i < len(ma) {
			av = ma[i]
			labelA = av.Label()
		}
		if i < len(mb) {
			bv = mb[i]
			labelB = bv.Label()
		}
		out = append(out, MonthDelta{
			LabelA:      labelA,
			LabelB:      labelB,
			Chats:       monthMetric(MetricTotalChats, float64(av.Chats), float64(bv.Chats)),
			AvgDuration: monthMetric(MetricAvgDuration, av.AvgDurationMin, bv.AvgDurationMin),
			AvgWait:     monthMetric(MetricAvgWait, av.AvgWaitMin, bv.AvgWaitMin),
		})
	}
	return out
}

func monthMetric(name string, av, bv float64) MetricDelta {
	return MetricDelta{
		Name:      name,
		PeriodA:   av,
		PeriodB:   bv,
		Delta:     bv - av,
		PctChange: pctChange(av, bv),
	}
}

// monthsOf enumerates every calendar month the bundle's period covers,
// in order, merging in the bucketed volumes. Months outside the bucketed
// data stay at zero.
func monthsOf(b Bundle) []MonthCount {
	if b.Period.Start.IsZero() {
		return nil
	}
	byKey := make(map[int]MonthCount, len(b.Time.ByMonth))
	for _, m := range b.Time.ByMonth {
		byKey[m.Year*100+int(m.Month)] = m
	}
	var out []MonthCount
	cur := time.Date(b.Period.Start.Year(), b.Period.Start.Month(), 1, 0, 0, 0, 0, b.Period.Start.Location())
	for !cur.After(b.Period.End) {
		key := cur.Year()*100 + int(cur.Month())
		m, ok := byKey[key]
		if !ok {
			m = MonthCount{Year: cur.Year(), Month: cur.Month()}
		}
		out = append(out, m)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// Metric returns the named delta, if present.
func (c Comparison) Metric(name string) (MetricDelta, bool) {
	for _, m := range c.Metrics {
		if m.Name == name {
			return m, true
		}
	}
	return MetricDelta{}, false
}

func pctChange(base, current float64) *float64 {
	if base == 0 {
		return nil
	}
	v := (current - base) / base * 100
	return &v
}
