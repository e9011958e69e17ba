// Package stats computes deterministic descriptive aggregates over chat
// tables. Every function is a pure function of its inputs; an empty table
// yields explicit zeros rather than an error.
package stats

import (
	"math"
	"sort"

	"ask_analytics/chatlog"
)

// Options bound the ranked result sizes.
type Options struct {
	TopOperators int
	PeakBuckets  int
}

func (o Options) withDefaults() Options {
	if o.TopOperators <= 0 {
		o.TopOperators = 5
	}
	if o.PeakBuckets <= 0 {
		o.PeakBuckets = 3
	}
	return o
}

// Bundle is the full statistics output for one scope and period. One
// typed record per metric group; no any-shaped maps.
type Bundle struct {
	Scope     string
	Period    chatlog.DateRange
	Basic     BasicStats
	Operators OperatorAnalysis
	Time      TimeAnalysis
	Queues    QueueAnalysis
}

// BasicStats are the scalar volume, duration, and wait summaries. All
// durations are minutes.
type BasicStats struct {
	TotalChats        int
	UniqueOperators   int
	AvgDurationMin    float64
	MedianDurationMin float64
	DurationStdDevMin float64
	AvgWaitMin        float64
	MedianWaitMin     float64
	Wait90thMin       float64
	AvgChatsPerDay    float64
	TotalChatHours    float64
}

// Compute builds the complete bundle for a table.
func Compute(t chatlog.Table, opts Options) Bundle {
	opts = opts.withDefaults()
	return Bundle{
		Scope:     t.Scope,
		Period:    t.Range,
		Basic:     computeBasic(t),
		Operators: computeOperators(t, opts.TopOperators),
		Time:      computeTime(t, opts.PeakBuckets),
		Queues:    computeQueues(t),
	}
}

func computeBasic(t chatlog.Table) BasicStats {
	rows := t.Rows()
	if len(rows) == 0 {
		return BasicStats{}
	}

	durations := make([]float64, 0, len(rows))
	waits := make([]float64, 0, len(rows))
	operators := make(map[string]struct{})
	activeDays := make(map[string]struct{})
	var totalDuration float64
	for _, r := range rows {
		durations = append(durations, r.DurationMinutes)
		waits = append(waits, r.WaitMinutes)
		totalDuration += r.DurationMinutes
		if r.Operator != "" {
			operators[r.Operator] = struct{}{}
		}
		activeDays[r.Started.Format("2006-01-02")] = struct{}{}
	}

	return BasicStats{
		TotalChats:        len(rows),
		UniqueOperators:   len(operators),
		AvgDurationMin:    mean(durations),
		MedianDurationMin: median(durations),
		DurationStdDevMin: stddev(durations),
		AvgWaitMin:        mean(waits),
		MedianWaitMin:     median(waits),
		Wait90thMin:       percentile(waits, 0.9),
		AvgChatsPerDay:    float64(len(rows)) / float64(len(activeDays)),
		TotalChatHours:    totalDuration / 60,
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func stddev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// percentile uses the nearest-rank method on the sorted values.
func percentile(values []float64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	rank := int(math.Ceil(p*float64(n))) - 1
	if rank < 0 {
		rank = 0
	}
	if rank >= n {
		rank = n - 1
	}
	return sorted[rank]
}
