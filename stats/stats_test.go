package stats

import (
	"math"
	"testing"
	"time"

	"ask_analytics/chatlog"
)

func tableFor(t *testing.T, start, end string, rows []chatlog.Record) chatlog.Table {
	t.Helper()
	dr, err := chatlog.ParseDateRange(start, end, time.UTC)
	if err != nil {
		t.Fatalf("parse range: %v", err)
	}
	table, err := chatlog.NewTable(rows, dr, "Toronto")
	if err != nil {
		t.Fatalf("build table: %v", err)
	}
	return table
}

func almost(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestComputeBasicThreeChats(t *testing.T) {
	day := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	table := tableFor(t, "2024-01-01", "2024-01-01", []chatlog.Record{
		{ID: 1, Operator: "a_tor", Started: day, DurationMinutes: 10},
		{ID: 2, Operator: "a_tor", Started: day.Add(time.Hour), DurationMinutes: 20},
		{ID: 3, Operator: "b_tor", Started: day.Add(2 * time.Hour), DurationMinutes: 30},
	})
	b := Compute(table, Options{})

	if b.Basic.TotalChats != 3 {
		t.Fatalf("expected 3 chats, got %d", b.Basic.TotalChats)
	}
	if !almost(b.Basic.AvgDurationMin, 20.0) {
		t.Fatalf("expected average duration 20.0, got %v", b.Basic.AvgDurationMin)
	}
	if !almost(b.Basic.MedianDurationMin, 20.0) {
		t.Fatalf("expected median duration 20.0, got %v", b.Basic.MedianDurationMin)
	}
	if b.Basic.UniqueOperators != 2 {
		t.Fatalf("expected 2 operators, got %d", b.Basic.UniqueOperators)
	}
	if !almost(b.Basic.TotalChatHours, 1.0) {
		t.Fatalf("expected 1 chat hour, got %v", b.Basic.TotalChatHours)
	}
	if !almost(b.Basic.AvgChatsPerDay, 3.0) {
		t.Fatalf("expected 3 chats per day, got %v", b.Basic.AvgChatsPerDay)
	}

	if len(b.Operators.Ranking) != 2 {
		t.Fatalf("expected 2 ranked operators, got %d", len(b.Operators.Ranking))
	}
	if b.Operators.Ranking[0].Operator != "a_tor" || b.Operators.Ranking[0].Chats != 2 {
		t.Fatalf("expected a_tor first with 2 chats, got %+v", b.Operators.Ranking[0])
	}
	if b.Operators.Ranking[1].Operator != "b_tor" || b.Operators.Ranking[1].Chats != 1 {
		t.Fatalf("expected b_tor second with 1 chat, got %+v", b.Operators.Ranking[1])
	}
}

func TestComputeEmptyTableIsAllZeros(t *testing.T) {
	table := tableFor(t, "2024-01-01", "2024-01-07", nil)
	b := Compute(table, Options{})

	if b.Basic != (BasicStats{}) {
		t.Fatalf("expected zeroed basic stats, got %+v", b.Basic)
	}
	if len(b.Operators.Ranking) != 0 {
		t.Fatalf("expected no ranking, got %d entries", len(b.Operators.Ranking))
	}
	if len(b.Time.ByMonth) != 0 || len(b.Time.PeakHours) != 0 {
		t.Fatalf("expected empty time buckets")
	}
}

func TestMedianEvenCount(t *testing.T) {
	if got := median([]float64{1, 2, 3, 4}); !almost(got, 2.5) {
		t.Fatalf("expected 2.5, got %v", got)
	}
}

func TestStdDevUsesSampleFormula(t *testing.T) {
	// Sample standard deviation of {2, 4, 4, 4, 5, 5, 7, 9} is
	// sqrt(32/7).
	got := stddev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !almost(got, math.Sqrt(32.0/7.0)) {
		t.Fatalf("unexpected stddev %v", got)
	}
	if stddev([]float64{5}) != 0 {
		t.Fatalf("single value has no spread")
	}
}

func TestPercentileNearestRank(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	if got := percentile(values, 0.9); !almost(got, 9) {
		t.Fatalf("expected 9, got %v", got)
	}
	if got := percentile([]float64{42}, 0.9); !almost(got, 42) {
		t.Fatalf("expected 42, got %v", got)
	}
}

func TestAvgChatsPerDayUsesActiveDays(t *testing.T) {
	// Four chats over two active days inside a week-long range.
	d1 := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 1, 4, 9, 0, 0, 0, time.UTC)
	table := tableFor(t, "2024-01-01", "2024-01-07", []chatlog.Record{
		{ID: 1, Started: d1},
		{ID: 2, Started: d1.Add(time.Hour)},
		{ID: 3, Started: d2},
		{ID: 4, Started: d2.Add(time.Hour)},
	})
	b := Compute(table, Options{})
	if !almost(b.Basic.AvgChatsPerDay, 2.0) {
		t.Fatalf("expected 2 chats per active day, got %v", b.Basic.AvgChatsPerDay)
	}
}
