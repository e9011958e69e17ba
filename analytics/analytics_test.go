package analytics

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ask_analytics/chatlog"
	"ask_analytics/config"
	apperrors "ask_analytics/errors"
	"ask_analytics/internal/store"
	"ask_analytics/lh3"
)

// fakeSource serves canned chats keyed by day and can be told to fail.
type fakeSource struct {
	chats map[string][]lh3.Chat
	fail  map[string]error
	calls int
}

func (f *fakeSource) ListDay(ctx context.Context, day time.Time) ([]lh3.Chat, error) {
	f.calls++
	key := day.Format("2006-01-02")
	if err, ok := f.fail[key]; ok {
		return nil, err
	}
	return f.chats[key], nil
}

func testCfg(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Location:     time.UTC,
		OutputDir:    t.TempDir(),
		TopOperators: 5,
		PeakBuckets:  3,
	}
}

func westernDay(day string) []lh3.Chat {
	return []lh3.Chat{
		{ID: 1, Queue: "western", Operator: "a_uwo", Started: day + " 09:00:00", WaitSeconds: 60, DurationSeconds: 600},
		{ID: 2, Queue: "western", Operator: "b_tor", Started: day + " 11:00:00", WaitSeconds: 120, DurationSeconds: 1200},
		{ID: 3, Queue: "toronto-st-george", Operator: "c_tor", Started: day + " 12:00:00"},
	}
}

func TestAnalyzeSchoolFiltersToSchoolQueues(t *testing.T) {
	src := &fakeSource{chats: map[string][]lh3.Chat{"2024-01-15": westernDay("2024-01-15")}}
	a, err := AnalyzeSchoolFrom(context.Background(), testCfg(t), "Western", "2024-01-15", "2024-01-15", src)
	require.NoError(t, err)

	// The Toronto queue chat is not Western traffic.
	require.Equal(t, 2, a.Table().Len())
	b := a.AdvancedStatistics()
	require.Equal(t, 2, b.Basic.TotalChats)
	require.InDelta(t, 15.0, b.Basic.AvgDurationMin, 1e-9)
	require.Equal(t, "Western University", b.Scope)
}

func TestAnalyzeSchoolUnknownName(t *testing.T) {
	src := &fakeSource{}
	_, err := AnalyzeSchoolFrom(context.Background(), testCfg(t), "Hogwarts", "2024-01-15", "2024-01-15", src)
	require.ErrorIs(t, err, apperrors.ErrSchoolNotFound)
	require.Zero(t, src.calls, "no fetch should happen for an unknown school")
}

func TestAnalyzeSchoolEmptyPeriodYieldsEmptyAnalyzer(t *testing.T) {
	src := &fakeSource{}
	a, err := AnalyzeSchoolFrom(context.Background(), testCfg(t), "Western", "2024-01-15", "2024-01-16", src)
	require.NoError(t, err)
	require.True(t, a.Empty())
	require.Equal(t, 0, a.AdvancedStatistics().Basic.TotalChats)
}

func TestAnalyzeSchoolFetchFailureIsTerminal(t *testing.T) {
	boom := &apperrors.TransportError{URL: "http://x", Status: 502}
	src := &fakeSource{
		chats: map[string][]lh3.Chat{"2024-01-15": westernDay("2024-01-15")},
		fail:  map[string]error{"2024-01-16": boom},
	}
	_, err := AnalyzeSchoolFrom(context.Background(), testCfg(t), "Western", "2024-01-15", "2024-01-17", src)
	var terr *apperrors.TransportError
	require.ErrorAs(t, err, &terr)
}

func TestOperatorLocationSplit(t *testing.T) {
	src := &fakeSource{chats: map[string][]lh3.Chat{"2024-01-15": westernDay("2024-01-15")}}
	a, err := AnalyzeSchoolFrom(context.Background(), testCfg(t), "Western", "2024-01-15", "2024-01-15", src)
	require.NoError(t, err)

	loc := a.AnalyzeOperatorLocation()
	require.Equal(t, 1, loc.Local.Chats)
	require.Equal(t, 1, loc.NonLocal.Chats)
}

func TestSaveIndividualVisualizations(t *testing.T) {
	src := &fakeSource{chats: map[string][]lh3.Chat{"2024-01-15": westernDay("2024-01-15")}}
	a, err := AnalyzeSchoolFrom(context.Background(), testCfg(t), "Western", "2024-01-15", "2024-01-15", src)
	require.NoError(t, err)

	paths, err := a.SaveIndividualVisualizations()
	require.NoError(t, err)
	require.Len(t, paths, 5)
	for _, p := range paths {
		require.FileExists(t, p)
	}
}

func TestCompareTimePeriods(t *testing.T) {
	src := &fakeSource{chats: map[string][]lh3.Chat{
		"2024-01-15": westernDay("2024-01-15"),
		"2024-02-15": {
			{ID: 9, Queue: "western", Operator: "a_uwo", Started: "2024-02-15 09:00:00", DurationSeconds: 600},
		},
	}}
	cfg := testCfg(t)
	a, err := AnalyzeSchoolFrom(context.Background(), cfg, "Western", "2024-01-15", "2024-01-15", src)
	require.NoError(t, err)

	periodA, err := chatlog.ParseDateRange("2024-01-15", "2024-01-15", cfg.Location)
	require.NoError(t, err)
	periodB, err := chatlog.ParseDateRange("2024-02-15", "2024-02-15", cfg.Location)
	require.NoError(t, err)

	cmp, err := a.CompareTimePeriods(context.Background(), periodA, periodB)
	require.NoError(t, err)
	total, ok := cmp.Metric("total_chats")
	require.True(t, ok)
	require.Equal(t, float64(2), total.PeriodA)
	require.Equal(t, float64(1), total.PeriodB)
	require.NotNil(t, total.PctChange)
	require.InDelta(t, -50, *total.PctChange, 1e-9)

	require.Len(t, cmp.Months, 1)
	require.Equal(t, "2024-01", cmp.Months[0].LabelA)
	require.Equal(t, "2024-02", cmp.Months[0].LabelB)
	require.Equal(t, float64(2), cmp.Months[0].Chats.PeriodA)
	require.Equal(t, float64(1), cmp.Months[0].Chats.PeriodB)
}

func TestSaveComparisonReport(t *testing.T) {
	src := &fakeSource{chats: map[string][]lh3.Chat{
		"2024-01-15": westernDay("2024-01-15"),
		"2024-02-15": {
			{ID: 9, Queue: "western", Operator: "a_uwo", Started: "2024-02-15 09:00:00", DurationSeconds: 600},
		},
	}}
	cfg := testCfg(t)
	a, err := AnalyzeSchoolFrom(context.Background(), cfg, "Western", "2024-01-15", "2024-01-15", src)
	require.NoError(t, err)

	periodA, _ := chatlog.ParseDateRange("2024-01-15", "2024-01-15", cfg.Location)
	periodB, _ := chatlog.ParseDateRange("2024-02-15", "2024-02-15", cfg.Location)
	cmp, err := a.CompareTimePeriods(context.Background(), periodA, periodB)
	require.NoError(t, err)

	path, err := a.SaveComparisonReport(cmp)
	require.NoError(t, err)
	require.Equal(t, "Western_University_trend_comparison.html", filepath.Base(path))
	require.FileExists(t, path)
}

func TestCompareTimePeriodsRejectsOverlap(t *testing.T) {
	src := &fakeSource{chats: map[string][]lh3.Chat{"2024-01-15": westernDay("2024-01-15")}}
	cfg := testCfg(t)
	a, err := AnalyzeSchoolFrom(context.Background(), cfg, "Western", "2024-01-15", "2024-01-15", src)
	require.NoError(t, err)

	periodA, _ := chatlog.ParseDateRange("2024-01-01", "2024-01-20", cfg.Location)
	periodB, _ := chatlog.ParseDateRange("2024-01-15", "2024-01-31", cfg.Location)
	_, err = a.CompareTimePeriods(context.Background(), periodA, periodB)
	var verr *apperrors.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestCompareTimePeriodsZeroBaseline(t *testing.T) {
	src := &fakeSource{chats: map[string][]lh3.Chat{"2024-02-15": westernDay("2024-02-15")}}
	cfg := testCfg(t)
	a, err := AnalyzeSchoolFrom(context.Background(), cfg, "Western", "2024-02-15", "2024-02-15", src)
	require.NoError(t, err)

	emptyPeriod, _ := chatlog.ParseDateRange("2024-01-01", "2024-01-02", cfg.Location)
	busyPeriod, _ := chatlog.ParseDateRange("2024-02-15", "2024-02-15", cfg.Location)
	cmp, err := a.CompareTimePeriods(context.Background(), emptyPeriod, busyPeriod)
	require.NoError(t, err)
	total, _ := cmp.Metric("total_chats")
	require.Nil(t, total.PctChange, "zero baseline reports no percentage")
	require.Equal(t, float64(2), total.Delta)
}

func TestAnalyzeServiceCoversAllQueues(t *testing.T) {
	src := &fakeSource{chats: map[string][]lh3.Chat{"2024-01-15": westernDay("2024-01-15")}}
	a, bundle, err := AnalyzeServiceFrom(context.Background(), testCfg(t), "2024-01-15", "2024-01-15", src)
	require.NoError(t, err)
	require.Equal(t, 3, bundle.Basic.TotalChats)

	shares := a.SchoolBreakdown()
	require.Len(t, shares, 2)
	require.Equal(t, "Western University", shares[0].School)
	require.Equal(t, 2, shares[0].Chats)
	require.InDelta(t, 66.7, shares[0].SharePercent, 0.1)
}

func TestBatchContinuesPastFailures(t *testing.T) {
	src := &fakeSource{chats: map[string][]lh3.Chat{"2024-01-15": westernDay("2024-01-15")}}
	summary, err := AnalyzeSchoolsFrom(context.Background(), testCfg(t),
		[]string{"Western", "Hogwarts", "Toronto"}, "2024-01-15", "2024-01-15", src)
	require.NoError(t, err)

	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Outcomes, 3)
	require.NoError(t, summary.Outcomes[0].Err)
	require.Error(t, summary.Outcomes[1].Err)
	// Toronto still ran after the failure.
	require.Equal(t, "Toronto", summary.Outcomes[2].School)
	require.NoError(t, summary.Outcomes[2].Err)
	require.Equal(t, 1, summary.Outcomes[2].Chats)
}

func TestBatchEmptySchoolWritesNoReports(t *testing.T) {
	src := &fakeSource{chats: map[string][]lh3.Chat{"2024-01-15": westernDay("2024-01-15")}}
	summary, err := AnalyzeSchoolsFrom(context.Background(), testCfg(t),
		[]string{"Brock"}, "2024-01-15", "2024-01-15", src)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Succeeded)
	require.Empty(t, summary.Outcomes[0].Paths)
}

func TestCachedSourceHitSkipsRemote(t *testing.T) {
	ctx := context.Background()
	cache, err := store.Open(t.TempDir() + "/cache.db")
	require.NoError(t, err)
	defer cache.Close()

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, cache.PutDay(ctx, day, []lh3.Chat{{ID: 42}}))

	src := &fakeSource{fail: map[string]error{"2024-01-15": errors.New("remote should not be called")}}
	cached := CachedSource{Source: src, Cache: cache}
	chats, err := cached.ListDay(ctx, day)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.Equal(t, int64(42), chats[0].ID)
	require.Zero(t, src.calls)
}

func TestCachedSourceMissFallsThroughAndStores(t *testing.T) {
	ctx := context.Background()
	cache, err := store.Open(t.TempDir() + "/cache.db")
	require.NoError(t, err)
	defer cache.Close()

	day := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{chats: map[string][]lh3.Chat{"2024-01-15": {{ID: 7}}}}
	cached := CachedSource{Source: src, Cache: cache}

	chats, err := cached.ListDay(ctx, day)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.Equal(t, 1, src.calls)

	// Second read is served from the cache.
	chats, err = cached.ListDay(ctx, day)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	require.Equal(t, 1, src.calls)
}
