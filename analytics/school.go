package analytics

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"ask_analytics/chatlog"
	"ask_analytics/config"
	apperrors "ask_analytics/errors"
	"ask_analytics/internal/metrics"
	"ask_analytics/internal/store"
	"ask_analytics/lh3"
	"ask_analytics/report"
	"ask_analytics/stats"
)

// SchoolAnalyzer holds one school's normalized chat table for a period
// and renders its reports. Build one with AnalyzeSchool.
type SchoolAnalyzer struct {
	cfg      config.Config
	school   chatlog.School
	table    chatlog.Table
	source   DaySource
	renderer report.Renderer

	bundle *stats.Bundle
}

// AnalyzeSchool resolves the school name, fetches its chats for the
// inclusive start..end range (dates in YYYY-MM-DD) and returns an
// analyzer ready to compute statistics and write reports. A period with
// no chats is not fatal: the analyzer is returned with an empty table
// and every report renders in its empty state.
func AnalyzeSchool(ctx context.Context, cfg config.Config, schoolName, start, end string) (*SchoolAnalyzer, error) {
	client, err := lh3.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return AnalyzeSchoolFrom(ctx, cfg, schoolName, start, end, withCache(cfg, client))
}

// AnalyzeSchoolFrom is AnalyzeSchool with an explicit day source.
func AnalyzeSchoolFrom(ctx context.Context, cfg config.Config, schoolName, start, end string, src DaySource) (*SchoolAnalyzer, error) {
	school, err := chatlog.FindSchool(schoolName)
	if err != nil {
		return nil, err
	}
	dr, err := chatlog.ParseDateRange(start, end, cfg.Location)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	table, err := fetchTable(ctx, src, dr, school.Queues, school.FullName, cfg.Location)
	if err != nil {
		if !errors.Is(err, apperrors.ErrEmptyResult) {
			return nil, err
		}
		log.Printf("analytics: %v", err)
	}
	metrics.AnalysisDuration.Observe(time.Since(started).Seconds())

	return &SchoolAnalyzer{
		cfg:      cfg,
		school:   school,
		table:    table,
		source:   src,
		renderer: report.Renderer{OutputDir: cfg.OutputDir},
	}, nil
}

// withCache wraps a source with the sqlite day cache when one is
// configured. A cache that fails to open is skipped, not fatal.
func withCache(cfg config.Config, src DaySource) DaySource {
	if cfg.CacheDBPath == "" {
		return src
	}
	cache, err := store.Open(cfg.CacheDBPath)
	if err != nil {
		log.Printf("day cache unavailable at %s: %v", cfg.CacheDBPath, err)
		return src
	}
	return CachedSource{Source: src, Cache: cache}
}

// School reports which school this analyzer covers.
func (a *SchoolAnalyzer) School() chatlog.School { return a.school }

// Table exposes the normalized chat table.
func (a *SchoolAnalyzer) Table() chatlog.Table { return a.table }

// Empty reports whether the period matched zero chats.
func (a *SchoolAnalyzer) Empty() bool { return a.table.Empty() }

// AdvancedStatistics computes the full statistics bundle for the
// period. The result is cached after the first call.
func (a *SchoolAnalyzer) AdvancedStatistics() stats.Bundle {
	if a.bundle == nil {
		b := stats.Compute(a.table, a.statsOptions())
		a.bundle = &b
	}
	return *a.bundle
}

// AnalyzeOperatorLocation splits answered chats between the school's
// own operators and operators from elsewhere in the service.
func (a *SchoolAnalyzer) AnalyzeOperatorLocation() stats.LocationAnalysis {
	return stats.ComputeLocation(a.table, a.school)
}

// CreateTimeAnalysis writes the hourly and weekday distribution report
// and returns its path.
func (a *SchoolAnalyzer) CreateTimeAnalysis() (string, error) {
	return a.write(report.KindTimeDistribution)
}

// GenerateChordDiagram writes the cross-institution staffing flow
// diagram and returns its path.
func (a *SchoolAnalyzer) GenerateChordDiagram() (string, error) {
	return a.write(report.KindChordDiagram)
}

// SaveIndividualVisualizations writes every report in the catalog for
// this school and returns the paths in catalog order.
func (a *SchoolAnalyzer) SaveIndividualVisualizations() ([]string, error) {
	return a.renderer.WriteAll(a.AdvancedStatistics(), stats.ComputeFlows(a.table))
}

func (a *SchoolAnalyzer) write(kind report.Kind) (string, error) {
	return a.renderer.Write(a.AdvancedStatistics(), stats.ComputeFlows(a.table), kind)
}

// SaveComparisonReport writes the month-by-month trend comparison
// artifact for a comparison this analyzer produced and returns its path.
func (a *SchoolAnalyzer) SaveComparisonReport(cmp stats.Comparison) (string, error) {
	return a.renderer.WriteComparison(cmp)
}

// CompareTimePeriods fetches the school's chats for two distinct
// periods and reports how the headline metrics moved between them.
// Overlapping periods are rejected.
func (a *SchoolAnalyzer) CompareTimePeriods(ctx context.Context, periodA, periodB chatlog.DateRange) (stats.Comparison, error) {
	if periodsOverlap(periodA, periodB) {
		return stats.Comparison{}, &apperrors.ValidationError{
			Field: "periods",
			Err:   fmt.Errorf("%s overlaps %s", periodA, periodB),
		}
	}
	bundleA, err := a.periodBundle(ctx, periodA)
	if err != nil {
		return stats.Comparison{}, err
	}
	bundleB, err := a.periodBundle(ctx, periodB)
	if err != nil {
		return stats.Comparison{}, err
	}
	return stats.Compare(bundleA, bundleB), nil
}

// periodBundle fetches and computes one comparison period. An empty
// period yields a zeroed bundle, leaving the zero-baseline handling to
// the comparison itself.
func (a *SchoolAnalyzer) periodBundle(ctx context.Context, dr chatlog.DateRange) (stats.Bundle, error) {
	table, err := fetchTable(ctx, a.source, dr, a.school.Queues, a.school.FullName, a.cfg.Location)
	if err != nil && !errors.Is(err, apperrors.ErrEmptyResult) {
		return stats.Bundle{}, err
	}
	return stats.Compute(table, a.statsOptions()), nil
}

func (a *SchoolAnalyzer) statsOptions() stats.Options {
	return stats.Options{TopOperators: a.cfg.TopOperators, PeakBuckets: a.cfg.PeakBuckets}
}

func periodsOverlap(a, b chatlog.DateRange) bool {
	return !a.End.Before(b.Start) && !b.End.Before(a.Start)
}
