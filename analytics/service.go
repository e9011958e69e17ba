package analytics

import (
	"context"
	"errors"
	"log"
	"sort"
	"time"

	"ask_analytics/chatlog"
	"ask_analytics/config"
	apperrors "ask_analytics/errors"
	"ask_analytics/internal/metrics"
	"ask_analytics/lh3"
	"ask_analytics/report"
	"ask_analytics/stats"
)

// ServiceAnalyzer covers the whole consortium for a period: every
// queue, every institution, one combined table.
type ServiceAnalyzer struct {
	cfg      config.Config
	table    chatlog.Table
	renderer report.Renderer

	bundle *stats.Bundle
}

// SchoolShare is one institution's slice of the service-wide traffic.
type SchoolShare struct {
	School         string
	Chats          int
	SharePercent   float64
	AvgDurationMin float64
	AvgWaitMin     float64
}

// AnalyzeService fetches every queue's chats for the range and returns
// the service-wide analyzer together with its statistics bundle.
func AnalyzeService(ctx context.Context, cfg config.Config, start, end string) (*ServiceAnalyzer, stats.Bundle, error) {
	client, err := lh3.NewClient(cfg)
	if err != nil {
		return nil, stats.Bundle{}, err
	}
	return AnalyzeServiceFrom(ctx, cfg, start, end, withCache(cfg, client))
}

// AnalyzeServiceFrom is AnalyzeService with an explicit day source.
func AnalyzeServiceFrom(ctx context.Context, cfg config.Config, start, end string, src DaySource) (*ServiceAnalyzer, stats.Bundle, error) {
	dr, err := chatlog.ParseDateRange(start, end, cfg.Location)
	if err != nil {
		return nil, stats.Bundle{}, err
	}

	started := time.Now()
	table, err := fetchTable(ctx, src, dr, nil, report.ServiceScope, cfg.Location)
	if err != nil {
		if !errors.Is(err, apperrors.ErrEmptyResult) {
			return nil, stats.Bundle{}, err
		}
		log.Printf("analytics: %v", err)
	}
	metrics.AnalysisDuration.Observe(time.Since(started).Seconds())

	a := &ServiceAnalyzer{
		cfg:      cfg,
		table:    table,
		renderer: report.Renderer{OutputDir: cfg.OutputDir},
	}
	return a, a.Overview(), nil
}

// Table exposes the normalized service-wide chat table.
func (a *ServiceAnalyzer) Table() chatlog.Table { return a.table }

// Empty reports whether the period matched zero chats.
func (a *ServiceAnalyzer) Empty() bool { return a.table.Empty() }

// Overview computes the service-wide statistics bundle. The result is
// cached after the first call.
func (a *ServiceAnalyzer) Overview() stats.Bundle {
	if a.bundle == nil {
		b := stats.Compute(a.table, stats.Options{
			TopOperators: a.cfg.TopOperators,
			PeakBuckets:  a.cfg.PeakBuckets,
		})
		a.bundle = &b
	}
	return *a.bundle
}

// SchoolBreakdown splits the service traffic per institution, sorted by
// volume descending with name as the tie break. Chats on queues that
// belong to no registered school are left out.
func (a *ServiceAnalyzer) SchoolBreakdown() []SchoolShare {
	type acc struct {
		chats    int
		duration float64
		wait     float64
	}
	perSchool := make(map[string]*acc)
	total := 0
	for _, rec := range a.table.Rows() {
		school, ok := chatlog.SchoolByQueue(rec.Queue)
		if !ok {
			continue
		}
		s := perSchool[school.FullName]
		if s == nil {
			s = &acc{}
			perSchool[school.FullName] = s
		}
		s.chats++
		s.duration += rec.DurationMinutes
		s.wait += rec.WaitMinutes
		total++
	}

	shares := make([]SchoolShare, 0, len(perSchool))
	for name, s := range perSchool {
		share := SchoolShare{School: name, Chats: s.chats}
		if total > 0 {
			share.SharePercent = float64(s.chats) / float64(total) * 100
		}
		if s.chats > 0 {
			share.AvgDurationMin = s.duration / float64(s.chats)
			share.AvgWaitMin = s.wait / float64(s.chats)
		}
		shares = append(shares, share)
	}
	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Chats != shares[j].Chats {
			return shares[i].Chats > shares[j].Chats
		}
		return shares[i].School < shares[j].School
	})
	return shares
}

// CreateServiceVisualizations writes the full report catalog under the
// service scope and returns the paths in catalog order.
func (a *ServiceAnalyzer) CreateServiceVisualizations() ([]string, error) {
	return a.renderer.WriteAll(a.Overview(), stats.ComputeFlows(a.table))
}

// GenerateServiceChordDiagram writes only the cross-institution
// staffing flow diagram and returns its path.
func (a *ServiceAnalyzer) GenerateServiceChordDiagram() (string, error) {
	return a.renderer.Write(a.Overview(), stats.ComputeFlows(a.table), report.KindChordDiagram)
}
