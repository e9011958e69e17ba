// Package app wires the command line surface to the analytics
// pipeline: it resolves what to analyze, runs it, and prints the
// outcome.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ask_analytics/analytics"
	"ask_analytics/backfill"
	"ask_analytics/chatlog"
	"ask_analytics/config"
	"ask_analytics/internal/metrics"
	"ask_analytics/internal/store"
	"ask_analytics/internal/watch"
	"ask_analytics/lh3"
)

// Options selects what a single invocation analyzes.
type Options struct {
	// Schools holds resolved school names; the literal "all" expands to
	// every registered school.
	Schools []string
	// Service requests the consortium-wide analysis.
	Service bool
	// Start and End bound the period, inclusive, as YYYY-MM-DD.
	Start string
	End   string
	// CompareStart and CompareEnd, when set, name a second period to
	// compare the primary period against. Requires exactly one school.
	CompareStart string
	CompareEnd   string
	// Warm prefetches the period into the day cache without analyzing.
	Warm bool
	// Watch keeps the process alive ingesting chat exports dropped in
	// the export directory.
	Watch bool
	// Runs, when positive, lists that many recent analysis runs from
	// the run log instead of analyzing.
	Runs int
	// MetricsAddr, when non-empty, serves Prometheus metrics there.
	MetricsAddr string
}

// App runs one analysis invocation.
type App struct {
	cfg  config.Config
	opts Options
}

func New(cfg config.Config, opts Options) (*App, error) {
	if len(opts.Schools) == 1 && strings.EqualFold(opts.Schools[0], "all") {
		opts.Schools = nil
		for _, s := range chatlog.Registry {
			opts.Schools = append(opts.Schools, s.FullName)
		}
	}
	if !opts.Watch && opts.Runs <= 0 {
		if opts.Start == "" || opts.End == "" {
			return nil, fmt.Errorf("a period is required (-start and -end)")
		}
		if !opts.Service && !opts.Warm && len(opts.Schools) == 0 {
			return nil, fmt.Errorf("nothing to analyze: pass -school, -service, or -warm")
		}
	}
	if (opts.CompareStart == "") != (opts.CompareEnd == "") {
		return nil, fmt.Errorf("-compare-start and -compare-end go together")
	}
	if opts.CompareStart != "" && len(opts.Schools) != 1 {
		return nil, fmt.Errorf("period comparison needs exactly one school")
	}
	return &App{cfg: cfg, opts: opts}, nil
}

func (a *App) Run(ctx context.Context) error {
	if a.opts.MetricsAddr != "" {
		go a.serveMetrics(ctx)
	}
	switch {
	case a.opts.Runs > 0:
		return a.listRuns(ctx)
	case a.opts.Watch:
		return a.runWatch(ctx)
	case a.opts.Warm:
		return a.runWarm(ctx)
	case a.opts.CompareStart != "":
		return a.runComparison(ctx)
	case a.opts.Service:
		return a.runService(ctx)
	default:
		return a.runSchools(ctx)
	}
}

func (a *App) runSchools(ctx context.Context) error {
	summary, err := analytics.AnalyzeSchools(ctx, a.cfg, a.opts.Schools, a.opts.Start, a.opts.End)
	if err != nil {
		return err
	}
	for _, outcome := range summary.Outcomes {
		if outcome.Err != nil {
			fmt.Printf("%-28s FAILED  %v\n", outcome.School, outcome.Err)
			continue
		}
		fmt.Printf("%-28s %6d chats  %d reports\n", outcome.School, outcome.Chats, len(outcome.Paths))
	}
	fmt.Printf("%d succeeded, %d failed\n", summary.Succeeded, summary.Failed)
	if summary.Failed > 0 && summary.Succeeded == 0 {
		return fmt.Errorf("every school failed")
	}
	return nil
}

func (a *App) runService(ctx context.Context) error {
	analyzer, bundle, err := analytics.AnalyzeService(ctx, a.cfg, a.opts.Start, a.opts.End)
	if err != nil {
		return err
	}
	fmt.Printf("service %s: %d chats, %d operators\n",
		bundle.Period, bundle.Basic.TotalChats, bundle.Basic.UniqueOperators)
	for _, share := range analyzer.SchoolBreakdown() {
		fmt.Printf("  %-28s %6d chats  %5.1f%%\n", share.School, share.Chats, share.SharePercent)
	}
	paths, err := analyzer.CreateServiceVisualizations()
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println("  wrote", p)
	}
	return nil
}

func (a *App) runComparison(ctx context.Context) error {
	analyzer, err := analytics.AnalyzeSchool(ctx, a.cfg, a.opts.Schools[0], a.opts.Start, a.opts.End)
	if err != nil {
		return err
	}
	periodA, err := chatlog.ParseDateRange(a.opts.Start, a.opts.End, a.cfg.Location)
	if err != nil {
		return err
	}
	periodB, err := chatlog.ParseDateRange(a.opts.CompareStart, a.opts.CompareEnd, a.cfg.Location)
	if err != nil {
		return err
	}
	cmp, err := analyzer.CompareTimePeriods(ctx, periodA, periodB)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s vs %s\n", analyzer.School().FullName, cmp.PeriodA, cmp.PeriodB)
	for _, m := range cmp.Metrics {
		fmt.Printf("  %-22s %10.1f -> %10.1f  (%s)\n", m.Name, m.PeriodA, m.PeriodB, formatPct(m.PctChange))
	}
	for _, m := range cmp.Months {
		fmt.Printf("  %s vs %s: %4.0f -> %4.0f chats (%s), avg duration %s, avg wait %s\n",
			m.LabelA, m.LabelB, m.Chats.PeriodA, m.Chats.PeriodB,
			formatPct(m.Chats.PctChange), formatPct(m.AvgDuration.PctChange), formatPct(m.AvgWait.PctChange))
	}
	path, err := analyzer.SaveComparisonReport(cmp)
	if err != nil {
		return err
	}
	fmt.Println("  wrote", path)
	return nil
}

func formatPct(pct *float64) string {
	if pct == nil {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", *pct)
}

// listRuns prints the most recent entries of the run log, newest first.
func (a *App) listRuns(ctx context.Context) error {
	if a.cfg.CacheDBPath == "" {
		return fmt.Errorf("the run log needs a cache database (cache_db_path)")
	}
	db, err := store.Open(a.cfg.CacheDBPath)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Health(ctx); err != nil {
		return err
	}

	runs, err := db.ListRuns(ctx, a.opts.Runs)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %-8s %-28s %s..%s %6d records",
			r.StartedAt.Format("2006-01-02 15:04"), r.Status, r.Scope, r.StartDay, r.EndDay, r.RecordCount)
		if r.Error != "" {
			fmt.Printf("  %s", r.Error)
		}
		fmt.Println()
	}
	return nil
}

// runWarm prefetches the period's chat days into the local cache.
func (a *App) runWarm(ctx context.Context) error {
	if a.cfg.CacheDBPath == "" {
		return fmt.Errorf("warming needs a cache database (cache_db_path)")
	}
	dr, err := chatlog.ParseDateRange(a.opts.Start, a.opts.End, a.cfg.Location)
	if err != nil {
		return err
	}
	client, err := lh3.NewClient(a.cfg)
	if err != nil {
		return err
	}
	cache, err := store.Open(a.cfg.CacheDBPath)
	if err != nil {
		return err
	}
	defer cache.Close()

	summary, err := (&backfill.Warmer{Source: client, Cache: cache}).Warm(ctx, dr)
	if err != nil {
		return err
	}
	fmt.Printf("warmed %s: %d days, %d fetched (%d records), %d cached, %d failed\n",
		dr, summary.TotalDays, summary.Fetched, summary.Records, summary.AlreadyCached, summary.Failed)
	return nil
}

// runWatch ingests chat export files dropped into the export directory
// and stores each day into the local cache, so subsequent analyses skip
// the remote fetch for those days.
func (a *App) runWatch(ctx context.Context) error {
	if a.cfg.CacheDBPath == "" {
		return fmt.Errorf("watch mode needs a cache database (cache_db_path)")
	}
	cache, err := store.Open(a.cfg.CacheDBPath)
	if err != nil {
		return err
	}
	defer cache.Close()

	watcher := watch.New(a.cfg, func(ctx context.Context, path string) {
		if err := ingestExport(ctx, cache, path, a.cfg.Location); err != nil {
			log.Printf("export %s: %v", path, err)
			return
		}
		log.Printf("ingested %s", path)
	})
	if err := watcher.Backfill(ctx); err != nil {
		return err
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	log.Printf("watching %s for chat exports", a.cfg.ExportDir)
	<-ctx.Done()
	return nil
}

// ingestExport reads a day export named YYYY-MM-DD.json and caches its
// records under that day.
func ingestExport(ctx context.Context, cache *store.Store, path string, loc *time.Location) error {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	day, err := chatlog.ParseDate(base, loc)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var chats []lh3.Chat
	if err := json.Unmarshal(data, &chats); err != nil {
		return err
	}
	return cache.PutDay(ctx, day, chats)
}

func (a *App) serveMetrics(ctx context.Context) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: a.opts.MetricsAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()
	log.Printf("metrics listening on %s", a.opts.MetricsAddr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("metrics server: %v", err)
	}
}
