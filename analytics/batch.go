package analytics

import (
	"context"
	"log"

	"ask_analytics/chatlog"
	"ask_analytics/config"
	"ask_analytics/internal/store"
	"ask_analytics/lh3"
)

// SchoolOutcome records one school's result in a batch run.
type SchoolOutcome struct {
	School string
	Paths  []string
	Chats  int
	Err    error
}

// BatchSummary is the aggregate result of a multi-school run.
type BatchSummary struct {
	Outcomes  []SchoolOutcome
	Succeeded int
	Failed    int
}

// AnalyzeSchools runs the full analysis for each named school in turn
// and writes every report in the catalog. One school's failure is
// logged and recorded in its outcome; the remaining schools still run.
func AnalyzeSchools(ctx context.Context, cfg config.Config, schoolNames []string, start, end string) (BatchSummary, error) {
	client, err := lh3.NewClient(cfg)
	if err != nil {
		return BatchSummary{}, err
	}
	return AnalyzeSchoolsFrom(ctx, cfg, schoolNames, start, end, withCache(cfg, client))
}

// AnalyzeSchoolsFrom is AnalyzeSchools with an explicit day source.
func AnalyzeSchoolsFrom(ctx context.Context, cfg config.Config, schoolNames []string, start, end string, src DaySource) (BatchSummary, error) {
	runs := openRunLog(cfg)
	if runs != nil {
		defer runs.Close()
	}

	var summary BatchSummary
	for _, name := range schoolNames {
		outcome := analyzeOne(ctx, cfg, name, start, end, src, runs)
		if outcome.Err != nil {
			log.Printf("batch: %s failed: %v", name, outcome.Err)
			summary.Failed++
		} else {
			summary.Succeeded++
		}
		summary.Outcomes = append(summary.Outcomes, outcome)
	}
	return summary, nil
}

func analyzeOne(ctx context.Context, cfg config.Config, name, start, end string, src DaySource, runs *store.Store) SchoolOutcome {
	outcome := SchoolOutcome{School: name}

	runID := startRun(ctx, runs, name, start, end, cfg)
	analyzer, err := AnalyzeSchoolFrom(ctx, cfg, name, start, end, src)
	if err != nil {
		outcome.Err = err
		finishRun(ctx, runs, runID, store.RunFailed, 0, err)
		return outcome
	}

	outcome.Chats = analyzer.Table().Len()
	if analyzer.Empty() {
		finishRun(ctx, runs, runID, store.RunSkipped, 0, nil)
		return outcome
	}

	paths, err := analyzer.SaveIndividualVisualizations()
	if err != nil {
		outcome.Err = err
		finishRun(ctx, runs, runID, store.RunFailed, outcome.Chats, err)
		return outcome
	}
	outcome.Paths = paths
	finishRun(ctx, runs, runID, store.RunOK, outcome.Chats, nil)
	return outcome
}

// openRunLog opens the sqlite run log when a cache path is configured.
// The run log is bookkeeping; failing to open it never fails the batch.
func openRunLog(cfg config.Config) *store.Store {
	if cfg.CacheDBPath == "" {
		return nil
	}
	s, err := store.Open(cfg.CacheDBPath)
	if err != nil {
		log.Printf("run log unavailable at %s: %v", cfg.CacheDBPath, err)
		return nil
	}
	return s
}

func startRun(ctx context.Context, runs *store.Store, scope, start, end string, cfg config.Config) string {
	if runs == nil {
		return ""
	}
	dr, err := chatlog.ParseDateRange(start, end, cfg.Location)
	if err != nil {
		return ""
	}
	runID, err := runs.StartRun(ctx, scope, dr.Start, dr.End)
	if err != nil {
		log.Printf("run log: start failed: %v", err)
		return ""
	}
	return runID
}

func finishRun(ctx context.Context, runs *store.Store, runID, status string, chats int, runErr error) {
	if runs == nil || runID == "" {
		return
	}
	msg := ""
	if runErr != nil {
		msg = runErr.Error()
	}
	if err := runs.FinishRun(ctx, runID, status, chats, msg); err != nil {
		log.Printf("run log: finish failed: %v", err)
	}
}

var _ DaySource = (*lh3.Client)(nil)
