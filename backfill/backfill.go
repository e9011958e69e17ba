// Package backfill prefetches chat days into the local cache so later
// analyses over the same range run without touching the remote API.
package backfill

import (
	"context"
	"log"
	"time"

	"ask_analytics/chatlog"
	"ask_analytics/internal/metrics"
	"ask_analytics/internal/store"
	"ask_analytics/lh3"
)

// DaySource lists one calendar day of raw chats.
type DaySource interface {
	ListDay(ctx context.Context, day time.Time) ([]lh3.Chat, error)
}

// Summary captures one warming pass over a range.
type Summary struct {
	TotalDays     int `json:"total_days"`
	AlreadyCached int `json:"already_cached"`
	Fetched       int `json:"fetched"`
	Failed        int `json:"failed"`
	Records       int `json:"records"`
}

// Warmer fills the day cache from a source.
type Warmer struct {
	Source DaySource
	Cache  *store.Store
}

// Warm walks the range and caches every missing day. Warming is best
// effort: a day that fails to fetch is logged and counted, and the walk
// continues. The current day is skipped since it is still accumulating
// chats.
func (w *Warmer) Warm(ctx context.Context, dr chatlog.DateRange) (Summary, error) {
	summary := Summary{TotalDays: len(dr.Days())}
	today := time.Now().In(dr.Start.Location()).Format("2006-01-02")
	for _, day := range dr.Days() {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		if day.Format("2006-01-02") == today {
			continue
		}
		if _, ok, err := w.Cache.GetDay(ctx, day); err != nil {
			return summary, err
		} else if ok {
			summary.AlreadyCached++
			metrics.CacheHits.Inc()
			continue
		}
		chats, err := w.Source.ListDay(ctx, day)
		if err != nil {
			log.Printf("backfill: %s failed: %v", day.Format("2006-01-02"), err)
			summary.Failed++
			continue
		}
		if err := w.Cache.PutDay(ctx, day, chats); err != nil {
			return summary, err
		}
		summary.Fetched++
		summary.Records += len(chats)
	}
	return summary, nil
}
