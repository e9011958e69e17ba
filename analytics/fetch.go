// Package analytics is the invocation surface: per-school and
// service-wide analyzers over the fetch → normalize → statistics →
// render pipeline.
package analytics

import (
	"context"
	"fmt"
	"log"
	"time"

	"ask_analytics/chatlog"
	apperrors "ask_analytics/errors"
	"ask_analytics/internal/metrics"
	"ask_analytics/internal/store"
	"ask_analytics/lh3"
)

// DaySource lists one calendar day of raw chat records. The lh3 client
// implements it; tests substitute fixtures.
type DaySource interface {
	ListDay(ctx context.Context, day time.Time) ([]lh3.Chat, error)
}

// CachedSource consults the local day cache before the remote API. Cache
// failures are logged and fall through to the source; they never fail a
// fetch.
type CachedSource struct {
	Source DaySource
	Cache  *store.Store
}

func (c CachedSource) ListDay(ctx context.Context, day time.Time) ([]lh3.Chat, error) {
	if c.Cache != nil {
		chats, ok, err := c.Cache.GetDay(ctx, day)
		if err != nil {
			log.Printf("cache read failed for %s: %v", day.Format("2006-01-02"), err)
		} else if ok {
			metrics.CacheHits.Inc()
			return chats, nil
		}
	}
	chats, err := c.Source.ListDay(ctx, day)
	if err != nil {
		return nil, err
	}
	// The current day is still accumulating chats; caching it would
	// freeze a partial result.
	if c.Cache != nil && !sameDay(day, time.Now().In(day.Location())) {
		if err := c.Cache.PutDay(ctx, day, chats); err != nil {
			log.Printf("cache write failed for %s: %v", day.Format("2006-01-02"), err)
		}
	}
	return chats, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// fetchTable fetches a range, keeps only the named queues (all queues
// when the set is empty), and normalizes into a table. A valid query
// matching zero records returns the empty table together with
// ErrEmptyResult so callers can choose an empty-state report over a
// crash.
func fetchTable(ctx context.Context, src DaySource, dr chatlog.DateRange, queues []string, scope string, loc *time.Location) (chatlog.Table, error) {
	raw, err := lh3.FetchRange(ctx, src, dr.Start, dr.End)
	if err != nil {
		return chatlog.Table{}, err
	}
	if len(queues) > 0 {
		set := make(map[string]struct{}, len(queues))
		for _, q := range queues {
			set[q] = struct{}{}
		}
		kept := raw[:0]
		for _, chat := range raw {
			if _, ok := set[chat.Queue]; ok {
				kept = append(kept, chat)
			}
		}
		raw = kept
	}
	table, err := chatlog.Normalize(raw, dr, scope, loc)
	if err != nil {
		return chatlog.Table{}, err
	}
	if table.Empty() {
		return table, fmt.Errorf("%s %s: %w", scope, dr, apperrors.ErrEmptyResult)
	}
	return table, nil
}
