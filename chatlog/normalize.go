package chatlog

import (
	"log"
	"time"

	"ask_analytics/internal/metrics"
	"ask_analytics/lh3"
)

const apiTimeLayout = "2006-01-02 15:04:05"

// Normalize converts raw API records into a table: timestamps parsed in
// loc, waits and durations converted to minutes. Rows whose start falls
// outside the range are dropped so the table invariant holds even when
// the server's day boundary disagrees with the configured zone; rows with
// an unparseable start are logged and skipped.
func Normalize(raw []lh3.Chat, dr DateRange, scope string, loc *time.Location) (Table, error) {
	if loc == nil {
		loc = time.UTC
	}
	rows := make([]Record, 0, len(raw))
	for _, chat := range raw {
		started, err := parseAPITime(chat.Started, loc)
		if err != nil {
			log.Printf("skipping chat %d: bad start time %q", chat.ID, chat.Started)
			continue
		}
		if !dr.Contains(started) {
			continue
		}
		rec := Record{
			ID:              chat.ID,
			Queue:           chat.Queue,
			Profile:         chat.Profile,
			Operator:        chat.Operator,
			Guest:           chat.Guest,
			Protocol:        chat.Protocol,
			Referrer:        chat.Referrer,
			Started:         started,
			WaitMinutes:     chat.WaitSeconds / 60,
			DurationMinutes: chat.DurationSeconds / 60,
		}
		if accepted, err := parseAPITime(chat.Accepted, loc); err == nil {
			rec.Accepted = accepted
		}
		if ended, err := parseAPITime(chat.Ended, loc); err == nil {
			rec.Ended = ended
		}
		rows = append(rows, rec)
	}
	metrics.RecordsNormalized.Add(float64(len(rows)))
	return NewTable(rows, dr, scope)
}

func parseAPITime(value string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(apiTimeLayout, value, loc)
}
