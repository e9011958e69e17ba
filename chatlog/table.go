package chatlog

import (
	"fmt"
	"sort"

	apperrors "ask_analytics/errors"
)

// Table is an ordered collection of records sharing a uniform schema,
// scoped to one query's date range and optionally one institution. Rows
// are never mutated after construction; Filter and friends derive new
// tables over fresh slices.
type Table struct {
	rows  []Record
	Range DateRange
	Scope string
}

// NewTable builds a table, ordering rows by start time and enforcing the
// scope invariant: every row's start timestamp lies within the range.
func NewTable(rows []Record, dr DateRange, scope string) (Table, error) {
	sorted := append([]Record(nil), rows...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Started.Equal(sorted[j].Started) {
			return sorted[i].ID < sorted[j].ID
		}
		return sorted[i].Started.Before(sorted[j].Started)
	})
	for _, r := range sorted {
		if !dr.Contains(r.Started) {
			return Table{}, &apperrors.ValidationError{
				Field: "table",
				Err:   fmt.Errorf("record %d started %s outside range %s", r.ID, r.Started, dr),
			}
		}
	}
	return Table{rows: sorted, Range: dr, Scope: scope}, nil
}

// Len returns the row count.
func (t Table) Len() int { return len(t.rows) }

// Empty reports whether the table holds no rows.
func (t Table) Empty() bool { return len(t.rows) == 0 }

// Rows returns a copy of the rows in start-time order.
func (t Table) Rows() []Record {
	return append([]Record(nil), t.rows...)
}

// Filter derives a table holding only rows matching keep. The derived
// table keeps the parent's range and scope.
func (t Table) Filter(keep func(Record) bool) Table {
	out := make([]Record, 0, len(t.rows))
	for _, r := range t.rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return Table{rows: out, Range: t.Range, Scope: t.Scope}
}

// ByQueues derives a table scoped to the named queues.
func (t Table) ByQueues(queues ...string) Table {
	set := make(map[string]struct{}, len(queues))
	for _, q := range queues {
		set[q] = struct{}{}
	}
	return t.Filter(func(r Record) bool {
		_, ok := set[r.Queue]
		return ok
	})
}

// Between derives a table restricted to a sub-range. The sub-range must
// lie within the parent range.
func (t Table) Between(dr DateRange) (Table, error) {
	if dr.Start.Before(t.Range.Start) || dr.End.After(t.Range.End) {
		return Table{}, &apperrors.ValidationError{
			Field: "date range",
			Err:   fmt.Errorf("%s not within %s", dr, t.Range),
		}
	}
	sub := t.Filter(func(r Record) bool { return dr.Contains(r.Started) })
	sub.Range = dr
	return sub, nil
}
