package chatlog

import (
	"fmt"
	"time"

	apperrors "ask_analytics/errors"
)

const dateLayout = "2006-01-02"

// DateRange is an inclusive calendar range in a fixed location.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDate parses an ISO-8601 YYYY-MM-DD date in loc. Any other shape is
// rejected before a remote call can happen.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(dateLayout, value, loc)
	if err != nil {
		return time.Time{}, &apperrors.ValidationError{
			Field: "date",
			Err:   fmt.Errorf("%w (got %q)", apperrors.ErrBadDateFormat, value),
		}
	}
	return t, nil
}

// ParseDateRange builds a validated range from two YYYY-MM-DD strings.
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	startT, err := ParseDate(start, loc)
	if err != nil {
		return DateRange{}, err
	}
	endT, err := ParseDate(end, loc)
	if err != nil {
		return DateRange{}, err
	}
	if endT.Before(startT) {
		return DateRange{}, &apperrors.ValidationError{
			Field: "date range",
			Err:   fmt.Errorf("%w (%s after %s)", apperrors.ErrEndBeforeStart, start, end),
		}
	}
	return DateRange{Start: startT, End: endT}, nil
}

// Contains reports whether ts falls inside the range, inclusive on both
// ends. The end date covers the whole final day.
func (r DateRange) Contains(ts time.Time) bool {
	if ts.Before(r.Start) {
		return false
	}
	return ts.Before(r.End.AddDate(0, 0, 1))
}

// Days walks the calendar days of the range in order.
func (r DateRange) Days() []time.Time {
	var days []time.Time
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (r DateRange) String() string {
	return fmt.Sprintf("%s to %s", r.Start.Format(dateLayout), r.End.Format(dateLayout))
}
