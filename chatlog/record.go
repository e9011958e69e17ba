package chatlog

import (
	"strings"
	"time"
)

// Record is one logged chat session between an operator and a patron.
// Durations and waits are normalized to minutes. Records are immutable
// once built; derived views copy, never mutate.
type Record struct {
	ID       int64
	Queue    string
	Profile  string
	Operator string
	Guest    string
	Protocol string
	Referrer string

	Started  time.Time
	Accepted time.Time
	Ended    time.Time

	WaitMinutes     float64
	DurationMinutes float64
}

// Answered reports whether an operator picked the chat up.
func (r Record) Answered() bool { return r.Operator != "" }

// IsFrench reports whether the chat arrived on a French-language queue.
func (r Record) IsFrench() bool { return strings.HasSuffix(r.Queue, "-fr") }

// IsSMS reports whether the chat arrived over the SMS gateway.
func (r Record) IsSMS() bool { return strings.HasSuffix(r.Queue, "-txt") }

// IsProactive reports whether the chat came from a proactive invitation queue.
func (r Record) IsProactive() bool {
	return strings.Contains(strings.ToLower(r.Queue), "proactive")
}
