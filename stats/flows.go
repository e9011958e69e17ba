package stats

import (
	"sort"

	"ask_analytics/chatlog"
)

// UnknownSchool labels flows whose operator suffix maps to no school.
const UnknownSchool = "Unknown"

// Flow is one directed edge of the inter-institution referral graph:
// chats on To's queues answered by an operator from From.
type Flow struct {
	From  string
	To    string
	Chats int
}

// ComputeFlows aggregates answered chats into institution-to-institution
// flows for the chord diagram. Order is deterministic: chat count
// descending, then From then To ascending.
func ComputeFlows(t chatlog.Table) []Flow {
	type edge struct{ from, to string }
	counts := make(map[edge]int)
	for _, r := range t.Rows() {
		if r.Operator == "" {
			continue
		}
		to, ok := chatlog.SchoolByQueue(r.Queue)
		if !ok {
			continue
		}
		from := UnknownSchool
		if home, ok := chatlog.SchoolByOperator(r.Operator); ok {
			from = home.ShortName
		}
		counts[edge{from: from, to: to.ShortName}]++
	}

	flows := make([]Flow, 0, len(counts))
	for e, n := range counts {
		flows = append(flows, Flow{From: e.from, To: e.to, Chats: n})
	}
	sort.Slice(flows, func(i, j int) bool {
		if flows[i].Chats != flows[j].Chats {
			return flows[i].Chats > flows[j].Chats
		}
		if flows[i].From != flows[j].From {
			return flows[i].From < flows[j].From
		}
		return flows[i].To < flows[j].To
	})
	return flows
}
