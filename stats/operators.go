package stats

import (
	"sort"

	"ask_analytics/chatlog"
)

// OperatorLoad is one operator's workload summary.
type OperatorLoad struct {
	Operator       string
	Chats          int
	AvgDurationMin float64
	AvgWaitMin     float64
}

// OperatorAnalysis ranks operators by chat count, descending; equal
// counts order by operator identifier ascending so the ranking is stable
// across runs.
type OperatorAnalysis struct {
	Ranking             []OperatorLoad
	AvgChatsPerOperator float64
}

func computeOperators(t chatlog.Table, top int) OperatorAnalysis {
	type acc struct {
		chats    int
		duration float64
		wait     float64
	}
	byOp := make(map[string]*acc)
	for _, r := range t.Rows() {
		if r.Operator == "" {
			continue
		}
		a := byOp[r.Operator]
		if a == nil {
			a = &acc{}
			byOp[r.Operator] = a
		}
		a.chats++
		a.duration += r.DurationMinutes
		a.wait += r.WaitMinutes
	}
	if len(byOp) == 0 {
		return OperatorAnalysis{}
	}

	ranking := make([]OperatorLoad, 0, len(byOp))
	answered := 0
	for op, a := range byOp {
		answered += a.chats
		ranking = append(ranking, OperatorLoad{
			Operator:       op,
			Chats:          a.chats,
			AvgDurationMin: a.duration / float64(a.chats),
			AvgWaitMin:     a.wait / float64(a.chats),
		})
	}
	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Chats != ranking[j].Chats {
			return ranking[i].Chats > ranking[j].Chats
		}
		return ranking[i].Operator < ranking[j].Operator
	})
	avg := float64(answered) / float64(len(byOp))
	if top > 0 && len(ranking) > top {
		ranking = ranking[:top]
	}
	return OperatorAnalysis{Ranking: ranking, AvgChatsPerOperator: avg}
}

// Partition is one side of the local/non-local operator split.
type Partition struct {
	Chats        int
	SharePercent float64
}

// LocationAnalysis splits answered chats by whether the answering
// operator belongs to the analyzed school. Operators whose home school
// cannot be derived count as non-local.
type LocationAnalysis struct {
	School   string
	Local    Partition
	NonLocal Partition
}

// ComputeLocation partitions a school-scoped table's answered chats into
// local and non-local operators.
func ComputeLocation(t chatlog.Table, school chatlog.School) LocationAnalysis {
	out := LocationAnalysis{School: school.ShortName}
	answered := 0
	for _, r := range t.Rows() {
		if r.Operator == "" {
			continue
		}
		answered++
		home, ok := chatlog.SchoolByOperator(r.Operator)
		if ok && home.ShortName == school.ShortName {
			out.Local.Chats++
		} else {
			out.NonLocal.Chats++
		}
	}
	if answered == 0 {
		return out
	}
	out.Local.SharePercent = float64(out.Local.Chats) / float64(answered) * 100
	out.NonLocal.SharePercent = float64(out.NonLocal.Chats) / float64(answered) * 100
	return out
}
