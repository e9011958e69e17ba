package stats

import (
	"fmt"
	"sort"
	"time"

	"ask_analytics/chatlog"
)

// Weekday labels in service order, Monday first.
var weekdayLabels = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// MonthCount is one calendar month's chat volume with its duration and
// wait averages.
type MonthCount struct {
	Year           int
	Month          time.Month
	Chats          int
	AvgDurationMin float64
	AvgWaitMin     float64
}

// Label renders the month as YYYY-MM.
func (m MonthCount) Label() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// HourCount is one hour-of-day bucket.
type HourCount struct {
	Hour  int
	Chats int
}

// WeekdayCount is one day-of-week bucket, 0 = Monday.
type WeekdayCount struct {
	Weekday int
	Chats   int
}

// Label returns the short weekday name.
func (w WeekdayCount) Label() string { return weekdayLabels[w.Weekday] }

// TimeAnalysis buckets chat volume by start timestamp in the configured
// zone. The buckets of each axis sum exactly to the table's row count.
type TimeAnalysis struct {
	ByHour    [24]int
	ByWeekday [7]int
	ByMonth   []MonthCount
	PeakHours []HourCount
	TopDays   []WeekdayCount
}

func computeTime(t chatlog.Table, peak int) TimeAnalysis {
	type monthAcc struct {
		chats    int
		duration float64
		wait     float64
	}
	var out TimeAnalysis
	months := make(map[int]*monthAcc)
	for _, r := range t.Rows() {
		out.ByHour[r.Started.Hour()]++
		out.ByWeekday[mondayIndex(r.Started.Weekday())]++
		key := r.Started.Year()*100 + int(r.Started.Month())
		m := months[key]
		if m == nil {
			m = &monthAcc{}
			months[key] = m
		}
		m.chats++
		m.duration += r.DurationMinutes
		m.wait += r.WaitMinutes
	}

	keys := make([]int, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		m := months[k]
		out.ByMonth = append(out.ByMonth, MonthCount{
			Year:           k / 100,
			Month:          time.Month(k % 100),
			Chats:          m.chats,
			AvgDurationMin: m.duration / float64(m.chats),
			AvgWaitMin:     m.wait / float64(m.chats),
		})
	}

	out.PeakHours = topHours(out.ByHour, peak)
	out.TopDays = topWeekdays(out.ByWeekday, peak)
	return out
}

func mondayIndex(d time.Weekday) int {
	// time.Weekday counts from Sunday; the service week starts Monday.
	return (int(d) + 6) % 7
}

func topHours(buckets [24]int, n int) []HourCount {
	all := make([]HourCount, 0, len(buckets))
	for hour, chats := range buckets {
		if chats > 0 {
			all = append(all, HourCount{Hour: hour, Chats: chats})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Chats != all[j].Chats {
			return all[i].Chats > all[j].Chats
		}
		return all[i].Hour < all[j].Hour
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

func topWeekdays(buckets [7]int, n int) []WeekdayCount {
	all := make([]WeekdayCount, 0, len(buckets))
	for day, chats := range buckets {
		if chats > 0 {
			all = append(all, WeekdayCount{Weekday: day, Chats: chats})
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].Chats != all[j].Chats {
			return all[i].Chats > all[j].Chats
		}
		return all[i].Weekday < all[j].Weekday
	})
	if len(all) > n {
		all = all[:n]
	}
	return all
}

// QueueLoad is one queue's volume and latency summary.
type QueueLoad struct {
	Queue          string
	Chats          int
	AvgDurationMin float64
	AvgWaitMin     float64
}

// ChannelShare reports one channel's slice of the total.
type ChannelShare struct {
	Chats        int
	SharePercent float64
}

// QueueAnalysis summarizes volume per queue and per channel flavour.
type QueueAnalysis struct {
	PerQueue  []QueueLoad
	French    ChannelShare
	SMS       ChannelShare
	Proactive ChannelShare
}

func computeQueues(t chatlog.Table) QueueAnalysis {
	type acc struct {
		chats    int
		duration float64
		wait     float64
	}
	byQueue := make(map[string]*acc)
	var out QueueAnalysis
	total := 0
	for _, r := range t.Rows() {
		total++
		a := byQueue[r.Queue]
		if a == nil {
			a = &acc{}
			byQueue[r.Queue] = a
		}
		a.chats++
		a.duration += r.DurationMinutes
		a.wait += r.WaitMinutes
		if r.IsFrench() {
			out.French.Chats++
		}
		if r.IsSMS() {
			out.SMS.Chats++
		}
		if r.IsProactive() {
			out.Proactive.Chats++
		}
	}
	if total == 0 {
		return out
	}

	for q, a := range byQueue {
		out.PerQueue = append(out.PerQueue, QueueLoad{
			Queue:          q,
			Chats:          a.chats,
			AvgDurationMin: a.duration / float64(a.chats),
			AvgWaitMin:     a.wait / float64(a.chats),
		})
	}
	sort.Slice(out.PerQueue, func(i, j int) bool {
		if out.PerQueue[i].Chats != out.PerQueue[j].Chats {
			return out.PerQueue[i].Chats > out.PerQueue[j].Chats
		}
		return out.PerQueue[i].Queue < out.PerQueue[j].Queue
	})
	out.French.SharePercent = float64(out.French.Chats) / float64(total) * 100
	out.SMS.SharePercent = float64(out.SMS.Chats) / float64(total) * 100
	out.Proactive.SharePercent = float64(out.Proactive.Chats) / float64(total) * 100
	return out
}
