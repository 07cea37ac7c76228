// Package pipeline turns scoped chat events into usage, cost, engagement and
// quality metrics, and imports event exports into the store.
package pipeline

import (
	"sort"
	"time"

	"github.com/theirongolddev/edumetrics/internal/model"
)

// Growth-rate band inside which a trend counts as stable, in percent.
const trendBand = 10.0

// ComputeUsage computes headline activity counts. Hours are taken in loc.
func ComputeUsage(events []model.ChatMessageEvent, loc *time.Location) model.UsageStats {
	stats := model.UsageStats{
		MessagesByProvider: make(map[string]int),
		MessagesByModel:    make(map[string]int),
	}

	students := make(map[int64]struct{})
	conversations := make(map[string]struct{})
	modules := make(map[int64]struct{})
	var hours [24]int
	var seen []int
	var rt responseTimes

	for _, e := range events {
		stats.TotalMessages++
		stats.TotalTokens += e.Tokens()
		if !e.Anonymous() {
			students[e.StudentID] = struct{}{}
		}
		conversations[e.ConversationID] = struct{}{}
		modules[e.ModuleID] = struct{}{}
		stats.MessagesByProvider[orUnknown(e.Provider)]++
		stats.MessagesByModel[orUnknown(e.ModelUsed)]++
		h := e.Time().In(loc).Hour()
		if hours[h] == 0 {
			seen = append(seen, h)
		}
		hours[h]++
		rt.add(e)
	}

	stats.UniqueStudents = len(students)
	stats.UniqueConversations = len(conversations)
	stats.ActiveModules = len(modules)
	stats.AvgResponseTimeMs = rt.mean()
	stats.PeakHour, stats.PeakHourMessages = peakHour(hours, seen)
	return stats
}

// peakHour sorts the hours in the order they were first seen, descending by
// count; ties keep the hour seen first. No events gives hour 0 with count 0.
func peakHour(hours [24]int, seen []int) (hour, count int) {
	if len(seen) == 0 {
		return 0, 0
	}
	order := append([]int(nil), seen...)
	sort.SliceStable(order, func(a, b int) bool { return hours[order[a]] > hours[order[b]] })
	return order[0], hours[order[0]]
}

type dayBucket struct {
	point         model.TrendPoint
	students      map[int64]struct{}
	conversations map[string]struct{}
	rt            responseTimes
}

// ComputeTrend groups events by calendar date in loc, one point per date with
// data, ascending. Growth compares message counts of the first and last dates.
func ComputeTrend(events []model.ChatMessageEvent, cm CostModel, loc *time.Location) model.UsageTrend {
	buckets := make(map[string]*dayBucket)

	for _, e := range events {
		day := e.Time().In(loc).Format("2006-01-02")
		b, ok := buckets[day]
		if !ok {
			b = &dayBucket{
				point:         model.TrendPoint{Date: day},
				students:      make(map[int64]struct{}),
				conversations: make(map[string]struct{}),
			}
			buckets[day] = b
		}
		cost, _ := cm.MessageCost(e)
		b.point.Messages++
		b.point.Tokens += e.Tokens()
		b.point.Cost += cost
		if !e.Anonymous() {
			b.students[e.StudentID] = struct{}{}
		}
		b.conversations[e.ConversationID] = struct{}{}
		b.rt.add(e)
	}

	points := make([]model.TrendPoint, 0, len(buckets))
	for _, b := range buckets {
		b.point.Students = len(b.students)
		b.point.Conversations = len(b.conversations)
		b.point.AvgResponseTimeMs = b.rt.mean()
		points = append(points, b.point)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })

	trend := model.UsageTrend{Points: points, Direction: model.TrendStable}
	if len(points) >= 2 {
		first, last := points[0].Messages, points[len(points)-1].Messages
		trend.GrowthRate = GrowthRate(float64(last), float64(first))
		trend.Direction = Direction(trend.GrowthRate)
	}
	return trend
}

// Direction classifies a growth rate as increasing, decreasing or stable.
func Direction(growth float64) string {
	switch {
	case growth > trendBand:
		return model.TrendIncreasing
	case growth < -trendBand:
		return model.TrendDecreasing
	default:
		return model.TrendStable
	}
}

// GrowthRate returns (current - previous) / previous * 100, or 0 when previous is 0.
func GrowthRate(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * 100
}

// ComputeHourly returns 24 hour-of-day buckets in loc.
func ComputeHourly(events []model.ChatMessageEvent, loc *time.Location) []model.HourlyUsage {
	hours := make([]model.HourlyUsage, 24)
	students := make([]map[int64]struct{}, 24)
	rts := make([]responseTimes, 24)
	for i := range hours {
		hours[i].Hour = i
		students[i] = make(map[int64]struct{})
	}

	for _, e := range events {
		h := e.Time().In(loc).Hour()
		hours[h].Messages++
		hours[h].Tokens += e.Tokens()
		if !e.Anonymous() {
			students[h][e.StudentID] = struct{}{}
		}
		rts[h].add(e)
	}

	for i := range hours {
		hours[i].Students = len(students[i])
		hours[i].AvgResponseTimeMs = rts[i].mean()
	}
	return hours
}

type rankRow struct {
	entity        model.RankedEntity
	conversations map[string]struct{}
}

// rank groups events by key and sorts descending by messages; ties keep the
// order in which entities were first seen. limit <= 0 returns every entity.
func rank(events []model.ChatMessageEvent, cm CostModel, limit int, key func(model.ChatMessageEvent) (int64, bool)) []model.RankedEntity {
	index := make(map[int64]int)
	var rows []*rankRow

	for _, e := range events {
		id, ok := key(e)
		if !ok {
			continue
		}
		i, seen := index[id]
		if !seen {
			i = len(rows)
			index[id] = i
			rows = append(rows, &rankRow{
				entity:        model.RankedEntity{ID: id},
				conversations: make(map[string]struct{}),
			})
		}
		r := rows[i]
		cost, _ := cm.MessageCost(e)
		r.entity.Messages++
		r.entity.Tokens += e.Tokens()
		r.entity.Cost += cost
		r.conversations[e.ConversationID] = struct{}{}
	}

	out := make([]model.RankedEntity, len(rows))
	for i, r := range rows {
		r.entity.Conversations = len(r.conversations)
		out[i] = r.entity
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Messages > out[j].Messages })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// TopStudents ranks identified students by message count. Anonymous events are skipped.
func TopStudents(events []model.ChatMessageEvent, cm CostModel, limit int) []model.RankedEntity {
	return rank(events, cm, limit, func(e model.ChatMessageEvent) (int64, bool) {
		return e.StudentID, !e.Anonymous()
	})
}

// TopModules ranks modules by message count.
func TopModules(events []model.ChatMessageEvent, cm CostModel, limit int) []model.RankedEntity {
	return rank(events, cm, limit, func(e model.ChatMessageEvent) (int64, bool) {
		return e.ModuleID, true
	})
}

// FilterByTime returns events whose timestamp falls within [since, until).
// Zero bounds are open.
func FilterByTime(events []model.ChatMessageEvent, since, until time.Time) []model.ChatMessageEvent {
	if since.IsZero() && until.IsZero() {
		return events
	}

	var result []model.ChatMessageEvent
	for _, e := range events {
		t := e.Time()
		if !since.IsZero() && t.Before(since) {
			continue
		}
		if !until.IsZero() && !t.Before(until) {
			continue
		}
		result = append(result, e)
	}
	return result
}

// responseTimes accumulates known response times.
type responseTimes struct {
	sum   int64
	count int
}

func (r *responseTimes) add(e model.ChatMessageEvent) {
	if e.ResponseTimeMs == nil {
		return
	}
	r.sum += *e.ResponseTimeMs
	r.count++
}

func (r responseTimes) mean() float64 {
	if r.count == 0 {
		return 0
	}
	return float64(r.sum) / float64(r.count)
}
