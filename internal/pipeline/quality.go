package pipeline

import (
	"math"
	"sort"

	"github.com/theirongolddev/edumetrics/internal/model"
)

// Response-time thresholds in milliseconds.
const (
	fastResponseMs = 2000
	slowResponseMs = 10000
)

// GradeResponses summarizes the response-time distribution of events with a
// known response time. Percentiles use the nearest-rank index floor(n*p).
func GradeResponses(events []model.ChatMessageEvent) model.ResponseQuality {
	var (
		times      []int64
		sum        int64
		tokenSum   int64
		tokenCount int
		q          model.ResponseQuality
	)
	for _, e := range events {
		if e.ResponseTimeMs == nil {
			continue
		}
		rt := *e.ResponseTimeMs
		times = append(times, rt)
		sum += rt
		if rt < fastResponseMs {
			q.FastCount++
		}
		if rt > slowResponseMs {
			q.SlowCount++
		}
		if e.TokenCount != nil {
			tokenSum += *e.TokenCount
			tokenCount++
		}
	}

	q.SampleSize = len(times)
	if q.SampleSize == 0 {
		q.Status = model.StatusNoData
		return q
	}

	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	n := float64(q.SampleSize)
	q.AvgResponseTimeMs = float64(sum) / n
	q.MedianMs = percentile(times, 0.50)
	q.P95Ms = percentile(times, 0.95)
	q.P99Ms = percentile(times, 0.99)
	q.FastPercent = float64(q.FastCount) / n * 100
	q.SlowPercent = float64(q.SlowCount) / n * 100
	if tokenCount > 0 {
		q.AvgTokens = float64(tokenSum) / float64(tokenCount)
	}
	q.Grade = Grade(q.AvgResponseTimeMs)
	q.Status = GradeStatus(q.Grade)
	return q
}

// percentile returns sorted[floor(len*p)], clamped to the last element.
func percentile(sorted []int64, p float64) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(math.Floor(float64(len(sorted)) * p))
	idx = max(0, min(idx, len(sorted)-1))
	return sorted[idx]
}

// Grade maps a mean response time to a letter grade.
func Grade(meanMs float64) string {
	switch {
	case meanMs < 2000:
		return "A"
	case meanMs < 3000:
		return "B"
	case meanMs < 5000:
		return "C"
	case meanMs < 10000:
		return "D"
	default:
		return "F"
	}
}

// GradeStatus maps a grade to healthy, warning or critical.
func GradeStatus(grade string) string {
	switch grade {
	case "A", "B":
		return model.StatusHealthy
	case "C":
		return model.StatusWarning
	case "":
		return model.StatusNoData
	default:
		return model.StatusCritical
	}
}
