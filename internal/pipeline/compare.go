package pipeline

import (
	"sort"

	"github.com/theirongolddev/edumetrics/internal/model"
)

type moduleRow struct {
	cmp           model.ModuleComparison
	students      map[int64]struct{}
	conversations map[string]struct{}
	rt            responseTimes
}

// CompareModules computes side-by-side activity per module, sorted by
// message count descending with ties in first-seen order.
func CompareModules(events []model.ChatMessageEvent, cm CostModel, h HierarchyMap) []model.ModuleComparison {
	index := make(map[int64]int)
	var rows []*moduleRow

	for _, e := range events {
		i, ok := index[e.ModuleID]
		if !ok {
			i = len(rows)
			index[e.ModuleID] = i
			row := &moduleRow{
				cmp:           model.ModuleComparison{ModuleID: e.ModuleID},
				students:      make(map[int64]struct{}),
				conversations: make(map[string]struct{}),
			}
			row.cmp.CourseID, _ = h.Course(e.ModuleID)
			rows = append(rows, row)
		}
		r := rows[i]
		cost, _ := cm.MessageCost(e)
		r.cmp.Messages++
		r.cmp.Tokens += e.Tokens()
		r.cmp.Cost += cost
		if !e.Anonymous() {
			r.students[e.StudentID] = struct{}{}
		}
		r.conversations[e.ConversationID] = struct{}{}
		r.rt.add(e)
	}

	out := make([]model.ModuleComparison, len(rows))
	for i, r := range rows {
		r.cmp.Students = len(r.students)
		r.cmp.Conversations = len(r.conversations)
		r.cmp.AvgResponseTimeMs = r.rt.mean()
		if r.cmp.Conversations > 0 {
			r.cmp.MessagesPerConversation = float64(r.cmp.Messages) / float64(r.cmp.Conversations)
		}
		out[i] = r.cmp
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Messages > out[j].Messages })
	return out
}
