package pipeline

import (
	"github.com/theirongolddev/edumetrics/internal/config"
	"github.com/theirongolddev/edumetrics/internal/model"
)

// DefaultInputShare is the fraction of a message's tokens billed at the input rate.
// The split is a heuristic for question/answer length asymmetry, not a measurement,
// and is the largest source of error in cost estimates.
const DefaultInputShare = 0.25

// unknownKey buckets events with no provider or model name.
const unknownKey = "unknown"

// CostModel estimates per-message cost from total tokens and active pricing.
type CostModel struct {
	Pricing    config.PricingTable
	InputShare float64
}

// NewCostModel creates a cost model. An input share outside [0, 1] falls back
// to DefaultInputShare.
func NewCostModel(pricing config.PricingTable, inputShare float64) CostModel {
	if inputShare < 0 || inputShare > 1 {
		inputShare = DefaultInputShare
	}
	return CostModel{Pricing: pricing, InputShare: inputShare}
}

// Cost returns the estimated USD cost for tokens on a model, and whether the
// model was priced. Unpriced models cost exactly 0.
func (c CostModel) Cost(tokens int64, modelName string) (float64, bool) {
	p, ok := c.Pricing.Lookup(modelName)
	if !ok {
		return 0, false
	}
	in := float64(tokens) * c.InputShare
	out := float64(tokens) * (1 - c.InputShare)
	return in/1e6*p.InputCostPerMillionTokens + out/1e6*p.OutputCostPerMillionTokens, true
}

// MessageCost returns the estimated cost of one event. Missing token counts
// and missing pricing rows contribute 0 and report priced=false.
func (c CostModel) MessageCost(e model.ChatMessageEvent) (cost float64, priced bool) {
	if e.TokenCount == nil {
		return 0, false
	}
	return c.Cost(*e.TokenCount, e.ModelUsed)
}

// HierarchyMap resolves modules to their course and university.
type HierarchyMap struct {
	ModuleCourse     map[int64]int64
	CourseUniversity map[int64]int64
}

// Course returns the owning course of a module.
func (h HierarchyMap) Course(moduleID int64) (int64, bool) {
	id, ok := h.ModuleCourse[moduleID]
	return id, ok
}

// University returns the owning university of a module.
func (h HierarchyMap) University(moduleID int64) (int64, bool) {
	courseID, ok := h.Course(moduleID)
	if !ok {
		return 0, false
	}
	id, ok := h.CourseUniversity[courseID]
	return id, ok
}

// AnalyzeCosts attributes message cost to provider, model, module, course and
// university. Modules without a resolvable course or university are left out
// of those breakdowns rather than grouped under a placeholder ID.
// Transcription costs are reported as their own category and added to TotalCost.
func AnalyzeCosts(events []model.ChatMessageEvent, cm CostModel, h HierarchyMap, transcriptions []model.TranscriptionCost) model.CostAnalysis {
	a := model.CostAnalysis{
		InputShare:   cm.InputShare,
		ByProvider:   make(map[string]model.CostBreakdown),
		ByModel:      make(map[string]model.CostBreakdown),
		ByModule:     make(map[int64]model.CostBreakdown),
		ByCourse:     make(map[int64]model.CostBreakdown),
		ByUniversity: make(map[int64]model.CostBreakdown),
	}
	a.Transcriptions.ByModule = make(map[int64]float64)

	for _, e := range events {
		cost, priced := cm.MessageCost(e)
		tokens := e.Tokens()

		a.TotalMessages++
		a.TotalTokens += tokens
		a.MessageCost += cost
		if priced {
			a.PricedMessages++
		} else {
			a.UnpricedMessages++
		}

		addCost(a.ByProvider, orUnknown(e.Provider), cost, tokens)
		addCost(a.ByModel, orUnknown(e.ModelUsed), cost, tokens)
		addCost(a.ByModule, e.ModuleID, cost, tokens)
		if courseID, ok := h.Course(e.ModuleID); ok {
			addCost(a.ByCourse, courseID, cost, tokens)
		}
		if uniID, ok := h.University(e.ModuleID); ok {
			addCost(a.ByUniversity, uniID, cost, tokens)
		}
	}

	for _, t := range transcriptions {
		a.Transcriptions.Count++
		a.Transcriptions.Cost += t.CostUSD
		a.Transcriptions.DurationSeconds += t.DurationSeconds
		a.Transcriptions.ByModule[t.ModuleID] += t.CostUSD
	}
	a.TranscriptionCost = a.Transcriptions.Cost
	a.TotalCost = a.MessageCost + a.TranscriptionCost
	return a
}

// TotalMessageCost sums estimated message cost across events.
func TotalMessageCost(events []model.ChatMessageEvent, cm CostModel) float64 {
	var total float64
	for _, e := range events {
		c, _ := cm.MessageCost(e)
		total += c
	}
	return total
}

func addCost[K comparable](m map[K]model.CostBreakdown, key K, cost float64, tokens int64) {
	b := m[key]
	b.Cost += cost
	b.Messages++
	b.Tokens += tokens
	m[key] = b
}

func orUnknown(s string) string {
	if s == "" {
		return unknownKey
	}
	return s
}
