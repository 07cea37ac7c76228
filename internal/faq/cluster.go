package faq

import (
	"regexp"
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/theirongolddev/edumetrics/internal/model"
)

// quizAnswer matches multiple-choice selections such as "B)", "c." or "LETRA C".
var quizAnswer = regexp.MustCompile(`(?i)^(letra\s+)?[a-e][).]*$`)

// Options tunes clustering.
type Options struct {
	Threshold      int // minimum Ratio to join a cluster
	MinOccurrences int
	MaxSamples     int
	Limit          int // 0 = no limit
}

// DefaultOptions returns the stock clustering settings.
func DefaultOptions() Options {
	return Options{Threshold: 75, MinOccurrences: 1, MaxSamples: 5}
}

// IsQuizAnswer reports whether a question is a bare multiple-choice answer.
func IsQuizAnswer(q string) bool {
	n := Normalize(q)
	if quizAnswer.MatchString(n) {
		return true
	}
	// Any single letter, optionally followed by punctuation.
	trimmed := strings.TrimRightFunc(n, unicode.IsPunct)
	if utf8.RuneCountInString(trimmed) == 1 {
		r, _ := utf8.DecodeRuneInString(trimmed)
		return unicode.IsLetter(r)
	}
	return false
}

type candidate struct {
	event      model.ChatMessageEvent
	normalized string
}

// Cluster groups questions greedily: each unassigned question seeds a cluster,
// then every later unassigned question scoring at least the threshold joins it.
// Membership depends on input order. The result is sorted by count descending,
// ties keeping seed order.
func Cluster(events []model.ChatMessageEvent, opts Options) []model.FaqItem {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultOptions().Threshold
	}
	if opts.MaxSamples <= 0 {
		opts.MaxSamples = DefaultOptions().MaxSamples
	}

	cands := make([]candidate, 0, len(events))
	for _, e := range events {
		n := Normalize(e.Question)
		if n == "" || IsQuizAnswer(n) {
			continue
		}
		cands = append(cands, candidate{event: e, normalized: n})
	}

	assigned := make([]bool, len(cands))
	var items []model.FaqItem

	for i := range cands {
		if assigned[i] {
			continue
		}
		assigned[i] = true
		members := []int{i}
		for j := i + 1; j < len(cands); j++ {
			if assigned[j] {
				continue
			}
			if Ratio(cands[i].normalized, cands[j].normalized) >= opts.Threshold {
				assigned[j] = true
				members = append(members, j)
			}
		}
		if len(members) < opts.MinOccurrences {
			continue
		}
		items = append(items, buildItem(cands, members, opts.MaxSamples))
	}

	sort.SliceStable(items, func(a, b int) bool { return items[a].Count > items[b].Count })
	if opts.Limit > 0 && len(items) > opts.Limit {
		items = items[:opts.Limit]
	}
	return items
}

func buildItem(cands []candidate, members []int, maxSamples int) model.FaqItem {
	seed := cands[members[0]]
	item := model.FaqItem{
		Question:   strings.TrimSpace(seed.event.Question),
		Normalized: seed.normalized,
		Count:      len(members),
		Category:   Categorize(seed.normalized),
	}

	seenSample := make(map[string]bool)
	seenModule := make(map[int64]bool)
	var first, last time.Time
	for _, idx := range members {
		e := cands[idx].event

		text := strings.TrimSpace(e.Question)
		if len(item.Samples) < maxSamples && !seenSample[text] {
			seenSample[text] = true
			item.Samples = append(item.Samples, text)
		}
		if len(e.Response) > len(item.Answer) {
			item.Answer = e.Response
		}
		if !seenModule[e.ModuleID] {
			seenModule[e.ModuleID] = true
			item.ModuleIDs = append(item.ModuleIDs, e.ModuleID)
		}

		ts := e.Time()
		if first.IsZero() || ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}
	sort.Slice(item.ModuleIDs, func(a, b int) bool { return item.ModuleIDs[a] < item.ModuleIDs[b] })
	item.FirstSeen, item.LastSeen = first, last
	return item
}
