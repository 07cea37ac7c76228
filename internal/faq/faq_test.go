package faq

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/edumetrics/internal/model"
)

func questions(qs ...string) []model.ChatMessageEvent {
	events := make([]model.ChatMessageEvent, len(qs))
	for i, q := range qs {
		events[i] = model.ChatMessageEvent{
			ConversationID: "c",
			Timestamp:      int64(1000 * (i + 1)),
			ModuleID:       int64(10 + i%2),
			Question:       q,
		}
	}
	return events
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "how do i submit", Normalize("  How do I   submit?! "))
	assert.Equal(t, "", Normalize("???"))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 100, Ratio("abc", "abc"))
	assert.Equal(t, 100, Ratio("", ""))
	assert.Equal(t, 0, Ratio("abc", ""))
	assert.Equal(t, 75, Ratio("abcd", "abce"))
	// Rune based: one substitution in a four-rune string.
	assert.Equal(t, 75, Ratio("cómo", "como"))
}

func TestIsQuizAnswer(t *testing.T) {
	for _, q := range []string{"A", "b)", "LETRA C", "letra d.", "e).", "z", "x!"} {
		assert.True(t, IsQuizAnswer(q), q)
	}
	for _, q := range []string{"ab", "Is it A?", "letra", "f) option"} {
		assert.False(t, IsQuizAnswer(q), q)
	}
}

func TestCluster_MergesPhrasingsAndDropsQuizAnswers(t *testing.T) {
	items := Cluster(questions("How do I submit?", "how do i submit", "B)"), DefaultOptions())

	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Count)
	assert.Equal(t, "How do I submit?", items[0].Question)
	assert.Equal(t, CategoryHowTo, items[0].Category)
	assert.Equal(t, []int64{10, 11}, items[0].ModuleIDs)
	assert.Equal(t, int64(1000), items[0].FirstSeen.UnixMilli())
	assert.Equal(t, int64(2000), items[0].LastSeen.UnixMilli())
}

func TestCluster_EveryQuestionInOneCluster(t *testing.T) {
	events := questions(
		"what is a derivative", "What is a derivative?", "why is the sky blue",
		"A", "what is an integral", "why is the sky blue?", "LETRA B", "",
	)
	items := Cluster(events, DefaultOptions())

	total := 0
	for _, it := range items {
		total += it.Count
		assert.False(t, IsQuizAnswer(it.Question))
		for _, s := range it.Samples {
			assert.False(t, IsQuizAnswer(s), s)
		}
	}
	// 8 events minus 2 quiz answers and 1 empty question.
	assert.Equal(t, 5, total)
}

func TestCluster_Idempotent(t *testing.T) {
	events := questions("how to cite", "how to cite?", "when is the exam", "when is the exam due", "example of recursion")
	first := Cluster(events, DefaultOptions())
	second := Cluster(events, DefaultOptions())
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("clustering not idempotent (-first +second):\n%s", diff)
	}
}

func TestCluster_OrderAndLimits(t *testing.T) {
	events := questions("q one", "other topic", "other topic?", "other topic!", "q one.")
	events[0].Response = "short"
	events[4].Response = "a much longer answer"

	items := Cluster(events, Options{Threshold: 90, MinOccurrences: 2, MaxSamples: 1})
	require.Len(t, items, 2)
	assert.Equal(t, "other topic", items[0].Normalized, "largest cluster first")
	assert.Equal(t, 3, items[0].Count)
	assert.Len(t, items[0].Samples, 1)
	assert.Equal(t, "a much longer answer", items[1].Answer)

	limited := Cluster(events, Options{Threshold: 90, Limit: 1})
	assert.Len(t, limited, 1)

	strict := Cluster(events, Options{Threshold: 90, MinOccurrences: 4})
	assert.Empty(t, strict)
}

func TestCategorize(t *testing.T) {
	tests := map[string]string{
		"how do i submit":             CategoryHowTo,
		"cómo entrego la tarea":       CategoryHowTo,
		"what is entropy":             CategoryDefinition,
		"qué es la entropía":          CategoryDefinition,
		"why does it fail":            CategoryExplanation,
		"por qué falla":               CategoryExplanation,
		"when is the deadline":        CategoryTiming,
		"cuándo es el examen":         CategoryTiming,
		"give me an example":          CategoryExample,
		"un ejemplo por favor":        CategoryExample,
		"explain photosynthesis":      CategoryGeneral,
		"somehow this works":          CategoryGeneral,
		"¿cuando abre la plataforma?": CategoryTiming,
	}
	for q, want := range tests {
		assert.Equal(t, want, Categorize(q), q)
	}
}
