package config

import (
	"testing"

	"github.com/theirongolddev/edumetrics/internal/model"
)

func ptr(v float64) *float64 { return &v }

func testTable() PricingTable {
	return NewPricingTable([]model.ModelPricing{
		{ModelName: "gpt-4o", Provider: "openai", InputCostPerMillionTokens: 2.5, OutputCostPerMillionTokens: 10},
		{ModelName: "claude-haiku-4-5", Provider: "anthropic", InputCostPerMillionTokens: 1, OutputCostPerMillionTokens: 5},
	})
}

func TestLookup_ExactAndDated(t *testing.T) {
	table := testTable()

	if _, ok := table.Lookup("gpt-4o"); !ok {
		t.Fatal("Lookup(gpt-4o) returned !ok")
	}

	p, ok := table.Lookup("gpt-4o-2024-08-06")
	if !ok {
		t.Fatal("Lookup with ISO date suffix returned !ok")
	}
	if p.ModelName != "gpt-4o" {
		t.Fatalf("ISO suffix resolved to %q, want gpt-4o", p.ModelName)
	}

	p, ok = table.Lookup("claude-haiku-4-5-20251001")
	if !ok {
		t.Fatal("Lookup with compact date suffix returned !ok")
	}
	if p.OutputCostPerMillionTokens != 5 {
		t.Fatalf("OutputCostPerMillionTokens = %.2f, want 5", p.OutputCostPerMillionTokens)
	}
}

func TestLookup_UnknownModel(t *testing.T) {
	table := testTable()
	if _, ok := table.Lookup("llama-3-70b"); ok {
		t.Fatal("Lookup returned ok for an unpriced model")
	}
	if got := table.NormalizeModelName("llama-3-70b"); got != "llama-3-70b" {
		t.Fatalf("NormalizeModelName changed unknown name to %q", got)
	}
}

func TestWithOverrides(t *testing.T) {
	table := testTable().WithOverrides(PricingOverrides{Overrides: map[string]ModelPricingOverride{
		"gpt-4o":      {OutputPerMTok: ptr(12)},
		"local-model": {Provider: "self-hosted", InputPerMTok: ptr(0.1), OutputPerMTok: ptr(0.2)},
		"half-set":    {InputPerMTok: ptr(1)},
	}})

	p, _ := table.Lookup("gpt-4o")
	if p.InputCostPerMillionTokens != 2.5 || p.OutputCostPerMillionTokens != 12 {
		t.Fatalf("gpt-4o override = %+v, want input 2.5 output 12", p)
	}

	local, ok := table.Lookup("local-model")
	if !ok || local.Provider != "self-hosted" {
		t.Fatalf("local-model override not added: %+v ok=%v", local, ok)
	}

	if _, ok := table.Lookup("half-set"); ok {
		t.Fatal("override with a single rate should not add a new model")
	}

	// The original table is untouched.
	orig, _ := testTable().Lookup("gpt-4o")
	if orig.OutputCostPerMillionTokens != 10 {
		t.Fatalf("original table mutated: %+v", orig)
	}
}

func TestRowsSorted(t *testing.T) {
	rows := NewPricingTable(DefaultPricing).Rows()
	if len(rows) != len(DefaultPricing) {
		t.Fatalf("Rows len = %d, want %d", len(rows), len(DefaultPricing))
	}
	for i := 1; i < len(rows); i++ {
		if rows[i-1].ModelName > rows[i].ModelName {
			t.Fatalf("rows not sorted at %d: %s > %s", i, rows[i-1].ModelName, rows[i].ModelName)
		}
	}
}
