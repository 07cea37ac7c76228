package config

import (
	"sort"
	"strings"

	"github.com/theirongolddev/edumetrics/internal/model"
)

// DefaultPricing is the built-in catalog used to seed a fresh store.
// Rates are USD per million tokens.
var DefaultPricing = []model.ModelPricing{
	{ModelName: "gpt-4o", Provider: "openai", InputCostPerMillionTokens: 2.50, OutputCostPerMillionTokens: 10.00},
	{ModelName: "gpt-4o-mini", Provider: "openai", InputCostPerMillionTokens: 0.15, OutputCostPerMillionTokens: 0.60},
	{ModelName: "gpt-4.1", Provider: "openai", InputCostPerMillionTokens: 2.00, OutputCostPerMillionTokens: 8.00},
	{ModelName: "gpt-4.1-mini", Provider: "openai", InputCostPerMillionTokens: 0.40, OutputCostPerMillionTokens: 1.60},
	{ModelName: "claude-sonnet-4-5", Provider: "anthropic", InputCostPerMillionTokens: 3.00, OutputCostPerMillionTokens: 15.00},
	{ModelName: "claude-haiku-4-5", Provider: "anthropic", InputCostPerMillionTokens: 1.00, OutputCostPerMillionTokens: 5.00},
	{ModelName: "gemini-2.5-flash", Provider: "google", InputCostPerMillionTokens: 0.30, OutputCostPerMillionTokens: 2.50},
	{ModelName: "gemini-2.5-pro", Provider: "google", InputCostPerMillionTokens: 1.25, OutputCostPerMillionTokens: 10.00},
}

// PricingTable maps model names to their active pricing row.
type PricingTable map[string]model.ModelPricing

// NewPricingTable indexes pricing rows by model name. Later rows win.
func NewPricingTable(rows []model.ModelPricing) PricingTable {
	table := make(PricingTable, len(rows))
	for _, r := range rows {
		if r.ModelName == "" {
			continue
		}
		table[r.ModelName] = r
	}
	return table
}

// WithOverrides returns a copy of the table with config overrides applied.
// An override for an unknown model adds a row when both rates are set.
func (t PricingTable) WithOverrides(o PricingOverrides) PricingTable {
	out := make(PricingTable, len(t)+len(o.Overrides))
	for k, v := range t {
		out[k] = v
	}
	for name, ov := range o.Overrides {
		row, ok := out[name]
		if !ok {
			if ov.InputPerMTok == nil || ov.OutputPerMTok == nil {
				continue
			}
			row = model.ModelPricing{ModelName: name}
		}
		if ov.Provider != "" {
			row.Provider = ov.Provider
		}
		if ov.InputPerMTok != nil {
			row.InputCostPerMillionTokens = *ov.InputPerMTok
		}
		if ov.OutputPerMTok != nil {
			row.OutputCostPerMillionTokens = *ov.OutputPerMTok
		}
		out[name] = row
	}
	return out
}

// Lookup returns the pricing for a model, trying the exact name first
// and then the name with a trailing date suffix removed.
func (t PricingTable) Lookup(modelName string) (model.ModelPricing, bool) {
	if p, ok := t[modelName]; ok {
		return p, true
	}
	normalized := t.NormalizeModelName(modelName)
	p, ok := t[normalized]
	return p, ok
}

// Rows returns the table as a slice sorted by model name.
func (t PricingTable) Rows() []model.ModelPricing {
	rows := make([]model.ModelPricing, 0, len(t))
	for _, r := range t {
		rows = append(rows, r)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].ModelName < rows[j].ModelName })
	return rows
}

// NormalizeModelName strips date suffixes from model identifiers when the
// shorter name is priced.
// e.g., "gpt-4o-2024-08-06" -> "gpt-4o", "claude-haiku-4-5-20251001" -> "claude-haiku-4-5"
func (t PricingTable) NormalizeModelName(raw string) string {
	raw = strings.TrimSpace(raw)
	if _, ok := t[raw]; ok {
		return raw
	}

	parts := strings.Split(raw, "-")

	// Compact date: -20251001
	if len(parts) >= 2 {
		last := parts[len(parts)-1]
		if isAllDigits(last) && len(last) >= 8 {
			candidate := strings.Join(parts[:len(parts)-1], "-")
			if _, ok := t[candidate]; ok {
				return candidate
			}
		}
	}

	// ISO date: -2024-08-06
	if len(parts) >= 4 {
		y, m, d := parts[len(parts)-3], parts[len(parts)-2], parts[len(parts)-1]
		if len(y) == 4 && len(m) == 2 && len(d) == 2 && isAllDigits(y+m+d) {
			candidate := strings.Join(parts[:len(parts)-3], "-")
			if _, ok := t[candidate]; ok {
				return candidate
			}
		}
	}

	return raw
}

func isAllDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}
