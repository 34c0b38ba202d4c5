package quiz

import (
	"strings"
)

// How a title was resolved to a category
const (
	ResolvedByMapping  = "mapping"
	ResolvedByCategory = "category"
	ResolvedByDefault  = "default"
)

// Resolution is the outcome of mapping a job title to a test category
type Resolution struct {
	Title      string `json:"title"`
	Normalized string `json:"normalized"`
	Category   string `json:"category"`
	ResolvedBy string `json:"resolvedBy"`
}

// resolveStep tries to turn a normalized title into a category
type resolveStep struct {
	name    string
	resolve func(b *Bank, normalized string) (string, bool)
}

// resolveChain is evaluated in order and the first hit wins:
// direct mapping table, then a category with the same name, then the default.
var resolveChain = []resolveStep{
	{name: ResolvedByMapping, resolve: func(b *Bank, normalized string) (string, bool) {
		category, ok := b.mappings[normalized]
		return category, ok
	}},
	{name: ResolvedByCategory, resolve: func(b *Bank, normalized string) (string, bool) {
		return normalized, b.HasCategory(normalized)
	}},
	{name: ResolvedByDefault, resolve: func(b *Bank, _ string) (string, bool) {
		return b.defaultCategory, b.HasCategory(b.defaultCategory)
	}},
}

// NormalizeTitle lowercases a job title and joins its words with underscores
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), "_")
}

// Resolve maps a job title to a test category
func (b *Bank) Resolve(title string) Resolution {
	normalized := NormalizeTitle(title)
	for _, step := range resolveChain {
		if category, ok := step.resolve(b, normalized); ok {
			return Resolution{Title: title, Normalized: normalized, Category: category, ResolvedBy: step.name}
		}
	}
	// NewBank guarantees the default category exists
	return Resolution{Title: title, Normalized: normalized, Category: b.defaultCategory, ResolvedBy: ResolvedByDefault}
}
