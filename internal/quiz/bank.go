// Package quiz serves per-category question banks, resolves job titles to
// categories and grades submissions.
package quiz

import (
	"embed"
	"fmt"
	"os"
	"maps"
	"slices"

	"hirescore/internal/errors"
	"hirescore/internal/types"

	"gopkg.in/yaml.v3"
)

//go:embed banks/default.yaml
var embeddedBanks embed.FS

const embeddedBankPath = "banks/default.yaml"

// Definition is the on-disk shape of a question bank file
type Definition struct {
	Version         string                          `yaml:"version"`
	DefaultCategory string                          `yaml:"defaultCategory"`
	TitleMappings   map[string]string               `yaml:"titleMappings"`
	Categories      map[string][]types.QuizQuestion `yaml:"categories"`
}

// Bank is an immutable set of question lists keyed by test category.
// Accessors return copies so callers cannot mutate it.
type Bank struct {
	version         string
	defaultCategory string
	mappings        map[string]string
	categories      map[string][]types.QuizQuestion
}

// NewBank validates a definition and builds a Bank from it
func NewBank(def Definition) (*Bank, error) {
	if len(def.Categories) == 0 {
		return nil, invalidBank("bank has no categories")
	}
	if _, ok := def.Categories[def.DefaultCategory]; !ok {
		return nil, invalidBank(fmt.Sprintf("default category %q is not defined", def.DefaultCategory))
	}

	b := &Bank{
		version:         def.Version,
		defaultCategory: def.DefaultCategory,
		mappings:        make(map[string]string, len(def.TitleMappings)),
		categories:      make(map[string][]types.QuizQuestion, len(def.Categories)),
	}

	for title, category := range def.TitleMappings {
		if _, ok := def.Categories[category]; !ok {
			return nil, invalidBank(fmt.Sprintf("title mapping %q points to unknown category %q", title, category))
		}
		b.mappings[NormalizeTitle(title)] = category
	}

	for category, questions := range def.Categories {
		if err := validateQuestions(category, questions); err != nil {
			return nil, err
		}
		b.categories[category] = cloneQuestions(questions)
	}

	return b, nil
}

func validateQuestions(category string, questions []types.QuizQuestion) error {
	if len(questions) == 0 {
		return invalidBank(fmt.Sprintf("category %q has no questions", category))
	}

	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		switch {
		case q.ID == "":
			return invalidBank(fmt.Sprintf("category %q question %d has no id", category, i))
		case seen[q.ID]:
			return invalidBank(fmt.Sprintf("category %q has duplicate question id %q", category, q.ID))
		case len(q.Options) < 2:
			return invalidBank(fmt.Sprintf("question %q needs at least two options", q.ID))
		case q.Correct < 0 || q.Correct >= len(q.Options):
			return invalidBank(fmt.Sprintf("question %q has correct index %d out of range", q.ID, q.Correct))
		case q.Points <= 0:
			return invalidBank(fmt.Sprintf("question %q must be worth at least one point", q.ID))
		}
		seen[q.ID] = true
	}
	return nil
}

func invalidBank(msg string) error {
	return errors.NewValidationError(errors.ErrCodeInvalidQuestionBank, msg, nil)
}

// ParseBank decodes YAML bank data
func ParseBank(data []byte) (*Bank, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidQuestionBank, "failed to parse question bank", err)
	}
	return NewBank(def)
}

// LoadBankFile reads a YAML bank from disk
func LoadBankFile(path string) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeFileNotReadable, "failed to read question bank", err).
			WithContext("path", path)
	}
	return ParseBank(data)
}

// DefaultBank returns the compiled-in bank
func DefaultBank() (*Bank, error) {
	data, err := embeddedBanks.ReadFile(embeddedBankPath)
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidQuestionBank, "embedded question bank missing", err)
	}
	return ParseBank(data)
}

// Version returns the bank's declared version
func (b *Bank) Version() string { return b.version }

// DefaultCategory is the last resort of title resolution
func (b *Bank) DefaultCategory() string { return b.defaultCategory }

// Categories lists category keys in sorted order
func (b *Bank) Categories() []string {
	return slices.Sorted(maps.Keys(b.categories))
}

// Questions returns a copy of the questions for a category
func (b *Bank) Questions(category string) ([]types.QuizQuestion, bool) {
	qs, ok := b.categories[category]
	if !ok {
		return nil, false
	}
	return cloneQuestions(qs), true
}

// HasCategory reports whether a category exists
func (b *Bank) HasCategory(category string) bool {
	_, ok := b.categories[category]
	return ok
}

func cloneQuestions(qs []types.QuizQuestion) []types.QuizQuestion {
	out := make([]types.QuizQuestion, len(qs))
	for i, q := range qs {
		q.Options = slices.Clone(q.Options)
		q.ValidatesSkills = slices.Clone(q.ValidatesSkills)
		out[i] = q
	}
	return out
}
