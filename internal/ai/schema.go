package ai

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/candidate_profile.json
var candidateProfileSchemaJSON string

var candidateProfileSchema = gojsonschema.NewStringLoader(candidateProfileSchemaJSON)

// ValidateProfileJSON checks a model answer against the extractor contract.
// The response schema sent to the model is advisory, so every answer is checked again here.
func ValidateProfileJSON(raw []byte) error {
	result, err := gojsonschema.Validate(candidateProfileSchema, gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("schema validation could not run: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return fmt.Errorf("response does not match profile schema: %s", strings.Join(problems, "; "))
}
