package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hirescore/internal/errors"
	"hirescore/internal/types"
)

const jobYAML = `title: SOC Analyst
skills: [SIEM, Nmap]
knowledge: [Network protocols]
tasks: [Monitor alerts]
experienceRange: {min: 0, max: 2}
weights: {skills: 0.5, knowledge: 0.3, tasks: 0.2}
thresholdScore: 70
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestReadJobFileYAML(t *testing.T) {
	fp := NewFileProcessor(errors.NewNopLogger())
	job, err := fp.ReadJobFile(writeTemp(t, "job.yaml", jobYAML))
	require.NoError(t, err)

	assert.Equal(t, "SOC Analyst", job.Title)
	assert.Equal(t, []string{"SIEM", "Nmap"}, job.Skills)
	require.NotNil(t, job.Weights)
	assert.InDelta(t, 0.5, job.Weights.Skills, 1e-9)
	require.NotNil(t, job.ExperienceRange)
	assert.Equal(t, 2, job.ExperienceRange.Max)
	assert.Equal(t, 70, job.ThresholdScore)
}

func TestReadJobFileJSON(t *testing.T) {
	fp := NewFileProcessor(errors.NewNopLogger())
	content := `{"title":"Pentester","skills":["Burp Suite"],"experienceRange":{"min":1,"max":4},"weights":{"skills":1,"knowledge":0,"tasks":0}}`
	job, err := fp.ReadJobFile(writeTemp(t, "job.json", content))
	require.NoError(t, err)
	assert.Equal(t, "Pentester", job.Title)
	assert.Equal(t, []string{"Burp Suite"}, job.Skills)
}

func TestReadJobFileErrors(t *testing.T) {
	fp := NewFileProcessor(errors.NewNopLogger())

	_, err := fp.ReadJobFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))

	_, err = fp.ReadJobFile(writeTemp(t, "bad.json", "{not json"))
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}

func TestDecodeAnswers(t *testing.T) {
	var answers []types.QuizAnswer
	require.NoError(t, Decode("answers.json", []byte(`[{"questionId":"soc-1","selectedOption":1}]`), &answers))
	require.Len(t, answers, 1)
	assert.Equal(t, "soc-1", answers[0].QuestionID)
}

func TestRunCommand(t *testing.T) {
	resume := writeTemp(t, "resume.txt", "Go developer")
	out := filepath.Join(t.TempDir(), "out", "result.json")

	createInput := func(contents []string) (string, error) { return contents[0], nil }
	operation := func(_ context.Context, in string) (map[string]string, error) {
		return map[string]string{"upper": strings.ToUpper(in)}, nil
	}

	err := RunCommand(context.Background(), errors.NewNopLogger(),
		CommandConfig{OutputFile: out, OutputFormat: "json"},
		[]string{resume}, createInput, operation, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"upper": "GO DEVELOPER"`)
}

func TestRunCommandMissingFile(t *testing.T) {
	err := RunCommand(context.Background(), errors.NewNopLogger(), CommandConfig{OutputFormat: "json"},
		[]string{filepath.Join(t.TempDir(), "nope.txt")},
		func(c []string) (string, error) { return c[0], nil },
		func(_ context.Context, in string) (string, error) { return in, nil },
		nil)
	assert.True(t, errors.IsType(err, errors.ErrorTypeValidation))
}

func TestOutputHandlerStdout(t *testing.T) {
	var buf bytes.Buffer
	handler := NewOutputHandlerTo(&buf, errors.NewNopLogger())

	require.NoError(t, handler.HandleOutput(types.QuizResult{Category: "soc_analyst"}, CommandConfig{OutputFormat: "text"}))
	assert.Contains(t, buf.String(), "Category: soc_analyst")

	err := handler.HandleOutput(types.QuizResult{}, CommandConfig{OutputFormat: "xml"})
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidFormat))
}
