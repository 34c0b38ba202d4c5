package formatters

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"hirescore/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// Data type keys used by the registry
const (
	TypeAny          = "any"
	TypeApplication  = "ApplicationReport"
	TypeRanking      = "RankingReport"
	TypeVerification = "SkillVerification"
	TypeQuizResult   = "QuizResult"
	TypeSubmission   = "QuizSubmissionReport"
	TypeQuestions    = "QuestionSheet"
)

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", TypeAny, &JSONFormatter{})
	for _, f := range []Formatter{
		&ApplicationFormatter{}, &RankingFormatter{}, &VerificationFormatter{},
		&QuizResultFormatter{}, &SubmissionFormatter{}, &QuestionSheetFormatter{},
	} {
		registry.RegisterFormatter("text", f.SupportedType(), f)
	}
	for _, f := range []Formatter{
		&ApplicationFormatter{Markdown: true}, &RankingFormatter{Markdown: true}, &VerificationFormatter{Markdown: true},
		&QuizResultFormatter{Markdown: true}, &SubmissionFormatter{Markdown: true}, &QuestionSheetFormatter{Markdown: true},
	} {
		registry.RegisterFormatter("markdown", f.SupportedType(), f)
	}

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters[TypeAny]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

// deref lets callers pass pointers to the report types
func deref(data any) any {
	switch v := data.(type) {
	case *types.Application:
		if v != nil {
			return v.ApplicationReport
		}
	case *types.ApplicationReport:
		if v != nil {
			return *v
		}
	case *types.RankingReport:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.ApplicationReport:
		return TypeApplication
	case types.RankingReport:
		return TypeRanking
	case types.SkillVerification:
		return TypeVerification
	case types.QuizResult:
		return TypeQuizResult
	case types.QuizSubmissionReport:
		return TypeSubmission
	case types.QuestionSheet:
		return TypeQuestions
	default:
		return TypeAny
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return TypeAny
}

// doc renders the same content as plain text or markdown
type doc struct {
	markdown bool
	b        strings.Builder
}

func (d *doc) title(s string) {
	if d.markdown {
		fmt.Fprintf(&d.b, "# %s\n\n", s)
		return
	}
	fmt.Fprintf(&d.b, "=== %s ===\n\n", strings.ToUpper(s))
}

func (d *doc) section(s string) {
	if d.markdown {
		fmt.Fprintf(&d.b, "## %s\n\n", s)
		return
	}
	fmt.Fprintf(&d.b, "--- %s ---\n", s)
}

func (d *doc) field(label string, value any) {
	if d.markdown {
		fmt.Fprintf(&d.b, "- **%s:** %v\n", label, value)
		return
	}
	fmt.Fprintf(&d.b, "%s: %v\n", label, value)
}

func (d *doc) list(items []string, empty string) {
	if len(items) == 0 {
		items = []string{empty}
	}
	for _, item := range items {
		if d.markdown {
			fmt.Fprintf(&d.b, "- %s\n", item)
		} else {
			fmt.Fprintf(&d.b, "  - %s\n", item)
		}
	}
}

func (d *doc) numbered(items []string, empty string) {
	if len(items) == 0 {
		d.list(nil, empty)
		return
	}
	for i, item := range items {
		if d.markdown {
			fmt.Fprintf(&d.b, "%d. %s\n", i+1, item)
		} else {
			fmt.Fprintf(&d.b, "  %d. %s\n", i+1, item)
		}
	}
}

func (d *doc) table(headers []string, rows [][]string) {
	if d.markdown {
		fmt.Fprintf(&d.b, "| %s |\n", strings.Join(headers, " | "))
		seps := make([]string, len(headers))
		for i := range seps {
			seps[i] = "---"
		}
		fmt.Fprintf(&d.b, "| %s |\n", strings.Join(seps, " | "))
		for _, row := range rows {
			fmt.Fprintf(&d.b, "| %s |\n", strings.Join(row, " | "))
		}
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}
	line := func(cells []string) {
		padded := make([]string, len(cells))
		for i, c := range cells {
			padded[i] = fmt.Sprintf("%-*s", widths[i], c)
		}
		fmt.Fprintf(&d.b, "%s\n", strings.TrimRight(strings.Join(padded, "  "), " "))
	}
	line(headers)
	for _, row := range rows {
		line(row)
	}
}

func (d *doc) gap() { d.b.WriteString("\n") }

func (d *doc) String() string { return d.b.String() }

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func categoryLine(m types.CategoryMatch) string {
	return fmt.Sprintf("%d%% (%d matched, %d missing)", m.Percentage, len(m.Matched), len(m.Missing))
}

// ApplicationFormatter renders a scored application
type ApplicationFormatter struct{ Markdown bool }

func (f *ApplicationFormatter) Format(data any) (string, error) {
	r, ok := data.(types.ApplicationReport)
	if !ok {
		return "", fmt.Errorf("expected ApplicationReport, got %T", data)
	}

	d := &doc{markdown: f.Markdown}
	d.title("Match Report: " + r.JobTitle)
	if r.ID != "" {
		d.field("Application", r.ID)
	}
	if r.CandidateName != "" {
		d.field("Candidate", r.CandidateName)
	}
	d.field("Final Score", fmt.Sprintf("%d/100", r.Match.FinalScore))
	d.field("Eligibility", r.Match.Eligibility)
	d.field("Threshold", r.Match.ThresholdScore)
	d.field("Test Eligible", yesNo(r.TestEligible))
	if r.TestEligible {
		d.field("Test Category", r.TestCategory)
	}
	d.field("Extraction", r.ExtractionSource)
	d.gap()

	d.section("Breakdown")
	d.field("Skills", categoryLine(r.Match.SkillMatch))
	d.field("Knowledge", categoryLine(r.Match.KnowledgeMatch))
	d.field("Tasks", categoryLine(r.Match.TaskMatch))
	d.field("Experience", fmt.Sprintf("%s (%s) %s", r.Match.ExperienceMatch.Status,
		r.Match.ExperienceMatch.Flag, r.Match.ExperienceMatch.Message))
	d.gap()

	d.section("Missing Skills")
	d.list(r.Match.SkillMatch.Missing, "none")
	d.gap()

	d.section("Warnings")
	d.list(r.Match.Warnings, "none")
	d.gap()

	d.section("Suggestions")
	d.numbered(r.Suggestions, "none")

	return d.String(), nil
}

func (f *ApplicationFormatter) SupportedType() string { return TypeApplication }

// RankingFormatter renders a ranking table
type RankingFormatter struct{ Markdown bool }

func (f *RankingFormatter) Format(data any) (string, error) {
	r, ok := data.(types.RankingReport)
	if !ok {
		return "", fmt.Errorf("expected RankingReport, got %T", data)
	}

	d := &doc{markdown: f.Markdown}
	d.title("Ranking: " + r.JobTitle)
	d.field("Candidates", len(r.Candidates))
	d.field("Threshold", r.ThresholdScore)
	d.gap()

	rows := make([][]string, 0, len(r.Candidates))
	for _, c := range r.Candidates {
		rows = append(rows, []string{
			fmt.Sprint(c.Rank), c.Name, fmt.Sprint(c.FinalScore), string(c.Eligibility), yesNo(c.TestEligible),
			fmt.Sprintf("%d/%d/%d", c.SkillPercent, c.KnowledgePercent, c.TaskPercent),
			string(c.Experience), string(c.ExtractionSource),
		})
	}
	d.table([]string{"#", "Candidate", "Score", "Eligibility", "Test", "S/K/T %", "Experience", "Extraction"}, rows)

	return d.String(), nil
}

func (f *RankingFormatter) SupportedType() string { return TypeRanking }

// VerificationFormatter renders the three skill tiers with their evidence
type VerificationFormatter struct{ Markdown bool }

func (f *VerificationFormatter) Format(data any) (string, error) {
	v, ok := data.(types.SkillVerification)
	if !ok {
		return "", fmt.Errorf("expected SkillVerification, got %T", data)
	}
	d := &doc{markdown: f.Markdown}
	writeVerification(d, v)
	return d.String(), nil
}

func (f *VerificationFormatter) SupportedType() string { return TypeVerification }

func writeVerification(d *doc, v types.SkillVerification) {
	d.title("Skill Verification")
	d.field("Category", v.Category)
	d.field("Test Available", yesNo(v.TestAvailable))
	d.gap()

	tiers := []struct {
		name   string
		skills []string
	}{
		{"Verified", v.VerifiedSkills},
		{"Unverified", v.UnverifiedSkills},
		{"Not Tested", v.UntestedSkills},
	}
	for _, tier := range tiers {
		d.section(tier.name)
		items := make([]string, 0, len(tier.skills))
		for _, skill := range tier.skills {
			items = append(items, describeDetail(skill, v.VerificationDetails[skill]))
		}
		d.list(items, "none")
		d.gap()
	}
}

func describeDetail(skill string, detail types.VerificationDetail) string {
	if detail.TotalQuestions == 0 {
		if detail.Reason != "" {
			return fmt.Sprintf("%s (%s)", skill, detail.Reason)
		}
		return skill
	}
	return fmt.Sprintf("%s: %d/%d correct (%d%%)", skill, detail.CorrectAnswers, detail.TotalQuestions, detail.Percentage)
}

// QuizResultFormatter renders a graded quiz
type QuizResultFormatter struct{ Markdown bool }

func (f *QuizResultFormatter) Format(data any) (string, error) {
	q, ok := data.(types.QuizResult)
	if !ok {
		return "", fmt.Errorf("expected QuizResult, got %T", data)
	}
	d := &doc{markdown: f.Markdown}
	writeQuiz(d, q)
	return d.String(), nil
}

func (f *QuizResultFormatter) SupportedType() string { return TypeQuizResult }

func writeQuiz(d *doc, q types.QuizResult) {
	d.title("Quiz Result")
	d.field("Category", q.Category)
	d.field("Score", fmt.Sprintf("%d%% (%d/%d points)", q.PercentageScore, q.EarnedPoints, q.MaxPoints))
	d.gap()

	rows := make([][]string, 0, len(q.PerQuestionResults))
	for _, r := range q.PerQuestionResults {
		answer := "-"
		if r.SelectedOption != nil {
			answer = fmt.Sprint(*r.SelectedOption)
		}
		rows = append(rows, []string{r.QuestionID, answer, yesNo(r.Correct), fmt.Sprintf("%d/%d", r.PointsEarned, r.PointsPossible)})
	}
	d.table([]string{"Question", "Answer", "Correct", "Points"}, rows)

	if len(q.IgnoredAnswers) > 0 {
		d.gap()
		d.section("Ignored Answers")
		d.list(q.IgnoredAnswers, "none")
	}
}

// SubmissionFormatter renders a quiz submission with its verification
type SubmissionFormatter struct{ Markdown bool }

func (f *SubmissionFormatter) Format(data any) (string, error) {
	s, ok := data.(types.QuizSubmissionReport)
	if !ok {
		return "", fmt.Errorf("expected QuizSubmissionReport, got %T", data)
	}
	d := &doc{markdown: f.Markdown}
	d.field("Application", s.ApplicationID)
	d.gap()
	writeQuiz(d, s.Quiz)
	d.gap()
	writeVerification(d, s.Verification)
	return d.String(), nil
}

func (f *SubmissionFormatter) SupportedType() string { return TypeSubmission }

// QuestionSheetFormatter renders a quiz for a candidate, without answers
type QuestionSheetFormatter struct{ Markdown bool }

func (f *QuestionSheetFormatter) Format(data any) (string, error) {
	s, ok := data.(types.QuestionSheet)
	if !ok {
		return "", fmt.Errorf("expected QuestionSheet, got %T", data)
	}

	d := &doc{markdown: f.Markdown}
	d.title("Quiz: " + s.JobTitle)
	d.field("Category", fmt.Sprintf("%s (by %s)", s.Category, s.Resolved))
	d.gap()

	for i, q := range s.Questions {
		if d.markdown {
			fmt.Fprintf(&d.b, "### %d. %s (%d pts, id `%s`)\n\n", i+1, q.Question, q.Points, q.ID)
		} else {
			fmt.Fprintf(&d.b, "%d. [%s] %s (%d pts)\n", i+1, q.ID, q.Question, q.Points)
		}
		for j, opt := range q.Options {
			if d.markdown {
				fmt.Fprintf(&d.b, "%d. %s\n", j, opt)
			} else {
				fmt.Fprintf(&d.b, "     %d) %s\n", j, opt)
			}
		}
		d.gap()
	}

	return d.String(), nil
}

func (f *QuestionSheetFormatter) SupportedType() string { return TypeQuestions }

// GlobalRegistry is the default formatter registry instance
var GlobalRegistry = NewFormatterRegistry()
