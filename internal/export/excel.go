// Package export writes ranking results to spreadsheet files.
package export

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"hirescore/internal/errors"
	"hirescore/internal/types"
)

const (
	summarySheet  = "Summary"
	rankingSheet  = "Ranking"
	feedbackSheet = "Feedback"
)

// Row fills follow the engine's eligibility buckets
var eligibilityFill = map[types.Eligibility]string{
	types.Eligible:    "C6EFCE",
	types.Borderline:  "FFEB9C",
	types.NotEligible: "FFC7CE",
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// SaveRanking writes the ranking workbook to path, adding .xlsx when missing
func SaveRanking(report types.RankingReport, path string, generated time.Time) (string, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		path += ".xlsx"
	}
	path = filepath.Clean(path)

	f, err := buildWorkbook(report, generated)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()

	if err := f.SaveAs(path); err != nil {
		return "", errors.NewIOError(errors.ErrCodeExportFailed, "failed to save ranking workbook", err).
			WithContext("path", path)
	}
	return path, nil
}

// WriteRanking streams the ranking workbook to w
func WriteRanking(w io.Writer, report types.RankingReport, generated time.Time) error {
	f, err := buildWorkbook(report, generated)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if err := f.Write(w); err != nil {
		return errors.NewIOError(errors.ErrCodeExportFailed, "failed to write ranking workbook", err)
	}
	return nil
}

func buildWorkbook(report types.RankingReport, generated time.Time) (*excelize.File, error) {
	f := excelize.NewFile()

	steps := []struct {
		name  string
		build func(*excelize.File, types.RankingReport, time.Time) error
	}{
		{summarySheet, writeSummary},
		{rankingSheet, writeRanking},
		{feedbackSheet, writeFeedback},
	}

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		_ = f.Close()
		return nil, exportError("summary", err)
	}
	for _, step := range steps[1:] {
		if _, err := f.NewSheet(step.name); err != nil {
			_ = f.Close()
			return nil, exportError(step.name, err)
		}
	}
	for _, step := range steps {
		if err := step.build(f, report, generated); err != nil {
			_ = f.Close()
			return nil, exportError(step.name, err)
		}
	}
	return f, nil
}

func exportError(sheet string, err error) error {
	return errors.NewIOError(errors.ErrCodeExportFailed, fmt.Sprintf("failed to build %s sheet", sheet), err)
}

func headerStyle(f *excelize.File) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
}

func writeSummary(f *excelize.File, report types.RankingReport, generated time.Time) error {
	if err := f.SetColWidth(summarySheet, "A", "A", 28); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "B", "B", 40); err != nil {
		return err
	}

	label, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	counts := make(map[types.Eligibility]int)
	testEligible := 0
	total := 0
	for _, c := range report.Candidates {
		counts[c.Eligibility]++
		total += c.FinalScore
		if c.TestEligible {
			testEligible++
		}
	}
	average := 0.0
	if len(report.Candidates) > 0 {
		average = float64(total) / float64(len(report.Candidates))
	}

	rows := [][2]any{
		{"Job Title", report.JobTitle},
		{"Generated", generated.Format("2006-01-02 15:04:05")},
		{"Threshold Score", report.ThresholdScore},
		{"Candidates", len(report.Candidates)},
		{"Eligible (75+)", counts[types.Eligible]},
		{"Borderline (60-74)", counts[types.Borderline]},
		{"Not Eligible (<60)", counts[types.NotEligible]},
		{"Cleared Test Threshold", testEligible},
		{"Average Score", fmt.Sprintf("%.1f", average)},
	}
	for i, r := range rows {
		row := i + 1
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), r[0]); err != nil {
			return err
		}
		if err := f.SetCellStyle(summarySheet, fmt.Sprintf("A%d", row), fmt.Sprintf("A%d", row), label); err != nil {
			return err
		}
		if err := f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), r[1]); err != nil {
			return err
		}
	}
	return nil
}

var rankingHeaders = []string{"Rank", "Candidate", "Final Score", "Eligibility", "Test Eligible",
	"Skills %", "Knowledge %", "Tasks %", "Experience", "Extraction", "Source"}

func writeRanking(f *excelize.File, report types.RankingReport, _ time.Time) error {
	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	for col, width := range []float64{7, 26, 12, 14, 13, 10, 12, 10, 15, 12, 30} {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(rankingSheet, name, name, width); err != nil {
			return err
		}
	}

	for col, h := range rankingHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(rankingSheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(rankingSheet, cell, cell, header); err != nil {
			return err
		}
	}

	fills := make(map[types.Eligibility]int, len(eligibilityFill))
	for eligibility, color := range eligibilityFill {
		style, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			Border: thinBorder,
		})
		if err != nil {
			return err
		}
		fills[eligibility] = style
	}

	for i, c := range report.Candidates {
		row := i + 2
		values := []any{c.Rank, c.Name, c.FinalScore, string(c.Eligibility), yesNo(c.TestEligible),
			c.SkillPercent, c.KnowledgePercent, c.TaskPercent, string(c.Experience), string(c.ExtractionSource), c.Source}
		start, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(rankingSheet, start, &values); err != nil {
			return err
		}
		if style, ok := fills[c.Eligibility]; ok {
			end, _ := excelize.CoordinatesToCellName(len(values), row)
			if err := f.SetCellStyle(rankingSheet, start, end, style); err != nil {
				return err
			}
		}
	}

	if len(report.Candidates) > 0 {
		last, _ := excelize.ColumnNumberToName(len(rankingHeaders))
		ref := fmt.Sprintf("A1:%s%d", last, len(report.Candidates)+1)
		if err := f.AutoFilter(rankingSheet, ref, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}

	return f.SetPanes(rankingSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func writeFeedback(f *excelize.File, report types.RankingReport, _ time.Time) error {
	header, err := headerStyle(f)
	if err != nil {
		return err
	}
	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	if err := f.SetColWidth(feedbackSheet, "A", "A", 7); err != nil {
		return err
	}
	if err := f.SetColWidth(feedbackSheet, "B", "B", 26); err != nil {
		return err
	}
	if err := f.SetColWidth(feedbackSheet, "C", "C", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(feedbackSheet, "D", "D", 80); err != nil {
		return err
	}

	headers := []any{"Rank", "Candidate", "Kind", "Detail"}
	if err := f.SetSheetRow(feedbackSheet, "A1", &headers); err != nil {
		return err
	}
	if err := f.SetCellStyle(feedbackSheet, "A1", "D1", header); err != nil {
		return err
	}

	row := 2
	for _, c := range report.Candidates {
		for _, item := range feedbackItems(c) {
			values := []any{c.Rank, c.Name, item[0], item[1]}
			cell := fmt.Sprintf("A%d", row)
			if err := f.SetSheetRow(feedbackSheet, cell, &values); err != nil {
				return err
			}
			if err := f.SetCellStyle(feedbackSheet, cell, fmt.Sprintf("D%d", row), wrap); err != nil {
				return err
			}
			row++
		}
	}

	return f.SetPanes(feedbackSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func feedbackItems(c types.RankedCandidate) [][2]string {
	items := make([][2]string, 0, len(c.Warnings)+len(c.Suggestions))
	for _, w := range c.Warnings {
		items = append(items, [2]string{"Warning", w})
	}
	for _, s := range c.Suggestions {
		items = append(items, [2]string{"Suggestion", s})
	}
	return items
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
