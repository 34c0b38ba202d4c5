package quiz

import (
	"math"

	"hirescore/internal/errors"
	"hirescore/internal/types"
)

// SelectQuestions resolves a title and returns its questions without answers
func (b *Bank) SelectQuestions(title string) types.QuestionSheet {
	res := b.Resolve(title)
	questions, _ := b.Questions(res.Category)
	return types.QuestionSheet{
		JobTitle:  title,
		Category:  res.Category,
		Resolved:  res.ResolvedBy,
		Questions: Public(questions),
	}
}

// Public strips the correct answer and the skill mapping from questions
func Public(questions []types.QuizQuestion) []types.PublicQuestion {
	out := make([]types.PublicQuestion, len(questions))
	for i, q := range questions {
		out[i] = types.PublicQuestion{
			ID:       q.ID,
			Question: q.Question,
			Options:  append([]string(nil), q.Options...),
			Points:   q.Points,
		}
	}
	return out
}

// ScoreCategory grades answers against a category's questions
func (b *Bank) ScoreCategory(category string, answers []types.QuizAnswer) (types.QuizResult, error) {
	questions, ok := b.Questions(category)
	if !ok {
		return types.QuizResult{}, errors.NewNotFoundError(errors.ErrCodeNoQuestionBank,
			"no test available for this role", nil).WithContext("category", category)
	}
	result := Score(questions, answers)
	result.Category = category
	return result, nil
}

// Score grades answers. Every question counts toward the maximum; an
// unanswered question earns nothing. Answers for unknown question ids are
// ignored entirely and only the first answer per question counts.
func Score(questions []types.QuizQuestion, answers []types.QuizAnswer) types.QuizResult {
	known := make(map[string]bool, len(questions))
	for _, q := range questions {
		known[q.ID] = true
	}

	selected := make(map[string]int, len(answers))
	var ignored []string
	for _, a := range answers {
		if !known[a.QuestionID] {
			ignored = append(ignored, a.QuestionID)
			continue
		}
		if _, dup := selected[a.QuestionID]; !dup {
			selected[a.QuestionID] = a.SelectedOption
		}
	}

	result := types.QuizResult{
		PerQuestionResults: make([]types.QuestionResult, 0, len(questions)),
		IgnoredAnswers:     ignored,
	}

	for _, q := range questions {
		qr := types.QuestionResult{QuestionID: q.ID, PointsPossible: q.Points}
		if opt, ok := selected[q.ID]; ok {
			qr.Answered = true
			qr.SelectedOption = &opt
			qr.Correct = opt == q.Correct
		}
		if qr.Correct {
			qr.PointsEarned = q.Points
		}
		result.EarnedPoints += qr.PointsEarned
		result.MaxPoints += qr.PointsPossible
		result.PerQuestionResults = append(result.PerQuestionResults, qr)
	}

	if result.MaxPoints > 0 {
		result.PercentageScore = int(math.Round(float64(result.EarnedPoints) / float64(result.MaxPoints) * 100))
	}
	return result
}

// AnswersByPosition lays answers out in question order, -1 marking unanswered
func AnswersByPosition(questions []types.QuizQuestion, answers []types.QuizAnswer) []int {
	index := make(map[string]int, len(questions))
	out := make([]int, len(questions))
	for i, q := range questions {
		index[q.ID] = i
		out[i] = -1
	}
	for _, a := range answers {
		if i, ok := index[a.QuestionID]; ok && out[i] == -1 {
			out[i] = a.SelectedOption
		}
	}
	return out
}
