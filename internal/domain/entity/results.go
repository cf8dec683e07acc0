package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"math"
	"time"
)

// ResultsScore - итоговый счет завершенной викторины
type ResultsScore struct {
	CorrectCount   int     `json:"correct_count"`
	TotalQuestions int     `json:"total_questions"`
	ScorePercent   float64 `json:"score_percent"`
}

// ResultQuestion - один вопрос в итоговом отчете: вопрос с вариантами,
// выбранный и правильный ключи, корректность и объяснение.
// SelectedOptionKey == nil означает, что ответ на вопрос не был записан.
type ResultQuestion struct {
	Index             int          `json:"index"`
	Prompt            string       `json:"prompt"`
	Options           []QuizOption `json:"options"`
	SelectedOptionKey *string      `json:"selected_option_key"`
	CorrectOptionKey  string       `json:"correct_option_key"`
	IsCorrect         bool         `json:"is_correct"`
	Explanation       string       `json:"explanation"`
}

// ResultsSnapshot - неизменяемый снимок результатов завершенной викторины.
// Вычисляется ровно один раз при записи последнего ответа и хранится в JSONB.
type ResultsSnapshot struct {
	QuizID      string           `json:"quiz_id"`
	CompletedAt string           `json:"completed_at"`
	Score       ResultsScore     `json:"score"`
	Questions   []ResultQuestion `json:"questions"`
}

// Scan реализует интерфейс sql.Scanner для ResultsSnapshot
func (s *ResultsSnapshot) Scan(value interface{}) error {
	if value == nil {
		*s = ResultsSnapshot{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*s = ResultsSnapshot{}
		return nil
	}

	return json.Unmarshal(bytes, s)
}

// Value реализует интерфейс driver.Valuer для ResultsSnapshot
func (s ResultsSnapshot) Value() (driver.Value, error) {
	return json.Marshal(s)
}

// FormatTimestamp сериализует время в ISO-8601 (RFC 3339). Если зона не
// задана, время считается UTC.
func FormatTimestamp(t time.Time) string {
	if t.Location() == time.Local || t.Location() == nil {
		t = t.UTC()
	}
	return t.Format(time.RFC3339)
}

// RoundScorePercent округляет процент до двух знаков по правилу
// round-half-up (0.005 → 0.01).
func RoundScorePercent(percent float64) float64 {
	return math.Round(percent*100) / 100
}

// BuildResultsSnapshot строит итоговый снимок по викторине и набору ее
// ответов. Чистая функция: вопросы идут в порядке контента, ответ
// подбирается по индексу вопроса (отсутствующий ответ трактуется как
// неправильный с selected_option_key = null).
func BuildResultsSnapshot(quiz *Quiz, answers []QuizAnswer, completedAt time.Time) *ResultsSnapshot {
	answersByIndex := make(map[int]*QuizAnswer, len(answers))
	for i := range answers {
		answersByIndex[answers[i].QuestionIndex] = &answers[i]
	}

	questions := make([]ResultQuestion, 0, len(quiz.QuizContent.Questions))
	for _, question := range quiz.QuizContent.Questions {
		result := ResultQuestion{
			Index:            question.Index,
			Prompt:           question.Prompt,
			Options:          question.Options,
			CorrectOptionKey: question.CorrectOptionKey,
			Explanation:      question.Explanation,
		}
		if answer, ok := answersByIndex[question.Index]; ok {
			selected := answer.SelectedOptionKey
			result.SelectedOptionKey = &selected
			result.IsCorrect = answer.IsCorrect
		}
		questions = append(questions, result)
	}

	correctCount := 0
	for _, answer := range answers {
		if answer.IsCorrect {
			correctCount++
		}
	}
	scorePercent := RoundScorePercent(float64(correctCount) / float64(quiz.TotalQuestions) * 100)

	return &ResultsSnapshot{
		QuizID:      quiz.ID,
		CompletedAt: FormatTimestamp(completedAt),
		Score: ResultsScore{
			CorrectCount:   correctCount,
			TotalQuestions: quiz.TotalQuestions,
			ScorePercent:   scorePercent,
		},
		Questions: questions,
	}
}
