package entity

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quizWithCorrectKeys собирает завершаемую викторину с заданными
// правильными ключами (по одному на вопрос)
func quizWithCorrectKeys(correctKeys []string) *Quiz {
	content := QuizContent{Title: "Scoring Quiz"}
	for i, key := range correctKeys {
		content.Questions = append(content.Questions, QuizQuestion{
			Index:  i + 1,
			Prompt: fmt.Sprintf("Question %d?", i+1),
			Options: []QuizOption{
				{Key: "A", Text: "a"}, {Key: "B", Text: "b"},
				{Key: "C", Text: "c"}, {Key: "D", Text: "d"},
			},
			CorrectOptionKey: key,
			Explanation:      "explained",
		})
	}
	return &Quiz{
		ID:             "quiz-1",
		UserID:         "user-1",
		Status:         QuizStatusInProgress,
		TotalQuestions: len(correctKeys),
		QuizContent:    content,
	}
}

func TestBuildResultsSnapshot_Scoring(t *testing.T) {
	// Arrange: правильные ключи B,A,B,A,A; ответы B,B,A,B,B - верен только первый
	quiz := quizWithCorrectKeys([]string{"B", "A", "B", "A", "A"})
	selected := []string{"B", "B", "A", "B", "B"}
	answers := make([]QuizAnswer, 0, len(selected))
	for i, key := range selected {
		answers = append(answers, QuizAnswer{
			QuizID:            quiz.ID,
			QuestionIndex:     i + 1,
			SelectedOptionKey: key,
			IsCorrect:         key == quiz.QuizContent.Questions[i].CorrectOptionKey,
		})
	}
	completedAt := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)

	// Act
	snapshot := BuildResultsSnapshot(quiz, answers, completedAt)

	// Assert
	assert.Equal(t, "quiz-1", snapshot.QuizID)
	assert.Equal(t, "2025-06-01T12:30:00Z", snapshot.CompletedAt)
	assert.Equal(t, 1, snapshot.Score.CorrectCount)
	assert.Equal(t, 5, snapshot.Score.TotalQuestions)
	assert.Equal(t, 20.0, snapshot.Score.ScorePercent)

	require.Len(t, snapshot.Questions, 5)
	first := snapshot.Questions[0]
	require.NotNil(t, first.SelectedOptionKey)
	assert.Equal(t, "B", *first.SelectedOptionKey)
	assert.True(t, first.IsCorrect)
	assert.Equal(t, "B", first.CorrectOptionKey)
	assert.Equal(t, "explained", first.Explanation)

	second := snapshot.Questions[1]
	require.NotNil(t, second.SelectedOptionKey)
	assert.Equal(t, "B", *second.SelectedOptionKey)
	assert.False(t, second.IsCorrect)
	assert.Equal(t, "A", second.CorrectOptionKey)
}

func TestBuildResultsSnapshot_MissingAnswer(t *testing.T) {
	// Ответ на третий вопрос не записан: selected_option_key = null, is_correct = false
	quiz := quizWithCorrectKeys([]string{"A", "A", "A", "A", "A"})
	answers := []QuizAnswer{
		{QuizID: quiz.ID, QuestionIndex: 1, SelectedOptionKey: "A", IsCorrect: true},
		{QuizID: quiz.ID, QuestionIndex: 2, SelectedOptionKey: "B", IsCorrect: false},
		{QuizID: quiz.ID, QuestionIndex: 4, SelectedOptionKey: "A", IsCorrect: true},
		{QuizID: quiz.ID, QuestionIndex: 5, SelectedOptionKey: "A", IsCorrect: true},
	}

	snapshot := BuildResultsSnapshot(quiz, answers, time.Now().UTC())

	assert.Equal(t, 3, snapshot.Score.CorrectCount)
	assert.Equal(t, 60.0, snapshot.Score.ScorePercent)

	third := snapshot.Questions[2]
	assert.Nil(t, third.SelectedOptionKey)
	assert.False(t, third.IsCorrect)
}

func TestRoundScorePercent(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{100.0 / 3.0, 33.33},
		{200.0 / 3.0, 66.67},
		{20.005, 20.01},
		{0, 0},
		{100, 100},
	}

	for _, tc := range tests {
		assert.InDelta(t, tc.want, RoundScorePercent(tc.in), 1e-9)
	}
}

func TestResultsSnapshot_ScanValue(t *testing.T) {
	quiz := quizWithCorrectKeys([]string{"A", "B", "C", "D", "A"})
	original := BuildResultsSnapshot(quiz, nil, time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))

	value, err := original.Value()
	require.NoError(t, err)

	var restored ResultsSnapshot
	require.NoError(t, restored.Scan(value))
	assert.Equal(t, *original, restored)
}
