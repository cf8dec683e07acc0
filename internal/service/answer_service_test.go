package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
	"github.com/gchris96/Quiz-Forge/internal/domain/repository"
	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
)

// inProgressQuiz строит викторину на 5 вопросов с правильным ключом "A"
func inProgressQuiz() *entity.Quiz {
	content := entity.QuizContent{Title: "T"}
	for i := 1; i <= entity.QuizQuestionCount; i++ {
		content.Questions = append(content.Questions, entity.QuizQuestion{
			Index:  i,
			Prompt: fmt.Sprintf("Q%d?", i),
			Options: []entity.QuizOption{
				{Key: "A", Text: "a"}, {Key: "B", Text: "b"},
				{Key: "C", Text: "c"}, {Key: "D", Text: "d"},
			},
			CorrectOptionKey: "A",
			Explanation:      "why A",
		})
	}
	return &entity.Quiz{
		ID:             "quiz-1",
		UserID:         "user-1",
		Status:         entity.QuizStatusInProgress,
		TotalQuestions: entity.QuizQuestionCount,
		QuizContent:    content,
	}
}

func newAnswerService(quizRepo *MockQuizRepo, answerRepo *MockAnswerRepo, cacheRepo repository.CacheRepository) *AnswerService {
	uow := &fakeUnitOfWork{repos: repository.TxRepos{
		Users:   new(MockUserRepo),
		Quizzes: quizRepo,
		Answers: answerRepo,
	}}
	return NewAnswerService(uow, cacheRepo)
}

func TestAnswerService_SubmitAnswer_CorrectInProgress(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	answerRepo := new(MockAnswerRepo)
	quizRepo.On("GetByID", mock.Anything, "quiz-1").Return(inProgressQuiz(), nil)
	answerRepo.On("Create", mock.Anything, mock.MatchedBy(func(a *entity.QuizAnswer) bool {
		return a.QuizID == "quiz-1" && a.QuestionIndex == 2 && a.IsCorrect
	})).Return(nil)
	answerRepo.On("CountByQuiz", mock.Anything, "quiz-1").Return(int64(2), nil)

	svc := newAnswerService(quizRepo, answerRepo, nil)

	// Act
	result, err := svc.SubmitAnswer(context.Background(), "quiz-1", 2, "A")

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Feedback.IsCorrect)
	assert.Equal(t, "A", result.Feedback.CorrectOptionKey)
	assert.Equal(t, "why A", result.Feedback.Explanation)
	assert.Equal(t, entity.QuizStatusInProgress, result.Status)
	assert.Equal(t, int64(2), result.AnsweredCount)
	assert.Equal(t, entity.QuizQuestionCount, result.TotalQuestions)
	quizRepo.AssertNotCalled(t, "CompleteQuiz", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnswerService_SubmitAnswer_WrongOption(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	answerRepo := new(MockAnswerRepo)
	quizRepo.On("GetByID", mock.Anything, "quiz-1").Return(inProgressQuiz(), nil)
	answerRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	answerRepo.On("CountByQuiz", mock.Anything, "quiz-1").Return(int64(1), nil)

	svc := newAnswerService(quizRepo, answerRepo, nil)

	result, err := svc.SubmitAnswer(context.Background(), "quiz-1", 1, "D")

	require.NoError(t, err)
	assert.False(t, result.Feedback.IsCorrect)
	// Обратная связь раскрывает правильный ключ даже при неверном ответе
	assert.Equal(t, "A", result.Feedback.CorrectOptionKey)
}

func TestAnswerService_SubmitAnswer_LastAnswerCompletes(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	answerRepo := new(MockAnswerRepo)
	cacheRepo := new(MockCacheRepo)

	quiz := inProgressQuiz()
	quizRepo.On("GetByID", mock.Anything, "quiz-1").Return(quiz, nil)
	answerRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
	answerRepo.On("CountByQuiz", mock.Anything, "quiz-1").Return(int64(5), nil)

	answers := make([]entity.QuizAnswer, 0, 5)
	for i := 1; i <= 5; i++ {
		answers = append(answers, entity.QuizAnswer{
			QuizID:            "quiz-1",
			QuestionIndex:     i,
			SelectedOptionKey: "A",
			IsCorrect:         true,
		})
	}
	answerRepo.On("ListByQuiz", mock.Anything, "quiz-1").Return(answers, nil)
	quizRepo.On("CompleteQuiz", mock.Anything, "quiz-1", mock.MatchedBy(func(s *entity.ResultsSnapshot) bool {
		return s.Score.CorrectCount == 5 && s.Score.ScorePercent == 100.0
	})).Return(true, nil)
	cacheRepo.On("Delete", mock.Anything, "quiz:quiz-1").Return(nil)

	svc := newAnswerService(quizRepo, answerRepo, cacheRepo)

	// Act
	result, err := svc.SubmitAnswer(context.Background(), "quiz-1", 5, "A")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, entity.QuizStatusCompleted, result.Status)
	assert.Equal(t, int64(5), result.AnsweredCount)
	cacheRepo.AssertExpectations(t)
	quizRepo.AssertExpectations(t)
}

func TestAnswerService_SubmitAnswer_CompletedQuiz(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	answerRepo := new(MockAnswerRepo)
	quiz := inProgressQuiz()
	quiz.Status = entity.QuizStatusCompleted
	quizRepo.On("GetByID", mock.Anything, "quiz-1").Return(quiz, nil)

	svc := newAnswerService(quizRepo, answerRepo, nil)

	_, err := svc.SubmitAnswer(context.Background(), "quiz-1", 1, "A")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, "quiz completed", err.Error())
	answerRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestAnswerService_SubmitAnswer_UnknownQuestionIndex(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	answerRepo := new(MockAnswerRepo)
	quizRepo.On("GetByID", mock.Anything, "quiz-1").Return(inProgressQuiz(), nil)

	svc := newAnswerService(quizRepo, answerRepo, nil)

	_, err := svc.SubmitAnswer(context.Background(), "quiz-1", 42, "A")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, "question_index not found", err.Error())
}

func TestAnswerService_SubmitAnswer_Duplicate(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	answerRepo := new(MockAnswerRepo)
	quizRepo.On("GetByID", mock.Anything, "quiz-1").Return(inProgressQuiz(), nil)
	answerRepo.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.WithMessage(apperrors.ErrConflict, "answer already submitted"))

	svc := newAnswerService(quizRepo, answerRepo, nil)

	_, err := svc.SubmitAnswer(context.Background(), "quiz-1", 1, "A")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
	assert.Equal(t, "answer already submitted", err.Error())
}

func TestAnswerService_SubmitAnswer_QuizNotFound(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	answerRepo := new(MockAnswerRepo)
	quizRepo.On("GetByID", mock.Anything, "ghost").
		Return(nil, apperrors.WithMessage(apperrors.ErrNotFound, "quiz not found"))

	svc := newAnswerService(quizRepo, answerRepo, nil)

	_, err := svc.SubmitAnswer(context.Background(), "ghost", 1, "A")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
