package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
	"github.com/gchris96/Quiz-Forge/internal/service/generation"
)

// validQuizContentJSON возвращает валидный документ контента на 5 вопросов
func validQuizContentJSON(t *testing.T) json.RawMessage {
	t.Helper()

	questions := make([]map[string]interface{}, 0, entity.QuizQuestionCount)
	for i := 1; i <= entity.QuizQuestionCount; i++ {
		questions = append(questions, map[string]interface{}{
			"prompt": fmt.Sprintf("Question %d?", i),
			"options": []map[string]string{
				{"key": "A", "text": "a"}, {"key": "B", "text": "b"},
				{"key": "C", "text": "c"}, {"key": "D", "text": "d"},
			},
			"correct_option_key": "A",
			"explanation":        "because",
		})
	}
	raw, err := json.Marshal(map[string]interface{}{"title": "T", "questions": questions})
	require.NoError(t, err)
	return raw
}

// stubGenerator строит генератор с фиксированным выводом провайдера
type stubProvider struct {
	output string
	err    error
}

func (s *stubProvider) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	return s.output, s.err
}

func configuredGenerator(provider generation.Provider) *generation.Service {
	cfg := generation.Config{Provider: "openai", OpenAIAPIKey: "key", RequestTimeout: time.Second}
	return generation.NewServiceWithProvider(cfg, provider)
}

func unconfiguredGenerator() *generation.Service {
	cfg := generation.Config{Provider: "openai", RequestTimeout: time.Second}
	return generation.NewServiceWithProvider(cfg, &stubProvider{})
}

func existingUser(userRepo *MockUserRepo, userID string) {
	userRepo.On("GetByID", mock.Anything, userID).Return(&entity.User{ID: userID, Username: "alice"}, nil)
}

func TestQuizService_CreateQuiz(t *testing.T) {
	// Arrange
	quizRepo := new(MockQuizRepo)
	userRepo := new(MockUserRepo)
	existingUser(userRepo, "user-1")
	quizRepo.On("Create", mock.Anything, mock.MatchedBy(func(q *entity.Quiz) bool {
		return q.UserID == "user-1" &&
			q.Status == entity.QuizStatusInProgress &&
			q.TotalQuestions == entity.QuizQuestionCount &&
			len(q.QuizPublic.Questions) == entity.QuizQuestionCount &&
			q.QuizPublic.Questions[0].CorrectOptionKey == ""
	})).Return(nil)

	svc := NewQuizService(quizRepo, userRepo, nil, unconfiguredGenerator())

	// Act
	quiz, err := svc.CreateQuiz(context.Background(), "user-1", "custom topic", validQuizContentJSON(t))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "custom topic", quiz.Prompt)
	assert.Equal(t, "A", quiz.QuizContent.Questions[0].CorrectOptionKey)
	quizRepo.AssertExpectations(t)
}

func TestQuizService_CreateQuiz_UnknownUser(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	userRepo := new(MockUserRepo)
	userRepo.On("GetByID", mock.Anything, "ghost").Return(nil, apperrors.ErrNotFound)

	svc := NewQuizService(quizRepo, userRepo, nil, unconfiguredGenerator())

	_, err := svc.CreateQuiz(context.Background(), "ghost", "topic", validQuizContentJSON(t))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	assert.Equal(t, "user not found", err.Error())
	quizRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQuizService_CreateQuiz_InvalidContent(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	userRepo := new(MockUserRepo)
	existingUser(userRepo, "user-1")

	svc := NewQuizService(quizRepo, userRepo, nil, unconfiguredGenerator())

	_, err := svc.CreateQuiz(context.Background(), "user-1", "topic", json.RawMessage(`{"questions":[]}`))

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestQuizService_CreatePlaceholderQuiz(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	userRepo := new(MockUserRepo)
	existingUser(userRepo, "user-1")
	quizRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewQuizService(quizRepo, userRepo, nil, unconfiguredGenerator())

	quiz, err := svc.CreatePlaceholderQuiz(context.Background(), "user-1", "golang")

	require.NoError(t, err)
	assert.Equal(t, "golang Placeholder Quiz", quiz.QuizContent.Title)
	assert.Equal(t, entity.QuizQuestionCount, quiz.TotalQuestions)
}

func TestQuizService_GenerateQuiz_DegradesToPlaceholder(t *testing.T) {
	// Ключ провайдера не настроен: сохраняется placeholder с сообщением
	quizRepo := new(MockQuizRepo)
	userRepo := new(MockUserRepo)
	existingUser(userRepo, "user-1")
	quizRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	svc := NewQuizService(quizRepo, userRepo, nil, unconfiguredGenerator())

	quiz, message, err := svc.GenerateQuiz(context.Background(), "user-1", "golang")

	require.NoError(t, err)
	assert.Equal(t, "golang Placeholder Quiz", quiz.QuizContent.Title)
	assert.Equal(t, "Unable to create quiz: OPENAI_API_KEY is not configured. Defaulting to placeholder quiz.", message)
}

func TestQuizService_GenerateQuiz_InvalidPrompt(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	userRepo := new(MockUserRepo)
	existingUser(userRepo, "user-1")

	svc := NewQuizService(quizRepo, userRepo, nil, unconfiguredGenerator())

	_, _, err := svc.GenerateQuiz(context.Background(), "user-1", "way too many words here")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
	assert.Equal(t, "prompt must be 1-3 words", err.Error())
}

func TestQuizService_GenerateQuiz_Success(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	userRepo := new(MockUserRepo)
	existingUser(userRepo, "user-1")
	quizRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

	generated := string(validQuizContentJSON(t))
	svc := NewQuizService(quizRepo, userRepo, nil, configuredGenerator(&stubProvider{output: generated}))

	quiz, message, err := svc.GenerateQuiz(context.Background(), "user-1", "golang")

	require.NoError(t, err)
	assert.Empty(t, message)
	// Тема отсутствовала в контенте: заголовок переписан
	assert.Equal(t, "golang Quiz", quiz.QuizContent.Title)
}

func TestQuizService_GenerateQuiz_ProviderFailure(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	userRepo := new(MockUserRepo)
	existingUser(userRepo, "user-1")

	svc := NewQuizService(quizRepo, userRepo, nil, configuredGenerator(&stubProvider{err: errors.New("timeout")}))

	_, _, err := svc.GenerateQuiz(context.Background(), "user-1", "golang")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrGenerationUnavailable))
	quizRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestQuizService_GenerateQuiz_MalformedSchema(t *testing.T) {
	// Провайдер вернул JSON, но не по схеме контента
	quizRepo := new(MockQuizRepo)
	userRepo := new(MockUserRepo)
	existingUser(userRepo, "user-1")

	svc := NewQuizService(quizRepo, userRepo, nil, configuredGenerator(&stubProvider{output: `{"title":"golang","questions":[{"prompt":"q"}]}`}))

	_, _, err := svc.GenerateQuiz(context.Background(), "user-1", "golang")

	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrGeneration))
	assert.Contains(t, err.Error(), "quiz generation failed")
}

func TestQuizService_GetQuiz_UsesCache(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	userRepo := new(MockUserRepo)
	cacheRepo := new(MockCacheRepo)

	stored := &entity.Quiz{ID: "quiz-1", UserID: "user-1", Prompt: "golang", Status: entity.QuizStatusInProgress, TotalQuestions: 5}
	cached, err := json.Marshal(stored)
	require.NoError(t, err)

	// Первый вызов: промах кеша, чтение из БД, запись в кеш
	cacheRepo.On("Get", mock.Anything, "quiz:quiz-1").Return("", apperrors.ErrNotFound).Once()
	quizRepo.On("GetByID", mock.Anything, "quiz-1").Return(stored, nil).Once()
	cacheRepo.On("Set", mock.Anything, "quiz:quiz-1", string(cached), quizCacheTTL).Return(nil).Once()

	svc := NewQuizService(quizRepo, userRepo, cacheRepo, unconfiguredGenerator())

	quiz, err := svc.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, "quiz-1", quiz.ID)

	// Второй вызов: попадание в кеш, БД не трогаем
	cacheRepo.On("Get", mock.Anything, "quiz:quiz-1").Return(string(cached), nil).Once()

	quiz, err = svc.GetQuiz(context.Background(), "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, "golang", quiz.Prompt)

	quizRepo.AssertNumberOfCalls(t, "GetByID", 1)
	cacheRepo.AssertExpectations(t)
}

func TestQuizService_ListQuizzes(t *testing.T) {
	quizRepo := new(MockQuizRepo)
	userRepo := new(MockUserRepo)
	quizRepo.On("ListByUser", mock.Anything, "user-1").Return([]entity.Quiz{{ID: "b"}, {ID: "a"}}, nil)

	svc := NewQuizService(quizRepo, userRepo, nil, unconfiguredGenerator())

	quizzes, err := svc.ListQuizzes(context.Background(), "user-1")

	require.NoError(t, err)
	assert.Len(t, quizzes, 2)
}
