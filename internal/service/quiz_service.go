package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
	"github.com/gchris96/Quiz-Forge/internal/domain/repository"
	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
	"github.com/gchris96/Quiz-Forge/internal/service/generation"
)

// quizCacheTTL - время жизни кеша публичной версии викторины
const quizCacheTTL = 10 * time.Minute

// QuizService предоставляет методы для создания и чтения викторин
type QuizService struct {
	quizRepo  repository.QuizRepository
	userRepo  repository.UserRepository
	cacheRepo repository.CacheRepository
	generator *generation.Service
}

// NewQuizService создает новый сервис викторин.
// cacheRepo может быть nil: кеширование тогда отключено.
func NewQuizService(
	quizRepo repository.QuizRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	generator *generation.Service,
) *QuizService {
	return &QuizService{
		quizRepo:  quizRepo,
		userRepo:  userRepo,
		cacheRepo: cacheRepo,
		generator: generator,
	}
}

// quizCacheKey - ключ кеша для викторины
func quizCacheKey(quizID string) string {
	return "quiz:" + quizID
}

// CreateQuiz сохраняет викторину с контентом, предоставленным клиентом
func (s *QuizService) CreateQuiz(ctx context.Context, userID, prompt string, rawContent json.RawMessage) (*entity.Quiz, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	content, err := entity.NormalizeQuizContent(rawContent)
	if err != nil {
		return nil, err
	}

	return s.persistQuiz(ctx, userID, prompt, content)
}

// CreatePlaceholderQuiz сохраняет викторину с детерминированным
// placeholder-контентом по теме
func (s *QuizService) CreatePlaceholderQuiz(ctx context.Context, userID, prompt string) (*entity.Quiz, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, err
	}

	content, err := entity.NormalizeQuizContent(generation.PlaceholderContent(prompt))
	if err != nil {
		return nil, err
	}

	return s.persistQuiz(ctx, userID, prompt, content)
}

// GenerateQuiz создает викторину с контентом от AI-провайдера.
// Если ключ провайдера не настроен, сохраняется placeholder-викторина,
// а вторым значением возвращается сообщение о деградации.
func (s *QuizService) GenerateQuiz(ctx context.Context, userID, prompt string) (*entity.Quiz, string, error) {
	if err := s.ensureUserExists(ctx, userID); err != nil {
		return nil, "", err
	}

	prompt, err := generation.ValidatePrompt(prompt)
	if err != nil {
		return nil, "", err
	}

	if !s.generator.Configured() {
		log.Printf("[QuizService] Ключ AI-провайдера не настроен, используется placeholder для '%s'", prompt)
		content, err := entity.NormalizeQuizContent(generation.PlaceholderContent(prompt))
		if err != nil {
			return nil, "", err
		}
		quiz, err := s.persistQuiz(ctx, userID, prompt, content)
		if err != nil {
			return nil, "", err
		}
		message := fmt.Sprintf("Unable to create quiz: %s is not configured. Defaulting to placeholder quiz.",
			s.generator.APIKeyEnvVar())
		return quiz, message, nil
	}

	rawContent, err := s.generator.GenerateQuizContent(ctx, prompt)
	if err != nil {
		return nil, "", err
	}

	content, err := entity.NormalizeQuizContent(rawContent)
	if err != nil {
		// Модель вернула JSON не по схеме
		return nil, "", apperrors.WithMessage(apperrors.ErrGeneration,
			fmt.Sprintf("quiz generation failed: %v", err))
	}

	quiz, err := s.persistQuiz(ctx, userID, prompt, content)
	if err != nil {
		return nil, "", err
	}
	return quiz, "", nil
}

// ListQuizzes возвращает викторины пользователя, новые первыми
func (s *QuizService) ListQuizzes(ctx context.Context, userID string) ([]entity.Quiz, error) {
	return s.quizRepo.ListByUser(ctx, userID)
}

// GetQuiz возвращает викторину по ID, используя кеш при наличии.
// Кешированная копия содержит только поля публичной выдачи.
func (s *QuizService) GetQuiz(ctx context.Context, quizID string) (*entity.Quiz, error) {
	if s.cacheRepo != nil {
		if cached, err := s.cacheRepo.Get(ctx, quizCacheKey(quizID)); err == nil {
			var quiz entity.Quiz
			if err := json.Unmarshal([]byte(cached), &quiz); err == nil {
				return &quiz, nil
			}
		}
	}

	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}

	if s.cacheRepo != nil {
		if data, err := json.Marshal(quiz); err == nil {
			if err := s.cacheRepo.Set(ctx, quizCacheKey(quizID), string(data), quizCacheTTL); err != nil {
				log.Printf("[QuizService] Ошибка записи кеша викторины %s: %v", quizID, err)
			}
		}
	}
	return quiz, nil
}

// ensureUserExists проверяет существование пользователя
func (s *QuizService) ensureUserExists(ctx context.Context, userID string) error {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.WithMessage(apperrors.ErrNotFound, "user not found")
		}
		return err
	}
	return nil
}

// persistQuiz строит и сохраняет викторину: полный контент, публичная
// копия без ответов, статус in_progress
func (s *QuizService) persistQuiz(ctx context.Context, userID, prompt string, content *entity.QuizContent) (*entity.Quiz, error) {
	quiz := &entity.Quiz{
		UserID:         userID,
		Prompt:         prompt,
		Status:         entity.QuizStatusInProgress,
		TotalQuestions: len(content.Questions),
		QuizContent:    *content,
		QuizPublic:     content.Public(),
	}
	if err := s.quizRepo.Create(ctx, quiz); err != nil {
		return nil, err
	}
	log.Printf("[QuizService] Создана викторина %s для пользователя %s (prompt: '%s')", quiz.ID, userID, prompt)
	return quiz, nil
}
