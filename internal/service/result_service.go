package service

import (
	"context"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
	"github.com/gchris96/Quiz-Forge/internal/domain/repository"
	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
)

// ResultService предоставляет доступ к итоговым результатам викторин
type ResultService struct {
	quizRepo repository.QuizRepository
}

// NewResultService создает новый сервис результатов
func NewResultService(quizRepo repository.QuizRepository) *ResultService {
	return &ResultService{quizRepo: quizRepo}
}

// GetResults возвращает неизменяемый снимок результатов завершенной
// викторины. Для незавершенной викторины возвращается ErrConflict.
func (s *ResultService) GetResults(ctx context.Context, quizID string) (*entity.ResultsSnapshot, error) {
	quiz, err := s.quizRepo.GetByID(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsCompleted() || quiz.ResultsSnapshot == nil {
		return nil, apperrors.WithMessage(apperrors.ErrConflict, "quiz not completed")
	}
	return quiz.ResultsSnapshot, nil
}
