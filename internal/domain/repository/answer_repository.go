package repository

import (
	"context"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
)

// AnswerRepository - интерфейс для работы с хранилищем ответов
type AnswerRepository interface {
	// Create записывает один ответ.
	// Возвращает ErrConflict, если ответ на этот вопрос уже записан.
	Create(ctx context.Context, answer *entity.QuizAnswer) error

	// CountByQuiz возвращает количество записанных ответов викторины
	CountByQuiz(ctx context.Context, quizID string) (int64, error)

	// ListByQuiz возвращает все ответы викторины по возрастанию индекса вопроса
	ListByQuiz(ctx context.Context, quizID string) ([]entity.QuizAnswer, error)
}
