package repository

import (
	"context"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
)

// QuizRepository - интерфейс для работы с хранилищем викторин
type QuizRepository interface {
	// Create создает новую викторину
	Create(ctx context.Context, quiz *entity.Quiz) error

	// GetByID возвращает викторину по ID
	GetByID(ctx context.Context, id string) (*entity.Quiz, error)

	// ListByUser возвращает викторины пользователя, новые первыми
	ListByUser(ctx context.Context, userID string) ([]entity.Quiz, error)

	// CompleteQuiz переводит викторину из in_progress в completed и
	// записывает итоговые поля. Условное обновление по статусу: при
	// гонке выигрывает ровно один вызов, остальные получают
	// completed=false без ошибки.
	CompleteQuiz(ctx context.Context, quizID string, snapshot *entity.ResultsSnapshot) (completed bool, err error)
}
