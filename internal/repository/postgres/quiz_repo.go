package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// Create создает новую викторину
func (r *QuizRepo) Create(ctx context.Context, quiz *entity.Quiz) error {
	return r.db.WithContext(ctx).Create(quiz).Error
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(ctx context.Context, id string) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.WithMessage(apperrors.ErrNotFound, "quiz not found")
		}
		return nil, err
	}
	return &quiz, nil
}

// ListByUser возвращает викторины пользователя, новые первыми
func (r *QuizRepo) ListByUser(ctx context.Context, userID string) ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&quizzes).Error
	// Пустой слайс - валидный результат, ErrRecordNotFound здесь не бывает
	return quizzes, err
}

// CompleteQuiz переводит викторину в completed и записывает итоговый снимок.
// Условие status = 'in_progress' в WHERE гарантирует, что при гонке
// завершение выполнит ровно один вызов: остальные получат RowsAffected = 0.
func (r *QuizRepo) CompleteQuiz(ctx context.Context, quizID string, snapshot *entity.ResultsSnapshot) (bool, error) {
	completedAt, err := time.Parse(time.RFC3339, snapshot.CompletedAt)
	if err != nil {
		return false, fmt.Errorf("invalid completed_at in snapshot: %w", err)
	}

	result := r.db.WithContext(ctx).Model(&entity.Quiz{}).
		Where("id = ? AND status = ?", quizID, entity.QuizStatusInProgress).
		Updates(map[string]interface{}{
			"status":           entity.QuizStatusCompleted,
			"completed_at":     completedAt,
			"correct_count":    snapshot.Score.CorrectCount,
			"score_percent":    snapshot.Score.ScorePercent,
			"results_snapshot": snapshot,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
