package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
)

// AnswerRepo реализует repository.AnswerRepository
type AnswerRepo struct {
	db *gorm.DB
}

// NewAnswerRepo создает новый репозиторий ответов
func NewAnswerRepo(db *gorm.DB) *AnswerRepo {
	return &AnswerRepo{db: db}
}

// Create записывает один ответ. Уникальный индекс (quiz_id, question_index)
// превращает повторную отправку в ErrConflict даже при параллельных запросах.
func (r *AnswerRepo) Create(ctx context.Context, answer *entity.QuizAnswer) error {
	err := r.db.WithContext(ctx).Create(answer).Error
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.WithMessage(apperrors.ErrConflict, "answer already submitted")
		}
		return err
	}
	return nil
}

// CountByQuiz возвращает количество записанных ответов викторины
func (r *AnswerRepo) CountByQuiz(ctx context.Context, quizID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.QuizAnswer{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return count, err
}

// ListByQuiz возвращает все ответы викторины по возрастанию индекса вопроса
func (r *AnswerRepo) ListByQuiz(ctx context.Context, quizID string) ([]entity.QuizAnswer, error) {
	var answers []entity.QuizAnswer
	err := r.db.WithContext(ctx).
		Where("quiz_id = ?", quizID).
		Order("question_index ASC").
		Find(&answers).Error
	return answers, err
}
