package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/gchris96/Quiz-Forge/internal/domain/repository"
)

// UnitOfWork реализует repository.UnitOfWork поверх транзакций GORM
type UnitOfWork struct {
	db *gorm.DB
}

// NewUnitOfWork создает новую единицу работы
func NewUnitOfWork(db *gorm.DB) *UnitOfWork {
	return &UnitOfWork{db: db}
}

// WithinTransaction выполняет fn в одной транзакции. Репозитории в TxRepos
// привязаны к транзакционному *gorm.DB: ошибка fn откатывает все изменения.
func (u *UnitOfWork) WithinTransaction(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(repository.TxRepos{
			Users:   NewUserRepo(tx),
			Quizzes: NewQuizRepo(tx),
			Answers: NewAnswerRepo(tx),
		})
	})
}
