package repository

import "context"

// TxRepos - набор репозиториев, привязанных к одной транзакции
type TxRepos struct {
	Users   UserRepository
	Quizzes QuizRepository
	Answers AnswerRepository
}

// UnitOfWork выполняет функцию в рамках одной транзакции хранилища.
// Если fn возвращает ошибку, все изменения откатываются.
type UnitOfWork interface {
	WithinTransaction(ctx context.Context, fn func(repos TxRepos) error) error
}
