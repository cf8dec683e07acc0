package repository

import (
	"context"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
)

// UserRepository - интерфейс для работы с хранилищем пользователей
type UserRepository interface {
	// Create создает нового пользователя.
	// Возвращает ErrConflict, если имя пользователя уже занято.
	Create(ctx context.Context, user *entity.User) error

	// GetByID возвращает пользователя по ID
	GetByID(ctx context.Context, id string) (*entity.User, error)

	// GetByUsername возвращает пользователя по имени
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
}
