package service

import (
	"context"
	"errors"
	"log"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
	"github.com/gchris96/Quiz-Forge/internal/domain/repository"
	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
	"github.com/gchris96/Quiz-Forge/pkg/auth"
)

// UserService предоставляет методы для регистрации и аутентификации
type UserService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository, jwtService *auth.JWTService) *UserService {
	return &UserService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register создает нового пользователя с хешированным паролем.
// Возвращает ErrConflict, если имя пользователя уже занято.
func (s *UserService) Register(ctx context.Context, username, password string) (*entity.User, error) {
	if username == "" || password == "" {
		return nil, apperrors.WithMessage(apperrors.ErrValidation, "username and password are required")
	}

	salt, err := auth.GenerateSalt()
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Username:     username,
		PasswordHash: auth.HashPassword(password, salt),
		PasswordSalt: salt,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	log.Printf("[UserService] Зарегистрирован пользователь: %s (ID: %s)", user.Username, user.ID)
	return user, nil
}

// Authenticate проверяет учетные данные и возвращает пользователя с
// токеном доступа. Несуществующий аккаунт и неверный пароль дают разные
// сообщения, но один и тот же статус 401.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entity.User, string, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, "", apperrors.WithMessage(apperrors.ErrUnauthorized, "account not found. create an account.")
		}
		return nil, "", err
	}

	if !auth.VerifyPassword(password, user.PasswordSalt, user.PasswordHash) {
		return nil, "", apperrors.WithMessage(apperrors.ErrUnauthorized, "invalid")
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Username)
	if err != nil {
		log.Printf("[UserService] Ошибка генерации токена для %s: %v", user.Username, err)
		return nil, "", err
	}

	return user, token, nil
}
