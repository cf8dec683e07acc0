package dto

import "github.com/gchris96/Quiz-Forge/internal/domain/entity"

// UserResponse представляет ответ с данными пользователя
type UserResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	Message   string `json:"message,omitempty"`
}

// NewUserResponse создает UserResponse из сущности пользователя
func NewUserResponse(user *entity.User, message string) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		CreatedAt: entity.FormatTimestamp(user.CreatedAt),
		Message:   message,
	}
}

// SessionResponse представляет ответ на создание сессии
type SessionResponse struct {
	UserID      string `json:"user_id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token,omitempty"`
}

// NewSessionResponse создает SessionResponse для аутентифицированного пользователя
func NewSessionResponse(user *entity.User, accessToken string) SessionResponse {
	return SessionResponse{
		UserID:      user.ID,
		Username:    user.Username,
		AccessToken: accessToken,
	}
}
