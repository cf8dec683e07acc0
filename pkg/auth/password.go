package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

// Параметры PBKDF2-SHA256
const (
	pbkdf2Iterations = 100_000
	pbkdf2KeyLength  = 32
	saltLength       = 16
)

// GenerateSalt возвращает криптографически случайную соль в hex-кодировке
func GenerateSalt() (string, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}
	return hex.EncodeToString(salt), nil
}

// HashPassword возвращает hex-кодированный PBKDF2-SHA256 хеш пароля с солью
func HashPassword(password, salt string) string {
	key := pbkdf2.Key([]byte(password), []byte(salt), pbkdf2Iterations, pbkdf2KeyLength, sha256.New)
	return hex.EncodeToString(key)
}

// VerifyPassword проверяет пароль против сохраненного хеша за константное время
func VerifyPassword(password, salt, expectedHash string) bool {
	actual := HashPassword(password, salt)
	return subtle.ConstantTimeCompare([]byte(actual), []byte(expectedHash)) == 1
}
