package errors

import "errors"

// Общие ошибки приложения
var (
	// ErrNotFound используется, когда запись или ресурс не найдены.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized используется для ошибок авторизации (неверные учетные данные).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrValidation используется для ошибок валидации входных данных.
	ErrValidation = errors.New("validation failed")

	// ErrConflict используется для конфликтов состояния (дубликат username,
	// повторный ответ на вопрос, завершенная викторина).
	ErrConflict = errors.New("resource state conflict")

	// ErrGeneration используется, когда вызов AI-провайдера или разбор его
	// ответа завершились неудачей.
	ErrGeneration = errors.New("quiz generation failed")

	// ErrGenerationUnavailable используется, когда AI-провайдер сконфигурирован
	// некорректно и генерация недоступна в принципе.
	ErrGenerationUnavailable = errors.New("quiz generation unavailable")
)

// detailed привязывает человекочитаемое сообщение к сентинел-ошибке.
// errors.Is продолжает работать через Unwrap, а Error() возвращает
// чистое сообщение для API-ответа без префикса сентинела.
type detailed struct {
	sentinel error
	msg      string
}

func (e *detailed) Error() string { return e.msg }

func (e *detailed) Unwrap() error { return e.sentinel }

// WithMessage оборачивает сентинел-ошибку в сообщение для клиента.
func WithMessage(sentinel error, msg string) error {
	return &detailed{sentinel: sentinel, msg: msg}
}
