package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
)

const systemPrompt = "You are a quiz author. Use web search and the scrape_web_page tool " +
	"to ground answers. Respond only with raw JSON (no markdown). " +
	"JSON schema: {title: string, questions: [{prompt: string, " +
	"options: [{key: 'A'|'B'|'C'|'D', text: string}], " +
	"correct_option_key: 'A'|'B'|'C'|'D', explanation: string}]}."

func userPrompt(prompt string) string {
	return fmt.Sprintf("Generate exactly 5 multiple-choice questions about: %s. "+
		"Each question must have 4 options with keys A, B, C, D and exactly "+
		"one correct_option_key. Keep prompts factual and concise. "+
		"Return JSON only.", prompt)
}

// Provider выдает сырой текст викторины для пары system/user промптов.
// Транспорт, выбор модели и работа с инструментами - дело реализации.
type Provider interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Service генерирует контент викторин через настроенного AI-провайдера
type Service struct {
	cfg      Config
	provider Provider
}

// NewService собирает сервис генерации для настроенного провайдера.
// Паникует на неизвестном имени провайдера: конфигурация валидируется раньше.
func NewService(cfg Config) *Service {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	client := &http.Client{Timeout: cfg.RequestTimeout}

	var provider Provider
	switch cfg.Provider {
	case "claude":
		provider = NewClaudeProvider(client, cfg.APIKey(), cfg.ModelName())
	case "openai":
		provider = NewOpenAIProvider(client, cfg.APIKey(), cfg.ModelName(), NewScraper())
	default:
		panic(fmt.Sprintf("unsupported AI provider: %s", cfg.Provider))
	}

	return &Service{cfg: cfg, provider: provider}
}

// NewServiceWithProvider подключает явно заданного провайдера (для тестов)
func NewServiceWithProvider(cfg Config, provider Provider) *Service {
	return &Service{cfg: cfg, provider: provider}
}

// Configured сообщает, задан ли API-ключ активного провайдера.
// При false вызывающий код сохраняет placeholder-контент.
func (s *Service) Configured() bool {
	return s.cfg.Configured()
}

// APIKeyEnvVar называет переменную окружения, включающую активного провайдера
func (s *Service) APIKeyEnvVar() string {
	return s.cfg.APIKeyEnvVar()
}

// GenerateQuizContent запрашивает у провайдера JSON викторины по теме
// и гарантирует, что тема покрыта возвращенным контентом.
// Валидация схемы результата остается на вызывающем коде.
func (s *Service) GenerateQuizContent(ctx context.Context, prompt string) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, s.requestTimeout())
	defer cancel()

	output, err := s.provider.Generate(ctx, systemPrompt, userPrompt(prompt))
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrGenerationUnavailable,
			fmt.Sprintf("%s request failed: %v", s.cfg.Provider, err))
	}

	raw, err := extractJSON(output)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrGenerationUnavailable,
			fmt.Sprintf("%s response parse failed: %v", s.cfg.Provider, err))
	}

	return EnsurePromptCoverage(prompt, raw), nil
}

func (s *Service) requestTimeout() time.Duration {
	if s.cfg.RequestTimeout > 0 {
		return s.cfg.RequestTimeout
	}
	return 60 * time.Second
}
