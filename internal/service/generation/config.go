package generation

import "time"

// Модели по умолчанию для каждого провайдера
const (
	DefaultOpenAIModel = "gpt-4.1-mini"
	DefaultClaudeModel = "claude-3-5-sonnet-20240620"
)

// Config выбирает активного AI-провайдера и его учетные данные.
// Пустой ключ активного провайдера означает, что генерация недоступна
// и вызывающий код откатывается на placeholder-контент.
type Config struct {
	Provider       string
	OpenAIAPIKey   string
	OpenAIModel    string
	ClaudeAPIKey   string
	ClaudeModel    string
	RequestTimeout time.Duration
}

// APIKey возвращает ключ активного провайдера
func (c Config) APIKey() string {
	if c.Provider == "claude" {
		return c.ClaudeAPIKey
	}
	return c.OpenAIAPIKey
}

// APIKeyEnvVar возвращает имя переменной окружения с ключом активного
// провайдера. Используется в сообщениях о деградации.
func (c Config) APIKeyEnvVar() string {
	if c.Provider == "claude" {
		return "CLAUDE_API_KEY"
	}
	return "OPENAI_API_KEY"
}

// ModelName возвращает модель активного провайдера с учетом умолчаний
func (c Config) ModelName() string {
	if c.Provider == "claude" {
		if c.ClaudeModel != "" {
			return c.ClaudeModel
		}
		return DefaultClaudeModel
	}
	if c.OpenAIModel != "" {
		return c.OpenAIModel
	}
	return DefaultOpenAIModel
}

// Configured сообщает, задан ли API-ключ активного провайдера
func (c Config) Configured() bool {
	return c.APIKey() != ""
}
