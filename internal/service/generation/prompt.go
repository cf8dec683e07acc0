package generation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
)

var promptWordPattern = regexp.MustCompile(`^[A-Za-z0-9-]+$`)

// ValidatePrompt проверяет форму темы викторины: 1-3 слова из латинских
// букв, цифр и дефисов. Возвращает тему со схлопнутыми пробелами.
func ValidatePrompt(prompt string) (string, error) {
	cleaned := strings.TrimSpace(prompt)
	if cleaned == "" {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "prompt must be 1-3 words")
	}
	words := strings.Fields(cleaned)
	if len(words) < 1 || len(words) > 3 {
		return "", apperrors.WithMessage(apperrors.ErrValidation, "prompt must be 1-3 words")
	}
	for _, word := range words {
		if !promptWordPattern.MatchString(word) {
			return "", apperrors.WithMessage(apperrors.ErrValidation, "prompt must be 1-3 words")
		}
	}
	return strings.Join(words, " "), nil
}

// PlaceholderContent строит детерминированный контент викторины для
// случаев, когда AI-генерация недоступна. Правильные ключи чередуются
// A, B, C, D, B: placeholder-викторина проходит полный цикл ответов.
func PlaceholderContent(prompt string) json.RawMessage {
	topic := strings.TrimSpace(prompt)
	if topic == "" {
		topic = "General Knowledge"
	}

	content := map[string]interface{}{
		"title": fmt.Sprintf("%s Placeholder Quiz", topic),
		"questions": []map[string]interface{}{
			{
				"prompt": fmt.Sprintf("Which statement best summarizes %s?", topic),
				"options": []map[string]string{
					{"key": "A", "text": fmt.Sprintf("%s is the main focus.", topic)},
					{"key": "B", "text": "It is unrelated to the topic."},
					{"key": "C", "text": "It only applies in rare cases."},
					{"key": "D", "text": "It is a historical footnote."},
				},
				"correct_option_key": "A",
				"explanation":        "Placeholder explanation: the topic should be central.",
			},
			{
				"prompt": fmt.Sprintf("Which term is most associated with %s?", topic),
				"options": []map[string]string{
					{"key": "A", "text": "Distant echoes"},
					{"key": "B", "text": fmt.Sprintf("Core %s concept", topic)},
					{"key": "C", "text": "Random noise"},
					{"key": "D", "text": "Unrelated field"},
				},
				"correct_option_key": "B",
				"explanation":        "Placeholder explanation: this is a common association.",
			},
			{
				"prompt": fmt.Sprintf("Which activity is an example of %s?", topic),
				"options": []map[string]string{
					{"key": "A", "text": "Unrelated observation"},
					{"key": "B", "text": "Contradictory practice"},
					{"key": "C", "text": fmt.Sprintf("Applying %s principles", topic)},
					{"key": "D", "text": "Ignoring the topic entirely"},
				},
				"correct_option_key": "C",
				"explanation":        "Placeholder explanation: examples apply the topic.",
			},
			{
				"prompt": fmt.Sprintf("Which question would you ask to learn about %s?", topic),
				"options": []map[string]string{
					{"key": "A", "text": "What is the weather tomorrow?"},
					{"key": "B", "text": "How tall is the nearest mountain?"},
					{"key": "C", "text": "Who won last night's game?"},
					{"key": "D", "text": fmt.Sprintf("What are the basics of %s?", topic)},
				},
				"correct_option_key": "D",
				"explanation":        "Placeholder explanation: questions should be on-topic.",
			},
			{
				"prompt": fmt.Sprintf("Which choice is least related to %s?", topic),
				"options": []map[string]string{
					{"key": "A", "text": fmt.Sprintf("An overview of %s", topic)},
					{"key": "B", "text": "An unrelated distraction"},
					{"key": "C", "text": fmt.Sprintf("%s fundamentals", topic)},
					{"key": "D", "text": fmt.Sprintf("Common %s vocabulary", topic)},
				},
				"correct_option_key": "B",
				"explanation":        "Placeholder explanation: the unrelated option stands out.",
			},
		},
	}

	raw, _ := json.Marshal(content)
	return raw
}

// EnsurePromptCoverage проверяет, что тема встречается в заголовке или
// хотя бы в одном вопросе (без учета регистра). Иначе заголовок
// переписывается на "<тема> Quiz".
func EnsurePromptCoverage(prompt string, raw json.RawMessage) json.RawMessage {
	promptText := strings.TrimSpace(prompt)
	if promptText == "" {
		return raw
	}

	var content map[string]interface{}
	if err := json.Unmarshal(raw, &content); err != nil {
		return raw
	}

	needle := strings.ToLower(promptText)
	title, _ := content["title"].(string)

	var prompts strings.Builder
	if questions, ok := content["questions"].([]interface{}); ok {
		for _, item := range questions {
			if question, ok := item.(map[string]interface{}); ok {
				if text, ok := question["prompt"].(string); ok {
					prompts.WriteString(text)
					prompts.WriteString(" ")
				}
			}
		}
	}

	if !strings.Contains(strings.ToLower(title), needle) &&
		!strings.Contains(strings.ToLower(prompts.String()), needle) {
		content["title"] = fmt.Sprintf("%s Quiz", promptText)
		if rewritten, err := json.Marshal(content); err == nil {
			return rewritten
		}
	}
	return raw
}

var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

// extractJSON вырезает JSON-объект из сырого ответа модели. Если модель
// обернула документ в прозу или markdown-блоки, берется внешняя пара
// фигурных скобок.
func extractJSON(payload string) (json.RawMessage, error) {
	trimmed := strings.TrimSpace(payload)
	if json.Valid([]byte(trimmed)) && strings.HasPrefix(trimmed, "{") {
		return json.RawMessage(trimmed), nil
	}
	match := jsonObjectPattern.FindString(payload)
	if match == "" || !json.Valid([]byte(match)) {
		return nil, fmt.Errorf("quiz response was not valid JSON")
	}
	return json.RawMessage(match), nil
}
