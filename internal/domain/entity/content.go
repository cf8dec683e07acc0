package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"sort"

	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
)

// QuizQuestionCount - фиксированное количество вопросов в викторине
const QuizQuestionCount = 5

// QuizOptionCount - фиксированное количество вариантов ответа на вопрос
const QuizOptionCount = 4

// QuizOptionKeys - допустимые ключи вариантов ответа
var QuizOptionKeys = []string{"A", "B", "C", "D"}

// QuizOption представляет один вариант ответа на вопрос
type QuizOption struct {
	Key  string `json:"key"`
	Text string `json:"text"`
}

// QuizQuestion представляет один вопрос викторины.
// CorrectOptionKey и Explanation сериализуются с omitempty: в публичной
// (обезличенной) версии контента эти поля пустые и полностью выпадают из JSON.
type QuizQuestion struct {
	Index            int          `json:"index"`
	Prompt           string       `json:"prompt"`
	Options          []QuizOption `json:"options"`
	CorrectOptionKey string       `json:"correct_option_key,omitempty"`
	Explanation      string       `json:"explanation,omitempty"`
}

// QuizContent - пользовательский тип для работы с JSONB-документом контента
type QuizContent struct {
	Title     string         `json:"title"`
	Questions []QuizQuestion `json:"questions"`
}

// Scan реализует интерфейс sql.Scanner для QuizContent
// Используется GORM для чтения JSONB данных из базы
func (c *QuizContent) Scan(value interface{}) error {
	if value == nil {
		*c = QuizContent{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*c = QuizContent{}
		return nil
	}

	return json.Unmarshal(bytes, c)
}

// Value реализует интерфейс driver.Valuer для QuizContent
// Используется GORM для записи QuizContent в JSONB в базе
func (c QuizContent) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// QuestionByIndex возвращает вопрос по его индексу (1-based)
func (c *QuizContent) QuestionByIndex(index int) (*QuizQuestion, bool) {
	for i := range c.Questions {
		if c.Questions[i].Index == index {
			return &c.Questions[i], true
		}
	}
	return nil, false
}

// Public возвращает глубокую копию контента без ключей правильных ответов
// и объяснений. Исходный контент не изменяется: один и тот же документ
// используется и для хранения, и для публичной выдачи.
func (c QuizContent) Public() QuizContent {
	public := QuizContent{
		Title:     c.Title,
		Questions: make([]QuizQuestion, len(c.Questions)),
	}
	for i, q := range c.Questions {
		options := make([]QuizOption, len(q.Options))
		copy(options, q.Options)
		public.Questions[i] = QuizQuestion{
			Index:   q.Index,
			Prompt:  q.Prompt,
			Options: options,
		}
	}
	return public
}

// NormalizeQuizContent проверяет произвольный JSON-документ контента и
// приводит его к нормальной форме: ровно 5 вопросов, у каждого ровно
// 4 варианта с уникальными ключами A-D, correct_option_key указывает на
// один из вариантов. Вопросам без индекса присваивается 1-based индекс
// в порядке следования. Результат - всегда новое значение, вход не
// модифицируется.
func NormalizeQuizContent(raw json.RawMessage) (*QuizContent, error) {
	var doc struct {
		Title     string            `json:"title"`
		Questions []json.RawMessage `json:"questions"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil || len(doc.Questions) == 0 {
		return nil, apperrors.WithMessage(apperrors.ErrValidation,
			"quiz_content must include a non-empty questions array")
	}
	if len(doc.Questions) != QuizQuestionCount {
		return nil, apperrors.WithMessage(apperrors.ErrValidation,
			"quiz_content must include exactly 5 questions")
	}

	normalized := &QuizContent{
		Title:     doc.Title,
		Questions: make([]QuizQuestion, 0, QuizQuestionCount),
	}
	for i, rawQuestion := range doc.Questions {
		question, err := normalizeQuestion(rawQuestion, i+1)
		if err != nil {
			return nil, err
		}
		normalized.Questions = append(normalized.Questions, *question)
	}
	return normalized, nil
}

// normalizeQuestion разбирает и валидирует один вопрос. position - 1-based
// позиция вопроса во входном массиве, используется как индекс по умолчанию.
func normalizeQuestion(raw json.RawMessage, position int) (*QuizQuestion, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrValidation,
			"each question must be an object")
	}

	var options []json.RawMessage
	if rawOptions, ok := fields["options"]; ok {
		if err := json.Unmarshal(rawOptions, &options); err != nil {
			options = nil
		}
	}
	if len(options) != QuizOptionCount {
		return nil, apperrors.WithMessage(apperrors.ErrValidation,
			"each question must include 4 options")
	}

	question := QuizQuestion{
		Index:   position,
		Options: make([]QuizOption, 0, QuizOptionCount),
	}
	optionKeys := make([]string, 0, QuizOptionCount)
	for _, rawOption := range options {
		var option QuizOption
		if err := json.Unmarshal(rawOption, &option); err != nil || option.Key == "" || option.Text == "" {
			return nil, apperrors.WithMessage(apperrors.ErrValidation,
				"each option must include a key and text")
		}
		question.Options = append(question.Options, option)
		optionKeys = append(optionKeys, option.Key)
	}

	// Набор ключей должен совпадать с {A,B,C,D}, порядок не важен
	sorted := make([]string, len(optionKeys))
	copy(sorted, optionKeys)
	sort.Strings(sorted)
	for i, key := range QuizOptionKeys {
		if sorted[i] != key {
			return nil, apperrors.WithMessage(apperrors.ErrValidation,
				"options must use unique keys A-D")
		}
	}

	if rawCorrect, ok := fields["correct_option_key"]; ok {
		_ = json.Unmarshal(rawCorrect, &question.CorrectOptionKey)
	}
	correctKeyFound := false
	for _, key := range optionKeys {
		if question.CorrectOptionKey == key {
			correctKeyFound = true
			break
		}
	}
	if !correctKeyFound {
		return nil, apperrors.WithMessage(apperrors.ErrValidation,
			"correct_option_key must match one of the option keys")
	}

	if rawPrompt, ok := fields["prompt"]; ok {
		_ = json.Unmarshal(rawPrompt, &question.Prompt)
	}
	if rawExplanation, ok := fields["explanation"]; ok {
		_ = json.Unmarshal(rawExplanation, &question.Explanation)
	}
	// Индекс из входа сохраняется, если задан; иначе остается позиция
	if rawIndex, ok := fields["index"]; ok {
		var index int
		if err := json.Unmarshal(rawIndex, &index); err == nil {
			question.Index = index
		}
	}

	return &question, nil
}
