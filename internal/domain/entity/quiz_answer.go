package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AnswerFeedback - кешированная обратная связь по одному ответу.
// Хранится в JSONB и возвращается клиенту сразу после отправки ответа.
type AnswerFeedback struct {
	QuestionIndex     int    `json:"question_index"`
	SelectedOptionKey string `json:"selected_option_key"`
	IsCorrect         bool   `json:"is_correct"`
	CorrectOptionKey  string `json:"correct_option_key"`
	Explanation       string `json:"explanation"`
}

// Scan реализует интерфейс sql.Scanner для AnswerFeedback
func (f *AnswerFeedback) Scan(value interface{}) error {
	if value == nil {
		*f = AnswerFeedback{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*f = AnswerFeedback{}
		return nil
	}

	return json.Unmarshal(bytes, f)
}

// Value реализует интерфейс driver.Valuer для AnswerFeedback
func (f AnswerFeedback) Value() (driver.Value, error) {
	return json.Marshal(f)
}

// QuizAnswer представляет один записанный ответ на вопрос викторины.
// Уникальный индекс (quiz_id, question_index) на уровне хранилища
// гарантирует не более одного ответа на вопрос даже при гонке запросов.
type QuizAnswer struct {
	ID                string         `gorm:"type:varchar(36);primaryKey" json:"id"`
	QuizID            string         `gorm:"type:varchar(36);not null;index:quiz_answers_quiz_idx;uniqueIndex:quiz_answers_quiz_question_idx" json:"quiz_id"`
	QuestionIndex     int            `gorm:"not null;uniqueIndex:quiz_answers_quiz_question_idx" json:"question_index"`
	SelectedOptionKey string         `gorm:"size:50;not null" json:"selected_option_key"`
	IsCorrect         bool           `gorm:"not null" json:"is_correct"`
	AnsweredAt        time.Time      `gorm:"autoCreateTime" json:"answered_at"`
	Feedback          AnswerFeedback `gorm:"type:jsonb;not null" json:"feedback"`
}

// TableName определяет имя таблицы для GORM
func (QuizAnswer) TableName() string {
	return "quiz_answers"
}

// BeforeCreate присваивает UUID, если идентификатор не задан явно
func (a *QuizAnswer) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
