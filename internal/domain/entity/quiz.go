package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Константы статусов викторины
const (
	QuizStatusInProgress = "in_progress"
	QuizStatusCompleted  = "completed"
)

// Quiz представляет викторину одного пользователя.
// QuizContent хранит полный документ (с ключами правильных ответов),
// QuizPublic - обезличенную копию для прохождения. ResultsSnapshot
// заполняется один раз при завершении и далее не изменяется.
type Quiz struct {
	ID              string           `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID          string           `gorm:"type:varchar(36);not null;index:quizzes_user_created_idx;index:quizzes_user_status_idx" json:"user_id"`
	Prompt          string           `gorm:"type:text;not null" json:"prompt"`
	Status          string           `gorm:"size:20;not null;default:'in_progress';index:quizzes_user_status_idx" json:"status"`
	CreatedAt       time.Time        `gorm:"index:quizzes_user_created_idx" json:"created_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
	TotalQuestions  int              `gorm:"not null" json:"total_questions"`
	CorrectCount    *int             `json:"correct_count,omitempty"`
	ScorePercent    *float64         `gorm:"type:numeric(5,2)" json:"score_percent,omitempty"`
	QuizContent     QuizContent      `gorm:"type:jsonb;not null" json:"-"`
	QuizPublic      QuizContent      `gorm:"type:jsonb;not null" json:"quiz_public"`
	ResultsSnapshot *ResultsSnapshot `gorm:"type:jsonb" json:"-"`
}

// TableName определяет имя таблицы для GORM
func (Quiz) TableName() string {
	return "quizzes"
}

// BeforeCreate присваивает UUID, если идентификатор не задан явно
func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	return nil
}

// IsCompleted проверяет, завершена ли викторина
func (q *Quiz) IsCompleted() bool {
	return q.Status == QuizStatusCompleted
}
