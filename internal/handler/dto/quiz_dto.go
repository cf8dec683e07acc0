package dto

import (
	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
	"github.com/gchris96/Quiz-Forge/internal/service"
)

// QuizResponse представляет метаданные викторины без контента
type QuizResponse struct {
	ID             string   `json:"id"`
	UserID         string   `json:"user_id"`
	Prompt         string   `json:"prompt"`
	Status         string   `json:"status"`
	CreatedAt      string   `json:"created_at"`
	CompletedAt    *string  `json:"completed_at"`
	TotalQuestions int      `json:"total_questions"`
	CorrectCount   *int     `json:"correct_count"`
	ScorePercent   *float64 `json:"score_percent"`
}

// NewQuizResponse создает QuizResponse из сущности викторины
func NewQuizResponse(quiz *entity.Quiz) QuizResponse {
	response := QuizResponse{
		ID:             quiz.ID,
		UserID:         quiz.UserID,
		Prompt:         quiz.Prompt,
		Status:         quiz.Status,
		CreatedAt:      entity.FormatTimestamp(quiz.CreatedAt),
		TotalQuestions: quiz.TotalQuestions,
		CorrectCount:   quiz.CorrectCount,
		ScorePercent:   quiz.ScorePercent,
	}
	if quiz.CompletedAt != nil {
		completedAt := entity.FormatTimestamp(*quiz.CompletedAt)
		response.CompletedAt = &completedAt
	}
	return response
}

// NewQuizListResponse создает список QuizResponse
func NewQuizListResponse(quizzes []entity.Quiz) []QuizResponse {
	responses := make([]QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		responses = append(responses, NewQuizResponse(&quizzes[i]))
	}
	return responses
}

// QuizTakeResponse представляет викторину для прохождения: публичный
// контент без ключей ответов. Message заполняется только при деградации
// генерации до placeholder-контента.
type QuizTakeResponse struct {
	ID             string             `json:"id"`
	Prompt         string             `json:"prompt"`
	Status         string             `json:"status"`
	TotalQuestions int                `json:"total_questions"`
	QuizPublic     entity.QuizContent `json:"quiz_public"`
	Message        string             `json:"message,omitempty"`
}

// NewQuizTakeResponse создает QuizTakeResponse из сущности викторины
func NewQuizTakeResponse(quiz *entity.Quiz, message string) QuizTakeResponse {
	return QuizTakeResponse{
		ID:             quiz.ID,
		Prompt:         quiz.Prompt,
		Status:         quiz.Status,
		TotalQuestions: quiz.TotalQuestions,
		QuizPublic:     quiz.QuizPublic,
		Message:        message,
	}
}

// AnswerResponse представляет ответ на отправку ответа: немедленная
// обратная связь и прогресс прохождения
type AnswerResponse struct {
	Feedback       entity.AnswerFeedback `json:"feedback"`
	Status         string                `json:"status"`
	AnsweredCount  int64                 `json:"answered_count"`
	TotalQuestions int                   `json:"total_questions"`
}

// NewAnswerResponse создает AnswerResponse из результата отправки
func NewAnswerResponse(result *service.SubmitResult) AnswerResponse {
	return AnswerResponse{
		Feedback:       result.Feedback,
		Status:         result.Status,
		AnsweredCount:  result.AnsweredCount,
		TotalQuestions: result.TotalQuestions,
	}
}
