package service

import (
	"context"
	"log"
	"time"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
	"github.com/gchris96/Quiz-Forge/internal/domain/repository"
	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
)

// SubmitResult - результат отправки одного ответа: немедленная обратная
// связь плюс прогресс прохождения
type SubmitResult struct {
	Feedback       entity.AnswerFeedback
	Status         string
	AnsweredCount  int64
	TotalQuestions int
}

// AnswerService обрабатывает отправку ответов и завершение викторин
type AnswerService struct {
	uow       repository.UnitOfWork
	cacheRepo repository.CacheRepository
}

// NewAnswerService создает новый сервис ответов.
// cacheRepo может быть nil: инвалидация кеша тогда пропускается.
func NewAnswerService(uow repository.UnitOfWork, cacheRepo repository.CacheRepository) *AnswerService {
	return &AnswerService{
		uow:       uow,
		cacheRepo: cacheRepo,
	}
}

// SubmitAnswer записывает ответ на один вопрос и, если он последний,
// завершает викторину и фиксирует итоговый снимок. Вся последовательность
// выполняется в одной транзакции: при конфликте (повторный ответ) ничего
// не сохраняется.
func (s *AnswerService) SubmitAnswer(ctx context.Context, quizID string, questionIndex int, selectedKey string) (*SubmitResult, error) {
	var result SubmitResult
	var completedNow bool

	err := s.uow.WithinTransaction(ctx, func(repos repository.TxRepos) error {
		quiz, err := repos.Quizzes.GetByID(ctx, quizID)
		if err != nil {
			return err
		}
		if quiz.IsCompleted() {
			return apperrors.WithMessage(apperrors.ErrConflict, "quiz completed")
		}

		question, ok := quiz.QuizContent.QuestionByIndex(questionIndex)
		if !ok {
			return apperrors.WithMessage(apperrors.ErrValidation, "question_index not found")
		}

		isCorrect := selectedKey == question.CorrectOptionKey
		feedback := entity.AnswerFeedback{
			QuestionIndex:     questionIndex,
			SelectedOptionKey: selectedKey,
			IsCorrect:         isCorrect,
			CorrectOptionKey:  question.CorrectOptionKey,
			Explanation:       question.Explanation,
		}

		answer := &entity.QuizAnswer{
			QuizID:            quiz.ID,
			QuestionIndex:     questionIndex,
			SelectedOptionKey: selectedKey,
			IsCorrect:         isCorrect,
			Feedback:          feedback,
		}
		if err := repos.Answers.Create(ctx, answer); err != nil {
			return err
		}

		answeredCount, err := repos.Answers.CountByQuiz(ctx, quiz.ID)
		if err != nil {
			return err
		}

		status := entity.QuizStatusInProgress
		if answeredCount == int64(quiz.TotalQuestions) {
			answers, err := repos.Answers.ListByQuiz(ctx, quiz.ID)
			if err != nil {
				return err
			}
			snapshot := entity.BuildResultsSnapshot(quiz, answers, time.Now().UTC())
			completed, err := repos.Quizzes.CompleteQuiz(ctx, quiz.ID, snapshot)
			if err != nil {
				return err
			}
			completedNow = completed
			// Даже если гонку выиграл параллельный запрос, викторина завершена
			status = entity.QuizStatusCompleted
		}

		result = SubmitResult{
			Feedback:       feedback,
			Status:         status,
			AnsweredCount:  answeredCount,
			TotalQuestions: quiz.TotalQuestions,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completedNow {
		log.Printf("[AnswerService] Викторина %s завершена", quizID)
		s.invalidateQuizCache(ctx, quizID)
	}
	return &result, nil
}

// invalidateQuizCache сбрасывает кешированную копию викторины после
// смены статуса. Ошибка кеша не влияет на результат запроса.
func (s *AnswerService) invalidateQuizCache(ctx context.Context, quizID string) {
	if s.cacheRepo == nil {
		return
	}
	if err := s.cacheRepo.Delete(ctx, quizCacheKey(quizID)); err != nil {
		log.Printf("[AnswerService] Ошибка инвалидации кеша викторины %s: %v", quizID, err)
	}
}
