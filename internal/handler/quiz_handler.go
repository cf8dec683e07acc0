package handler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/gchris96/Quiz-Forge/internal/domain/entity"
	"github.com/gchris96/Quiz-Forge/internal/handler/dto"
	apperrors "github.com/gchris96/Quiz-Forge/internal/pkg/errors"
	"github.com/gchris96/Quiz-Forge/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с викторинами
type QuizHandler struct {
	quizService   *service.QuizService
	answerService *service.AnswerService
	resultService *service.ResultService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(
	quizService *service.QuizService,
	answerService *service.AnswerService,
	resultService *service.ResultService,
) *QuizHandler {
	return &QuizHandler{
		quizService:   quizService,
		answerService: answerService,
		resultService: resultService,
	}
}

// CreateQuizRequest представляет запрос на создание викторины с готовым контентом
type CreateQuizRequest struct {
	UserID      string          `json:"user_id" binding:"required"`
	Prompt      string          `json:"prompt"`
	QuizContent json.RawMessage `json:"quiz_content" binding:"required"`
}

// PlaceholderQuizRequest представляет запрос на создание placeholder-викторины
type PlaceholderQuizRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Prompt string `json:"prompt"`
}

// GenerateQuizRequest представляет запрос на генерацию викторины через AI
type GenerateQuizRequest struct {
	UserID string `json:"user_id" binding:"required"`
	Prompt string `json:"prompt"`
}

// SubmitAnswerRequest представляет запрос на отправку ответа
type SubmitAnswerRequest struct {
	QuestionIndex     int    `json:"question_index" binding:"required,min=1"`
	SelectedOptionKey string `json:"selected_option_key" binding:"required"`
}

// CreateQuiz сохраняет викторину с контентом, предоставленным клиентом
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.CreateQuiz(c.Request.Context(), req.UserID, req.Prompt, req.QuizContent)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizResponse(quiz))
}

// CreatePlaceholderQuiz сохраняет викторину с placeholder-контентом
func (h *QuizHandler) CreatePlaceholderQuiz(c *gin.Context) {
	var req PlaceholderQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.CreatePlaceholderQuiz(c.Request.Context(), req.UserID, req.Prompt)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizTakeResponse(quiz, ""))
}

// GenerateQuiz создает викторину с AI-контентом. Если провайдер не
// настроен, сохраняется placeholder и в ответ попадает message.
func (h *QuizHandler) GenerateQuiz(c *gin.Context) {
	var req GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, message, err := h.quizService.GenerateQuiz(c.Request.Context(), req.UserID, req.Prompt)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewQuizTakeResponse(quiz, message))
}

// ListQuizzes возвращает метаданные викторин пользователя, новые первыми
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id query parameter is required"})
		return
	}

	quizzes, err := h.quizService.ListQuizzes(c.Request.Context(), userID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizListResponse(quizzes))
}

// GetQuiz возвращает публичную версию викторины для прохождения
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(string)

	quiz, err := h.quizService.GetQuiz(c.Request.Context(), quizID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizTakeResponse(quiz, ""))
}

// SubmitAnswer записывает ответ на один вопрос и возвращает обратную
// связь. Последний ответ завершает викторину.
func (h *QuizHandler) SubmitAnswer(c *gin.Context) {
	quizID := c.MustGet("quizID").(string)

	var req SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.answerService.SubmitAnswer(c.Request.Context(), quizID, req.QuestionIndex, req.SelectedOptionKey)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewAnswerResponse(result))
}

// GetResults возвращает итоговый снимок завершенной викторины
func (h *QuizHandler) GetResults(c *gin.Context) {
	quizID := c.MustGet("quizID").(string)

	results, err := h.resultService.GetResults(c.Request.Context(), quizID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

// ExportResults экспортирует итоговый снимок в CSV или XLSX
func (h *QuizHandler) ExportResults(c *gin.Context) {
	quizID := c.MustGet("quizID").(string)
	format := c.DefaultQuery("format", "csv")

	results, err := h.resultService.GetResults(c.Request.Context(), quizID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	filename := fmt.Sprintf("quiz_%s_results_%s", quizID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, results, filename)
	default:
		h.exportCSV(c, results, filename)
	}
}

// exportCSV экспортирует результаты в CSV с правильным экранированием спецсимволов
func (h *QuizHandler) exportCSV(c *gin.Context, results *entity.ResultsSnapshot, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	// Используем encoding/csv для правильного экранирования запятых/кавычек
	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Index", "Question", "Selected", "Correct", "Is Correct", "Explanation"})

	for _, q := range results.Questions {
		selected := ""
		if q.SelectedOptionKey != nil {
			selected = *q.SelectedOptionKey
		}
		isCorrect := "No"
		if q.IsCorrect {
			isCorrect = "Yes"
		}

		writer.Write([]string{
			strconv.Itoa(q.Index),
			sanitizeForExcel(q.Prompt),
			selected,
			q.CorrectOptionKey,
			isCorrect,
			sanitizeForExcel(q.Explanation),
		})
	}

	writer.Write([]string{})
	writer.Write([]string{
		"Score",
		fmt.Sprintf("%d/%d", results.Score.CorrectCount, results.Score.TotalQuestions),
		fmt.Sprintf("%.2f%%", results.Score.ScorePercent),
		"Completed", results.CompletedAt, "",
	})
}

// exportXLSX экспортирует результаты в Excel с использованием StreamWriter
func (h *QuizHandler) exportXLSX(c *gin.Context, results *entity.ResultsSnapshot, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Results"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[QuizHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := []interface{}{"Index", "Question", "Selected", "Correct", "Is Correct", "Explanation"}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[QuizHandler] Ошибка записи заголовков: %v", err)
	}

	for i, q := range results.Questions {
		rowNum := i + 2 // Начинаем с 2 строки (1 - заголовки)
		cell := fmt.Sprintf("A%d", rowNum)

		selected := ""
		if q.SelectedOptionKey != nil {
			selected = *q.SelectedOptionKey
		}
		isCorrect := "No"
		if q.IsCorrect {
			isCorrect = "Yes"
		}

		row := []interface{}{q.Index, sanitizeForExcel(q.Prompt), selected, q.CorrectOptionKey, isCorrect, sanitizeForExcel(q.Explanation)}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[QuizHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	// Итоговая строка со счетом
	summaryCell := fmt.Sprintf("A%d", len(results.Questions)+3)
	summary := []interface{}{
		"Score",
		fmt.Sprintf("%d/%d", results.Score.CorrectCount, results.Score.TotalQuestions),
		fmt.Sprintf("%.2f%%", results.Score.ScorePercent),
		"Completed", results.CompletedAt,
	}
	if err := sw.SetRow(summaryCell, summary); err != nil {
		log.Printf("[QuizHandler] Ошибка записи итоговой строки: %v", err)
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[QuizHandler] Ошибка при Flush: %v", err)
	}

	if err := f.Write(c.Writer); err != nil {
		log.Printf("[QuizHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}

// handleQuizError преобразует ошибки сервисов в HTTP-статусы
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrGenerationUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrGeneration) {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	} else {
		log.Printf("ERROR: Internal server error in QuizHandler: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
