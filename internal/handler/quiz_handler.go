package handler

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/handler/dto"
	"github.com/yourusername/classroom-api/internal/middleware"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
	"github.com/yourusername/classroom-api/internal/service"
)

// QuizHandler обрабатывает запросы, связанные с викторинами и попытками
type QuizHandler struct {
	quizService    *service.QuizService
	attemptService *service.AttemptService
	userService    *service.UserService
}

// NewQuizHandler создает новый обработчик викторин
func NewQuizHandler(
	quizService *service.QuizService,
	attemptService *service.AttemptService,
	userService *service.UserService,
) *QuizHandler {
	return &QuizHandler{
		quizService:    quizService,
		attemptService: attemptService,
		userService:    userService,
	}
}

// CreateQuiz создает новую викторину с вопросами
func (h *QuizHandler) CreateQuiz(c *gin.Context) {
	var req dto.CreateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]service.QuestionInput, 0, len(req.Questions))
	for _, q := range req.Questions {
		questions = append(questions, service.QuestionInput{
			Text:          q.Text,
			Type:          q.Type,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			Explanation:   q.Explanation,
		})
	}

	passingScore := req.PassingScore
	if passingScore == 0 {
		passingScore = 60
	}

	quiz, err := h.quizService.CreateQuiz(middleware.CurrentUserID(c), service.CreateQuizInput{
		Title:        req.Title,
		Description:  req.Description,
		Subject:      req.Subject,
		TimeLimitMin: req.TimeLimitMin,
		PassingScore: passingScore,
		Questions:    questions,
	})
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewTeacherQuizResponse(quiz))
}

// ListQuizzes возвращает викторины: учителю свои, ученику активные
func (h *QuizHandler) ListQuizzes(c *gin.Context) {
	var (
		quizzes []entity.Quiz
		err     error
	)
	if c.GetString(middleware.ContextRole) == entity.RoleTeacher {
		activeOnly := c.Query("active") == "true"
		quizzes, err = h.quizService.ListTeacherQuizzes(middleware.CurrentUserID(c), activeOnly)
	} else {
		quizzes, err = h.quizService.ListActiveQuizzes()
	}
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	resp := make([]*dto.QuizResponse, 0, len(quizzes))
	for i := range quizzes {
		resp = append(resp, dto.NewQuizResponse(&quizzes[i], false))
	}
	c.JSON(http.StatusOK, resp)
}

// GetQuiz возвращает викторину. Учитель видит правильные ответы,
// ученик — только вопросы активной викторины.
func (h *QuizHandler) GetQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	userID := middleware.CurrentUserID(c)

	if c.GetString(middleware.ContextRole) == entity.RoleTeacher {
		quiz, err := h.quizService.GetQuizForTeacher(quizID, userID)
		if err != nil {
			h.handleQuizError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.NewTeacherQuizResponse(quiz))
		return
	}

	quiz, err := h.quizService.GetQuizForStudent(quizID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, true))
}

// UpdateQuiz обновляет поля викторины
func (h *QuizHandler) UpdateQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req dto.UpdateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.quizService.UpdateQuiz(quizID, middleware.CurrentUserID(c), service.UpdateQuizInput{
		Title:        req.Title,
		Description:  req.Description,
		Subject:      req.Subject,
		TimeLimitMin: req.TimeLimitMin,
		PassingScore: req.PassingScore,
	})
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewQuizResponse(quiz, false))
}

// SetQuizActive активирует или деактивирует викторину
func (h *QuizHandler) SetQuizActive(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req struct {
		IsActive *bool `json:"is_active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.quizService.SetActive(quizID, middleware.CurrentUserID(c), *req.IsActive); err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz updated"})
}

// DeleteQuiz удаляет викторину без попыток
func (h *QuizHandler) DeleteQuiz(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	if err := h.quizService.DeleteQuiz(quizID, middleware.CurrentUserID(c)); err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Quiz deleted"})
}

// AddQuestions добавляет вопросы в викторину
func (h *QuizHandler) AddQuestions(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req []dto.QuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	inputs := make([]service.QuestionInput, 0, len(req))
	for _, q := range req {
		inputs = append(inputs, service.QuestionInput{
			Text:          q.Text,
			Type:          q.Type,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			Explanation:   q.Explanation,
		})
	}

	questions, err := h.quizService.AddQuestions(quizID, middleware.CurrentUserID(c), inputs)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"added": len(questions)})
}

// DeleteQuestion удаляет вопрос
func (h *QuizHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.quizService.DeleteQuestion(questionID, middleware.CurrentUserID(c)); err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}

// StartAttempt начинает попытку или возобновляет незавершенную
func (h *QuizHandler) StartAttempt(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	attempt, resumed, err := h.attemptService.StartAttempt(quizID, middleware.CurrentUserID(c))
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	message := "Quiz attempt started"
	if resumed {
		message = "Resuming existing quiz attempt"
	}
	c.JSON(http.StatusOK, gin.H{
		"attempt_id": attempt.ID,
		"started_at": attempt.StartedAt,
		"message":    message,
	})
}

// SubmitAttempt сдает ответы и возвращает результат
func (h *QuizHandler) SubmitAttempt(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	var req []dto.AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	answers := make([]service.AnswerInput, 0, len(req))
	for _, a := range req {
		answers = append(answers, service.AnswerInput{
			QuestionID: a.QuestionID,
			Answer:     a.Answer,
		})
	}

	result, err := h.attemptService.SubmitAttempt(quizID, middleware.CurrentUserID(c), answers)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetAnalytics возвращает аналитику викторины для ее автора
func (h *QuizHandler) GetAnalytics(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	analytics, err := h.attemptService.ComputeQuizAnalytics(quizID, middleware.CurrentUserID(c))
	if err != nil {
		h.handleQuizError(c, err)
		return
	}
	c.JSON(http.StatusOK, analytics)
}

// ListAttempts возвращает попытки викторины для ее автора
func (h *QuizHandler) ListAttempts(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)

	attempts, err := h.attemptService.ListQuizAttempts(quizID, middleware.CurrentUserID(c))
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	resp := make([]*dto.AttemptSummaryResponse, 0, len(attempts))
	for i := range attempts {
		resp = append(resp, dto.NewAttemptSummaryResponse(&attempts[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// ExportAttempts экспортирует попытки викторины в CSV или XLSX.
// Формат задается query-параметром format (csv по умолчанию).
func (h *QuizHandler) ExportAttempts(c *gin.Context) {
	quizID := c.MustGet("quizID").(uint)
	teacherID := middleware.CurrentUserID(c)

	attempts, err := h.attemptService.ListQuizAttempts(quizID, teacherID)
	if err != nil {
		h.handleQuizError(c, err)
		return
	}

	rows := h.buildExportRows(attempts)
	filename := fmt.Sprintf("quiz_%d_attempts", quizID)

	switch c.DefaultQuery("format", "csv") {
	case "xlsx":
		h.exportXLSX(c, rows, filename)
	case "csv":
		h.exportCSV(c, rows, filename)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx"})
	}
}

type attemptExportRow struct {
	StudentID   uint
	StudentName string
	StartedAt   string
	CompletedAt string
	Score       string
	Passed      string
	TimeTaken   string
}

func (h *QuizHandler) buildExportRows(attempts []entity.QuizAttempt) []attemptExportRow {
	rows := make([]attemptExportRow, 0, len(attempts))
	for _, a := range attempts {
		row := attemptExportRow{
			StudentID: a.StudentID,
			StartedAt: a.StartedAt.Format("2006-01-02 15:04:05"),
			Passed:    "No",
		}
		if student, err := h.userService.GetByID(a.StudentID); err == nil {
			row.StudentName = student.Name
		}
		if a.CompletedAt != nil {
			row.CompletedAt = a.CompletedAt.Format("2006-01-02 15:04:05")
			row.TimeTaken = strconv.Itoa(a.TimeTakenSec)
		}
		if a.Score != nil {
			row.Score = strconv.FormatFloat(*a.Score, 'f', 2, 64)
		}
		if a.IsPassed {
			row.Passed = "Yes"
		}
		rows = append(rows, row)
	}
	return rows
}

var exportHeaders = []string{"Student ID", "Student", "Started", "Completed", "Score", "Passed", "Time (sec)"}

// exportCSV пишет попытки в CSV с BOM для корректного открытия в Excel
func (h *QuizHandler) exportCSV(c *gin.Context, rows []attemptExportRow, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(exportHeaders)
	for _, r := range rows {
		writer.Write([]string{
			strconv.FormatUint(uint64(r.StudentID), 10),
			sanitizeForExcel(r.StudentName),
			r.StartedAt,
			r.CompletedAt,
			r.Score,
			r.Passed,
			r.TimeTaken,
		})
	}
}

// exportXLSX экспортирует попытки в Excel с использованием StreamWriter
func (h *QuizHandler) exportXLSX(c *gin.Context, rows []attemptExportRow, filename string) {
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attempts"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[QuizHandler] Failed to create stream writer: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, len(exportHeaders))
	for i, hdr := range exportHeaders {
		headers[i] = hdr
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[QuizHandler] Failed to write headers: %v", err)
	}

	for i, r := range rows {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{r.StudentID, sanitizeForExcel(r.StudentName), r.StartedAt, r.CompletedAt, r.Score, r.Passed, r.TimeTaken}
		if err := sw.SetRow(cell, row); err != nil {
			log.Printf("[QuizHandler] Failed to write row %d: %v", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[QuizHandler] Stream writer flush failed: %v", err)
	}
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[QuizHandler] Failed to write Excel to response: %v", err)
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

// handleQuizError преобразует ошибки сервиса в HTTP-ответы
func (h *QuizHandler) handleQuizError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrUnauthorized) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("[QuizHandler] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
