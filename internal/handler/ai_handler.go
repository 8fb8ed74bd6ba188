package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/classroom-api/internal/handler/dto"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
	"github.com/yourusername/classroom-api/internal/service"
)

// AIHandler обрабатывает запросы AI-инструментов учителя
type AIHandler struct {
	aiService *service.AIService
}

// NewAIHandler создает новый обработчик AI-инструментов.
// aiService может быть nil, тогда все запросы отклоняются.
func NewAIHandler(aiService *service.AIService) *AIHandler {
	return &AIHandler{aiService: aiService}
}

// GenerateQuiz генерирует черновик викторины
func (h *AIHandler) GenerateQuiz(c *gin.Context) {
	var req dto.GenerateQuizRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quiz, err := h.aiService.GenerateQuiz(c.Request.Context(), req.Subject, req.Topic, req.Difficulty, req.NumQuestions)
	if err != nil {
		h.handleAIError(c, err)
		return
	}
	c.JSON(http.StatusOK, quiz)
}

// SuggestFeedback готовит AI-черновик оценки сдачи
func (h *AIHandler) SuggestFeedback(c *gin.Context) {
	var req dto.SuggestFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	suggestion, err := h.aiService.SuggestFeedback(c.Request.Context(), req.Submission, req.Rubric, req.Subject, req.MaxPoints)
	if err != nil {
		h.handleAIError(c, err)
		return
	}
	c.JSON(http.StatusOK, suggestion)
}

// LessonPlan генерирует план занятия
func (h *AIHandler) LessonPlan(c *gin.Context) {
	var req dto.LessonPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.aiService.CreateLessonPlan(c.Request.Context(), req.Subject, req.Topic, req.GradeLevel, req.Duration)
	if err != nil {
		h.handleAIError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"lesson_plan": plan})
}

// handleAIError преобразует ошибки сервиса в HTTP-ответы
func (h *AIHandler) handleAIError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("[AIHandler] AI request failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "AI request failed"})
	}
}
