package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/handler/dto"
	"github.com/yourusername/classroom-api/internal/middleware"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
	"github.com/yourusername/classroom-api/internal/service"
)

// AssignmentHandler обрабатывает запросы, связанные с заданиями
type AssignmentHandler struct {
	assignmentService *service.AssignmentService
}

// NewAssignmentHandler создает новый обработчик заданий
func NewAssignmentHandler(assignmentService *service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// CreateAssignment создает новое задание
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	assignment, err := h.assignmentService.CreateAssignment(middleware.CurrentUserID(c), service.CreateAssignmentInput{
		Title:       req.Title,
		Description: req.Description,
		Subject:     req.Subject,
		DueDate:     req.DueDate,
		MaxPoints:   req.MaxPoints,
	})
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, assignment)
}

// ListAssignments возвращает задания
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	assignments, err := h.assignmentService.ListAssignments(
		middleware.CurrentUserID(c),
		c.GetString(middleware.ContextRole),
	)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignments)
}

// GetAssignment возвращает задание по ID
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	assignmentID := c.MustGet("assignmentID").(uint)

	assignment, err := h.assignmentService.GetAssignment(assignmentID)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, assignment)
}

// SubmitAssignment сдает задание
func (h *AssignmentHandler) SubmitAssignment(c *gin.Context) {
	assignmentID := c.MustGet("assignmentID").(uint)

	var req dto.SubmitAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.assignmentService.SubmitAssignment(
		assignmentID, middleware.CurrentUserID(c), req.Content, req.FileURL)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusCreated, submission)
}

// GradeSubmission выставляет оценку за сдачу
func (h *AssignmentHandler) GradeSubmission(c *gin.Context) {
	submissionID := c.MustGet("submissionID").(uint)

	var req dto.GradeSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	submission, err := h.assignmentService.GradeSubmission(
		submissionID, middleware.CurrentUserID(c), *req.Score, req.Feedback)
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, submission)
}

// ListSubmissions возвращает сдачи задания для его автора
func (h *AssignmentHandler) ListSubmissions(c *gin.Context) {
	assignmentID := c.MustGet("assignmentID").(uint)

	submissions, err := h.assignmentService.ListSubmissions(assignmentID, middleware.CurrentUserID(c))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	c.JSON(http.StatusOK, submissions)
}

// MySubmissions возвращает сдачи текущего ученика
func (h *AssignmentHandler) MySubmissions(c *gin.Context) {
	submissions, err := h.assignmentService.ListMySubmissions(middleware.CurrentUserID(c))
	if err != nil {
		h.handleAssignmentError(c, err)
		return
	}
	if submissions == nil {
		submissions = []entity.AssignmentSubmission{}
	}
	c.JSON(http.StatusOK, submissions)
}

// handleAssignmentError преобразует ошибки сервиса в HTTP-ответы
func (h *AssignmentHandler) handleAssignmentError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("[AssignmentHandler] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
