package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/classroom-api/internal/handler/dto"
	"github.com/yourusername/classroom-api/internal/middleware"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
	"github.com/yourusername/classroom-api/internal/service"
)

// SubjectHandler обрабатывает запросы предметов и классов
type SubjectHandler struct {
	subjectService *service.SubjectService
}

// NewSubjectHandler создает новый обработчик предметов
func NewSubjectHandler(subjectService *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

// CreateSubject создает предмет
func (h *SubjectHandler) CreateSubject(c *gin.Context) {
	var req dto.CreateSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	subject, err := h.subjectService.CreateSubject(middleware.CurrentUserID(c), req.Name, req.Description)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	c.JSON(http.StatusCreated, subject)
}

// ListSubjects возвращает предметы наставника
func (h *SubjectHandler) ListSubjects(c *gin.Context) {
	subjects, err := h.subjectService.ListSubjects(middleware.CurrentUserID(c))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, subjects)
}

// DeactivateSubject деактивирует предмет
func (h *SubjectHandler) DeactivateSubject(c *gin.Context) {
	subjectID := c.MustGet("subjectID").(uint)

	if err := h.subjectService.DeactivateSubject(subjectID, middleware.CurrentUserID(c)); err != nil {
		h.handleSubjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Subject deactivated"})
}

// CreateGrade создает класс внутри предмета
func (h *SubjectHandler) CreateGrade(c *gin.Context) {
	subjectID := c.MustGet("subjectID").(uint)

	var req dto.CreateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	grade, err := h.subjectService.CreateGrade(subjectID, middleware.CurrentUserID(c), req.Name)
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	c.JSON(http.StatusCreated, grade)
}

// ListGrades возвращает классы предмета
func (h *SubjectHandler) ListGrades(c *gin.Context) {
	subjectID := c.MustGet("subjectID").(uint)

	grades, err := h.subjectService.ListGrades(subjectID, middleware.CurrentUserID(c))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, grades)
}

// EnrollStudent записывает ученика в класс
func (h *SubjectHandler) EnrollStudent(c *gin.Context) {
	gradeID := c.MustGet("gradeID").(uint)

	var req dto.EnrollStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enrollment, err := h.subjectService.EnrollStudent(gradeID, req.StudentID, middleware.CurrentUserID(c))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}
	c.JSON(http.StatusCreated, enrollment)
}

// UnenrollStudent отчисляет ученика из класса
func (h *SubjectHandler) UnenrollStudent(c *gin.Context) {
	gradeID := c.MustGet("gradeID").(uint)
	studentID := c.MustGet("studentID").(uint)

	if err := h.subjectService.UnenrollStudent(gradeID, studentID, middleware.CurrentUserID(c)); err != nil {
		h.handleSubjectError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Student unenrolled"})
}

// ListGradeStudents возвращает учеников класса
func (h *SubjectHandler) ListGradeStudents(c *gin.Context) {
	gradeID := c.MustGet("gradeID").(uint)

	students, err := h.subjectService.ListGradeStudents(gradeID, middleware.CurrentUserID(c))
	if err != nil {
		h.handleSubjectError(c, err)
		return
	}

	resp := make([]*dto.UserResponse, 0, len(students))
	for i := range students {
		resp = append(resp, dto.NewUserResponse(&students[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// handleSubjectError преобразует ошибки сервиса в HTTP-ответы
func (h *SubjectHandler) handleSubjectError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("[SubjectHandler] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
