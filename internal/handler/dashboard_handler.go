package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/classroom-api/internal/middleware"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
	"github.com/yourusername/classroom-api/internal/service"
)

// DashboardHandler обрабатывает запросы панелей и рейтингов
type DashboardHandler struct {
	dashboardService *service.DashboardService
}

// NewDashboardHandler создает новый обработчик панелей
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// TeacherOverview возвращает сводку панели учителя
func (h *DashboardHandler) TeacherOverview(c *gin.Context) {
	overview, err := h.dashboardService.GetTeacherOverview(middleware.CurrentUserID(c))
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// StudentPerformances возвращает рейтинг учеников наставника
func (h *DashboardHandler) StudentPerformances(c *gin.Context) {
	performances, err := h.dashboardService.GetStudentPerformances(middleware.CurrentUserID(c))
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, performances)
}

// Leaderboard возвращает лидерборд учеников
func (h *DashboardHandler) Leaderboard(c *gin.Context) {
	leaderboard, err := h.dashboardService.GetLeaderboard()
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, leaderboard)
}

// StudentDiagnostic возвращает диагностический отчет по ученику
func (h *DashboardHandler) StudentDiagnostic(c *gin.Context) {
	studentID := c.MustGet("studentID").(uint)

	report, err := h.dashboardService.GetStudentDiagnostic(studentID, middleware.CurrentUserID(c))
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// MyPerformance возвращает сводку успеваемости текущего ученика
func (h *DashboardHandler) MyPerformance(c *gin.Context) {
	performance, err := h.dashboardService.GetMyPerformance(middleware.CurrentUserID(c))
	if err != nil {
		h.handleDashboardError(c, err)
		return
	}
	c.JSON(http.StatusOK, performance)
}

// handleDashboardError преобразует ошибки сервиса в HTTP-ответы
func (h *DashboardHandler) handleDashboardError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrForbidden) {
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	} else {
		log.Printf("[DashboardHandler] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
