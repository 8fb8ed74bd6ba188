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

// AnnouncementHandler обрабатывает запросы, связанные с объявлениями
type AnnouncementHandler struct {
	announcementService *service.AnnouncementService
}

// NewAnnouncementHandler создает новый обработчик объявлений
func NewAnnouncementHandler(announcementService *service.AnnouncementService) *AnnouncementHandler {
	return &AnnouncementHandler{announcementService: announcementService}
}

// CreateAnnouncement создает объявление
func (h *AnnouncementHandler) CreateAnnouncement(c *gin.Context) {
	var req dto.CreateAnnouncementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	announcement, err := h.announcementService.CreateAnnouncement(
		middleware.CurrentUserID(c), req.Title, req.Content, req.IsImportant)
	if err != nil {
		h.handleAnnouncementError(c, err)
		return
	}
	c.JSON(http.StatusCreated, announcement)
}

// ListAnnouncements возвращает все объявления
func (h *AnnouncementHandler) ListAnnouncements(c *gin.Context) {
	announcements, err := h.announcementService.ListAnnouncements()
	if err != nil {
		h.handleAnnouncementError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcements)
}

// GetAnnouncement возвращает объявление по ID
func (h *AnnouncementHandler) GetAnnouncement(c *gin.Context) {
	announcementID := c.MustGet("announcementID").(uint)

	announcement, err := h.announcementService.GetAnnouncement(announcementID)
	if err != nil {
		h.handleAnnouncementError(c, err)
		return
	}
	c.JSON(http.StatusOK, announcement)
}

// handleAnnouncementError преобразует ошибки сервиса в HTTP-ответы
func (h *AnnouncementHandler) handleAnnouncementError(c *gin.Context, err error) {
	if errors.Is(err, apperrors.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	} else if errors.Is(err, apperrors.ErrValidation) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	} else {
		log.Printf("[AnnouncementHandler] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
