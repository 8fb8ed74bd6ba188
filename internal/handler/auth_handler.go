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

// AuthHandler обрабатывает запросы, связанные с аутентификацией
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Register обрабатывает запрос на регистрацию
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(service.RegisterInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
		TutorCode: req.TutorCode,
	})
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login обрабатывает запрос на вход
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.LoginResponse{
		Token: token,
		User:  dto.NewUserResponse(user),
	})
}

// Me возвращает профиль текущего пользователя
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	user, err := h.authService.GetUser(userID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// LinkTutor привязывает текущего ученика к наставнику по коду
func (h *AuthHandler) LinkTutor(c *gin.Context) {
	var req dto.LinkTutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	studentID := middleware.CurrentUserID(c)
	student, err := h.authService.LinkTutor(studentID, req.TutorCode)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(student))
}

// ValidateTutorCode проверяет код наставника до регистрации
func (h *AuthHandler) ValidateTutorCode(c *gin.Context) {
	tutor, err := h.authService.ValidateTutorCode(c.Param("code"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusOK, gin.H{"valid": false})
			return
		}
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": true, "tutor_name": tutor.Name})
}

// MyTutorCode возвращает код наставника текущего учителя
func (h *AuthHandler) MyTutorCode(c *gin.Context) {
	code, err := h.authService.MyTutorCode(middleware.CurrentUserID(c))
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tutor_code": code})
}

// UpdateMe обновляет профиль текущего пользователя
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.CurrentUserID(c)
	user, err := h.userService.UpdateName(userID, req.Name)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// DeactivateMe выключает учетную запись текущего пользователя
func (h *AuthHandler) DeactivateMe(c *gin.Context) {
	userID := middleware.CurrentUserID(c)

	if err := h.userService.Deactivate(userID); err != nil {
		h.handleAuthError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated"})
}

// MyStudents возвращает учеников текущего учителя
func (h *AuthHandler) MyStudents(c *gin.Context) {
	teacherID := middleware.CurrentUserID(c)

	students, err := h.userService.ListStudents(teacherID)
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	resp := make([]*dto.UserResponse, 0, len(students))
	for i := range students {
		resp = append(resp, dto.NewUserResponse(&students[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// handleAuthError преобразует ошибки сервиса в HTTP-ответы
func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
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
		log.Printf("[AuthHandler] Internal error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
