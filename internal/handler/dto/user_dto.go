package dto

import (
	"time"

	"github.com/yourusername/classroom-api/internal/domain/entity"
)

// RegisterRequest — тело запроса регистрации
type RegisterRequest struct {
	Name      string `json:"name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	Role      string `json:"role" binding:"required,oneof=teacher student"`
	TutorCode string `json:"tutor_code"`
}

// LoginRequest — тело запроса входа
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LinkTutorRequest — тело запроса привязки к наставнику
type LinkTutorRequest struct {
	TutorCode string `json:"tutor_code" binding:"required"`
}

// UpdateProfileRequest — тело запроса обновления профиля
type UpdateProfileRequest struct {
	Name string `json:"name" binding:"required"`
}

// UserResponse представляет пользователя в формате для ответа клиенту
type UserResponse struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	TutorID   *uint     `json:"tutor_id,omitempty"`
	TutorCode *string   `json:"tutor_code,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// LoginResponse — ответ на успешный вход
type LoginResponse struct {
	Token string        `json:"token"`
	User  *UserResponse `json:"user"`
}

// NewUserResponse создает DTO для пользователя
func NewUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		TutorID:   user.TutorID,
		TutorCode: user.TutorCode,
		CreatedAt: user.CreatedAt,
	}
}
