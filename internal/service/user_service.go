package service

import (
	"fmt"
	"strings"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/domain/repository"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// UserService отвечает за профили пользователей
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// GetByID возвращает пользователя по ID
func (s *UserService) GetByID(id uint) (*entity.User, error) {
	return s.userRepo.GetByID(id)
}

// ListStudents возвращает учеников наставника
func (s *UserService) ListStudents(tutorID uint) ([]entity.User, error) {
	return s.userRepo.ListStudentsByTutor(tutorID)
}

// UpdateName меняет отображаемое имя пользователя
func (s *UserService) UpdateName(userID uint, name string) (*entity.User, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidation)
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	user.Name = strings.TrimSpace(name)
	if err := s.userRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate выключает учетную запись
func (s *UserService) Deactivate(userID uint) error {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return err
	}
	user.IsActive = false
	return s.userRepo.Update(user)
}
