package service

import (
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/domain/repository"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
	"github.com/yourusername/classroom-api/pkg/auth"
)

// RegisterInput carries the fields needed to create an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
	// TutorCode links a student to a teacher at registration time.
	// Ignored for teacher accounts.
	TutorCode string
}

// AuthService отвечает за регистрацию и вход пользователей
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}
}

// Register создает нового пользователя.
// Учителю выдается уникальный код наставника; ученик по коду привязывается
// к своему учителю.
func (s *AuthService) Register(input RegisterInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || input.Password == "" || strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", apperrors.ErrValidation)
	}
	if input.Role != entity.RoleTeacher && input.Role != entity.RoleStudent {
		return nil, fmt.Errorf("%w: role must be %q or %q", apperrors.ErrValidation, entity.RoleTeacher, entity.RoleStudent)
	}

	if _, err := s.userRepo.GetByEmail(email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrConflict)
	} else if err != apperrors.ErrNotFound {
		return nil, err
	}

	user := &entity.User{
		Name:     strings.TrimSpace(input.Name),
		Email:    email,
		Password: input.Password,
		Role:     input.Role,
		IsActive: true,
	}

	switch input.Role {
	case entity.RoleTeacher:
		code, err := generateTutorCode(s.userRepo)
		if err != nil {
			return nil, err
		}
		user.TutorCode = &code

	case entity.RoleStudent:
		if code := strings.ToUpper(strings.TrimSpace(input.TutorCode)); code != "" {
			tutor, err := s.userRepo.GetTutorByCode(code)
			if err != nil {
				if err == apperrors.ErrNotFound {
					return nil, fmt.Errorf("%w: tutor code not found", apperrors.ErrValidation)
				}
				return nil, err
			}
			user.TutorID = &tutor.ID
		}
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	log.Printf("[AuthService] Registered user ID=%d role=%s", user.ID, user.Role)
	return user, nil
}

// Login проверяет учетные данные и возвращает пользователя с JWT токеном
func (s *AuthService) Login(email, password string) (*entity.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil, "", fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		return nil, "", err
	}

	if !user.IsActive {
		return nil, "", fmt.Errorf("%w: account is deactivated", apperrors.ErrUnauthorized)
	}
	if !user.CheckPassword(password) {
		return nil, "", fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// GetUser returns the user profile by ID.
func (s *AuthService) GetUser(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// ValidateTutorCode проверяет код наставника и возвращает его владельца.
// Используется формой регистрации до создания аккаунта.
func (s *AuthService) ValidateTutorCode(tutorCode string) (*entity.User, error) {
	code := strings.ToUpper(strings.TrimSpace(tutorCode))
	if code == "" {
		return nil, fmt.Errorf("%w: tutor code is required", apperrors.ErrValidation)
	}
	return s.userRepo.GetTutorByCode(code)
}

// MyTutorCode возвращает код наставника текущего учителя
func (s *AuthService) MyTutorCode(teacherID uint) (string, error) {
	user, err := s.userRepo.GetByID(teacherID)
	if err != nil {
		return "", err
	}
	if !user.IsTeacher() {
		return "", fmt.Errorf("%w: only teachers have a tutor code", apperrors.ErrForbidden)
	}
	if user.TutorCode == nil || *user.TutorCode == "" {
		// Старые учетные записи могли быть созданы без кода
		code, err := generateTutorCode(s.userRepo)
		if err != nil {
			return "", err
		}
		user.TutorCode = &code
		if err := s.userRepo.Update(user); err != nil {
			return "", err
		}
	}
	return *user.TutorCode, nil
}

// LinkTutor привязывает ученика к учителю по коду наставника
func (s *AuthService) LinkTutor(studentID uint, tutorCode string) (*entity.User, error) {
	student, err := s.userRepo.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	if !student.IsStudent() {
		return nil, fmt.Errorf("%w: only students can link to a tutor", apperrors.ErrForbidden)
	}

	code := strings.ToUpper(strings.TrimSpace(tutorCode))
	if code == "" {
		return nil, fmt.Errorf("%w: tutor code is required", apperrors.ErrValidation)
	}

	tutor, err := s.userRepo.GetTutorByCode(code)
	if err != nil {
		if err == apperrors.ErrNotFound {
			return nil, fmt.Errorf("%w: tutor code not found", apperrors.ErrValidation)
		}
		return nil, err
	}

	student.TutorID = &tutor.ID
	if err := s.userRepo.Update(student); err != nil {
		return nil, err
	}
	return student, nil
}
