package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/classroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
	"github.com/yourusername/classroom-api/pkg/auth"
	"golang.org/x/crypto/bcrypt"
)

// ============================================================================
// Моки для AuthService
// ============================================================================

// MockUserRepo реализует repository.UserRepository
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(id uint) (*entity.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetByEmail(email string) (*entity.User, error) {
	args := m.Called(email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) GetTutorByCode(code string) (*entity.User, error) {
	args := m.Called(code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.User), args.Error(1)
}

func (m *MockUserRepo) TutorCodeExists(code string) (bool, error) {
	args := m.Called(code)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) ListStudentsByTutor(tutorID uint) ([]entity.User, error) {
	args := m.Called(tutorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.User), args.Error(1)
}

func (m *MockUserRepo) CountStudentsByTutor(tutorID uint) (int64, error) {
	args := m.Called(tutorID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepo) Update(user *entity.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func createTestAuthService(userRepo *MockUserRepo) *AuthService {
	jwtService, err := auth.NewJWTService("test-secret-key", 1)
	if err != nil {
		panic(err)
	}
	return NewAuthService(userRepo, jwtService)
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// ============================================================================
// Тесты для generateTutorCode
// ============================================================================

func TestGenerateTutorCode_Format(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockUserRepo.On("TutorCodeExists", mock.AnythingOfType("string")).Return(false, nil)

	code, err := generateTutorCode(mockUserRepo)

	require.NoError(t, err)
	assert.Len(t, code, tutorCodeLength)
	// Первый символ всегда буква
	assert.Contains(t, tutorCodeLetters, string(code[0]))
	// Похожие на цифры символы исключены из алфавита
	for _, forbidden := range "0O1IL" {
		assert.NotContains(t, code, string(forbidden))
	}
}

func TestGenerateTutorCode_RetriesOnCollision(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	// Первые два кода заняты, третий свободен
	mockUserRepo.On("TutorCodeExists", mock.AnythingOfType("string")).Return(true, nil).Twice()
	mockUserRepo.On("TutorCodeExists", mock.AnythingOfType("string")).Return(false, nil).Once()

	code, err := generateTutorCode(mockUserRepo)

	require.NoError(t, err)
	assert.Len(t, code, tutorCodeLength)
	mockUserRepo.AssertNumberOfCalls(t, "TutorCodeExists", 3)
}

// ============================================================================
// Тесты для Register
// ============================================================================

func TestAuthService_Register_TeacherGetsTutorCode(t *testing.T) {
	// Arrange
	mockUserRepo := new(MockUserRepo)
	mockUserRepo.On("GetByEmail", "teacher@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("TutorCodeExists", mock.AnythingOfType("string")).Return(false, nil)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)

	svc := createTestAuthService(mockUserRepo)

	// Act
	user, err := svc.Register(RegisterInput{
		Name:     "Anna",
		Email:    "Teacher@Example.com", // нормализуется в нижний регистр
		Password: "password123",
		Role:     entity.RoleTeacher,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "teacher@example.com", user.Email)
	require.NotNil(t, user.TutorCode, "Учитель получает код наставника")
	assert.Len(t, *user.TutorCode, tutorCodeLength)
	mockUserRepo.AssertExpectations(t)
}

func TestAuthService_Register_StudentLinksByCode(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockUserRepo.On("GetByEmail", "student@example.com").Return(nil, apperrors.ErrNotFound)
	// Код нормализуется в верхний регистр перед поиском
	mockUserRepo.On("GetTutorByCode", "ABC23456").Return(&entity.User{ID: 10, Role: entity.RoleTeacher}, nil)
	mockUserRepo.On("Create", mock.AnythingOfType("*entity.User")).Return(nil)

	svc := createTestAuthService(mockUserRepo)

	user, err := svc.Register(RegisterInput{
		Name:      "Bob",
		Email:     "student@example.com",
		Password:  "password123",
		Role:      entity.RoleStudent,
		TutorCode: " abc23456 ",
	})

	require.NoError(t, err)
	require.NotNil(t, user.TutorID)
	assert.Equal(t, uint(10), *user.TutorID)
	assert.Nil(t, user.TutorCode, "Ученику код наставника не выдается")
}

func TestAuthService_Register_UnknownTutorCode(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockUserRepo.On("GetByEmail", "student@example.com").Return(nil, apperrors.ErrNotFound)
	mockUserRepo.On("GetTutorByCode", "NOPE2345").Return(nil, apperrors.ErrNotFound)

	svc := createTestAuthService(mockUserRepo)

	_, err := svc.Register(RegisterInput{
		Name: "Bob", Email: "student@example.com", Password: "password123",
		Role: entity.RoleStudent, TutorCode: "NOPE2345",
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation, "Несуществующий код отклоняется")
	mockUserRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockUserRepo.On("GetByEmail", "taken@example.com").Return(&entity.User{ID: 1}, nil)

	svc := createTestAuthService(mockUserRepo)

	_, err := svc.Register(RegisterInput{
		Name: "Dup", Email: "taken@example.com", Password: "password123", Role: entity.RoleStudent,
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_Register_BadRole(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	svc := createTestAuthService(mockUserRepo)

	_, err := svc.Register(RegisterInput{
		Name: "X", Email: "x@example.com", Password: "password123", Role: "admin",
	})

	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

// ============================================================================
// Тесты для Login
// ============================================================================

func TestAuthService_Login_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockUserRepo.On("GetByEmail", "user@example.com").Return(&entity.User{
		ID:       1,
		Email:    "user@example.com",
		Password: hashPassword(t, "correct-password"),
		Role:     entity.RoleStudent,
		IsActive: true,
	}, nil)

	svc := createTestAuthService(mockUserRepo)

	user, token, err := svc.Login("user@example.com", "correct-password")

	require.NoError(t, err)
	assert.Equal(t, uint(1), user.ID)
	assert.NotEmpty(t, token, "Успешный вход возвращает JWT")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockUserRepo.On("GetByEmail", "user@example.com").Return(&entity.User{
		ID:       1,
		Email:    "user@example.com",
		Password: hashPassword(t, "correct-password"),
		IsActive: true,
	}, nil)

	svc := createTestAuthService(mockUserRepo)

	_, _, err := svc.Login("user@example.com", "wrong")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	// Текст не раскрывает, что именно неверно
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestAuthService_Login_UnknownEmailSameError(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockUserRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)

	svc := createTestAuthService(mockUserRepo)

	_, _, err := svc.Login("ghost@example.com", "whatever")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "invalid email or password")
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockUserRepo.On("GetByEmail", "old@example.com").Return(&entity.User{
		ID:       1,
		Email:    "old@example.com",
		Password: hashPassword(t, "password"),
		IsActive: false,
	}, nil)

	svc := createTestAuthService(mockUserRepo)

	_, _, err := svc.Login("old@example.com", "password")

	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.Contains(t, err.Error(), "deactivated")
}

// ============================================================================
// Тесты для LinkTutor
// ============================================================================

func TestAuthService_LinkTutor_Success(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockUserRepo.On("GetByID", uint(5)).Return(&entity.User{ID: 5, Role: entity.RoleStudent}, nil)
	mockUserRepo.On("GetTutorByCode", "ABCD2345").Return(&entity.User{ID: 10, Role: entity.RoleTeacher}, nil)
	mockUserRepo.On("Update", mock.AnythingOfType("*entity.User")).Return(nil)

	svc := createTestAuthService(mockUserRepo)

	student, err := svc.LinkTutor(5, "abcd2345")

	require.NoError(t, err)
	require.NotNil(t, student.TutorID)
	assert.Equal(t, uint(10), *student.TutorID)
}

func TestAuthService_LinkTutor_TeacherForbidden(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockUserRepo.On("GetByID", uint(10)).Return(&entity.User{ID: 10, Role: entity.RoleTeacher}, nil)

	svc := createTestAuthService(mockUserRepo)

	_, err := svc.LinkTutor(10, "ABCD2345")

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}
