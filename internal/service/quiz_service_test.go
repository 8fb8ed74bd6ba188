package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/classroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// ============================================================================
// Моки для QuizService
// ============================================================================

// MockQuestionRepo реализует repository.QuestionRepository
type MockQuestionRepo struct {
	mock.Mock
}

func (m *MockQuestionRepo) CreateBatch(questions []entity.Question) error {
	args := m.Called(questions)
	return args.Error(0)
}

func (m *MockQuestionRepo) GetByID(id uint) (*entity.Question, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) GetByQuizID(quizID uint) ([]entity.Question, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Question), args.Error(1)
}

func (m *MockQuestionRepo) Update(question *entity.Question) error {
	args := m.Called(question)
	return args.Error(0)
}

func (m *MockQuestionRepo) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func createTestQuizService(
	quizRepo *MockQuizRepoForAttempts,
	questionRepo *MockQuestionRepo,
) *QuizService {
	// Оповещение учеников уходит в фоне; пустой список делает его no-op
	userRepo := new(MockUserRepo)
	userRepo.On("ListStudentsByTutor", mock.Anything).Return([]entity.User{}, nil).Maybe()

	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		userRepo:     userRepo,
		emailService: &NoopEmailService{},
	}
}

// ============================================================================
// Тесты для buildQuestion (валидация вопросов)
// ============================================================================

func TestBuildQuestion_MultipleChoice(t *testing.T) {
	question, err := buildQuestion(QuestionInput{
		Text:          "Pick one",
		Type:          entity.QuestionTypeMultipleChoice,
		Options:       []string{"Paris", "London"},
		CorrectAnswer: "paris", // регистр не важен
		Points:        1,
	})

	require.NoError(t, err)
	assert.Equal(t, "paris", question.CorrectAnswer)
	assert.Len(t, question.Options, 2)
}

func TestBuildQuestion_MultipleChoice_Invalid(t *testing.T) {
	// Меньше двух вариантов
	_, err := buildQuestion(QuestionInput{
		Text: "Pick one", Type: entity.QuestionTypeMultipleChoice,
		Options: []string{"only"}, CorrectAnswer: "only", Points: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	// Правильный ответ не входит в варианты
	_, err = buildQuestion(QuestionInput{
		Text: "Pick one", Type: entity.QuestionTypeMultipleChoice,
		Options: []string{"a", "b"}, CorrectAnswer: "c", Points: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBuildQuestion_TrueFalse_ForcesOptions(t *testing.T) {
	question, err := buildQuestion(QuestionInput{
		Text: "Earth is round", Type: entity.QuestionTypeTrueFalse,
		Options: []string{"junk"}, CorrectAnswer: "True", Points: 1,
	})

	require.NoError(t, err)
	// Варианты всегда перезаписываются на true/false
	assert.Equal(t, entity.StringArray{"true", "false"}, question.Options)

	_, err = buildQuestion(QuestionInput{
		Text: "Earth is round", Type: entity.QuestionTypeTrueFalse,
		CorrectAnswer: "maybe", Points: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBuildQuestion_ShortAnswer_NeedsAnswer(t *testing.T) {
	_, err := buildQuestion(QuestionInput{
		Text: "Capital of France", Type: entity.QuestionTypeShortAnswer,
		CorrectAnswer: "  ", Points: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestBuildQuestion_EssayClearsAnswer(t *testing.T) {
	question, err := buildQuestion(QuestionInput{
		Text: "Explain gravity", Type: entity.QuestionTypeEssay,
		CorrectAnswer: "should be ignored", Points: 5,
	})

	require.NoError(t, err)
	assert.Empty(t, question.CorrectAnswer, "У эссе нет эталонного ответа")
}

func TestBuildQuestion_UnknownTypeAndBadPoints(t *testing.T) {
	_, err := buildQuestion(QuestionInput{
		Text: "?", Type: "matching", CorrectAnswer: "x", Points: 1,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = buildQuestion(QuestionInput{
		Text: "?", Type: entity.QuestionTypeShortAnswer, CorrectAnswer: "x", Points: 0,
	})
	assert.ErrorIs(t, err, apperrors.ErrValidation, "Баллы должны быть положительными")
}

// ============================================================================
// Тесты для QuizService
// ============================================================================

func TestQuizService_CreateQuiz_Success(t *testing.T) {
	// Arrange
	mockQuizRepo := new(MockQuizRepoForAttempts)
	mockQuestionRepo := new(MockQuestionRepo)

	mockQuizRepo.On("Create", mock.AnythingOfType("*entity.Quiz")).Return(nil)

	svc := createTestQuizService(mockQuizRepo, mockQuestionRepo)

	// Act
	quiz, err := svc.CreateQuiz(10, CreateQuizInput{
		Title:        "Algebra basics",
		Subject:      "Math",
		PassingScore: 60,
		Questions: []QuestionInput{
			{Text: "2+2?", Type: entity.QuestionTypeShortAnswer, CorrectAnswer: "4", Points: 1},
		},
	})

	// Assert
	require.NoError(t, err)
	assert.True(t, quiz.IsActive, "Новая викторина сразу активна")
	assert.Equal(t, uint(10), quiz.CreatorID)
	assert.Len(t, quiz.Questions, 1)
	mockQuizRepo.AssertExpectations(t)
}

func TestQuizService_CreateQuiz_InvalidQuestionRejected(t *testing.T) {
	mockQuizRepo := new(MockQuizRepoForAttempts)
	mockQuestionRepo := new(MockQuestionRepo)

	svc := createTestQuizService(mockQuizRepo, mockQuestionRepo)

	_, err := svc.CreateQuiz(10, CreateQuizInput{
		Title:        "Broken",
		Subject:      "Math",
		PassingScore: 60,
		Questions: []QuestionInput{
			{Text: "bad", Type: entity.QuestionTypeMultipleChoice, Options: []string{"a"}, CorrectAnswer: "a", Points: 1},
		},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	mockQuizRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestQuizService_DeleteQuiz_RefusedWithAttempts(t *testing.T) {
	// Викторину с попытками удалить нельзя, только деактивировать
	mockQuizRepo := new(MockQuizRepoForAttempts)
	mockQuestionRepo := new(MockQuestionRepo)

	mockQuizRepo.On("GetByID", uint(1)).Return(&entity.Quiz{ID: 1, CreatorID: 10}, nil)
	mockQuizRepo.On("HasAttempts", uint(1)).Return(true, nil)

	svc := createTestQuizService(mockQuizRepo, mockQuestionRepo)

	err := svc.DeleteQuiz(1, 10)

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	mockQuizRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestQuizService_DeleteQuestion_FrozenWithAttempts(t *testing.T) {
	mockQuizRepo := new(MockQuizRepoForAttempts)
	mockQuestionRepo := new(MockQuestionRepo)

	mockQuestionRepo.On("GetByID", uint(5)).Return(&entity.Question{ID: 5, QuizID: 1}, nil)
	mockQuizRepo.On("GetByID", uint(1)).Return(&entity.Quiz{ID: 1, CreatorID: 10}, nil)
	mockQuizRepo.On("HasAttempts", uint(1)).Return(true, nil)

	svc := createTestQuizService(mockQuizRepo, mockQuestionRepo)

	err := svc.DeleteQuestion(5, 10)

	assert.ErrorIs(t, err, apperrors.ErrConflict, "Вопросы заморожены после первой попытки")
	mockQuestionRepo.AssertNotCalled(t, "Delete", mock.Anything)
}

func TestQuizService_UpdateQuiz_OwnerOnly(t *testing.T) {
	mockQuizRepo := new(MockQuizRepoForAttempts)
	mockQuestionRepo := new(MockQuestionRepo)

	mockQuizRepo.On("GetByID", uint(1)).Return(&entity.Quiz{ID: 1, CreatorID: 10}, nil)

	svc := createTestQuizService(mockQuizRepo, mockQuestionRepo)

	title := "New title"
	_, err := svc.UpdateQuiz(1, 99, UpdateQuizInput{Title: &title})

	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	mockQuizRepo.AssertNotCalled(t, "Update", mock.Anything)
}

func TestQuizService_GetQuizForStudent_HidesInactive(t *testing.T) {
	mockQuizRepo := new(MockQuizRepoForAttempts)
	mockQuestionRepo := new(MockQuestionRepo)

	mockQuizRepo.On("GetWithQuestions", uint(1)).Return(&entity.Quiz{ID: 1, IsActive: false}, nil)

	svc := createTestQuizService(mockQuizRepo, mockQuestionRepo)

	_, err := svc.GetQuizForStudent(1)

	assert.ErrorIs(t, err, apperrors.ErrNotFound, "Неактивная викторина невидима для учеников")
}
