package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/domain/repository"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// ============================================================================
// Моки для AttemptService
// ============================================================================

// MockAttemptRepo реализует repository.AttemptRepository
type MockAttemptRepo struct {
	mock.Mock
}

func (m *MockAttemptRepo) Create(attempt *entity.QuizAttempt) error {
	args := m.Called(attempt)
	return args.Error(0)
}

func (m *MockAttemptRepo) GetByID(id uint) (*entity.QuizAttempt, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepo) GetOpenAttempt(quizID, studentID uint) (*entity.QuizAttempt, error) {
	args := m.Called(quizID, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepo) ListByQuiz(quizID uint) ([]entity.QuizAttempt, error) {
	args := m.Called(quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizAttempt), args.Error(1)
}

func (m *MockAttemptRepo) ListCompletedByStudent(studentID uint) ([]entity.QuizAttempt, error) {
	args := m.Called(studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.QuizAttempt), args.Error(1)
}

// MockQuizRepoForAttempts реализует repository.QuizRepository
type MockQuizRepoForAttempts struct {
	mock.Mock
}

func (m *MockQuizRepoForAttempts) Create(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizRepoForAttempts) GetByID(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepoForAttempts) GetWithQuestions(id uint) (*entity.Quiz, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Quiz), args.Error(1)
}

func (m *MockQuizRepoForAttempts) ListByCreator(creatorID uint, activeOnly bool) ([]entity.Quiz, error) {
	args := m.Called(creatorID, activeOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizRepoForAttempts) ListActive() ([]entity.Quiz, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Quiz), args.Error(1)
}

func (m *MockQuizRepoForAttempts) Update(quiz *entity.Quiz) error {
	args := m.Called(quiz)
	return args.Error(0)
}

func (m *MockQuizRepoForAttempts) SetActive(quizID uint, active bool) error {
	args := m.Called(quizID, active)
	return args.Error(0)
}

func (m *MockQuizRepoForAttempts) HasAttempts(quizID uint) (bool, error) {
	args := m.Called(quizID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuizRepoForAttempts) Delete(id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func createTestAttemptService(
	attemptRepo *MockAttemptRepo,
	quizRepo *MockQuizRepoForAttempts,
) *AttemptService {
	return &AttemptService{
		attemptRepo:     attemptRepo,
		quizRepo:        quizRepo,
		performanceRepo: nil, // nil для этих тестов
		userRepo:        nil,
		emailService:    &NoopEmailService{},
		db:              nil,
	}
}

func testQuestions() []entity.Question {
	return []entity.Question{
		{ID: 1, QuizID: 1, Text: "Capital of France?", Type: entity.QuestionTypeShortAnswer, CorrectAnswer: "a", Points: 1},
		{ID: 2, QuizID: 1, Text: "Earth is round", Type: entity.QuestionTypeTrueFalse, CorrectAnswer: "true", Points: 2},
	}
}

// ============================================================================
// Тесты для gradeAnswers (подсчет баллов)
// ============================================================================

func TestGradeAnswers_AllCorrect_CaseInsensitive(t *testing.T) {
	now := time.Now().UTC()

	// Ответы отличаются регистром от эталонных
	graded := gradeAnswers(10, testQuestions(), []AnswerInput{
		{QuestionID: 1, Answer: "A"},
		{QuestionID: 2, Answer: "True"},
	}, now)

	assert.Equal(t, 3.0, graded.totalScore, "Оба ответа верны: 1+2 балла")
	assert.Equal(t, 3.0, graded.totalPossible)
	assert.Equal(t, 0, graded.pendingReview)
	assert.Len(t, graded.submissions, 2)
	assert.True(t, graded.submissions[0].IsCorrect)
	assert.True(t, graded.submissions[1].IsCorrect)
	assert.Equal(t, 100.0, scorePercentage(graded.totalScore, graded.totalPossible))
}

func TestGradeAnswers_PartiallyCorrect(t *testing.T) {
	now := time.Now().UTC()

	graded := gradeAnswers(10, testQuestions(), []AnswerInput{
		{QuestionID: 1, Answer: "B"},
		{QuestionID: 2, Answer: "true"},
	}, now)

	assert.Equal(t, 2.0, graded.totalScore, "Верен только второй ответ")
	assert.Equal(t, 3.0, graded.totalPossible)
	assert.False(t, graded.submissions[0].IsCorrect)
	assert.Equal(t, 0.0, graded.submissions[0].PointsEarned, "Частичных баллов нет")
	assert.True(t, graded.submissions[1].IsCorrect)

	// 2/3 = 66.666... округляется до 66.67
	assert.Equal(t, 66.67, scorePercentage(graded.totalScore, graded.totalPossible))
}

func TestGradeAnswers_AllWrong(t *testing.T) {
	now := time.Now().UTC()

	graded := gradeAnswers(10, testQuestions(), []AnswerInput{
		{QuestionID: 1, Answer: "B"},
		{QuestionID: 2, Answer: "false"},
	}, now)

	assert.Equal(t, 0.0, graded.totalScore)
	assert.Equal(t, 3.0, graded.totalPossible)
	assert.Equal(t, 0.0, scorePercentage(graded.totalScore, graded.totalPossible))
}

func TestGradeAnswers_EmptySubmission(t *testing.T) {
	// Пустой список ответов: нет деления на ноль, процент равен нулю
	graded := gradeAnswers(10, testQuestions(), nil, time.Now().UTC())

	assert.Empty(t, graded.submissions)
	assert.Equal(t, 0.0, graded.totalPossible)
	assert.Equal(t, 0.0, scorePercentage(graded.totalScore, graded.totalPossible))
}

func TestGradeAnswers_UnknownQuestionSkipped(t *testing.T) {
	now := time.Now().UTC()

	// Вопрос 999 не принадлежит викторине и молча пропускается
	graded := gradeAnswers(10, testQuestions(), []AnswerInput{
		{QuestionID: 999, Answer: "whatever"},
		{QuestionID: 1, Answer: "a"},
	}, now)

	assert.Len(t, graded.submissions, 1)
	assert.Equal(t, uint(1), graded.submissions[0].QuestionID)
	assert.Equal(t, 1.0, graded.totalScore)
	assert.Equal(t, 1.0, graded.totalPossible, "Пропущенный вопрос не попадает в знаменатель")
}

func TestGradeAnswers_DuplicateAnswerFirstWins(t *testing.T) {
	now := time.Now().UTC()

	graded := gradeAnswers(10, testQuestions(), []AnswerInput{
		{QuestionID: 1, Answer: "a"},
		{QuestionID: 1, Answer: "wrong"},
	}, now)

	assert.Len(t, graded.submissions, 1, "Повторный ответ на тот же вопрос игнорируется")
	assert.True(t, graded.submissions[0].IsCorrect, "Засчитан первый ответ")
	assert.Equal(t, 1.0, graded.totalScore)
	assert.Equal(t, 1.0, graded.totalPossible)
}

func TestGradeAnswers_EssayRequiresReview(t *testing.T) {
	now := time.Now().UTC()
	questions := append(testQuestions(), entity.Question{
		ID: 3, QuizID: 1, Text: "Explain photosynthesis", Type: entity.QuestionTypeEssay, Points: 5,
	})

	graded := gradeAnswers(10, questions, []AnswerInput{
		{QuestionID: 1, Answer: "a"},
		{QuestionID: 3, Answer: "Plants convert light into energy..."},
	}, now)

	require.Len(t, graded.submissions, 2)
	essay := graded.submissions[1]
	assert.True(t, essay.RequiresReview, "Эссе уходит на ручную проверку")
	assert.False(t, essay.IsCorrect)
	assert.Equal(t, 0.0, essay.PointsEarned)
	assert.Equal(t, 1, graded.pendingReview)

	// Вес эссе не учитывается в максимуме: 1/1, а не 1/6
	assert.Equal(t, 1.0, graded.totalPossible)
	assert.Equal(t, 100.0, scorePercentage(graded.totalScore, graded.totalPossible))
}

func TestScorePercentage_Boundary(t *testing.T) {
	// Ровно проходной балл считается сдачей: percentage >= passing_score
	quiz := entity.Quiz{PassingScore: 60}
	pct := scorePercentage(3, 5)
	assert.Equal(t, 60.0, pct)
	assert.True(t, pct >= quiz.PassingScore)
}

func TestPerformanceRecommendation_Thresholds(t *testing.T) {
	assert.Contains(t, performanceRecommendation("Math", 95), "Excellent")
	assert.Contains(t, performanceRecommendation("Math", 90), "Excellent")
	assert.Contains(t, performanceRecommendation("Math", 75), "Good progress")
	assert.Contains(t, performanceRecommendation("Math", 40), "Keep working")
}

// ============================================================================
// Тесты для StartAttempt
// ============================================================================

func TestAttemptService_StartAttempt_NewAttempt(t *testing.T) {
	// Arrange
	mockAttemptRepo := new(MockAttemptRepo)
	mockQuizRepo := new(MockQuizRepoForAttempts)

	mockQuizRepo.On("GetByID", uint(1)).Return(&entity.Quiz{ID: 1, IsActive: true}, nil)
	mockAttemptRepo.On("GetOpenAttempt", uint(1), uint(42)).Return(nil, apperrors.ErrNotFound)
	mockAttemptRepo.On("Create", mock.AnythingOfType("*entity.QuizAttempt")).Return(nil)

	svc := createTestAttemptService(mockAttemptRepo, mockQuizRepo)

	// Act
	attempt, resumed, err := svc.StartAttempt(1, 42)

	// Assert
	require.NoError(t, err)
	assert.False(t, resumed)
	assert.Equal(t, uint(1), attempt.QuizID)
	assert.Equal(t, uint(42), attempt.StudentID)
	assert.False(t, attempt.StartedAt.IsZero())
	mockAttemptRepo.AssertExpectations(t)
}

func TestAttemptService_StartAttempt_ResumesOpenAttempt(t *testing.T) {
	// Arrange: у ученика уже есть незавершенная попытка
	mockAttemptRepo := new(MockAttemptRepo)
	mockQuizRepo := new(MockQuizRepoForAttempts)

	existing := &entity.QuizAttempt{ID: 7, QuizID: 1, StudentID: 42}
	mockQuizRepo.On("GetByID", uint(1)).Return(&entity.Quiz{ID: 1, IsActive: true}, nil)
	mockAttemptRepo.On("GetOpenAttempt", uint(1), uint(42)).Return(existing, nil)

	svc := createTestAttemptService(mockAttemptRepo, mockQuizRepo)

	// Act
	attempt, resumed, err := svc.StartAttempt(1, 42)

	// Assert: возвращается существующая попытка, новая не создается
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, uint(7), attempt.ID)
	mockAttemptRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAttemptService_StartAttempt_InactiveQuiz(t *testing.T) {
	mockAttemptRepo := new(MockAttemptRepo)
	mockQuizRepo := new(MockQuizRepoForAttempts)

	mockQuizRepo.On("GetByID", uint(1)).Return(&entity.Quiz{ID: 1, IsActive: false}, nil)

	svc := createTestAttemptService(mockAttemptRepo, mockQuizRepo)

	_, _, err := svc.StartAttempt(1, 42)

	// Неактивная викторина для ученика неотличима от несуществующей
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound, "Неактивная викторина должна быть невидима для ученика")
	mockAttemptRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAttemptService_StartAttempt_LosesCreateRace(t *testing.T) {
	// Arrange: вставка проигрывает гонку конкурентному start, частичный
	// уникальный индекс возвращает нарушение уникальности
	mockAttemptRepo := new(MockAttemptRepo)
	mockQuizRepo := new(MockQuizRepoForAttempts)

	winner := &entity.QuizAttempt{ID: 9, QuizID: 1, StudentID: 42}
	mockQuizRepo.On("GetByID", uint(1)).Return(&entity.Quiz{ID: 1, IsActive: true}, nil)
	mockAttemptRepo.On("GetOpenAttempt", uint(1), uint(42)).Return(nil, apperrors.ErrNotFound).Once()
	mockAttemptRepo.On("Create", mock.AnythingOfType("*entity.QuizAttempt")).Return(repository.ErrDuplicateActiveAttempt)
	mockAttemptRepo.On("GetOpenAttempt", uint(1), uint(42)).Return(winner, nil).Once()

	svc := createTestAttemptService(mockAttemptRepo, mockQuizRepo)

	// Act
	attempt, resumed, err := svc.StartAttempt(1, 42)

	// Assert: проигравший получает попытку победителя
	require.NoError(t, err)
	assert.True(t, resumed)
	assert.Equal(t, uint(9), attempt.ID)
	mockAttemptRepo.AssertExpectations(t)
}

// ============================================================================
// Тесты для SubmitAttempt (до транзакции) и доступа к попыткам
// ============================================================================

func TestAttemptService_SubmitAttempt_NoOpenAttempt(t *testing.T) {
	mockAttemptRepo := new(MockAttemptRepo)
	mockQuizRepo := new(MockQuizRepoForAttempts)

	mockAttemptRepo.On("GetOpenAttempt", uint(1), uint(42)).Return(nil, apperrors.ErrNotFound)

	svc := createTestAttemptService(mockAttemptRepo, mockQuizRepo)

	_, err := svc.SubmitAttempt(1, 42, []AnswerInput{{QuestionID: 1, Answer: "a"}})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.Contains(t, err.Error(), "no active quiz attempt found")
}

func TestAttemptService_GetAttempt_StudentOwnOnly(t *testing.T) {
	mockAttemptRepo := new(MockAttemptRepo)
	mockQuizRepo := new(MockQuizRepoForAttempts)

	mockAttemptRepo.On("GetByID", uint(5)).Return(&entity.QuizAttempt{ID: 5, QuizID: 1, StudentID: 42}, nil)

	svc := createTestAttemptService(mockAttemptRepo, mockQuizRepo)

	// Чужая попытка недоступна ученику
	_, err := svc.GetAttempt(5, 99, entity.RoleStudent)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Своя попытка доступна
	attempt, err := svc.GetAttempt(5, 42, entity.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, uint(5), attempt.ID)
}

func TestAttemptService_ListQuizAttempts_CreatorOnly(t *testing.T) {
	mockAttemptRepo := new(MockAttemptRepo)
	mockQuizRepo := new(MockQuizRepoForAttempts)

	mockQuizRepo.On("GetByID", uint(1)).Return(&entity.Quiz{ID: 1, CreatorID: 10}, nil)

	svc := createTestAttemptService(mockAttemptRepo, mockQuizRepo)

	_, err := svc.ListQuizAttempts(1, 99)
	assert.ErrorIs(t, err, apperrors.ErrForbidden, "Попытки видит только автор викторины")
	mockAttemptRepo.AssertNotCalled(t, "ListByQuiz", mock.Anything)
}

// ============================================================================
// Финализация попытки (вставка сдач + защищенный UPDATE + запись успеваемости)
// идет одной транзакцией gorm.DB, как и агрегаты аналитики с FILTER-запросами.
// Эти ветки требуют интеграционных тестов с реальным PostgreSQL
// (testcontainers), юнит-тесты покрывают чистую логику подсчета выше.
// ============================================================================
