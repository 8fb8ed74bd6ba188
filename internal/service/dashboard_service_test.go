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
// Моки для DashboardService
// ============================================================================

// MockPerformanceRepo реализует repository.PerformanceRepository
type MockPerformanceRepo struct {
	mock.Mock
}

func (m *MockPerformanceRepo) Create(record *entity.PerformanceRecord) error {
	args := m.Called(record)
	return args.Error(0)
}

func (m *MockPerformanceRepo) ListByStudent(studentID uint, limit int) ([]entity.PerformanceRecord, error) {
	args := m.Called(studentID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PerformanceRecord), args.Error(1)
}

func createTestDashboardService(
	userRepo *MockUserRepo,
	performanceRepo *MockPerformanceRepo,
) *DashboardService {
	return &DashboardService{
		userRepo:        userRepo,
		performanceRepo: performanceRepo,
		cacheRepo:       nil, // nil для этих тестов
		db:              nil,
	}
}

// percentages создает записи успеваемости, первая запись самая новая
func percentages(values ...float64) []entity.PerformanceRecord {
	records := make([]entity.PerformanceRecord, len(values))
	for i, v := range values {
		records[i] = entity.PerformanceRecord{StudentID: 1, Subject: "Math", Percentage: v}
	}
	return records
}

// ============================================================================
// Тесты для improvementTrend
// ============================================================================

func TestImprovementTrend(t *testing.T) {
	// Меньше двух записей: данных недостаточно
	assert.Equal(t, "insufficient_data", improvementTrend(percentages(80)))
	assert.Equal(t, "insufficient_data", improvementTrend(nil))

	// Свежие записи заметно лучше старых (порог +5)
	assert.Equal(t, "improving", improvementTrend(percentages(90, 90, 90, 60, 60, 60)))

	// Свежие заметно хуже
	assert.Equal(t, "declining", improvementTrend(percentages(50, 50, 50, 80, 80, 80)))

	// Разница в пределах 5 пунктов считается стабильной
	assert.Equal(t, "stable", improvementTrend(percentages(72, 70, 71, 70, 69, 70)))
}

// ============================================================================
// Тесты для GetMyPerformance
// ============================================================================

func TestDashboardService_GetMyPerformance(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockPerfRepo := new(MockPerformanceRepo)

	mockPerfRepo.On("ListByStudent", uint(1), 0).Return(percentages(90, 70, 50), nil)

	svc := createTestDashboardService(mockUserRepo, mockPerfRepo)

	perf, err := svc.GetMyPerformance(1)

	require.NoError(t, err)
	assert.Equal(t, 3, perf.TotalAssessments)
	assert.Equal(t, 70.0, perf.AveragePercentage)
	assert.Equal(t, 90.0, perf.BestScore)
	assert.Len(t, perf.RecentPerformance, 3)
}

func TestDashboardService_GetMyPerformance_NoRecords(t *testing.T) {
	mockUserRepo := new(MockUserRepo)
	mockPerfRepo := new(MockPerformanceRepo)

	mockPerfRepo.On("ListByStudent", uint(1), 0).Return([]entity.PerformanceRecord{}, nil)

	svc := createTestDashboardService(mockUserRepo, mockPerfRepo)

	perf, err := svc.GetMyPerformance(1)

	require.NoError(t, err)
	assert.Equal(t, 0, perf.TotalAssessments)
	assert.Equal(t, 0.0, perf.AveragePercentage, "Нет деления на ноль при пустой истории")
	assert.NotNil(t, perf.RecentPerformance)
}

// ============================================================================
// Тесты для GetStudentDiagnostic
// ============================================================================

func TestDashboardService_GetStudentDiagnostic(t *testing.T) {
	// Arrange: ученик привязан к учителю #10
	tutorID := uint(10)
	mockUserRepo := new(MockUserRepo)
	mockPerfRepo := new(MockPerformanceRepo)

	mockUserRepo.On("GetByID", uint(1)).Return(&entity.User{
		ID: 1, Name: "Bob", Role: entity.RoleStudent, TutorID: &tutorID,
	}, nil)

	records := []entity.PerformanceRecord{
		{StudentID: 1, Subject: "Math", Percentage: 95},
		{StudentID: 1, Subject: "Math", Percentage: 90},
		{StudentID: 1, Subject: "History", Percentage: 40},
		{StudentID: 1, Subject: "History", Percentage: 50},
	}
	mockPerfRepo.On("ListByStudent", uint(1), 0).Return(records, nil)

	svc := createTestDashboardService(mockUserRepo, mockPerfRepo)

	// Act
	report, err := svc.GetStudentDiagnostic(1, 10)

	// Assert: средний балл по Math >= 80 дает сильную сторону,
	// по History < 60 дает слабую
	require.NoError(t, err)
	assert.Equal(t, "Bob", report.StudentName)
	assert.Equal(t, 68.75, report.OverallPercentage)
	require.Len(t, report.Strengths, 1)
	assert.Contains(t, report.Strengths[0], "Math")
	require.Len(t, report.Weaknesses, 1)
	assert.Contains(t, report.Weaknesses[0], "History")
	assert.NotEmpty(t, report.Recommendations)
}

func TestDashboardService_GetStudentDiagnostic_NotLinked(t *testing.T) {
	otherTutor := uint(99)
	mockUserRepo := new(MockUserRepo)
	mockPerfRepo := new(MockPerformanceRepo)

	mockUserRepo.On("GetByID", uint(1)).Return(&entity.User{
		ID: 1, Role: entity.RoleStudent, TutorID: &otherTutor,
	}, nil)

	svc := createTestDashboardService(mockUserRepo, mockPerfRepo)

	_, err := svc.GetStudentDiagnostic(1, 10)

	assert.ErrorIs(t, err, apperrors.ErrForbidden, "Диагностика доступна только наставнику ученика")
	mockPerfRepo.AssertNotCalled(t, "ListByStudent", mock.Anything, mock.Anything)
}

func TestDashboardService_GetStudentDiagnostic_NoData(t *testing.T) {
	tutorID := uint(10)
	mockUserRepo := new(MockUserRepo)
	mockPerfRepo := new(MockPerformanceRepo)

	mockUserRepo.On("GetByID", uint(1)).Return(&entity.User{
		ID: 1, Role: entity.RoleStudent, TutorID: &tutorID,
	}, nil)
	mockPerfRepo.On("ListByStudent", uint(1), 0).Return([]entity.PerformanceRecord{}, nil)

	svc := createTestDashboardService(mockUserRepo, mockPerfRepo)

	_, err := svc.GetStudentDiagnostic(1, 10)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

// ============================================================================
// Тесты для rankPerformances (ранжирование учеников)
// ============================================================================

func TestRankPerformances_SortsBestFirst(t *testing.T) {
	performances := []StudentPerformance{
		{StudentID: 1, OverallPercentage: 55.5},
		{StudentID: 2, OverallPercentage: 91.0},
		{StudentID: 3, OverallPercentage: 70.25},
	}

	rankPerformances(performances)

	require.Len(t, performances, 3)
	assert.Equal(t, uint(2), performances[0].StudentID, "Лучший результат должен быть первым")
	assert.Equal(t, uint(3), performances[1].StudentID)
	assert.Equal(t, uint(1), performances[2].StudentID)
	for i, p := range performances {
		assert.Equal(t, i+1, p.Rank)
	}
}

func TestRankPerformances_Empty(t *testing.T) {
	performances := []StudentPerformance{}
	rankPerformances(performances)
	assert.Empty(t, performances)
}
