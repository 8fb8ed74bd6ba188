package service

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/domain/repository"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

const (
	leaderboardCacheKey = "dashboard:leaderboard"
	leaderboardCacheTTL = 2 * time.Minute
)

// TeacherOverview is the headline numbers of the teacher dashboard.
type TeacherOverview struct {
	TotalStudents               int64   `json:"total_students"`
	TotalQuizzes                int64   `json:"total_quizzes"`
	TotalAssignments            int64   `json:"total_assignments"`
	RecentQuizAttempts          int64   `json:"recent_quiz_attempts"`
	RecentAssignmentSubmissions int64   `json:"recent_assignment_submissions"`
	AveragePerformance          float64 `json:"average_performance"`
}

// StudentPerformance is one row of the per-student ranking.
type StudentPerformance struct {
	Rank                   int     `json:"rank"`
	StudentID              uint    `json:"student_id"`
	StudentName            string  `json:"student_name"`
	TotalQuizzes           int     `json:"total_quizzes"`
	TotalAssignments       int     `json:"total_assignments"`
	AverageQuizScore       float64 `json:"average_quiz_score"`
	AverageAssignmentScore float64 `json:"average_assignment_score"`
	OverallPercentage      float64 `json:"overall_percentage"`
}

// LeaderboardEntry is one row of the student leaderboard.
type LeaderboardEntry struct {
	Rank              int     `json:"rank"`
	StudentID         uint    `json:"student_id"`
	StudentName       string  `json:"student_name"`
	TotalScore        float64 `json:"total_score"`
	TotalAssessments  int     `json:"total_assessments"`
	AveragePercentage float64 `json:"average_percentage"`
}

// DiagnosticReport is the per-student diagnostic view for teachers.
type DiagnosticReport struct {
	StudentID         uint                       `json:"student_id"`
	StudentName       string                     `json:"student_name"`
	OverallPercentage float64                    `json:"overall_percentage"`
	Strengths         []string                   `json:"strengths"`
	Weaknesses        []string                   `json:"weaknesses"`
	Recommendations   []string                   `json:"recommendations"`
	RecentPerformance []entity.PerformanceRecord `json:"recent_performance"`
	ImprovementTrend  string                     `json:"improvement_trend"`
}

// MyPerformance is the student's own performance summary.
type MyPerformance struct {
	TotalAssessments  int                        `json:"total_assessments"`
	AveragePercentage float64                    `json:"average_percentage"`
	BestScore         float64                    `json:"best_score"`
	RecentPerformance []entity.PerformanceRecord `json:"recent_performance"`
}

// DashboardService собирает агрегированные данные для панелей
type DashboardService struct {
	userRepo        repository.UserRepository
	performanceRepo repository.PerformanceRepository
	cacheRepo       repository.CacheRepository
	db              *gorm.DB
}

// NewDashboardService создает новый сервис панелей
func NewDashboardService(
	userRepo repository.UserRepository,
	performanceRepo repository.PerformanceRepository,
	cacheRepo repository.CacheRepository,
	db *gorm.DB,
) *DashboardService {
	return &DashboardService{
		userRepo:        userRepo,
		performanceRepo: performanceRepo,
		cacheRepo:       cacheRepo,
		db:              db,
	}
}

// GetTeacherOverview возвращает сводку панели учителя
func (s *DashboardService) GetTeacherOverview(teacherID uint) (*TeacherOverview, error) {
	overview := &TeacherOverview{}

	var err error
	if overview.TotalStudents, err = s.userRepo.CountStudentsByTutor(teacherID); err != nil {
		return nil, err
	}
	if err = s.db.Model(&entity.Quiz{}).
		Where("creator_id = ? AND is_active = ?", teacherID, true).
		Count(&overview.TotalQuizzes).Error; err != nil {
		return nil, err
	}
	if err = s.db.Model(&entity.Assignment{}).
		Where("creator_id = ? AND is_active = ?", teacherID, true).
		Count(&overview.TotalAssignments).Error; err != nil {
		return nil, err
	}
	if err = s.db.Model(&entity.QuizAttempt{}).
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quizzes.creator_id = ? AND quiz_attempts.completed_at IS NOT NULL", teacherID).
		Count(&overview.RecentQuizAttempts).Error; err != nil {
		return nil, err
	}
	if err = s.db.Model(&entity.AssignmentSubmission{}).
		Joins("JOIN assignments ON assignments.id = assignment_submissions.assignment_id").
		Where("assignments.creator_id = ?", teacherID).
		Count(&overview.RecentAssignmentSubmissions).Error; err != nil {
		return nil, err
	}

	var avg struct{ AvgPct float64 }
	err = s.db.Table("performance_records").
		Joins("JOIN users ON users.id = performance_records.student_id").
		Select("COALESCE(AVG(performance_records.percentage), 0) as avg_pct").
		Where("users.tutor_id = ?", teacherID).
		Scan(&avg).Error
	if err != nil {
		return nil, err
	}
	overview.AveragePerformance = math.Round(avg.AvgPct*100) / 100

	return overview, nil
}

// GetStudentPerformances возвращает рейтинг учеников наставника
func (s *DashboardService) GetStudentPerformances(teacherID uint) ([]StudentPerformance, error) {
	students, err := s.userRepo.ListStudentsByTutor(teacherID)
	if err != nil {
		return nil, err
	}

	performances := make([]StudentPerformance, 0, len(students))
	for _, student := range students {
		var stats struct {
			QuizCount       int
			AssignmentCount int
			AvgQuizPct      float64
			AvgAssignPct    float64
			AvgPct          float64
		}
		err := s.db.Table("performance_records").
			Select(`
				COUNT(*) FILTER (WHERE assessment_type = 'quiz') as quiz_count,
				COUNT(*) FILTER (WHERE assessment_type = 'assignment') as assignment_count,
				COALESCE(AVG(score) FILTER (WHERE assessment_type = 'quiz'), 0) as avg_quiz_pct,
				COALESCE(AVG(score) FILTER (WHERE assessment_type = 'assignment'), 0) as avg_assign_pct,
				COALESCE(AVG(percentage), 0) as avg_pct
			`).
			Where("student_id = ?", student.ID).
			Scan(&stats).Error
		if err != nil {
			return nil, err
		}

		performances = append(performances, StudentPerformance{
			StudentID:              student.ID,
			StudentName:            student.Name,
			TotalQuizzes:           stats.QuizCount,
			TotalAssignments:       stats.AssignmentCount,
			AverageQuizScore:       math.Round(stats.AvgQuizPct*100) / 100,
			AverageAssignmentScore: math.Round(stats.AvgAssignPct*100) / 100,
			OverallPercentage:      math.Round(stats.AvgPct*100) / 100,
		})
	}

	rankPerformances(performances)

	return performances, nil
}

// rankPerformances sorts by overall percentage, best first, and assigns
// 1-based ranks.
func rankPerformances(performances []StudentPerformance) {
	sort.Slice(performances, func(i, j int) bool {
		return performances[i].OverallPercentage > performances[j].OverallPercentage
	})
	for i := range performances {
		performances[i].Rank = i + 1
	}
}

// GetLeaderboard возвращает лидерборд учеников. Результат кешируется в Redis
// на короткое время, так как запрос агрегирует всю таблицу успеваемости.
func (s *DashboardService) GetLeaderboard() ([]LeaderboardEntry, error) {
	var cached []LeaderboardEntry
	if err := s.cacheRepo.GetJSON(leaderboardCacheKey, &cached); err == nil {
		return cached, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("[DashboardService] Leaderboard cache read failed: %v", err)
	}

	type leaderboardRow struct {
		StudentID        uint
		StudentName      string
		TotalScore       float64
		TotalAssessments int
		AvgPercentage    float64
	}
	var rows []leaderboardRow
	err := s.db.Table("performance_records").
		Joins("JOIN users ON users.id = performance_records.student_id").
		Select(`
			performance_records.student_id,
			users.name as student_name,
			SUM(performance_records.score) as total_score,
			COUNT(performance_records.id) as total_assessments,
			AVG(performance_records.percentage) as avg_percentage
		`).
		Where("users.is_active = ?", true).
		Group("performance_records.student_id, users.name").
		Order("avg_percentage DESC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	leaderboard := make([]LeaderboardEntry, 0, len(rows))
	for i, row := range rows {
		leaderboard = append(leaderboard, LeaderboardEntry{
			Rank:              i + 1,
			StudentID:         row.StudentID,
			StudentName:       row.StudentName,
			TotalScore:        row.TotalScore,
			TotalAssessments:  row.TotalAssessments,
			AveragePercentage: math.Round(row.AvgPercentage*100) / 100,
		})
	}

	if err := s.cacheRepo.SetJSON(leaderboardCacheKey, leaderboard, leaderboardCacheTTL); err != nil {
		log.Printf("[DashboardService] Leaderboard cache write failed: %v", err)
	}

	return leaderboard, nil
}

// GetStudentDiagnostic строит диагностический отчет по ученику
func (s *DashboardService) GetStudentDiagnostic(studentID, teacherID uint) (*DiagnosticReport, error) {
	student, err := s.userRepo.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	if !student.IsStudent() {
		return nil, fmt.Errorf("%w: user #%d is not a student", apperrors.ErrValidation, studentID)
	}
	if student.TutorID == nil || *student.TutorID != teacherID {
		return nil, fmt.Errorf("%w: student is not linked to you", apperrors.ErrForbidden)
	}

	records, err := s.performanceRepo.ListByStudent(studentID, 0)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no performance data for this student", apperrors.ErrNotFound)
	}

	overall := 0.0
	bySubject := make(map[string][]float64)
	for _, record := range records {
		overall += record.Percentage
		bySubject[record.Subject] = append(bySubject[record.Subject], record.Percentage)
	}
	overall = overall / float64(len(records))

	strengths := []string{}
	weaknesses := []string{}
	for subject, percentages := range bySubject {
		sum := 0.0
		for _, p := range percentages {
			sum += p
		}
		avg := sum / float64(len(percentages))
		if avg >= 80 {
			strengths = append(strengths, fmt.Sprintf("Strong performance in %s", subject))
		} else if avg < 60 {
			weaknesses = append(weaknesses, fmt.Sprintf("Needs improvement in %s", subject))
		}
	}

	trend := improvementTrend(records)

	recommendations := []string{}
	if len(weaknesses) > 0 {
		recommendations = append(recommendations, "Focus on improving weak areas through additional practice")
	}
	if overall < 70 {
		recommendations = append(recommendations, "Consider seeking additional help or tutoring")
	}
	if trend == "declining" {
		recommendations = append(recommendations, "Review study habits and consider different learning strategies")
	}
	if len(recommendations) == 0 {
		recommendations = append(recommendations, "Continue current study methods as they are working well")
	}

	recent := records
	if len(recent) > 10 {
		recent = recent[:10]
	}

	return &DiagnosticReport{
		StudentID:         student.ID,
		StudentName:       student.Name,
		OverallPercentage: math.Round(overall*100) / 100,
		Strengths:         strengths,
		Weaknesses:        weaknesses,
		Recommendations:   recommendations,
		RecentPerformance: recent,
		ImprovementTrend:  trend,
	}, nil
}

// GetMyPerformance возвращает сводку успеваемости текущего ученика
func (s *DashboardService) GetMyPerformance(studentID uint) (*MyPerformance, error) {
	records, err := s.performanceRepo.ListByStudent(studentID, 0)
	if err != nil {
		return nil, err
	}

	perf := &MyPerformance{
		TotalAssessments:  len(records),
		RecentPerformance: []entity.PerformanceRecord{},
	}
	if len(records) == 0 {
		return perf, nil
	}

	sum := 0.0
	best := 0.0
	for _, record := range records {
		sum += record.Percentage
		if record.Percentage > best {
			best = record.Percentage
		}
	}
	perf.AveragePercentage = math.Round(sum/float64(len(records))*100) / 100
	perf.BestScore = math.Round(best*100) / 100

	recent := records
	if len(recent) > 5 {
		recent = recent[:5]
	}
	perf.RecentPerformance = recent

	return perf, nil
}

// improvementTrend сравнивает последние записи со старыми.
// Records are assumed newest first.
func improvementTrend(records []entity.PerformanceRecord) string {
	if len(records) < 2 {
		return "insufficient_data"
	}

	window := func(recs []entity.PerformanceRecord) float64 {
		n := len(recs)
		if n > 3 {
			n = 3
		}
		sum := 0.0
		for _, r := range recs[:n] {
			sum += r.Percentage
		}
		return sum / float64(n)
	}

	recent := window(records)
	reversed := make([]entity.PerformanceRecord, len(records))
	for i, r := range records {
		reversed[len(records)-1-i] = r
	}
	older := window(reversed)

	switch {
	case recent > older+5:
		return "improving"
	case recent < older-5:
		return "declining"
	default:
		return "stable"
	}
}
