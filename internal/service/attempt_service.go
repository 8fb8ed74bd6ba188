package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/domain/repository"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// AnswerInput is a single answer in a submission payload.
type AnswerInput struct {
	QuestionID uint
	Answer     string
}

// AttemptResult is what the student sees right after grading.
type AttemptResult struct {
	AttemptID     uint    `json:"attempt_id"`
	Score         float64 `json:"score"`
	MaxScore      float64 `json:"max_score"`
	Percentage    float64 `json:"percentage"`
	IsPassed      bool    `json:"is_passed"`
	TimeTakenSec  int     `json:"time_taken"`
	PendingReview int     `json:"pending_review"`
}

// QuestionAnalytics is the per-question slice of quiz analytics.
type QuestionAnalytics struct {
	QuestionID    uint    `json:"question_id"`
	QuestionText  string  `json:"question_text"`
	SuccessRate   float64 `json:"success_rate"`
	TotalAttempts int     `json:"total_attempts"`
}

// QuizAnalytics aggregates attempt outcomes for a quiz.
type QuizAnalytics struct {
	QuizID            uint                `json:"quiz_id"`
	TotalAttempts     int                 `json:"total_attempts"`
	CompletedAttempts int                 `json:"completed_attempts"`
	AverageScore      float64             `json:"average_score"`
	PassRate          float64             `json:"pass_rate"`
	AverageTime       float64             `json:"average_time"`
	QuestionAnalytics []QuestionAnalytics `json:"question_analytics"`
}

// AttemptService runs the quiz taking and grading flow.
type AttemptService struct {
	attemptRepo     repository.AttemptRepository
	quizRepo        repository.QuizRepository
	performanceRepo repository.PerformanceRepository
	userRepo        repository.UserRepository
	emailService    EmailService
	db              *gorm.DB
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	quizRepo repository.QuizRepository,
	performanceRepo repository.PerformanceRepository,
	userRepo repository.UserRepository,
	emailService EmailService,
	db *gorm.DB,
) *AttemptService {
	return &AttemptService{
		attemptRepo:     attemptRepo,
		quizRepo:        quizRepo,
		performanceRepo: performanceRepo,
		userRepo:        userRepo,
		emailService:    emailService,
		db:              db,
	}
}

// StartAttempt opens an attempt on an active quiz. When the student already
// has an in-progress attempt for the quiz, that attempt is returned instead
// of a new one (resumed=true).
func (s *AttemptService) StartAttempt(quizID, studentID uint) (*entity.QuizAttempt, bool, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, false, err
	}
	// Неактивная викторина для ученика неотличима от несуществующей
	if !quiz.IsActive {
		return nil, false, fmt.Errorf("%w: quiz not found or not active", apperrors.ErrNotFound)
	}

	if open, err := s.attemptRepo.GetOpenAttempt(quizID, studentID); err == nil {
		return open, true, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	attempt := &entity.QuizAttempt{
		QuizID:    quizID,
		StudentID: studentID,
		StartedAt: time.Now().UTC(),
	}
	err = s.attemptRepo.Create(attempt)
	if err != nil {
		// Lost the race against a concurrent start. The winner's attempt is
		// the one to resume.
		if errors.Is(err, repository.ErrDuplicateActiveAttempt) {
			open, getErr := s.attemptRepo.GetOpenAttempt(quizID, studentID)
			if getErr != nil {
				return nil, false, getErr
			}
			return open, true, nil
		}
		return nil, false, err
	}

	log.Printf("[AttemptService] Started attempt #%d quiz=%d student=%d", attempt.ID, quizID, studentID)
	return attempt, false, nil
}

// SubmitAttempt grades the answers against the student's open attempt for
// the quiz and finalizes it atomically.
//
// Answers referencing questions outside the quiz are skipped, as are repeated
// answers for the same question (first one wins). Essay questions are never
// auto-graded: their submissions are stored with requires_review=true and
// zero points, and their weight is excluded from max_score. The denominator
// counts submitted gradable questions only, so unanswered questions do not
// drag the percentage down.
func (s *AttemptService) SubmitAttempt(quizID, studentID uint, answers []AnswerInput) (*AttemptResult, error) {
	attempt, err := s.attemptRepo.GetOpenAttempt(quizID, studentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: no active quiz attempt found", apperrors.ErrNotFound)
		}
		return nil, err
	}

	quiz, err := s.quizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	graded := gradeAnswers(attempt.ID, quiz.Questions, answers, now)
	submissions := graded.submissions
	totalScore := graded.totalScore
	totalPossible := graded.totalPossible
	pendingReview := graded.pendingReview

	percentage := scorePercentage(totalScore, totalPossible)
	isPassed := percentage >= quiz.PassingScore
	timeTaken := int(now.Sub(attempt.StartedAt.UTC()).Seconds())
	if timeTaken < 0 {
		timeTaken = 0
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if len(submissions) > 0 {
		if err := tx.Create(&submissions).Error; err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to save submissions: %w", err)
		}
	}

	// Guarded update: WHERE completed_at IS NULL makes the finalize race
	// safe. The loser of a concurrent double submit updates zero rows.
	result := tx.Model(&entity.QuizAttempt{}).
		Where("id = ? AND completed_at IS NULL", attempt.ID).
		Updates(map[string]interface{}{
			"completed_at":   now,
			"score":          totalScore,
			"is_passed":      isPassed,
			"time_taken_sec": timeTaken,
		})
	if result.Error != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to finalize attempt: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		tx.Rollback()
		return nil, fmt.Errorf("%w: attempt already submitted", apperrors.ErrConflict)
	}

	record := &entity.PerformanceRecord{
		StudentID:       studentID,
		Subject:         quiz.Subject,
		AssessmentType:  entity.AssessmentTypeQuiz,
		AssessmentID:    quiz.ID,
		Score:           totalScore,
		MaxScore:        totalPossible,
		Percentage:      percentage,
		TimeTakenSec:    &timeTaken,
		Strengths:       entity.StringArray{},
		Weaknesses:      entity.StringArray{},
		Recommendations: performanceRecommendation(quiz.Subject, percentage),
	}
	if err := tx.Create(record).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to save performance record: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	log.Printf("[AttemptService] Attempt #%d graded: score=%.2f/%.2f passed=%t", attempt.ID, totalScore, totalPossible, isPassed)

	go s.notifyQuizResult(studentID, quiz, totalScore, totalPossible, percentage, isPassed)

	return &AttemptResult{
		AttemptID:     attempt.ID,
		Score:         totalScore,
		MaxScore:      totalPossible,
		Percentage:    percentage,
		IsPassed:      isPassed,
		TimeTakenSec:  timeTaken,
		PendingReview: pendingReview,
	}, nil
}

// GetAttempt returns an attempt with its submissions. Students only see
// their own attempts; the quiz creator sees all of them.
func (s *AttemptService) GetAttempt(attemptID, userID uint, role string) (*entity.QuizAttempt, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if role == entity.RoleStudent && attempt.StudentID != userID {
		return nil, fmt.Errorf("%w: attempt belongs to another student", apperrors.ErrForbidden)
	}
	if role == entity.RoleTeacher {
		quiz, err := s.quizRepo.GetByID(attempt.QuizID)
		if err != nil {
			return nil, err
		}
		if quiz.CreatorID != userID {
			return nil, fmt.Errorf("%w: quiz belongs to another teacher", apperrors.ErrForbidden)
		}
	}
	return attempt, nil
}

// ListQuizAttempts returns all attempts of a quiz for its creator.
func (s *AttemptService) ListQuizAttempts(quizID, teacherID uint) ([]entity.QuizAttempt, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CreatorID != teacherID {
		return nil, fmt.Errorf("%w: quiz belongs to another teacher", apperrors.ErrForbidden)
	}
	return s.attemptRepo.ListByQuiz(quizID)
}

// ComputeQuizAnalytics aggregates attempt outcomes for the quiz creator.
// All ratios are zero when there is nothing to divide by.
func (s *AttemptService) ComputeQuizAnalytics(quizID, teacherID uint) (*QuizAnalytics, error) {
	quiz, err := s.quizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CreatorID != teacherID {
		return nil, fmt.Errorf("%w: quiz belongs to another teacher", apperrors.ErrForbidden)
	}

	var attemptStats struct {
		Total     int
		Completed int
		Passed    int
		AvgScore  float64
		AvgTime   float64
	}
	err = s.db.Table("quiz_attempts").
		Select(`
			COUNT(*) as total,
			COUNT(*) FILTER (WHERE completed_at IS NOT NULL) as completed,
			COUNT(*) FILTER (WHERE completed_at IS NOT NULL AND is_passed = true) as passed,
			COALESCE(AVG(score) FILTER (WHERE completed_at IS NOT NULL), 0) as avg_score,
			COALESCE(AVG(time_taken_sec) FILTER (WHERE completed_at IS NOT NULL), 0) as avg_time
		`).
		Where("quiz_id = ?", quizID).
		Scan(&attemptStats).Error
	if err != nil {
		return nil, err
	}

	analytics := &QuizAnalytics{
		QuizID:            quizID,
		TotalAttempts:     attemptStats.Total,
		CompletedAttempts: attemptStats.Completed,
		QuestionAnalytics: []QuestionAnalytics{},
	}
	if attemptStats.Completed > 0 {
		analytics.AverageScore = math.Round(attemptStats.AvgScore*100) / 100
		analytics.PassRate = math.Round(float64(attemptStats.Passed)/float64(attemptStats.Completed)*100*100) / 100
		analytics.AverageTime = math.Round(attemptStats.AvgTime*100) / 100
	}

	type questionAgg struct {
		QuestionID   uint
		TotalAnswers int
		CorrectCount int
	}
	var aggs []questionAgg
	err = s.db.Table("quiz_submissions").
		Joins("JOIN quiz_attempts ON quiz_attempts.id = quiz_submissions.attempt_id").
		Select(`
			quiz_submissions.question_id,
			COUNT(*) as total_answers,
			COUNT(*) FILTER (WHERE quiz_submissions.is_correct = true) as correct_count
		`).
		Where("quiz_attempts.quiz_id = ?", quizID).
		Group("quiz_submissions.question_id").
		Scan(&aggs).Error
	if err != nil {
		return nil, err
	}

	aggsByQuestion := make(map[uint]questionAgg, len(aggs))
	for _, agg := range aggs {
		aggsByQuestion[agg.QuestionID] = agg
	}

	for _, question := range quiz.Questions {
		qa := QuestionAnalytics{
			QuestionID:   question.ID,
			QuestionText: question.Text,
		}
		if agg, ok := aggsByQuestion[question.ID]; ok && agg.TotalAnswers > 0 {
			qa.TotalAttempts = agg.TotalAnswers
			qa.SuccessRate = math.Round(float64(agg.CorrectCount)/float64(agg.TotalAnswers)*100*100) / 100
		}
		analytics.QuestionAnalytics = append(analytics.QuestionAnalytics, qa)
	}

	return analytics, nil
}

func (s *AttemptService) notifyQuizResult(studentID uint, quiz *entity.Quiz, score, maxScore, percentage float64, isPassed bool) {
	student, err := s.userRepo.GetByID(studentID)
	if err != nil {
		log.Printf("[AttemptService] Result email skipped, student #%d lookup failed: %v", studentID, err)
		return
	}

	verdict := "passed"
	if !isPassed {
		verdict = "not passed"
	}
	msg := EmailMessage{
		To:      []string{student.Email},
		Subject: fmt.Sprintf("Quiz result: %s", quiz.Title),
		Text: fmt.Sprintf("Hi %s,\n\nYou scored %.1f out of %.1f (%.1f%%) on %q. Result: %s.\n",
			student.Name, score, maxScore, percentage, quiz.Title, verdict),
		IdempotencyKey: uuid.NewString(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.emailService.Send(ctx, msg); err != nil {
		log.Printf("[AttemptService] Result email failed for student #%d: %v", studentID, err)
	}
}

type gradedAnswers struct {
	submissions   []entity.QuizSubmission
	totalScore    float64
	totalPossible float64
	pendingReview int
}

// gradeAnswers scores a submission payload against the quiz questions.
// Answers for unknown questions and repeated answers (first one wins) are
// skipped. Essay answers are stored ungraded with requires_review=true and do
// not count toward totalPossible.
func gradeAnswers(attemptID uint, questions []entity.Question, answers []AnswerInput, now time.Time) gradedAnswers {
	questionsByID := make(map[uint]*entity.Question, len(questions))
	for i := range questions {
		questionsByID[questions[i].ID] = &questions[i]
	}

	graded := gradedAnswers{
		submissions: make([]entity.QuizSubmission, 0, len(answers)),
	}
	seen := make(map[uint]bool, len(answers))
	for _, a := range answers {
		question, ok := questionsByID[a.QuestionID]
		if !ok || seen[a.QuestionID] {
			continue
		}
		seen[a.QuestionID] = true

		sub := entity.QuizSubmission{
			AttemptID:   attemptID,
			QuestionID:  a.QuestionID,
			Answer:      a.Answer,
			SubmittedAt: now,
		}
		if question.IsAutoGradable() {
			sub.IsCorrect = question.IsCorrect(a.Answer)
			sub.PointsEarned = question.CalculatePoints(sub.IsCorrect)
			graded.totalScore += sub.PointsEarned
			graded.totalPossible += question.Points
		} else {
			sub.RequiresReview = true
			graded.pendingReview++
		}
		graded.submissions = append(graded.submissions, sub)
	}
	return graded
}

// scorePercentage is score/possible as a percentage rounded to 2 decimal
// places; zero when there was nothing gradable.
func scorePercentage(score, possible float64) float64 {
	if possible <= 0 {
		return 0
	}
	return math.Round(score/possible*100*100) / 100
}

func performanceRecommendation(subject string, percentage float64) string {
	switch {
	case percentage >= 90:
		return fmt.Sprintf("Excellent work in %s. Keep it up.", subject)
	case percentage >= 70:
		return fmt.Sprintf("Good progress in %s. Review the questions you missed.", subject)
	default:
		return fmt.Sprintf("Keep working on %s concepts.", subject)
	}
}
