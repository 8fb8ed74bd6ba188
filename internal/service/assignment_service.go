package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/domain/repository"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// CreateAssignmentInput carries the fields needed to create an assignment.
type CreateAssignmentInput struct {
	Title       string
	Description string
	Subject     string
	DueDate     time.Time
	MaxPoints   float64
}

// AssignmentService отвечает за домашние задания и их проверку
type AssignmentService struct {
	assignmentRepo repository.AssignmentRepository
	userRepo       repository.UserRepository
	emailService   EmailService
	db             *gorm.DB
}

// NewAssignmentService создает новый сервис заданий
func NewAssignmentService(
	assignmentRepo repository.AssignmentRepository,
	userRepo repository.UserRepository,
	emailService EmailService,
	db *gorm.DB,
) *AssignmentService {
	return &AssignmentService{
		assignmentRepo: assignmentRepo,
		userRepo:       userRepo,
		emailService:   emailService,
		db:             db,
	}
}

// CreateAssignment создает новое задание
func (s *AssignmentService) CreateAssignment(teacherID uint, input CreateAssignmentInput) (*entity.Assignment, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, fmt.Errorf("%w: subject is required", apperrors.ErrValidation)
	}
	if input.DueDate.IsZero() {
		return nil, fmt.Errorf("%w: due date is required", apperrors.ErrValidation)
	}
	if input.MaxPoints <= 0 {
		input.MaxPoints = 100
	}

	assignment := &entity.Assignment{
		Title:       strings.TrimSpace(input.Title),
		Description: input.Description,
		Subject:     strings.TrimSpace(input.Subject),
		DueDate:     input.DueDate.UTC(),
		MaxPoints:   input.MaxPoints,
		IsActive:    true,
		CreatorID:   teacherID,
	}
	if err := s.assignmentRepo.Create(assignment); err != nil {
		return nil, err
	}

	log.Printf("[AssignmentService] Created assignment #%d by teacher #%d", assignment.ID, teacherID)
	return assignment, nil
}

// ListAssignments возвращает задания: учителю свои, ученику активные
func (s *AssignmentService) ListAssignments(userID uint, role string) ([]entity.Assignment, error) {
	if role == entity.RoleTeacher {
		return s.assignmentRepo.ListByCreator(userID)
	}
	return s.assignmentRepo.ListActive()
}

// GetAssignment возвращает задание по ID
func (s *AssignmentService) GetAssignment(id uint) (*entity.Assignment, error) {
	return s.assignmentRepo.GetByID(id)
}

// SubmitAssignment сдает задание. Повторная сдача запрещена;
// сдача после срока помечается как опоздавшая.
func (s *AssignmentService) SubmitAssignment(assignmentID, studentID uint, content, fileURL string) (*entity.AssignmentSubmission, error) {
	assignment, err := s.assignmentRepo.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	// Неактивное задание для ученика неотличимо от несуществующего
	if !assignment.IsActive {
		return nil, fmt.Errorf("%w: assignment not found or not active", apperrors.ErrNotFound)
	}
	if strings.TrimSpace(content) == "" && strings.TrimSpace(fileURL) == "" {
		return nil, fmt.Errorf("%w: submission content or file is required", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	submission := &entity.AssignmentSubmission{
		AssignmentID: assignmentID,
		StudentID:    studentID,
		Content:      content,
		FileURL:      fileURL,
		SubmittedAt:  now,
		IsLate:       now.After(assignment.DueDate.UTC()),
	}
	if err := s.assignmentRepo.CreateSubmission(submission); err != nil {
		return nil, err
	}
	return submission, nil
}

// GradeSubmission выставляет оценку и создает запись успеваемости
func (s *AssignmentService) GradeSubmission(submissionID, teacherID uint, score float64, feedback string) (*entity.AssignmentSubmission, error) {
	submission, err := s.assignmentRepo.GetSubmissionByID(submissionID)
	if err != nil {
		return nil, err
	}

	assignment, err := s.assignmentRepo.GetByID(submission.AssignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.CreatorID != teacherID {
		return nil, fmt.Errorf("%w: assignment belongs to another teacher", apperrors.ErrForbidden)
	}
	if score < 0 || score > assignment.MaxPoints {
		return nil, fmt.Errorf("%w: score must be between 0 and %.1f", apperrors.ErrValidation, assignment.MaxPoints)
	}

	now := time.Now().UTC()
	regrade := submission.IsGraded()
	submission.Score = &score
	submission.Feedback = feedback
	submission.GradedAt = &now

	percentage := score / assignment.MaxPoints * 100
	percentage = math.Round(percentage*100) / 100

	recommendations := strings.TrimSpace(feedback)
	if recommendations == "" {
		recommendations = fmt.Sprintf("Keep working on %s concepts.", assignment.Subject)
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

	if err := tx.Save(submission).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	// A regrade updates the submission but does not emit a second record.
	if !regrade {
		record := &entity.PerformanceRecord{
			StudentID:       submission.StudentID,
			Subject:         assignment.Subject,
			AssessmentType:  entity.AssessmentTypeAssignment,
			AssessmentID:    assignment.ID,
			Score:           score,
			MaxScore:        assignment.MaxPoints,
			Percentage:      percentage,
			Strengths:       entity.StringArray{},
			Weaknesses:      entity.StringArray{},
			Recommendations: recommendations,
		}
		if err := tx.Create(record).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	go s.notifyGrade(submission.StudentID, assignment, score, feedback)

	return submission, nil
}

// ListSubmissions возвращает сдачи задания для его автора
func (s *AssignmentService) ListSubmissions(assignmentID, teacherID uint) ([]entity.AssignmentSubmission, error) {
	assignment, err := s.assignmentRepo.GetByID(assignmentID)
	if err != nil {
		return nil, err
	}
	if assignment.CreatorID != teacherID {
		return nil, fmt.Errorf("%w: assignment belongs to another teacher", apperrors.ErrForbidden)
	}
	return s.assignmentRepo.ListSubmissions(assignmentID)
}

// ListMySubmissions возвращает сдачи ученика
func (s *AssignmentService) ListMySubmissions(studentID uint) ([]entity.AssignmentSubmission, error) {
	return s.assignmentRepo.ListSubmissionsByStudent(studentID)
}

// GetMySubmission возвращает сдачу ученика для задания, если она есть
func (s *AssignmentService) GetMySubmission(assignmentID, studentID uint) (*entity.AssignmentSubmission, error) {
	submission, err := s.assignmentRepo.GetSubmission(assignmentID, studentID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return submission, err
}

func (s *AssignmentService) notifyGrade(studentID uint, assignment *entity.Assignment, score float64, feedback string) {
	student, err := s.userRepo.GetByID(studentID)
	if err != nil {
		log.Printf("[AssignmentService] Grade email skipped, student #%d lookup failed: %v", studentID, err)
		return
	}

	text := fmt.Sprintf("Hi %s,\n\nYour submission for %q was graded: %.1f out of %.1f.",
		student.Name, assignment.Title, score, assignment.MaxPoints)
	if strings.TrimSpace(feedback) != "" {
		text += "\n\nFeedback: " + feedback
	}

	msg := EmailMessage{
		To:             []string{student.Email},
		Subject:        fmt.Sprintf("Assignment graded: %s", assignment.Title),
		Text:           text,
		IdempotencyKey: uuid.NewString(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.emailService.Send(ctx, msg); err != nil {
		log.Printf("[AssignmentService] Grade email failed for student #%d: %v", studentID, err)
	}
}
