package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// AssignmentRepo реализует repository.AssignmentRepository
type AssignmentRepo struct {
	db *gorm.DB
}

// NewAssignmentRepo создает новый репозиторий домашних заданий
func NewAssignmentRepo(db *gorm.DB) *AssignmentRepo {
	return &AssignmentRepo{db: db}
}

// Create создает новое задание
func (r *AssignmentRepo) Create(assignment *entity.Assignment) error {
	return r.db.Create(assignment).Error
}

// GetByID возвращает задание по ID
func (r *AssignmentRepo) GetByID(id uint) (*entity.Assignment, error) {
	var assignment entity.Assignment
	err := r.db.First(&assignment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &assignment, nil
}

// ListActive возвращает активные задания, по сроку сдачи
func (r *AssignmentRepo) ListActive() ([]entity.Assignment, error) {
	var assignments []entity.Assignment
	err := r.db.Where("is_active = ?", true).Order("due_date ASC").Find(&assignments).Error
	return assignments, err
}

// ListByCreator возвращает задания учителя
func (r *AssignmentRepo) ListByCreator(creatorID uint) ([]entity.Assignment, error) {
	var assignments []entity.Assignment
	err := r.db.Where("creator_id = ?", creatorID).Order("created_at DESC").Find(&assignments).Error
	return assignments, err
}

// CreateSubmission сохраняет сдачу задания. Уникальный индекс на
// (assignment_id, student_id) не допускает повторную сдачу.
func (r *AssignmentRepo) CreateSubmission(submission *entity.AssignmentSubmission) error {
	err := r.db.Create(submission).Error
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: assignment #%d already submitted",
				apperrors.ErrConflict, submission.AssignmentID)
		}
		return err
	}
	return nil
}

// GetSubmissionByID возвращает сдачу по ID
func (r *AssignmentRepo) GetSubmissionByID(id uint) (*entity.AssignmentSubmission, error) {
	var submission entity.AssignmentSubmission
	err := r.db.First(&submission, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &submission, nil
}

// GetSubmission возвращает сдачу ученика для задания
func (r *AssignmentRepo) GetSubmission(assignmentID, studentID uint) (*entity.AssignmentSubmission, error) {
	var submission entity.AssignmentSubmission
	err := r.db.
		Where("assignment_id = ? AND student_id = ?", assignmentID, studentID).
		First(&submission).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &submission, nil
}

// ListSubmissions возвращает все сдачи задания
func (r *AssignmentRepo) ListSubmissions(assignmentID uint) ([]entity.AssignmentSubmission, error) {
	var submissions []entity.AssignmentSubmission
	err := r.db.
		Where("assignment_id = ?", assignmentID).
		Order("submitted_at ASC").
		Find(&submissions).Error
	return submissions, err
}

// ListSubmissionsByStudent возвращает сдачи ученика
func (r *AssignmentRepo) ListSubmissionsByStudent(studentID uint) ([]entity.AssignmentSubmission, error) {
	var submissions []entity.AssignmentSubmission
	err := r.db.
		Where("student_id = ?", studentID).
		Order("submitted_at DESC").
		Find(&submissions).Error
	return submissions, err
}

// UpdateSubmission обновляет сдачу (оценка, отзыв)
func (r *AssignmentRepo) UpdateSubmission(submission *entity.AssignmentSubmission) error {
	return r.db.Save(submission).Error
}
