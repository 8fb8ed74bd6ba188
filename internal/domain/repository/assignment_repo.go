package repository

import (
	"github.com/yourusername/classroom-api/internal/domain/entity"
)

// AssignmentRepository defines persistence operations for assignments and
// their submissions.
type AssignmentRepository interface {
	Create(assignment *entity.Assignment) error
	GetByID(id uint) (*entity.Assignment, error)
	ListActive() ([]entity.Assignment, error)
	ListByCreator(creatorID uint) ([]entity.Assignment, error)

	CreateSubmission(submission *entity.AssignmentSubmission) error
	GetSubmissionByID(id uint) (*entity.AssignmentSubmission, error)
	// GetSubmission returns the submission for (assignment, student), or
	// ErrNotFound when the student has not submitted yet.
	GetSubmission(assignmentID, studentID uint) (*entity.AssignmentSubmission, error)
	ListSubmissions(assignmentID uint) ([]entity.AssignmentSubmission, error)
	ListSubmissionsByStudent(studentID uint) ([]entity.AssignmentSubmission, error)
	UpdateSubmission(submission *entity.AssignmentSubmission) error
}
