package repository

import (
	"github.com/yourusername/classroom-api/internal/domain/entity"
)

// SubjectRepository defines persistence operations for subjects, grades and
// student enrollments.
type SubjectRepository interface {
	Create(subject *entity.Subject) error
	// GetByIDForTutor scopes the lookup to the owning tutor.
	GetByIDForTutor(id, tutorID uint) (*entity.Subject, error)
	ListByTutor(tutorID uint) ([]entity.Subject, error)
	Update(subject *entity.Subject) error

	CreateGrade(grade *entity.Grade) error
	// GetGradeForTutor resolves a grade only when its subject belongs to the tutor.
	GetGradeForTutor(gradeID, tutorID uint) (*entity.Grade, error)
	ListGradesBySubject(subjectID uint) ([]entity.Grade, error)
	ListGradesByTutor(tutorID uint) ([]entity.Grade, error)

	Enroll(enrollment *entity.StudentGrade) error
	GetEnrollment(gradeID, studentID uint) (*entity.StudentGrade, error)
	ListEnrollments(gradeID uint) ([]entity.StudentGrade, error)
	UpdateEnrollment(enrollment *entity.StudentGrade) error
}
