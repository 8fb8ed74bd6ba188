package repository

import (
	"github.com/yourusername/classroom-api/internal/domain/entity"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	// GetTutorByCode resolves an active teacher by tutor code.
	GetTutorByCode(code string) (*entity.User, error)
	// TutorCodeExists reports whether any user already holds the code.
	TutorCodeExists(code string) (bool, error)
	// ListStudentsByTutor returns the active students linked to a tutor.
	ListStudentsByTutor(tutorID uint) ([]entity.User, error)
	CountStudentsByTutor(tutorID uint) (int64, error)
	Update(user *entity.User) error
}
