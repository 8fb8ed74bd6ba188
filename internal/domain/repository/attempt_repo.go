package repository

import (
	"github.com/yourusername/classroom-api/internal/domain/entity"
)

// AttemptRepository defines persistence operations for quiz attempts.
//
// The finalization path (bulk submission insert + guarded attempt update +
// performance record) runs inside a service-owned transaction and is not part
// of this interface.
type AttemptRepository interface {
	// Create inserts a new attempt. The partial unique index on
	// (quiz_id, student_id) for open attempts makes concurrent starts race
	// safely: the loser receives ErrDuplicateActiveAttempt.
	Create(attempt *entity.QuizAttempt) error
	GetByID(id uint) (*entity.QuizAttempt, error)
	// GetOpenAttempt returns the in-progress attempt (completed_at NULL)
	// for the (quiz, student) pair, or ErrNotFound.
	GetOpenAttempt(quizID, studentID uint) (*entity.QuizAttempt, error)
	// ListByQuiz returns every attempt for a quiz, newest first.
	ListByQuiz(quizID uint) ([]entity.QuizAttempt, error)
	// ListCompletedByStudent returns a student's completed attempts.
	ListCompletedByStudent(studentID uint) ([]entity.QuizAttempt, error)
}
