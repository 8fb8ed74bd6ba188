package repository

import (
	"github.com/yourusername/classroom-api/internal/domain/entity"
)

// QuizRepository defines persistence operations for quizzes and questions.
type QuizRepository interface {
	// Create persists the quiz together with its initial question set.
	Create(quiz *entity.Quiz) error
	GetByID(id uint) (*entity.Quiz, error)
	GetWithQuestions(id uint) (*entity.Quiz, error)
	// ListByCreator returns the quizzes a teacher owns.
	ListByCreator(creatorID uint, activeOnly bool) ([]entity.Quiz, error)
	// ListActive returns every active quiz (the student view).
	ListActive() ([]entity.Quiz, error)
	Update(quiz *entity.Quiz) error
	// SetActive flips the active flag.
	SetActive(quizID uint, active bool) error
	// HasAttempts reports whether any attempt references the quiz.
	// Quizzes with attempts may not be deleted.
	HasAttempts(quizID uint) (bool, error)
	Delete(id uint) error
}

// QuestionRepository defines persistence operations for questions.
type QuestionRepository interface {
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetByQuizID(quizID uint) ([]entity.Question, error)
	Update(question *entity.Question) error
	Delete(id uint) error
}
