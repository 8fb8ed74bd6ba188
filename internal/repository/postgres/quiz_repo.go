package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// QuizRepo реализует repository.QuizRepository
type QuizRepo struct {
	db *gorm.DB
}

// NewQuizRepo создает новый репозиторий викторин
func NewQuizRepo(db *gorm.DB) *QuizRepo {
	return &QuizRepo{db: db}
}

// Create создает новую викторину вместе с вопросами
func (r *QuizRepo) Create(quiz *entity.Quiz) error {
	return r.db.Create(quiz).Error
}

// GetByID возвращает викторину по ID
func (r *QuizRepo) GetByID(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// GetWithQuestions возвращает викторину вместе с вопросами
func (r *QuizRepo) GetWithQuestions(id uint) (*entity.Quiz, error) {
	var quiz entity.Quiz
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.id ASC")
	}).First(&quiz, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &quiz, nil
}

// ListByCreator returns the quizzes a teacher owns, newest first.
func (r *QuizRepo) ListByCreator(creatorID uint, activeOnly bool) ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	q := r.db.Where("creator_id = ?", creatorID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	err := q.Order("created_at DESC").Find(&quizzes).Error
	return quizzes, err
}

// ListActive returns every active quiz.
func (r *QuizRepo) ListActive() ([]entity.Quiz, error) {
	var quizzes []entity.Quiz
	err := r.db.Where("is_active = ?", true).Order("created_at DESC").Find(&quizzes).Error
	return quizzes, err
}

// Update обновляет викторину
func (r *QuizRepo) Update(quiz *entity.Quiz) error {
	return r.db.Save(quiz).Error
}

// SetActive flips the active flag.
func (r *QuizRepo) SetActive(quizID uint, active bool) error {
	result := r.db.Model(&entity.Quiz{}).
		Where("id = ?", quizID).
		Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// HasAttempts reports whether any attempt references the quiz.
func (r *QuizRepo) HasAttempts(quizID uint) (bool, error) {
	var count int64
	err := r.db.Model(&entity.QuizAttempt{}).
		Where("quiz_id = ?", quizID).
		Count(&count).Error
	return count > 0, err
}

// Delete удаляет викторину вместе с вопросами
func (r *QuizRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("quiz_id = ?", id).Delete(&entity.Question{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&entity.Quiz{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return apperrors.ErrNotFound
		}
		return nil
	})
}
