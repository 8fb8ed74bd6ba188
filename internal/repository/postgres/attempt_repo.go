package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/domain/repository"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Create inserts a new attempt. A partial unique index on
// (quiz_id, student_id) WHERE completed_at IS NULL serializes concurrent
// starts: exactly one insert wins, the rest get a unique violation.
func (r *AttemptRepo) Create(attempt *entity.QuizAttempt) error {
	err := r.db.Create(attempt).Error
	if err != nil {
		// Проверяем unique violation (23505) от обоих драйверов
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: quiz #%d student #%d",
				repository.ErrDuplicateActiveAttempt, attempt.QuizID, attempt.StudentID)
		}
		return err
	}
	return nil
}

// GetByID возвращает попытку вместе с ответами
func (r *AttemptRepo) GetByID(id uint) (*entity.QuizAttempt, error) {
	var attempt entity.QuizAttempt
	err := r.db.Preload("Submissions").First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetOpenAttempt returns the in-progress attempt for the (quiz, student) pair.
func (r *AttemptRepo) GetOpenAttempt(quizID, studentID uint) (*entity.QuizAttempt, error) {
	var attempt entity.QuizAttempt
	err := r.db.
		Where("quiz_id = ? AND student_id = ? AND completed_at IS NULL", quizID, studentID).
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// ListByQuiz возвращает все попытки викторины, новые сначала
func (r *AttemptRepo) ListByQuiz(quizID uint) ([]entity.QuizAttempt, error) {
	var attempts []entity.QuizAttempt
	err := r.db.
		Where("quiz_id = ?", quizID).
		Order("started_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// ListCompletedByStudent возвращает завершённые попытки ученика
func (r *AttemptRepo) ListCompletedByStudent(studentID uint) ([]entity.QuizAttempt, error) {
	var attempts []entity.QuizAttempt
	err := r.db.
		Where("student_id = ? AND completed_at IS NOT NULL", studentID).
		Order("completed_at DESC").
		Find(&attempts).Error
	return attempts, err
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
