package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// UserRepo реализует repository.UserRepository
type UserRepo struct {
	db *gorm.DB
}

// NewUserRepo создает новый репозиторий пользователей
func NewUserRepo(db *gorm.DB) *UserRepo {
	return &UserRepo{db: db}
}

// Create создает нового пользователя
func (r *UserRepo) Create(user *entity.User) error {
	return r.db.Create(user).Error
}

// GetByID возвращает пользователя по ID
func (r *UserRepo) GetByID(id uint) (*entity.User, error) {
	var user entity.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail возвращает пользователя по email
func (r *UserRepo) GetByEmail(email string) (*entity.User, error) {
	var user entity.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetTutorByCode resolves an active teacher by tutor code.
func (r *UserRepo) GetTutorByCode(code string) (*entity.User, error) {
	var user entity.User
	err := r.db.
		Where("tutor_code = ? AND role = ? AND is_active = ?", code, entity.RoleTeacher, true).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// TutorCodeExists reports whether any user already holds the code.
func (r *UserRepo) TutorCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&entity.User{}).
		Where("tutor_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// ListStudentsByTutor returns the active students linked to a tutor.
func (r *UserRepo) ListStudentsByTutor(tutorID uint) ([]entity.User, error) {
	var students []entity.User
	err := r.db.
		Where("tutor_id = ? AND role = ? AND is_active = ?", tutorID, entity.RoleStudent, true).
		Order("name ASC").
		Find(&students).Error
	return students, err
}

// CountStudentsByTutor возвращает количество активных учеников наставника
func (r *UserRepo) CountStudentsByTutor(tutorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entity.User{}).
		Where("tutor_id = ? AND role = ? AND is_active = ?", tutorID, entity.RoleStudent, true).
		Count(&count).Error
	return count, err
}

// Update обновляет информацию о пользователе
func (r *UserRepo) Update(user *entity.User) error {
	return r.db.Save(user).Error
}
