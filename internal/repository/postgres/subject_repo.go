package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// SubjectRepo реализует repository.SubjectRepository
type SubjectRepo struct {
	db *gorm.DB
}

// NewSubjectRepo создает новый репозиторий предметов
func NewSubjectRepo(db *gorm.DB) *SubjectRepo {
	return &SubjectRepo{db: db}
}

// Create создает новый предмет
func (r *SubjectRepo) Create(subject *entity.Subject) error {
	return r.db.Create(subject).Error
}

// GetByIDForTutor scopes the lookup to the owning tutor.
func (r *SubjectRepo) GetByIDForTutor(id, tutorID uint) (*entity.Subject, error) {
	var subject entity.Subject
	err := r.db.
		Where("id = ? AND tutor_id = ?", id, tutorID).
		First(&subject).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &subject, nil
}

// ListByTutor возвращает активные предметы наставника вместе с классами
func (r *SubjectRepo) ListByTutor(tutorID uint) ([]entity.Subject, error) {
	var subjects []entity.Subject
	err := r.db.
		Preload("Grades", "is_active = ?", true).
		Where("tutor_id = ? AND is_active = ?", tutorID, true).
		Order("name ASC").
		Find(&subjects).Error
	return subjects, err
}

// Update обновляет предмет
func (r *SubjectRepo) Update(subject *entity.Subject) error {
	return r.db.Save(subject).Error
}

// CreateGrade создает класс внутри предмета
func (r *SubjectRepo) CreateGrade(grade *entity.Grade) error {
	return r.db.Create(grade).Error
}

// GetGradeForTutor resolves a grade only when its subject belongs to the tutor.
func (r *SubjectRepo) GetGradeForTutor(gradeID, tutorID uint) (*entity.Grade, error) {
	var grade entity.Grade
	err := r.db.
		Joins("JOIN subjects ON subjects.id = grades.subject_id").
		Where("grades.id = ? AND subjects.tutor_id = ?", gradeID, tutorID).
		First(&grade).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &grade, nil
}

// ListGradesBySubject возвращает активные классы предмета
func (r *SubjectRepo) ListGradesBySubject(subjectID uint) ([]entity.Grade, error) {
	var grades []entity.Grade
	err := r.db.
		Where("subject_id = ? AND is_active = ?", subjectID, true).
		Order("name ASC").
		Find(&grades).Error
	return grades, err
}

// ListGradesByTutor возвращает все активные классы наставника
func (r *SubjectRepo) ListGradesByTutor(tutorID uint) ([]entity.Grade, error) {
	var grades []entity.Grade
	err := r.db.
		Joins("JOIN subjects ON subjects.id = grades.subject_id").
		Where("subjects.tutor_id = ? AND grades.is_active = ?", tutorID, true).
		Order("subjects.name ASC, grades.name ASC").
		Find(&grades).Error
	return grades, err
}

// Enroll записывает ученика в класс
func (r *SubjectRepo) Enroll(enrollment *entity.StudentGrade) error {
	err := r.db.Create(enrollment).Error
	if err != nil && isUniqueViolation(err) {
		return apperrors.ErrConflict
	}
	return err
}

// GetEnrollment возвращает запись ученика в классе
func (r *SubjectRepo) GetEnrollment(gradeID, studentID uint) (*entity.StudentGrade, error) {
	var enrollment entity.StudentGrade
	err := r.db.
		Where("grade_id = ? AND student_id = ?", gradeID, studentID).
		First(&enrollment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &enrollment, nil
}

// ListEnrollments возвращает активные записи класса
func (r *SubjectRepo) ListEnrollments(gradeID uint) ([]entity.StudentGrade, error) {
	var enrollments []entity.StudentGrade
	err := r.db.
		Where("grade_id = ? AND is_active = ?", gradeID, true).
		Order("enrolled_at ASC").
		Find(&enrollments).Error
	return enrollments, err
}

// UpdateEnrollment обновляет запись (например, отчисление)
func (r *SubjectRepo) UpdateEnrollment(enrollment *entity.StudentGrade) error {
	return r.db.Save(enrollment).Error
}
