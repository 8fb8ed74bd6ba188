package postgres

import (
	"gorm.io/gorm"

	"github.com/yourusername/classroom-api/internal/domain/entity"
)

// PerformanceRepo реализует repository.PerformanceRepository
type PerformanceRepo struct {
	db *gorm.DB
}

// NewPerformanceRepo создает новый репозиторий записей успеваемости
func NewPerformanceRepo(db *gorm.DB) *PerformanceRepo {
	return &PerformanceRepo{db: db}
}

// Create создает запись успеваемости
func (r *PerformanceRepo) Create(record *entity.PerformanceRecord) error {
	return r.db.Create(record).Error
}

// ListByStudent возвращает записи ученика, новые сначала
func (r *PerformanceRepo) ListByStudent(studentID uint, limit int) ([]entity.PerformanceRecord, error) {
	var records []entity.PerformanceRecord
	q := r.db.Where("student_id = ?", studentID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&records).Error
	return records, err
}
