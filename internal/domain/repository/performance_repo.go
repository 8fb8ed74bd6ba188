package repository

import (
	"github.com/yourusername/classroom-api/internal/domain/entity"
)

// PerformanceRepository defines persistence operations for performance
// records. Records are write-once; there is no update.
type PerformanceRepository interface {
	Create(record *entity.PerformanceRecord) error
	// ListByStudent returns a student's records, newest first. limit <= 0
	// means no limit.
	ListByStudent(studentID uint, limit int) ([]entity.PerformanceRecord, error)
}
