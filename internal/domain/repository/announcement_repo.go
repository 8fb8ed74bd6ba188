package repository

import (
	"github.com/yourusername/classroom-api/internal/domain/entity"
)

// AnnouncementRepository defines persistence operations for announcements.
type AnnouncementRepository interface {
	Create(announcement *entity.Announcement) error
	GetByID(id uint) (*entity.Announcement, error)
	// List returns all announcements, newest first.
	List() ([]entity.Announcement, error)
	// MarkEmailSent records that the email broadcast went out.
	MarkEmailSent(id uint) error
}
