package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// AnnouncementRepo реализует repository.AnnouncementRepository
type AnnouncementRepo struct {
	db *gorm.DB
}

// NewAnnouncementRepo создает новый репозиторий объявлений
func NewAnnouncementRepo(db *gorm.DB) *AnnouncementRepo {
	return &AnnouncementRepo{db: db}
}

// Create создает новое объявление
func (r *AnnouncementRepo) Create(announcement *entity.Announcement) error {
	return r.db.Create(announcement).Error
}

// GetByID возвращает объявление по ID
func (r *AnnouncementRepo) GetByID(id uint) (*entity.Announcement, error) {
	var announcement entity.Announcement
	err := r.db.First(&announcement, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &announcement, nil
}

// List возвращает все объявления, новые сначала
func (r *AnnouncementRepo) List() ([]entity.Announcement, error) {
	var announcements []entity.Announcement
	err := r.db.Order("created_at DESC").Find(&announcements).Error
	return announcements, err
}

// MarkEmailSent records that the email broadcast went out.
func (r *AnnouncementRepo) MarkEmailSent(id uint) error {
	result := r.db.Model(&entity.Announcement{}).
		Where("id = ?", id).
		Update("email_sent", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
