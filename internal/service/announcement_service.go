package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/domain/repository"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// AnnouncementService отвечает за объявления и их почтовую рассылку
type AnnouncementService struct {
	announcementRepo repository.AnnouncementRepository
	userRepo         repository.UserRepository
	emailService     EmailService
}

// NewAnnouncementService создает новый сервис объявлений
func NewAnnouncementService(
	announcementRepo repository.AnnouncementRepository,
	userRepo repository.UserRepository,
	emailService EmailService,
) *AnnouncementService {
	return &AnnouncementService{
		announcementRepo: announcementRepo,
		userRepo:         userRepo,
		emailService:     emailService,
	}
}

// CreateAnnouncement создает объявление. Важные объявления рассылаются
// ученикам учителя на почту.
func (s *AnnouncementService) CreateAnnouncement(teacherID uint, title, content string, important bool) (*entity.Announcement, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: title and content are required", apperrors.ErrValidation)
	}

	announcement := &entity.Announcement{
		Title:       strings.TrimSpace(title),
		Content:     content,
		IsImportant: important,
		CreatorID:   teacherID,
	}
	if err := s.announcementRepo.Create(announcement); err != nil {
		return nil, err
	}

	if important {
		go s.broadcast(announcement)
	}

	return announcement, nil
}

// ListAnnouncements возвращает все объявления, новые сначала
func (s *AnnouncementService) ListAnnouncements() ([]entity.Announcement, error) {
	return s.announcementRepo.List()
}

// GetAnnouncement возвращает объявление по ID
func (s *AnnouncementService) GetAnnouncement(id uint) (*entity.Announcement, error) {
	return s.announcementRepo.GetByID(id)
}

// broadcast рассылает объявление ученикам автора и помечает его отправленным
func (s *AnnouncementService) broadcast(announcement *entity.Announcement) {
	students, err := s.userRepo.ListStudentsByTutor(announcement.CreatorID)
	if err != nil {
		log.Printf("[AnnouncementService] Broadcast #%d skipped, student lookup failed: %v", announcement.ID, err)
		return
	}
	if len(students) == 0 {
		log.Printf("[AnnouncementService] Broadcast #%d skipped, teacher #%d has no linked students", announcement.ID, announcement.CreatorID)
		return
	}

	recipients := make([]string, 0, len(students))
	for _, student := range students {
		recipients = append(recipients, student.Email)
	}

	msg := EmailMessage{
		To:             recipients,
		Subject:        fmt.Sprintf("Announcement: %s", announcement.Title),
		Text:           announcement.Content,
		IdempotencyKey: uuid.NewString(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := s.emailService.Send(ctx, msg); err != nil {
		log.Printf("[AnnouncementService] Broadcast #%d email failed: %v", announcement.ID, err)
		return
	}

	if err := s.announcementRepo.MarkEmailSent(announcement.ID); err != nil {
		log.Printf("[AnnouncementService] Failed to mark announcement #%d as sent: %v", announcement.ID, err)
	}
}
