package entity

import (
	"time"
)

// Announcement is a message a teacher publishes to their students. Important
// announcements are additionally delivered by email.
type Announcement struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	IsImportant bool      `gorm:"not null;default:false" json:"is_important"`
	EmailSent   bool      `gorm:"not null;default:false" json:"email_sent"`
	CreatorID   uint      `gorm:"not null;index" json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Announcement) TableName() string {
	return "announcements"
}
