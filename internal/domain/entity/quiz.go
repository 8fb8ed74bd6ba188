package entity

import (
	"time"
)

// Quiz represents a quiz authored by a teacher.
type Quiz struct {
	ID          uint   `gorm:"primaryKey" json:"id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text;not null;default:''" json:"description"`
	Subject     string `gorm:"size:100;not null;index" json:"subject"`

	// TimeLimitMin is informational: it is shown to students but not
	// enforced server-side on submission.
	TimeLimitMin *int `json:"time_limit,omitempty"`

	// PassingScore is the minimum percentage (0-100) required to pass.
	PassingScore float64 `gorm:"not null;default:60" json:"passing_score"`

	IsActive  bool       `gorm:"not null;default:true;index" json:"is_active"`
	CreatorID uint       `gorm:"not null;index" json:"creator_id"`
	Questions []Question `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Quiz) TableName() string {
	return "quizzes"
}
