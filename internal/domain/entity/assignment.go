package entity

import (
	"time"
)

// Assignment represents a graded task with a due date, authored by a teacher.
type Assignment struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Description string    `gorm:"type:text;not null;default:''" json:"description"`
	Subject     string    `gorm:"size:100;not null;index" json:"subject"`
	DueDate     time.Time `gorm:"not null" json:"due_date"`
	MaxPoints   float64   `gorm:"not null;default:100" json:"max_points"`
	IsActive    bool      `gorm:"not null;default:true;index" json:"is_active"`
	CreatorID   uint      `gorm:"not null;index" json:"creator_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Submissions []AssignmentSubmission `gorm:"foreignKey:AssignmentID" json:"submissions,omitempty"`
}

// TableName sets the GORM table name.
func (Assignment) TableName() string {
	return "assignments"
}

// AssignmentSubmission is one student's submission for an assignment.
// Each student may submit at most once.
type AssignmentSubmission struct {
	ID           uint `gorm:"primaryKey" json:"id"`
	AssignmentID uint `gorm:"not null;index;uniqueIndex:idx_assignment_student" json:"assignment_id"`
	StudentID    uint `gorm:"not null;index;uniqueIndex:idx_assignment_student" json:"student_id"`

	Content string `gorm:"type:text;not null;default:''" json:"content"`
	FileURL string `gorm:"size:500;not null;default:''" json:"file_url,omitempty"`

	SubmittedAt time.Time  `gorm:"not null" json:"submitted_at"`
	GradedAt    *time.Time `json:"graded_at,omitempty"`
	Score       *float64   `json:"score,omitempty"`
	Feedback    string     `gorm:"type:text;not null;default:''" json:"feedback,omitempty"`
	IsLate      bool       `gorm:"not null;default:false" json:"is_late"`
}

// TableName sets the GORM table name.
func (AssignmentSubmission) TableName() string {
	return "assignment_submissions"
}

// IsGraded reports whether a teacher has graded the submission.
func (s *AssignmentSubmission) IsGraded() bool {
	return s.GradedAt != nil
}
