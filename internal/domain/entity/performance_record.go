package entity

import (
	"time"
)

// Assessment types recorded in performance_records.
const (
	AssessmentTypeQuiz       = "quiz"
	AssessmentTypeAssignment = "assignment"
)

// PerformanceRecord is a write-once denormalized summary of one graded
// assessment. Dashboards, leaderboards and diagnostics read these rows; the
// quiz/attempt rows remain the transactional source of truth.
type PerformanceRecord struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	StudentID uint `gorm:"not null;index" json:"student_id"`

	Subject        string `gorm:"size:100;not null;index" json:"subject"`
	AssessmentType string `gorm:"size:20;not null" json:"assessment_type"`
	AssessmentID   uint   `gorm:"not null" json:"assessment_id"`

	Score      float64 `gorm:"not null" json:"score"`
	MaxScore   float64 `gorm:"not null" json:"max_score"`
	Percentage float64 `gorm:"not null" json:"percentage"`

	// TimeTakenSec is only set for timed assessments (quizzes).
	TimeTakenSec *int `json:"time_taken,omitempty"`

	Strengths       StringArray `gorm:"type:jsonb" json:"strengths,omitempty"`
	Weaknesses      StringArray `gorm:"type:jsonb" json:"weaknesses,omitempty"`
	Recommendations string      `gorm:"type:text;not null;default:''" json:"recommendations,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName sets the GORM table name.
func (PerformanceRecord) TableName() string {
	return "performance_records"
}
