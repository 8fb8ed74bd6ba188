package entity

import (
	"time"
)

// QuizAttempt represents one student's pass through a quiz, from start to
// final submission. At most one attempt per (quiz, student) pair may be open
// (completed_at NULL) at a time; this is enforced by a partial unique index.
type QuizAttempt struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	QuizID    uint `gorm:"not null;index" json:"quiz_id"`
	StudentID uint `gorm:"not null;index" json:"student_id"`

	StartedAt   time.Time  `gorm:"not null" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	Score    *float64 `json:"score,omitempty"`
	IsPassed bool     `gorm:"not null;default:false" json:"is_passed"`

	// TimeTakenSec is completed_at - started_at in whole seconds.
	TimeTakenSec int `gorm:"not null;default:0" json:"time_taken"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Submissions []QuizSubmission `gorm:"foreignKey:AttemptID" json:"submissions,omitempty"`
}

// TableName sets the GORM table name.
func (QuizAttempt) TableName() string {
	return "quiz_attempts"
}

// IsCompleted reports whether the attempt has been finalized. Completed
// attempts are immutable.
func (a *QuizAttempt) IsCompleted() bool {
	return a.CompletedAt != nil
}

// QuizSubmission is one student answer to one question within an attempt.
// Rows are created in bulk when the attempt is submitted and never change.
type QuizSubmission struct {
	ID         uint `gorm:"primaryKey" json:"id"`
	AttemptID  uint `gorm:"not null;index" json:"attempt_id"`
	QuestionID uint `gorm:"not null;index" json:"question_id"`

	Answer       string  `gorm:"type:text;not null" json:"answer"`
	IsCorrect    bool    `gorm:"not null;default:false" json:"is_correct"`
	PointsEarned float64 `gorm:"not null;default:0" json:"points_earned"`

	// RequiresReview marks answers the auto-grader refused to score
	// (essay questions); a teacher grades those by hand.
	RequiresReview bool `gorm:"not null;default:false" json:"requires_review"`

	SubmittedAt time.Time `gorm:"not null" json:"submitted_at"`
}

// TableName sets the GORM table name.
func (QuizSubmission) TableName() string {
	return "quiz_submissions"
}
