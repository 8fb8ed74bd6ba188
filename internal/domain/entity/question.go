package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"
)

// Question types.
const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeTrueFalse      = "true_false"
	QuestionTypeShortAnswer    = "short_answer"
	QuestionTypeEssay          = "essay"
)

// StringArray stores a JSON string list in a JSONB column.
type StringArray []string

// Scan implements sql.Scanner for reading JSONB values.
func (o *StringArray) Scan(value interface{}) error {
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value implements driver.Valuer for writing JSONB values.
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil
	}
	return json.Marshal(o)
}

// Question represents a single question within a quiz.
type Question struct {
	ID     uint   `gorm:"primaryKey" json:"id"`
	QuizID uint   `gorm:"not null;index" json:"quiz_id"`
	Text   string `gorm:"type:text;not null" json:"text"`
	Type   string `gorm:"size:20;not null" json:"question_type"`

	// Options is only meaningful for multiple_choice questions.
	Options StringArray `gorm:"type:jsonb;not null" json:"options"`

	CorrectAnswer string  `gorm:"type:text;not null" json:"-"` // hidden from clients
	Points        float64 `gorm:"not null;default:1" json:"points"`

	// Explanation is shown to the student after grading.
	Explanation string    `gorm:"type:text;not null;default:''" json:"explanation,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Question) TableName() string {
	return "questions"
}

// IsAutoGradable reports whether the question can be graded by answer
// comparison. Essay questions always require manual review.
func (q *Question) IsAutoGradable() bool {
	return q.Type != QuestionTypeEssay
}

// IsCorrect compares a submitted answer against the stored correct answer.
// Comparison is case-insensitive and ignores surrounding whitespace,
// regardless of question type.
func (q *Question) IsCorrect(answer string) bool {
	return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectAnswer))
}

// CalculatePoints returns the points earned for an answer: full points when
// correct, zero otherwise. There is no partial credit.
func (q *Question) CalculatePoints(isCorrect bool) float64 {
	if !isCorrect {
		return 0
	}
	return q.Points
}
