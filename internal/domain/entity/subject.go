package entity

import (
	"time"
)

// Subject is a teaching area owned by one tutor (e.g. "Mathematics").
type Subject struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:100;not null" json:"name"`
	Description string    `gorm:"size:500;not null;default:''" json:"description,omitempty"`
	TutorID     uint      `gorm:"not null;index" json:"tutor_id"`
	IsActive    bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Grades []Grade `gorm:"foreignKey:SubjectID" json:"grades,omitempty"`
}

// TableName sets the GORM table name.
func (Subject) TableName() string {
	return "subjects"
}

// Grade is a level within a subject (e.g. "Grade 10").
type Grade struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	SubjectID uint      `gorm:"not null;index" json:"subject_id"`
	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (Grade) TableName() string {
	return "grades"
}

// StudentGrade enrolls a student into a grade.
type StudentGrade struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	StudentID  uint      `gorm:"not null;index" json:"student_id"`
	GradeID    uint      `gorm:"not null;index" json:"grade_id"`
	EnrolledAt time.Time `gorm:"not null" json:"enrolled_at"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
}

// TableName sets the GORM table name.
func (StudentGrade) TableName() string {
	return "student_grades"
}
