package entity

import (
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// User roles.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
)

// User represents a platform account, either a tutor or a student.
type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Email    string `gorm:"size:100;not null;uniqueIndex" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`
	Role     string `gorm:"size:20;not null;default:'student';index" json:"role"`

	// TutorID links a student to their tutor. Null for teachers.
	TutorID *uint `gorm:"index" json:"tutor_id,omitempty"`

	// TutorCode is the short public code a teacher shares so students can
	// self-link during registration. Null for students.
	TutorCode *string `gorm:"size:10;uniqueIndex" json:"tutor_code,omitempty"`

	IsActive  bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName sets the GORM table name.
func (User) TableName() string {
	return "users"
}

// IsTeacher reports whether the user has the teacher role.
func (u *User) IsTeacher() bool {
	return u.Role == RoleTeacher
}

// IsStudent reports whether the user has the student role.
func (u *User) IsStudent() bool {
	return u.Role == RoleStudent
}

// BeforeSave hashes the password unless it is already a bcrypt hash.
func (u *User) BeforeSave(tx *gorm.DB) error {
	if len(u.Password) > 0 && !strings.HasPrefix(u.Password, "$2a$") &&
		!strings.HasPrefix(u.Password, "$2b$") && !strings.HasPrefix(u.Password, "$2y$") {
		hashedPassword, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
		if err != nil {
			log.Printf("[User.BeforeSave] failed to hash password for email=%s: %v", u.Email, err)
			return err
		}
		u.Password = string(hashedPassword)
	}
	return nil
}

// CheckPassword reports whether the given plaintext password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password))
	return err == nil
}
