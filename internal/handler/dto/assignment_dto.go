package dto

import "time"

// CreateAssignmentRequest — тело запроса создания задания
type CreateAssignmentRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description"`
	Subject     string    `json:"subject" binding:"required"`
	DueDate     time.Time `json:"due_date" binding:"required"`
	MaxPoints   float64   `json:"max_points"`
}

// SubmitAssignmentRequest — тело запроса сдачи задания
type SubmitAssignmentRequest struct {
	Content string `json:"content"`
	FileURL string `json:"file_url"`
}

// GradeSubmissionRequest — тело запроса выставления оценки
type GradeSubmissionRequest struct {
	Score    *float64 `json:"score" binding:"required,gte=0"`
	Feedback string   `json:"feedback"`
}
