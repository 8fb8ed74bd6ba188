package dto

// CreateAnnouncementRequest — тело запроса создания объявления
type CreateAnnouncementRequest struct {
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content" binding:"required"`
	IsImportant bool   `json:"is_important"`
}

// CreateSubjectRequest — тело запроса создания предмета
type CreateSubjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateGradeRequest — тело запроса создания класса
type CreateGradeRequest struct {
	Name string `json:"name" binding:"required"`
}

// EnrollStudentRequest — тело запроса записи ученика в класс
type EnrollStudentRequest struct {
	StudentID uint `json:"student_id" binding:"required"`
}

// GenerateQuizRequest — тело запроса генерации викторины через AI
type GenerateQuizRequest struct {
	Subject      string `json:"subject" binding:"required"`
	Topic        string `json:"topic" binding:"required"`
	Difficulty   string `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
	NumQuestions int    `json:"num_questions" binding:"omitempty,min=1,max=20"`
}

// SuggestFeedbackRequest — тело запроса AI-черновика оценки
type SuggestFeedbackRequest struct {
	Submission string  `json:"submission" binding:"required"`
	Rubric     string  `json:"rubric"`
	Subject    string  `json:"subject" binding:"required"`
	MaxPoints  float64 `json:"max_points" binding:"required,gt=0"`
}

// LessonPlanRequest — тело запроса генерации плана занятия
type LessonPlanRequest struct {
	Subject    string `json:"subject" binding:"required"`
	Topic      string `json:"topic" binding:"required"`
	GradeLevel string `json:"grade_level" binding:"required"`
	Duration   string `json:"duration"`
}
