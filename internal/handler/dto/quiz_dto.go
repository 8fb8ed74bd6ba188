package dto

import (
	"time"

	"github.com/yourusername/classroom-api/internal/domain/entity"
)

// QuestionRequest — вопрос в теле запроса создания викторины
type QuestionRequest struct {
	Text          string   `json:"text" binding:"required"`
	Type          string   `json:"question_type" binding:"required,oneof=multiple_choice true_false short_answer essay"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Points        float64  `json:"points" binding:"required,gt=0"`
	Explanation   string   `json:"explanation"`
}

// CreateQuizRequest — тело запроса создания викторины
type CreateQuizRequest struct {
	Title        string            `json:"title" binding:"required"`
	Description  string            `json:"description"`
	Subject      string            `json:"subject" binding:"required"`
	TimeLimitMin *int              `json:"time_limit"`
	PassingScore float64           `json:"passing_score"`
	Questions    []QuestionRequest `json:"questions" binding:"required,min=1,dive"`
}

// UpdateQuizRequest — тело запроса обновления викторины
type UpdateQuizRequest struct {
	Title        *string  `json:"title"`
	Description  *string  `json:"description"`
	Subject      *string  `json:"subject"`
	TimeLimitMin *int     `json:"time_limit"`
	PassingScore *float64 `json:"passing_score"`
}

// AnswerRequest — один ответ в теле запроса сдачи викторины
type AnswerRequest struct {
	QuestionID uint   `json:"question_id" binding:"required"`
	Answer     string `json:"answer"`
}

// TeacherQuestionResponse — вопрос для автора викторины, с правильным ответом
type TeacherQuestionResponse struct {
	ID            uint     `json:"id"`
	QuizID        uint     `json:"quiz_id"`
	Text          string   `json:"text"`
	Type          string   `json:"question_type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Points        float64  `json:"points"`
	Explanation   string   `json:"explanation,omitempty"`
}

// QuizResponse представляет викторину в формате для ответа клиенту.
// Questions omit the correct answers; the teacher view uses
// TeacherQuestions instead.
type QuizResponse struct {
	ID               uint                      `json:"id"`
	Title            string                    `json:"title"`
	Description      string                    `json:"description,omitempty"`
	Subject          string                    `json:"subject"`
	TimeLimitMin     *int                      `json:"time_limit,omitempty"`
	PassingScore     float64                   `json:"passing_score"`
	IsActive         bool                      `json:"is_active"`
	CreatorID        uint                      `json:"creator_id"`
	QuestionCount int               `json:"question_count"`
	Questions     []entity.Question `json:"questions,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// TeacherQuizResponse — викторина для ее автора, вопросы с ответами
type TeacherQuizResponse struct {
	QuizResponse
	Questions []TeacherQuestionResponse `json:"questions,omitempty"`
}

// NewQuizResponse создает DTO для викторины. Вопросы сериализуются без
// правильных ответов.
func NewQuizResponse(quiz *entity.Quiz, includeQuestions bool) *QuizResponse {
	resp := &QuizResponse{
		ID:            quiz.ID,
		Title:         quiz.Title,
		Description:   quiz.Description,
		Subject:       quiz.Subject,
		TimeLimitMin:  quiz.TimeLimitMin,
		PassingScore:  quiz.PassingScore,
		IsActive:      quiz.IsActive,
		CreatorID:     quiz.CreatorID,
		QuestionCount: len(quiz.Questions),
		CreatedAt:     quiz.CreatedAt,
		UpdatedAt:     quiz.UpdatedAt,
	}
	if includeQuestions {
		resp.Questions = quiz.Questions
	}
	return resp
}

// NewTeacherQuizResponse создает DTO для автора викторины
func NewTeacherQuizResponse(quiz *entity.Quiz) *TeacherQuizResponse {
	questions := make([]TeacherQuestionResponse, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		questions = append(questions, TeacherQuestionResponse{
			ID:            q.ID,
			QuizID:        q.QuizID,
			Text:          q.Text,
			Type:          q.Type,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			Points:        q.Points,
			Explanation:   q.Explanation,
		})
	}

	base := NewQuizResponse(quiz, false)
	return &TeacherQuizResponse{
		QuizResponse: *base,
		Questions:    questions,
	}
}

// AttemptSummaryResponse — краткая сводка попытки для списков
type AttemptSummaryResponse struct {
	ID           uint       `json:"id"`
	QuizID       uint       `json:"quiz_id"`
	StudentID    uint       `json:"student_id"`
	StartedAt    time.Time  `json:"started_at"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Score        *float64   `json:"score,omitempty"`
	IsPassed     bool       `json:"is_passed"`
	TimeTakenSec int        `json:"time_taken"`
}

// NewAttemptSummaryResponse создает DTO для попытки
func NewAttemptSummaryResponse(a *entity.QuizAttempt) *AttemptSummaryResponse {
	return &AttemptSummaryResponse{
		ID:           a.ID,
		QuizID:       a.QuizID,
		StudentID:    a.StudentID,
		StartedAt:    a.StartedAt,
		CompletedAt:  a.CompletedAt,
		Score:        a.Score,
		IsPassed:     a.IsPassed,
		TimeTakenSec: a.TimeTakenSec,
	}
}
