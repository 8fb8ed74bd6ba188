package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

const defaultAIModel = openai.GPT4oMini

// GeneratedQuestion is one AI-suggested quiz question.
type GeneratedQuestion struct {
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Points        float64  `json:"points"`
	Explanation   string   `json:"explanation"`
}

// GeneratedQuiz is the AI quiz draft a teacher can edit before saving.
type GeneratedQuiz struct {
	Title     string              `json:"title"`
	Subject   string              `json:"subject"`
	Questions []GeneratedQuestion `json:"questions"`
}

// FeedbackSuggestion is an AI draft for grading an assignment submission.
type FeedbackSuggestion struct {
	SuggestedScore float64 `json:"suggested_score"`
	Feedback       string  `json:"feedback"`
	Strengths      string  `json:"strengths"`
	Weaknesses     string  `json:"weaknesses"`
}

// AIService generates teaching content through an OpenAI-compatible API.
// A nil service means the feature is disabled (no API key configured).
type AIService struct {
	api   *openai.Client
	model string
}

// NewAIService создает AI-сервис. Возвращает nil, если ключ не задан.
func NewAIService(apiKey, model string) *AIService {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = defaultAIModel
	}
	return &AIService{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// Enabled reports whether AI tools are configured.
func (s *AIService) Enabled() bool {
	return s != nil
}

// GenerateQuiz просит модель составить черновик викторины
func (s *AIService) GenerateQuiz(ctx context.Context, subject, topic, difficulty string, numQuestions int) (*GeneratedQuiz, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("%w: AI features are not configured", apperrors.ErrValidation)
	}
	if numQuestions <= 0 || numQuestions > 20 {
		numQuestions = 5
	}
	if difficulty == "" {
		difficulty = "medium"
	}

	systemPrompt := `You are an experienced tutor preparing quizzes.
Respond with a JSON object: {"title": string, "subject": string, "questions": [{"text": string, "type": "multiple_choice"|"true_false"|"short_answer", "options": [string], "correct_answer": string, "points": number, "explanation": string}]}.
For multiple_choice provide exactly 4 options and make correct_answer one of them. For true_false the correct_answer is "true" or "false".`

	userPrompt := fmt.Sprintf("Create a %s difficulty quiz with %d questions on %s, topic: %s.",
		difficulty, numQuestions, subject, topic)

	raw, err := s.complete(ctx, systemPrompt, userPrompt, 0.7)
	if err != nil {
		return nil, err
	}

	var quiz GeneratedQuiz
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		return nil, fmt.Errorf("parse AI quiz response: %w", err)
	}
	if len(quiz.Questions) == 0 {
		return nil, fmt.Errorf("AI returned a quiz with no questions")
	}
	if quiz.Subject == "" {
		quiz.Subject = subject
	}
	return &quiz, nil
}

// SuggestFeedback просит модель подготовить черновик оценки сдачи
func (s *AIService) SuggestFeedback(ctx context.Context, submission, rubric, subject string, maxPoints float64) (*FeedbackSuggestion, error) {
	if !s.Enabled() {
		return nil, fmt.Errorf("%w: AI features are not configured", apperrors.ErrValidation)
	}
	if strings.TrimSpace(submission) == "" {
		return nil, fmt.Errorf("%w: submission text is required", apperrors.ErrValidation)
	}

	systemPrompt := fmt.Sprintf(`You are a tutor grading a %s assignment worth %.1f points.
Respond with a JSON object: {"suggested_score": number, "feedback": string, "strengths": string, "weaknesses": string}.
The suggested_score must be between 0 and %.1f.`, subject, maxPoints, maxPoints)

	userPrompt := fmt.Sprintf("Rubric:\n%s\n\nStudent submission:\n%s", rubric, submission)

	raw, err := s.complete(ctx, systemPrompt, userPrompt, 0.3)
	if err != nil {
		return nil, err
	}

	var suggestion FeedbackSuggestion
	if err := json.Unmarshal([]byte(raw), &suggestion); err != nil {
		return nil, fmt.Errorf("parse AI feedback response: %w", err)
	}
	if suggestion.SuggestedScore < 0 {
		suggestion.SuggestedScore = 0
	}
	if suggestion.SuggestedScore > maxPoints {
		suggestion.SuggestedScore = maxPoints
	}
	return &suggestion, nil
}

// CreateLessonPlan просит модель составить план занятия
func (s *AIService) CreateLessonPlan(ctx context.Context, subject, topic, gradeLevel, duration string) (string, error) {
	if !s.Enabled() {
		return "", fmt.Errorf("%w: AI features are not configured", apperrors.ErrValidation)
	}
	if duration == "" {
		duration = "60 minutes"
	}

	systemPrompt := "You are an experienced tutor. Write clear, structured lesson plans in plain text."
	userPrompt := fmt.Sprintf("Create a %s lesson plan on %s (topic: %s) for grade level %s. Include objectives, materials, activities with timing, and a short assessment.",
		duration, subject, topic, gradeLevel)

	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("AI API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

func (s *AIService) complete(ctx context.Context, systemPrompt, userPrompt string, temperature float32) (string, error) {
	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("AI API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("AI returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
