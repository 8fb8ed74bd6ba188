package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/domain/repository"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// QuestionInput carries the fields needed to create or update a question.
type QuestionInput struct {
	Text          string
	Type          string
	Options       []string
	CorrectAnswer string
	Points        float64
	Explanation   string
}

// CreateQuizInput carries the fields needed to create a quiz.
type CreateQuizInput struct {
	Title        string
	Description  string
	Subject      string
	TimeLimitMin *int
	PassingScore float64
	Questions    []QuestionInput
}

// UpdateQuizInput carries the mutable quiz fields.
type UpdateQuizInput struct {
	Title        *string
	Description  *string
	Subject      *string
	TimeLimitMin *int
	PassingScore *float64
}

// QuizService отвечает за создание и управление викторинами
type QuizService struct {
	quizRepo     repository.QuizRepository
	questionRepo repository.QuestionRepository
	userRepo     repository.UserRepository
	emailService EmailService
}

// NewQuizService создает новый сервис викторин
func NewQuizService(
	quizRepo repository.QuizRepository,
	questionRepo repository.QuestionRepository,
	userRepo repository.UserRepository,
	emailService EmailService,
) *QuizService {
	return &QuizService{
		quizRepo:     quizRepo,
		questionRepo: questionRepo,
		userRepo:     userRepo,
		emailService: emailService,
	}
}

// CreateQuiz создает викторину вместе с вопросами
func (s *QuizService) CreateQuiz(teacherID uint, input CreateQuizInput) (*entity.Quiz, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if strings.TrimSpace(input.Subject) == "" {
		return nil, fmt.Errorf("%w: subject is required", apperrors.ErrValidation)
	}
	if input.PassingScore < 0 || input.PassingScore > 100 {
		return nil, fmt.Errorf("%w: passing score must be between 0 and 100", apperrors.ErrValidation)
	}

	questions := make([]entity.Question, 0, len(input.Questions))
	for i, q := range input.Questions {
		question, err := buildQuestion(q)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		questions = append(questions, *question)
	}

	quiz := &entity.Quiz{
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Subject:      strings.TrimSpace(input.Subject),
		TimeLimitMin: input.TimeLimitMin,
		PassingScore: input.PassingScore,
		IsActive:     true,
		CreatorID:    teacherID,
		Questions:    questions,
	}

	if err := s.quizRepo.Create(quiz); err != nil {
		return nil, err
	}

	log.Printf("[QuizService] Created quiz #%d (%d questions) by teacher #%d", quiz.ID, len(questions), teacherID)

	// Оповещаем учеников учителя о новой викторине
	go s.notifyStudents(quiz)

	return quiz, nil
}

// notifyStudents рассылает ученикам автора письмо о новой викторине
func (s *QuizService) notifyStudents(quiz *entity.Quiz) {
	students, err := s.userRepo.ListStudentsByTutor(quiz.CreatorID)
	if err != nil {
		log.Printf("[QuizService] Quiz #%d notification skipped, student lookup failed: %v", quiz.ID, err)
		return
	}
	if len(students) == 0 {
		return
	}

	recipients := make([]string, 0, len(students))
	for _, student := range students {
		recipients = append(recipients, student.Email)
	}

	msg := EmailMessage{
		To:             recipients,
		Subject:        fmt.Sprintf("New quiz: %s", quiz.Title),
		Text:           fmt.Sprintf("A new quiz %q (%s) is available. Log in to take it.", quiz.Title, quiz.Subject),
		IdempotencyKey: uuid.NewString(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()
	if err := s.emailService.Send(ctx, msg); err != nil {
		log.Printf("[QuizService] Quiz #%d notification email failed: %v", quiz.ID, err)
	}
}

// GetQuizForTeacher возвращает викторину с вопросами, проверяя владельца
func (s *QuizService) GetQuizForTeacher(quizID, teacherID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CreatorID != teacherID {
		return nil, fmt.Errorf("%w: quiz belongs to another teacher", apperrors.ErrForbidden)
	}
	return quiz, nil
}

// GetQuizForStudent returns an active quiz with its questions. Inactive
// quizzes are invisible to students.
func (s *QuizService) GetQuizForStudent(quizID uint) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetWithQuestions(quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive {
		return nil, apperrors.ErrNotFound
	}
	return quiz, nil
}

// ListTeacherQuizzes возвращает викторины учителя
func (s *QuizService) ListTeacherQuizzes(teacherID uint, activeOnly bool) ([]entity.Quiz, error) {
	return s.quizRepo.ListByCreator(teacherID, activeOnly)
}

// ListActiveQuizzes возвращает активные викторины для учеников
func (s *QuizService) ListActiveQuizzes() ([]entity.Quiz, error) {
	return s.quizRepo.ListActive()
}

// UpdateQuiz обновляет поля викторины
func (s *QuizService) UpdateQuiz(quizID, teacherID uint, input UpdateQuizInput) (*entity.Quiz, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CreatorID != teacherID {
		return nil, fmt.Errorf("%w: quiz belongs to another teacher", apperrors.ErrForbidden)
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", apperrors.ErrValidation)
		}
		quiz.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		quiz.Description = *input.Description
	}
	if input.Subject != nil {
		if strings.TrimSpace(*input.Subject) == "" {
			return nil, fmt.Errorf("%w: subject cannot be empty", apperrors.ErrValidation)
		}
		quiz.Subject = strings.TrimSpace(*input.Subject)
	}
	if input.TimeLimitMin != nil {
		quiz.TimeLimitMin = input.TimeLimitMin
	}
	if input.PassingScore != nil {
		if *input.PassingScore < 0 || *input.PassingScore > 100 {
			return nil, fmt.Errorf("%w: passing score must be between 0 and 100", apperrors.ErrValidation)
		}
		quiz.PassingScore = *input.PassingScore
	}

	if err := s.quizRepo.Update(quiz); err != nil {
		return nil, err
	}
	return quiz, nil
}

// SetActive активирует или деактивирует викторину
func (s *QuizService) SetActive(quizID, teacherID uint, active bool) error {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return err
	}
	if quiz.CreatorID != teacherID {
		return fmt.Errorf("%w: quiz belongs to another teacher", apperrors.ErrForbidden)
	}
	return s.quizRepo.SetActive(quizID, active)
}

// DeleteQuiz removes a quiz and its questions. Deletion is refused once any
// attempt references the quiz; deactivate it instead.
func (s *QuizService) DeleteQuiz(quizID, teacherID uint) error {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return err
	}
	if quiz.CreatorID != teacherID {
		return fmt.Errorf("%w: quiz belongs to another teacher", apperrors.ErrForbidden)
	}

	hasAttempts, err := s.quizRepo.HasAttempts(quizID)
	if err != nil {
		return err
	}
	if hasAttempts {
		return fmt.Errorf("%w: quiz has student attempts, deactivate it instead of deleting", apperrors.ErrConflict)
	}

	return s.quizRepo.Delete(quizID)
}

// AddQuestions добавляет вопросы в викторину
func (s *QuizService) AddQuestions(quizID, teacherID uint, inputs []QuestionInput) ([]entity.Question, error) {
	quiz, err := s.quizRepo.GetByID(quizID)
	if err != nil {
		return nil, err
	}
	if quiz.CreatorID != teacherID {
		return nil, fmt.Errorf("%w: quiz belongs to another teacher", apperrors.ErrForbidden)
	}
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: at least one question is required", apperrors.ErrValidation)
	}

	questions := make([]entity.Question, 0, len(inputs))
	for i, q := range inputs {
		question, err := buildQuestion(q)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		question.QuizID = quizID
		questions = append(questions, *question)
	}

	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// DeleteQuestion удаляет вопрос. Запрещено, если по викторине уже есть попытки.
func (s *QuizService) DeleteQuestion(questionID, teacherID uint) error {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return err
	}
	quiz, err := s.quizRepo.GetByID(question.QuizID)
	if err != nil {
		return err
	}
	if quiz.CreatorID != teacherID {
		return fmt.Errorf("%w: quiz belongs to another teacher", apperrors.ErrForbidden)
	}

	hasAttempts, err := s.quizRepo.HasAttempts(quiz.ID)
	if err != nil {
		return err
	}
	if hasAttempts {
		return fmt.Errorf("%w: quiz has student attempts, questions are frozen", apperrors.ErrConflict)
	}

	return s.questionRepo.Delete(questionID)
}

// buildQuestion валидирует входные данные и собирает сущность вопроса
func buildQuestion(input QuestionInput) (*entity.Question, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if input.Points <= 0 {
		return nil, fmt.Errorf("%w: points must be positive", apperrors.ErrValidation)
	}

	question := &entity.Question{
		Text:          strings.TrimSpace(input.Text),
		Type:          input.Type,
		Options:       entity.StringArray(input.Options),
		CorrectAnswer: strings.TrimSpace(input.CorrectAnswer),
		Points:        input.Points,
		Explanation:   input.Explanation,
	}

	switch input.Type {
	case entity.QuestionTypeMultipleChoice:
		if len(input.Options) < 2 {
			return nil, fmt.Errorf("%w: multiple choice needs at least 2 options", apperrors.ErrValidation)
		}
		found := false
		for _, opt := range input.Options {
			if strings.EqualFold(strings.TrimSpace(opt), question.CorrectAnswer) {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: correct answer must be one of the options", apperrors.ErrValidation)
		}

	case entity.QuestionTypeTrueFalse:
		answer := strings.ToLower(question.CorrectAnswer)
		if answer != "true" && answer != "false" {
			return nil, fmt.Errorf("%w: true/false answer must be 'true' or 'false'", apperrors.ErrValidation)
		}
		question.Options = entity.StringArray{"true", "false"}

	case entity.QuestionTypeShortAnswer:
		if question.CorrectAnswer == "" {
			return nil, fmt.Errorf("%w: short answer question needs a correct answer", apperrors.ErrValidation)
		}

	case entity.QuestionTypeEssay:
		// Essays are graded manually; no correct answer to validate.
		question.CorrectAnswer = ""

	default:
		return nil, fmt.Errorf("%w: unknown question type %q", apperrors.ErrValidation, input.Type)
	}

	return question, nil
}
