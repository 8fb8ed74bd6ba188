package service

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yourusername/classroom-api/internal/domain/entity"
	"github.com/yourusername/classroom-api/internal/domain/repository"
	apperrors "github.com/yourusername/classroom-api/internal/pkg/errors"
)

// SubjectService отвечает за предметы, классы и записи учеников
type SubjectService struct {
	subjectRepo repository.SubjectRepository
	userRepo    repository.UserRepository
}

// NewSubjectService создает новый сервис предметов
func NewSubjectService(subjectRepo repository.SubjectRepository, userRepo repository.UserRepository) *SubjectService {
	return &SubjectService{
		subjectRepo: subjectRepo,
		userRepo:    userRepo,
	}
}

// CreateSubject создает предмет наставника
func (s *SubjectService) CreateSubject(tutorID uint, name, description string) (*entity.Subject, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: subject name is required", apperrors.ErrValidation)
	}

	subject := &entity.Subject{
		Name:        strings.TrimSpace(name),
		Description: description,
		TutorID:     tutorID,
		IsActive:    true,
	}
	if err := s.subjectRepo.Create(subject); err != nil {
		return nil, err
	}
	return subject, nil
}

// ListSubjects возвращает предметы наставника с классами
func (s *SubjectService) ListSubjects(tutorID uint) ([]entity.Subject, error) {
	return s.subjectRepo.ListByTutor(tutorID)
}

// DeactivateSubject деактивирует предмет
func (s *SubjectService) DeactivateSubject(subjectID, tutorID uint) error {
	subject, err := s.subjectRepo.GetByIDForTutor(subjectID, tutorID)
	if err != nil {
		return err
	}
	subject.IsActive = false
	return s.subjectRepo.Update(subject)
}

// CreateGrade создает класс внутри предмета наставника
func (s *SubjectService) CreateGrade(subjectID, tutorID uint, name string) (*entity.Grade, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: grade name is required", apperrors.ErrValidation)
	}
	if _, err := s.subjectRepo.GetByIDForTutor(subjectID, tutorID); err != nil {
		return nil, err
	}

	grade := &entity.Grade{
		Name:      strings.TrimSpace(name),
		SubjectID: subjectID,
		IsActive:  true,
	}
	if err := s.subjectRepo.CreateGrade(grade); err != nil {
		return nil, err
	}
	return grade, nil
}

// ListGrades возвращает классы предмета наставника
func (s *SubjectService) ListGrades(subjectID, tutorID uint) ([]entity.Grade, error) {
	if _, err := s.subjectRepo.GetByIDForTutor(subjectID, tutorID); err != nil {
		return nil, err
	}
	return s.subjectRepo.ListGradesBySubject(subjectID)
}

// EnrollStudent записывает ученика наставника в класс
func (s *SubjectService) EnrollStudent(gradeID, studentID, tutorID uint) (*entity.StudentGrade, error) {
	if _, err := s.subjectRepo.GetGradeForTutor(gradeID, tutorID); err != nil {
		return nil, err
	}

	student, err := s.userRepo.GetByID(studentID)
	if err != nil {
		return nil, err
	}
	if !student.IsStudent() {
		return nil, fmt.Errorf("%w: user #%d is not a student", apperrors.ErrValidation, studentID)
	}
	if student.TutorID == nil || *student.TutorID != tutorID {
		return nil, fmt.Errorf("%w: student is not linked to you", apperrors.ErrForbidden)
	}

	// Re-enrolling a previously removed student reactivates the record.
	if existing, err := s.subjectRepo.GetEnrollment(gradeID, studentID); err == nil {
		if existing.IsActive {
			return nil, fmt.Errorf("%w: student already enrolled", apperrors.ErrConflict)
		}
		existing.IsActive = true
		existing.EnrolledAt = time.Now().UTC()
		if err := s.subjectRepo.UpdateEnrollment(existing); err != nil {
			return nil, err
		}
		return existing, nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	enrollment := &entity.StudentGrade{
		StudentID:  studentID,
		GradeID:    gradeID,
		EnrolledAt: time.Now().UTC(),
		IsActive:   true,
	}
	if err := s.subjectRepo.Enroll(enrollment); err != nil {
		return nil, err
	}

	log.Printf("[SubjectService] Enrolled student #%d into grade #%d", studentID, gradeID)
	return enrollment, nil
}

// UnenrollStudent отчисляет ученика из класса
func (s *SubjectService) UnenrollStudent(gradeID, studentID, tutorID uint) error {
	if _, err := s.subjectRepo.GetGradeForTutor(gradeID, tutorID); err != nil {
		return err
	}

	enrollment, err := s.subjectRepo.GetEnrollment(gradeID, studentID)
	if err != nil {
		return err
	}
	if !enrollment.IsActive {
		return fmt.Errorf("%w: student is not enrolled", apperrors.ErrConflict)
	}

	enrollment.IsActive = false
	return s.subjectRepo.UpdateEnrollment(enrollment)
}

// ListGradeStudents возвращает учеников класса
func (s *SubjectService) ListGradeStudents(gradeID, tutorID uint) ([]entity.User, error) {
	if _, err := s.subjectRepo.GetGradeForTutor(gradeID, tutorID); err != nil {
		return nil, err
	}

	enrollments, err := s.subjectRepo.ListEnrollments(gradeID)
	if err != nil {
		return nil, err
	}

	students := make([]entity.User, 0, len(enrollments))
	for _, enrollment := range enrollments {
		student, err := s.userRepo.GetByID(enrollment.StudentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				continue
			}
			return nil, err
		}
		students = append(students, *student)
	}
	return students, nil
}
