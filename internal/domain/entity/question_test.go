package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuestion_IsCorrect_ExactMatch(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            1,
		QuizID:        1,
		Text:          "What is the capital of France?",
		Type:          QuestionTypeMultipleChoice,
		Options:       StringArray{"Paris", "London", "Berlin", "Madrid"},
		CorrectAnswer: "Paris",
		Points:        1,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect("Paris"))
}

func TestQuestion_IsCorrect_CaseAndWhitespaceInsensitive(t *testing.T) {
	question := &Question{
		Type:          QuestionTypeShortAnswer,
		CorrectAnswer: "Photosynthesis",
	}

	assert.True(t, question.IsCorrect("photosynthesis"))
	assert.True(t, question.IsCorrect("  PHOTOSYNTHESIS  "))
	assert.True(t, question.IsCorrect("PhotoSynthesis"))
}

func TestQuestion_IsCorrect_WrongAnswer(t *testing.T) {
	question := &Question{
		Type:          QuestionTypeTrueFalse,
		CorrectAnswer: "true",
	}

	assert.False(t, question.IsCorrect("false"))
	assert.False(t, question.IsCorrect(""))
	assert.False(t, question.IsCorrect("tru e"))
}

func TestQuestion_CalculatePoints(t *testing.T) {
	question := &Question{
		Points: 2.5,
	}

	assert.Equal(t, 2.5, question.CalculatePoints(true), "correct answer earns full points")
	assert.Equal(t, 0.0, question.CalculatePoints(false), "wrong answer earns zero, no partial credit")
}

func TestQuestion_IsAutoGradable(t *testing.T) {
	assert.True(t, (&Question{Type: QuestionTypeMultipleChoice}).IsAutoGradable())
	assert.True(t, (&Question{Type: QuestionTypeTrueFalse}).IsAutoGradable())
	assert.True(t, (&Question{Type: QuestionTypeShortAnswer}).IsAutoGradable())
	assert.False(t, (&Question{Type: QuestionTypeEssay}).IsAutoGradable(), "essay questions require manual review")
}

func TestStringArray_Value_Empty(t *testing.T) {
	var opts StringArray

	val, err := opts.Value()

	assert.NoError(t, err)
	assert.Equal(t, []byte("[]"), val, "empty array serializes as [] rather than null")
}

func TestStringArray_Scan_Null(t *testing.T) {
	var opts StringArray

	err := opts.Scan(nil)

	assert.NoError(t, err)
	assert.Empty(t, opts)
}

func TestStringArray_RoundTrip(t *testing.T) {
	src := StringArray{"A", "B", "C"}

	val, err := src.Value()
	assert.NoError(t, err)

	var dst StringArray
	err = dst.Scan(val)
	assert.NoError(t, err)
	assert.Equal(t, src, dst)
}
