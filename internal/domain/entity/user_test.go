package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUser_BeforeSave_HashesPlaintextPassword(t *testing.T) {
	user := &User{
		Email:    "student@example.com",
		Password: "secret123",
	}

	err := user.BeforeSave(nil)

	require.NoError(t, err)
	assert.NotEqual(t, "secret123", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("secret123")))
}

func TestUser_BeforeSave_SkipsExistingHash(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.DefaultCost)
	require.NoError(t, err)

	user := &User{
		Email:    "student@example.com",
		Password: string(hashed),
	}

	err = user.BeforeSave(nil)

	require.NoError(t, err)
	assert.Equal(t, string(hashed), user.Password, "an existing bcrypt hash must not be re-hashed")
}

func TestUser_CheckPassword(t *testing.T) {
	user := &User{Password: "secret123"}
	require.NoError(t, user.BeforeSave(nil))

	assert.True(t, user.CheckPassword("secret123"))
	assert.False(t, user.CheckPassword("wrong"))
}

func TestUser_Roles(t *testing.T) {
	teacher := &User{Role: RoleTeacher}
	student := &User{Role: RoleStudent}

	assert.True(t, teacher.IsTeacher())
	assert.False(t, teacher.IsStudent())
	assert.True(t, student.IsStudent())
	assert.False(t, student.IsTeacher())
}
