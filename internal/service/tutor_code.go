package service

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/yourusername/classroom-api/internal/domain/repository"
)

// Alphabet without lookalike characters (0/O, 1/I/L).
const (
	tutorCodeLetters = "ABCDEFGHJKMNPQRSTUVWXYZ"
	tutorCodeDigits  = "23456789"
	tutorCodeLength  = 8
	tutorCodeRetries = 10
)

// generateTutorCode создает уникальный код наставника. Код начинается с буквы,
// чтобы не путать его с числовыми идентификаторами.
func generateTutorCode(userRepo repository.UserRepository) (string, error) {
	alphabet := tutorCodeLetters + tutorCodeDigits

	for i := 0; i < tutorCodeRetries; i++ {
		code := make([]byte, tutorCodeLength)
		for j := range code {
			var pool string
			if j == 0 {
				pool = tutorCodeLetters
			} else {
				pool = alphabet
			}
			n, err := rand.Int(rand.Reader, big.NewInt(int64(len(pool))))
			if err != nil {
				return "", fmt.Errorf("failed to generate tutor code: %w", err)
			}
			code[j] = pool[n.Int64()]
		}

		exists, err := userRepo.TutorCodeExists(string(code))
		if err != nil {
			return "", err
		}
		if !exists {
			return string(code), nil
		}
	}

	return "", fmt.Errorf("failed to generate a unique tutor code after %d attempts", tutorCodeRetries)
}
