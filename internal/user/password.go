package user

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
)

const bcryptCost = 8

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func CheckPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// ValidatePassword requires at least 8 characters with one letter and one digit.
func ValidatePassword(pw string) error {
	if len(pw) < 8 {
		return apperr.Invalid("password must be at least 8 characters")
	}
	var letter, digit bool
	for _, r := range pw {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	if !letter || !digit {
		return apperr.Invalid("password must contain at least 1 letter and 1 number")
	}
	return nil
}
