package auth

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword hashes a plaintext password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// DefaultPassword derives the initial password handed to a patient registered
// at a camp desk: the first four letters of the name followed by the last
// four digits of the phone number. Names shorter than four runes use the
// whole name. Combining marks stay attached to the letter they modify, so
// the cut never splits a Devanagari conjunct.
func DefaultPassword(name, phone string) string {
	var letters []rune
	for _, r := range name {
		if unicode.IsSpace(r) {
			if len(letters) >= 4 {
				break
			}
			continue
		}
		if len(letters) >= 4 && !unicode.In(r, unicode.Mn, unicode.Mc, unicode.Me) {
			break
		}
		letters = append(letters, r)
	}

	digits := strings.Map(func(r rune) rune {
		if r < '0' || r > '9' {
			return -1
		}
		return r
	}, phone)
	if len(digits) > 4 {
		digits = digits[len(digits)-4:]
	}

	return string(letters) + digits
}
