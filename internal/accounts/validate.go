package accounts

import (
	"regexp"
	"strings"
	"time"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const (
	minPasswordLen = 6
	maxPasswordLen = 50
)

func validateUsername(username string) error {
	if strings.TrimSpace(username) == "" {
		return ErrMissingUsername
	}
	// Login dispatches on '@' to pick the lookup key, so a username
	// containing one would be unreachable.
	if strings.Contains(username, "@") {
		return ErrInvalidUsername
	}
	return nil
}

func validateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

// validatePassword enforces the shared strength policy: length in [6,50],
// at least one letter and one digit.
func validatePassword(password string) error {
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return ErrWeakPassword
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrWeakPassword
	}
	return nil
}

func validateSecurityQA(question, answer string) error {
	if strings.TrimSpace(question) == "" || strings.TrimSpace(answer) == "" {
		return ErrMissingSecurityQA
	}
	return nil
}

func validateBirthday(birthday string) error {
	if _, err := time.Parse("2006-01-02", birthday); err != nil {
		return ErrInvalidBirthday
	}
	return nil
}
