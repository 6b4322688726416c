package util

import (
	"fmt"
	"unicode"
)

// ValidatePassphrase enforces the minimum strength for export passphrases.
func ValidatePassphrase(pass string, minLen int) error {
	if len([]rune(pass)) < minLen {
		return fmt.Errorf("passphrase must be at least %d characters", minLen)
	}
	var hasLetter, hasDigit bool
	for _, r := range pass {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("passphrase must contain letters and digits")
	}
	return nil
}
