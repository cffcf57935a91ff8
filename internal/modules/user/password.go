package user

import (
	"strings"
	"unicode"

	"moviecatalog/internal/pkg/validator"
)

const minPasswordLength = 8

func checkPassword(errs validator.Errors, password, confirm string) {
	if password != confirm {
		errs.Add("password2", msgPasswordsDiffer)
		return
	}
	if len([]rune(password)) < minPasswordLength {
		errs.Add("password", msgPasswordShort)
		return
	}
	if strings.IndexFunc(password, func(r rune) bool { return !unicode.IsDigit(r) }) < 0 {
		errs.Add("password", msgPasswordNumeric)
	}
}

// validUsername allows letters, digits and @.+-_ only.
func validUsername(name string) bool {
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune("@.+-_", r) {
			continue
		}
		return false
	}
	return name != ""
}
