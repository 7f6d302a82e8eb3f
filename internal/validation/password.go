package validation

import (
	"fmt"
	"unicode"
)

// Предел длины защищает bcrypt, который учитывает только первые 72 байта.
const maxPasswordLength = 72

// ValidatePassword проверяет пароль: минимум 8 символов,
// хотя бы одна заглавная и строчная буква и хотя бы одна цифра.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("пароль должен быть не менее 8 символов")
	}
	if len(password) > maxPasswordLength {
		return fmt.Errorf("пароль должен быть не более %d символов", maxPasswordLength)
	}

	var hasUpper, hasLower, hasDigit bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("пароль должен содержать хотя бы одну заглавную букву")
	}
	if !hasLower {
		return fmt.Errorf("пароль должен содержать хотя бы одну строчную букву")
	}
	if !hasDigit {
		return fmt.Errorf("пароль должен содержать хотя бы одну цифру")
	}

	return nil
}
