package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength      = 3
	MaxUsernameLength      = 30
	MinTitleLength         = 3
	MaxTitleLength         = 200
	MaxDescriptionLength   = 5000
	MaxNotesLength         = 5000
	MaxClientNameLength    = 200
	MaxLineItemDescription = 500
	MaxLineItemsCount      = 200
	MinAmount              = 0.0
	MaxAmount              = 100000000.0 // 100 миллионов
	MaxTaxRatePercent      = 100.0
	MinExpiryDays          = 1
	MaxExpiryDays          = 365
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	// Базовая проверка формата
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	// Только буквы, цифры и подчеркивание
	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateTitle проверяет заголовок документа или задачи.
func ValidateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("заголовок обязателен")
	}

	title = strings.TrimSpace(title)

	return ValidateLength("заголовок", title, MinTitleLength, MaxTitleLength)
}

// ValidateAmount проверяет денежную сумму.
func ValidateAmount(fieldName string, amount float64) error {
	if amount < MinAmount {
		return fmt.Errorf("%s не может быть отрицательной", fieldName)
	}
	if amount > MaxAmount {
		return fmt.Errorf("%s превышает допустимый максимум", fieldName)
	}
	return nil
}

// ValidateTaxRate проверяет налоговую ставку в процентах.
func ValidateTaxRate(rate float64) error {
	if rate < 0 || rate > MaxTaxRatePercent {
		return fmt.Errorf("налоговая ставка должна быть от 0 до %.0f процентов", MaxTaxRatePercent)
	}
	return nil
}

// ValidateExpiryDays проверяет срок действия предложения в днях.
func ValidateExpiryDays(days int) error {
	if days < MinExpiryDays || days > MaxExpiryDays {
		return fmt.Errorf("срок действия должен быть от %d до %d дней", MinExpiryDays, MaxExpiryDays)
	}
	return nil
}
