package validation

import (
	"strings"
	"testing"
)

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"валидный пароль", "Password123", false},
		{"нет заглавной буквы", "password123", true},
		{"нет строчной буквы", "PASSWORD123", true},
		{"нет цифры", "PasswordOnly", true},
		{"слишком короткий", "Pw1", true},
		{"длиннее лимита bcrypt", strings.Repeat("Aa1", 25), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidatePassword(tc.password)
			if tc.wantErr && err == nil {
				t.Errorf("ожидалась ошибка для %q", tc.password)
			}
			if !tc.wantErr && err != nil {
				t.Errorf("неожиданная ошибка для %q: %v", tc.password, err)
			}
		})
	}
}
