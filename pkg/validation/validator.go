package validation

import (
	"fmt"
	"net/url"
	"strings"
	"unicode"
)

// Validator предоставляет общие функции валидации пользовательского ввода
type Validator struct{}

// NewValidator создает новый Validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateEmail проверяет корректность email адреса
func (v *Validator) ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email is required")
	}

	if strings.ContainsAny(email, " \t\n\r") {
		return fmt.Errorf("email contains invalid whitespace characters")
	}

	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return fmt.Errorf("invalid email format: %s", email)
	}

	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("invalid email domain: %s", domain)
	}

	return nil
}

// passwordSpecials содержит спецсимволы, принимаемые формой регистрации
const passwordSpecials = "@$!%*?&"

// ValidatePassword проверяет пароль по политике формы регистрации:
// минимум 8 символов, хотя бы одна заглавная буква, одна строчная,
// одна цифра и один спецсимвол
func (v *Validator) ValidatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password is required")
	}

	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(passwordSpecials, r):
			hasSpecial = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasDigit {
		return fmt.Errorf("password must contain at least one digit")
	}
	if !hasSpecial {
		return fmt.Errorf("password must contain at least one special character (%s)", passwordSpecials)
	}

	return nil
}

// ValidatePhotoURL проверяет URL изображения профиля.
// Пустое значение допустимо: фото в профиле необязательно.
func (v *Validator) ValidatePhotoURL(photoURL string) error {
	if photoURL == "" {
		return nil
	}

	parsedURL, err := url.Parse(photoURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("photo URL must use http or https scheme, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("photo URL must have a valid host")
	}

	if strings.ContainsAny(photoURL, " \t\n\r") {
		return fmt.Errorf("photo URL contains invalid whitespace characters")
	}

	return nil
}

// ValidateCourseTitle проверяет заголовок курса
func (v *Validator) ValidateCourseTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return fmt.Errorf("course title is required")
	}
	if len(title) > 200 {
		return fmt.Errorf("course title must not exceed 200 characters, got: %d", len(title))
	}
	return nil
}

// ValidateSeats проверяет количество мест на курсе
func (v *Validator) ValidateSeats(seats int) error {
	if seats <= 0 {
		return fmt.Errorf("seats must be a positive number, got: %d", seats)
	}
	if seats > 10000 {
		return fmt.Errorf("seats must not exceed 10000, got: %d", seats)
	}
	return nil
}

// ValidateCourseID проверяет идентификатор курса
func (v *Validator) ValidateCourseID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("course id is required")
	}
	if strings.ContainsAny(id, " \t\n\r/") {
		return fmt.Errorf("course id contains invalid characters")
	}
	return nil
}
