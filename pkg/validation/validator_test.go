package validation

import "testing"

// TestValidateEmail проверяет валидацию email адресов
func TestValidateEmail(t *testing.T) {
	v := NewValidator()

	valid := []string{
		"user@example.com",
		"first.last@sub.domain.org",
		"a@b.co",
	}
	for _, email := range valid {
		if err := v.ValidateEmail(email); err != nil {
			t.Errorf("Expected %q to be valid, got: %v", email, err)
		}
	}

	invalid := []string{
		"",
		"no-at-sign",
		"@example.com",
		"user@",
		"user@nodot",
		"user@.com",
		"user @example.com",
	}
	for _, email := range invalid {
		if err := v.ValidateEmail(email); err == nil {
			t.Errorf("Expected %q to be invalid", email)
		}
	}
}

// TestValidatePassword проверяет политику паролей формы регистрации
func TestValidatePassword(t *testing.T) {
	v := NewValidator()

	valid := []string{"Passw0rd!", "Str0ng&Pass", "A1b2c3d?"}
	for _, password := range valid {
		if err := v.ValidatePassword(password); err != nil {
			t.Errorf("Expected %q to be valid, got: %v", password, err)
		}
	}

	cases := map[string]string{
		"":           "empty",
		"Sh0rt!":     "too short",
		"alllower1!": "no uppercase",
		"ALLUPPER1!": "no lowercase",
		"NoDigitsX!": "no digit",
		"Passw0rd":   "no special character",
	}
	for password, reason := range cases {
		if err := v.ValidatePassword(password); err == nil {
			t.Errorf("Expected password %q to fail (%s)", password, reason)
		}
	}
}

// TestValidatePhotoURL проверяет валидацию URL фото профиля
func TestValidatePhotoURL(t *testing.T) {
	v := NewValidator()

	// Пустое фото допустимо
	if err := v.ValidatePhotoURL(""); err != nil {
		t.Errorf("Expected empty photo URL to be valid, got: %v", err)
	}

	if err := v.ValidatePhotoURL("https://cdn.example.com/avatar.png"); err != nil {
		t.Errorf("Expected valid photo URL, got: %v", err)
	}

	invalid := []string{
		"ftp://example.com/a.png",
		"not a url",
		"https://",
	}
	for _, photoURL := range invalid {
		if err := v.ValidatePhotoURL(photoURL); err == nil {
			t.Errorf("Expected %q to be invalid", photoURL)
		}
	}
}

// TestValidateCourseFields проверяет валидацию полей курса
func TestValidateCourseFields(t *testing.T) {
	v := NewValidator()

	if err := v.ValidateCourseTitle("Introduction to Go"); err != nil {
		t.Errorf("Expected valid title, got: %v", err)
	}
	if err := v.ValidateCourseTitle("   "); err == nil {
		t.Error("Expected blank title to be invalid")
	}

	if err := v.ValidateSeats(30); err != nil {
		t.Errorf("Expected valid seats, got: %v", err)
	}
	if err := v.ValidateSeats(0); err == nil {
		t.Error("Expected zero seats to be invalid")
	}
	if err := v.ValidateSeats(20000); err == nil {
		t.Error("Expected oversized seats to be invalid")
	}

	if err := v.ValidateCourseID("c1"); err != nil {
		t.Errorf("Expected valid course id, got: %v", err)
	}
	if err := v.ValidateCourseID("c 1"); err == nil {
		t.Error("Expected course id with space to be invalid")
	}
}
