package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

// TestNewError проверяет создание новой ошибки
func TestNewError(t *testing.T) {
	e := New(ErrNotFound, "course not found")
	if e == nil {
		t.Fatal("Expected error, got nil")
	}

	if e.Code != ErrNotFound {
		t.Errorf("Expected code %s, got %s", ErrNotFound, e.Code)
	}

	if e.Message != "course not found" {
		t.Errorf("Expected message 'course not found', got %s", e.Message)
	}

	if e.Cause != nil {
		t.Error("Expected cause to be nil")
	}
}

// TestWrapError проверяет оборачивание существующей ошибки
func TestWrapError(t *testing.T) {
	originalErr := fmt.Errorf("connection refused")
	e := Wrap(originalErr, ErrNetwork, "identity provider unreachable")

	if e == nil {
		t.Fatal("Expected error, got nil")
	}

	if e.Code != ErrNetwork {
		t.Errorf("Expected code %s, got %s", ErrNetwork, e.Code)
	}

	if e.Cause == nil {
		t.Error("Expected cause, got nil")
	}

	if !errors.Is(e, New(ErrNetwork, "other message")) {
		t.Error("Expected errors.Is to match by code")
	}

	if errors.Unwrap(e) != originalErr {
		t.Error("Expected Unwrap to return the original error")
	}
}

// TestWrapNil проверяет, что оборачивание nil возвращает nil
func TestWrapNil(t *testing.T) {
	if e := Wrap(nil, ErrInternal, "should be nil"); e != nil {
		t.Errorf("Expected nil, got %v", e)
	}
}

// TestWithDetails проверяет добавление деталей к ошибке
func TestWithDetails(t *testing.T) {
	e := New(ErrValidation, "invalid input")
	eWithDetails := e.WithDetails("field 'email' is required")

	if eWithDetails.Details != "field 'email' is required" {
		t.Errorf("Expected details about email, got %s", eWithDetails.Details)
	}

	// Исходная ошибка не должна измениться
	if e.Details != "" {
		t.Error("Original error should not have details")
	}
}

// TestFromHTTPStatus проверяет преобразование HTTP статусов в коды ошибок
func TestFromHTTPStatus(t *testing.T) {
	cases := []struct {
		status int
		code   ErrorCode
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusConflict, ErrConflict},
		{http.StatusBadRequest, ErrValidation},
		{http.StatusInternalServerError, ErrServer},
		{http.StatusBadGateway, ErrServer},
	}

	for _, tc := range cases {
		e := FromHTTPStatus(tc.status, "")
		if e == nil {
			t.Fatalf("Expected error for status %d, got nil", tc.status)
		}
		if e.Code != tc.code {
			t.Errorf("Status %d: expected code %s, got %s", tc.status, tc.code, e.Code)
		}
	}

	if e := FromHTTPStatus(http.StatusOK, ""); e != nil {
		t.Errorf("Expected nil for 200, got %v", e)
	}

	// Сообщение из тела ответа имеет приоритет
	e := FromHTTPStatus(http.StatusConflict, "already enrolled")
	if e.Message != "already enrolled" {
		t.Errorf("Expected server message, got %s", e.Message)
	}
}

// TestHTTPStatus проверяет обратное преобразование кода ошибки в HTTP статус
func TestHTTPStatus(t *testing.T) {
	if got := New(ErrInvalidCredentials, "bad password").HTTPStatus(); got != http.StatusUnauthorized {
		t.Errorf("Expected 401, got %d", got)
	}
	if got := New(ErrAccountExists, "exists").HTTPStatus(); got != http.StatusConflict {
		t.Errorf("Expected 409, got %d", got)
	}
	if got := New(ErrWeakCredential, "weak").HTTPStatus(); got != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", got)
	}
}

// TestIsAuthFailure проверяет распознавание отказов в авторизации
func TestIsAuthFailure(t *testing.T) {
	if !IsAuthFailure(New(ErrUnauthorized, "401")) {
		t.Error("Expected 401 to be an auth failure")
	}
	if !IsAuthFailure(New(ErrForbidden, "403")) {
		t.Error("Expected 403 to be an auth failure")
	}
	if IsAuthFailure(New(ErrServer, "500")) {
		t.Error("Expected 500 not to be an auth failure")
	}
	if IsAuthFailure(nil) {
		t.Error("Expected nil not to be an auth failure")
	}
}

// TestCodeOf проверяет извлечение кода из произвольных ошибок
func TestCodeOf(t *testing.T) {
	if code := CodeOf(New(ErrUserCancelled, "cancelled")); code != ErrUserCancelled {
		t.Errorf("Expected USER_CANCELLED, got %s", code)
	}
	if code := CodeOf(fmt.Errorf("plain")); code != ErrInternal {
		t.Errorf("Expected INTERNAL_ERROR for plain error, got %s", code)
	}
	if code := CodeOf(nil); code != "" {
		t.Errorf("Expected empty code for nil, got %s", code)
	}
}
