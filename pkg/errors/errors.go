package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error представляет кастомную ошибку с дополнительной информацией
type Error struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// ErrorCode представляет код ошибки
type ErrorCode string

// Определение кодов ошибок
const (
	// Ошибки провайдера идентификации
	ErrInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrAccountExists      ErrorCode = "ACCOUNT_EXISTS"
	ErrWeakCredential     ErrorCode = "WEAK_CREDENTIAL"
	ErrUserCancelled      ErrorCode = "USER_CANCELLED"
	ErrNotAuthenticated   ErrorCode = "NOT_AUTHENTICATED"

	// Ошибки API платформы
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"
	ErrForbidden    ErrorCode = "FORBIDDEN"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrConflict     ErrorCode = "CONFLICT"
	ErrServer       ErrorCode = "SERVER_ERROR"

	// Общие ошибки
	ErrValidation ErrorCode = "VALIDATION_ERROR"
	ErrNetwork    ErrorCode = "NETWORK_ERROR"
	ErrInternal   ErrorCode = "INTERNAL_ERROR"
)

// Error возвращает сообщение об ошибке
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap возвращает причину ошибки
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is проверяет, является ли ошибка указанного типа
func (e *Error) Is(target error) bool {
	if targetError, ok := target.(*Error); ok {
		return e.Code == targetError.Code
	}
	return false
}

// New создает новую кастомную ошибку
func New(code ErrorCode, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
	}
}

// Wrap оборачивает существующую ошибку в кастомную
func Wrap(err error, code ErrorCode, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// WithDetails добавляет детали к ошибке
func (e *Error) WithDetails(details string) *Error {
	if e == nil {
		return nil
	}
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// CodeOf возвращает код ошибки или ErrInternal для посторонних ошибок
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	var custom *Error
	if stderrors.As(err, &custom) {
		return custom.Code
	}
	return ErrInternal
}

// IsCode проверяет, имеет ли ошибка указанный код
func IsCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}
	var custom *Error
	if stderrors.As(err, &custom) {
		return custom.Code == code
	}
	return false
}

// FromHTTPStatus преобразует HTTP статус ответа бэкенда в кастомную ошибку.
// Сообщение message берется из тела ответа, если бэкенд его вернул.
func FromHTTPStatus(status int, message string) *Error {
	if status >= 200 && status < 300 {
		return nil
	}

	var code ErrorCode
	switch status {
	case http.StatusUnauthorized:
		code = ErrUnauthorized
	case http.StatusForbidden:
		code = ErrForbidden
	case http.StatusNotFound:
		code = ErrNotFound
	case http.StatusConflict:
		code = ErrConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		code = ErrValidation
	default:
		code = ErrServer
	}

	if message == "" {
		message = fmt.Sprintf("сервер вернул статус: %d", status)
	}

	return New(code, message)
}

// HTTPStatus возвращает HTTP статус, соответствующий коду ошибки
func (e *Error) HTTPStatus() int {
	if e == nil {
		return http.StatusOK
	}
	switch e.Code {
	case ErrUnauthorized, ErrNotAuthenticated, ErrInvalidCredentials:
		return http.StatusUnauthorized
	case ErrForbidden:
		return http.StatusForbidden
	case ErrNotFound:
		return http.StatusNotFound
	case ErrConflict, ErrAccountExists:
		return http.StatusConflict
	case ErrValidation, ErrWeakCredential:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// IsAuthFailure сообщает, означает ли ошибка отказ в авторизации (401/403)
func IsAuthFailure(err error) bool {
	return IsCode(err, ErrUnauthorized) || IsCode(err, ErrForbidden)
}
