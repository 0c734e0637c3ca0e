package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

// TestNewMetrics проверяет создание системы метрик
func TestNewMetrics(t *testing.T) {
	m := NewMetrics("test_cli")
	if m == nil {
		t.Fatal("Expected metrics, got nil")
	}

	if m.RequestCount == nil || m.RequestDuration == nil || m.ErrorsCount == nil {
		t.Error("Expected all request metric vectors to be initialized")
	}

	if m.Tracer == nil {
		t.Error("Expected tracer to be initialized")
	}

	// Повторная регистрация не должна паниковать
	m2 := NewMetrics("test_cli")
	if m2 == nil {
		t.Fatal("Expected metrics on re-registration, got nil")
	}
}

// TestObserveRequest проверяет регистрацию исходящих запросов
func TestObserveRequest(t *testing.T) {
	m := NewMetrics("test_cli")
	ctx := context.Background()

	m.ObserveRequest(ctx, "GET", "/api/courses", 200, 120*time.Millisecond)
	m.ObserveRequest(ctx, "POST", "/api/enrollments/toggle", 403, 40*time.Millisecond)
	m.ObserveRequest(ctx, "GET", "/api/my-courses", 500, 10*time.Millisecond)
}

// TestSetSessionState проверяет gauge состояния сессии
func TestSetSessionState(t *testing.T) {
	m := NewMetrics("test_cli")

	m.SetSessionState("resolving")
	m.SetSessionState("authenticated")
	m.SetSessionState("unauthenticated")
}

// TestGetHandler проверяет, что эндпоинт метрик отвечает
func TestGetHandler(t *testing.T) {
	m := NewMetrics("test_cli")
	m.ObserveRequest(context.Background(), "GET", "/api/courses", 200, time.Millisecond)

	req := httptest.NewRequest("GET", "/metrics", nil)
	rec := httptest.NewRecorder()

	m.GetHandler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", rec.Code)
	}
	if rec.Body.Len() == 0 {
		t.Error("Expected metrics body, got empty response")
	}
}

// TestInitializeOpenTelemetry проверяет инициализацию провайдера трассировки
func TestInitializeOpenTelemetry(t *testing.T) {
	if err := InitializeOpenTelemetry("test_cli"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}
