package logger

import (
	"errors"
	"testing"
	"time"
)

// TestNewLogger_DevEnvironment проверяет создание логгера для dev окружения
func TestNewLogger_DevEnvironment(t *testing.T) {
	logger, err := NewLogger("dev", "debug", "test-cli")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if logger == nil {
		t.Fatal("Expected logger, got nil")
	}

	// Проверяем, что можно записывать логи
	logger.Info("Test message")
	logger.With(String("test", "value")).Info("Test message with field")
}

// TestNewLogger_ProdEnvironment проверяет создание логгера для prod окружения
func TestNewLogger_ProdEnvironment(t *testing.T) {
	logger, err := NewLogger("prod", "info", "test-cli")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if logger == nil {
		t.Fatal("Expected logger, got nil")
	}

	logger.Info("Test message")
	logger.Error("Test error")
}

// TestNewLogger_UnknownLevel проверяет, что неизвестный уровень не ломает создание
func TestNewLogger_UnknownLevel(t *testing.T) {
	logger, err := NewLogger("dev", "verbose", "test-cli")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if logger == nil {
		t.Fatal("Expected logger, got nil")
	}
}

// TestLogger_Levels проверяет все уровни логирования
func TestLogger_Levels(t *testing.T) {
	logger, err := NewLogger("dev", "debug", "test-cli")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	logger.Debug("Debug message")
	logger.Info("Info message")
	logger.Warn("Warn message")
	logger.Error("Error message")
}

// TestLogger_Fields проверяет конструкторы полей
func TestLogger_Fields(t *testing.T) {
	logger, err := NewLogger("dev", "debug", "test-cli")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	logger.Info("fields",
		String("s", "v"),
		Int("i", 1),
		Int64("i64", 2),
		Uint64("u64", 3),
		Bool("b", true),
		Duration("d", time.Second),
		Error(errors.New("boom")),
		Any("any", map[string]int{"a": 1}),
	)

	// Error(nil) не должен паниковать
	logger.Info("nil error", Error(nil))
}
