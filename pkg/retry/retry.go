package retry

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Config содержит конфигурацию повторных попыток
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Jitter       bool
}

// DefaultConfig возвращает конфигурацию по умолчанию для читающих запросов к API
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Func представляет функцию для повторной попытки
type Func func(ctx context.Context) error

// Retryable сообщает, имеет ли смысл повторять операцию.
// Отказы в авторизации и ошибки валидации повторять бессмысленно.
type Retryable func(err error) bool

// WithRetry выполняет функцию с retry логикой и экспоненциальной задержкой
func WithRetry(ctx context.Context, config Config, retryable Retryable, operation Func) error {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 1
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		lastErr = operation(ctx)
		if lastErr == nil {
			return nil
		}

		if retryable != nil && !retryable(lastErr) {
			return lastErr
		}

		if attempt == config.MaxAttempts {
			break
		}

		// Вычисляем задержку перед следующей попыткой
		sleep := delay
		if config.Jitter {
			sleep += time.Duration(rand.Int63n(int64(delay)/2 + 1))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleep):
		}

		delay = time.Duration(float64(delay) * config.Multiplier)
		if config.MaxDelay > 0 && delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return fmt.Errorf("operation failed after %d attempts: %w", config.MaxAttempts, lastErr)
}
