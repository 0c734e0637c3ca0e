package metrics

import (
	"context"
	"time"

	"CourseFlowClient/pkg/logger"
	"CourseFlowClient/pkg/metrics"
)

// CLIMetrics содержит метрики для CLI операций
type CLIMetrics struct {
	metrics.Metrics
	logger logger.Logger
}

// NewCLIMetrics создает новые метрики для CLI
func NewCLIMetrics(log logger.Logger) *CLIMetrics {
	m := metrics.NewMetrics("courseflow_cli")

	return &CLIMetrics{
		Metrics: *m,
		logger:  log,
	}
}

// CommandExecuted регистрирует выполнение команды
func (c *CLIMetrics) CommandExecuted(ctx context.Context, command string, success bool, duration time.Duration) {
	c.logger.Info("Command executed",
		logger.String("command", command),
		logger.Bool("success", success),
		logger.Duration("duration", duration))

	c.RequestCount.WithLabelValues("command", command, getStatusLabel(success)).Inc()
	c.RequestDuration.WithLabelValues("command", command).Observe(duration.Seconds())

	if !success {
		c.ErrorsCount.WithLabelValues("command", command, "execution_failed").Inc()
	}
}

// AuthEvent регистрирует событие жизненного цикла сессии
func (c *CLIMetrics) AuthEvent(ctx context.Context, event string, success bool, duration time.Duration) {
	c.logger.Info("Auth event",
		logger.String("event", event),
		logger.Bool("success", success),
		logger.Duration("duration", duration))

	c.RequestCount.WithLabelValues("auth", event, getStatusLabel(success)).Inc()
	c.RequestDuration.WithLabelValues("auth", event).Observe(duration.Seconds())

	if !success {
		c.ErrorsCount.WithLabelValues("auth", event, "auth_failed").Inc()
	}
}

// OutputGenerated регистрирует генерацию вывода
func (c *CLIMetrics) OutputGenerated(ctx context.Context, format string, recordCount int, duration time.Duration) {
	c.logger.Debug("Output generated",
		logger.String("format", format),
		logger.Int("record_count", recordCount),
		logger.Duration("duration", duration))

	c.RequestCount.WithLabelValues("output", format, "success").Inc()
	c.RequestDuration.WithLabelValues("output", format).Observe(duration.Seconds())
}

// RecordError регистрирует ошибку
func (c *CLIMetrics) RecordError(ctx context.Context, component, operation, errorType string) {
	c.logger.Error("Error recorded",
		logger.String("component", component),
		logger.String("operation", operation),
		logger.String("error_type", errorType))

	c.ErrorsCount.WithLabelValues(component, operation, errorType).Inc()
}

// getStatusLabel возвращает метку статуса
func getStatusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// CommandTimer таймер для команд CLI
type CommandTimer struct {
	metrics *CLIMetrics
	ctx     context.Context
	start   time.Time
}

// NewCommandTimer создает новый таймер для команды
func (c *CLIMetrics) NewCommandTimer(ctx context.Context) *CommandTimer {
	return &CommandTimer{
		metrics: c,
		ctx:     ctx,
		start:   time.Now(),
	}
}

// Finish завершает команду и регистрирует метрики
func (t *CommandTimer) Finish(command string, success bool) {
	t.metrics.CommandExecuted(t.ctx, command, success, time.Since(t.start))
}
