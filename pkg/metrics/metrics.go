package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// Metrics представляет систему метрик клиента
type Metrics struct {
	// Стандартные метрики Prometheus для исходящих запросов
	RequestCount    *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ErrorsCount     *prometheus.CounterVec

	// Дополнительные метрики
	SessionState *prometheus.GaugeVec

	// OpenTelemetry Tracer
	Tracer trace.Tracer `json:"-"`
}

// NewMetrics создает новую систему метрик
func NewMetrics(serviceName string) *Metrics {
	// Регистрируем стандартные метрики Prometheus
	requestCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of outgoing HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of outgoing HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	errorsCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Total number of failed outgoing HTTP requests",
		},
		[]string{"method", "endpoint", "error_type"},
	)

	// Состояние сессии: resolving / authenticated / unauthenticated
	sessionState := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "session",
			Name:      "state",
			Help:      "Current session state (1 for the active state, 0 otherwise)",
		},
		[]string{"state"},
	)

	// Регистрируем метрики в Prometheus
	for _, collector := range []prometheus.Collector{requestCount, requestDuration, errorsCount, sessionState} {
		if err := prometheus.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				panic(err)
			}
		}
	}

	// Создаем OpenTelemetry Tracer
	tracer := otel.Tracer(serviceName)

	return &Metrics{
		RequestCount:    requestCount,
		RequestDuration: requestDuration,
		ErrorsCount:     errorsCount,
		SessionState:    sessionState,
		Tracer:          tracer,
	}
}

// GetHandler возвращает HTTP обработчик для эндпоинта /metrics
func (m *Metrics) GetHandler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest регистрирует завершенный исходящий HTTP запрос
func (m *Metrics) ObserveRequest(ctx context.Context, method, endpoint string, statusCode int, duration time.Duration) {
	_, span := m.Tracer.Start(ctx, endpoint)
	defer span.End()

	m.RequestCount.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.RequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())

	// Если статус ошибочный, увеличиваем счетчик ошибок
	if statusCode >= 400 {
		errorType := "client_error"
		if statusCode >= 500 {
			errorType = "server_error"
		}
		m.ErrorsCount.WithLabelValues(method, endpoint, errorType).Inc()
	}

	// Добавляем атрибуты в спан OpenTelemetry
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.url", endpoint),
		attribute.Int("http.status_code", statusCode),
		attribute.Float64("http.duration", duration.Seconds()),
	)
}

// SetSessionState выставляет gauge текущего состояния сессии
func (m *Metrics) SetSessionState(state string) {
	for _, known := range []string{"resolving", "authenticated", "unauthenticated"} {
		value := 0.0
		if known == state {
			value = 1.0
		}
		m.SessionState.WithLabelValues(known).Set(value)
	}
}

// InitializeOpenTelemetry инициализирует OpenTelemetry с экспортером
func InitializeOpenTelemetry(serviceName string) error {
	// Создаем базовый провайдер трассировки
	tp := tracesdk.NewTracerProvider(
		tracesdk.WithSampler(tracesdk.AlwaysSample()),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
			semconv.ServiceVersionKey.String("1.0.0"),
		)),
	)

	// Устанавливаем глобальный провайдер трассировки
	otel.SetTracerProvider(tp)

	return nil
}
