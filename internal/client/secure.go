package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"CourseFlowClient/internal/session"
	"CourseFlowClient/pkg/errors"
	"CourseFlowClient/pkg/logger"
	"CourseFlowClient/pkg/metrics"
	"CourseFlowClient/pkg/ratelimit"
)

// Navigator выполняет переход на маршрут приложения
type Navigator interface {
	Redirect(route string)
}

// SignOuter завершает сессию провайдера идентификации
type SignOuter interface {
	SignOut(ctx context.Context)
}

// SecureClient представляет HTTP клиент защищенных запросов к бэкенду.
// Прикрепляет
// bearer токен из сессии к каждому запросу; ответ 401/403 запускает
// детерминированную последовательность сброса: выход у провайдера, очистка
// сессии, переход на маршрут входа.
type SecureClient struct {
	baseURL    string
	httpClient *http.Client
	session    *session.Store
	gateway    SignOuter
	navigator  Navigator
	limiter    ratelimit.RateLimiter
	rateLimit  int
	logger     logger.Logger
	metrics    *metrics.Metrics

	// защита от повторного запуска сброса при каскаде 401
	handlingAuthFailure atomic.Bool
}

// NewSecureClient создает новый защищенный клиент бэкенда
func NewSecureClient(baseURL string, timeout time.Duration, sess *session.Store, gateway SignOuter, nav Navigator, limiter ratelimit.RateLimiter, rateLimit int, log logger.Logger, m *metrics.Metrics) *SecureClient {
	return &SecureClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		session:   sess,
		gateway:   gateway,
		navigator: nav,
		limiter:   limiter,
		rateLimit: rateLimit,
		logger:    log,
		metrics:   m,
	}
}

// Get выполняет GET запрос и декодирует ответ в out
func (c *SecureClient) Get(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, nil, out)
}

// Post выполняет POST запрос с JSON телом
func (c *SecureClient) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, body, out)
}

// Put выполняет PUT запрос с JSON телом
func (c *SecureClient) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, body, out)
}

// Delete выполняет DELETE запрос
func (c *SecureClient) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil)
}

// Do выполняет запрос к бэкенду. out может быть nil, если тело ответа не
// нужно.
func (c *SecureClient) Do(ctx context.Context, method, path string, body, out interface{}) error {
	if c.limiter != nil && c.rateLimit > 0 {
		limited, err := c.limiter.CheckRateLimit(ctx, "api:"+path, c.rateLimit, time.Minute)
		if err != nil {
			c.logger.Warn("проверка ограничения запросов не удалась", logger.Error(err))
		} else if limited {
			return errors.New(errors.ErrValidation, "превышено ограничение частоты запросов").
				WithDetails("повторите попытку позже")
		}
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, errors.ErrInternal, "ошибка сериализации запроса")
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка создания запроса")
	}
	req.Header.Set("Content-Type", "application/json")

	if token := c.session.GetState().Token; token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.metrics != nil {
			c.metrics.ObserveRequest(ctx, method, path, 0, time.Since(start))
		}
		return errors.Wrap(err, errors.ErrNetwork, "сервер курсов недоступен")
	}
	defer resp.Body.Close()

	if c.metrics != nil {
		c.metrics.ObserveRequest(ctx, method, path, resp.StatusCode, time.Since(start))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, errors.ErrNetwork, "ошибка чтения ответа сервера")
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.handleAuthFailure()
		return errors.FromHTTPStatus(resp.StatusCode, serverMessage(data))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.FromHTTPStatus(resp.StatusCode, serverMessage(data))
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "ошибка разбора ответа сервера")
		}
	}
	return nil
}

// handleAuthFailure выполняет сброс сессии ровно один раз, сколько бы
// отказов 401/403 ни пришло подряд: выход у провайдера лучших усилий,
// очистка сессии, переход на маршрут входа. Сброс выполняется синхронно:
// отвергнутый токен должен исчезнуть из хранилища до возврата ошибки
// вызывающему, иначе завершение процесса оставит его на диске. Путь выхода
// не проходит через этот клиент, а повторный вход защищен флагом.
func (c *SecureClient) handleAuthFailure() {
	state := c.session.GetState()
	if state.Identity == nil && state.Token == "" {
		// Сессия уже пуста: сбрасывать нечего, повторный переход не нужен
		return
	}
	if !c.handlingAuthFailure.CompareAndSwap(false, true) {
		return
	}
	defer c.handlingAuthFailure.Store(false)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.logger.Info("сервер отверг токен, сессия сбрасывается")

	if c.gateway != nil {
		c.gateway.SignOut(ctx)
	}
	if err := c.session.Clear(); err != nil {
		c.logger.Warn("не удалось очистить сессию", logger.Error(err))
	}
	if c.navigator != nil {
		c.navigator.Redirect("/login")
	}
}

type serverErrorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// serverMessage извлекает человекочитаемое сообщение из тела ошибки
func serverMessage(data []byte) string {
	var body serverErrorBody
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}
