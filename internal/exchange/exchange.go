package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"CourseFlowClient/internal/identity"
	"CourseFlowClient/internal/session"
	"CourseFlowClient/pkg/errors"
	"CourseFlowClient/pkg/logger"
)

// Exchanger обменивает личность провайдера на bearer токен бэкенда.
// Потребляет поток событий шлюза: каждое событие фиксирует личность в
// сессии, для присутствующей личности запускается обмен. Результат обмена
// несет номер поколения и отвергается сессией, если личность успела
// смениться.
type Exchanger struct {
	session    *session.Store
	events     <-chan identity.Event
	baseURL    string
	httpClient *http.Client
	logger     logger.Logger

	mu      sync.Mutex
	seq     uint64
	waiters []settleWaiter
}

// settleWaiter привязан к моменту регистрации: его удовлетворяет только
// обмен по событию, пришедшему после регистрации
type settleWaiter struct {
	after uint64
	ch    chan error
}

// NewExchanger создает новый обменник токенов
func NewExchanger(sess *session.Store, events <-chan identity.Event, apiBaseURL string, timeout time.Duration, log logger.Logger) *Exchanger {
	return &Exchanger{
		session: sess,
		events:  events,
		baseURL: apiBaseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

// Run обрабатывает события смены личности до закрытия потока или отмены
// контекста. Запускается в отдельной горутине при старте приложения.
func (e *Exchanger) Run(ctx context.Context) {
	for {
		select {
		case ev, ok := <-e.events:
			if !ok {
				return
			}
			e.handle(ctx, ev)
		case <-ctx.Done():
			return
		}
	}
}

// Settled возвращает канал, который получит результат обмена по событию,
// поступившему после регистрации. Регистрируется до действия входа, чтобы
// не пропустить результат; обмен по более раннему событию, еще идущий в
// момент регистрации, ожидание не удовлетворяет. Первое событие потока
// всегда несет восстановленную личность, а не действие команды, поэтому
// ожидание оно не удовлетворяет никогда.
func (e *Exchanger) Settled() <-chan error {
	e.mu.Lock()
	defer e.mu.Unlock()

	after := e.seq
	if after < 1 {
		after = 1
	}

	ch := make(chan error, 1)
	e.waiters = append(e.waiters, settleWaiter{after: after, ch: ch})
	return ch
}

func (e *Exchanger) handle(ctx context.Context, ev identity.Event) {
	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.mu.Unlock()

	version := e.session.SetIdentity(ev.Identity)

	if ev.Identity == nil {
		// Выход: токена нет и не будет, событие обработано полностью
		e.session.MarkResolved()
		e.settle(seq, nil)
		return
	}

	// Обмен выполняется вне цикла событий: следующее событие может прийти
	// до завершения текущего обмена, устаревший результат отвергнет сессия
	go func() {
		token, err := e.exchange(ctx, ev.Identity.Email)
		if err != nil {
			e.logger.Warn("обмен токена не удался",
				logger.String("email", ev.Identity.Email),
				logger.Error(err))
			e.session.MarkResolved()
			e.settle(seq, err)
			return
		}

		if err := e.session.SetToken(version, token); err != nil {
			e.logger.Debug("результат обмена отвергнут",
				logger.Uint64("version", version),
				logger.Error(err))
			e.session.MarkResolved()
			return
		}

		e.session.MarkResolved()
		e.settle(seq, nil)
	}()
}

type exchangeRequest struct {
	Email string `json:"email"`
}

type exchangeResponse struct {
	Token string `json:"token"`
}

// exchange выполняет POST /api/jwt и возвращает bearer токен
func (e *Exchanger) exchange(ctx context.Context, email string) (string, error) {
	body, err := json.Marshal(exchangeRequest{Email: email})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "ошибка сериализации запроса обмена")
	}

	url := e.baseURL + "/api/jwt"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "ошибка создания запроса обмена")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrNetwork, "сервис обмена токенов недоступен")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrNetwork, "ошибка чтения ответа обмена")
	}

	if resp.StatusCode != http.StatusOK {
		return "", errors.New(errors.ErrServer, fmt.Sprintf("обмен токена отклонен, статус: %d", resp.StatusCode))
	}

	var exchanged exchangeResponse
	if err := json.Unmarshal(data, &exchanged); err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "ошибка разбора ответа обмена")
	}
	if exchanged.Token == "" {
		return "", errors.New(errors.ErrServer, "сервис обмена вернул пустой токен")
	}
	return exchanged.Token, nil
}

// settle отдает результат обмена по событию seq всем ожидающим,
// зарегистрированным до этого события. Устаревший обмен не вызывает settle:
// ожидающих удовлетворит обмен по более новому событию.
func (e *Exchanger) settle(seq uint64, err error) {
	e.mu.Lock()
	var fired []chan error
	kept := e.waiters[:0]
	for _, w := range e.waiters {
		if w.after < seq {
			fired = append(fired, w.ch)
		} else {
			kept = append(kept, w)
		}
	}
	e.waiters = kept
	e.mu.Unlock()

	for _, ch := range fired {
		ch <- err
	}
}
