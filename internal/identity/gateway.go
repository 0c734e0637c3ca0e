package identity

import (
	"context"
	"sync"

	"CourseFlowClient/pkg/errors"
	"CourseFlowClient/pkg/logger"
)

// Provider определяет операции провайдера идентификации, нужные шлюзу
type Provider interface {
	SignIn(ctx context.Context, email, password string) (*Identity, string, error)
	SignUp(ctx context.Context, email, password string) (*Identity, string, error)
	SignInWithGoogle(ctx context.Context) (*Identity, string, error)
	UpdateProfile(ctx context.Context, sessionToken, displayName, photoURL string) (*Identity, error)
	SignOut(ctx context.Context, sessionToken string) error
}

// Gateway оборачивает провайдера идентификации в поток событий смены
// личности. Команды входа и выхода завершаются публикацией события;
// потреблением потока и обменом токенов занимается слой обмена.
type Gateway struct {
	provider Provider
	logger   logger.Logger

	mu           sync.Mutex
	current      *Identity
	sessionToken string
	started      bool
	restored     *Identity

	events chan Event
	closed sync.Once
}

// NewGateway создает шлюз идентификации. Восстановленная из снимка личность
// будет опубликована первым событием при Start.
func NewGateway(provider Provider, restored *Identity, log logger.Logger) *Gateway {
	return &Gateway{
		provider: provider,
		logger:   log,
		restored: restored,
		events:   make(chan Event, 16),
	}
}

// Events возвращает поток событий смены личности
func (g *Gateway) Events() <-chan Event {
	return g.events
}

// Start публикует первое событие: восстановленную личность либо ее
// отсутствие. Повторные вызовы игнорируются.
func (g *Gateway) Start() {
	g.mu.Lock()
	if g.started {
		g.mu.Unlock()
		return
	}
	g.started = true
	g.current = g.restored
	initial := g.restored
	g.mu.Unlock()

	g.emit(initial)
}

// Current возвращает личность, какой ее видит шлюз
func (g *Gateway) Current() *Identity {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// SignIn выполняет вход по email и паролю и публикует событие
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	id, token, err := g.provider.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	g.setCurrent(id, token)
	return id, nil
}

// CreateAccount создает аккаунт и сразу входит под ним
func (g *Gateway) CreateAccount(ctx context.Context, email, password string) (*Identity, error) {
	id, token, err := g.provider.SignUp(ctx, email, password)
	if err != nil {
		return nil, err
	}
	g.setCurrent(id, token)
	return id, nil
}

// SignInWithGoogle выполняет федеративный вход и публикует событие
func (g *Gateway) SignInWithGoogle(ctx context.Context) (*Identity, error) {
	id, token, err := g.provider.SignInWithGoogle(ctx)
	if err != nil {
		return nil, err
	}
	g.setCurrent(id, token)
	return id, nil
}

// UpdateProfile обновляет отображаемые атрибуты текущей личности
func (g *Gateway) UpdateProfile(ctx context.Context, displayName, photoURL string) (*Identity, error) {
	g.mu.Lock()
	if g.current == nil {
		g.mu.Unlock()
		return nil, errors.New(errors.ErrNotAuthenticated, "нет активной сессии для обновления профиля")
	}
	token := g.sessionToken
	g.mu.Unlock()

	id, err := g.provider.UpdateProfile(ctx, token, displayName, photoURL)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	g.current = id
	g.mu.Unlock()

	g.emit(id)
	return id, nil
}

// SignOut завершает сессию. Ошибка провайдера логируется, но локальный
// выход выполняется всегда: событие отсутствия личности публикуется в любом
// случае.
func (g *Gateway) SignOut(ctx context.Context) {
	g.mu.Lock()
	token := g.sessionToken
	g.current = nil
	g.sessionToken = ""
	g.mu.Unlock()

	if token != "" {
		if err := g.provider.SignOut(ctx, token); err != nil {
			g.logger.Warn("провайдер не подтвердил выход", logger.Error(err))
		}
	}

	g.emit(nil)
}

// Close закрывает поток событий
func (g *Gateway) Close() {
	g.closed.Do(func() {
		close(g.events)
	})
}

func (g *Gateway) setCurrent(id *Identity, sessionToken string) {
	g.mu.Lock()
	g.current = id
	g.sessionToken = sessionToken
	g.mu.Unlock()

	g.emit(id)
}

func (g *Gateway) emit(id *Identity) {
	select {
	case g.events <- Event{Identity: id}:
	default:
		g.logger.Warn("поток событий идентификации переполнен, событие отброшено")
	}
}
