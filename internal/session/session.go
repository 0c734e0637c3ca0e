package session

import (
	"context"
	"sync"

	"CourseFlowClient/internal/identity"
	"CourseFlowClient/internal/store"
	"CourseFlowClient/pkg/errors"
	"CourseFlowClient/pkg/logger"
)

// State представляет текущее состояние сессии приложения
type State struct {
	Identity  *identity.Identity
	Token     string
	Resolving bool
}

// Authenticated сообщает, есть ли в сессии подтвержденная личность
func (s State) Authenticated() bool {
	return !s.Resolving && s.Identity != nil
}

// Store представляет единственный источник правды о том, кто вошел в
// систему и с каким токеном. Мутируется только через определенные
// операции; каждое изменение
// сопровождается одним уведомлением подписчиков.
type Store struct {
	mu        sync.Mutex
	identity  *identity.Identity
	token     string
	resolving bool
	version   uint64

	tokens store.TokenStore
	logger logger.Logger

	subscribers map[int]func(State)
	nextSubID   int
}

// NewStore создает новое хранилище сессии. Флаг resolving установлен до
// обработки первого события провайдера идентификации.
func NewStore(tokens store.TokenStore, log logger.Logger) *Store {
	return &Store{
		resolving:   true,
		tokens:      tokens,
		logger:      log,
		subscribers: make(map[int]func(State)),
	}
}

// GetState возвращает текущее состояние сессии без побочных эффектов
func (s *Store) GetState() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

// Version возвращает номер текущего поколения личности
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// SetIdentity устанавливает текущую личность и возвращает номер поколения,
// под которым обмен токена должен завершиться.
//
// Отсутствие личности очищает токен в памяти и в долговременном хранилище.
// Смена личности на другую также сбрасывает токен: токен всегда
// соответствует текущей личности. Обновление профиля той же личности токен
// сохраняет.
func (s *Store) SetIdentity(id *identity.Identity) uint64 {
	s.mu.Lock()

	s.version++
	version := s.version

	sameUser := id != nil && s.identity != nil && id.UID == s.identity.UID
	s.identity = id

	if !sameUser {
		s.token = ""
		if err := s.tokens.Clear(); err != nil {
			s.logger.Warn("не удалось очистить хранилище сессии", logger.Error(err))
		}
	}

	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	return version
}

// SetToken устанавливает bearer токен, полученный обменом для поколения
// version. Устаревшие результаты обмена отвергаются. Токен сохраняется в
// долговременное хранилище до обновления состояния в памяти: хранилище и
// память не расходятся дольше, чем длится вызов.
func (s *Store) SetToken(version uint64, token string) error {
	s.mu.Lock()

	if version != s.version {
		s.mu.Unlock()
		return errors.New(errors.ErrConflict, "результат обмена токена устарел").
			WithDetails("поколение личности изменилось")
	}

	if s.identity == nil {
		s.mu.Unlock()
		return errors.New(errors.ErrNotAuthenticated, "нет текущей личности для токена")
	}

	snapshot := &store.SessionSnapshot{
		Token:       token,
		UserID:      s.identity.UID,
		Email:       s.identity.Email,
		DisplayName: s.identity.DisplayName,
		PhotoURL:    s.identity.PhotoURL,
	}
	if err := s.tokens.Save(snapshot); err != nil {
		s.mu.Unlock()
		return errors.Wrap(err, errors.ErrInternal, "не удалось сохранить токен")
	}

	s.token = token
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
	return nil
}

// Clear удаляет личность, токен и сохраненный снимок. Идемпотентна.
func (s *Store) Clear() error {
	s.mu.Lock()

	s.version++
	s.identity = nil
	s.token = ""

	err := s.tokens.Clear()

	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)

	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "не удалось очистить хранилище сессии")
	}
	return nil
}

// MarkResolved опускает флаг resolving. Переход одноразовый.
func (s *Store) MarkResolved() {
	s.mu.Lock()
	if !s.resolving {
		s.mu.Unlock()
		return
	}
	s.resolving = false
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
}

// Restore предзаполняет сессию из снимка долговременного хранилища до
// первого события провайдера. Токен может быть устаревшим относительно
// фактического состояния провайдера; окно ограничено флагом resolving.
func (s *Store) Restore(snapshot *store.SessionSnapshot) {
	if snapshot == nil {
		return
	}

	s.mu.Lock()
	if !s.resolving || s.identity != nil {
		// Восстановление имеет смысл только до первого события
		s.mu.Unlock()
		return
	}

	s.identity = &identity.Identity{
		UID:         snapshot.UserID,
		Email:       snapshot.Email,
		DisplayName: snapshot.DisplayName,
		PhotoURL:    snapshot.PhotoURL,
	}
	s.token = snapshot.Token
	state := s.stateLocked()
	s.mu.Unlock()

	s.notify(state)
}

// Subscribe регистрирует подписчика на изменения состояния.
// Возвращает функцию отмены подписки.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// WaitResolved блокирует до опускания флага resolving или отмены контекста
func (s *Store) WaitResolved(ctx context.Context) error {
	done := make(chan struct{}, 1)

	cancel := s.Subscribe(func(state State) {
		if !state.Resolving {
			select {
			case done <- struct{}{}:
			default:
			}
		}
	})
	defer cancel()

	// Проверяем после подписки: событие могло уже пройти
	if !s.GetState().Resolving {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.ErrInternal, "ожидание восстановления сессии прервано")
	}
}

func (s *Store) stateLocked() State {
	return State{
		Identity:  s.identity,
		Token:     s.token,
		Resolving: s.resolving,
	}
}

// notify вызывает подписчиков вне блокировки: подписчик может читать
// состояние или инициировать следующую мутацию.
func (s *Store) notify(state State) {
	s.mu.Lock()
	subs := make([]func(State), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(state)
	}
}
