package guard

import (
	"sync"

	"CourseFlowClient/internal/session"
)

// Action представляет решение охраны маршрута
type Action int

const (
	// ActionWait означает, что сессия еще восстанавливается, показывать индикатор
	ActionWait Action = iota
	// ActionRender означает, что доступ разрешен
	ActionRender
	// ActionRedirect означает перенаправление на маршрут входа
	ActionRedirect
)

// Decision содержит результат проверки защищенного маршрута
type Decision struct {
	Action     Action
	RedirectTo string
	From       string
}

// ReturnToStash переживает завершение процесса: команда, уткнувшаяся в
// перенаправление на вход, и сам вход выполняются разными процессами CLI
type ReturnToStash interface {
	SaveReturnTo(route string) error
	LoadReturnTo() string
	ClearReturnTo() error
}

// Guard защищает маршруты, требующие аутентификации. Пока сессия
// восстанавливается, решение откладывается: перенаправление до завершения
// восстановления выбросило бы вошедшего пользователя на экран входа.
type Guard struct {
	session      *session.Store
	loginRoute   string
	defaultRoute string
	stash        ReturnToStash

	mu       sync.Mutex
	returnTo string
}

// New создает охрану маршрутов. stash может быть nil: тогда маршрут
// возврата живет только в памяти процесса.
func New(sess *session.Store, loginRoute, defaultRoute string, stash ReturnToStash) *Guard {
	return &Guard{
		session:      sess,
		loginRoute:   loginRoute,
		defaultRoute: defaultRoute,
		stash:        stash,
	}
}

// Check принимает решение по защищенному маршруту. При перенаправлении
// исходный маршрут запоминается и возвращается после успешного входа.
func (g *Guard) Check(route string) Decision {
	state := g.session.GetState()

	if state.Resolving {
		return Decision{Action: ActionWait, From: route}
	}

	if state.Identity != nil {
		return Decision{Action: ActionRender, From: route}
	}

	g.mu.Lock()
	g.returnTo = route
	g.mu.Unlock()

	if g.stash != nil {
		_ = g.stash.SaveReturnTo(route)
	}

	return Decision{
		Action:     ActionRedirect,
		RedirectTo: g.loginRoute,
		From:       route,
	}
}

// ConsumeReturnTo возвращает маршрут, с которого пользователя перенаправили
// на вход, и забывает его: повторный вход ведет на маршрут по умолчанию.
func (g *Guard) ConsumeReturnTo() string {
	g.mu.Lock()
	route := g.returnTo
	g.returnTo = ""
	g.mu.Unlock()

	if route == "" && g.stash != nil {
		route = g.stash.LoadReturnTo()
	}
	if g.stash != nil {
		_ = g.stash.ClearReturnTo()
	}

	if route == "" {
		return g.defaultRoute
	}
	return route
}
