package identity

// Identity описывает вошедшего пользователя со стороны провайдера
// идентификации. Не содержит bearer токен бэкенда: токен живет в сессии.
type Identity struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// Event представляет одно событие смены личности. Identity == nil
// означает выход.
type Event struct {
	Identity *Identity
}
