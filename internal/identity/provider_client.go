package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"CourseFlowClient/pkg/errors"
	"CourseFlowClient/pkg/logger"
)

// ProviderClient представляет HTTP клиент провайдера идентификации
type ProviderClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     logger.Logger
}

// NewProviderClient создает новый клиент провайдера идентификации
func NewProviderClient(baseURL, apiKey string, timeout time.Duration, log logger.Logger) *ProviderClient {
	return &ProviderClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: log,
	}
}

type accountResponse struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	DisplayName  string `json:"displayName"`
	PhotoURL     string `json:"photoUrl"`
	SessionToken string `json:"sessionToken"`
}

type providerError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// SignIn выполняет вход по email и паролю
func (c *ProviderClient) SignIn(ctx context.Context, email, password string) (*Identity, string, error) {
	resp, err := c.post(ctx, "/v1/accounts:signInWithPassword", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, "", err
	}
	return c.toIdentity(resp), resp.SessionToken, nil
}

// SignUp создает новый аккаунт
func (c *ProviderClient) SignUp(ctx context.Context, email, password string) (*Identity, string, error) {
	resp, err := c.post(ctx, "/v1/accounts:signUp", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return nil, "", err
	}
	return c.toIdentity(resp), resp.SessionToken, nil
}

// SignInWithGoogle выполняет федеративный вход через Google.
// Провайдер возвращает URL подтверждения; пользователь завершает вход в
// браузере, клиент дожидается результата тем же запросом.
func (c *ProviderClient) SignInWithGoogle(ctx context.Context) (*Identity, string, error) {
	resp, err := c.post(ctx, "/v1/accounts:googleOAuth", map[string]string{})
	if err != nil {
		return nil, "", err
	}
	return c.toIdentity(resp), resp.SessionToken, nil
}

// UpdateProfile обновляет отображаемые атрибуты текущего аккаунта
func (c *ProviderClient) UpdateProfile(ctx context.Context, sessionToken, displayName, photoURL string) (*Identity, error) {
	resp, err := c.post(ctx, "/v1/accounts:update", map[string]string{
		"sessionToken": sessionToken,
		"displayName":  displayName,
		"photoUrl":     photoURL,
	})
	if err != nil {
		return nil, err
	}
	return c.toIdentity(resp), nil
}

// SignOut завершает сессию на стороне провайдера
func (c *ProviderClient) SignOut(ctx context.Context, sessionToken string) error {
	_, err := c.post(ctx, "/v1/accounts:signOut", map[string]string{
		"sessionToken": sessionToken,
	})
	return err
}

func (c *ProviderClient) post(ctx context.Context, path string, payload map[string]string) (*accountResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка сериализации запроса")
	}

	url := fmt.Sprintf("%s%s?key=%s", c.baseURL, path, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка создания запроса")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrNetwork, "провайдер идентификации недоступен")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrNetwork, "ошибка чтения ответа провайдера")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapProviderError(resp.StatusCode, data)
	}

	var account accountResponse
	if err := json.Unmarshal(data, &account); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка разбора ответа провайдера")
	}
	return &account, nil
}

// mapProviderError переводит коды ошибок провайдера в таксономию приложения
func (c *ProviderClient) mapProviderError(status int, data []byte) error {
	var perr providerError
	_ = json.Unmarshal(data, &perr)

	switch perr.Error.Message {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS":
		return errors.New(errors.ErrInvalidCredentials, "неверный email или пароль")
	case "EMAIL_EXISTS":
		return errors.New(errors.ErrAccountExists, "аккаунт с таким email уже существует")
	case "WEAK_PASSWORD":
		return errors.New(errors.ErrWeakCredential, "пароль не удовлетворяет требованиям провайдера")
	case "USER_CANCELLED", "POPUP_CLOSED":
		return errors.New(errors.ErrUserCancelled, "вход отменен пользователем")
	case "INVALID_SESSION", "TOKEN_EXPIRED":
		return errors.New(errors.ErrNotAuthenticated, "сессия провайдера истекла")
	}

	if status >= 500 {
		return errors.New(errors.ErrServer, fmt.Sprintf("провайдер вернул статус: %d", status))
	}
	return errors.New(errors.ErrValidation, fmt.Sprintf("провайдер отклонил запрос: %s", perr.Error.Message))
}

func (c *ProviderClient) toIdentity(resp *accountResponse) *Identity {
	return &Identity{
		UID:         resp.LocalID,
		Email:       resp.Email,
		DisplayName: resp.DisplayName,
		PhotoURL:    resp.PhotoURL,
	}
}
