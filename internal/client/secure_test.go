package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CourseFlowClient/internal/identity"
	"CourseFlowClient/internal/session"
	"CourseFlowClient/internal/store"
	"CourseFlowClient/pkg/errors"
	"CourseFlowClient/pkg/logger"
)

type recordingNavigator struct {
	redirects []string
}

func (n *recordingNavigator) Redirect(route string) {
	n.redirects = append(n.redirects, route)
}

type recordingSignOuter struct {
	calls atomic.Int32
}

func (s *recordingSignOuter) SignOut(ctx context.Context) {
	s.calls.Add(1)
}

func newAuthenticatedSession(t *testing.T, token string) *session.Store {
	t.Helper()
	t.Setenv("COURSEFLOW_HOME", t.TempDir())

	log, err := logger.NewLogger("dev", "error", "client-test")
	require.NoError(t, err)

	tokens, err := store.NewFileTokenStore()
	require.NoError(t, err)

	sess := session.NewStore(tokens, log)
	if token != "" {
		version := sess.SetIdentity(&identity.Identity{UID: "uid-1", Email: "user@example.com"})
		require.NoError(t, sess.SetToken(version, token))
	}
	sess.MarkResolved()
	return sess
}

func newSecureClient(t *testing.T, baseURL string, sess *session.Store, gateway SignOuter, nav Navigator) *SecureClient {
	t.Helper()
	log, err := logger.NewLogger("dev", "error", "client-test")
	require.NoError(t, err)
	return NewSecureClient(baseURL, 5*time.Second, sess, gateway, nav, nil, 0, log, nil)
}

func TestSecureClient_AttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	sess := newAuthenticatedSession(t, "jwt-token")
	c := newSecureClient(t, srv.URL, sess, nil, nil)

	var out map[string]bool
	require.NoError(t, c.Get(context.Background(), "/api/courses", &out))
	assert.Equal(t, "Bearer jwt-token", gotAuth)
}

func TestSecureClient_NoTokenNoHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	sess := newAuthenticatedSession(t, "")
	c := newSecureClient(t, srv.URL, sess, nil, nil)

	var out []struct{}
	require.NoError(t, c.Get(context.Background(), "/api/courses", &out))
	assert.Empty(t, gotAuth)
}

func TestSecureClient_UnauthorizedTriggersReset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	sess := newAuthenticatedSession(t, "expired-token")
	nav := &recordingNavigator{}
	gateway := &recordingSignOuter{}
	c := newSecureClient(t, srv.URL, sess, gateway, nav)

	err := c.Get(context.Background(), "/api/my-enrollments", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrUnauthorized))
	assert.Contains(t, err.Error(), "token expired")

	// Сброс завершается до возврата ошибки
	assert.Equal(t, []string{"/login"}, nav.redirects)
	assert.EqualValues(t, 1, gateway.calls.Load())

	state := sess.GetState()
	assert.Nil(t, state.Identity)
	assert.Empty(t, state.Token)
}

// Отвергнутый токен должен исчезнуть из хранилища до возврата из запроса:
// процесс CLI завершается сразу после ошибки, и отложенная очистка оставила
// бы токен на диске до следующего запуска.
func TestSecureClient_UnauthorizedClearsSnapshotBeforeReturn(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	t.Setenv("COURSEFLOW_HOME", t.TempDir())

	log, err := logger.NewLogger("dev", "error", "client-test")
	require.NoError(t, err)

	tokens, err := store.NewFileTokenStore()
	require.NoError(t, err)

	sess := session.NewStore(tokens, log)
	version := sess.SetIdentity(&identity.Identity{UID: "uid-1", Email: "user@example.com"})
	require.NoError(t, sess.SetToken(version, "revoked-token"))
	sess.MarkResolved()
	require.True(t, tokens.Has(), "snapshot must be persisted before the request")

	c := newSecureClient(t, srv.URL, sess, &recordingSignOuter{}, &recordingNavigator{})

	err = c.Get(context.Background(), "/api/my-courses", nil)
	require.Error(t, err)
	assert.False(t, tokens.Has(), "rejected token must be removed from storage before the call returns")
}

func TestSecureClient_UnauthorizedCascadeResetsOnce(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	sess := newAuthenticatedSession(t, "revoked-token")
	nav := &recordingNavigator{}
	gateway := &recordingSignOuter{}
	c := newSecureClient(t, srv.URL, sess, gateway, nav)

	// Несколько защищенных запросов отказывают один за другим
	for i := 0; i < 5; i++ {
		err := c.Get(context.Background(), "/api/my-courses", nil)
		require.Error(t, err)
		assert.True(t, errors.IsAuthFailure(err))
	}

	assert.EqualValues(t, 1, gateway.calls.Load(),
		"a cascade of auth failures must trigger a single reset")
	assert.EqualValues(t, 5, requests.Load())
}

func TestSecureClient_MapsServerErrors(t *testing.T) {
	tests := []struct {
		status int
		code   errors.ErrorCode
	}{
		{http.StatusNotFound, errors.ErrNotFound},
		{http.StatusConflict, errors.ErrConflict},
		{http.StatusBadRequest, errors.ErrValidation},
		{http.StatusInternalServerError, errors.ErrServer},
	}

	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
		}))

		sess := newAuthenticatedSession(t, "jwt-token")
		c := newSecureClient(t, srv.URL, sess, nil, nil)

		err := c.Get(context.Background(), "/api/courses/broken", nil)
		require.Error(t, err)
		assert.True(t, errors.IsCode(err, tt.code), "status %d should map to %s", tt.status, tt.code)

		srv.Close()
	}
}

func TestSecureClient_NetworkError(t *testing.T) {
	sess := newAuthenticatedSession(t, "jwt-token")
	c := newSecureClient(t, "http://127.0.0.1:1", sess, nil, nil)

	err := c.Get(context.Background(), "/api/courses", nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNetwork))
}
