package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CourseFlowClient/pkg/errors"
)

func newTestStore(t *testing.T) *FileTokenStore {
	t.Helper()
	t.Setenv("COURSEFLOW_HOME", t.TempDir())

	ts, err := NewFileTokenStore()
	require.NoError(t, err)
	return ts
}

// TestFileTokenStore_SaveLoad проверяет сохранение и загрузку снимка
func TestFileTokenStore_SaveLoad(t *testing.T) {
	ts := newTestStore(t)

	snapshot := &SessionSnapshot{
		Token:       "abc123",
		UserID:      "uid-1",
		Email:       "user@example.com",
		DisplayName: "User",
	}

	require.NoError(t, ts.Save(snapshot))
	assert.True(t, ts.Has())

	loaded, err := ts.Load()
	require.NoError(t, err)

	// Токен возвращается ровно в том виде, в котором был сохранен
	assert.Equal(t, "abc123", loaded.Token)
	assert.Equal(t, "user@example.com", loaded.Email)
	assert.Equal(t, "uid-1", loaded.UserID)
	assert.False(t, loaded.SavedAt.IsZero())

	assert.Equal(t, "abc123", ts.AccessToken())
}

// TestFileTokenStore_LoadMissing проверяет загрузку при отсутствии снимка
func TestFileTokenStore_LoadMissing(t *testing.T) {
	ts := newTestStore(t)

	assert.False(t, ts.Has())

	_, err := ts.Load()
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrNotFound))

	assert.Empty(t, ts.AccessToken())
}

// TestFileTokenStore_ClearIdempotent проверяет идемпотентность очистки
func TestFileTokenStore_ClearIdempotent(t *testing.T) {
	ts := newTestStore(t)

	require.NoError(t, ts.Save(&SessionSnapshot{Token: "tok", Email: "a@b.co"}))
	require.True(t, ts.Has())

	require.NoError(t, ts.Clear())
	assert.False(t, ts.Has())

	// Повторная очистка не возвращает ошибку
	require.NoError(t, ts.Clear())
	assert.False(t, ts.Has())
	assert.Empty(t, ts.AccessToken())
}

// TestFileTokenStore_SaveNil проверяет обработку nil снимка
func TestFileTokenStore_SaveNil(t *testing.T) {
	ts := newTestStore(t)

	err := ts.Save(nil)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrValidation))
}

// TestFileTokenStore_Overwrite проверяет перезапись снимка
func TestFileTokenStore_Overwrite(t *testing.T) {
	ts := newTestStore(t)

	require.NoError(t, ts.Save(&SessionSnapshot{Token: "first", Email: "a@b.co"}))
	require.NoError(t, ts.Save(&SessionSnapshot{Token: "second", Email: "a@b.co"}))

	assert.Equal(t, "second", ts.AccessToken())
}
