package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"CourseFlowClient/internal/config"
	"CourseFlowClient/pkg/errors"
)

// SessionSnapshot содержит сохраняемое состояние сессии: bearer токен
// платформы и последний известный профиль пользователя. Снимок читается
// при старте до первого события провайдера, чтобы запросы могли уходить
// авторизованными сразу после перезапуска.
type SessionSnapshot struct {
	Token       string    `json:"token"`
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	PhotoURL    string    `json:"photo_url,omitempty"`
	SavedAt     time.Time `json:"saved_at"`
}

// TokenStore определяет интерфейс для долговременного хранилища сессии
type TokenStore interface {
	Save(snapshot *SessionSnapshot) error
	Load() (*SessionSnapshot, error)
	Has() bool
	Clear() error
	AccessToken() string
}

// FileTokenStore хранит снимок сессии в файле
type FileTokenStore struct {
	sessionPath string
}

// NewFileTokenStore создает новое файловое хранилище сессии
func NewFileTokenStore() (*FileTokenStore, error) {
	home, err := config.HomeDir()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка определения домашней директории")
	}

	// Создаем директорию если она не существует
	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка создания директории "+home)
	}

	return &FileTokenStore{
		sessionPath: filepath.Join(home, "session"),
	}, nil
}

// Save сохраняет снимок сессии в файл
func (fs *FileTokenStore) Save(snapshot *SessionSnapshot) error {
	if snapshot == nil {
		return errors.New(errors.ErrValidation, "снимок сессии не задан")
	}

	snapshot.SavedAt = time.Now()

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка сериализации снимка сессии")
	}

	if err := os.WriteFile(fs.sessionPath, data, 0600); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка сохранения снимка сессии")
	}

	return nil
}

// Load загружает снимок сессии из файла
func (fs *FileTokenStore) Load() (*SessionSnapshot, error) {
	if _, err := os.Stat(fs.sessionPath); os.IsNotExist(err) {
		return nil, errors.New(errors.ErrNotFound, "снимок сессии не найден")
	}

	data, err := os.ReadFile(fs.sessionPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка чтения снимка сессии")
	}

	var snapshot SessionSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка десериализации снимка сессии")
	}

	return &snapshot, nil
}

// Has проверяет наличие сохраненного снимка
func (fs *FileTokenStore) Has() bool {
	_, err := os.Stat(fs.sessionPath)
	return !os.IsNotExist(err)
}

// Clear удаляет сохраненный снимок. Повторный вызов не является ошибкой.
func (fs *FileTokenStore) Clear() error {
	if err := os.Remove(fs.sessionPath); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrInternal, "ошибка удаления снимка сессии")
	}
	return nil
}

// AccessToken возвращает сохраненный bearer токен или пустую строку
func (fs *FileTokenStore) AccessToken() string {
	if snapshot, err := fs.Load(); err == nil {
		return snapshot.Token
	}
	return ""
}
