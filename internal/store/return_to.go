package store

import (
	"os"
	"path/filepath"
	"strings"

	"CourseFlowClient/internal/config"
	"CourseFlowClient/pkg/errors"
)

// FileReturnToStash хранит маршрут, с которого пользователя перенаправили
// на вход. Каждая команда CLI выполняется отдельным процессом, поэтому
// маршрут переживает завершение процесса рядом со снимком сессии и
// подхватывается последующим входом.
type FileReturnToStash struct {
	path string
}

// NewFileReturnToStash создает новое файловое хранилище маршрута возврата
func NewFileReturnToStash() (*FileReturnToStash, error) {
	home, err := config.HomeDir()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка определения домашней директории")
	}

	if err := os.MkdirAll(home, 0700); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка создания директории "+home)
	}

	return &FileReturnToStash{
		path: filepath.Join(home, "return_to"),
	}, nil
}

// SaveReturnTo запоминает маршрут возврата
func (s *FileReturnToStash) SaveReturnTo(route string) error {
	if err := os.WriteFile(s.path, []byte(route), 0600); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка сохранения маршрута возврата")
	}
	return nil
}

// LoadReturnTo возвращает запомненный маршрут; пустая строка, если его нет
func (s *FileReturnToStash) LoadReturnTo() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// ClearReturnTo забывает маршрут возврата
func (s *FileReturnToStash) ClearReturnTo() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, errors.ErrInternal, "ошибка удаления маршрута возврата")
	}
	return nil
}
