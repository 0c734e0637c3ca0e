package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"

	"CourseFlowClient/pkg/errors"
)

const sessionKey = "courseflow:cli:session:current"

// RedisTokenStore хранит снимок сессии в Redis. Используется, когда
// несколько рабочих мест делят одну сессию CLI (storage.backend: redis).
type RedisTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTokenStore создает новое хранилище сессии в Redis
func NewRedisTokenStore(addr, password string, db int) (*RedisTokenStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	// Проверяем подключение
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		return nil, errors.Wrap(err, errors.ErrNetwork, "ошибка подключения к Redis")
	}

	return &RedisTokenStore{
		client: rdb,
		ttl:    24 * time.Hour,
	}, nil
}

// Client возвращает подключение к Redis (используется троттлингом запросов)
func (rs *RedisTokenStore) Client() *redis.Client {
	return rs.client
}

// Save сохраняет снимок сессии в Redis
func (rs *RedisTokenStore) Save(snapshot *SessionSnapshot) error {
	if snapshot == nil {
		return errors.New(errors.ErrValidation, "снимок сессии не задан")
	}

	snapshot.SavedAt = time.Now()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка сериализации снимка сессии")
	}

	ctx := context.Background()
	if err := rs.client.Set(ctx, sessionKey, data, rs.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrNetwork, "ошибка сохранения снимка сессии в Redis")
	}

	return nil
}

// Load загружает снимок сессии из Redis
func (rs *RedisTokenStore) Load() (*SessionSnapshot, error) {
	ctx := context.Background()

	data, err := rs.client.Get(ctx, sessionKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, errors.New(errors.ErrNotFound, "снимок сессии не найден")
		}
		return nil, errors.Wrap(err, errors.ErrNetwork, "ошибка загрузки снимка сессии из Redis")
	}

	var snapshot SessionSnapshot
	if err := json.Unmarshal([]byte(data), &snapshot); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "ошибка десериализации снимка сессии")
	}

	return &snapshot, nil
}

// Has проверяет наличие сохраненного снимка
func (rs *RedisTokenStore) Has() bool {
	ctx := context.Background()
	n, err := rs.client.Exists(ctx, sessionKey).Result()
	return err == nil && n > 0
}

// Clear удаляет сохраненный снимок. Повторный вызов не является ошибкой.
func (rs *RedisTokenStore) Clear() error {
	ctx := context.Background()
	if err := rs.client.Del(ctx, sessionKey).Err(); err != nil && err != redis.Nil {
		return errors.Wrap(err, errors.ErrNetwork, "ошибка удаления снимка сессии из Redis")
	}
	return nil
}

// AccessToken возвращает сохраненный bearer токен или пустую строку
func (rs *RedisTokenStore) AccessToken() string {
	if snapshot, err := rs.Load(); err == nil {
		return snapshot.Token
	}
	return ""
}

// Close закрывает подключение к Redis
func (rs *RedisTokenStore) Close() error {
	return rs.client.Close()
}
