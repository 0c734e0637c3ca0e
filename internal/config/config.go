package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// Config представляет конфигурацию CLI
type Config struct {
	// API платформы
	API struct {
		BaseURL string `yaml:"base_url" json:"base_url"`
		Timeout int    `yaml:"timeout" json:"timeout"`
	} `yaml:"api" json:"api"`

	// Внешний провайдер идентификации
	Identity struct {
		BaseURL string `yaml:"base_url" json:"base_url"`
		APIKey  string `yaml:"api_key" json:"api_key"`
		Timeout int    `yaml:"timeout" json:"timeout"`
	} `yaml:"identity" json:"identity"`

	// Хранилище сессии
	Storage struct {
		Backend string `yaml:"backend" json:"backend"` // file, redis
		Redis   struct {
			Addr     string `yaml:"addr" json:"addr"`
			Password string `yaml:"password" json:"password"`
			DB       int    `yaml:"db" json:"db"`
		} `yaml:"redis" json:"redis"`
	} `yaml:"storage" json:"storage"`

	// Клиентский троттлинг исходящих запросов (работает только с redis backend)
	RateLimit struct {
		RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	} `yaml:"rate_limit" json:"rate_limit"`

	// Настройки вывода
	Output struct {
		Format string `yaml:"format" json:"format"` // table, json, yaml
		Colors bool   `yaml:"colors" json:"colors"`
	} `yaml:"output" json:"output"`

	// Маршрут по умолчанию после входа, когда нет сохраненного назначения
	DefaultRoute string `yaml:"default_route" json:"default_route"`

	// Путь к файлу конфигурации
	Path string `yaml:"-" json:"-"`
}

// DefaultConfig возвращает конфигурацию по умолчанию
func DefaultConfig() *Config {
	config := &Config{}

	// API настройки по умолчанию
	config.API.BaseURL = "https://course-management-system-server-woad.vercel.app"
	config.API.Timeout = 30

	// Провайдер идентификации по умолчанию
	config.Identity.BaseURL = "https://identity.courseflow.app"
	config.Identity.Timeout = 30

	// Хранилище по умолчанию
	config.Storage.Backend = "file"
	config.Storage.Redis.Addr = "localhost:6379"
	config.Storage.Redis.DB = 0

	// Троттлинг по умолчанию выключен
	config.RateLimit.RequestsPerMinute = 0

	// Настройки вывода по умолчанию
	config.Output.Format = "table"
	config.Output.Colors = true

	config.DefaultRoute = "/"

	return config
}

// LoadConfig загружает конфигурацию из файла
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	config.Path = path

	// Если файл не существует, возвращаем конфигурацию по умолчанию
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}

	// Читаем файл
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла конфигурации: %w", err)
	}

	// Парсим YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("ошибка парсинга конфигурации: %w", err)
	}

	return config, nil
}

// Save сохраняет конфигурацию в файл
func (c *Config) Save() error {
	if c.Path == "" {
		return fmt.Errorf("путь к файлу конфигурации не указан")
	}

	// Создаем директорию, если она не существует
	dir := filepath.Dir(c.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ошибка создания директории: %w", err)
	}

	// Сериализуем в YAML
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("ошибка сериализации конфигурации: %w", err)
	}

	// Записываем в файл
	if err := os.WriteFile(c.Path, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла конфигурации: %w", err)
	}

	return nil
}

// HomeDir возвращает рабочую директорию CLI (~/.courseflow или $COURSEFLOW_HOME)
func HomeDir() (string, error) {
	if home := os.Getenv("COURSEFLOW_HOME"); home != "" {
		return home, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("ошибка получения домашней директории: %w", err)
	}

	return filepath.Join(home, ".courseflow"), nil
}

// GetConfigPath возвращает путь к файлу конфигурации
func GetConfigPath() (string, error) {
	home, err := HomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, "config.yaml"), nil
}

// InitConfig инициализирует конфигурацию в домашней директории пользователя
func InitConfig() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	config := DefaultConfig()
	config.Path = path

	// Сохраняем конфигурацию по умолчанию
	if err := config.Save(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate проверяет валидность конфигурации
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API base_url не может быть пустым")
	}

	if c.API.Timeout <= 0 {
		return fmt.Errorf("API таймаут должен быть положительным числом")
	}

	if c.Identity.BaseURL == "" {
		return fmt.Errorf("identity base_url не может быть пустым")
	}

	// Проверяем backend хранилища
	switch c.Storage.Backend {
	case "file":
	case "redis":
		if c.Storage.Redis.Addr == "" {
			return fmt.Errorf("redis addr не может быть пустым при backend=redis")
		}
	default:
		return fmt.Errorf("неверный backend хранилища: %s", c.Storage.Backend)
	}

	if c.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("requests_per_minute не может быть отрицательным")
	}

	// Проверяем формат вывода
	validFormats := map[string]bool{
		"table": true,
		"json":  true,
		"yaml":  true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("неверный формат вывода: %s", c.Output.Format)
	}

	return nil
}

// SetAPISettings устанавливает настройки API
func (c *Config) SetAPISettings(baseURL string, timeout int) {
	c.API.BaseURL = baseURL
	c.API.Timeout = timeout
}

// SetOutputSettings устанавливает настройки вывода
func (c *Config) SetOutputSettings(format string, colors bool) {
	c.Output.Format = format
	c.Output.Colors = colors
}
