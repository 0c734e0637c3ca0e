package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"CourseFlowClient/internal/config"
	"CourseFlowClient/pkg/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Управление конфигурацией",
	Long:  `Команды для просмотра и изменения конфигурации CLI.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Создать конфигурацию по умолчанию",
	Long:  `Создает файл конфигурации по умолчанию в ~/.courseflow/config.yaml.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleConfigInit(cmd, args)
	},
}

var configViewCmd = &cobra.Command{
	Use:   "view",
	Short: "Показать текущую конфигурацию",
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleConfigView(cmd, args)
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Изменить параметр конфигурации",
	Long: `Изменяет параметр конфигурации и сохраняет файл.

Поддерживаемые ключи:
  api.base_url        адрес сервера курсов
  api.timeout         таймаут запросов в секундах
  identity.base_url   адрес провайдера идентификации
  identity.api_key    API ключ провайдера
  storage.backend     backend хранилища сессии (file, redis)
  storage.redis.addr  адрес Redis
  output.format       формат вывода (table, json, yaml)
  output.colors       цветной вывод (true, false)
  default_route       маршрут по умолчанию после входа`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleConfigSet(cmd, args)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configViewCmd)
	configCmd.AddCommand(configSetCmd)
}

func handleConfigInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.InitConfig()
	if err != nil {
		return handleError(err, cmd)
	}

	fmt.Printf("✓ Конфигурация создана: %s\n", cfg.Path)
	return nil
}

func handleConfigView(cmd *cobra.Command, args []string) error {
	path, err := config.GetConfigPath()
	if err != nil {
		return handleError(err, cmd)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return handleError(err, cmd)
	}

	fmt.Printf("Файл: %s\n\n", path)
	fmt.Printf("api.base_url:        %s\n", cfg.API.BaseURL)
	fmt.Printf("api.timeout:         %d\n", cfg.API.Timeout)
	fmt.Printf("identity.base_url:   %s\n", cfg.Identity.BaseURL)
	fmt.Printf("storage.backend:     %s\n", cfg.Storage.Backend)
	fmt.Printf("storage.redis.addr:  %s\n", cfg.Storage.Redis.Addr)
	fmt.Printf("output.format:       %s\n", cfg.Output.Format)
	fmt.Printf("output.colors:       %t\n", cfg.Output.Colors)
	fmt.Printf("default_route:       %s\n", cfg.DefaultRoute)
	return nil
}

func handleConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	path, err := config.GetConfigPath()
	if err != nil {
		return handleError(err, cmd)
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return handleError(err, cmd)
	}

	switch key {
	case "api.base_url":
		cfg.API.BaseURL = value
	case "api.timeout":
		timeout, err := strconv.Atoi(value)
		if err != nil {
			return errors.New(errors.ErrValidation, "api.timeout должен быть числом")
		}
		cfg.API.Timeout = timeout
	case "identity.base_url":
		cfg.Identity.BaseURL = value
	case "identity.api_key":
		cfg.Identity.APIKey = value
	case "storage.backend":
		cfg.Storage.Backend = value
	case "storage.redis.addr":
		cfg.Storage.Redis.Addr = value
	case "output.format":
		cfg.Output.Format = value
	case "output.colors":
		colors, err := strconv.ParseBool(value)
		if err != nil {
			return errors.New(errors.ErrValidation, "output.colors должен быть true или false")
		}
		cfg.Output.Colors = colors
	case "default_route":
		cfg.DefaultRoute = value
	default:
		return errors.New(errors.ErrValidation, fmt.Sprintf("неизвестный ключ конфигурации: %s", key))
	}

	if err := cfg.Validate(); err != nil {
		return handleError(err, cmd)
	}

	if err := cfg.Save(); err != nil {
		return handleError(err, cmd)
	}

	fmt.Printf("✓ %s = %s\n", key, value)
	return nil
}
