package cmd

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"CourseFlowClient/pkg/errors"
	"CourseFlowClient/pkg/logger"
)

var (
	app     *App
	rootCtx context.Context
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "courseflow",
	Short: "CourseFlow CLI - Клиент платформы курсов",
	Long: `CourseFlow CLI - инструмент командной строки для работы с платформой
курсов CourseFlow.

Поддерживает просмотр каталога, запись на курсы, управление собственными
курсами и аутентификацию через внешний провайдер идентификации.`,
	Version:       "1.0.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		initViper()

		// Командам без обращения к API полная сборка приложения не нужна
		switch cmd.Name() {
		case "completion", "version", "help":
			return nil
		}
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}

		var err error
		app, err = newApp(rootCtx)
		return err
	},
}

// Execute executes the root command
func Execute(ctx context.Context) error {
	rootCtx = ctx
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringP("server", "s", "", "адрес сервера курсов")
	rootCmd.PersistentFlags().StringP("output", "o", "", "формат вывода (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "подробный вывод")

	viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(coursesCmd)
	rootCmd.AddCommand(enrollmentsCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(completionCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Показать версию",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("CourseFlow CLI v1.0.0")
	},
}

// initViper reads ENV variables with the COURSEFLOW prefix
func initViper() {
	viper.SetEnvPrefix("COURSEFLOW")
	viper.AutomaticEnv()
}

// handleError handles errors consistently across commands
func handleError(err error, cmd *cobra.Command) error {
	if err == nil {
		return nil
	}

	var appErr *errors.Error
	if !stderrors.As(err, &appErr) {
		appErr = errors.New(errors.ErrInternal, err.Error())
	}

	if app != nil && app.Logger != nil {
		app.Logger.Error("Command failed",
			logger.String("command", cmd.Name()),
			logger.Error(appErr))
	}

	message := appErr.Message
	if appErr.Details != "" {
		message = fmt.Sprintf("%s (%s)", appErr.Message, appErr.Details)
	}
	return fmt.Errorf("%s: %s", cmd.Name(), message)
}
