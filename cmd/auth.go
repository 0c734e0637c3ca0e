package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"CourseFlowClient/internal/output"
	"CourseFlowClient/pkg/errors"
	"CourseFlowClient/pkg/validation"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Управление аутентификацией",
	Long: `Команды для управления аутентификацией пользователей:
вход, выход, регистрация, обновление профиля и проверка статуса сессии.`,
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login [email]",
	Short: "Войти в систему",
	Long: `Выполняет вход пользователя по email и паролю либо через Google.
Полученный токен сохраняется для последующих команд.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleLogin(cmd, args)
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Выйти из системы",
	Long:  `Завершает сессию провайдера и удаляет сохраненный токен.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleLogout(cmd, args)
	},
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Зарегистрировать нового пользователя",
	Long:  `Создает новую учетную запись и сразу выполняет вход под ней.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleRegister(cmd, args)
	},
}

// profileCmd represents the profile command
var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Обновить профиль",
	Long:  `Обновляет отображаемое имя и аватар текущего пользователя.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleProfile(cmd, args)
	},
}

// authStatusCmd represents the status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Проверить статус сессии",
	Long:  `Показывает текущее состояние сессии и информацию о пользователе.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleAuthStatus(cmd, args)
	},
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(profileCmd)
	authCmd.AddCommand(authStatusCmd)

	// Login flags
	loginCmd.Flags().StringP("password", "p", "", "пароль")
	loginCmd.Flags().Bool("google", false, "войти через Google")

	// Register flags
	registerCmd.Flags().StringP("email", "e", "", "email адрес")
	registerCmd.Flags().StringP("password", "p", "", "пароль")
	registerCmd.Flags().String("confirm", "", "подтверждение пароля")
	registerCmd.Flags().StringP("name", "n", "", "отображаемое имя")
	registerCmd.Flags().String("photo", "", "URL аватара")

	// Profile flags
	profileCmd.Flags().StringP("name", "n", "", "отображаемое имя")
	profileCmd.Flags().String("photo", "", "URL аватара")
}

// awaitExchange дожидается завершения обмена токена, начатого действием входа
func awaitExchange(ctx context.Context, done <-chan error) error {
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), errors.ErrNetwork, "ожидание обмена токена прервано")
	}
}

// awaitResolved дожидается обработки начального события восстановления.
// Пока сессия восстанавливается, действия входа и выхода откладываются:
// иначе ожидание результата перепутало бы начальный обмен с обменом по
// собственному действию команды.
func awaitResolved(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	return app.Session.WaitResolved(waitCtx)
}

func handleLogin(cmd *cobra.Command, args []string) error {
	google, _ := cmd.Flags().GetBool("google")

	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	timer := app.Metrics.NewCommandTimer(ctx)

	if err := awaitResolved(ctx); err != nil {
		timer.Finish("login", false)
		return handleError(err, cmd)
	}

	// Регистрируем ожидание до действия входа, чтобы не пропустить результат
	done := app.Exchanger.Settled()

	var email string
	if google {
		id, err := app.Gateway.SignInWithGoogle(ctx)
		if err != nil {
			timer.Finish("login", false)
			if errors.IsCode(err, errors.ErrUserCancelled) {
				fmt.Println("Вход отменен")
				return nil
			}
			return handleError(err, cmd)
		}
		email = id.Email
	} else {
		if len(args) > 0 {
			email = args[0]
		}
		password, _ := cmd.Flags().GetString("password")

		if email == "" {
			return errors.New(errors.ErrValidation, "email обязателен")
		}
		if password == "" {
			fmt.Print("Введите пароль: ")
			fmt.Scanln(&password)
		}

		if _, err := app.Gateway.SignIn(ctx, email, password); err != nil {
			timer.Finish("login", false)
			return handleError(err, cmd)
		}
	}

	// Вход подтвержден провайдером; дожидаемся токена бэкенда
	if err := awaitExchange(ctx, done); err != nil {
		timer.Finish("login", false)
		return handleError(err, cmd)
	}

	timer.Finish("login", true)
	app.Metrics.AuthEvent(ctx, "login", true, 0)

	destination := app.Guard.ConsumeReturnTo()
	fmt.Printf("✓ Вход выполнен: %s\n", email)
	fmt.Printf("→ %s\n", destination)
	return nil
}

func handleLogout(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer cancel()

	if err := awaitResolved(ctx); err != nil {
		return handleError(err, cmd)
	}

	done := app.Exchanger.Settled()
	app.Gateway.SignOut(ctx)

	// Выход локально безусловен; ждем только обработку события
	if err := awaitExchange(ctx, done); err != nil {
		app.Logger.Warn("событие выхода обработано с ошибкой")
	}

	app.Metrics.AuthEvent(ctx, "logout", true, 0)
	fmt.Println("✓ Выход выполнен")
	return nil
}

func handleRegister(cmd *cobra.Command, args []string) error {
	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	confirm, _ := cmd.Flags().GetString("confirm")
	name, _ := cmd.Flags().GetString("name")
	photo, _ := cmd.Flags().GetString("photo")

	validator := validation.NewValidator()
	if err := validator.ValidateEmail(email); err != nil {
		return handleError(err, cmd)
	}
	if err := validator.ValidatePassword(password); err != nil {
		return handleError(err, cmd)
	}
	if confirm != "" && confirm != password {
		return errors.New(errors.ErrValidation, "пароли не совпадают")
	}
	if err := validator.ValidatePhotoURL(photo); err != nil {
		return handleError(err, cmd)
	}

	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	timer := app.Metrics.NewCommandTimer(ctx)

	if err := awaitResolved(ctx); err != nil {
		timer.Finish("register", false)
		return handleError(err, cmd)
	}

	done := app.Exchanger.Settled()

	if _, err := app.Gateway.CreateAccount(ctx, email, password); err != nil {
		timer.Finish("register", false)
		return handleError(err, cmd)
	}

	if err := awaitExchange(ctx, done); err != nil {
		timer.Finish("register", false)
		return handleError(err, cmd)
	}

	// Профиль дополняется после создания аккаунта
	if name != "" || photo != "" {
		if _, err := app.Gateway.UpdateProfile(ctx, name, photo); err != nil {
			app.Logger.Warn("аккаунт создан, но профиль не обновлен")
		}
	}

	timer.Finish("register", true)
	app.Metrics.AuthEvent(ctx, "register", true, 0)

	fmt.Printf("✓ Пользователь %s зарегистрирован\n", email)
	fmt.Printf("→ %s\n", app.Guard.ConsumeReturnTo())
	return nil
}

func handleProfile(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer cancel()

	if err := app.requireAuth(ctx, "/profile"); err != nil {
		return handleError(err, cmd)
	}

	name, _ := cmd.Flags().GetString("name")
	photo, _ := cmd.Flags().GetString("photo")
	if name == "" && photo == "" {
		return errors.New(errors.ErrValidation, "укажите --name или --photo")
	}

	if photo != "" {
		if err := validation.NewValidator().ValidatePhotoURL(photo); err != nil {
			return handleError(err, cmd)
		}
	}

	id, err := app.Gateway.UpdateProfile(ctx, name, photo)
	if err != nil {
		return handleError(err, cmd)
	}

	fmt.Printf("✓ Профиль обновлен: %s\n", id.DisplayName)
	return nil
}

func handleAuthStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer cancel()

	// Даем первой обработке события завершиться, но статус можно показать
	// и в состоянии resolving
	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	_ = app.Session.WaitResolved(waitCtx)

	state := app.Session.GetState()
	return app.printResult(ctx, output.SessionTable(state), 1)
}
