package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"

	"CourseFlowClient/internal/client"
	"CourseFlowClient/internal/config"
	"CourseFlowClient/internal/exchange"
	"CourseFlowClient/internal/guard"
	"CourseFlowClient/internal/identity"
	climetrics "CourseFlowClient/internal/metrics"
	"CourseFlowClient/internal/output"
	"CourseFlowClient/internal/session"
	"CourseFlowClient/internal/store"
	"CourseFlowClient/pkg/errors"
	"CourseFlowClient/pkg/logger"
	"CourseFlowClient/pkg/metrics"
	"CourseFlowClient/pkg/ratelimit"
)

// App объединяет зависимости команд CLI
type App struct {
	Config      *config.Config
	Logger      logger.Logger
	Session     *session.Store
	Gateway     *identity.Gateway
	Exchanger   *exchange.Exchanger
	Courses     *client.CoursesClient
	Enrollments *client.EnrollmentsClient
	Guard       *guard.Guard
	Metrics     *climetrics.CLIMetrics
	Formatter   output.Formatter
}

// consoleNavigator выполняет "переходы" маршрутов в терминах CLI:
// печатает подсказку, куда попал бы пользователь браузерного клиента
type consoleNavigator struct{}

func (consoleNavigator) Redirect(route string) {
	fmt.Fprintf(os.Stderr, "Сессия сброшена, требуется вход: courseflow auth login (маршрут %s)\n", route)
}

// newApp собирает зависимости приложения: конфигурацию, логгер, хранилище
// сессии, шлюз идентификации, обменник токенов и клиенты API.
func newApp(ctx context.Context) (*App, error) {
	path, err := config.GetConfigPath()
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Флаги и переменные окружения перекрывают файл конфигурации
	if format := viper.GetString("output"); format != "" {
		cfg.Output.Format = format
	}
	if server := viper.GetString("server"); server != "" {
		cfg.API.BaseURL = server
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	environment, level := "prod", "warn"
	if viper.GetBool("verbose") {
		environment, level = "dev", "debug"
	}

	log, err := logger.NewLogger(environment, level, "courseflow-cli")
	if err != nil {
		return nil, err
	}

	if err := metrics.InitializeOpenTelemetry("courseflow-cli"); err != nil {
		log.Warn("не удалось инициализировать OpenTelemetry", logger.Error(err))
	}

	cliMetrics := climetrics.NewCLIMetrics(log)

	var tokens store.TokenStore
	var limiter ratelimit.RateLimiter = ratelimit.NoopRateLimiter{}

	switch cfg.Storage.Backend {
	case "redis":
		redisStore, err := store.NewRedisTokenStore(
			cfg.Storage.Redis.Addr,
			cfg.Storage.Redis.Password,
			cfg.Storage.Redis.DB,
		)
		if err != nil {
			return nil, err
		}
		tokens = redisStore
		limiter = ratelimit.NewRedisRateLimiter(redisStore.Client())
	default:
		fileStore, err := store.NewFileTokenStore()
		if err != nil {
			return nil, err
		}
		tokens = fileStore
	}

	sess := session.NewStore(tokens, log)

	sess.Subscribe(func(state session.State) {
		switch {
		case state.Resolving:
			cliMetrics.SetSessionState("resolving")
		case state.Identity != nil:
			cliMetrics.SetSessionState("authenticated")
		default:
			cliMetrics.SetSessionState("unauthenticated")
		}
	})

	// Восстанавливаем сессию из снимка до первого события провайдера:
	// сохраненный токен доступен сразу, его актуальность подтвердит обмен
	var restored *identity.Identity
	if tokens.Has() {
		if snapshot, err := tokens.Load(); err == nil {
			sess.Restore(snapshot)
			restored = &identity.Identity{
				UID:         snapshot.UserID,
				Email:       snapshot.Email,
				DisplayName: snapshot.DisplayName,
				PhotoURL:    snapshot.PhotoURL,
			}
		} else {
			log.Warn("не удалось восстановить снимок сессии", logger.Error(err))
		}
	}

	provider := identity.NewProviderClient(
		cfg.Identity.BaseURL,
		cfg.Identity.APIKey,
		time.Duration(cfg.Identity.Timeout)*time.Second,
		log,
	)
	gateway := identity.NewGateway(provider, restored, log)

	apiTimeout := time.Duration(cfg.API.Timeout) * time.Second
	exchanger := exchange.NewExchanger(sess, gateway.Events(), cfg.API.BaseURL, apiTimeout, log)
	go exchanger.Run(ctx)

	gateway.Start()

	api := client.NewSecureClient(
		cfg.API.BaseURL,
		apiTimeout,
		sess,
		gateway,
		consoleNavigator{},
		limiter,
		cfg.RateLimit.RequestsPerMinute,
		log,
		&cliMetrics.Metrics,
	)

	// Маршрут возврата переживает процесс: перенаправление и вход выполняются
	// разными вызовами CLI
	stash, err := store.NewFileReturnToStash()
	if err != nil {
		return nil, err
	}
	routeGuard := guard.New(sess, "/login", cfg.DefaultRoute, stash)

	useColors := cfg.Output.Colors && output.DetectColors()
	formatter := output.GetFormatter(output.FormatType(cfg.Output.Format), true, useColors)

	return &App{
		Config:      cfg,
		Logger:      log,
		Session:     sess,
		Gateway:     gateway,
		Exchanger:   exchanger,
		Courses:     client.NewCoursesClient(api),
		Enrollments: client.NewEnrollmentsClient(api),
		Guard:       routeGuard,
		Metrics:     cliMetrics,
		Formatter:   formatter,
	}, nil
}

// requireAuth проверяет защищенный маршрут. Пока сессия восстанавливается,
// решение откладывается; анонимный пользователь получает перенаправление на
// вход с сохранением исходного маршрута.
func (a *App) requireAuth(ctx context.Context, route string) error {
	decision := a.Guard.Check(route)

	if decision.Action == guard.ActionWait {
		waitCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := a.Session.WaitResolved(waitCtx); err != nil {
			return err
		}
		decision = a.Guard.Check(route)
	}

	if decision.Action == guard.ActionRedirect {
		return errors.New(errors.ErrNotAuthenticated, "требуется вход").
			WithDetails(fmt.Sprintf("выполните: courseflow auth login (вернетесь к %s)", decision.From))
	}

	return nil
}

// printResult печатает данные в выбранном формате на stdout
func (a *App) printResult(ctx context.Context, data interface{}, recordCount int) error {
	start := time.Now()

	formatted, err := a.Formatter.Format(data)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "ошибка форматирования вывода")
	}

	fmt.Println(formatted)
	a.Metrics.OutputGenerated(ctx, a.Config.Output.Format, recordCount, time.Since(start))
	return nil
}
