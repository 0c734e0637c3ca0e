package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"CourseFlowClient/internal/client"
	"CourseFlowClient/internal/output"
	"CourseFlowClient/pkg/logger"
	"CourseFlowClient/pkg/validation"
)

var enrollmentsCmd = &cobra.Command{
	Use:   "enrollments",
	Short: "Записи на курсы",
	Long: `Команды для управления записями на курсы: запись и отмена записи,
просмотр своих записей и проверка статуса.`,
}

var enrollToggleCmd = &cobra.Command{
	Use:   "toggle [course-id]",
	Short: "Записаться на курс или отменить запись",
	Long: `Переключает запись на курс: записывает, если записи нет, и отменяет,
если запись есть. Результат подтверждается сервером.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleEnrollToggle(cmd, args)
	},
}

var enrollListCmd = &cobra.Command{
	Use:   "list",
	Short: "Мои записи",
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleEnrollList(cmd, args)
	},
}

var enrollStatusCmd = &cobra.Command{
	Use:   "status [course-id]",
	Short: "Статус записи на курс",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleEnrollStatus(cmd, args)
	},
}

var enrollCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Число активных записей",
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleEnrollCount(cmd, args)
	},
}

func init() {
	enrollmentsCmd.AddCommand(enrollToggleCmd)
	enrollmentsCmd.AddCommand(enrollListCmd)
	enrollmentsCmd.AddCommand(enrollStatusCmd)
	enrollmentsCmd.AddCommand(enrollCountCmd)
}

func handleEnrollToggle(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	if err := app.requireAuth(ctx, "/courses/"+args[0]); err != nil {
		return handleError(err, cmd)
	}

	courseID := args[0]
	if err := validation.NewValidator().ValidateCourseID(courseID); err != nil {
		return handleError(err, cmd)
	}

	timer := app.Metrics.NewCommandTimer(ctx)

	// Подсказка о лимите до запроса; авторитетное решение за сервером
	enrolled, known := app.Enrollments.Mirror().Enrolled(courseID)
	if !known {
		if status, err := app.Enrollments.Status(ctx, courseID); err == nil {
			enrolled = status.Enrolled
		}
	}
	if !enrolled {
		if count, err := app.Enrollments.Count(ctx); err == nil && count >= client.MaxActiveEnrollments {
			fmt.Printf("⚠ У вас уже %d активных записей, сервер может отклонить новую\n", count)
		} else if err != nil {
			app.Logger.Debug("не удалось получить счетчик записей", logger.Error(err))
		}
	}

	result, err := app.Enrollments.Toggle(ctx, courseID)
	if err != nil {
		timer.Finish("enrollments toggle", false)
		return handleError(err, cmd)
	}

	timer.Finish("enrollments toggle", true)

	if result.Enrolled {
		fmt.Printf("✓ Вы записаны на курс %s\n", courseID)
	} else {
		fmt.Printf("✓ Запись на курс %s отменена\n", courseID)
	}
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	return nil
}

func handleEnrollList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	if err := app.requireAuth(ctx, "/my-enrollments"); err != nil {
		return handleError(err, cmd)
	}

	enrollments, err := app.Enrollments.List(ctx)
	if err != nil {
		return handleError(err, cmd)
	}

	return app.printResult(ctx, output.EnrollmentsTable(enrollments), len(enrollments))
}

func handleEnrollStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	if err := app.requireAuth(ctx, "/courses/"+args[0]); err != nil {
		return handleError(err, cmd)
	}

	status, err := app.Enrollments.Status(ctx, args[0])
	if err != nil {
		return handleError(err, cmd)
	}

	if status.Enrolled {
		fmt.Printf("✓ Вы записаны на курс %s\n", args[0])
	} else {
		fmt.Printf("✗ Вы не записаны на курс %s\n", args[0])
	}
	return nil
}

func handleEnrollCount(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	if err := app.requireAuth(ctx, "/my-enrollments"); err != nil {
		return handleError(err, cmd)
	}

	count, err := app.Enrollments.Count(ctx)
	if err != nil {
		return handleError(err, cmd)
	}

	fmt.Printf("Активных записей: %d из %d\n", count, client.MaxActiveEnrollments)
	return nil
}
