package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"CourseFlowClient/internal/client"
	"CourseFlowClient/internal/output"
	"CourseFlowClient/pkg/validation"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Каталог курсов",
	Long: `Команды для работы с каталогом курсов: просмотр, поиск,
создание и управление собственными курсами.`,
}

var coursesListCmd = &cobra.Command{
	Use:   "list",
	Short: "Показать каталог курсов",
	Long:  `Отображает каталог курсов с фильтрацией по категории и поиском.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleCoursesList(cmd, args)
	},
}

var coursesShowCmd = &cobra.Command{
	Use:   "show [course-id]",
	Short: "Показать курс",
	Long:  `Отображает подробную информацию о курсе, включая свободные места.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleCoursesShow(cmd, args)
	},
}

var coursesLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Последние добавленные курсы",
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleCoursesLatest(cmd, args)
	},
}

var coursesPopularCmd = &cobra.Command{
	Use:   "popular",
	Short: "Популярные курсы",
	Long:  `Отображает курсы с наибольшим числом записей.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleCoursesPopular(cmd, args)
	},
}

var coursesMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Мои курсы",
	Long:  `Отображает курсы, созданные текущим пользователем.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleCoursesMine(cmd, args)
	},
}

var coursesCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Создать курс",
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleCoursesCreate(cmd, args)
	},
}

var coursesUpdateCmd = &cobra.Command{
	Use:   "update [course-id]",
	Short: "Обновить курс",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleCoursesUpdate(cmd, args)
	},
}

var coursesDeleteCmd = &cobra.Command{
	Use:   "delete [course-id]",
	Short: "Удалить курс",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return handleCoursesDelete(cmd, args)
	},
}

func init() {
	coursesCmd.AddCommand(coursesListCmd)
	coursesCmd.AddCommand(coursesShowCmd)
	coursesCmd.AddCommand(coursesLatestCmd)
	coursesCmd.AddCommand(coursesPopularCmd)
	coursesCmd.AddCommand(coursesMineCmd)
	coursesCmd.AddCommand(coursesCreateCmd)
	coursesCmd.AddCommand(coursesUpdateCmd)
	coursesCmd.AddCommand(coursesDeleteCmd)

	// List flags
	coursesListCmd.Flags().StringP("category", "c", "", "фильтр по категории")
	coursesListCmd.Flags().StringP("level", "l", "", "фильтр по уровню")
	coursesListCmd.Flags().String("search", "", "поиск по названию")
	coursesListCmd.Flags().String("sort", "", "сортировка (title, rating, newest)")

	// Create/update flags
	for _, c := range []*cobra.Command{coursesCreateCmd, coursesUpdateCmd} {
		c.Flags().StringP("title", "t", "", "название курса")
		c.Flags().String("short-description", "", "краткое описание")
		c.Flags().String("description", "", "подробное описание")
		c.Flags().StringP("category", "c", "", "категория")
		c.Flags().StringP("level", "l", "", "уровень (beginner, intermediate, advanced)")
		c.Flags().String("language", "", "язык курса")
		c.Flags().String("image", "", "URL обложки")
		c.Flags().Int("seats", 30, "количество мест")
	}
}

func handleCoursesList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	timer := app.Metrics.NewCommandTimer(ctx)

	category, _ := cmd.Flags().GetString("category")
	level, _ := cmd.Flags().GetString("level")
	search, _ := cmd.Flags().GetString("search")
	sortMode, _ := cmd.Flags().GetString("sort")

	courses, err := app.Courses.List(ctx, client.ListOptions{
		Category: category,
		Level:    level,
		Search:   search,
		Sort:     sortMode,
	})
	if err != nil {
		timer.Finish("courses list", false)
		return handleError(err, cmd)
	}

	timer.Finish("courses list", true)
	return app.printResult(ctx, output.CoursesTable(courses), len(courses))
}

func handleCoursesShow(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	if err := validation.NewValidator().ValidateCourseID(args[0]); err != nil {
		return handleError(err, cmd)
	}

	course, err := app.Courses.Get(ctx, args[0])
	if err != nil {
		return handleError(err, cmd)
	}

	return app.printResult(ctx, output.CourseDetailsTable(course), 1)
}

func handleCoursesLatest(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	courses, err := app.Courses.Latest(ctx)
	if err != nil {
		return handleError(err, cmd)
	}

	return app.printResult(ctx, output.CoursesTable(courses), len(courses))
}

func handleCoursesPopular(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	courses, err := app.Courses.Popular(ctx)
	if err != nil {
		return handleError(err, cmd)
	}

	return app.printResult(ctx, output.CoursesTable(courses), len(courses))
}

func handleCoursesMine(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	if err := app.requireAuth(ctx, "/manage-courses"); err != nil {
		return handleError(err, cmd)
	}

	courses, err := app.Courses.Mine(ctx)
	if err != nil {
		return handleError(err, cmd)
	}

	return app.printResult(ctx, output.CoursesTable(courses), len(courses))
}

// courseInputFromFlags собирает поля курса из флагов команды
func courseInputFromFlags(cmd *cobra.Command) (client.CourseInput, error) {
	title, _ := cmd.Flags().GetString("title")
	shortDesc, _ := cmd.Flags().GetString("short-description")
	desc, _ := cmd.Flags().GetString("description")
	category, _ := cmd.Flags().GetString("category")
	level, _ := cmd.Flags().GetString("level")
	language, _ := cmd.Flags().GetString("language")
	image, _ := cmd.Flags().GetString("image")
	seats, _ := cmd.Flags().GetInt("seats")

	validator := validation.NewValidator()
	if err := validator.ValidateCourseTitle(title); err != nil {
		return client.CourseInput{}, err
	}
	if err := validator.ValidateSeats(seats); err != nil {
		return client.CourseInput{}, err
	}

	return client.CourseInput{
		Title:               title,
		ShortDescription:    shortDesc,
		DetailedDescription: desc,
		Category:            category,
		Level:               level,
		Language:            language,
		Image:               image,
		Seats:               seats,
	}, nil
}

func handleCoursesCreate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	if err := app.requireAuth(ctx, "/manage-courses"); err != nil {
		return handleError(err, cmd)
	}

	input, err := courseInputFromFlags(cmd)
	if err != nil {
		return handleError(err, cmd)
	}

	course, err := app.Courses.Create(ctx, input)
	if err != nil {
		return handleError(err, cmd)
	}

	fmt.Printf("✓ Курс создан: %s\n", course.ID)
	return nil
}

func handleCoursesUpdate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	if err := app.requireAuth(ctx, "/manage-courses"); err != nil {
		return handleError(err, cmd)
	}

	if err := validation.NewValidator().ValidateCourseID(args[0]); err != nil {
		return handleError(err, cmd)
	}

	input, err := courseInputFromFlags(cmd)
	if err != nil {
		return handleError(err, cmd)
	}

	course, err := app.Courses.Update(ctx, args[0], input)
	if err != nil {
		return handleError(err, cmd)
	}

	fmt.Printf("✓ Курс обновлен: %s\n", course.ID)
	return nil
}

func handleCoursesDelete(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(rootCtx, 60*time.Second)
	defer cancel()

	if err := app.requireAuth(ctx, "/manage-courses"); err != nil {
		return handleError(err, cmd)
	}

	if err := app.Courses.Delete(ctx, args[0]); err != nil {
		return handleError(err, cmd)
	}

	fmt.Printf("✓ Курс %s удален\n", args[0])
	return nil
}
