package client

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"CourseFlowClient/pkg/errors"
	"CourseFlowClient/pkg/retry"
)

// Instructor описывает преподавателя курса
type Instructor struct {
	Name   string `json:"name"`
	Title  string `json:"title,omitempty"`
	Avatar string `json:"avatar,omitempty"`
}

// Course представляет курс каталога
type Course struct {
	ID                  string     `json:"_id"`
	Title               string     `json:"title"`
	ShortDescription    string     `json:"shortDescription"`
	DetailedDescription string     `json:"detailedDescription,omitempty"`
	Category            string     `json:"category"`
	Level               string     `json:"level,omitempty"`
	Language            string     `json:"language,omitempty"`
	Image               string     `json:"image,omitempty"`
	Seats               int        `json:"seats"`
	EnrollmentCount     int        `json:"enrollmentCount"`
	Rating              float64    `json:"rating,omitempty"`
	Featured            bool       `json:"featured,omitempty"`
	Instructor          Instructor `json:"instructor,omitempty"`
	CreatedBy           string     `json:"createdBy,omitempty"`
	CreatedAt           string     `json:"createdAt,omitempty"`
}

// SeatsLeft возвращает число свободных мест на курсе
func (c Course) SeatsLeft() int {
	left := c.Seats - c.EnrollmentCount
	if left < 0 {
		return 0
	}
	return left
}

// Full сообщает, что свободных мест не осталось
func (c Course) Full() bool {
	return c.Seats > 0 && c.EnrollmentCount >= c.Seats
}

// CourseInput содержит поля создания и редактирования курса
type CourseInput struct {
	Title               string `json:"title"`
	ShortDescription    string `json:"shortDescription"`
	DetailedDescription string `json:"detailedDescription,omitempty"`
	Category            string `json:"category"`
	Level               string `json:"level,omitempty"`
	Language            string `json:"language,omitempty"`
	Image               string `json:"image,omitempty"`
	Seats               int    `json:"seats"`
}

// ListOptions содержит параметры выборки каталога курсов
type ListOptions struct {
	Category string
	Level    string
	Search   string
	Sort     string // title | rating | newest
}

// CoursesClient выполняет операции каталога курсов
type CoursesClient struct {
	api   *SecureClient
	retry retry.Config
}

// NewCoursesClient создает клиент каталога курсов
func NewCoursesClient(api *SecureClient) *CoursesClient {
	return &CoursesClient{
		api:   api,
		retry: retry.DefaultConfig(),
	}
}

// retryable: повторяются только сетевые и серверные отказы на путях чтения
func retryableRead(err error) bool {
	return errors.IsCode(err, errors.ErrNetwork) || errors.IsCode(err, errors.ErrServer)
}

// List возвращает каталог курсов с учетом фильтров
func (c *CoursesClient) List(ctx context.Context, opts ListOptions) ([]Course, error) {
	params := url.Values{}
	if opts.Category != "" {
		params.Set("category", opts.Category)
	}
	if opts.Level != "" {
		params.Set("level", opts.Level)
	}
	if opts.Search != "" {
		params.Set("search", opts.Search)
	}

	path := "/api/courses"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var courses []Course
	err := retry.WithRetry(ctx, c.retry, retryableRead, func(ctx context.Context) error {
		courses = nil
		return c.api.Get(ctx, path, &courses)
	})
	if err != nil {
		return nil, err
	}

	sortCourses(courses, opts.Sort)
	return courses, nil
}

// Get возвращает курс по идентификатору
func (c *CoursesClient) Get(ctx context.Context, id string) (*Course, error) {
	var course Course
	err := retry.WithRetry(ctx, c.retry, retryableRead, func(ctx context.Context) error {
		return c.api.Get(ctx, "/api/courses/"+url.PathEscape(id), &course)
	})
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// Latest возвращает последние добавленные курсы
func (c *CoursesClient) Latest(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := retry.WithRetry(ctx, c.retry, retryableRead, func(ctx context.Context) error {
		courses = nil
		return c.api.Get(ctx, "/api/courses/latest", &courses)
	})
	return courses, err
}

// Popular возвращает курсы с наибольшим числом записей
func (c *CoursesClient) Popular(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := retry.WithRetry(ctx, c.retry, retryableRead, func(ctx context.Context) error {
		courses = nil
		return c.api.Get(ctx, "/api/courses/popular", &courses)
	})
	return courses, err
}

// Mine возвращает курсы, созданные текущим пользователем
func (c *CoursesClient) Mine(ctx context.Context) ([]Course, error) {
	var courses []Course
	err := c.api.Get(ctx, "/api/my-courses", &courses)
	return courses, err
}

// Create создает новый курс
func (c *CoursesClient) Create(ctx context.Context, input CourseInput) (*Course, error) {
	var course Course
	if err := c.api.Post(ctx, "/api/courses", input, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Update обновляет существующий курс
func (c *CoursesClient) Update(ctx context.Context, id string, input CourseInput) (*Course, error) {
	var course Course
	if err := c.api.Put(ctx, "/api/courses/"+url.PathEscape(id), input, &course); err != nil {
		return nil, err
	}
	return &course, nil
}

// Delete удаляет курс
func (c *CoursesClient) Delete(ctx context.Context, id string) error {
	return c.api.Delete(ctx, "/api/courses/"+url.PathEscape(id))
}

func sortCourses(courses []Course, mode string) {
	switch mode {
	case "title":
		sort.Slice(courses, func(i, j int) bool {
			return strings.ToLower(courses[i].Title) < strings.ToLower(courses[j].Title)
		})
	case "rating":
		sort.Slice(courses, func(i, j int) bool {
			return courses[i].Rating > courses[j].Rating
		})
	case "newest":
		sort.Slice(courses, func(i, j int) bool {
			return courses[i].CreatedAt > courses[j].CreatedAt
		})
	}
}
