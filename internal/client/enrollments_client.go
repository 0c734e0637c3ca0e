package client

import (
	"context"
	"net/url"
)

// MaxActiveEnrollments задает клиентскую подсказку лимита одновременных
// записей.
// Сервер применяет лимит авторитетно, клиент лишь предупреждает заранее.
const MaxActiveEnrollments = 3

// Enrollment представляет запись пользователя на курс
type Enrollment struct {
	ID         string `json:"_id"`
	CourseID   string `json:"courseId"`
	Title      string `json:"title"`
	Category   string `json:"category,omitempty"`
	Instructor string `json:"instructor,omitempty"`
	EnrolledAt string `json:"enrolledAt,omitempty"`
}

// ToggleResult содержит подтвержденный сервером результат переключения
// записи
type ToggleResult struct {
	Enrolled     bool   `json:"enrolled"`
	EnrollmentID string `json:"enrollmentId,omitempty"`
	Message      string `json:"message,omitempty"`
}

// EnrollmentStatus представляет состояние записи текущего пользователя
// на курс
type EnrollmentStatus struct {
	Enrolled     bool   `json:"enrolled"`
	EnrollmentID string `json:"enrollmentId,omitempty"`
}

type enrollmentCountResponse struct {
	Count int `json:"count"`
}

// EnrollmentsClient выполняет операции записи на курсы
type EnrollmentsClient struct {
	api    *SecureClient
	mirror *EnrollmentMirror
}

// NewEnrollmentsClient создает клиент записей на курсы
func NewEnrollmentsClient(api *SecureClient) *EnrollmentsClient {
	return &EnrollmentsClient{
		api:    api,
		mirror: NewEnrollmentMirror(),
	}
}

// Mirror возвращает локальное зеркало состояния записей
func (c *EnrollmentsClient) Mirror() *EnrollmentMirror {
	return c.mirror
}

// Toggle переключает запись на курс. Локальное зеркало обновляется только
// подтвержденным результатом сервера; отказ оставляет зеркало нетронутым.
func (c *EnrollmentsClient) Toggle(ctx context.Context, courseID string) (*ToggleResult, error) {
	var result ToggleResult
	err := c.api.Post(ctx, "/api/enrollments/toggle", map[string]string{
		"courseId": courseID,
	}, &result)
	if err != nil {
		return nil, err
	}

	c.mirror.ApplyToggle(courseID, &result)
	return &result, nil
}

// List возвращает записи текущего пользователя
func (c *EnrollmentsClient) List(ctx context.Context) ([]Enrollment, error) {
	var enrollments []Enrollment
	if err := c.api.Get(ctx, "/api/my-enrollments", &enrollments); err != nil {
		return nil, err
	}

	c.mirror.SetCount(len(enrollments))
	for _, e := range enrollments {
		c.mirror.ApplyStatus(e.CourseID, &EnrollmentStatus{Enrolled: true, EnrollmentID: e.ID})
	}
	return enrollments, nil
}

// Status возвращает состояние записи на конкретный курс
func (c *EnrollmentsClient) Status(ctx context.Context, courseID string) (*EnrollmentStatus, error) {
	var status EnrollmentStatus
	path := "/api/enrollment-status?courseId=" + url.QueryEscape(courseID)
	if err := c.api.Get(ctx, path, &status); err != nil {
		return nil, err
	}

	c.mirror.ApplyStatus(courseID, &status)
	return &status, nil
}

// Count возвращает число активных записей пользователя
func (c *EnrollmentsClient) Count(ctx context.Context) (int, error) {
	var resp enrollmentCountResponse
	if err := c.api.Get(ctx, "/api/my-enrollment-count", &resp); err != nil {
		return 0, err
	}

	c.mirror.SetCount(resp.Count)
	return resp.Count, nil
}
