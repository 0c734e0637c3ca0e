package client

import "sync"

type mirrorEntry struct {
	enrolled     bool
	enrollmentID string
}

// EnrollmentMirror представляет локальное зеркало состояния записей.
// Мутируется только
// подтвержденными ответами сервера, поэтому неудавшийся запрос не оставляет
// расхождений.
type EnrollmentMirror struct {
	mu       sync.Mutex
	entries  map[string]mirrorEntry
	count    int
	hasCount bool
}

// NewEnrollmentMirror создает пустое зеркало записей
func NewEnrollmentMirror() *EnrollmentMirror {
	return &EnrollmentMirror{
		entries: make(map[string]mirrorEntry),
	}
}

// ApplyToggle применяет подтвержденный результат переключения записи.
// Счетчик активных записей сдвигается на единицу в сторону результата.
func (m *EnrollmentMirror) ApplyToggle(courseID string, result *ToggleResult) {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, known := m.entries[courseID]
	m.entries[courseID] = mirrorEntry{
		enrolled:     result.Enrolled,
		enrollmentID: result.EnrollmentID,
	}

	if !m.hasCount {
		return
	}
	if result.Enrolled && (!known || !prev.enrolled) {
		m.count++
	}
	if !result.Enrolled && known && prev.enrolled && m.count > 0 {
		m.count--
	}
}

// ApplyStatus применяет состояние записи, полученное от сервера
func (m *EnrollmentMirror) ApplyStatus(courseID string, status *EnrollmentStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[courseID] = mirrorEntry{
		enrolled:     status.Enrolled,
		enrollmentID: status.EnrollmentID,
	}
}

// SetCount фиксирует подтвержденное сервером число активных записей
func (m *EnrollmentMirror) SetCount(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.count = count
	m.hasCount = true
}

// Enrolled сообщает, записан ли пользователь на курс по данным зеркала.
// Второе значение показывает, известно ли зеркалу состояние этого курса.
func (m *EnrollmentMirror) Enrolled(courseID string) (bool, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, known := m.entries[courseID]
	return entry.enrolled, known
}

// Count возвращает известное зеркалу число активных записей.
// Второе значение показывает, получал ли клиент счетчик от сервера.
func (m *EnrollmentMirror) Count() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count, m.hasCount
}
