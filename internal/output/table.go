package output

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"CourseFlowClient/internal/client"
	"CourseFlowClient/internal/session"
)

// TableData представляет данные для табличного вывода
type TableData struct {
	Headers []string
	Rows    []*TableRow
}

// TableRow представляет строку таблицы
type TableRow struct {
	Cells []string
}

// NewTableData создает новые табличные данные
func NewTableData(headers []string) *TableData {
	return &TableData{
		Headers: headers,
		Rows:    make([]*TableRow, 0),
	}
}

// AddRow добавляет строку
func (td *TableData) AddRow(cells ...string) {
	td.Rows = append(td.Rows, &TableRow{Cells: cells})
}

// String возвращает строковое представление таблицы
func (td *TableData) String() string {
	if len(td.Rows) == 0 {
		return "No data found"
	}

	var builder strings.Builder
	w := tabwriter.NewWriter(&builder, 0, 0, 2, ' ', 0)

	if len(td.Headers) > 0 {
		fmt.Fprintln(w, strings.Join(td.Headers, "\t"))
		separators := make([]string, len(td.Headers))
		for i := range separators {
			separators[i] = strings.Repeat("-", len(td.Headers[i]))
		}
		fmt.Fprintln(w, strings.Join(separators, "\t"))
	}

	for _, row := range td.Rows {
		fmt.Fprintln(w, strings.Join(row.Cells, "\t"))
	}

	w.Flush()
	return builder.String()
}

// CoursesTable строит таблицу каталога курсов
func CoursesTable(courses []client.Course) *TableData {
	td := NewTableData([]string{"ID", "TITLE", "CATEGORY", "LEVEL", "SEATS LEFT", "RATING"})
	for _, c := range courses {
		seats := fmt.Sprintf("%d/%d", c.SeatsLeft(), c.Seats)
		if c.Full() {
			seats = "✗ full"
		}
		td.AddRow(c.ID, c.Title, c.Category, c.Level, seats, fmt.Sprintf("%.1f", c.Rating))
	}
	return td
}

// CourseDetailsTable строит таблицу атрибутов одного курса
func CourseDetailsTable(c *client.Course) *TableData {
	td := NewTableData([]string{"FIELD", "VALUE"})
	td.AddRow("ID", c.ID)
	td.AddRow("Title", c.Title)
	td.AddRow("Category", c.Category)
	td.AddRow("Level", c.Level)
	td.AddRow("Language", c.Language)
	td.AddRow("Instructor", c.Instructor.Name)
	td.AddRow("Seats", fmt.Sprintf("%d", c.Seats))
	td.AddRow("Enrolled", fmt.Sprintf("%d", c.EnrollmentCount))
	td.AddRow("Seats left", fmt.Sprintf("%d", c.SeatsLeft()))
	td.AddRow("Rating", fmt.Sprintf("%.1f", c.Rating))
	td.AddRow("Description", c.ShortDescription)
	return td
}

// EnrollmentsTable строит таблицу записей пользователя
func EnrollmentsTable(enrollments []client.Enrollment) *TableData {
	td := NewTableData([]string{"ID", "COURSE", "TITLE", "CATEGORY", "ENROLLED AT"})
	for _, e := range enrollments {
		td.AddRow(e.ID, e.CourseID, e.Title, e.Category, e.EnrolledAt)
	}
	return td
}

// SessionTable строит таблицу текущего состояния сессии
func SessionTable(state session.State) *TableData {
	td := NewTableData([]string{"FIELD", "VALUE"})

	switch {
	case state.Resolving:
		td.AddRow("Status", "⚠ resolving")
	case state.Identity != nil:
		td.AddRow("Status", "✓ authenticated")
	default:
		td.AddRow("Status", "✗ not authenticated")
	}

	if state.Identity != nil {
		td.AddRow("Email", state.Identity.Email)
		td.AddRow("Name", state.Identity.DisplayName)
		td.AddRow("UID", state.Identity.UID)
	}

	if state.Token != "" {
		td.AddRow("Token", truncateToken(state.Token))
	}

	return td
}

// truncateToken обрезает токен для безопасного показа
func truncateToken(token string) string {
	if len(token) <= 12 {
		return "********"
	}
	return token[:8] + "..." + token[len(token)-4:]
}
