package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CourseFlowClient/internal/client"
	"CourseFlowClient/internal/identity"
	"CourseFlowClient/internal/session"
)

func TestTableData_String(t *testing.T) {
	td := NewTableData([]string{"ID", "TITLE"})
	td.AddRow("c1", "Go Basics")
	td.AddRow("c2", "Advanced Go")

	out := td.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "TITLE")
	assert.Contains(t, lines[2], "Go Basics")
}

func TestTableData_Empty(t *testing.T) {
	td := NewTableData([]string{"ID"})
	assert.Equal(t, "No data found", td.String())
}

func TestJSONFormatter(t *testing.T) {
	f := NewJSONFormatter(false)

	out, err := f.Format(map[string]int{"count": 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":3}`, out)
}

func TestYAMLFormatter(t *testing.T) {
	f := NewYAMLFormatter()

	out, err := f.Format(map[string]string{"status": "ok"})
	require.NoError(t, err)
	assert.Contains(t, out, "status: ok")
}

func TestGetFormatter(t *testing.T) {
	assert.IsType(t, &JSONFormatter{}, GetFormatter(FormatJSON, true, false))
	assert.IsType(t, &YAMLFormatter{}, GetFormatter(FormatYAML, false, false))
	assert.IsType(t, &TableFormatter{}, GetFormatter(FormatTable, false, false))
	assert.IsType(t, &ColorFormatter{}, GetFormatter(FormatTable, false, true))
	assert.IsType(t, &TableFormatter{}, GetFormatter("unknown", false, false))
}

func TestColorFormatter_NoColorsPassThrough(t *testing.T) {
	td := NewTableData([]string{"FIELD", "VALUE"})
	td.AddRow("Status", "✓ authenticated")

	plain, err := NewColorFormatter(NewTableFormatter(), false).Format(td)
	require.NoError(t, err)
	assert.NotContains(t, plain, "\033[")

	colored, err := NewColorFormatter(NewTableFormatter(), true).Format(td)
	require.NoError(t, err)
	assert.Contains(t, colored, "\033[1;32m")
}

func TestCoursesTable(t *testing.T) {
	td := CoursesTable([]client.Course{
		{ID: "c1", Title: "Go Basics", Category: "programming", Seats: 30, EnrollmentCount: 30},
		{ID: "c2", Title: "Advanced Go", Category: "programming", Seats: 20, EnrollmentCount: 5, Rating: 4.8},
	})

	out := td.String()
	assert.Contains(t, out, "✗ full")
	assert.Contains(t, out, "15/20")
	assert.Contains(t, out, "4.8")
}

func TestSessionTable(t *testing.T) {
	authenticated := session.State{
		Identity: &identity.Identity{UID: "uid-1", Email: "user@example.com", DisplayName: "User"},
		Token:    "very-long-jwt-token-value",
	}

	out := SessionTable(authenticated).String()
	assert.Contains(t, out, "✓ authenticated")
	assert.Contains(t, out, "user@example.com")
	assert.NotContains(t, out, "very-long-jwt-token-value", "full token must not be printed")

	anonymous := session.State{}
	assert.Contains(t, SessionTable(anonymous).String(), "✗ not authenticated")

	resolving := session.State{Resolving: true}
	assert.Contains(t, SessionTable(resolving).String(), "⚠ resolving")
}
