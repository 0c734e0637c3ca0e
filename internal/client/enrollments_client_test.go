package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CourseFlowClient/pkg/errors"
)

func TestEnrollmentsClient_ToggleEnroll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/enrollments/toggle", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "c1", req["courseId"])

		_ = json.NewEncoder(w).Encode(ToggleResult{Enrolled: true, EnrollmentID: "e1"})
	}))
	defer srv.Close()

	sess := newAuthenticatedSession(t, "jwt-token")
	enrollments := NewEnrollmentsClient(newSecureClient(t, srv.URL, sess, nil, nil))
	enrollments.Mirror().SetCount(1)

	result, err := enrollments.Toggle(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, result.Enrolled)

	enrolled, known := enrollments.Mirror().Enrolled("c1")
	assert.True(t, known)
	assert.True(t, enrolled)

	count, _ := enrollments.Mirror().Count()
	assert.Equal(t, 2, count, "confirmed enroll shifts the mirrored count by one")
}

func TestEnrollmentsClient_ToggleUnenroll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ToggleResult{Enrolled: false})
	}))
	defer srv.Close()

	sess := newAuthenticatedSession(t, "jwt-token")
	enrollments := NewEnrollmentsClient(newSecureClient(t, srv.URL, sess, nil, nil))
	enrollments.Mirror().SetCount(2)
	enrollments.Mirror().ApplyStatus("c1", &EnrollmentStatus{Enrolled: true, EnrollmentID: "e1"})

	result, err := enrollments.Toggle(context.Background(), "c1")
	require.NoError(t, err)
	assert.False(t, result.Enrolled)

	enrolled, known := enrollments.Mirror().Enrolled("c1")
	assert.True(t, known)
	assert.False(t, enrolled)

	count, _ := enrollments.Mirror().Count()
	assert.Equal(t, 1, count)
}

// Отказ сервера не должен оставлять локальное зеркало в расходящемся
// состоянии: зеркало меняется только подтвержденными результатами.
func TestEnrollmentsClient_ToggleFailureLeavesMirrorUntouched(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "course is full"})
	}))
	defer srv.Close()

	sess := newAuthenticatedSession(t, "jwt-token")
	enrollments := NewEnrollmentsClient(newSecureClient(t, srv.URL, sess, nil, nil))
	enrollments.Mirror().SetCount(1)
	enrollments.Mirror().ApplyStatus("c1", &EnrollmentStatus{Enrolled: false})

	_, err := enrollments.Toggle(context.Background(), "c1")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrConflict))

	enrolled, known := enrollments.Mirror().Enrolled("c1")
	assert.True(t, known)
	assert.False(t, enrolled, "failed toggle must not change the mirrored state")

	count, _ := enrollments.Mirror().Count()
	assert.Equal(t, 1, count)
}

func TestEnrollmentsClient_List(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/my-enrollments", r.URL.Path)
		_ = json.NewEncoder(w).Encode([]Enrollment{
			{ID: "e1", CourseID: "c1", Title: "Go Basics"},
			{ID: "e2", CourseID: "c3", Title: "Watercolor"},
		})
	}))
	defer srv.Close()

	sess := newAuthenticatedSession(t, "jwt-token")
	enrollments := NewEnrollmentsClient(newSecureClient(t, srv.URL, sess, nil, nil))

	list, err := enrollments.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)

	count, hasCount := enrollments.Mirror().Count()
	assert.True(t, hasCount)
	assert.Equal(t, 2, count)

	enrolled, known := enrollments.Mirror().Enrolled("c3")
	assert.True(t, known)
	assert.True(t, enrolled)
}

func TestEnrollmentsClient_StatusAndCount(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/enrollment-status":
			assert.Equal(t, "c1", r.URL.Query().Get("courseId"))
			_ = json.NewEncoder(w).Encode(EnrollmentStatus{Enrolled: true, EnrollmentID: "e1"})
		case "/api/my-enrollment-count":
			_ = json.NewEncoder(w).Encode(map[string]int{"count": 3})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	sess := newAuthenticatedSession(t, "jwt-token")
	enrollments := NewEnrollmentsClient(newSecureClient(t, srv.URL, sess, nil, nil))

	status, err := enrollments.Status(context.Background(), "c1")
	require.NoError(t, err)
	assert.True(t, status.Enrolled)

	count, err := enrollments.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, MaxActiveEnrollments, count)
}

func TestEnrollmentMirror_CountWithoutBaseline(t *testing.T) {
	mirror := NewEnrollmentMirror()

	// До первого подтвержденного счетчика дельты не применяются
	mirror.ApplyToggle("c1", &ToggleResult{Enrolled: true, EnrollmentID: "e1"})

	_, hasCount := mirror.Count()
	assert.False(t, hasCount)

	mirror.SetCount(1)
	mirror.ApplyToggle("c2", &ToggleResult{Enrolled: true, EnrollmentID: "e2"})

	count, hasCount := mirror.Count()
	assert.True(t, hasCount)
	assert.Equal(t, 2, count)
}
