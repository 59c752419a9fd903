package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusalpri/academy/core/progress"
	"github.com/nexusalpri/academy/core/user"
	"github.com/nexusalpri/academy/tests"
)

const courseID = "course-1"

func progressPath(userID, suffix string) string {
	return "/api/progress/" + userID + "/" + courseID + suffix
}

func Test_progressApi_access(t *testing.T) {
	env := setup(t)
	student := testutil.CreateUser(t, env.usrRepo, "Student", "student@test.cd", "", user.RoleStudent, true)
	other := testutil.CreateUser(t, env.usrRepo, "Other", "other@test.cd", "", user.RoleStudent, true)
	admin := testutil.CreateUser(t, env.usrRepo, "Admin", "admin@test.cd", "", user.RoleAdmin, true)
	testutil.Enroll(t, env.enrollments, student.ID, courseID)

	body := marchallObj(t, map[string]string{"lessonId": "l1"})
	forbidden := marchallObj(t, httpErr{Error: "permission denied"})

	tests := []httpTest{
		{name: "Auth required", method: http.MethodPost, path: progressPath(student.ID, "/lesson"), body: body, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Invalid token", method: http.MethodGet, path: progressPath(student.ID, ""), token: "lol", wantCode: http.StatusUnauthorized},
		{name: "Other user", method: http.MethodPost, path: progressPath(student.ID, "/lesson"), body: body, token: getToken(t, env.conf, other), wantCode: http.StatusForbidden, wantData: forbidden},
		{name: "Admin is not the user", method: http.MethodPost, path: progressPath(student.ID, "/consolidate"), token: getToken(t, env.conf, admin), wantCode: http.StatusForbidden, wantData: forbidden},
		{
			name: "Not enrolled", method: http.MethodPost, path: progressPath(other.ID, "/lesson"), body: body, token: getToken(t, env.conf, other),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: progress.ErrNotEnrolled.Error()}),
		},
		{
			name: "No progress yet", method: http.MethodGet, path: progressPath(student.ID, ""), token: getToken(t, env.conf, student),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: progress.ErrNotFound.Error()}),
		},
		{
			name: "Nothing to consolidate", method: http.MethodPost, path: progressPath(student.ID, "/consolidate"), token: getToken(t, env.conf, student),
			wantCode: http.StatusConflict,
			wantData: marchallObj(t, map[string]string{"error": progress.ErrNoProgressToConsolidate.Error(), "hint": "complete lessons first"}),
		},
		{
			name: "Not enrolled consolidation", method: http.MethodPost, path: progressPath(other.ID, "/consolidate"), token: getToken(t, env.conf, other),
			wantCode: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_progressApi_validation(t *testing.T) {
	env := setup(t)
	student := testutil.CreateUser(t, env.usrRepo, "Student", "student@test.cd", "", user.RoleStudent, true)
	testutil.Enroll(t, env.enrollments, student.ID, courseID)
	token := getToken(t, env.conf, student)
	required := "this field is required"

	tests := []httpTest{
		{
			name: "lesson: lessonId required", path: progressPath(student.ID, "/lesson"), body: []byte(`{"lessonId": "  "}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"lessonId": required}),
		},
		{
			name: "quiz: all required", path: progressPath(student.ID, "/quiz"), body: []byte(`{}`),
			wantCode: http.StatusBadRequest, wantData: marchallObj(t, map[string]string{"lessonId": required, "score": required}),
		},
		{name: "quiz: score too high", path: progressPath(student.ID, "/quiz"), body: []byte(`{"lessonId": "l1", "score": 150}`), wantCode: http.StatusBadRequest},
		{name: "quiz: negative score", path: progressPath(student.ID, "/quiz"), body: []byte(`{"lessonId": "l1", "score": -1}`), wantCode: http.StatusBadRequest},
		{name: "quiz: zero score", path: progressPath(student.ID, "/quiz"), body: []byte(`{"lessonId": "l1", "score": 0}`), wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tt.path, token, tt.body)
			env.app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_progressApi_recordAndConsolidate(t *testing.T) {
	env := setup(t)
	student := testutil.CreateUser(t, env.usrRepo, "Student", "student@test.cd", "", user.RoleStudent, true)
	testutil.Enroll(t, env.enrollments, student.ID, courseID)
	env.lessons.AddLesson(courseID, "m1", "l1")
	env.lessons.AddLesson(courseID, "m1", "l2")
	env.lessons.AddLesson(courseID, "m2", "l3")
	token := getToken(t, env.conf, student)

	do := func(method, suffix string, body []byte) []byte {
		req, rec := newAuthRequest(method, progressPath(student.ID, suffix), token, body)
		env.app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		return rec.Body.Bytes()
	}
	consolidate := func() progress.Record {
		var rec progress.Record
		require.NoError(t, json.Unmarshal(do(http.MethodPost, "/consolidate", nil), &rec))
		return rec
	}

	do(http.MethodPost, "/lesson", []byte(`{"lessonId": "l1"}`))
	do(http.MethodPost, "/quiz", []byte(`{"lessonId": "l2", "score": 90}`))

	// recording never consolidates
	var rec progress.Record
	require.NoError(t, json.Unmarshal(do(http.MethodGet, "", nil), &rec))
	assert.Equal(t, 0.0, rec.ProgressPercentage)
	assert.ElementsMatch(t, []progress.Entry{
		{LessonID: "l1", Type: progress.InteractionView},
		{LessonID: "l2", Type: progress.InteractionQuiz, Score: testutil.Float(90)},
	}, rec.CompletedLessons)

	rec = consolidate()
	assert.InDelta(t, 190.0/3, rec.ProgressPercentage, 1e-9)
	assert.Equal(t, student.ID, rec.UserID)
	assert.Equal(t, courseID, rec.CourseID)

	// consolidation is idempotent
	assert.InDelta(t, 190.0/3, consolidate().ProgressPercentage, 1e-9)

	// a quiz retake overwrites the previous attempt
	do(http.MethodPost, "/quiz", []byte(`{"lessonId": "l2", "score": 100}`))
	do(http.MethodPost, "/lesson", []byte(`{"lessonId": "l3"}`))
	assert.InDelta(t, 100.0, consolidate().ProgressPercentage, 1e-9)

	// a view replaces a quiz result
	do(http.MethodPost, "/lesson", []byte(`{"lessonId": "l2"}`))
	require.NoError(t, json.Unmarshal(do(http.MethodGet, "", nil), &rec))
	entry, ok := rec.Entry("l2")
	require.True(t, ok)
	assert.Equal(t, progress.Entry{LessonID: "l2", Type: progress.InteractionView}, entry)
	assert.Len(t, rec.CompletedLessons, 3)
}
