package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	. "github.com/nexusalpri/academy/apps/api/echo"
	"github.com/nexusalpri/academy/core"
	"github.com/nexusalpri/academy/core/progress"
	"github.com/nexusalpri/academy/core/security"
	"github.com/nexusalpri/academy/core/user"
	metricsvc "github.com/nexusalpri/academy/services/metrics"
	"github.com/nexusalpri/academy/storage/counter"
	inmemdb "github.com/nexusalpri/academy/storage/database/inmem"
	"github.com/nexusalpri/academy/tests"
)

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type lessonSeeder interface {
	AddLesson(courseID, moduleID, lessonID string)
}

type testEnv struct {
	app         *Server
	conf        *core.Config
	usrRepo     user.Repository
	enrollments progress.EnrollmentRegistry
	lessons     lessonSeeder
	secRepo     security.Repository
	limiter     *security.Limiter
}

func setup(t *testing.T) testEnv {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger(t, conf)
	validate, translator := testutil.NewValidator()

	// set up DB & repos
	db := inmemdb.Open()
	usrRepo := inmemdb.NewUserRepository(db)
	enrRepo := inmemdb.NewEnrollmentRepository(db)
	lessonRepo := inmemdb.NewLessonRepository(db)
	secRepo := inmemdb.NewSecurityLogRepository(db)

	// set up services
	metrics := metricsvc.New()
	progressSvc := progress.NewService(enrRepo, lessonRepo, inmemdb.NewProgressRepository(db))
	progressSvc.SetObserver(metrics)
	limiter := security.NewLimiter(counter.NewInMemStore(), conf.Login.RateLimitCount, conf.Login.RateLimitWindow)

	// set up server
	app := NewServer(ServerDeps{
		Conf:        conf,
		Logger:      logger,
		UserSvc:     user.NewService(usrRepo),
		ProgressSvc: progressSvc,
		SecuritySvc: security.NewServiceMock(secRepo, logger),
		Limiter:     limiter,
		Metrics:     metrics,
		Validate:    validate,
		Translator:  translator,
	})

	return testEnv{
		app:         app,
		conf:        conf,
		usrRepo:     usrRepo,
		enrollments: enrRepo,
		lessons:     lessonRepo,
		secRepo:     secRepo,
		limiter:     limiter,
	}
}

func (env testEnv) securityLogs(t *testing.T) []security.Log {
	logs, err := env.secRepo.QueryRecentLogs(context.Background(), security.RecentLogsLimit)
	if err != nil {
		t.Fatalf("securityLogs() failed: %v", err)
	}
	return logs
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, conf *core.Config, usr user.User) string {
	token, err := GenerateToken(GetUserClaims(usr, conf), conf)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
