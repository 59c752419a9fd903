package testutil

import (
	"context"
	"testing"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap/zaptest"

	"github.com/nexusalpri/academy/core"
	"github.com/nexusalpri/academy/core/progress"
	"github.com/nexusalpri/academy/core/user"
	logsvc "github.com/nexusalpri/academy/services/logger"
)

func NewConfig() *core.Config {
	return &core.Config{
		TestMode:  true,
		Env:       "TEST",
		AppName:   "Academy",
		SecretKey: "test-secret",
		Server: core.ServerConfig{
			JWTExpirationDelta: time.Hour,
		},
		Login: core.LoginConfig{
			RateLimitCount:  10,
			RateLimitWindow: 15 * time.Minute,
		},
	}
}

// NewLogger returns a logger printing to the test's output, never reporting to Rollbar.
func NewLogger(t *testing.T, conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(zaptest.NewLogger(t).Sugar(), conf)
	logger.Enable(false)
	return logger
}

func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	return validate, translator
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func Enroll(t *testing.T, repo progress.EnrollmentRegistry, userID, courseID string) progress.Enrollment {
	enr, err := repo.Enroll(context.Background(), userID, courseID)
	if err != nil {
		t.Fatalf("Enroll() failed: %v", err)
	}
	return enr
}

func Float(f float64) *float64 {
	return &f
}
