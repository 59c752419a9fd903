package security

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/nexusalpri/academy/core"
)

// Events
const (
	EventFailedLogin     = "FAILED_LOGIN_ATTEMPT"
	EventSuccessfulLogin = "SUCCESSFUL_LOGIN"
)

// RecentLogsLimit is the number of logs returned to administrators.
const RecentLogsLimit = 100

var NowFunc = time.Now // mockable

type (
	// Log is an entry of the security audit log.
	Log struct {
		ID           string    `json:"id"`
		Event        string    `json:"event"`
		IPAddress    string    `json:"ipAddress"`
		EmailAttempt string    `json:"emailAttempt,omitempty"`
		UserID       string    `json:"userId,omitempty"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	Repository interface {
		CreateLog(ctx context.Context, l Log) (Log, error)
		// QueryRecentLogs returns at most limit logs, newest first.
		QueryRecentLogs(ctx context.Context, limit int) ([]Log, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
		sync   bool
		wg     sync.WaitGroup
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// NewServiceMock returns a Service that writes logs synchronously.
func NewServiceMock(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger, sync: true}
}

// record writes the log without blocking the caller; failures are only reported.
func (svc *Service) record(l Log) {
	l.CreatedAt = NowFunc().UTC()
	write := func() {
		if _, err := svc.repo.CreateLog(context.Background(), l); err != nil {
			msg := fmt.Sprintf("recording security log %s", l.Event)
			svc.logger.Error(msg, errors.Wrap(err, msg))
		}
	}
	if svc.sync {
		write()
		return
	}
	svc.wg.Add(1)
	go func() {
		defer svc.wg.Done()
		write()
	}()
}

func (svc *Service) RecordFailedLogin(ip, email, userID string) {
	svc.record(Log{Event: EventFailedLogin, IPAddress: ip, EmailAttempt: email, UserID: userID})
}

func (svc *Service) RecordSuccessfulLogin(ip, userID string) {
	svc.record(Log{Event: EventSuccessfulLogin, IPAddress: ip, UserID: userID})
}

// Recent returns the latest logs, newest first.
func (svc *Service) Recent(ctx context.Context) ([]Log, error) {
	logs, err := svc.repo.QueryRecentLogs(ctx, RecentLogsLimit)
	if err != nil {
		return nil, errors.Wrap(err, "querying security logs")
	}
	return logs, nil
}

// Wait blocks until all pending log writes are done.
func (svc *Service) Wait() {
	svc.wg.Wait()
}
