package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nexusalpri/academy/core"
	"github.com/nexusalpri/academy/core/security"
)

type securityLogRow struct {
	ID           string      `db:"id"`
	Event        string      `db:"event"`
	IPAddress    string      `db:"ip_address"`
	EmailAttempt null.String `db:"email_attempt"`
	UserID       null.String `db:"user_id"`
	CreatedAt    time.Time   `db:"created_at"`
}

type securityLogRepository struct {
	exec core.DBExecutor
}

var _ security.Repository = (*securityLogRepository)(nil) // interface compliance check

func NewSecurityLogRepository(exec core.DBExecutor) *securityLogRepository {
	return &securityLogRepository{exec: exec}
}

func (repo securityLogRepository) CreateLog(ctx context.Context, l security.Log) (security.Log, error) {
	l.ID = uuid.New().String()
	userID := null.NewString(l.UserID, l.UserID != "" && validUUIDs(l.UserID))
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO security_logs (id, event, ip_address, email_attempt, user_id, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		l.ID, l.Event, l.IPAddress, null.NewString(l.EmailAttempt, l.EmailAttempt != ""), userID, l.CreatedAt.UTC())
	if err != nil {
		return security.Log{}, errors.Wrap(err, "inserting security log")
	}
	return l, nil
}

func (repo securityLogRepository) QueryRecentLogs(ctx context.Context, limit int) ([]security.Log, error) {
	var rows []securityLogRow
	err := repo.exec.SelectContext(ctx, &rows,
		`SELECT id, event, ip_address, email_attempt, user_id, created_at FROM security_logs ORDER BY created_at DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying security logs")
	}
	logs := make([]security.Log, 0, len(rows))
	for _, row := range rows {
		logs = append(logs, security.Log{
			ID:           row.ID,
			Event:        row.Event,
			IPAddress:    row.IPAddress,
			EmailAttempt: row.EmailAttempt.String,
			UserID:       row.UserID.String,
			CreatedAt:    row.CreatedAt.UTC(),
		})
	}
	return logs, nil
}
