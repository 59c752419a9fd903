package inmemdb

import (
	"context"

	"github.com/google/uuid"

	"github.com/nexusalpri/academy/core/security"
)

type securityLogRepository struct {
	db *secLogTable
}

var _ security.Repository = (*securityLogRepository)(nil) // interface compliance check

func NewSecurityLogRepository(db *DB) *securityLogRepository {
	return &securityLogRepository{db: db.secLog}
}

func (repo *securityLogRepository) CreateLog(_ context.Context, l security.Log) (security.Log, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	l.ID = uuid.New().String()
	repo.db.table = append(repo.db.table, l)
	return l, nil
}

func (repo *securityLogRepository) QueryRecentLogs(_ context.Context, limit int) ([]security.Log, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	logs := make([]security.Log, 0, limit)
	for i := len(repo.db.table) - 1; i >= 0 && len(logs) < limit; i-- {
		logs = append(logs, repo.db.table[i])
	}
	return logs, nil
}
