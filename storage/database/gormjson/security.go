package gormjson

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/nexusalpri/academy/core/security"
)

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type securityLogRepository struct {
	db *gorm.DB
}

var _ security.Repository = (*securityLogRepository)(nil) // interface compliance check

func NewSecurityLogRepository(db *gorm.DB) *securityLogRepository {
	return &securityLogRepository{db: db}
}

func (repo securityLogRepository) CreateLog(ctx context.Context, l security.Log) (security.Log, error) {
	l.ID = uuid.New().String()
	m := securityLogModel{
		ID:           l.ID,
		Event:        l.Event,
		IPAddress:    l.IPAddress,
		EmailAttempt: optional(l.EmailAttempt),
		UserID:       optional(l.UserID),
		CreatedAt:    l.CreatedAt.UTC(),
	}
	if err := repo.db.WithContext(ctx).Create(&m).Error; err != nil {
		return security.Log{}, errors.Wrap(err, "inserting security log")
	}
	return l, nil
}

func (repo securityLogRepository) QueryRecentLogs(ctx context.Context, limit int) ([]security.Log, error) {
	var rows []securityLogModel
	err := repo.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "querying security logs")
	}
	logs := make([]security.Log, 0, len(rows))
	for _, m := range rows {
		l := security.Log{ID: m.ID, Event: m.Event, IPAddress: m.IPAddress, CreatedAt: m.CreatedAt.UTC()}
		if m.EmailAttempt != nil {
			l.EmailAttempt = *m.EmailAttempt
		}
		if m.UserID != nil {
			l.UserID = *m.UserID
		}
		logs = append(logs, l)
	}
	return logs, nil
}
