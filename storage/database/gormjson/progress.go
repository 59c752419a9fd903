package gormjson

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexusalpri/academy/core/progress"
)

func (m progressBlobModel) record(withEntries bool) progress.Record {
	rec := progress.Record{
		ID:                 m.ID,
		EnrollmentID:       m.EnrollmentID,
		UserID:             m.UserID,
		CourseID:           m.CourseID,
		ProgressPercentage: m.ProgressPercentage,
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
	if withEntries {
		rec.CompletedLessons = progress.DecodeEntries(m.CompletedLessons)
	}
	return rec
}

type progressRepository struct {
	db *gorm.DB
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *gorm.DB) *progressRepository {
	return &progressRepository{db: db}
}

func (repo progressRepository) find(tx *gorm.DB, enr progress.Enrollment) (progressBlobModel, error) {
	var m progressBlobModel
	err := tx.Where("user_id = ? AND course_id = ?", enr.UserID, enr.CourseID).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return m, progress.ErrNotFound
		}
		return m, errors.Wrap(err, "finding progress blob")
	}
	return m, nil
}

func (repo progressRepository) GetOrCreateRecord(ctx context.Context, enr progress.Enrollment) (progress.Record, error) {
	now := time.Now().UTC()
	m := progressBlobModel{
		ID:               uuid.New().String(),
		EnrollmentID:     enr.ID,
		UserID:           enr.UserID,
		CourseID:         enr.CourseID,
		CompletedLessons: datatypes.JSON("[]"),
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	tx := repo.db.WithContext(ctx)
	err := tx.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}}, DoNothing: true}).
		Create(&m).Error
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "inserting progress blob")
	}

	if m, err = repo.find(tx, enr); err != nil {
		return progress.Record{}, err
	}
	return m.record(false), nil
}

// UpsertEntry rewrites the whole entries collection; the read & the write share a transaction.
// On postgres the row is locked in between; on sqlite the single connection serializes transactions.
func (repo progressRepository) UpsertEntry(ctx context.Context, rec progress.Record, entry progress.Entry) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx
		if tx.Dialector.Name() == "postgres" {
			q = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var m progressBlobModel
		if err := q.Where("id = ?", rec.ID).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return progress.ErrNotFound
			}
			return errors.Wrap(err, "locking progress blob")
		}

		entries := progress.UpsertEntry(progress.DecodeEntries(m.CompletedLessons), entry)
		data, err := progress.EncodeEntries(entries)
		if err != nil {
			return errors.Wrap(err, "encoding completion entries")
		}

		err = tx.Model(&progressBlobModel{}).Where("id = ?", m.ID).
			Updates(map[string]interface{}{
				"completed_lessons": datatypes.JSON(data),
				"updated_at":        time.Now().UTC(),
			}).Error
		return errors.Wrap(err, "saving completion entries")
	})
}

func (repo progressRepository) GetRecord(ctx context.Context, enr progress.Enrollment) (progress.Record, error) {
	m, err := repo.find(repo.db.WithContext(ctx), enr)
	if err != nil {
		return progress.Record{}, err
	}
	return m.record(true), nil
}

func (repo progressRepository) SetPercentage(ctx context.Context, rec progress.Record, pct float64, at time.Time) (progress.Record, error) {
	tx := repo.db.WithContext(ctx)
	res := tx.Model(&progressBlobModel{}).Where("id = ?", rec.ID).
		Updates(map[string]interface{}{"progress_percentage": pct, "updated_at": at})
	if res.Error != nil {
		return progress.Record{}, errors.Wrap(res.Error, "updating progress percentage")
	}
	if res.RowsAffected == 0 {
		return progress.Record{}, progress.ErrNotFound
	}

	var m progressBlobModel
	if err := tx.Where("id = ?", rec.ID).First(&m).Error; err != nil {
		return progress.Record{}, errors.Wrap(err, "reloading progress blob")
	}
	return m.record(false), nil
}
