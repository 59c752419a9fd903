package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nexusalpri/academy/core/progress"
)

type progressRepository struct {
	db *progressTable
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(db *DB) *progressRepository {
	return &progressRepository{db: db.progress}
}

// snapshot copies rec so callers never share the stored entries.
func snapshot(rec *progress.Record, withEntries bool) progress.Record {
	r := *rec
	r.CompletedLessons = nil
	if withEntries {
		r.CompletedLessons = make([]progress.Entry, len(rec.CompletedLessons))
		copy(r.CompletedLessons, rec.CompletedLessons)
	}
	return r
}

func (repo *progressRepository) GetOrCreateRecord(_ context.Context, enr progress.Enrollment) (progress.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if rec, ok := repo.db.table[enr.ID]; ok {
		return snapshot(rec, false), nil
	}
	now := time.Now().UTC()
	rec := &progress.Record{
		ID:               uuid.New().String(),
		EnrollmentID:     enr.ID,
		UserID:           enr.UserID,
		CourseID:         enr.CourseID,
		CreatedAt:        now,
		UpdatedAt:        now,
		CompletedLessons: make([]progress.Entry, 0),
	}
	repo.db.table[enr.ID] = rec
	return snapshot(rec, false), nil
}

func (repo *progressRepository) UpsertEntry(_ context.Context, rec progress.Record, entry progress.Entry) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.table[rec.EnrollmentID]
	if !ok || stored.ID != rec.ID {
		return progress.ErrNotFound
	}
	if entry.Score != nil {
		score := *entry.Score
		entry.Score = &score
	}
	stored.CompletedLessons = progress.UpsertEntry(stored.CompletedLessons, entry)
	return nil
}

func (repo *progressRepository) GetRecord(_ context.Context, enr progress.Enrollment) (progress.Record, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if rec, ok := repo.db.table[enr.ID]; ok {
		return snapshot(rec, true), nil
	}
	return progress.Record{}, progress.ErrNotFound
}

func (repo *progressRepository) SetPercentage(_ context.Context, rec progress.Record, pct float64, at time.Time) (progress.Record, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	stored, ok := repo.db.table[rec.EnrollmentID]
	if !ok || stored.ID != rec.ID {
		return progress.Record{}, progress.ErrNotFound
	}
	stored.ProgressPercentage = pct
	stored.UpdatedAt = at
	return snapshot(stored, false), nil
}

// CountEntries returns the number of stored completion entries across all records.
func (repo *progressRepository) CountEntries() int {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var n int
	for _, rec := range repo.db.table {
		n += len(rec.CompletedLessons)
	}
	return n
}

// CountRecords returns the number of stored progress records.
func (repo *progressRepository) CountRecords() int {
	repo.db.RLock()
	defer repo.db.RUnlock()
	return len(repo.db.table)
}
