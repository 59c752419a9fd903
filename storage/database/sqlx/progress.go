package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/nexusalpri/academy/core"
	"github.com/nexusalpri/academy/core/progress"
)

const progressColumns = `id, enrollment_id, user_id, course_id, progress_percentage, created_at, updated_at`

type (
	progressRow struct {
		ID                 string    `db:"id"`
		EnrollmentID       string    `db:"enrollment_id"`
		UserID             string    `db:"user_id"`
		CourseID           string    `db:"course_id"`
		ProgressPercentage float64   `db:"progress_percentage"`
		CreatedAt          time.Time `db:"created_at"`
		UpdatedAt          time.Time `db:"updated_at"`
	}

	entryRow struct {
		LessonID string       `db:"lesson_id"`
		Type     string       `db:"type"`
		Score    null.Float64 `db:"score"`
	}
)

func (row progressRow) record() progress.Record {
	return progress.Record{
		ID:                 row.ID,
		EnrollmentID:       row.EnrollmentID,
		UserID:             row.UserID,
		CourseID:           row.CourseID,
		ProgressPercentage: row.ProgressPercentage,
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
	}
}

func (row entryRow) entry() progress.Entry {
	return progress.Entry{
		LessonID: row.LessonID,
		Type:     progress.InteractionType(row.Type),
		Score:    row.Score.Ptr(),
	}
}

type progressRepository struct {
	exec core.DBExecutor
}

var _ progress.Repository = (*progressRepository)(nil) // interface compliance check

func NewProgressRepository(exec core.DBExecutor) *progressRepository {
	return &progressRepository{exec: exec}
}

func (repo progressRepository) GetOrCreateRecord(ctx context.Context, enr progress.Enrollment) (progress.Record, error) {
	now := time.Now().UTC()
	var row progressRow
	// the no-op update makes RETURNING yield the existing row on conflict
	err := repo.exec.GetContext(ctx, &row,
		`INSERT INTO course_progress (`+progressColumns+`) VALUES ($1, $2, $3, $4, 0, $5, $5)
		ON CONFLICT (enrollment_id) DO UPDATE SET enrollment_id = EXCLUDED.enrollment_id
		RETURNING `+progressColumns,
		uuid.New().String(), enr.ID, enr.UserID, enr.CourseID, now)
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "upserting progress record")
	}
	return row.record(), nil
}

// UpsertEntry stores UUID lesson ids in their canonical form, the one the lesson catalog returns.
func (repo progressRepository) UpsertEntry(ctx context.Context, rec progress.Record, entry progress.Entry) error {
	_, err := repo.exec.ExecContext(ctx,
		`INSERT INTO lesson_completion_records (id, progress_id, lesson_id, type, score, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (progress_id, lesson_id)
		DO UPDATE SET type = EXCLUDED.type, score = EXCLUDED.score, updated_at = EXCLUDED.updated_at`,
		uuid.New().String(), rec.ID, canonicalID(entry.LessonID), string(entry.Type), null.Float64FromPtr(entry.Score), time.Now().UTC())
	if err != nil {
		return errors.Wrap(err, "upserting completion entry")
	}
	return nil
}

func (repo progressRepository) GetRecord(ctx context.Context, enr progress.Enrollment) (progress.Record, error) {
	var row progressRow
	err := repo.exec.GetContext(ctx, &row,
		`SELECT `+progressColumns+` FROM course_progress WHERE enrollment_id = $1`, enr.ID)
	if err != nil {
		return progress.Record{}, trapNoRowsErr(err, progress.ErrNotFound, "finding progress record")
	}

	var rows []entryRow
	err = repo.exec.SelectContext(ctx, &rows,
		`SELECT lesson_id, type, score FROM lesson_completion_records WHERE progress_id = $1 ORDER BY lesson_id`, row.ID)
	if err != nil {
		return progress.Record{}, errors.Wrap(err, "querying completion entries")
	}

	rec := row.record()
	rec.CompletedLessons = make([]progress.Entry, 0, len(rows))
	for _, r := range rows {
		rec.CompletedLessons = append(rec.CompletedLessons, r.entry())
	}
	return rec, nil
}

func (repo progressRepository) SetPercentage(ctx context.Context, rec progress.Record, pct float64, at time.Time) (progress.Record, error) {
	var row progressRow
	err := repo.exec.GetContext(ctx, &row,
		`UPDATE course_progress SET progress_percentage = $1, updated_at = $2 WHERE id = $3 RETURNING `+progressColumns,
		pct, at, rec.ID)
	if err != nil {
		return progress.Record{}, trapNoRowsErr(err, progress.ErrNotFound, "updating progress percentage")
	}
	return row.record(), nil
}
