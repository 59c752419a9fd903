package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/nexusalpri/academy/core"
	"github.com/nexusalpri/academy/core/progress"
)

type enrollmentRow struct {
	ID         string    `db:"id"`
	UserID     string    `db:"user_id"`
	CourseID   string    `db:"course_id"`
	EnrolledAt time.Time `db:"enrolled_at"`
}

func (row enrollmentRow) enrollment() progress.Enrollment {
	return progress.Enrollment{
		ID:         row.ID,
		UserID:     row.UserID,
		CourseID:   row.CourseID,
		EnrolledAt: row.EnrolledAt.UTC(),
	}
}

type enrollmentRepository struct {
	exec core.DBExecutor
}

var _ progress.EnrollmentRegistry = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *enrollmentRepository {
	return &enrollmentRepository{exec: exec}
}

func (repo enrollmentRepository) FindEnrollment(ctx context.Context, userID, courseID string) (progress.Enrollment, error) {
	if !validUUIDs(userID, courseID) {
		return progress.Enrollment{}, progress.ErrNotFound
	}

	var row enrollmentRow
	err := repo.exec.GetContext(ctx, &row,
		`SELECT id, user_id, course_id, enrolled_at FROM enrollments WHERE user_id = $1 AND course_id = $2`,
		userID, courseID)
	if err != nil {
		return progress.Enrollment{}, trapNoRowsErr(err, progress.ErrNotFound, "finding enrollment")
	}
	return row.enrollment(), nil
}

// Enroll registers the user in the course; enrolling twice returns the existing Enrollment.
func (repo enrollmentRepository) Enroll(ctx context.Context, userID, courseID string) (progress.Enrollment, error) {
	if !validUUIDs(userID, courseID) {
		return progress.Enrollment{}, progress.ErrNotFound
	}

	var row enrollmentRow
	err := repo.exec.GetContext(ctx, &row,
		`INSERT INTO enrollments (id, user_id, course_id, enrolled_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, course_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, course_id, enrolled_at`,
		uuid.New().String(), userID, courseID, time.Now().UTC())
	if err != nil {
		return progress.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return row.enrollment(), nil
}
