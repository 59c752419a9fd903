package gormjson

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nexusalpri/academy/core/progress"
)

func (m enrollmentModel) enrollment() progress.Enrollment {
	return progress.Enrollment{ID: m.ID, UserID: m.UserID, CourseID: m.CourseID, EnrolledAt: m.EnrolledAt.UTC()}
}

type enrollmentRepository struct {
	db *gorm.DB
}

var _ progress.EnrollmentRegistry = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *gorm.DB) *enrollmentRepository {
	return &enrollmentRepository{db: db}
}

func (repo enrollmentRepository) FindEnrollment(ctx context.Context, userID, courseID string) (progress.Enrollment, error) {
	var m enrollmentModel
	err := repo.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return progress.Enrollment{}, progress.ErrNotFound
		}
		return progress.Enrollment{}, errors.Wrap(err, "finding enrollment")
	}
	return m.enrollment(), nil
}

// Enroll registers the user in the course; enrolling twice returns the existing Enrollment.
func (repo enrollmentRepository) Enroll(ctx context.Context, userID, courseID string) (progress.Enrollment, error) {
	m := enrollmentModel{
		ID:         uuid.New().String(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	err := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}}, DoNothing: true}).
		Create(&m).Error
	if err != nil {
		return progress.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return repo.FindEnrollment(ctx, userID, courseID)
}
