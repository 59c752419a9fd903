package inmemdb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nexusalpri/academy/core/progress"
)

type enrollmentRepository struct {
	db *enrollmentTable
}

var _ progress.EnrollmentRegistry = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) *enrollmentRepository {
	return &enrollmentRepository{db: db.enrollment}
}

// Enroll registers the user in the course; enrolling twice returns the existing Enrollment.
func (repo *enrollmentRepository) Enroll(_ context.Context, userID, courseID string) (progress.Enrollment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := enrollmentKey(userID, courseID)
	if enr, ok := repo.db.table[key]; ok {
		return *enr, nil
	}
	enr := &progress.Enrollment{
		ID:         uuid.New().String(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}
	repo.db.table[key] = enr
	return *enr, nil
}

func (repo *enrollmentRepository) FindEnrollment(_ context.Context, userID, courseID string) (progress.Enrollment, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if enr, ok := repo.db.table[enrollmentKey(userID, courseID)]; ok {
		return *enr, nil
	}
	return progress.Enrollment{}, progress.ErrNotFound
}
