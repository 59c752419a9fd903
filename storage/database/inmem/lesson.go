package inmemdb

import (
	"context"

	"github.com/nexusalpri/academy/core/progress"
)

type lessonRepository struct {
	db *lessonTable
}

var _ progress.LessonCatalog = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *DB) *lessonRepository {
	return &lessonRepository{db: db.lesson}
}

// AddLesson appends a lesson to the course's module.
func (repo *lessonRepository) AddLesson(courseID, moduleID, lessonID string) {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[courseID] = append(repo.db.table[courseID], lessonRow{ID: lessonID, ModuleID: moduleID})
}

// RemoveLesson deletes a lesson from the course catalog.
func (repo *lessonRepository) RemoveLesson(courseID, lessonID string) {
	repo.db.Lock()
	defer repo.db.Unlock()

	rows := repo.db.table[courseID]
	kept := rows[:0]
	for _, row := range rows {
		if row.ID != lessonID {
			kept = append(kept, row)
		}
	}
	repo.db.table[courseID] = kept
}

func (repo *lessonRepository) ListLessonIDs(_ context.Context, courseID string) ([]string, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	rows := repo.db.table[courseID]
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	return ids, nil
}
