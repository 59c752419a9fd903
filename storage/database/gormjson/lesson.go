package gormjson

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/nexusalpri/academy/core/progress"
)

type lessonRepository struct {
	db *gorm.DB
}

var _ progress.LessonCatalog = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(db *gorm.DB) *lessonRepository {
	return &lessonRepository{db: db}
}

func (repo lessonRepository) ListLessonIDs(ctx context.Context, courseID string) ([]string, error) {
	ids := make([]string, 0)
	err := repo.db.WithContext(ctx).
		Model(&lessonModel{}).
		Joins("JOIN modules ON modules.id = lessons.module_id").
		Where("modules.course_id = ?", courseID).
		Order("modules.position, lessons.position").
		Pluck("lessons.id", &ids).Error
	if err != nil {
		return nil, errors.Wrap(err, "querying course lessons")
	}
	return ids, nil
}

// AddLesson appends a lesson to the course's module, creating both if needed.
func (repo lessonRepository) AddLesson(ctx context.Context, courseID, moduleID, lessonID string) error {
	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var course courseModel
		err := tx.Where(courseModel{ID: courseID}).Attrs(courseModel{Title: courseID}).FirstOrCreate(&course).Error
		if err != nil {
			return errors.Wrap(err, "creating course")
		}
		var n int64
		if err = tx.Model(&moduleModel{}).Where("course_id = ?", courseID).Count(&n).Error; err != nil {
			return errors.Wrap(err, "counting course modules")
		}
		var mod moduleModel
		err = tx.Where(moduleModel{ID: moduleID}).
			Attrs(moduleModel{CourseID: courseID, Title: moduleID, Position: int(n)}).
			FirstOrCreate(&mod).Error
		if err != nil {
			return errors.Wrap(err, "creating module")
		}

		if err = tx.Model(&lessonModel{}).Where("module_id = ?", moduleID).Count(&n).Error; err != nil {
			return errors.Wrap(err, "counting module lessons")
		}
		les := lessonModel{ID: lessonID, ModuleID: moduleID, Title: lessonID, Position: int(n)}
		return errors.Wrap(tx.Create(&les).Error, "creating lesson")
	})
}

// RemoveLesson deletes a lesson from the course catalog.
func (repo lessonRepository) RemoveLesson(ctx context.Context, lessonID string) error {
	err := repo.db.WithContext(ctx).Delete(&lessonModel{}, "id = ?", lessonID).Error
	return errors.Wrap(err, "deleting lesson")
}
