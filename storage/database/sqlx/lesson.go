package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/nexusalpri/academy/core"
	"github.com/nexusalpri/academy/core/progress"
)

type lessonRepository struct {
	exec core.DBExecutor
}

var _ progress.LessonCatalog = (*lessonRepository)(nil) // interface compliance check

func NewLessonRepository(exec core.DBExecutor) *lessonRepository {
	return &lessonRepository{exec: exec}
}

func (repo lessonRepository) ListLessonIDs(ctx context.Context, courseID string) ([]string, error) {
	ids := make([]string, 0)
	if !validUUIDs(courseID) {
		return ids, nil
	}

	err := repo.exec.SelectContext(ctx, &ids,
		`SELECT l.id FROM lessons l
		JOIN modules m ON m.id = l.module_id
		WHERE m.course_id = $1
		ORDER BY m.position, l.position`,
		courseID)
	if err != nil {
		return nil, errors.Wrap(err, "querying course lessons")
	}
	return ids, nil
}
