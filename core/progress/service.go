package progress

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/nexusalpri/academy/core"
)

var (
	NowFunc = time.Now // mockable

	// errors
	ErrNotFound                = errors.New("not found")
	ErrNotEnrolled             = errors.New("user is not enrolled in this course")
	ErrNoProgressToConsolidate = errors.New("no progress found for this user and course to consolidate")
)

type (
	// EnrollmentStore finds enrollments. FindEnrollment returns ErrNotFound if there is none.
	EnrollmentStore interface {
		FindEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error)
	}

	// EnrollmentRegistry also registers users in courses. Enroll is idempotent.
	EnrollmentRegistry interface {
		EnrollmentStore
		Enroll(ctx context.Context, userID, courseID string) (Enrollment, error)
	}

	// LessonCatalog lists the ids of all lessons across all modules of a course.
	LessonCatalog interface {
		ListLessonIDs(ctx context.Context, courseID string) ([]string, error)
	}

	// Repository persists progress records & their completion entries.
	// Implementations must guarantee at most one Record per Enrollment
	// and at most one Entry per (Record, lesson), each upsert being atomic.
	Repository interface {
		// GetOrCreateRecord returns the enrollment's Record, creating it with a 0 percentage if absent.
		// The returned Record does not carry its entries.
		GetOrCreateRecord(ctx context.Context, enr Enrollment) (Record, error)
		// UpsertEntry inserts the entry or overwrites the type & score of the existing one for the same lesson.
		UpsertEntry(ctx context.Context, rec Record, entry Entry) error
		// GetRecord returns the enrollment's Record with its entries, or ErrNotFound.
		GetRecord(ctx context.Context, enr Enrollment) (Record, error)
		// SetPercentage overwrites the Record's percentage.
		SetPercentage(ctx context.Context, rec Record, pct float64, at time.Time) (Record, error)
	}

	// Observer is notified about every recorded interaction & consolidation (eg. metrics).
	Observer interface {
		InteractionRecorded(typ InteractionType, err error)
		ProgressConsolidated(pct float64, err error)
	}

	Service struct {
		enrollments EnrollmentStore
		lessons     LessonCatalog
		repo        Repository
		obs         Observer
	}
)

type nopObserver struct{}

func (nopObserver) InteractionRecorded(InteractionType, error) {}
func (nopObserver) ProgressConsolidated(float64, error)        {}

func NewService(enrollments EnrollmentStore, lessons LessonCatalog, repo Repository) *Service {
	return &Service{
		enrollments: enrollments,
		lessons:     lessons,
		repo:        repo,
		obs:         nopObserver{},
	}
}

func (svc *Service) SetObserver(obs Observer) {
	if obs == nil {
		obs = nopObserver{}
	}
	svc.obs = obs
}

func (svc *Service) findEnrollment(ctx context.Context, userID, courseID string) (Enrollment, error) {
	enr, err := svc.enrollments.FindEnrollment(ctx, userID, courseID)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Enrollment{}, ErrNotEnrolled
		}
		return Enrollment{}, errors.Wrap(err, "finding enrollment")
	}
	return enr, nil
}

// RecordInteraction records a lesson interaction without recomputing the progress percentage.
// Fails with ErrNotEnrolled, without writing anything, if the user is not enrolled in the course.
func (svc *Service) RecordInteraction(ctx context.Context, in Interaction) (err error) {
	defer func() { svc.obs.InteractionRecorded(in.Type, err) }()

	if err = validateInteraction(in); err != nil {
		return err
	}

	enr, err := svc.findEnrollment(ctx, in.UserID, in.CourseID)
	if err != nil {
		return err
	}

	rec, err := svc.repo.GetOrCreateRecord(ctx, enr)
	if err != nil {
		return errors.Wrap(err, "getting or creating progress record")
	}
	if err = svc.repo.UpsertEntry(ctx, rec, in.entry()); err != nil {
		return errors.Wrap(err, "upserting completion entry")
	}
	return nil
}

// ConsolidateProgress computes the weighted completion percentage of the enrollment
// from its current entries & the current lesson catalog, and persists it.
func (svc *Service) ConsolidateProgress(ctx context.Context, userID, courseID string) (rec Record, err error) {
	defer func() { svc.obs.ProgressConsolidated(rec.ProgressPercentage, err) }()

	enr, err := svc.findEnrollment(ctx, userID, courseID)
	if err != nil {
		if err == ErrNotEnrolled {
			return Record{}, ErrNoProgressToConsolidate
		}
		return Record{}, err
	}

	rec, err = svc.repo.GetRecord(ctx, enr)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Record{}, ErrNoProgressToConsolidate
		}
		return Record{}, errors.Wrap(err, "getting progress record")
	}

	lessonIDs, err := svc.lessons.ListLessonIDs(ctx, courseID)
	if err != nil {
		return Record{}, errors.Wrap(err, "listing course lessons")
	}

	pct := WeightedPercentage(lessonIDs, rec.CompletedLessons)
	entries := rec.CompletedLessons
	rec, err = svc.repo.SetPercentage(ctx, rec, pct, NowFunc().UTC())
	if err != nil {
		return Record{}, errors.Wrap(err, "saving progress percentage")
	}
	rec.CompletedLessons = entries
	return rec, nil
}

// GetProgress returns the enrollment's progress record with its entries.
// Fails with ErrNotEnrolled or ErrNotFound when no interaction was recorded yet.
func (svc *Service) GetProgress(ctx context.Context, userID, courseID string) (Record, error) {
	enr, err := svc.findEnrollment(ctx, userID, courseID)
	if err != nil {
		return Record{}, err
	}
	rec, err := svc.repo.GetRecord(ctx, enr)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Record{}, ErrNotFound
		}
		return Record{}, errors.Wrap(err, "getting progress record")
	}
	return rec, nil
}

func validateInteraction(in Interaction) error {
	var flds []core.FieldError
	if core.CleanString(in.UserID) == "" {
		flds = append(flds, core.FieldError{Field: "userId", Error: "this field is required"})
	}
	if core.CleanString(in.CourseID) == "" {
		flds = append(flds, core.FieldError{Field: "courseId", Error: "this field is required"})
	}
	if core.CleanString(in.LessonID) == "" {
		flds = append(flds, core.FieldError{Field: "lessonId", Error: "this field is required"})
	}
	if !in.Type.Valid() {
		flds = append(flds, core.FieldError{Field: "type", Error: "type must be one of: view, quiz"})
	}
	if len(flds) > 0 {
		return core.NewValidationError(nil, flds...)
	}
	return nil
}
