package progress

import "time"

// InteractionType is the kind of lesson interaction a learner performed.
type InteractionType string

// Interaction types
const (
	InteractionView InteractionType = "view"
	InteractionQuiz InteractionType = "quiz"
)

// LessonPoints is what every lesson of a course is worth when consolidating.
const LessonPoints = 100.0

func (t InteractionType) Valid() bool {
	return t == InteractionView || t == InteractionQuiz
}

// Enrollment is a user's registration in a course. Unique per (UserID, CourseID).
type Enrollment struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	CourseID   string    `json:"courseId"`
	EnrolledAt time.Time `json:"enrolledAt"`
}

// Entry is a single lesson's recorded interaction. Unique per (Record, LessonID).
// Score is only meaningful for quiz entries.
type Entry struct {
	LessonID string          `json:"lessonId"`
	Type     InteractionType `json:"type"`
	Score    *float64        `json:"score,omitempty"`
}

// Record is the per-enrollment progress aggregate.
// ProgressPercentage only reflects the last consolidation: it is stale between consolidations.
type Record struct {
	ID                 string    `json:"id"`
	EnrollmentID       string    `json:"enrollmentId"`
	UserID             string    `json:"userId"`
	CourseID           string    `json:"courseId"`
	ProgressPercentage float64   `json:"progressPercentage"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
	CompletedLessons   []Entry   `json:"completedLessons"`
}

// Entry returns the completion entry recorded for lessonID, if any.
func (r Record) Entry(lessonID string) (Entry, bool) {
	for _, e := range r.CompletedLessons {
		if e.LessonID == lessonID {
			return e, true
		}
	}
	return Entry{}, false
}

// Interaction is a lesson-level event to record.
type Interaction struct {
	UserID   string
	CourseID string
	LessonID string
	Type     InteractionType
	Score    *float64
}

func (i Interaction) entry() Entry {
	return Entry{LessonID: i.LessonID, Type: i.Type, Score: i.Score}
}
