package progress

// WeightedPercentage computes the course completion percentage for the given catalog.
//
// Every lesson is worth LessonPoints. A viewed lesson gets full credit, a quiz lesson gets its
// score (not clamped) and a lesson without entry, or a quiz without score, gets nothing.
// Entries are looked up from the catalog side, so entries of lessons outside lessonIDs are ignored.
func WeightedPercentage(lessonIDs []string, entries []Entry) float64 {
	if len(lessonIDs) == 0 {
		return 0
	}

	byLesson := make(map[string]Entry, len(entries))
	for _, e := range entries {
		if _, ok := byLesson[e.LessonID]; !ok { // first match wins
			byLesson[e.LessonID] = e
		}
	}

	var totalPossible, achieved float64
	for _, id := range lessonIDs {
		totalPossible += LessonPoints
		if e, ok := byLesson[id]; ok {
			achieved += credit(e)
		}
	}
	return achieved / totalPossible * 100
}

func credit(e Entry) float64 {
	switch {
	case e.Type == InteractionQuiz && e.Score != nil:
		return *e.Score
	case e.Type == InteractionView:
		return LessonPoints
	}
	return 0
}
