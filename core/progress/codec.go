package progress

import (
	"bytes"
	"encoding/json"
)

type rawEntry struct {
	LessonID json.RawMessage `json:"lessonId"`
	Type     json.RawMessage `json:"type"`
	Score    json.RawMessage `json:"score"`
}

// DecodeEntries decodes a serialized completion entries collection.
// Missing, null or non-array data yields an empty collection; items that are not
// valid entries are dropped. A score that is not a number is treated as absent.
func DecodeEntries(data []byte) []Entry {
	entries := make([]Entry, 0)
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return entries
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return entries
	}

	for _, item := range items {
		var raw rawEntry
		if err := json.Unmarshal(item, &raw); err != nil {
			continue
		}
		var lessonID string
		if err := json.Unmarshal(raw.LessonID, &lessonID); err != nil || lessonID == "" {
			continue
		}
		var typ InteractionType
		if err := json.Unmarshal(raw.Type, &typ); err != nil || !typ.Valid() {
			continue
		}
		e := Entry{LessonID: lessonID, Type: typ}
		var score float64
		if err := json.Unmarshal(raw.Score, &score); err == nil && len(raw.Score) > 0 && string(raw.Score) != "null" {
			e.Score = &score
		}
		entries = append(entries, e)
	}
	return entries
}

// EncodeEntries serializes a completion entries collection. A nil collection encodes as [].
func EncodeEntries(entries []Entry) ([]byte, error) {
	if entries == nil {
		entries = []Entry{}
	}
	return json.Marshal(entries)
}

// UpsertEntry returns entries with e replacing the entry of the same lesson, or appended.
func UpsertEntry(entries []Entry, e Entry) []Entry {
	for i := range entries {
		if entries[i].LessonID == e.LessonID {
			entries[i] = e
			return entries
		}
	}
	return append(entries, e)
}
