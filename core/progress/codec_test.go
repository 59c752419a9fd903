package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeEntries(t *testing.T) {
	tests := []struct {
		name string
		data string
		want []Entry
	}{
		{name: "missing", data: "", want: []Entry{}},
		{name: "blank", data: "  \n", want: []Entry{}},
		{name: "null", data: "null", want: []Entry{}},
		{name: "object", data: `{"lessonId":"l1","type":"view"}`, want: []Entry{}},
		{name: "string", data: `"lol"`, want: []Entry{}},
		{name: "malformed", data: `[{"lessonId":`, want: []Entry{}},
		{name: "empty array", data: `[]`, want: []Entry{}},
		{
			name: "valid",
			data: `[{"lessonId":"l1","type":"view"},{"lessonId":"l2","type":"quiz","score":80}]`,
			want: []Entry{{LessonID: "l1", Type: InteractionView}, {LessonID: "l2", Type: InteractionQuiz, Score: score(80)}},
		},
		{
			name: "invalid items dropped",
			data: `[1, "x", null, {"type":"view"}, {"lessonId":"","type":"view"}, {"lessonId":7,"type":"view"},
				{"lessonId":"l1","type":"read"}, {"lessonId":"l2"}, {"lessonId":"l3","type":"quiz","score":null},
				{"lessonId":"l4","type":"quiz","score":"90"}, {"lessonId":"l5","type":"view"}]`,
			want: []Entry{
				{LessonID: "l3", Type: InteractionQuiz},
				{LessonID: "l4", Type: InteractionQuiz},
				{LessonID: "l5", Type: InteractionView},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeEntries([]byte(tt.data)))
		})
	}
}

func TestEncodeEntries(t *testing.T) {
	data, err := EncodeEntries(nil)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	entries := []Entry{{LessonID: "l1", Type: InteractionView}, {LessonID: "l2", Type: InteractionQuiz, Score: score(12.5)}}
	data, err = EncodeEntries(entries)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"lessonId":"l1","type":"view"},{"lessonId":"l2","type":"quiz","score":12.5}]`, string(data))
	assert.Equal(t, entries, DecodeEntries(data))
}

func TestUpsertEntry(t *testing.T) {
	entries := UpsertEntry(nil, Entry{LessonID: "l1", Type: InteractionView})
	entries = UpsertEntry(entries, Entry{LessonID: "l2", Type: InteractionView})
	entries = UpsertEntry(entries, Entry{LessonID: "l1", Type: InteractionQuiz, Score: score(80)})

	assert.Equal(t, []Entry{
		{LessonID: "l1", Type: InteractionQuiz, Score: score(80)},
		{LessonID: "l2", Type: InteractionView},
	}, entries)
}
