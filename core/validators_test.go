package core_test

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nexusalpri/academy/core"
)

type interactionPayload struct {
	LessonID string `json:"lessonId" validate:"required"`
	Type     string `json:"type" validate:"interaction"`
}

func TestInitValidators(t *testing.T) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)

	assert.NoError(t, validate.Struct(interactionPayload{LessonID: "l1", Type: "view"}))
	assert.NoError(t, validate.Struct(interactionPayload{LessonID: "l1", Type: "quiz"}))

	err := validate.Struct(interactionPayload{Type: "read"})
	require.Error(t, err)
	got := make(map[string]string)
	for _, fe := range err.(validator.ValidationErrors) {
		got[fe.Field()] = fe.Translate(translator)
	}
	assert.Equal(t, map[string]string{
		"lessonId": "this field is required",
		"type":     "type must be one of: view, quiz",
	}, got)
}

func TestCleanString(t *testing.T) {
	assert.Equal(t, "Joe", core.CleanString("  Joe\n"))
	assert.Equal(t, "joe@test.cd", core.CleanString(" Joe@Test.CD ", true))
}
