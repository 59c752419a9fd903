package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/nexusalpri/academy/core"
	"github.com/nexusalpri/academy/core/progress"
)

type progressApi struct {
	svc      *progress.Service
	validate *validator.Validate
}

func registerProgressAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *progress.Service, validate *validator.Validate) {
	api := progressApi{
		svc:      svc,
		validate: validate,
	}

	pg := g.Group("/progress/:userId/:courseId", jwt, ctxUserMiddleware())
	pg.GET("", api.retrieve)
	pg.POST("/lesson", api.recordLessonView)
	pg.POST("/quiz", api.recordQuizResult)
	pg.POST("/consolidate", api.consolidate)
}

// Handlers

func (api *progressApi) retrieve(ctx echo.Context) error {
	rec, err := api.svc.GetProgress(ctx.Request().Context(), ctx.Param("userId"), ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "getting progress")
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (api *progressApi) recordLessonView(ctx echo.Context) error {
	var data LessonViewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LessonViewRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	err := api.svc.RecordInteraction(ctx.Request().Context(), progress.Interaction{
		UserID:   ctx.Param("userId"),
		CourseID: ctx.Param("courseId"),
		LessonID: data.LessonID,
		Type:     progress.InteractionView,
	})
	if err != nil {
		return errors.Wrap(err, "recording lesson view")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "lesson view recorded"})
}

func (api *progressApi) recordQuizResult(ctx echo.Context) error {
	var data QuizResultRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to QuizResultRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	err := api.svc.RecordInteraction(ctx.Request().Context(), progress.Interaction{
		UserID:   ctx.Param("userId"),
		CourseID: ctx.Param("courseId"),
		LessonID: data.LessonID,
		Type:     progress.InteractionQuiz,
		Score:    data.Score,
	})
	if err != nil {
		return errors.Wrap(err, "recording quiz result")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "quiz result recorded"})
}

func (api *progressApi) consolidate(ctx echo.Context) error {
	rec, err := api.svc.ConsolidateProgress(ctx.Request().Context(), ctx.Param("userId"), ctx.Param("courseId"))
	if err != nil {
		return errors.Wrap(err, "consolidating progress")
	}
	return ctx.JSON(http.StatusOK, rec)
}

type (
	LessonViewRequest struct {
		LessonID string `json:"lessonId" validate:"required"`
	}

	QuizResultRequest struct {
		LessonID string   `json:"lessonId" validate:"required"`
		Score    *float64 `json:"score" validate:"required,min=0,max=100"`
	}
)

func (r *LessonViewRequest) Validate(validate *validator.Validate) error {
	r.LessonID = core.CleanString(r.LessonID)
	return validate.Struct(r)
}

func (r *QuizResultRequest) Validate(validate *validator.Validate) error {
	r.LessonID = core.CleanString(r.LessonID)
	return validate.Struct(r)
}
