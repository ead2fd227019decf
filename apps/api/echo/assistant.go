package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/assistant"
)

type assistantApi struct {
	svc      *assistant.Service
	pdf      RoutineRenderer
	validate *validator.Validate
}

func registerAssistantAPI(
	g *echo.Group,
	svc *assistant.Service,
	pdf RoutineRenderer,
	validate *validator.Validate,
) {
	api := assistantApi{
		svc:      svc,
		pdf:      pdf,
		validate: validate,
	}

	g.POST("/avaliar-redacao", api.evaluateEssay)
	g.POST("/consultar-curso", api.lookupCourse)
	g.POST("/gerar-rotina", api.generateSchedule)
	g.POST("/gerar-rotina/pdf", api.exportSchedule)
	g.POST("/resolver-questao", api.solveQuestion)
}

func (api *assistantApi) evaluateEssay(ctx echo.Context) error {
	var data assistant.EssayRequest
	if err := ctx.Bind(&data); err != nil {
		return errInvalidBody
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.EvaluateEssay(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *assistantApi) lookupCourse(ctx echo.Context) error {
	var data assistant.CourseRequest
	if err := ctx.Bind(&data); err != nil {
		return errInvalidBody
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.LookupCourse(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *assistantApi) generateSchedule(ctx echo.Context) error {
	var data assistant.ScheduleRequest
	if err := ctx.Bind(&data); err != nil {
		return errInvalidBody
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.GenerateSchedule(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *assistantApi) exportSchedule(ctx echo.Context) error {
	var data assistant.StudySchedule
	if err := ctx.Bind(&data); err != nil {
		return errInvalidBody
	}
	if err := api.validate.Struct(data); err != nil {
		return err
	}

	doc, err := api.pdf.Render(data)
	if err != nil {
		return errors.Wrap(err, "rendering routine pdf")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="rotina-enem.pdf"`)
	return ctx.Blob(http.StatusOK, "application/pdf", doc)
}

func (api *assistantApi) solveQuestion(ctx echo.Context) error {
	var data assistant.QuestionRequest
	if err := ctx.Bind(&data); err != nil {
		return errInvalidBody
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	res, err := api.svc.SolveQuestion(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
