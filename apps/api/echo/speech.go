package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/speech"
)

type speechApi struct {
	svc      *speech.Service
	validate *validator.Validate
}

func registerSpeechAPI(g *echo.Group, svc *speech.Service, validate *validator.Validate) {
	api := speechApi{svc: svc, validate: validate}
	g.POST("/text-to-speech-enem", api.speak)
}

func (api *speechApi) speak(ctx echo.Context) error {
	var data speech.Request
	if err := ctx.Bind(&data); err != nil {
		return errInvalidBody
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	audio, err := api.svc.Speak(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, audio)
}
