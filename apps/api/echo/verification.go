package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/verification"
)

type SendCodeResponse struct {
	Success        bool   `json:"success"`
	EmailEnviado   bool   `json:"emailEnviado"`
	CodigoFallback string `json:"codigoFallback,omitempty"`
}

type verificationApi struct {
	svc      *verification.Service
	usrSvc   user.ServiceInterface
	validate *validator.Validate
}

func registerVerificationAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *verification.Service,
	usrSvc user.ServiceInterface,
	validate *validator.Validate,
) {
	api := verificationApi{
		svc:      svc,
		usrSvc:   usrSvc,
		validate: validate,
	}

	g.POST("/enviar-codigo-verificacao", api.send, jwt)
	g.POST("/confirmar-codigo-verificacao", api.confirm, jwt)
}

func (api *verificationApi) send(ctx echo.Context) error {
	var data verification.SendCodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errInvalidBody
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.contextUser(ctx)
	if err != nil {
		return err
	}

	res, err := api.svc.Issue(ctx.Request().Context(), verification.IssueRequest{
		Purpose:   verification.Purpose(data.Type),
		UserID:    usr.ID,
		UserEmail: usr.Email,
		NewEmail:  data.NewEmail,
	})
	if err != nil {
		return errors.Wrap(err, "issuing verification code")
	}

	return ctx.JSON(http.StatusOK, SendCodeResponse{
		Success:        true,
		EmailEnviado:   res.Delivered,
		CodigoFallback: res.Code,
	})
}

func (api *verificationApi) confirm(ctx echo.Context) error {
	var data verification.ConfirmCodeRequest
	if err := ctx.Bind(&data); err != nil {
		return errInvalidBody
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.contextUser(ctx)
	if err != nil {
		return err
	}

	if _, err = api.svc.Confirm(ctx.Request().Context(), usr.ID, verification.Purpose(data.Type), data.Code); err != nil {
		return errors.Wrap(err, "confirming verification code")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// contextUser loads the caller's identity; a token whose user is gone is unauthorized.
func (api *verificationApi) contextUser(ctx echo.Context) (user.User, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}
	usr, err := api.usrSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	return usr, nil
}
