package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
)

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	DeleteUserRequest struct {
		UserID string `json:"user_id" validate:"required,notblank"`
	}

	CreateUserResponse struct {
		Success bool   `json:"success"`
		UserID  string `json:"user_id"`
	}

	SuccessResponse struct {
		Success bool `json:"success"`
	}
)

func (r *LoginRequest) Validate(validate *validator.Validate) error {
	r.Email = core.CleanString(r.Email, true /* lower */)
	return validate.Struct(r)
}

func (r *DeleteUserRequest) Validate(validate *validator.Validate) error {
	r.UserID = core.CleanString(r.UserID)
	return validate.Struct(r)
}

type userApi struct {
	conf     *core.Config
	svc      user.ServiceInterface
	validate *validator.Validate
}

func registerUserAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	conf *core.Config,
	svc user.ServiceInterface,
	validate *validator.Validate,
) {
	api := userApi{
		conf:     conf,
		svc:      svc,
		validate: validate,
	}

	// un-authed endpoints
	// TODO: rate limit `/auth/login`
	g.POST("/auth/login", api.login)

	// admin endpoints
	admin := adminMiddleware(svc)
	g.POST("/admin-create-user", api.create, jwt, admin)
	g.POST("/admin-delete-user", api.destroy, jwt, admin)
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errInvalidBody
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == user.ErrInvalidCredentials {
			return errAuthenticationFailed
		}
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(api.conf, GetUserClaims(api.conf, usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) create(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errInvalidBody
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}

	return ctx.JSON(http.StatusOK, CreateUserResponse{Success: true, UserID: usr.ID})
}

func (api *userApi) destroy(ctx echo.Context) error {
	var data DeleteUserRequest
	if err := ctx.Bind(&data); err != nil {
		return errInvalidBody
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	err = api.svc.Delete(ctx.Request().Context(), user.ActionContext{
		CallerID:    claims.Subject,
		CallerRoles: []string{user.RoleAdmin},
		TargetID:    data.UserID,
	})
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}

	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}
