package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
)

// adminMiddleware lets through callers holding the admin role in user_roles.
// It must run after the JWT middleware.
func adminMiddleware(svc user.ServiceInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			isAdmin, err := svc.HasRole(ctx.Request().Context(), claims.Subject, user.RoleAdmin)
			if err != nil {
				return errors.Wrap(err, "checking admin role")
			}
			if !isAdmin {
				return errHttpForbidden
			}
			return next(ctx)
		}
	}
}
