package echoapi

import (
	"net/http"
	"sort"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/assistant"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "invalid login credentials")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")
	errInvalidBody          = echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		body := echo.Map{}

		var appErr *core.Error
		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				body["error"] = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			body["error"] = origErr.Message
		case validator.ValidationErrors:
			code = http.StatusBadRequest
			body["error"] = joinValidationErrors(origErr, translator)
		default:
			if errors.As(err, &appErr) {
				code = appErr.Kind.Status()
				body["error"] = appErr.Message
				if code >= http.StatusInternalServerError {
					logger.Error(appErr.Kind.String(), err, contextUser(ctx))
				}

				var raw *assistant.Unparseable
				if errors.As(err, &raw) {
					body["rawResponse"] = raw.Raw
				}
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			body["error"] = msg
			logger.Error(msg, errors.Wrap(err, msg), contextUser(ctx))
		}

		if ctx.Echo().Debug {
			body["detail"] = err.Error()
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, body)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// joinValidationErrors renders every field error on one line, sorted for stable output.
func joinValidationErrors(vErrs validator.ValidationErrors, translator ut.Translator) string {
	msgs := make([]string, 0, len(vErrs))
	for _, vErr := range vErrs {
		if translator != nil {
			msgs = append(msgs, vErr.Translate(translator))
		} else {
			msgs = append(msgs, vErr.Error())
		}
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// contextUser is the authenticated caller, for error reports.
func contextUser(ctx echo.Context) *user.User {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return nil
	}
	return &user.User{ID: claims.Subject, Email: claims.Email}
}
