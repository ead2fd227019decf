package echoapi

import (
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/payment"
)

// webhook payloads are small; anything larger is not a sale notification
const maxWebhookBody = 1 << 20

var errInvalidWebhookSecret = echo.NewHTTPError(http.StatusUnauthorized, "invalid webhook secret")

type webhookApi struct {
	secret string
	svc    *payment.Service
}

func registerWebhookAPI(g *echo.Group, conf *core.Config, svc *payment.Service) {
	api := webhookApi{secret: conf.Webhook.Secret, svc: svc}
	g.POST("/cakto-webhook", api.receive)
}

func (api *webhookApi) receive(ctx echo.Context) error {
	raw, err := io.ReadAll(io.LimitReader(ctx.Request().Body, maxWebhookBody))
	if err != nil {
		return errors.Wrap(err, "reading webhook body")
	}
	if !api.authorized(ctx.QueryParam("secret"), raw) {
		return errInvalidWebhookSecret
	}

	if _, err = api.svc.Ingest(ctx.Request().Context(), raw); err != nil {
		return errors.Wrap(err, "ingesting sale")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"received": true})
}

// authorized checks the shared secret, sent as ?secret= or as a body field.
// Without a configured secret every call is accepted.
func (api *webhookApi) authorized(query string, raw []byte) bool {
	if api.secret == "" {
		return true
	}
	if secretsEqual(query, api.secret) {
		return true
	}
	var body struct {
		Secret string `json:"secret"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return false
	}
	return secretsEqual(body.Secret, api.secret)
}

func secretsEqual(given, want string) bool {
	return given != "" && subtle.ConstantTimeCompare([]byte(given), []byte(want)) == 1
}
