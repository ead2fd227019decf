package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/assistant"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/payment"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/speech"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/verification"
)

const apiPrefix = "/functions/v1"

type (
	// RoutineRenderer renders a study routine as a printable document.
	RoutineRenderer interface {
		Render(s assistant.StudySchedule) ([]byte, error)
	}

	ServerDeps struct {
		Conf            *core.Config
		Logger          core.Logger
		UserSvc         user.ServiceInterface
		VerificationSvc *verification.Service
		AssistantSvc    *assistant.Service
		SpeechSvc       *speech.Service
		PaymentSvc      *payment.Service
		RoutinePDF      RoutineRenderer
		Validate        *validator.Validate
		Translator      ut.Translator
		DisableReqLogs  bool
	}

	Server struct {
		ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		ServerDeps: deps,
		app:        echo.New(),
		errors:     make(chan error, 1),
		shutdown:   make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Debug = s.Conf.Debug
	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.Logger, s.Translator)

	s.app.Pre(middleware.RemoveTrailingSlash())
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.Conf.Server.CORSAllowOrigins,
		AllowHeaders: s.Conf.Server.CORSAllowHeaders,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
	}))
	if !s.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.Conf.Debug || s.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.GET("/", home)

	fn := s.app.Group(apiPrefix)
	jwt := middleware.JWTWithConfig(newJWTConfig(s.Conf))

	registerUserAPI(fn, jwt, s.Conf, s.UserSvc, s.Validate)
	registerVerificationAPI(fn, jwt, s.VerificationSvc, s.UserSvc, s.Validate)
	registerAssistantAPI(fn, s.AssistantSvc, s.RoutinePDF, s.Validate)
	registerSpeechAPI(fn, s.SpeechSvc, s.Validate)
	registerWebhookAPI(fn, s.Conf, s.PaymentSvc)
}

// Start blocks serving requests; listener failures are sent to Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.Conf.Server.Address()); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

func (s *Server) ShutdownSignal() <-chan os.Signal {
	return s.shutdown
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Bem-vindo à API do Aprovia!")
}
