package dig_container

import (
	"fmt"
	"log"
	"os"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"go.uber.org/dig"

	echoapi "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/apps/api/echo"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/assistant"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/payment"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/speech"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/verification"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/aigateway"
	emailsvc "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/email"
	logsvc "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/logger"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/pdf"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/tts"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/storage/database"
	sqlxrepos "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/storage/database/sqlx"
)

type DBLoggerParam struct {
	dig.In
	Logger core.Logger `name:"dbLogger"`
}

type serverParams struct {
	dig.In

	Conf            *core.Config
	Logger          core.Logger
	UserSvc         user.ServiceInterface
	VerificationSvc *verification.Service
	AssistantSvc    *assistant.Service
	SpeechSvc       *speech.Service
	PaymentSvc      *payment.Service
	RoutinePDF      echoapi.RoutineRenderer
	Validate        *validator.Validate
	Translator      ut.Translator
}

func newConfig() (*core.Config, error) {
	conf := core.NewConfig()
	if err := conf.EnsureSecretKey(); err != nil {
		return nil, err
	}
	return conf, nil
}

func newLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "API : ", log.LstdFlags)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDBLogger(conf *core.Config) core.Logger {
	stdLogger := log.New(os.Stdout, "DB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)
	logger.Enable(!conf.Debug && conf.RollbarToken != "")
	return logger
}

func newDB(conf *core.Config, loggerParam DBLoggerParam) *sqlx.DB {
	setUp := func() (*sqlx.DB, error) {
		if err := database.CreateIfNotExist(conf); err != nil {
			return nil, err
		}

		db, err := database.Open(conf)
		if err != nil {
			return nil, err
		}

		if err = database.Migrate(db.DB); err != nil {
			_ = db.Close()
			return nil, err
		}
		return db, nil
	}

	db, err := setUp()
	if err != nil {
		loggerParam.Logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	return db
}

func newEmailService(conf *core.Config, logger core.Logger) (core.EmailService, error) {
	if conf.Debug {
		return emailsvc.NewConsoleService(conf, logger), nil
	}
	return emailsvc.NewService(conf, logger)
}

func newUserRepository(db *sqlx.DB) user.Repository {
	return sqlxrepos.NewUserRepository(db)
}

func newVerificationRepository(db *sqlx.DB) verification.Repository {
	return sqlxrepos.NewVerificationRepository(db)
}

func newSaleRepository(db *sqlx.DB) payment.Repository {
	return sqlxrepos.NewSaleRepository(db)
}

func newUserService(repo user.Repository, mailSvc core.EmailService, logger core.Logger, conf *core.Config) user.ServiceInterface {
	return user.NewService(repo, mailSvc, logger, conf)
}

func newVerificationService(
	conf *core.Config,
	repo verification.Repository,
	mailSvc core.EmailService,
	logger core.Logger,
) *verification.Service {
	var opts []verification.Option
	if conf.Verification.CodeTTL > 0 {
		opts = append(opts, verification.WithTTL(conf.Verification.CodeTTL))
	}
	return verification.NewService(repo, mailSvc, logger, opts...)
}

func newGateway(conf *core.Config, logger core.Logger) assistant.Gateway {
	return aigateway.NewClient(conf, logger)
}

func newSynthesizer(conf *core.Config, logger core.Logger) speech.Synthesizer {
	return tts.NewGoogleClient(conf, logger)
}

func newRoutineRenderer(conf *core.Config) echoapi.RoutineRenderer {
	return pdf.NewRoutineRenderer(conf.AppName)
}

func newServer(p serverParams) *echoapi.Server {
	return echoapi.NewServer(echoapi.ServerDeps{
		Conf:            p.Conf,
		Logger:          p.Logger,
		UserSvc:         p.UserSvc,
		VerificationSvc: p.VerificationSvc,
		AssistantSvc:    p.AssistantSvc,
		SpeechSvc:       p.SpeechSvc,
		PaymentSvc:      p.PaymentSvc,
		RoutinePDF:      p.RoutinePDF,
		Validate:        p.Validate,
		Translator:      p.Translator,
	})
}

// New returns a new dependency injection dig.Container
func New() *dig.Container {
	c := dig.New()

	must(c.Provide(newConfig))
	must(c.Provide(newLogger))
	must(c.Provide(newDBLogger, dig.Name("dbLogger")))
	must(c.Provide(newDB))
	must(c.Provide(newEmailService))
	must(c.Provide(validator.New))
	must(c.Provide(core.NewTranslator))

	// repositories
	must(c.Provide(newUserRepository))
	must(c.Provide(newVerificationRepository))
	must(c.Provide(newSaleRepository))

	// providers
	must(c.Provide(newGateway))
	must(c.Provide(newSynthesizer))
	must(c.Provide(newRoutineRenderer))

	// services
	must(c.Provide(newUserService))
	must(c.Provide(newVerificationService))
	must(c.Provide(assistant.NewService))
	must(c.Provide(speech.NewService))
	must(c.Provide(payment.NewService))

	must(c.Provide(newServer))

	return c
}

// must exits program if err happened
func must(err error) {
	if err != nil {
		log.Fatal(errors.Wrap(err, "failed to provide dependency").Error())
	}
}
