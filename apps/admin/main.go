package main

import (
	"log"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
	emailsvc "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/email"
	logsvc "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/logger"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/storage/database"
	sqlxrepos "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	stdLogger := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)
	logger := logsvc.NewRollbarLogger(stdLogger, conf)

	// set up DB
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	core.ParseEmailTemplates(logger)

	// welcome mails are printed, the CLI exits before an async provider would deliver them
	mailSvc := emailsvc.NewConsoleService(conf, logger)

	// start CLI
	cli := commandLine{
		db:       db.DB,
		usrSvc:   user.NewService(sqlxrepos.NewUserRepository(db), mailSvc, logger, conf),
		validate: validate,
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			stdLogger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
