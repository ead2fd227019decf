package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"syscall"

	"github.com/go-playground/validator/v10"
	ucli "github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword      // mockable
	gooseRunFunc     = database.RunMigrations // mockable

	errHelp           = errors.New("help provided")
	errUnknownCommand = errors.New("unknown command")
	errEmptyPassword  = errors.New("password cannot be empty")
)

type commandLine struct {
	db       *sql.DB
	usrSvc   user.ServiceInterface
	validate *validator.Validate
	out      io.Writer
}

func (cli *commandLine) app() *ucli.App {
	return &ucli.App{
		Name:      "admin",
		Usage:     "Manage Aprovia accounts and the database schema.",
		Writer:    cli.out,
		ErrWriter: cli.out,
		Action: func(c *ucli.Context) error {
			if c.Args().Present() {
				return fmt.Errorf("%w: %s", errUnknownCommand, c.Args().First())
			}
			_ = ucli.ShowAppHelp(c)
			return errHelp
		},
		Commands: []*ucli.Command{
			{
				Name:  "adduser",
				Usage: "Create an account. The password is prompted next.",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "The user's email.", Required: true},
					&ucli.BoolFlag{Name: "premium", Usage: "Give the account premium access."},
					&ucli.BoolFlag{Name: "admin", Usage: "Grant the admin role."},
				},
				Action: func(c *ucli.Context) error {
					pwd, err := cli.promptPassword()
					if err != nil {
						return err
					}
					return cli.addUser(c.String("email"), pwd, c.Bool("premium"), c.Bool("admin"))
				},
			},
			{
				Name:  "deleteuser",
				Usage: "Delete an account and every row that references it.",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "id", Usage: "The user's ID.", Required: true},
				},
				Action: func(c *ucli.Context) error {
					return cli.deleteUser(c.String("id"))
				},
			},
			{
				Name:  "resetpassword",
				Usage: "Reset a user's password. The new password is prompted next.",
				Flags: []ucli.Flag{
					&ucli.StringFlag{Name: "email", Aliases: []string{"e"}, Usage: "The user's email.", Required: true},
				},
				Action: func(c *ucli.Context) error {
					pwd, err := cli.promptPassword()
					if err != nil {
						return err
					}
					return cli.resetPassword(c.String("email"), pwd)
				},
			},
			{
				Name:      "migrate",
				Usage:     "Run a goose command against the embedded migrations.",
				ArgsUsage: "up|up-by-one|up-to|down|down-to|redo|reset|status|version|fix [args...]",
				Action: func(c *ucli.Context) error {
					if !c.Args().Present() {
						_ = ucli.ShowCommandHelp(c, "migrate")
						return errHelp
					}
					return cli.migrate(c.Args().Slice())
				},
			},
		},
	}
}

func (cli *commandLine) run(args []string) error {
	return cli.app().Run(args)
}

func (cli *commandLine) promptPassword() (string, error) {
	_, _ = fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", err
	}
	if len(pwd) == 0 {
		return "", errEmptyPassword
	}
	return string(pwd), nil
}
