package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
	emailsvc "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/email"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/storage/database/inmem"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/tests"
)

const protectedEmail = "dono@aprovia.app"

var usrRepo user.Repository

func setup(t *testing.T) *commandLine {
	conf := core.NewTestConfig()
	conf.Admin.ProtectedEmails = []string{protectedEmail}
	logger := testutil.NewLogger(t)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up DB & repos
	usrRepo = inmemdb.NewUserRepository(inmemdb.Open())

	// start CLI
	return &commandLine{
		usrSvc:   user.NewService(usrRepo, emailsvc.NewConsoleServiceMock(conf, logger), logger, conf),
		validate: validate,
		out:      io.Discard,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func (tt cliTest) check(t *testing.T, err error) {
	t.Helper()
	switch {
	case tt.wantErr != nil:
		if !errors.Is(err, tt.wantErr) {
			t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
		}
	case tt.wantErrStr != "":
		if err == nil {
			t.Errorf("cli.run() error = nil, wantErrStr %s", tt.wantErrStr)
		} else {
			assert.Contains(t, err.Error(), tt.wantErrStr)
		}
	case err != nil:
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

func mockPassword(pwd string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		return []byte(pwd), nil
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errUnknownCommand},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(db *sql.DB, command string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}
}

func Test_commandLine_addUser(t *testing.T) {
	cli := setup(t)
	testutil.CreateUser(t, usrRepo, "aluno@aprovia.app", "estudar-muito")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no email", args: []string{"adduser"}, extra: extra{pwd: "segredo123"}, wantErrStr: "email"},
		{name: "no password", args: []string{"adduser", "--email", "novo@aprovia.app"}, wantErr: errEmptyPassword},
		{name: "invalid email", args: []string{"adduser", "--email", "novo"}, extra: extra{pwd: "segredo123"}, wantErrStr: "email"},
		{name: "weak password", args: []string{"adduser", "--email", "novo@aprovia.app"}, extra: extra{pwd: "abc"}, wantErrStr: "pwdminlen"},
		{name: "email taken", args: []string{"adduser", "--email", "aluno@aprovia.app"}, extra: extra{pwd: "segredo123"}, wantErrStr: user.ErrEmailExists.Error()},
		{name: "success", args: []string{"adduser", "--email", "Novo@Aprovia.app", "--premium", "--admin"}, extra: extra{pwd: "segredo123"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pwd := ""
			if e, ok := tt.extra.(extra); ok {
				pwd = e.pwd
			}
			mockPassword(pwd)
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	ctx := context.Background()
	usr, err := usrRepo.GetUserByEmail(ctx, "novo@aprovia.app")
	require.NoError(t, err)
	assert.NoError(t, usr.CheckPassword("segredo123"))

	profile, err := usrRepo.GetProfile(ctx, usr.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsPremium)

	isAdmin, err := usrRepo.HasRole(ctx, usr.ID, user.RoleAdmin)
	require.NoError(t, err)
	assert.True(t, isAdmin)
}

func Test_commandLine_deleteUser(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "aluno@aprovia.app", "estudar-muito")
	owner := testutil.CreateUser(t, usrRepo, protectedEmail, "dono-do-app")

	tests := []cliTest{
		{name: "no id", args: []string{"deleteuser"}, wantErrStr: "id"},
		{name: "not a uuid", args: []string{"deleteuser", "--id", "u-nobody"}, wantErrStr: "valid UUID"},
		{name: "unknown user", args: []string{"deleteuser", "--id", "00000000-0000-0000-0000-0000000000ff"}, wantErrStr: user.ErrNotFound.Error()},
		{name: "protected", args: []string{"deleteuser", "--id", owner.ID}, wantErrStr: "protected"},
		{name: "success", args: []string{"deleteuser", "--id", usr.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	_, err := usrRepo.GetUserByID(context.Background(), usr.ID)
	assert.True(t, errors.Is(err, user.ErrNotFound))
	_, err = usrRepo.GetUserByID(context.Background(), owner.ID)
	assert.NoError(t, err)
}

func Test_commandLine_resetPassword(t *testing.T) {
	cli := setup(t)
	usr := testutil.CreateUser(t, usrRepo, "aluno@aprovia.app", "estudar-muito")

	type extra struct {
		pwd string
	}
	tests := []cliTest{
		{name: "no email", args: []string{"resetpassword"}, extra: extra{pwd: "lol"}, wantErrStr: "email"},
		{name: "email but no password", args: []string{"resetpassword", "--email", usr.Email}, wantErr: errEmptyPassword},
		{name: "user not found", args: []string{"resetpassword", "--email", "ninguem@aprovia.app"}, extra: extra{pwd: "lol"}, wantErr: user.ErrNotFound},
		{name: "reset", args: []string{"resetpassword", "--email", " ALUNO@aprovia.app "}, extra: extra{pwd: "nova-senha"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pwd := ""
			if e, ok := tt.extra.(extra); ok {
				pwd = e.pwd
			}
			mockPassword(pwd)
			tt.check(t, cli.run(append([]string{"admin"}, tt.args...)))
		})
	}

	refreshed, err := usrRepo.GetUserByID(context.Background(), usr.ID)
	require.NoError(t, err)
	assert.NoError(t, refreshed.CheckPassword("nova-senha"))
}
