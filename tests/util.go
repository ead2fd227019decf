package testutil

import (
	"context"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core"
	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
	logsvc "github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/services/logger"
)

// NewLogger returns a logger that never reaches rollbar.
// Output is shown only with `go test -v`.
func NewLogger(t *testing.T) core.Logger {
	t.Helper()
	var out io.Writer = io.Discard
	if testing.Verbose() {
		out = os.Stderr
	}
	return logsvc.NewRollbarLogger(log.New(out, "TEST : ", log.LstdFlags), core.NewTestConfig())
}

func CreateUser(t *testing.T, repo user.Repository, email, pwd string, roles ...string) user.User {
	t.Helper()
	ctx := context.Background()

	usr := user.User{
		ID:        uuid.New().String(),
		Email:     email,
		CreatedAt: time.Now().UTC(),
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(ctx, usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	if _, err = repo.UpsertProfile(ctx, user.Profile{UserID: usr.ID, Email: usr.Email, CreatedAt: usr.CreatedAt, UpdatedAt: usr.CreatedAt}); err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	for _, role := range roles {
		if err = repo.AddRole(ctx, usr.ID, role); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	return usr
}
