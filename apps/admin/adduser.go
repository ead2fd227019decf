package main

import (
	"context"
	"fmt"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
)

// addUser creates a user.User, optionally premium and/or admin.
func (cli *commandLine) addUser(email, pwd string, isPremium, isAdmin bool) error {
	ctx := context.Background()

	nu := user.NewUser{Email: email, Password: pwd, IsPremium: &isPremium}
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}

	usr, err := cli.usrSvc.Create(ctx, nu)
	if err != nil {
		return err
	}
	if isAdmin {
		if err = cli.usrSvc.GrantRole(ctx, usr.ID, user.RoleAdmin); err != nil {
			return err
		}
	}

	_, _ = fmt.Fprintf(cli.out, "user %s created (%s)\n", usr.Email, usr.ID)
	return nil
}
