package main

import (
	"context"
	"fmt"

	"github.com/noahgodinhocastellobranco-hub/aproviaapp-sub001/core/user"
)

// deleteUser runs the same cascade as the admin endpoint. Protected accounts are still refused.
func (cli *commandLine) deleteUser(id string) error {
	act := user.ActionContext{
		CallerRoles: []string{user.RoleAdmin},
		TargetID:    id,
	}
	if err := cli.usrSvc.Delete(context.Background(), act); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cli.out, "user %s deleted\n", id)
	return nil
}
