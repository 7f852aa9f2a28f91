package main

import (
	"context"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/account"
)

func (cli *commandLine) resetPassword(uname, pwd string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	acc, err := cli.accRepo.GetAccount(ctx, account.GetFilter{UsernameOrEmail: []string{uname}})
	if err != nil {
		return err
	}
	if err := acc.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.accRepo.UpdateAccount(ctx, acc); err != nil {
		return err
	}
	return nil
}
