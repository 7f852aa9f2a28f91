package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hajerbook/backend/core"
	"github.com/hajerbook/backend/core/account"
)

// addUser updates or creates an account.Account
func (cli *commandLine) addUser(name, uname, email, pwd string, roles []string) error {
	ctx := context.Background()
	uname = core.CleanString(uname, true /* lower */)
	email = core.CleanString(email, true /* lower */)

	acc, err := cli.accRepo.GetAccount(ctx, account.GetFilter{UsernameOrEmail: []string{uname, email}})
	if err != nil {
		if errors.Cause(err) != account.ErrNotFound {
			return err
		}
		now := time.Now().UTC()
		acc = account.Account{
			Username:  uname,
			Email:     email,
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	if name = core.CleanString(name); name != "" {
		acc.Name = name
	}
	if acc.Name == "" {
		acc.Name = uname
	}
	acc.Roles = roles
	acc.SetActive(true)
	if err := acc.SetPassword(pwd); err != nil {
		return err
	}
	if _, err := cli.accRepo.UpdateOrCreateAccount(ctx, acc); err != nil {
		return err
	}
	return nil
}
