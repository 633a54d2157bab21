package main

import (
	"fmt"

	"github.com/airbitz/abcd/internal/config"
	"github.com/urfave/cli/v2"
)

var accountcreate = cli.Command{
	Name:   "account-create",
	Usage:  "create a new account and its sync repository",
	Flags:  []cli.Flag{usernameFlag, passwordFlag},
	Action: accountCreateAction,
}

var accountsync = cli.Command{
	Name:   "account-sync",
	Usage:  "pull the account repository and tell whether it changed",
	Flags:  []cli.Flag{usernameFlag, passwordFlag},
	Action: accountSyncAction,
}

func accountCreateAction(ctx *cli.Context) error {
	cfg := newAppConfig()
	defer cfg.Close()

	if err := cfg.Validate(); err != nil {
		return err
	}

	svc := cfg.AccountService()
	if err := svc.CreateAccount(
		ctx.Context, ctx.String(usernameFlag.Name), ctx.String(passwordFlag.Name),
	); err != nil {
		return err
	}
	defer svc.SignOut(ctx.Context)

	dir, err := svc.AccountDir()
	if err != nil {
		return err
	}

	fmt.Printf("account created in %s\n", dir)
	fmt.Printf("account type: %s\n", config.GetString(config.AccountTypeKey))
	return nil
}

func accountSyncAction(ctx *cli.Context) error {
	svc, cleanup, err := getAccountService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	dirty, err := svc.Sync(ctx.Context)
	if err != nil {
		return err
	}

	if dirty {
		fmt.Println("Contents changed")
	} else {
		fmt.Println("No changes")
	}
	return nil
}
