package main

import (
	"fmt"
	"path/filepath"

	"github.com/airbitz/abcd/internal/infrastructure/wallets"
	"github.com/urfave/cli/v2"
)

var walletlist = cli.Command{
	Name:   "wallet-list",
	Usage:  "list the wallets of the account, ordered by sort index",
	Flags:  []cli.Flag{usernameFlag, passwordFlag},
	Action: walletListAction,
}

var walletdecrypt = cli.Command{
	Name:  "wallet-decrypt",
	Usage: "decrypt a file of the account repository with the account data key",
	Flags: []cli.Flag{
		usernameFlag,
		passwordFlag,
		&cli.StringFlag{
			Name:     "file",
			Usage:    "the path of the encrypted file, relative to the account dir",
			Required: true,
		},
	},
	Action: walletDecryptAction,
}

type walletInfo struct {
	ID       string `json:"id"`
	Archived bool   `json:"archived"`
}

func walletListAction(ctx *cli.Context) error {
	svc, cleanup, err := getAccountService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	entries, err := svc.ListWallets(ctx.Context)
	if err != nil {
		return err
	}

	list := make([]walletInfo, 0, len(entries))
	for _, e := range entries {
		list = append(list, walletInfo{e.ID, e.Archived})
	}
	printJSON(list)
	return nil
}

func walletDecryptAction(ctx *cli.Context) error {
	svc, cleanup, err := getAccountService(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	dir, err := svc.AccountDir()
	if err != nil {
		return err
	}
	dataKey, err := svc.DataKey()
	if err != nil {
		return err
	}
	defer dataKey.Zero()

	data, err := wallets.OpenFile(
		filepath.Join(dir, ctx.String("file")), dataKey,
	)
	if err != nil {
		return err
	}

	fmt.Println(string(data))
	return nil
}
