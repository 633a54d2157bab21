package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/airbitz/abcd/internal/config"
	"github.com/airbitz/abcd/internal/core/application"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var (
	usernameFlag = &cli.StringFlag{
		Name:     "username",
		Usage:    "the account username",
		Required: true,
	}
	passwordFlag = &cli.StringFlag{
		Name:     "password",
		Usage:    "the account password",
		Required: true,
		EnvVars:  []string{"ABC_PASSWORD"},
	}
)

func main() {
	app := cli.NewApp()

	app.Version = "0.0.1"
	app.Name = "abc CLI"
	app.Usage = "Command line interface for Airbitz accounts and network settings"
	app.Before = func(*cli.Context) error {
		if err := config.InitConfig(); err != nil {
			return err
		}
		log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))
		return nil
	}
	app.Commands = append(
		app.Commands,
		&accountcreate,
		&accountsync,
		&walletlist,
		&walletdecrypt,
		&generalupdate,
		&feeinfo,
		&servers,
		&feeestimate,
		&watch,
	)

	err := app.Run(os.Args)
	if err != nil {
		fatal(err)
	}
}

func newAppConfig() *application.Config {
	return &application.Config{
		Datadir:          config.GetDatadir(),
		DBType:           config.GetString(config.DBTypeKey),
		AuthServerURL:    config.GetString(config.AuthServerURLKey),
		AuthServerAPIKey: config.GetString(config.AuthServerAPIKeyKey),
		AuthRateLimit:    config.GetInt(config.AuthRateLimitKey),
		Testnet:          config.IsTestnet(),
		GeneralMaxAge:    config.GetDuration(config.GeneralMaxAgeKey),
		FeeCacheMaxAge:   config.GetDuration(config.FeeCacheMaxAgeKey),
		AccountType:      config.GetString(config.AccountTypeKey),
	}
}

func getGeneralService() (application.GeneralService, func(), error) {
	cfg := newAppConfig()
	if err := cfg.Validate(); err != nil {
		cfg.Close()
		return nil, nil, err
	}
	return cfg.GeneralService(), cfg.Close, nil
}

// getAccountService returns the account service with the user of the given
// cli context signed in.
func getAccountService(ctx *cli.Context) (application.AccountService, func(), error) {
	cfg := newAppConfig()
	if err := cfg.Validate(); err != nil {
		cfg.Close()
		return nil, nil, err
	}

	svc := cfg.AccountService()
	if err := svc.SignIn(
		ctx.Context, ctx.String(usernameFlag.Name), ctx.String(passwordFlag.Name),
	); err != nil {
		cfg.Close()
		return nil, nil, err
	}

	cleanup := func() {
		if err := svc.SignOut(ctx.Context); err != nil {
			log.WithError(err).Warn("failed to sign out")
		}
		cfg.Close()
	}
	return svc, cleanup, nil
}

func printJSON(resp interface{}) {
	jsonStr, err := json.MarshalIndent(resp, "", "\t")
	if err != nil {
		fmt.Println("unable to decode response: ", err)
		return
	}

	fmt.Println(string(jsonStr))
}

type invalidUsageError struct {
	ctx     *cli.Context
	command string
}

func (e *invalidUsageError) Error() string {
	return fmt.Sprintf("invalid usage of command %s", e.command)
}

func fatal(err error) {
	var e *invalidUsageError
	if errors.As(err, &e) {
		_ = cli.ShowCommandHelp(e.ctx, e.command)
	} else {
		_, _ = fmt.Fprintf(os.Stderr, "[abc] %v\n", err)
	}
	os.Exit(1)
}
