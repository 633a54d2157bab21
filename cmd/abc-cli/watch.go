package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/airbitz/abcd/internal/config"
	"github.com/airbitz/abcd/internal/core/application"
	"github.com/airbitz/abcd/pkg/stats"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

var watch = cli.Command{
	Name:   "watch",
	Usage:  "keep the account and the general info in sync until interrupted",
	Flags:  []cli.Flag{usernameFlag, passwordFlag},
	Action: watchAction,
}

func watchAction(ctx *cli.Context) error {
	cfg := newAppConfig()
	defer cfg.Close()

	if err := cfg.Validate(); err != nil {
		return err
	}

	accountSvc := cfg.AccountService()
	if err := accountSvc.SignIn(
		ctx.Context, ctx.String(usernameFlag.Name), ctx.String(passwordFlag.Name),
	); err != nil {
		return err
	}
	defer accountSvc.SignOut(context.Background())

	sigCtx, stop := signal.NotifyContext(
		ctx.Context, os.Interrupt, syscall.SIGTERM,
	)
	defer stop()

	if config.GetBool(config.EnableStatsKey) {
		interval := time.Duration(config.GetInt(config.StatsIntervalKey)) * time.Second
		dumpPath := filepath.Join(
			config.GetDatadir(), config.ProfilerLocation, "prometheus.txt",
		)
		stats.EnableMemoryStatistics(sigCtx, interval, dumpPath)
	}

	interval := config.GetDuration(config.SyncIntervalKey)
	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		return syncLoop(gctx, accountSvc, interval)
	})
	g.Go(func() error {
		return generalLoop(gctx, cfg.GeneralService(), interval)
	})

	log.Infof("watching account %s", ctx.String(usernameFlag.Name))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	log.Info("exiting")
	return nil
}

func syncLoop(
	ctx context.Context, svc application.AccountService, interval time.Duration,
) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			dirty, err := svc.Sync(ctx)
			if err != nil {
				log.WithError(err).Warn("account sync failed")
				continue
			}
			if dirty {
				entries, err := svc.ListWallets(ctx)
				if err != nil {
					log.WithError(err).Warn("failed to list wallets")
					continue
				}
				log.Infof("account changed, %d wallets", len(entries))
			}
		}
	}
}

func generalLoop(
	ctx context.Context, svc application.GeneralService, interval time.Duration,
) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := svc.UpdateGeneral(ctx); err != nil {
				log.WithError(err).Warn("general info update failed")
				continue
			}
			log.Debugf("bitcoin servers: %v", svc.BitcoinServers(ctx))
		}
	}
}
