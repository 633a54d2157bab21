package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/pkg/mathutil"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/urfave/cli/v2"
)

var generalupdate = cli.Command{
	Name:   "general-update",
	Usage:  "refresh the cached general info if stale",
	Action: generalUpdateAction,
}

var feeinfo = cli.Command{
	Name:  "fee-info",
	Usage: "show the effective miner and Airbitz fee schedules",
	Flags: []cli.Flag{
		&cli.Int64Flag{
			Name:  "amount",
			Usage: "if set, also show the Airbitz fees owed on this amount of satoshis",
		},
	},
	Action: feeInfoAction,
}

var servers = cli.Command{
	Name:   "servers",
	Usage:  "list bitcoin and sync servers along with their scores",
	Action: serversAction,
}

var feeestimate = cli.Command{
	Name:      "fee-estimate",
	Usage:     "submit network fee estimates, in BTC per kB",
	ArgsUsage: "<blocks>:<fee> [<blocks>:<fee>...]",
	Action:    feeEstimateAction,
}

func generalUpdateAction(ctx *cli.Context) error {
	svc, cleanup, err := getGeneralService()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := svc.UpdateGeneral(ctx.Context); err != nil {
		return err
	}

	fmt.Println("general info is up to date")
	return nil
}

func feeInfoAction(ctx *cli.Context) error {
	svc, cleanup, err := getGeneralService()
	if err != nil {
		return err
	}
	defer cleanup()

	bitcoinFees := svc.BitcoinFeeInfo(ctx.Context)
	airbitzFees := svc.AirbitzFeeInfo(ctx.Context)

	confirmFees := make(map[string]string, domain.NumConfirmFees)
	for i := 1; i <= domain.NumConfirmFees; i++ {
		confirmFees[strconv.Itoa(i)] = btcutil.Amount(bitcoinFees.ConfirmFees[i]).String()
	}

	resp := map[string]interface{}{
		"confirm_fees_per_kb":     confirmFees,
		"high_fee_block":          bitcoinFees.HighFeeBlock,
		"standard_fee_block_high": bitcoinFees.StandardFeeBlockHigh,
		"standard_fee_block_low":  bitcoinFees.StandardFeeBlockLow,
		"low_fee_block":           bitcoinFees.LowFeeBlock,
		"target_fee_percentage":   bitcoinFees.TargetFeePercentage,
		"airbitz": map[string]interface{}{
			"addresses":     airbitzFees.Addresses,
			"incoming_rate": airbitzFees.IncomingRate,
			"incoming_min":  btcutil.Amount(airbitzFees.IncomingMin).String(),
			"incoming_max":  btcutil.Amount(airbitzFees.IncomingMax).String(),
			"outgoing_rate": airbitzFees.OutgoingRate,
			"outgoing_min":  btcutil.Amount(airbitzFees.OutgoingMin).String(),
			"outgoing_max":  btcutil.Amount(airbitzFees.OutgoingMax).String(),
			"no_fee_min":    btcutil.Amount(airbitzFees.NoFeeMinSatoshi).String(),
			"send_min":      btcutil.Amount(airbitzFees.SendMin).String(),
			"send_period":   airbitzFees.SendPeriod.String(),
			"send_payee":    airbitzFees.SendPayee,
			"send_category": airbitzFees.SendCategory,
		},
	}

	if amount := ctx.Int64("amount"); amount > 0 {
		outgoing := mathutil.OutgoingFee(
			amount, airbitzFees.OutgoingRate, airbitzFees.OutgoingMin,
			airbitzFees.OutgoingMax, airbitzFees.NoFeeMinSatoshi,
		)
		incoming := mathutil.IncomingFee(
			amount, airbitzFees.IncomingRate, airbitzFees.IncomingMin,
			airbitzFees.IncomingMax,
		)
		resp["amount"] = mathutil.ToBTC(amount).String()
		resp["outgoing_fee"] = mathutil.ToBTC(outgoing).String()
		resp["incoming_fee"] = mathutil.ToBTC(incoming).String()
	}

	printJSON(resp)
	return nil
}

func serversAction(ctx *cli.Context) error {
	svc, cleanup, err := getGeneralService()
	if err != nil {
		return err
	}
	defer cleanup()

	printJSON(map[string]interface{}{
		"bitcoin_servers": svc.BitcoinServers(ctx.Context),
		"sync_servers":    svc.SyncServers(ctx.Context),
		"server_scores":   svc.ServerScores(ctx.Context),
	})
	return nil
}

func feeEstimateAction(ctx *cli.Context) error {
	if ctx.NArg() <= 0 {
		return &invalidUsageError{ctx, ctx.Command.Name}
	}

	svc, cleanup, err := getGeneralService()
	if err != nil {
		return err
	}
	defer cleanup()

	for _, arg := range ctx.Args().Slice() {
		blocks, fee, err := parseFeeEstimate(arg)
		if err != nil {
			return err
		}
		if err := svc.SubmitFeeEstimate(ctx.Context, blocks, fee); err != nil {
			return err
		}
	}

	printJSON(map[string]interface{}{
		"means_per_kb":  svc.FeeEstimateMeans(),
		"needs_samples": svc.EstimateFeesNeedUpdate(ctx.Context),
	})
	return nil
}

func parseFeeEstimate(arg string) (int, float64, error) {
	parts := strings.SplitN(arg, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid fee estimate %q", arg)
	}
	blocks, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid block target %q: %s", parts[0], err)
	}
	fee, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid fee %q: %s", parts[1], err)
	}
	return blocks, fee, nil
}
