package general

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/internal/core/ports"
	"github.com/airbitz/abcd/pkg/mathutil"
	"github.com/airbitz/abcd/pkg/stats"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// NumEstimateTargets is the number of block targets fee samples are
// collected for.
const NumEstimateTargets = 5

// FeeEstimator averages the fee rates reported by the network per block
// target. Once every target got at least one sample, each submission
// persists the table of means.
type FeeEstimator struct {
	store ports.CacheStore
	clock clock.Clock

	lock  sync.Mutex
	sums  [NumEstimateTargets + 1]decimal.Decimal
	count [NumEstimateTargets + 1]int64
}

func NewFeeEstimator(
	store ports.CacheStore, clk clock.Clock,
) (*FeeEstimator, error) {
	if store == nil {
		return nil, ErrMissingCacheStore
	}
	if clk == nil {
		clk = clock.NewDefaultClock()
	}
	return &FeeEstimator{store: store, clock: clk}, nil
}

// Submit adds a sample, expressed in BTC per kB, to the given block target.
func (e *FeeEstimator) Submit(
	ctx context.Context, blocks int, feePerKB float64,
) error {
	if blocks < 1 || blocks > NumEstimateTargets {
		return fmt.Errorf("%w: %d", domain.ErrInvalidBlockTarget, blocks)
	}
	if math.IsNaN(feePerKB) || math.IsInf(feePerKB, 0) || feePerKB < 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidFee, feePerKB)
	}
	satoshis, err := mathutil.ToSatoshi(feePerKB)
	if err != nil {
		return fmt.Errorf("%w: %v: %w", domain.ErrInvalidFee, feePerKB, err)
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	e.sums[blocks] = e.sums[blocks].Add(decimal.NewFromInt(satoshis))
	e.count[blocks]++
	stats.FeeSamples.WithLabelValues(strconv.Itoa(blocks)).Inc()

	if !e.isComplete() {
		return nil
	}

	fees := e.estimateFees()
	if err := e.store.Save(ctx, FeeCacheArtifact, fees, e.clock.Now()); err != nil {
		return fmt.Errorf("failed to persist estimated fees: %w", err)
	}
	stats.FeeCacheWrites.Inc()
	log.Debugf(
		"estimated fees: 1:%d, 2:%d, 3:%d, 4:%d, 5:%d",
		fees.ConfirmFees1, fees.ConfirmFees2, fees.ConfirmFees3,
		fees.ConfirmFees4, fees.ConfirmFees5,
	)
	return nil
}

// Means returns the current mean fee, in satoshi per kB, of every block
// target. Index 0 is unused and targets with no sample have mean 0.
func (e *FeeEstimator) Means() [NumEstimateTargets + 1]int64 {
	e.lock.Lock()
	defer e.lock.Unlock()

	return e.means()
}

// Samples returns the number of samples collected for the given target.
func (e *FeeEstimator) Samples(blocks int) (int64, error) {
	if blocks < 1 || blocks > NumEstimateTargets {
		return 0, fmt.Errorf("%w: %d", domain.ErrInvalidBlockTarget, blocks)
	}

	e.lock.Lock()
	defer e.lock.Unlock()

	return e.count[blocks], nil
}

func (e *FeeEstimator) means() [NumEstimateTargets + 1]int64 {
	var means [NumEstimateTargets + 1]int64
	for i := 1; i <= NumEstimateTargets; i++ {
		if e.count[i] > 0 {
			mean, _ := e.sums[i].QuoRem(decimal.NewFromInt(e.count[i]), 0)
			means[i] = mean.IntPart()
		}
	}
	return means
}

func (e *FeeEstimator) isComplete() bool {
	for i := 1; i <= NumEstimateTargets; i++ {
		if e.count[i] == 0 {
			return false
		}
	}
	return true
}

func (e *FeeEstimator) estimateFees() domain.EstimateFees {
	means := e.means()
	return domain.EstimateFees{
		ConfirmFees1: means[1],
		ConfirmFees2: means[2],
		ConfirmFees3: means[3],
		ConfirmFees4: means[4],
		ConfirmFees5: means[5],
	}
}
