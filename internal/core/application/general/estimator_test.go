package general_test

import (
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/airbitz/abcd/internal/core/application/general"
	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/pkg/mathutil"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"
)

// satoshi converts satoshis per kB into the BTC per kB rate estimators
// report.
func satoshi(n int64) float64 {
	return float64(n) / 1e8
}

func newTestEstimator(t *testing.T) (*general.FeeEstimator, *memStore) {
	store := newMemStore()
	estimator, err := general.NewFeeEstimator(store, clock.NewTestClock(startTime))
	require.NoError(t, err)
	return estimator, store
}

func TestNewFeeEstimator(t *testing.T) {
	_, err := general.NewFeeEstimator(nil, nil)
	require.ErrorIs(t, err, general.ErrMissingCacheStore)
}

func TestSubmitInvalid(t *testing.T) {
	estimator, store := newTestEstimator(t)

	tests := []struct {
		name   string
		blocks int
		fee    float64
		err    error
	}{
		{"target too low", 0, 0.0001, domain.ErrInvalidBlockTarget},
		{"target too high", 6, 0.0001, domain.ErrInvalidBlockTarget},
		{"negative fee", 1, -0.0001, domain.ErrInvalidFee},
		{"nan fee", 1, math.NaN(), domain.ErrInvalidFee},
		{"infinite fee", 1, math.Inf(1), domain.ErrInvalidFee},
		{"fee beyond supply", 1, 1e12, domain.ErrInvalidFee},
		{"max float fee", 1, math.MaxFloat64, domain.ErrInvalidFee},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := estimator.Submit(ctx, tt.blocks, tt.fee)
			require.ErrorIs(t, err, tt.err)
		})
	}

	require.Equal(t, [6]int64{}, estimator.Means())
	require.Zero(t, store.numSaves(general.FeeCacheArtifact))
}

func TestSubmitMean(t *testing.T) {
	estimator, _ := newTestEstimator(t)

	for _, fee := range []int64{10, 20, 30} {
		require.NoError(t, estimator.Submit(ctx, 3, satoshi(fee)))
	}

	means := estimator.Means()
	require.Equal(t, int64(20), means[3])
	require.Zero(t, means[1])

	samples, err := estimator.Samples(3)
	require.NoError(t, err)
	require.Equal(t, int64(3), samples)
}

func TestSubmitLargeFees(t *testing.T) {
	estimator, _ := newTestEstimator(t)

	for i := 0; i < 10; i++ {
		require.NoError(t, estimator.Submit(ctx, 1, 21e6))
	}
	require.Error(t, estimator.Submit(ctx, 1, 1e12))

	means := estimator.Means()
	require.Equal(t, mathutil.MaxSatoshi, means[1])
	samples, err := estimator.Samples(1)
	require.NoError(t, err)
	require.Equal(t, int64(10), samples)
}

func TestSubmitOrderIndependence(t *testing.T) {
	type sample struct {
		blocks int
		fee    int64
	}
	var samples []sample
	for blocks := 1; blocks <= general.NumEstimateTargets; blocks++ {
		for i := int64(1); i <= 7; i++ {
			samples = append(samples, sample{blocks, i * 1000 * int64(blocks)})
		}
	}

	first, _ := newTestEstimator(t)
	for _, s := range samples {
		require.NoError(t, first.Submit(ctx, s.blocks, satoshi(s.fee)))
	}

	second, _ := newTestEstimator(t)
	rand.Shuffle(len(samples), func(i, j int) {
		samples[i], samples[j] = samples[j], samples[i]
	})
	for _, s := range samples {
		require.NoError(t, second.Submit(ctx, s.blocks, satoshi(s.fee)))
	}

	require.Equal(t, first.Means(), second.Means())
	require.Equal(t, int64(4000), first.Means()[1])
	require.Equal(t, int64(20000), first.Means()[5])
}

func TestSubmitPersistence(t *testing.T) {
	t.Run("waits for every target", func(t *testing.T) {
		estimator, store := newTestEstimator(t)

		for blocks := 1; blocks < general.NumEstimateTargets; blocks++ {
			require.NoError(t, estimator.Submit(ctx, blocks, satoshi(1000)))
			require.NoError(t, estimator.Submit(ctx, blocks, satoshi(3000)))
		}
		require.Zero(t, store.numSaves(general.FeeCacheArtifact))

		require.NoError(t, estimator.Submit(ctx, 5, satoshi(500)))
		require.Equal(t, 1, store.numSaves(general.FeeCacheArtifact))

		var fees domain.EstimateFees
		refreshedAt, err := store.Load(ctx, general.FeeCacheArtifact, &fees)
		require.NoError(t, err)
		require.Equal(t, startTime, refreshedAt)
		require.Equal(t, domain.EstimateFees{
			ConfirmFees1: 2000,
			ConfirmFees2: 2000,
			ConfirmFees3: 2000,
			ConfirmFees4: 2000,
			ConfirmFees5: 500,
		}, fees)
	})

	t.Run("persists latest means once complete", func(t *testing.T) {
		estimator, store := newTestEstimator(t)

		for blocks := 1; blocks <= general.NumEstimateTargets; blocks++ {
			require.NoError(t, estimator.Submit(ctx, blocks, satoshi(1000)))
		}
		require.NoError(t, estimator.Submit(ctx, 2, satoshi(3000)))
		require.Equal(t, 2, store.numSaves(general.FeeCacheArtifact))

		var fees domain.EstimateFees
		_, err := store.Load(ctx, general.FeeCacheArtifact, &fees)
		require.NoError(t, err)
		require.Equal(t, int64(2000), fees.ConfirmFees2)
	})

	t.Run("persist failure keeps the sample", func(t *testing.T) {
		estimator, store := newTestEstimator(t)
		store.saveErr = errors.New("disk full")

		for blocks := 1; blocks < general.NumEstimateTargets; blocks++ {
			require.NoError(t, estimator.Submit(ctx, blocks, satoshi(1000)))
		}
		require.Error(t, estimator.Submit(ctx, 5, satoshi(1000)))
		require.Equal(t, int64(1000), estimator.Means()[5])
	})
}

func TestSubmitConcurrently(t *testing.T) {
	estimator, store := newTestEstimator(t)

	wg := &sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		for blocks := 1; blocks <= general.NumEstimateTargets; blocks++ {
			wg.Add(1)
			go func(blocks int) {
				defer wg.Done()
				require.NoError(t, estimator.Submit(ctx, blocks, satoshi(4000)))
			}(blocks)
		}
	}
	wg.Wait()

	for blocks := 1; blocks <= general.NumEstimateTargets; blocks++ {
		samples, err := estimator.Samples(blocks)
		require.NoError(t, err)
		require.Equal(t, int64(50), samples)
		require.Equal(t, int64(4000), estimator.Means()[blocks])
	}
	require.NotZero(t, store.numSaves(general.FeeCacheArtifact))
}
