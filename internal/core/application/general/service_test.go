package general_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/airbitz/abcd/internal/core/application/general"
	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	ctx       = context.Background()
	startTime = time.Date(2016, time.March, 1, 12, 0, 0, 0, time.UTC)

	generalDoc = []byte(`{
		"minersFees2": {
			"confirmFees1": 60000,
			"confirmFees2": 70000,
			"confirmFees3": 50000,
			"confirmFees4": 40000,
			"confirmFees5": 30000,
			"confirmFees6": 20000
		},
		"feesAirBitz": {
			"addresses": ["1Bob", "1Alice", "1Bob"],
			"incomingRate": 0.001,
			"percentage": 0.5,
			"maxSatoshi": 20000,
			"minSatoshi": 100,
			"noFeeMinSatoshi": 10000,
			"sendPeriod": 3600
		},
		"obeliskServers": ["tcp://a.example.com:9091", "stratum://B.example.com:50001"],
		"syncServers": ["https://sync1.example.com/repos", "https://sync2.example.com/repos"]
	}`)
)

func newTestService(
	t *testing.T, testnet bool,
) (*general.Service, *mockFetcher, *memStore, *clock.TestClock) {
	fetcher := &mockFetcher{}
	store := newMemStore()
	clk := clock.NewTestClock(startTime)

	svc, err := general.NewService(fetcher, store, general.Options{
		Clock:   clk,
		Testnet: testnet,
	})
	require.NoError(t, err)
	return svc, fetcher, store, clk
}

func TestNewService(t *testing.T) {
	_, err := general.NewService(nil, newMemStore(), general.Options{})
	require.ErrorIs(t, err, general.ErrMissingFetcher)

	_, err = general.NewService(&mockFetcher{}, nil, general.Options{})
	require.ErrorIs(t, err, general.ErrMissingCacheStore)
}

func TestUpdate(t *testing.T) {
	t.Run("fetches when absent", func(t *testing.T) {
		svc, fetcher, store, _ := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).Return(generalDoc, nil)

		require.NoError(t, svc.Update(ctx))
		fetcher.AssertNumberOfCalls(t, "FetchGeneral", 1)
		require.Equal(t, 1, store.numSaves(general.GeneralArtifact))
		require.Equal(t, 1, store.numSaves(general.ServerScoresArtifact))
	})

	t.Run("serves fresh cache without fetching", func(t *testing.T) {
		svc, fetcher, _, clk := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).Return(generalDoc, nil)

		require.NoError(t, svc.Update(ctx))
		clk.SetTime(startTime.Add(general.DefaultGeneralMaxAge))
		require.NoError(t, svc.Update(ctx))
		fetcher.AssertNumberOfCalls(t, "FetchGeneral", 1)
	})

	t.Run("refetches once stale", func(t *testing.T) {
		svc, fetcher, store, clk := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).Return(generalDoc, nil)

		require.NoError(t, svc.Update(ctx))
		clk.SetTime(startTime.Add(general.DefaultGeneralMaxAge + time.Second))
		require.NoError(t, svc.Update(ctx))
		fetcher.AssertNumberOfCalls(t, "FetchGeneral", 2)
		require.Equal(t, 2, store.numSaves(general.GeneralArtifact))
	})

	t.Run("fetch failure keeps previous cache", func(t *testing.T) {
		svc, fetcher, store, clk := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).Return(generalDoc, nil).Once()
		fetcher.On("FetchGeneral", mock.Anything).
			Return(nil, errors.New("connection refused"))

		require.NoError(t, svc.Update(ctx))
		clk.SetTime(startTime.Add(time.Minute))

		err := svc.Update(ctx)
		require.ErrorIs(t, err, domain.ErrFetch)
		require.Equal(t, 1, store.numSaves(general.GeneralArtifact))
		require.Equal(t, []string{
			"https://sync1.example.com/repos", "https://sync2.example.com/repos",
		}, svc.SyncServers(ctx))
	})

	t.Run("rejects malformed document", func(t *testing.T) {
		svc, fetcher, store, _ := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).Return([]byte(`{"minersFees2":`), nil)

		err := svc.Update(ctx)
		require.ErrorIs(t, err, domain.ErrFetch)
		require.Zero(t, store.numSaves(general.GeneralArtifact))
	})

	t.Run("persist failure", func(t *testing.T) {
		svc, fetcher, store, _ := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).Return(generalDoc, nil)
		store.saveErr = errors.New("disk full")

		err := svc.Update(ctx)
		require.Error(t, err)
		require.NotErrorIs(t, err, domain.ErrFetch)
	})
}

func TestServerScores(t *testing.T) {
	t.Run("reconciles case insensitively", func(t *testing.T) {
		svc, fetcher, store, _ := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).
			Return([]byte(`{"obeliskServers": ["a", "B"]}`), nil)
		require.NoError(t, store.Save(
			ctx, general.ServerScoresArtifact,
			[]domain.ServerScore{{ServerURL: "A", Score: 5}}, startTime,
		))

		scores := svc.ServerScores(ctx)
		require.Equal(t, []domain.ServerScore{
			{ServerURL: "A", Score: 5},
			{ServerURL: "B", Score: 0},
		}, scores)
	})

	t.Run("never removes entries", func(t *testing.T) {
		svc, fetcher, store, _ := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).
			Return([]byte(`{"obeliskServers": ["C"]}`), nil)
		require.NoError(t, store.Save(
			ctx, general.ServerScoresArtifact,
			[]domain.ServerScore{{ServerURL: "A", Score: 5}}, startTime,
		))

		scores := svc.ServerScores(ctx)
		require.Equal(t, []domain.ServerScore{
			{ServerURL: "A", Score: 5},
			{ServerURL: "C", Score: 0},
		}, scores)
	})

	t.Run("empty when never fetched", func(t *testing.T) {
		svc, fetcher, _, _ := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).Return(nil, errors.New("offline"))

		scores := svc.ServerScores(ctx)
		require.NotNil(t, scores)
		require.Empty(t, scores)
	})
}

func TestFallbacks(t *testing.T) {
	svc, fetcher, _, _ := newTestService(t, false)
	fetcher.On("FetchGeneral", mock.Anything).Return(nil, errors.New("offline"))

	require.Equal(t, domain.FallbackBitcoinServers, svc.BitcoinServers(ctx))
	require.Equal(t, []string{domain.FallbackSyncServer}, svc.SyncServers(ctx))

	info := svc.BitcoinFeeInfo(ctx)
	require.Equal(t, domain.NewBitcoinFees().ConfirmFees(), info.ConfirmFees)
	require.Equal(t, int64(1), info.HighFeeBlock)
	require.Equal(t, int64(4), info.LowFeeBlock)
	require.Equal(t, 0.25, info.TargetFeePercentage)

	fees := svc.AirbitzFeeInfo(ctx)
	require.Empty(t, fees.Addresses)
	require.Equal(t, int64(4000), fees.SendMin)
	require.Equal(t, 7*24*time.Hour, fees.SendPeriod)
	require.Equal(t, "Airbitz", fees.SendPayee)
	require.Equal(t, "Expense:Fees", fees.SendCategory)
}

func TestBitcoinServers(t *testing.T) {
	t.Run("mainnet", func(t *testing.T) {
		svc, fetcher, _, _ := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).Return(generalDoc, nil)

		require.Equal(t, []string{
			"tcp://a.example.com:9091", "stratum://B.example.com:50001",
		}, svc.BitcoinServers(ctx))
	})

	t.Run("testnet", func(t *testing.T) {
		svc, fetcher, _, _ := newTestService(t, true)
		fetcher.On("FetchGeneral", mock.Anything).Return(generalDoc, nil)

		require.Equal(t, domain.TestnetBitcoinServers, svc.BitcoinServers(ctx))
		fetcher.AssertNotCalled(t, "FetchGeneral", mock.Anything)
	})

	t.Run("empty list falls back", func(t *testing.T) {
		svc, fetcher, _, _ := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).
			Return([]byte(`{"obeliskServers": [], "syncServers": [""]}`), nil)

		require.Equal(t, domain.FallbackBitcoinServers, svc.BitcoinServers(ctx))
		require.Equal(t, []string{domain.FallbackSyncServer}, svc.SyncServers(ctx))
	})
}

func TestBitcoinFeeInfo(t *testing.T) {
	t.Run("monotone without estimates", func(t *testing.T) {
		svc, fetcher, _, _ := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).Return(generalDoc, nil)

		info := svc.BitcoinFeeInfo(ctx)
		require.Equal(t, [7]int64{
			0, 60000, 60000, 50000, 40000, 30000, 20000,
		}, info.ConfirmFees)
	})

	t.Run("estimates override then clamp", func(t *testing.T) {
		svc, fetcher, store, _ := newTestService(t, false)
		fetcher.On("FetchGeneral", mock.Anything).Return(nil, errors.New("offline"))
		require.NoError(t, store.Save(ctx, general.FeeCacheArtifact, domain.EstimateFees{
			ConfirmFees1: 80000,
			ConfirmFees2: 90000,
			ConfirmFees5: 50000,
		}, startTime))

		info := svc.BitcoinFeeInfo(ctx)
		require.Equal(t, [7]int64{
			0, 80000, 80000, 51098, 46001, 46001, 26002,
		}, info.ConfirmFees)
		for i := 2; i < len(info.ConfirmFees); i++ {
			require.LessOrEqual(t, info.ConfirmFees[i], info.ConfirmFees[i-1])
		}
	})
}

func TestAirbitzFeeInfo(t *testing.T) {
	svc, fetcher, _, _ := newTestService(t, false)
	fetcher.On("FetchGeneral", mock.Anything).Return(generalDoc, nil)

	fees := svc.AirbitzFeeInfo(ctx)
	require.Equal(t, []string{"1Alice", "1Bob"}, fees.Addresses)
	require.Equal(t, 0.001, fees.IncomingRate)
	require.Equal(t, 0.005, fees.OutgoingRate)
	require.Equal(t, int64(100), fees.OutgoingMin)
	require.Equal(t, int64(20000), fees.OutgoingMax)
	require.Equal(t, int64(10000), fees.NoFeeMinSatoshi)
	require.Equal(t, time.Hour, fees.SendPeriod)
	// Fields missing from the document keep their defaults.
	require.Equal(t, int64(4000), fees.SendMin)
	require.Equal(t, "Airbitz", fees.SendPayee)
}

func TestEstimateFeesNeedUpdate(t *testing.T) {
	svc, _, store, clk := newTestService(t, false)
	require.True(t, svc.EstimateFeesNeedUpdate(ctx))

	require.NoError(t, store.Save(
		ctx, general.FeeCacheArtifact, domain.EstimateFees{}, startTime,
	))
	require.False(t, svc.EstimateFeesNeedUpdate(ctx))

	clk.SetTime(startTime.Add(general.DefaultFeeCacheMaxAge))
	require.False(t, svc.EstimateFeesNeedUpdate(ctx))

	clk.SetTime(startTime.Add(general.DefaultFeeCacheMaxAge + time.Second))
	require.True(t, svc.EstimateFeesNeedUpdate(ctx))
}
