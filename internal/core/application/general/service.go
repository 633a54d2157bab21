package general

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/internal/core/ports"
	"github.com/airbitz/abcd/pkg/mathutil"
	"github.com/airbitz/abcd/pkg/stats"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
)

const (
	// GeneralArtifact is the name of the cached general info document.
	GeneralArtifact = "General.json"
	// ServerScoresArtifact is the name of the persisted server score list.
	ServerScoresArtifact = "ServerScores.json"
	// FeeCacheArtifact is the name of the persisted estimated fee table.
	FeeCacheArtifact = "FeeCache.json"

	DefaultGeneralMaxAge  = 2 * time.Second
	DefaultFeeCacheMaxAge = 3 * time.Hour
)

var (
	ErrMissingFetcher    = errors.New("missing general info fetcher")
	ErrMissingCacheStore = errors.New("missing cache store")
)

type Options struct {
	Clock          clock.Clock
	GeneralMaxAge  time.Duration
	FeeCacheMaxAge time.Duration
	Testnet        bool
}

func (o Options) withDefaults() Options {
	if o.Clock == nil {
		o.Clock = clock.NewDefaultClock()
	}
	if o.GeneralMaxAge <= 0 {
		o.GeneralMaxAge = DefaultGeneralMaxAge
	}
	if o.FeeCacheMaxAge <= 0 {
		o.FeeCacheMaxAge = DefaultFeeCacheMaxAge
	}
	return o
}

// Service is the local cache of the settings the server adjusts from time to
// time. Every read first makes sure the cached document is fresh, then serves
// the persisted copy, falling back to the built-in defaults.
type Service struct {
	fetcher ports.GeneralFetcher
	store   ports.CacheStore
	opts    Options
}

func NewService(
	fetcher ports.GeneralFetcher, store ports.CacheStore, opts Options,
) (*Service, error) {
	if fetcher == nil {
		return nil, ErrMissingFetcher
	}
	if store == nil {
		return nil, ErrMissingCacheStore
	}
	return &Service{fetcher, store, opts.withDefaults()}, nil
}

// Update fetches a new general info document if the cached one is missing or
// older than the configured max age. The server score list is reconciled with
// the bitcoin servers of every newly persisted document.
func (s *Service) Update(ctx context.Context) error {
	if s.isFresh(ctx, GeneralArtifact, s.opts.GeneralMaxAge) {
		return nil
	}

	doc, err := s.fetcher.FetchGeneral(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrFetch, err)
	}
	info := domain.NewGeneralInfo()
	if err := json.Unmarshal(doc, &info); err != nil {
		return fmt.Errorf("%w: malformed general info: %s", domain.ErrFetch, err)
	}

	now := s.opts.Clock.Now()
	if err := s.store.Save(
		ctx, GeneralArtifact, json.RawMessage(doc), now,
	); err != nil {
		return fmt.Errorf("failed to persist general info: %w", err)
	}
	stats.GeneralRefreshes.Inc()

	info, err = s.loadGeneral(ctx)
	if err != nil {
		return fmt.Errorf("failed to reload general info: %w", err)
	}

	scores, err := s.loadScores(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to load server scores, starting over")
	}
	scores = reconcileScores(scores, nonEmpty(info.BitcoinServers))
	if err := s.store.Save(ctx, ServerScoresArtifact, scores, now); err != nil {
		return fmt.Errorf("failed to persist server scores: %w", err)
	}

	log.Debugf("general info refreshed, %d server scores", len(scores))
	return nil
}

// BitcoinFeeInfo returns the effective miner fee table. Live estimates take
// precedence over the server table, then every bucket is clamped to the fee
// of the previous, faster one.
func (s *Service) BitcoinFeeInfo(ctx context.Context) domain.BitcoinFeeInfo {
	info := s.general(ctx).BitcoinFees
	fees := info.ConfirmFees()

	estimates := s.estimates(ctx).ConfirmFees()
	for i := 1; i <= domain.NumConfirmFees; i++ {
		if estimates[i] != 0 {
			fees[i] = estimates[i]
		}
	}
	for i := 2; i <= domain.NumConfirmFees; i++ {
		if fees[i] > fees[i-1] {
			fees[i] = fees[i-1]
		}
	}

	log.Debugf(
		"bitcoin fee info: 1:%d, 2:%d, 3:%d, 4:%d, 5:%d, 6:%d",
		fees[1], fees[2], fees[3], fees[4], fees[5], fees[6],
	)

	return domain.BitcoinFeeInfo{
		ConfirmFees:          fees,
		HighFeeBlock:         info.HighFeeBlock,
		StandardFeeBlockHigh: info.StandardFeeBlockHigh,
		StandardFeeBlockLow:  info.StandardFeeBlockLow,
		LowFeeBlock:          info.LowFeeBlock,
		TargetFeePercentage:  info.TargetFeePercentage,
	}
}

func (s *Service) AirbitzFeeInfo(ctx context.Context) domain.AirbitzFeeInfo {
	fees := s.general(ctx).AirbitzFees

	return domain.AirbitzFeeInfo{
		Addresses:       uniqueSorted(fees.Addresses),
		IncomingRate:    fees.IncomingRate,
		IncomingMin:     fees.IncomingMin,
		IncomingMax:     fees.IncomingMax,
		OutgoingRate:    mathutil.PercentageToRate(fees.OutgoingPercentage),
		OutgoingMin:     fees.OutgoingMin,
		OutgoingMax:     fees.OutgoingMax,
		NoFeeMinSatoshi: fees.NoFeeMinSatoshi,
		SendMin:         fees.SendMin,
		SendPeriod:      time.Duration(fees.SendPeriod) * time.Second,
		SendPayee:       fees.SendPayee,
		SendCategory:    fees.SendCategory,
	}
}

// BitcoinServers returns the bitcoin network endpoints to connect to. On
// testnet the list is fixed.
func (s *Service) BitcoinServers(ctx context.Context) []string {
	if s.opts.Testnet {
		return append([]string{}, domain.TestnetBitcoinServers...)
	}

	servers := nonEmpty(s.general(ctx).BitcoinServers)
	if len(servers) == 0 {
		return append([]string{}, domain.FallbackBitcoinServers...)
	}
	return servers
}

func (s *Service) SyncServers(ctx context.Context) []string {
	servers := nonEmpty(s.general(ctx).SyncServers)
	if len(servers) == 0 {
		return []string{domain.FallbackSyncServer}
	}
	return servers
}

func (s *Service) ServerScores(ctx context.Context) []domain.ServerScore {
	s.ensureFresh(ctx)

	scores, err := s.loadScores(ctx)
	if err != nil {
		log.WithError(err).Warn("failed to load server scores")
	}
	if scores == nil {
		scores = make([]domain.ServerScore, 0)
	}
	return scores
}

// EstimateFeesNeedUpdate tells whether the estimated fee table is missing or
// old enough to be worth collecting new samples for.
func (s *Service) EstimateFeesNeedUpdate(ctx context.Context) bool {
	return !s.isFresh(ctx, FeeCacheArtifact, s.opts.FeeCacheMaxAge)
}

func (s *Service) ensureFresh(ctx context.Context) {
	if err := s.Update(ctx); err != nil {
		log.WithError(err).Warn("failed to update general info")
	}
}

func (s *Service) isFresh(
	ctx context.Context, name string, maxAge time.Duration,
) bool {
	var doc json.RawMessage
	refreshedAt, err := s.store.Load(ctx, name, &doc)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheNotFound) {
			log.WithError(err).Warnf("failed to read %s", name)
		}
		return false
	}
	return !s.opts.Clock.Now().After(refreshedAt.Add(maxAge))
}

func (s *Service) general(ctx context.Context) domain.GeneralInfo {
	s.ensureFresh(ctx)

	info, err := s.loadGeneral(ctx)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheNotFound) {
			log.WithError(err).Warn("failed to load general info, using defaults")
		}
		return domain.NewGeneralInfo()
	}
	return info
}

func (s *Service) loadGeneral(ctx context.Context) (domain.GeneralInfo, error) {
	info := domain.NewGeneralInfo()
	if _, err := s.store.Load(ctx, GeneralArtifact, &info); err != nil {
		return domain.GeneralInfo{}, err
	}
	return info, nil
}

func (s *Service) loadScores(ctx context.Context) ([]domain.ServerScore, error) {
	var scores []domain.ServerScore
	if _, err := s.store.Load(ctx, ServerScoresArtifact, &scores); err != nil {
		if errors.Is(err, domain.ErrCacheNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return scores, nil
}

func (s *Service) estimates(ctx context.Context) domain.EstimateFees {
	var fees domain.EstimateFees
	if _, err := s.store.Load(ctx, FeeCacheArtifact, &fees); err != nil {
		if !errors.Is(err, domain.ErrCacheNotFound) {
			log.WithError(err).Warn("failed to load estimated fees")
		}
		return domain.EstimateFees{}
	}
	return fees
}

func uniqueSorted(list []string) []string {
	out := make([]string, 0, len(list))
	seen := make(map[string]struct{}, len(list))
	for _, v := range list {
		if _, ok := seen[v]; ok || v == "" {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func nonEmpty(list []string) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
