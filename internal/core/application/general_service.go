package application

import (
	"context"

	"github.com/airbitz/abcd/internal/core/application/general"
	"github.com/airbitz/abcd/internal/core/domain"
)

type GeneralService interface {
	UpdateGeneral(ctx context.Context) error
	BitcoinFeeInfo(ctx context.Context) domain.BitcoinFeeInfo
	AirbitzFeeInfo(ctx context.Context) domain.AirbitzFeeInfo
	BitcoinServers(ctx context.Context) []string
	SyncServers(ctx context.Context) []string
	ServerScores(ctx context.Context) []domain.ServerScore
	SubmitFeeEstimate(ctx context.Context, blocks int, feePerKB float64) error
	EstimateFeesNeedUpdate(ctx context.Context) bool
	FeeEstimateMeans() [general.NumEstimateTargets + 1]int64
}

type generalService struct {
	*general.Service
	estimator *general.FeeEstimator
}

func NewGeneralService(
	svc *general.Service, estimator *general.FeeEstimator,
) (GeneralService, error) {
	if svc == nil {
		return nil, ErrMissingGeneralService
	}
	if estimator == nil {
		return nil, ErrMissingFeeEstimator
	}
	return &generalService{svc, estimator}, nil
}

func (s *generalService) UpdateGeneral(ctx context.Context) error {
	return s.Update(ctx)
}

func (s *generalService) SubmitFeeEstimate(
	ctx context.Context, blocks int, feePerKB float64,
) error {
	return s.estimator.Submit(ctx, blocks, feePerKB)
}

func (s *generalService) FeeEstimateMeans() [general.NumEstimateTargets + 1]int64 {
	return s.estimator.Means()
}
