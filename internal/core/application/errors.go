package application

import "errors"

var (
	// ErrMissingGeneralService ...
	ErrMissingGeneralService = errors.New("missing general service")
	// ErrMissingFeeEstimator ...
	ErrMissingFeeEstimator = errors.New("missing fee estimator")
	// ErrUnsupportedDBType is returned for a cache db type other than
	// those in SupportedDBType.
	ErrUnsupportedDBType = errors.New("unsupported db type")
	// ErrMissingAuthServer is returned if no auth server url nor custom
	// fetcher and repo directory are configured.
	ErrMissingAuthServer = errors.New("missing auth server url")
)
