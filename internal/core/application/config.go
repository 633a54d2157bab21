package application

import (
	"io"
	"path/filepath"
	"time"

	"github.com/airbitz/abcd/internal/core/application/general"
	"github.com/airbitz/abcd/internal/core/ports"
	"github.com/airbitz/abcd/internal/infrastructure/authserver"
	boltidentity "github.com/airbitz/abcd/internal/infrastructure/identity/bolt"
	gitsync "github.com/airbitz/abcd/internal/infrastructure/reposync/git"
	badgerstore "github.com/airbitz/abcd/internal/infrastructure/storage/badger"
	filestore "github.com/airbitz/abcd/internal/infrastructure/storage/file"
	"github.com/airbitz/abcd/internal/infrastructure/wallets"
	"github.com/lightningnetwork/lnd/clock"
	log "github.com/sirupsen/logrus"
)

const (
	DBFile   = "file"
	DBBadger = "badger"

	CacheLocation    = "cache"
	IdentityLocation = "identity"
)

var (
	SupportedDBType = map[string]struct{}{
		DBFile:   {},
		DBBadger: {},
	}
)

// Config holds the settings of the application and lazily builds its
// services. Any of the adapters can be replaced by setting the related field
// before the first service is requested.
type Config struct {
	Datadir          string
	DBType           string
	AuthServerURL    string
	AuthServerAPIKey string
	AuthRateLimit    int
	Testnet          bool
	GeneralMaxAge    time.Duration
	FeeCacheMaxAge   time.Duration
	AccountType      string
	Clock            clock.Clock

	Identity       ports.Identity
	RepoDirectory  ports.RepoDirectory
	GeneralFetcher ports.GeneralFetcher
	RepoSync       ports.RepoSync
	WalletsLoader  ports.WalletsLoader
	CacheStore     ports.CacheStore

	authClient *authserver.Client
	general    *general.Service
	estimator  *general.FeeEstimator
	generalSvc GeneralService
	accountSvc AccountService
}

func (c *Config) Validate() error {
	if _, ok := SupportedDBType[c.DBType]; !ok && c.CacheStore == nil {
		return ErrUnsupportedDBType
	}
	if _, err := c.generalService(); err != nil {
		return err
	}
	if _, err := c.accountService(); err != nil {
		return err
	}
	return nil
}

func (c *Config) GeneralService() GeneralService {
	svc, _ := c.generalService()
	return svc
}

func (c *Config) AccountService() AccountService {
	svc, _ := c.accountService()
	return svc
}

// Close releases the db handles of the services. The Config must not be
// used afterwards.
func (c *Config) Close() {
	if c.CacheStore != nil {
		c.CacheStore.Close()
		c.CacheStore = nil
	}
	if closer, ok := c.Identity.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.WithError(err).Warn("failed to close identity db")
		}
		c.Identity = nil
	}
}

func (c *Config) cacheStore() (ports.CacheStore, error) {
	if c.CacheStore == nil {
		switch c.DBType {
		case DBBadger:
			store, err := badgerstore.NewCacheStore(c.Datadir, log.New())
			if err != nil {
				return nil, err
			}
			c.CacheStore = store
		case DBFile:
			store, err := filestore.NewCacheStore(
				filepath.Join(c.Datadir, CacheLocation),
			)
			if err != nil {
				return nil, err
			}
			c.CacheStore = store
		default:
			return nil, ErrUnsupportedDBType
		}
	}
	return c.CacheStore, nil
}

func (c *Config) authServer() (*authserver.Client, error) {
	if c.authClient == nil {
		if c.AuthServerURL == "" {
			return nil, ErrMissingAuthServer
		}
		client, err := authserver.NewClient(authserver.Config{
			URL:       c.AuthServerURL,
			APIKey:    c.AuthServerAPIKey,
			RateLimit: c.AuthRateLimit,
		})
		if err != nil {
			return nil, err
		}
		c.authClient = client
	}
	return c.authClient, nil
}

func (c *Config) generalFetcher() (ports.GeneralFetcher, error) {
	if c.GeneralFetcher == nil {
		client, err := c.authServer()
		if err != nil {
			return nil, err
		}
		c.GeneralFetcher = client
	}
	return c.GeneralFetcher, nil
}

func (c *Config) repoDirectory() (ports.RepoDirectory, error) {
	if c.RepoDirectory == nil {
		client, err := c.authServer()
		if err != nil {
			return nil, err
		}
		c.RepoDirectory = client
	}
	return c.RepoDirectory, nil
}

func (c *Config) identity() (ports.Identity, error) {
	if c.Identity == nil {
		identity, err := boltidentity.NewIdentity(
			filepath.Join(c.Datadir, IdentityLocation),
		)
		if err != nil {
			return nil, err
		}
		c.Identity = identity
	}
	return c.Identity, nil
}

func (c *Config) generalCache() (*general.Service, *general.FeeEstimator, error) {
	if c.general == nil {
		fetcher, err := c.generalFetcher()
		if err != nil {
			return nil, nil, err
		}
		store, err := c.cacheStore()
		if err != nil {
			return nil, nil, err
		}

		svc, err := general.NewService(fetcher, store, general.Options{
			Clock:          c.Clock,
			GeneralMaxAge:  c.GeneralMaxAge,
			FeeCacheMaxAge: c.FeeCacheMaxAge,
			Testnet:        c.Testnet,
		})
		if err != nil {
			return nil, nil, err
		}
		estimator, err := general.NewFeeEstimator(store, c.Clock)
		if err != nil {
			return nil, nil, err
		}
		c.general, c.estimator = svc, estimator
	}
	return c.general, c.estimator, nil
}

func (c *Config) repoSync() (ports.RepoSync, error) {
	if c.RepoSync == nil {
		svc, _, err := c.generalCache()
		if err != nil {
			return nil, err
		}
		syncer, err := gitsync.NewRepoSync(svc)
		if err != nil {
			return nil, err
		}
		c.RepoSync = syncer
	}
	return c.RepoSync, nil
}

func (c *Config) walletsLoader() ports.WalletsLoader {
	if c.WalletsLoader == nil {
		c.WalletsLoader = wallets.NewLoader()
	}
	return c.WalletsLoader
}

func (c *Config) generalService() (GeneralService, error) {
	if c.generalSvc == nil {
		svc, estimator, err := c.generalCache()
		if err != nil {
			return nil, err
		}
		generalSvc, err := NewGeneralService(svc, estimator)
		if err != nil {
			return nil, err
		}
		c.generalSvc = generalSvc
	}
	return c.generalSvc, nil
}

func (c *Config) accountService() (AccountService, error) {
	if c.accountSvc == nil {
		identity, err := c.identity()
		if err != nil {
			return nil, err
		}
		repos, err := c.repoDirectory()
		if err != nil {
			return nil, err
		}
		syncer, err := c.repoSync()
		if err != nil {
			return nil, err
		}

		accountSvc, err := NewAccountService(
			c.Datadir, c.AccountType, identity, repos, syncer, c.walletsLoader(),
		)
		if err != nil {
			return nil, err
		}
		c.accountSvc = accountSvc
	}
	return c.accountSvc, nil
}
