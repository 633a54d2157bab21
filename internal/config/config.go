package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/airbitz/abcd/internal/core/application"
	"github.com/airbitz/abcd/internal/core/application/general"
	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory holding accounts, identity db and
	// caches
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NetworkKey is the bitcoin network, one of mainnet, testnet3, regtest or
	// simnet
	NetworkKey = "NETWORK"
	// AuthServerURLKey is the base url of the auth server
	AuthServerURLKey = "AUTH_SERVER_URL"
	// AuthServerAPIKeyKey is the api key sent along every auth server request
	AuthServerAPIKeyKey = "AUTH_SERVER_API_KEY"
	// AuthRateLimitKey is the max number of auth server requests per second
	AuthRateLimitKey = "AUTH_RATE_LIMIT"
	// DBTypeKey is used to switch cache database type between those supported
	DBTypeKey = "DB_TYPE"
	// GeneralMaxAgeKey is how long the general info document is considered
	// fresh
	GeneralMaxAgeKey = "GENERAL_MAX_AGE"
	// FeeCacheMaxAgeKey is how long the estimated fee table is considered
	// fresh
	FeeCacheMaxAgeKey = "FEE_CACHE_MAX_AGE"
	// AccountTypeKey is the purpose string the account repository is scoped to
	AccountTypeKey = "ACCOUNT_TYPE"
	// SyncIntervalKey is the interval between two account syncs of the watch
	// command
	SyncIntervalKey = "SYNC_INTERVAL"
	// EnableStatsKey enables printing memory statistics and dumping the
	// collected metrics on exit
	EnableStatsKey = "ENABLE_STATS"
	// StatsIntervalKey defines interval for printing basic statistics
	StatsIntervalKey = "STATS_INTERVAL"

	ProfilerLocation = "stats"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("abcd", false)

var supportedNetworks = map[string]*chaincfg.Params{
	chaincfg.MainNetParams.Name:       &chaincfg.MainNetParams,
	chaincfg.TestNet3Params.Name:      &chaincfg.TestNet3Params,
	chaincfg.RegressionNetParams.Name: &chaincfg.RegressionNetParams,
	chaincfg.SimNetParams.Name:        &chaincfg.SimNetParams,
}

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("ABC")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(NetworkKey, chaincfg.MainNetParams.Name)
	vip.SetDefault(AuthRateLimitKey, 10)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(GeneralMaxAgeKey, general.DefaultGeneralMaxAge)
	vip.SetDefault(FeeCacheMaxAgeKey, general.DefaultFeeCacheMaxAge)
	vip.SetDefault(AccountTypeKey, domain.AccountRepoType)
	vip.SetDefault(SyncIntervalKey, 30*time.Second)
	vip.SetDefault(EnableStatsKey, false)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetNetwork returns the params of the configured bitcoin network.
func GetNetwork() *chaincfg.Params {
	return supportedNetworks[strings.ToLower(GetString(NetworkKey))]
}

func IsTestnet() bool {
	return GetNetwork().Net != chaincfg.MainNetParams.Net
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	network := strings.ToLower(GetString(NetworkKey))
	if _, ok := supportedNetworks[network]; !ok {
		return fmt.Errorf("unknown network %s", network)
	}

	if _, ok := application.SupportedDBType[GetString(DBTypeKey)]; !ok {
		return fmt.Errorf("unsupported db type %s", GetString(DBTypeKey))
	}

	if GetDuration(GeneralMaxAgeKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", GeneralMaxAgeKey)
	}
	if GetDuration(FeeCacheMaxAgeKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", FeeCacheMaxAgeKey)
	}
	if GetDuration(SyncIntervalKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", SyncIntervalKey)
	}
	if GetInt(StatsIntervalKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", StatsIntervalKey)
	}
	if GetInt(AuthRateLimitKey) <= 0 {
		return fmt.Errorf("%s must be greater than zero", AuthRateLimitKey)
	}
	if len(strings.TrimSpace(GetString(AccountTypeKey))) <= 0 {
		return fmt.Errorf("missing account type")
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if err := makeDirectoryIfNotExists(datadir); err != nil {
		return err
	}

	if GetBool(EnableStatsKey) {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
