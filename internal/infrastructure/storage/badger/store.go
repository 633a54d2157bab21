package badgerstore

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/internal/core/ports"
	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
)

const gcInterval = 30 * time.Minute

type cacheEntry struct {
	Name        string
	RefreshedAt time.Time
	Data        []byte
}

type cacheStore struct {
	store *badgerhold.Store
	quit  chan struct{}
}

// NewCacheStore returns a CacheStore persisting the artifacts in a badger db
// under baseDbDir. An empty baseDbDir makes the store in-memory.
func NewCacheStore(
	baseDbDir string, logger badger.Logger,
) (ports.CacheStore, error) {
	var cacheDir string
	if len(baseDbDir) > 0 {
		cacheDir = filepath.Join(baseDbDir, "cache")
	}

	quit := make(chan struct{})
	store, err := createDb(cacheDir, logger, quit)
	if err != nil {
		return nil, fmt.Errorf("opening cache db: %w", err)
	}
	return &cacheStore{store, quit}, nil
}

func (c *cacheStore) Load(
	_ context.Context, name string, v interface{},
) (time.Time, error) {
	var entry cacheEntry
	if err := c.store.Get(name, &entry); err != nil {
		if err == badgerhold.ErrNotFound {
			return time.Time{}, domain.ErrCacheNotFound
		}
		return time.Time{}, err
	}

	if err := json.Unmarshal(entry.Data, v); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return entry.RefreshedAt, nil
}

func (c *cacheStore) Save(
	_ context.Context, name string, v interface{}, refreshedAt time.Time,
) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	return c.store.Upsert(name, &cacheEntry{
		Name:        name,
		RefreshedAt: refreshedAt,
		Data:        data,
	})
}

func (c *cacheStore) Close() {
	close(c.quit)
	c.store.Close()
}

func createDb(
	dbDir string, logger badger.Logger, quit chan struct{},
) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	db, err := badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
	if err != nil {
		return nil, err
	}

	if !isInMemory {
		ticker := time.NewTicker(gcInterval)

		go func() {
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					if err := db.Badger().RunValueLogGC(0.5); err != nil &&
						err != badger.ErrNoRewrite {
						log.Error(err)
					}
				case <-quit:
					return
				}
			}
		}()
	}

	return db, nil
}
