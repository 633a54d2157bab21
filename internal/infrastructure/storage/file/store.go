package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/airbitz/abcd/internal/core/ports"
)

type envelope struct {
	RefreshedAt time.Time       `json:"refreshedAt"`
	Data        json.RawMessage `json:"data"`
}

type cacheStore struct {
	dir  string
	lock sync.RWMutex
}

// NewCacheStore returns a CacheStore keeping every artifact in its own json
// file under dir.
func NewCacheStore(dir string) (ports.CacheStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &cacheStore{dir: dir}, nil
}

func (c *cacheStore) Load(
	_ context.Context, name string, v interface{},
) (time.Time, error) {
	c.lock.RLock()
	defer c.lock.RUnlock()

	buf, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return time.Time{}, domain.ErrCacheNotFound
		}
		return time.Time{}, err
	}

	var env envelope
	if err := json.Unmarshal(buf, &env); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return time.Time{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return env.RefreshedAt, nil
}

// Save replaces the artifact file by renaming a fully written temporary file
// over it, so that readers never see a partial document.
func (c *cacheStore) Save(
	_ context.Context, name string, v interface{}, refreshedAt time.Time,
) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	buf, err := json.MarshalIndent(envelope{refreshedAt.UTC(), data}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}

	c.lock.Lock()
	defer c.lock.Unlock()

	tmp, err := os.CreateTemp(c.dir, name+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), filepath.Join(c.dir, name))
}

func (c *cacheStore) Close() {}
