package ports

import (
	"context"
	"time"
)

// GeneralFetcher retrieves the raw general info document from the server.
type GeneralFetcher interface {
	FetchGeneral(ctx context.Context) ([]byte, error)
}

// CacheStore persists the cached artifacts wholesale, each along with the
// time it was last refreshed.
type CacheStore interface {
	// Load decodes the named artifact into v and returns its refresh time. It
	// returns domain.ErrCacheNotFound if the artifact was never saved.
	Load(ctx context.Context, name string, v interface{}) (time.Time, error)
	// Save replaces the named artifact.
	Save(ctx context.Context, name string, v interface{}, refreshedAt time.Time) error
	Close()
}
