package general_test

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/airbitz/abcd/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type mockFetcher struct {
	mock.Mock
}

func (m *mockFetcher) FetchGeneral(ctx context.Context) ([]byte, error) {
	args := m.Called(ctx)
	var res []byte
	if a := args.Get(0); a != nil {
		res = a.([]byte)
	}
	return res, args.Error(1)
}

type storedArtifact struct {
	data        []byte
	refreshedAt time.Time
}

// memStore is an in-memory CacheStore that keeps track of the saves of every
// artifact.
type memStore struct {
	lock      sync.Mutex
	artifacts map[string]storedArtifact
	saves     map[string]int
	saveErr   error
}

func newMemStore() *memStore {
	return &memStore{
		artifacts: make(map[string]storedArtifact),
		saves:     make(map[string]int),
	}
}

func (s *memStore) Load(
	_ context.Context, name string, v interface{},
) (time.Time, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	a, ok := s.artifacts[name]
	if !ok {
		return time.Time{}, domain.ErrCacheNotFound
	}
	if err := json.Unmarshal(a.data, v); err != nil {
		return time.Time{}, err
	}
	return a.refreshedAt, nil
}

func (s *memStore) Save(
	_ context.Context, name string, v interface{}, refreshedAt time.Time,
) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.saveErr != nil {
		return s.saveErr
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	s.artifacts[name] = storedArtifact{data, refreshedAt}
	s.saves[name]++
	return nil
}

func (s *memStore) Close() {}

func (s *memStore) numSaves(name string) int {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.saves[name]
}
