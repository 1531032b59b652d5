package services_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/wadjakorntonsri/folio/pkg/adapters/repository/memory"
	"github.com/wadjakorntonsri/folio/pkg/adapters/repository/sqlite"
	"github.com/wadjakorntonsri/folio/pkg/core/domain"
	"github.com/wadjakorntonsri/folio/pkg/core/services"
)

var errBackendDown = errors.New("backend down")

func fixedClock(t time.Time) services.ClockFunc {
	return func() time.Time { return t }
}

func newProfileRepo(t *testing.T) *sqlite.SQLiteRepository {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	repo, err := sqlite.NewSQLiteRepository(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	if err != nil {
		t.Fatalf("Failed to init db: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

// stubResolver maps keys to ids from a fixed table.
type stubResolver map[string]string

func (r stubResolver) ResolveKey(ctx context.Context, key string) (string, error) {
	if id, ok := r[key]; ok {
		return id, nil
	}
	return "", domain.ErrNotFound
}

// failingStore wraps a memory store and fails the configured operations.
type failingStore struct {
	*memory.Store
	failCreate bool
	failUpdate bool
}

func (f *failingStore) GetOrCreate(ctx context.Context, id, key string) (*domain.AggregateRecord, error) {
	if f.failCreate {
		return nil, fmt.Errorf("get or create: %w: %w", domain.ErrStorageUnavailable, errBackendDown)
	}
	return f.Store.GetOrCreate(ctx, id, key)
}

func (f *failingStore) Update(ctx context.Context, id string, mutate func(*domain.AggregateRecord) error) (*domain.AggregateRecord, error) {
	if f.failUpdate {
		return nil, fmt.Errorf("update: %w: %w", domain.ErrStorageUnavailable, errBackendDown)
	}
	return f.Store.Update(ctx, id, mutate)
}
