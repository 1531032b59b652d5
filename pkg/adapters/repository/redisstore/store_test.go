package redisstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/wadjakorntonsri/folio/pkg/core/domain"
)

var at = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

// newTestStore runs against an in-process miniredis, or against REDIS_URL
// when set. Each test gets its own key prefix.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	var rdb *redis.Client
	if url := os.Getenv("REDIS_URL"); url != "" {
		c, err := Connect(ctx, url)
		if err != nil {
			t.Fatalf("connect %s: %v", url, err)
		}
		rdb = c
	} else {
		mr := miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	}

	prefix := fmt.Sprintf("folio-test:%s:%d", t.Name(), time.Now().UnixNano())
	t.Cleanup(func() {
		iter := rdb.Scan(ctx, 0, prefix+":*", 100).Iterator()
		for iter.Next(ctx) {
			rdb.Del(ctx, iter.Val())
		}
		rdb.Close()
	})
	return NewStore(rdb, WithPrefix(prefix))
}

func apply(fp string) func(*domain.AggregateRecord) error {
	return func(r *domain.AggregateRecord) error {
		return r.Apply(domain.View{Fingerprint: fp, Device: domain.DeviceTablet, At: at}, domain.DefaultRetention)
	}
}

func TestStore_GetOrCreateAndGetByKey(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.GetOrCreate(ctx, "p1", "Alice"); err != nil {
		t.Fatalf("GetOrCreate: %v", err)
	}
	if _, err := s.Update(ctx, "p1", apply("a")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	rec, err := s.GetOrCreate(ctx, "p1", "alice")
	if err != nil || rec.TotalViews != 1 {
		t.Fatalf("second GetOrCreate = %+v, %v", rec, err)
	}

	byKey, err := s.GetByKey(ctx, "ALICE")
	if err != nil || byKey == nil || byKey.SubjectID != "p1" {
		t.Errorf("GetByKey = %+v, %v", byKey, err)
	}
}

func TestStore_UpdateConcurrent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, _ = s.GetOrCreate(ctx, "p1", "alice")

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.Update(ctx, "p1", apply(fmt.Sprint(i%50))); err != nil {
				t.Errorf("Update: %v", err)
			}
		}(i)
	}
	wg.Wait()

	rec, _ := s.Get(ctx, "p1")
	if rec.TotalViews != 100 || rec.UniqueVisitors != 50 {
		t.Errorf("total/unique = %d/%d, want 100/50", rec.TotalViews, rec.UniqueVisitors)
	}
}

func TestStore_UpdateErrors(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if _, err := s.Update(ctx, "ghost", apply("a")); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing: err = %v, want ErrNotFound", err)
	}

	_, _ = s.GetOrCreate(ctx, "p1", "alice")
	boom := errors.New("boom")
	if _, err := s.Update(ctx, "p1", func(*domain.AggregateRecord) error { return boom }); !errors.Is(err, boom) {
		t.Errorf("mutate: err = %v, want boom", err)
	}
}

func TestStore_DumpDeleteRestore(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, _ = s.GetOrCreate(ctx, "p1", "alice")
	_, _ = s.GetOrCreate(ctx, "p2", "bob")
	_, _ = s.Update(ctx, "p2", apply("a"))

	dump, err := s.Dump(ctx)
	if err != nil || len(dump) != 2 {
		t.Fatalf("Dump = %d records, %v", len(dump), err)
	}

	if err := s.Delete(ctx, "p2"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if rec, _ := s.GetByKey(ctx, "bob"); rec != nil {
		t.Error("key index survived delete")
	}

	if err := s.Restore(ctx, &dump[1]); err != nil {
		t.Fatalf("Restore: %v", err)
	}
	rec, _ := s.GetByKey(ctx, "bob")
	if rec == nil || rec.TotalViews != 1 {
		t.Errorf("restored = %+v", rec)
	}
}

func TestStore_UpdateConflictRetries(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	_, _ = s.GetOrCreate(ctx, "p1", "alice")

	// Another writer touches the key inside our WATCH once.
	interfered := false
	_, err := s.Update(ctx, "p1", func(r *domain.AggregateRecord) error {
		if !interfered {
			interfered = true
			other := domain.NewAggregateRecord("p1", "alice")
			other.TotalViews = 7
			if err := s.Restore(ctx, other); err != nil {
				return err
			}
		}
		return apply("a")(r)
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	rec, _ := s.Get(ctx, "p1")
	if rec.TotalViews != 8 {
		t.Errorf("TotalViews = %d, want 8 (retried on top of the other write)", rec.TotalViews)
	}
}

func TestStore_UpdateGivesUp(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	WithMaxRetries(2)(s)
	_, _ = s.GetOrCreate(ctx, "p1", "alice")

	_, err := s.Update(ctx, "p1", func(r *domain.AggregateRecord) error {
		return s.rdb.Set(ctx, s.recordKey("p1"), `{"subject_id":"p1"}`, 0).Err()
	})
	if !errors.Is(err, domain.ErrConcurrentUpdate) || !errors.Is(err, domain.ErrStorageUnavailable) {
		t.Errorf("err = %v, want ErrConcurrentUpdate and ErrStorageUnavailable", err)
	}
}
