// Package redisstore keeps AggregateRecords as JSON documents in Redis and
// updates them with WATCH/MULTI optimistic transactions.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/wadjakorntonsri/folio/pkg/adapters/repository/keylock"
	"github.com/wadjakorntonsri/folio/pkg/core/domain"
	"github.com/wadjakorntonsri/folio/pkg/ports"
)

type Store struct {
	rdb        *redis.Client
	prefix     string
	maxRetries int
	locks      *keylock.Striped
}

type Option func(*Store)

func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = strings.Trim(prefix, ":") }
}

func WithMaxRetries(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxRetries = n
		}
	}
}

func NewStore(rdb *redis.Client, opts ...Option) *Store {
	s := &Store{
		rdb:        rdb,
		prefix:     "folio:analytics",
		maxRetries: 8,
		locks:      keylock.New(keylock.DefaultStripes),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

func (s *Store) recordKey(subjectID string) string { return s.prefix + ":record:" + subjectID }
func (s *Store) indexKey(subjectKey string) string {
	return s.prefix + ":key:" + strings.ToLower(subjectKey)
}

func (s *Store) GetOrCreate(ctx context.Context, subjectID, subjectKey string) (*domain.AggregateRecord, error) {
	doc, err := json.Marshal(domain.NewAggregateRecord(subjectID, subjectKey))
	if err != nil {
		return nil, err
	}

	pipe := s.rdb.Pipeline()
	pipe.SetNX(ctx, s.recordKey(subjectID), doc, 0)
	if subjectKey != "" {
		pipe.SetNX(ctx, s.indexKey(subjectKey), subjectID, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, storageErr("create analytics", err)
	}

	rec, err := s.Get(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("create analytics %s: %w: record vanished", subjectID, domain.ErrStorageUnavailable)
	}
	return rec, nil
}

func (s *Store) Get(ctx context.Context, subjectID string) (*domain.AggregateRecord, error) {
	b, err := s.rdb.Get(ctx, s.recordKey(subjectID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("load analytics", err)
	}
	return decode(b)
}

func (s *Store) GetByKey(ctx context.Context, subjectKey string) (*domain.AggregateRecord, error) {
	id, err := s.rdb.Get(ctx, s.indexKey(subjectKey)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("load analytics key", err)
	}
	return s.Get(ctx, id)
}

func (s *Store) Update(ctx context.Context, subjectID string, mutate func(*domain.AggregateRecord) error) (*domain.AggregateRecord, error) {
	unlock := s.locks.Lock(subjectID)
	defer unlock()

	key := s.recordKey(subjectID)
	var out *domain.AggregateRecord
	var mutateErr error

	txf := func(tx *redis.Tx) error {
		b, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return domain.ErrNotFound
		}
		if err != nil {
			return storageErr("load analytics", err)
		}
		rec, err := decode(b)
		if err != nil {
			return err
		}
		if err := mutate(rec); err != nil {
			mutateErr = err
			return err
		}
		doc, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, doc, 0)
			return nil
		})
		if err != nil {
			return err
		}
		out = rec
		return nil
	}

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if mutateErr != nil {
			return nil, mutateErr
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, storageErr("update analytics", err)
	}

	return nil, fmt.Errorf("update analytics %s: %w: %w", subjectID, domain.ErrStorageUnavailable, domain.ErrConcurrentUpdate)
}

func (s *Store) Delete(ctx context.Context, subjectID string) error {
	rec, err := s.Get(ctx, subjectID)
	if err != nil || rec == nil {
		return err
	}
	keys := []string{s.recordKey(subjectID)}
	if rec.SubjectKey != "" {
		keys = append(keys, s.indexKey(rec.SubjectKey))
	}
	return storageErr("delete analytics", s.rdb.Del(ctx, keys...).Err())
}

func (s *Store) Dump(ctx context.Context) ([]domain.AggregateRecord, error) {
	var out []domain.AggregateRecord
	iter := s.rdb.Scan(ctx, 0, s.prefix+":record:*", 100).Iterator()
	for iter.Next(ctx) {
		b, err := s.rdb.Get(ctx, iter.Val()).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, storageErr("dump analytics", err)
		}
		rec, err := decode(b)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	if err := iter.Err(); err != nil {
		return nil, storageErr("dump analytics", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out, nil
}

func (s *Store) Restore(ctx context.Context, rec *domain.AggregateRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	pipe := s.rdb.TxPipeline()
	pipe.Set(ctx, s.recordKey(rec.SubjectID), doc, 0)
	if rec.SubjectKey != "" {
		pipe.Set(ctx, s.indexKey(rec.SubjectKey), rec.SubjectID, 0)
	}
	_, err = pipe.Exec(ctx)
	return storageErr("restore analytics", err)
}

func decode(b []byte) (*domain.AggregateRecord, error) {
	var rec domain.AggregateRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("decode analytics doc: %w", err)
	}
	return &rec, nil
}

func storageErr(op string, err error) error {
	if err == nil || errors.Is(err, domain.ErrStorageUnavailable) {
		return err
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorageUnavailable, err)
}

var _ ports.AnalyticsRepository = (*Store)(nil)
