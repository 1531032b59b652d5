package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/wadjakorntonsri/folio/pkg/adapters/repository/keylock"
	"github.com/wadjakorntonsri/folio/pkg/core/domain"
	"github.com/wadjakorntonsri/folio/pkg/ports"
)

// AnalyticsStore keeps each AggregateRecord as one JSON document guarded by
// a version column. Writers in this process are serialized per subject; the
// version check catches writers in other processes.
type AnalyticsStore struct {
	db         *sql.DB
	locks      *keylock.Striped
	maxRetries int
}

func (s *AnalyticsStore) GetOrCreate(ctx context.Context, subjectID, subjectKey string) (*domain.AggregateRecord, error) {
	rec, _, err := s.load(ctx, `WHERE subject_id = ?`, subjectID)
	if err != nil || rec != nil {
		return rec, err
	}

	doc, err := json.Marshal(domain.NewAggregateRecord(subjectID, subjectKey))
	if err != nil {
		return nil, err
	}

	// Losing a creation race is not an error: DO NOTHING, then read the winner.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analytics (subject_id, subject_key, doc, version, updated_at) VALUES (?, ?, ?, 0, ?)
		 ON CONFLICT DO NOTHING`,
		subjectID, subjectKey, string(doc), time.Now().UTC(),
	)
	if err != nil {
		return nil, storageErr("create analytics", err)
	}

	rec, _, err = s.load(ctx, `WHERE subject_id = ?`, subjectID)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("%w: subject key %q belongs to another record", domain.ErrConflict, subjectKey)
	}
	return rec, nil
}

func (s *AnalyticsStore) Get(ctx context.Context, subjectID string) (*domain.AggregateRecord, error) {
	rec, _, err := s.load(ctx, `WHERE subject_id = ?`, subjectID)
	return rec, err
}

func (s *AnalyticsStore) GetByKey(ctx context.Context, subjectKey string) (*domain.AggregateRecord, error) {
	rec, _, err := s.load(ctx, `WHERE subject_key = ? COLLATE NOCASE`, subjectKey)
	return rec, err
}

func (s *AnalyticsStore) Update(ctx context.Context, subjectID string, mutate func(*domain.AggregateRecord) error) (*domain.AggregateRecord, error) {
	unlock := s.locks.Lock(subjectID)
	defer unlock()

	for attempt := 0; attempt < s.maxRetries; attempt++ {
		rec, version, err := s.load(ctx, `WHERE subject_id = ?`, subjectID)
		if err != nil {
			return nil, err
		}
		if rec == nil {
			return nil, domain.ErrNotFound
		}

		if err := mutate(rec); err != nil {
			return nil, err
		}

		doc, err := json.Marshal(rec)
		if err != nil {
			return nil, err
		}

		res, err := s.db.ExecContext(ctx,
			`UPDATE analytics SET doc = ?, version = version + 1, updated_at = ? WHERE subject_id = ? AND version = ?`,
			string(doc), rec.LastUpdated.UTC(), subjectID, version,
		)
		if err != nil {
			return nil, storageErr("update analytics", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, storageErr("update analytics", err)
		}
		if n == 1 {
			return rec, nil
		}
	}

	return nil, fmt.Errorf("update analytics %s: %w: %w", subjectID, domain.ErrStorageUnavailable, domain.ErrConcurrentUpdate)
}

func (s *AnalyticsStore) Delete(ctx context.Context, subjectID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM analytics WHERE subject_id = ?`, subjectID)
	return storageErr("delete analytics", err)
}

func (s *AnalyticsStore) Dump(ctx context.Context) ([]domain.AggregateRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT doc FROM analytics ORDER BY subject_id`)
	if err != nil {
		return nil, storageErr("dump analytics", err)
	}
	defer rows.Close()

	var out []domain.AggregateRecord
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, storageErr("dump analytics", err)
		}
		var rec domain.AggregateRecord
		if err := json.Unmarshal([]byte(doc), &rec); err != nil {
			return nil, fmt.Errorf("decode analytics doc: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Restore writes rec as-is, replacing any record with the same subject id.
func (s *AnalyticsStore) Restore(ctx context.Context, rec *domain.AggregateRecord) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analytics (subject_id, subject_key, doc, version, updated_at) VALUES (?, ?, ?, 0, ?)
		 ON CONFLICT(subject_id) DO UPDATE SET subject_key = excluded.subject_key, doc = excluded.doc,
		 version = analytics.version + 1, updated_at = excluded.updated_at`,
		rec.SubjectID, rec.SubjectKey, string(doc), rec.LastUpdated.UTC(),
	)
	return storageErr("restore analytics", err)
}

func (s *AnalyticsStore) load(ctx context.Context, where string, arg any) (*domain.AggregateRecord, int64, error) {
	var doc string
	var version int64
	err := s.db.QueryRowContext(ctx, `SELECT doc, version FROM analytics `+where, arg).Scan(&doc, &version)
	if err == sql.ErrNoRows {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, storageErr("load analytics", err)
	}

	var rec domain.AggregateRecord
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, 0, fmt.Errorf("decode analytics doc: %w", err)
	}
	return &rec, version, nil
}

var _ ports.AnalyticsRepository = (*AnalyticsStore)(nil)
