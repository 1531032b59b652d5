package ports

import (
	"context"
	"time"

	"github.com/wadjakorntonsri/folio/pkg/core/analytics"
	"github.com/wadjakorntonsri/folio/pkg/core/domain"
)

// ProfileRepository defines storage operations for profiles.
// Getters return (nil, nil) when nothing matches.
type ProfileRepository interface {
	Create(ctx context.Context, p *domain.Profile) error
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error) // Case-insensitive
	GetByOwner(ctx context.Context, email string) (*domain.Profile, error)
	Update(ctx context.Context, p *domain.Profile) error
	Delete(ctx context.Context, id string) error
	DumpProfiles(ctx context.Context) ([]domain.Profile, error) // For migration
}

// AnalyticsRepository stores one AggregateRecord per subject.
// Getters return (nil, nil) when nothing matches.
type AnalyticsRepository interface {
	// GetOrCreate returns the record for subjectID, creating a zero record if
	// needed. Concurrent first calls must yield a single record.
	GetOrCreate(ctx context.Context, subjectID, subjectKey string) (*domain.AggregateRecord, error)
	Get(ctx context.Context, subjectID string) (*domain.AggregateRecord, error)
	GetByKey(ctx context.Context, subjectKey string) (*domain.AggregateRecord, error)
	// Update runs mutate against a private copy of the record and persists the
	// result atomically. If mutate or the write fails, nothing changes.
	Update(ctx context.Context, subjectID string, mutate func(*domain.AggregateRecord) error) (*domain.AggregateRecord, error)
	Delete(ctx context.Context, subjectID string) error
	Dump(ctx context.Context) ([]domain.AggregateRecord, error) // For migration
	Restore(ctx context.Context, rec *domain.AggregateRecord) error
}

// SubjectResolver maps a human-readable subject key (username) to its subject id.
type SubjectResolver interface {
	ResolveKey(ctx context.Context, key string) (string, error)
}

// Clock is the wall-clock source.
type Clock interface {
	Now() time.Time
}

// TrackRequest is the connection metadata of one public view.
type TrackRequest struct {
	SubjectKey string
	Addr       string
	UserAgent  string
	Referrer   string
	Location   *domain.Location
}

// AnalyticsService defines view ingestion and reporting.
type AnalyticsService interface {
	GetOrCreate(ctx context.Context, subjectID, subjectKey string) (*domain.AggregateRecord, error)
	RecordView(ctx context.Context, subjectID string, view domain.View) error
	// Track resolves the key, then records the view best-effort. Only
	// domain.ErrNotFound is returned; storage failures drop the event.
	Track(ctx context.Context, req TrackRequest) (bool, error)
	Summary(ctx context.Context, subjectID string) (analytics.Summary, error)
	Detail(ctx context.Context, subjectID string) (analytics.Detail, error)
	DeleteRecord(ctx context.Context, subjectID string) error
}

// ProfileService defines the business logic for portfolio profiles.
type ProfileService interface {
	Create(ctx context.Context, ownerEmail string, in domain.ProfileInput) (*domain.Profile, error)
	GetMine(ctx context.Context, ownerEmail string) (*domain.Profile, error)
	Update(ctx context.Context, ownerEmail string, in domain.ProfileInput) (*domain.Profile, error)
	Delete(ctx context.Context, ownerEmail string) error
	GetPublic(ctx context.Context, username string) (*domain.Profile, error)
	ResolveKey(ctx context.Context, username string) (string, error)
}
