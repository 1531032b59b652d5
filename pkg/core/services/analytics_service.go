package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/wadjakorntonsri/folio/pkg/core/analytics"
	"github.com/wadjakorntonsri/folio/pkg/core/domain"
	"github.com/wadjakorntonsri/folio/pkg/ports"
)

const defaultTrackTimeout = 2 * time.Second

// ClockFunc adapts a function to ports.Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads time.Now.
var SystemClock ports.Clock = ClockFunc(time.Now)

type AnalyticsService struct {
	repo         ports.AnalyticsRepository
	resolver     ports.SubjectResolver
	hasher       analytics.Hasher
	policy       domain.RetentionPolicy
	clock        ports.Clock
	trackTimeout time.Duration
	log          *slog.Logger
}

type AnalyticsOption func(*AnalyticsService)

func WithClock(c ports.Clock) AnalyticsOption {
	return func(s *AnalyticsService) { s.clock = c }
}

func WithRetention(p domain.RetentionPolicy) AnalyticsOption {
	return func(s *AnalyticsService) { s.policy = p }
}

func WithHasher(h analytics.Hasher) AnalyticsOption {
	return func(s *AnalyticsService) { s.hasher = h }
}

func WithTrackTimeout(d time.Duration) AnalyticsOption {
	return func(s *AnalyticsService) { s.trackTimeout = d }
}

func WithLogger(l *slog.Logger) AnalyticsOption {
	return func(s *AnalyticsService) { s.log = l }
}

func NewAnalyticsService(repo ports.AnalyticsRepository, resolver ports.SubjectResolver, opts ...AnalyticsOption) *AnalyticsService {
	s := &AnalyticsService{
		repo:         repo,
		resolver:     resolver,
		policy:       domain.DefaultRetention,
		clock:        SystemClock,
		trackTimeout: defaultTrackTimeout,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AnalyticsService) GetOrCreate(ctx context.Context, subjectID, subjectKey string) (*domain.AggregateRecord, error) {
	if subjectID == "" {
		return nil, errors.New("subject id is required")
	}
	return s.repo.GetOrCreate(ctx, subjectID, strings.ToLower(subjectKey))
}

// RecordView applies one view to the subject's record as a single atomic
// update. A zero view.At is stamped with the current time.
func (s *AnalyticsService) RecordView(ctx context.Context, subjectID string, view domain.View) error {
	if view.At.IsZero() {
		view.At = s.clock.Now()
	}
	_, err := s.repo.Update(ctx, subjectID, func(r *domain.AggregateRecord) error {
		return r.Apply(view, s.policy)
	})
	return err
}

func (s *AnalyticsService) Track(ctx context.Context, req ports.TrackRequest) (bool, error) {
	key := strings.ToLower(strings.TrimSpace(req.SubjectKey))
	if key == "" {
		return false, domain.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, s.trackTimeout)
	defer cancel()

	subjectID, err := s.resolver.ResolveKey(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return false, err
	}
	if err != nil {
		s.log.Warn("view dropped: resolve failed", "subject_key", key, "error", err)
		return false, nil
	}

	if _, err := s.repo.GetOrCreate(ctx, subjectID, key); err != nil {
		s.log.Warn("view dropped: get or create failed", "subject_id", subjectID, "error", err)
		return false, nil
	}

	view := domain.View{
		Fingerprint: s.hasher.Fingerprint(req.Addr, req.UserAgent),
		Device:      analytics.ClassifyDevice(req.UserAgent),
		Referrer:    analytics.NormalizeReferrer(req.Referrer),
		Location:    req.Location,
		At:          s.clock.Now(),
	}
	if err := s.RecordView(ctx, subjectID, view); err != nil {
		s.log.Warn("view dropped: record failed", "subject_id", subjectID, "error", err)
		return false, nil
	}

	s.log.Debug("view recorded", "subject_id", subjectID, "device", view.Device)
	return true, nil
}

func (s *AnalyticsService) Summary(ctx context.Context, subjectID string) (analytics.Summary, error) {
	rec, err := s.repo.Get(ctx, subjectID)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(rec, s.clock.Now()), nil
}

func (s *AnalyticsService) Detail(ctx context.Context, subjectID string) (analytics.Detail, error) {
	rec, err := s.repo.Get(ctx, subjectID)
	if err != nil {
		return analytics.Detail{}, err
	}
	return analytics.BuildDetail(rec, s.clock.Now()), nil
}

func (s *AnalyticsService) DeleteRecord(ctx context.Context, subjectID string) error {
	return s.repo.Delete(ctx, subjectID)
}

var _ ports.AnalyticsService = (*AnalyticsService)(nil)
