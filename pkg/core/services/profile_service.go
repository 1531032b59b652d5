package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/wadjakorntonsri/folio/pkg/core/domain"
	"github.com/wadjakorntonsri/folio/pkg/ports"
)

var usernamePattern = regexp.MustCompile(`^[a-z0-9_-]{3,32}$`)

type ProfileService struct {
	repo      ports.ProfileRepository
	analytics ports.AnalyticsRepository
	clock     ports.Clock
}

func NewProfileService(repo ports.ProfileRepository, analytics ports.AnalyticsRepository) *ProfileService {
	return &ProfileService{repo: repo, analytics: analytics, clock: SystemClock}
}

func (s *ProfileService) Create(ctx context.Context, ownerEmail string, in domain.ProfileInput) (*domain.Profile, error) {
	if ownerEmail == "" {
		return nil, fmt.Errorf("%w: owner is required", domain.ErrInvalidInput)
	}
	username, err := normalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: owner already has a profile", domain.ErrConflict)
	}
	taken, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if taken != nil {
		return nil, fmt.Errorf("%w: username %q is taken", domain.ErrConflict, username)
	}

	now := s.clock.Now()
	p := &domain.Profile{
		ID:         uuid.NewString(),
		OwnerEmail: ownerEmail,
		Username:   username,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	applyInput(p, in)

	if err := s.dropStaleRecord(ctx, username); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// dropStaleRecord deletes an analytics record still holding a free username.
// A view tracked while the previous owner's profile was being deleted can
// recreate that record after the cascade; left in place it keeps the key and
// blocks the next profile's record.
func (s *ProfileService) dropStaleRecord(ctx context.Context, username string) error {
	stale, err := s.analytics.GetByKey(ctx, username)
	if err != nil || stale == nil {
		return err
	}
	return s.analytics.Delete(ctx, stale.SubjectID)
}

func (s *ProfileService) GetMine(ctx context.Context, ownerEmail string) (*domain.Profile, error) {
	p, err := s.repo.GetByOwner(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *ProfileService) Update(ctx context.Context, ownerEmail string, in domain.ProfileInput) (*domain.Profile, error) {
	p, err := s.GetMine(ctx, ownerEmail)
	if err != nil {
		return nil, err
	}

	// Renames are not allowed: the username is the public tracking key.
	if in.Username != "" && strings.ToLower(strings.TrimSpace(in.Username)) != p.Username {
		return nil, fmt.Errorf("%w: username cannot be changed", domain.ErrInvalidInput)
	}

	applyInput(p, in)
	p.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the owner's profile and its analytics record.
func (s *ProfileService) Delete(ctx context.Context, ownerEmail string) error {
	p, err := s.GetMine(ctx, ownerEmail)
	if err != nil {
		return err
	}
	if err := s.analytics.Delete(ctx, p.ID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, p.ID)
}

// GetPublic returns a published profile. Unpublished profiles are reported
// as not found.
func (s *ProfileService) GetPublic(ctx context.Context, username string) (*domain.Profile, error) {
	p, err := s.repo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return nil, err
	}
	if p == nil || !p.Published {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

func (s *ProfileService) ResolveKey(ctx context.Context, username string) (string, error) {
	p, err := s.repo.GetByUsername(ctx, strings.ToLower(strings.TrimSpace(username)))
	if err != nil {
		return "", err
	}
	if p == nil {
		return "", domain.ErrNotFound
	}
	return p.ID, nil
}

func normalizeUsername(u string) (string, error) {
	u = strings.ToLower(strings.TrimSpace(u))
	if !usernamePattern.MatchString(u) {
		return "", fmt.Errorf("%w: username must be 3-32 characters of a-z, 0-9, _ or -", domain.ErrInvalidInput)
	}
	return u, nil
}

func applyInput(p *domain.Profile, in domain.ProfileInput) {
	if in.FullName != "" {
		p.FullName = in.FullName
	}
	if in.Headline != "" {
		p.Headline = in.Headline
	}
	if in.About != "" {
		p.About = in.About
	}
	if in.Location != "" {
		p.Location = in.Location
	}
	if in.Skills != nil {
		p.Skills = in.Skills
	}
	if in.Experience != nil {
		p.Experience = in.Experience
	}
	if in.Education != nil {
		p.Education = in.Education
	}
	if in.Links != nil {
		p.Links = in.Links
	}
	if in.Published != nil {
		p.Published = *in.Published
	}
}

var (
	_ ports.ProfileService  = (*ProfileService)(nil)
	_ ports.SubjectResolver = (*ProfileService)(nil)
)
