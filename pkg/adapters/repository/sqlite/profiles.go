package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wadjakorntonsri/folio/pkg/core/domain"
	"github.com/wadjakorntonsri/folio/pkg/ports"
)

// resume holds the list-shaped profile fields, stored as one JSON column.
type resume struct {
	Skills     []string            `json:"skills"`
	Experience []domain.Experience `json:"experience"`
	Education  []domain.Education  `json:"education"`
	Links      []string            `json:"links"`
}

const profileColumns = `id, owner_email, username, full_name, headline, about, location, resume, published, created_at, updated_at`

func (r *SQLiteRepository) Create(ctx context.Context, p *domain.Profile) error {
	query := `INSERT INTO profiles (` + profileColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	resumeJSON, err := json.Marshal(resumeOf(p))
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		p.ID, p.OwnerEmail, p.Username, p.FullName, p.Headline, p.About, p.Location,
		resumeJSON, p.Published, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", domain.ErrConflict, err)
		}
		return storageErr("create profile", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return r.getProfile(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	return r.getProfile(ctx, `SELECT `+profileColumns+` FROM profiles WHERE username = ? COLLATE NOCASE`, username)
}

func (r *SQLiteRepository) GetByOwner(ctx context.Context, email string) (*domain.Profile, error) {
	return r.getProfile(ctx, `SELECT `+profileColumns+` FROM profiles WHERE owner_email = ?`, email)
}

func (r *SQLiteRepository) Update(ctx context.Context, p *domain.Profile) error {
	query := `UPDATE profiles SET full_name = ?, headline = ?, about = ?, location = ?, resume = ?, published = ?, updated_at = ? WHERE id = ?`

	resumeJSON, err := json.Marshal(resumeOf(p))
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, query,
		p.FullName, p.Headline, p.About, p.Location, resumeJSON, p.Published, p.UpdatedAt, p.ID,
	)
	return storageErr("update profile", err)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE id = ?`, id)
	return storageErr("delete profile", err)
}

func (r *SQLiteRepository) DumpProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY created_at ASC`)
	if err != nil {
		return nil, storageErr("dump profiles", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (r *SQLiteRepository) getProfile(ctx context.Context, query string, arg any) (*domain.Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx, query, arg))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, storageErr("get profile", err)
	}
	return p, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(row scanner) (*domain.Profile, error) {
	var p domain.Profile
	var fullName, headline, about, location sql.NullString
	var resumeJSON []byte

	err := row.Scan(
		&p.ID, &p.OwnerEmail, &p.Username, &fullName, &headline, &about, &location,
		&resumeJSON, &p.Published, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.FullName = fullName.String
	p.Headline = headline.String
	p.About = about.String
	p.Location = location.String

	var res resume
	_ = json.Unmarshal(resumeJSON, &res)
	p.Skills = res.Skills
	p.Experience = res.Experience
	p.Education = res.Education
	p.Links = res.Links
	return &p, nil
}

func resumeOf(p *domain.Profile) resume {
	return resume{
		Skills:     p.Skills,
		Experience: p.Experience,
		Education:  p.Education,
		Links:      p.Links,
	}
}

func isUniqueViolation(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint")
}

var _ ports.ProfileRepository = (*SQLiteRepository)(nil)
