package sqlite

import (
	"context"
	"time"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/internal/server/store"
)

type profilesRepo struct {
	q querier
}

func (r *profilesRepo) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM profiles
		ORDER BY created_at ASC, id ASC;
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	profiles := make([]domain.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func (r *profilesRepo) GetProfile(ctx context.Context, profileID string) (domain.Profile, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM profiles
		WHERE id = ?;
	`, profileID)

	p, err := scanProfile(row)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return p, nil
}

// GetDefaultProfile returns the oldest profile. Ties on created_at fall back
// to id so the answer is stable.
func (r *profilesRepo) GetDefaultProfile(ctx context.Context) (domain.Profile, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM profiles
		ORDER BY created_at ASC, id ASC
		LIMIT 1;
	`)

	p, err := scanProfile(row)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	createdAt := p.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = createdAt
	}

	_, err := r.q.ExecContext(ctx, `
		INSERT INTO profiles (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?);
	`, p.ID, p.Name, formatTime(createdAt), formatTime(updatedAt))
	if err != nil && isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *profilesRepo) RenameProfile(ctx context.Context, profileID, name string) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE profiles SET name = ?, updated_at = ? WHERE id = ?;
	`, name, formatTime(time.Now()), profileID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *profilesRepo) DeleteProfile(ctx context.Context, profileID string) error {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM profiles WHERE id = ?;
	`, profileID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func scanProfile(row interface{ Scan(...any) error }) (domain.Profile, error) {
	var (
		p         domain.Profile
		createdAt string
		updatedAt string
	)
	if err := row.Scan(&p.ID, &p.Name, &createdAt, &updatedAt); err != nil {
		return domain.Profile{}, err
	}
	p.CreatedAt = parseTime(createdAt)
	p.UpdatedAt = parseTime(updatedAt)
	return p, nil
}
