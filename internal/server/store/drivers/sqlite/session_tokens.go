package sqlite

import (
	"context"
	"time"

	"github.com/slatedeck/slate/internal/server/store"
)

type sessionTokensRepo struct {
	q querier
}

func (r *sessionTokensRepo) CreateSessionToken(ctx context.Context, fingerprint string) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO session_tokens (token_hash, created_at)
		VALUES (?, ?);
	`, fingerprint, formatTime(time.Now()))
	if err != nil && isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *sessionTokensRepo) SessionTokenExists(ctx context.Context, fingerprint string) (bool, error) {
	var exists int
	err := r.q.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM session_tokens WHERE token_hash = ?);
	`, fingerprint).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists == 1, nil
}

func (r *sessionTokensRepo) DeleteSessionToken(ctx context.Context, fingerprint string) (bool, error) {
	res, err := r.q.ExecContext(ctx, `
		DELETE FROM session_tokens WHERE token_hash = ?;
	`, fingerprint)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
