package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/internal/server/store"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Single connection: sqlite has one writer, and :memory: databases are
	// per-connection so pooling would split state.
	db.SetMaxOpenConns(1)

	// Enforce FKs so profile deletion cascades to buttons.
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db, dsn: dsn}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	return tx.Commit()
}

func (s *Store) Buttons() store.Buttons             { return &buttonsRepo{q: s.db} }
func (s *Store) Profiles() store.Profiles           { return &profilesRepo{q: s.db} }
func (s *Store) SessionTokens() store.SessionTokens { return &sessionTokensRepo{q: s.db} }

// querier is satisfied by both *sql.DB and *sql.Tx so the repos can be
// shared between the root store and transaction-scoped stores.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// requireAffected turns a zero-row UPDATE/DELETE into ErrNotFound.
func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func mapNullString(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Timestamps are persisted as RFC 3339 text so rows stay readable in any
// sqlite shell. scanTime tolerates empty values from CURRENT_TIMESTAMP rows.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t
	}
	// CURRENT_TIMESTAMP default inserts "YYYY-MM-DD HH:MM:SS".
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// Action payloads are stored as JSON text; a corrupt payload degrades to nil
// rather than failing the whole listing.
func encodePayload(payload map[string]any) (sql.NullString, error) {
	if payload == nil {
		return sql.NullString{Valid: false}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func decodePayload(ns sql.NullString) map[string]any {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(ns.String), &payload); err != nil {
		return nil
	}
	return payload
}

func scanButton(rows interface{ Scan(...any) error }) (domain.Button, error) {
	var (
		b          domain.Button
		actionType string
		payload    sql.NullString
		background sql.NullString
		iconColor  sql.NullString
	)
	err := rows.Scan(&b.ID, &b.Label, &b.Icon, &actionType, &payload, &background, &iconColor)
	if err != nil {
		return domain.Button{}, err
	}

	b.ActionType = domain.ActionType(actionType)
	b.ActionPayload = decodePayload(payload)
	b.Background = mapNullString(background)
	b.IconColor = mapNullString(iconColor)
	return b, nil
}
