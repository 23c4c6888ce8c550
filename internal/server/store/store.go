package store

import (
	"context"
	"errors"

	"github.com/slatedeck/slate/internal/server/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable.
type Store interface {
	Buttons() Buttons
	Profiles() Profiles
	SessionTokens() SessionTokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes a function within a transaction, committing when fn
	// returns nil and rolling back otherwise. Prefer this over Tx.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Buttons interface {
	// ListButtons returns a profile's buttons ordered by their grid position.
	ListButtons(ctx context.Context, profileID string) ([]domain.Button, error)

	// GetButton fetches a button by id within a profile.
	GetButton(ctx context.Context, buttonID, profileID string) (domain.Button, error)

	// CreateButton inserts a new button at the end of the profile's grid.
	// Returns ErrAlreadyExists if the (id, profile) pair is taken.
	CreateButton(ctx context.Context, b domain.Button, profileID string) error

	// UpdateButton overwrites an existing button's fields (position is kept).
	UpdateButton(ctx context.Context, b domain.Button, profileID string) error

	// DeleteButton removes a button; ErrNotFound if absent.
	DeleteButton(ctx context.Context, buttonID, profileID string) error

	// ReorderButtons assigns grid positions per the given id order. Buttons
	// not listed keep their relative order after the listed ones.
	ReorderButtons(ctx context.Context, buttonIDs []string, profileID string) error
}

type Profiles interface {
	// ListProfiles returns all profiles, oldest first.
	ListProfiles(ctx context.Context) ([]domain.Profile, error)

	// GetProfile fetches a profile by id.
	GetProfile(ctx context.Context, profileID string) (domain.Profile, error)

	// GetDefaultProfile returns the oldest profile, ErrNotFound when none exist.
	GetDefaultProfile(ctx context.Context) (domain.Profile, error)

	// CreateProfile inserts a new profile (id is provided by app via ULID).
	CreateProfile(ctx context.Context, p domain.Profile) error

	// RenameProfile sets the name and bumps updated_at.
	RenameProfile(ctx context.Context, profileID, name string) error

	// DeleteProfile cascades to the profile's buttons (per schema).
	DeleteProfile(ctx context.Context, profileID string) error
}

type SessionTokens interface {
	// CreateSessionToken stores a token fingerprint (never the raw token).
	CreateSessionToken(ctx context.Context, fingerprint string) error

	// SessionTokenExists reports exact-membership of a fingerprint.
	SessionTokenExists(ctx context.Context, fingerprint string) (bool, error)

	// DeleteSessionToken removes a fingerprint, reporting whether it existed.
	DeleteSessionToken(ctx context.Context, fingerprint string) (bool, error)
}
