package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/internal/server/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func seedProfile(t *testing.T, s *Store, id, name string, createdAt time.Time) {
	t.Helper()

	err := s.Profiles().CreateProfile(context.Background(), domain.Profile{
		ID:        id,
		Name:      name,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	})
	require.NoError(t, err)
}

func TestProfilesRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	seedProfile(t, s, "prof-b", "Streaming", base.Add(time.Hour))
	seedProfile(t, s, "prof-a", "Default", base)

	t.Run("list is oldest first", func(t *testing.T) {
		profiles, err := s.Profiles().ListProfiles(ctx)
		require.NoError(t, err)
		require.Len(t, profiles, 2)
		require.Equal(t, "prof-a", profiles[0].ID)
		require.Equal(t, "prof-b", profiles[1].ID)
	})

	t.Run("default is the oldest profile", func(t *testing.T) {
		p, err := s.Profiles().GetDefaultProfile(ctx)
		require.NoError(t, err)
		require.Equal(t, "prof-a", p.ID)
	})

	t.Run("get round-trips timestamps", func(t *testing.T) {
		p, err := s.Profiles().GetProfile(ctx, "prof-a")
		require.NoError(t, err)
		require.Equal(t, "Default", p.Name)
		require.True(t, p.CreatedAt.Equal(base))
	})

	t.Run("get missing returns ErrNotFound", func(t *testing.T) {
		_, err := s.Profiles().GetProfile(ctx, "nope")
		require.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("duplicate id returns ErrAlreadyExists", func(t *testing.T) {
		err := s.Profiles().CreateProfile(ctx, domain.Profile{ID: "prof-a", Name: "Dup"})
		require.ErrorIs(t, err, store.ErrAlreadyExists)
	})

	t.Run("rename updates name", func(t *testing.T) {
		require.NoError(t, s.Profiles().RenameProfile(ctx, "prof-b", "Gaming"))

		p, err := s.Profiles().GetProfile(ctx, "prof-b")
		require.NoError(t, err)
		require.Equal(t, "Gaming", p.Name)
	})

	t.Run("rename missing returns ErrNotFound", func(t *testing.T) {
		require.ErrorIs(t, s.Profiles().RenameProfile(ctx, "nope", "X"), store.ErrNotFound)
	})

	t.Run("delete cascades to buttons", func(t *testing.T) {
		require.NoError(t, s.Buttons().CreateButton(ctx, domain.Button{
			ID:         "btn-1",
			Label:      "Play",
			Icon:       "play",
			ActionType: domain.ActionMediaPlayPause,
		}, "prof-b"))

		require.NoError(t, s.Profiles().DeleteProfile(ctx, "prof-b"))

		buttons, err := s.Buttons().ListButtons(ctx, "prof-b")
		require.NoError(t, err)
		require.Empty(t, buttons)
	})
}

func TestButtonsRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	seedProfile(t, s, "prof", "Default", time.Now())

	bg := "#1e1e2e"
	btn := domain.Button{
		ID:         "launch-code",
		Label:      "VS Code",
		Icon:       "code",
		ActionType: domain.ActionAppLaunch,
		ActionPayload: map[string]any{
			"command": "code",
			"args":    []any{"--new-window"},
		},
		Background: &bg,
	}

	t.Run("create and get round-trip", func(t *testing.T) {
		require.NoError(t, s.Buttons().CreateButton(ctx, btn, "prof"))

		got, err := s.Buttons().GetButton(ctx, "launch-code", "prof")
		require.NoError(t, err)
		require.Equal(t, btn.Label, got.Label)
		require.Equal(t, btn.ActionType, got.ActionType)
		require.Equal(t, btn.ActionPayload, got.ActionPayload)
		require.NotNil(t, got.Background)
		require.Equal(t, bg, *got.Background)
		require.Nil(t, got.IconColor)
	})

	t.Run("duplicate id in same profile rejected", func(t *testing.T) {
		require.ErrorIs(t, s.Buttons().CreateButton(ctx, btn, "prof"), store.ErrAlreadyExists)
	})

	t.Run("same id allowed in another profile", func(t *testing.T) {
		seedProfile(t, s, "prof2", "Other", time.Now())
		require.NoError(t, s.Buttons().CreateButton(ctx, btn, "prof2"))
	})

	t.Run("list appends in creation order", func(t *testing.T) {
		for _, id := range []string{"vol-up", "vol-down"} {
			require.NoError(t, s.Buttons().CreateButton(ctx, domain.Button{
				ID:         id,
				Label:      id,
				Icon:       "volume",
				ActionType: domain.ActionVolumeUp,
			}, "prof"))
		}

		buttons, err := s.Buttons().ListButtons(ctx, "prof")
		require.NoError(t, err)
		require.Equal(t, []string{"launch-code", "vol-up", "vol-down"}, buttonIDs(buttons))
	})

	t.Run("update keeps position", func(t *testing.T) {
		updated := btn
		updated.Label = "Code Editor"
		updated.ActionPayload = map[string]any{"command": "codium"}
		require.NoError(t, s.Buttons().UpdateButton(ctx, updated, "prof"))

		buttons, err := s.Buttons().ListButtons(ctx, "prof")
		require.NoError(t, err)
		require.Equal(t, "Code Editor", buttons[0].Label)
	})

	t.Run("update missing returns ErrNotFound", func(t *testing.T) {
		missing := btn
		missing.ID = "ghost"
		require.ErrorIs(t, s.Buttons().UpdateButton(ctx, missing, "prof"), store.ErrNotFound)
	})

	t.Run("reorder moves listed ids first", func(t *testing.T) {
		err := s.WithTx(ctx, func(tx store.Tx) error {
			return tx.Buttons().ReorderButtons(ctx, []string{"vol-down", "vol-up"}, "prof")
		})
		require.NoError(t, err)

		buttons, err := s.Buttons().ListButtons(ctx, "prof")
		require.NoError(t, err)
		require.Equal(t, []string{"vol-down", "vol-up", "launch-code"}, buttonIDs(buttons))
	})

	t.Run("delete removes the button", func(t *testing.T) {
		require.NoError(t, s.Buttons().DeleteButton(ctx, "vol-down", "prof"))
		require.ErrorIs(t, s.Buttons().DeleteButton(ctx, "vol-down", "prof"), store.ErrNotFound)
	})
}

func TestSessionTokensRepo(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)
	repo := s.SessionTokens()

	t.Run("exists reflects membership", func(t *testing.T) {
		ok, err := repo.SessionTokenExists(ctx, "fp-1")
		require.NoError(t, err)
		require.False(t, ok)

		require.NoError(t, repo.CreateSessionToken(ctx, "fp-1"))

		ok, err = repo.SessionTokenExists(ctx, "fp-1")
		require.NoError(t, err)
		require.True(t, ok)
	})

	t.Run("delete reports prior membership", func(t *testing.T) {
		existed, err := repo.DeleteSessionToken(ctx, "fp-1")
		require.NoError(t, err)
		require.True(t, existed)

		existed, err = repo.DeleteSessionToken(ctx, "fp-1")
		require.NoError(t, err)
		require.False(t, existed)
	})
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := newTestStore(t)

	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Profiles().CreateProfile(ctx, domain.Profile{ID: "p", Name: "P"}); err != nil {
			return err
		}
		return context.Canceled
	})
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Profiles().GetProfile(ctx, "p")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func buttonIDs(buttons []domain.Button) []string {
	ids := make([]string, 0, len(buttons))
	for _, b := range buttons {
		ids = append(ids, b.ID)
	}
	return ids
}
