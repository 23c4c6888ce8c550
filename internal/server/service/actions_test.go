package service

import (
	"context"
	"errors"
	"testing"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/stretchr/testify/require"
)

type stubExecutor struct {
	message string
	err     error
}

func (s *stubExecutor) Execute(context.Context, domain.ActionType, map[string]any) (string, error) {
	return s.message, s.err
}

func TestActionServiceExecute(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	button := domain.Button{ID: "btn-1", Label: "Play", ActionType: domain.ActionMediaPlayPause}

	t.Run("unregistered action type is an error outcome", func(t *testing.T) {
		svc := NewActionService()

		result := svc.Execute(ctx, button)
		require.Equal(t, "btn-1", result.ButtonID)
		require.Equal(t, domain.StatusError, result.Status)
		require.Contains(t, result.Message, "MEDIA_PLAY_PAUSE")
	})

	t.Run("executor failure becomes an error outcome", func(t *testing.T) {
		svc := NewActionService()
		svc.Register(&stubExecutor{err: errors.New("no media player running")}, domain.ActionMediaPlayPause)

		result := svc.Execute(ctx, button)
		require.Equal(t, domain.StatusError, result.Status)
		require.Equal(t, "no media player running", result.Message)
	})

	t.Run("success carries the executor message", func(t *testing.T) {
		svc := NewActionService()
		svc.Register(&stubExecutor{message: "pressed play"}, domain.ActionMediaPlayPause)

		result := svc.Execute(ctx, button)
		require.Equal(t, domain.StatusSuccess, result.Status)
		require.Equal(t, "pressed play", result.Message)
	})

	t.Run("empty message gets a default", func(t *testing.T) {
		svc := NewActionService()
		svc.Register(&stubExecutor{}, domain.ActionMediaPlayPause)

		result := svc.Execute(ctx, button)
		require.Equal(t, domain.StatusSuccess, result.Status)
		require.Equal(t, "Action executed", result.Message)
	})
}
