package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/pkg/slogx"
)

// Executor performs one kind of desk-side action (press a media key, launch
// an app, open a URL). The returned string is a human-readable outcome shown
// on the remote.
type Executor interface {
	Execute(ctx context.Context, actionType domain.ActionType, payload map[string]any) (string, error)
}

// ActionService dispatches button presses to registered executors. Failures
// are outcomes, not errors: Execute always returns an ActionResult so the
// remote can display what happened.
type ActionService struct {
	executors map[domain.ActionType]Executor
}

func NewActionService() *ActionService {
	return &ActionService{executors: make(map[domain.ActionType]Executor)}
}

// Register binds an executor to the action types it supports. Later
// registrations win, which lets tests stub a single action type.
func (s *ActionService) Register(exec Executor, types ...domain.ActionType) {
	for _, t := range types {
		s.executors[t] = exec
	}
}

func (s *ActionService) Execute(ctx context.Context, b domain.Button) domain.ActionResult {
	l := slogx.FromContext(ctx)

	exec, ok := s.executors[b.ActionType]
	if !ok {
		return domain.ActionResult{
			ButtonID: b.ID,
			Status:   domain.StatusError,
			Message:  fmt.Sprintf("No executor found for action type: %s", b.ActionType),
		}
	}

	message, err := exec.Execute(ctx, b.ActionType, b.ActionPayload)
	if err != nil {
		l.Warn("action failed",
			slog.String("button_id", b.ID),
			slog.String("action_type", string(b.ActionType)),
			slog.String("error", err.Error()),
		)
		return domain.ActionResult{
			ButtonID: b.ID,
			Status:   domain.StatusError,
			Message:  err.Error(),
		}
	}

	if message == "" {
		message = "Action executed"
	}
	return domain.ActionResult{
		ButtonID: b.ID,
		Status:   domain.StatusSuccess,
		Message:  message,
	}
}
