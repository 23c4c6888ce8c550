package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/slatedeck/slate/internal/server/domain"
)

// AppLaunch starts an application from the payload's "path" field. The path
// must point at an existing regular file; environment variables in it are
// expanded.
type AppLaunch struct {
	start runner
}

func NewAppLaunch() *AppLaunch {
	return &AppLaunch{start: startCommand}
}

func (e *AppLaunch) SupportedActions() []domain.ActionType {
	return []domain.ActionType{domain.ActionAppLaunch}
}

func (e *AppLaunch) Execute(ctx context.Context, _ domain.ActionType, payload map[string]any) (string, error) {
	raw, ok := stringField(payload, "path")
	if !ok {
		return "", fmt.Errorf("missing 'path' in payload")
	}

	path, err := filepath.Abs(os.ExpandEnv(raw))
	if err != nil {
		return "", fmt.Errorf("failed to launch app: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("path does not exist: %s", path)
	}
	if info.IsDir() {
		return "", fmt.Errorf("path is a directory, not an executable file: %s", path)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("path is not a valid file: %s", path)
	}

	if err := e.start(ctx, path); err != nil {
		return "", fmt.Errorf("failed to launch app: %w", err)
	}
	return fmt.Sprintf("Launched: %s", path), nil
}
