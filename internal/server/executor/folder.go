package executor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/slatedeck/slate/internal/server/domain"
)

// OpenFolder opens a directory in the platform's file manager. Well-known
// names like "downloads" or "desktop" resolve under the user's home.
type OpenFolder struct {
	run runner
}

func NewOpenFolder() *OpenFolder {
	return &OpenFolder{run: runCommand}
}

func (e *OpenFolder) SupportedActions() []domain.ActionType {
	return []domain.ActionType{domain.ActionOpenFolder}
}

var wellKnownFolders = map[string]string{
	"downloads": "Downloads",
	"documents": "Documents",
	"desktop":   "Desktop",
	"pictures":  "Pictures",
	"music":     "Music",
	"videos":    "Videos",
}

func (e *OpenFolder) Execute(ctx context.Context, _ domain.ActionType, payload map[string]any) (string, error) {
	raw, ok := stringField(payload, "path")
	if !ok {
		return "", fmt.Errorf("missing 'path' in payload")
	}

	path := raw
	if name, known := wellKnownFolders[strings.ToLower(raw)]; known {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to open folder: %w", err)
		}
		path = filepath.Join(home, name)
	}

	path, err := filepath.Abs(os.ExpandEnv(path))
	if err != nil {
		return "", fmt.Errorf("failed to open folder: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("path does not exist: %s", path)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is a file, not a directory: %s", path)
	}

	if err := openTarget(ctx, e.run, path); err != nil {
		return "", fmt.Errorf("failed to open folder: %w", err)
	}
	return fmt.Sprintf("Opened folder: %s", path), nil
}
