package executor

import (
	"context"
	"fmt"
	"net/url"

	"github.com/slatedeck/slate/internal/server/domain"
)

// OpenURL hands the payload's "url" field to the platform's default browser.
type OpenURL struct {
	run runner
}

func NewOpenURL() *OpenURL {
	return &OpenURL{run: runCommand}
}

func (e *OpenURL) SupportedActions() []domain.ActionType {
	return []domain.ActionType{domain.ActionOpenURL}
}

func (e *OpenURL) Execute(ctx context.Context, _ domain.ActionType, payload map[string]any) (string, error) {
	target, ok := stringField(payload, "url")
	if !ok {
		return "", fmt.Errorf("missing 'url' in payload")
	}

	parsed, err := url.Parse(target)
	if err != nil || parsed.Scheme == "" {
		return "", fmt.Errorf("invalid url: %s", target)
	}

	if err := openTarget(ctx, e.run, target); err != nil {
		return "", fmt.Errorf("failed to open URL: %w", err)
	}
	return fmt.Sprintf("Opened URL: %s", target), nil
}
