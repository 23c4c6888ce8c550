package executor

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/slatedeck/slate/internal/server/domain"
)

// Hotkey replays a key chord described as "ctrl+shift+s" in the payload's
// "hotkey" field.
type Hotkey struct {
	run runner
}

func NewHotkey() *Hotkey {
	return &Hotkey{run: runCommand}
}

func (e *Hotkey) SupportedActions() []domain.ActionType {
	return []domain.ActionType{domain.ActionHotkey}
}

func (e *Hotkey) Execute(ctx context.Context, _ domain.ActionType, payload map[string]any) (string, error) {
	chord, ok := stringField(payload, "hotkey")
	if !ok {
		return "", fmt.Errorf("missing 'hotkey' in payload")
	}

	keys := make([]string, 0, 4)
	for _, k := range strings.Split(chord, "+") {
		if k = strings.TrimSpace(k); k != "" {
			keys = append(keys, k)
		}
	}
	if len(keys) == 0 {
		return "", fmt.Errorf("missing 'hotkey' in payload")
	}

	switch runtime.GOOS {
	case "linux":
		if err := e.run(ctx, "xdotool", "key", strings.Join(keys, "+")); err != nil {
			return "", fmt.Errorf("failed to execute hotkey: %w", err)
		}
	case "darwin":
		script := buildDarwinKeystroke(keys)
		if err := e.run(ctx, "osascript", "-e", script); err != nil {
			return "", fmt.Errorf("failed to execute hotkey: %w", err)
		}
	default:
		return "", fmt.Errorf("hotkeys unsupported on %s", runtime.GOOS)
	}

	return fmt.Sprintf("Hotkey executed: %s", chord), nil
}

// buildDarwinKeystroke turns ["ctrl","shift","s"] into an osascript
// keystroke with modifier clauses. The last element is the key itself.
func buildDarwinKeystroke(keys []string) string {
	modifiers := make([]string, 0, len(keys)-1)
	for _, k := range keys[:len(keys)-1] {
		switch strings.ToLower(k) {
		case "ctrl", "control":
			modifiers = append(modifiers, "control down")
		case "shift":
			modifiers = append(modifiers, "shift down")
		case "alt", "option":
			modifiers = append(modifiers, "option down")
		case "cmd", "command", "super", "win":
			modifiers = append(modifiers, "command down")
		}
	}

	key := keys[len(keys)-1]
	if len(modifiers) == 0 {
		return fmt.Sprintf(`tell application "System Events" to keystroke %q`, key)
	}
	return fmt.Sprintf(`tell application "System Events" to keystroke %q using {%s}`,
		key, strings.Join(modifiers, ", "))
}
