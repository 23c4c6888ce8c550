package executor

import (
	"context"
	"fmt"
	"runtime"

	"github.com/slatedeck/slate/internal/server/domain"
)

// Media presses the host's media and volume keys. On Linux this goes through
// xdotool's XF86 key names; on macOS through osascript.
type Media struct {
	run runner
}

func NewMedia() *Media {
	return &Media{run: runCommand}
}

// SupportedActions lists what this executor handles, for registry wiring.
func (e *Media) SupportedActions() []domain.ActionType {
	return []domain.ActionType{
		domain.ActionMediaPlayPause,
		domain.ActionMediaNext,
		domain.ActionMediaPrev,
		domain.ActionVolumeUp,
		domain.ActionVolumeDown,
		domain.ActionVolumeMute,
	}
}

var linuxMediaKeys = map[domain.ActionType]string{
	domain.ActionMediaPlayPause: "XF86AudioPlay",
	domain.ActionMediaNext:      "XF86AudioNext",
	domain.ActionMediaPrev:      "XF86AudioPrev",
	domain.ActionVolumeUp:       "XF86AudioRaiseVolume",
	domain.ActionVolumeDown:     "XF86AudioLowerVolume",
	domain.ActionVolumeMute:     "XF86AudioMute",
}

var darwinMediaScripts = map[domain.ActionType]string{
	domain.ActionMediaPlayPause: `tell application "System Events" to key code 100`,
	domain.ActionMediaNext:      `tell application "System Events" to key code 101`,
	domain.ActionMediaPrev:      `tell application "System Events" to key code 98`,
	domain.ActionVolumeUp:       `set volume output volume ((output volume of (get volume settings)) + 6)`,
	domain.ActionVolumeDown:     `set volume output volume ((output volume of (get volume settings)) - 6)`,
	domain.ActionVolumeMute:     `set volume output muted (not output muted of (get volume settings))`,
}

func (e *Media) Execute(ctx context.Context, actionType domain.ActionType, _ map[string]any) (string, error) {
	switch runtime.GOOS {
	case "linux":
		key, ok := linuxMediaKeys[actionType]
		if !ok {
			return "", fmt.Errorf("unknown media action: %s", actionType)
		}
		if err := e.run(ctx, "xdotool", "key", key); err != nil {
			return "", fmt.Errorf("failed to execute media action: %w", err)
		}
	case "darwin":
		script, ok := darwinMediaScripts[actionType]
		if !ok {
			return "", fmt.Errorf("unknown media action: %s", actionType)
		}
		if err := e.run(ctx, "osascript", "-e", script); err != nil {
			return "", fmt.Errorf("failed to execute media action: %w", err)
		}
	default:
		return "", fmt.Errorf("media actions unsupported on %s", runtime.GOOS)
	}

	return fmt.Sprintf("Media action executed: %s", actionType), nil
}
