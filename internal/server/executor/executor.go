// Package executor contains the host-side implementations of deck actions:
// media keys, hotkeys, launching apps, and opening URLs or folders. Every
// executor shells out to platform tools through an injectable runner so
// tests never touch the host.
package executor

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
)

// runner executes a host command. The default implementation waits for the
// command to finish; launchers use start instead.
type runner func(ctx context.Context, name string, args ...string) error

func runCommand(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Run()
}

// startCommand fires and forgets: launched apps and opened folders outlive
// the button press.
func startCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

// openTarget hands a URL or path to the platform's default opener.
func openTarget(ctx context.Context, run runner, target string) error {
	switch runtime.GOOS {
	case "windows":
		return run(ctx, "rundll32", "url.dll,FileProtocolHandler", target)
	case "darwin":
		return run(ctx, "open", target)
	case "linux":
		return run(ctx, "xdg-open", target)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}
}

func stringField(payload map[string]any, key string) (string, bool) {
	if payload == nil {
		return "", false
	}
	value, ok := payload[key].(string)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}
