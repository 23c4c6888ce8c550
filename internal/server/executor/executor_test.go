package executor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/stretchr/testify/require"
)

type recordedCommand struct {
	name string
	args []string
}

func stubRunner(calls *[]recordedCommand) runner {
	return func(_ context.Context, name string, args ...string) error {
		*calls = append(*calls, recordedCommand{name: name, args: args})
		return nil
	}
}

func TestMediaExecute(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("media keys not wired on this platform")
	}

	var calls []recordedCommand
	media := &Media{run: stubRunner(&calls)}

	msg, err := media.Execute(context.Background(), domain.ActionMediaPlayPause, nil)
	require.NoError(t, err)
	require.Contains(t, msg, "MEDIA_PLAY_PAUSE")
	require.Len(t, calls, 1)

	_, err = media.Execute(context.Background(), domain.ActionHotkey, nil)
	require.Error(t, err)
}

func TestHotkeyExecute(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" {
		t.Skip("hotkeys not wired on this platform")
	}

	var calls []recordedCommand
	hotkey := &Hotkey{run: stubRunner(&calls)}

	t.Run("chord is passed through", func(t *testing.T) {
		msg, err := hotkey.Execute(context.Background(), domain.ActionHotkey, map[string]any{
			"hotkey": "ctrl + shift + s",
		})
		require.NoError(t, err)
		require.Contains(t, msg, "ctrl + shift + s")
		require.Len(t, calls, 1)
	})

	t.Run("missing payload rejected", func(t *testing.T) {
		_, err := hotkey.Execute(context.Background(), domain.ActionHotkey, nil)
		require.Error(t, err)

		_, err = hotkey.Execute(context.Background(), domain.ActionHotkey, map[string]any{"hotkey": " + "})
		require.Error(t, err)
	})
}

func TestBuildDarwinKeystroke(t *testing.T) {
	t.Parallel()

	require.Equal(t,
		`tell application "System Events" to keystroke "s" using {control down, shift down}`,
		buildDarwinKeystroke([]string{"ctrl", "shift", "s"}))

	require.Equal(t,
		`tell application "System Events" to keystroke "a"`,
		buildDarwinKeystroke([]string{"a"}))
}

func TestAppLaunchExecute(t *testing.T) {
	t.Parallel()

	var calls []recordedCommand
	launcher := &AppLaunch{start: stubRunner(&calls)}

	t.Run("missing path rejected", func(t *testing.T) {
		_, err := launcher.Execute(context.Background(), domain.ActionAppLaunch, nil)
		require.ErrorContains(t, err, "missing 'path'")
	})

	t.Run("nonexistent path rejected", func(t *testing.T) {
		_, err := launcher.Execute(context.Background(), domain.ActionAppLaunch, map[string]any{
			"path": filepath.Join(t.TempDir(), "ghost"),
		})
		require.ErrorContains(t, err, "does not exist")
	})

	t.Run("directory rejected", func(t *testing.T) {
		_, err := launcher.Execute(context.Background(), domain.ActionAppLaunch, map[string]any{
			"path": t.TempDir(),
		})
		require.ErrorContains(t, err, "directory")
	})

	t.Run("regular file launches", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "tool")
		require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))

		msg, err := launcher.Execute(context.Background(), domain.ActionAppLaunch, map[string]any{"path": path})
		require.NoError(t, err)
		require.Contains(t, msg, path)
		require.Len(t, calls, 1)
		require.Equal(t, path, calls[0].name)
	})
}

func TestOpenURLExecute(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		t.Skip("no opener on this platform")
	}

	var calls []recordedCommand
	opener := &OpenURL{run: stubRunner(&calls)}

	t.Run("missing url rejected", func(t *testing.T) {
		_, err := opener.Execute(context.Background(), domain.ActionOpenURL, nil)
		require.ErrorContains(t, err, "missing 'url'")
	})

	t.Run("relative url rejected", func(t *testing.T) {
		_, err := opener.Execute(context.Background(), domain.ActionOpenURL, map[string]any{"url": "not a url"})
		require.Error(t, err)
	})

	t.Run("absolute url opens", func(t *testing.T) {
		msg, err := opener.Execute(context.Background(), domain.ActionOpenURL, map[string]any{
			"url": "https://example.com/deck",
		})
		require.NoError(t, err)
		require.Contains(t, msg, "https://example.com/deck")
		require.Len(t, calls, 1)
	})
}

func TestOpenFolderExecute(t *testing.T) {
	if runtime.GOOS != "linux" && runtime.GOOS != "darwin" && runtime.GOOS != "windows" {
		t.Skip("no opener on this platform")
	}

	var calls []recordedCommand
	opener := &OpenFolder{run: stubRunner(&calls)}

	t.Run("file rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.txt")
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

		_, err := opener.Execute(context.Background(), domain.ActionOpenFolder, map[string]any{"path": path})
		require.ErrorContains(t, err, "not a directory")
	})

	t.Run("directory opens", func(t *testing.T) {
		dir := t.TempDir()

		msg, err := opener.Execute(context.Background(), domain.ActionOpenFolder, map[string]any{"path": dir})
		require.NoError(t, err)
		require.Contains(t, msg, dir)
		require.Len(t, calls, 1)
	})
}
