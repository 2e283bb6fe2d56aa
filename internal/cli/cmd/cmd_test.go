package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/berrythewa/cliprecall/internal/clipboard"
	"github.com/berrythewa/cliprecall/internal/config"
	"github.com/berrythewa/cliprecall/internal/daemon"
	"github.com/berrythewa/cliprecall/internal/ipc"
	"github.com/berrythewa/cliprecall/internal/types"
)

// isolate points every platform path at a fresh short-lived directory.
// Unix socket paths are length-limited, so t.TempDir is too deep here.
func isolate(t *testing.T) string {
	t.Helper()
	dir, err := os.MkdirTemp("", "crc")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	t.Setenv("CLIPRECALL_CONFIG_DIR", filepath.Join(dir, "cfg"))
	t.Setenv("CLIPRECALL_DATA_DIR", filepath.Join(dir, "data"))
	t.Setenv("CLIPRECALL_RUNTIME_DIR", filepath.Join(dir, "run"))
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func startDaemon(t *testing.T, backend clipboard.Backend) *config.Config {
	t.Helper()
	c, err := config.Load("")
	require.NoError(t, err)
	c.Storage.Enabled = false
	c.Monitor.PollIntervalMs = 20

	d, err := daemon.New(c, zaptest.NewLogger(t), daemon.Options{Backend: backend})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	require.Eventually(t, func() bool { return ipc.IsRunning(c.SocketPath()) },
		2*time.Second, 10*time.Millisecond)
	return c
}

func waitForSize(t *testing.T, socket string, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := ipc.SendRequest(context.Background(), socket, ipc.NewRequest(ipc.CmdSize))
		if err != nil {
			return false
		}
		var size ipc.SizeData
		return resp.Decode(&size) == nil && size.Size == want
	}, 3*time.Second, 20*time.Millisecond)
}

func TestVersion(t *testing.T) {
	isolate(t)
	SetVersionInfo("1.2.3", "today", "abc")

	out, err := execute(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:    1.2.3")
	assert.Contains(t, out, "Commit:     abc")
}

func TestBackendFlagListsEveryBackend(t *testing.T) {
	isolate(t)
	flag := NewRootCmd().PersistentFlags().Lookup("backend")
	require.NotNil(t, flag)
	for _, name := range []string{"auto", "system", "text", "headless", "memory"} {
		cfg := config.DefaultConfig()
		cfg.Monitor.Backend = name
		require.NoError(t, cfg.Validate(), name)
		assert.Contains(t, flag.Usage, name)
	}
}

func TestHistoryWithoutDaemon(t *testing.T) {
	isolate(t)

	_, err := execute(t, "", "history", "size")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daemon is not running")

	out, err := execute(t, "", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Status: stopped")
}

func TestHistoryCommands(t *testing.T) {
	isolate(t)
	backend := clipboard.NewMemoryBackend()
	c := startDaemon(t, backend)

	backend.SetText("hello world")
	waitForSize(t, c.SocketPath(), 1)
	backend.SetText("https://go.dev/doc")
	waitForSize(t, c.SocketPath(), 2)

	t.Run("list json", func(t *testing.T) {
		out, err := execute(t, "", "history", "list", "--json")
		require.NoError(t, err)
		var views []types.RecordView
		require.NoError(t, json.Unmarshal([]byte(out), &views))
		require.Len(t, views, 2)
		assert.Equal(t, types.TypeURL, views[0].Type)
		assert.Equal(t, "hello world", views[1].Text)
	})

	t.Run("list compact", func(t *testing.T) {
		out, err := execute(t, "", "history", "--compact", "--no-icons")
		require.NoError(t, err)
		assert.Contains(t, out, "Clipboard history (2 entries)")
		assert.Contains(t, out, "[1] url")
		assert.Contains(t, out, "[2] text")
		assert.NotContains(t, out, "\033[")
	})

	t.Run("limit", func(t *testing.T) {
		out, err := execute(t, "", "history", "list", "-n", "1", "--json")
		require.NoError(t, err)
		var views []types.RecordView
		require.NoError(t, json.Unmarshal([]byte(out), &views))
		assert.Len(t, views, 1)
	})

	t.Run("search", func(t *testing.T) {
		out, err := execute(t, "", "history", "search", "HELLO", "--json")
		require.NoError(t, err)
		var views []types.RecordView
		require.NoError(t, json.Unmarshal([]byte(out), &views))
		require.Len(t, views, 1)
		assert.Equal(t, "hello world", views[0].Text)

		out, err = execute(t, "", "history", "search", "nothing", "--json")
		require.NoError(t, err)
		assert.Equal(t, "[]\n", out)
	})

	t.Run("size and status", func(t *testing.T) {
		out, err := execute(t, "", "history", "size")
		require.NoError(t, err)
		assert.Equal(t, "2 / 100 entries\n", out)

		out, err = execute(t, "", "status")
		require.NoError(t, err)
		assert.Contains(t, out, "History: 2 / 100 entries")
	})

	t.Run("toggle", func(t *testing.T) {
		out, err := execute(t, "", "toggle")
		require.NoError(t, err)
		assert.Equal(t, "History view visible\n", out)
	})

	t.Run("restore by position", func(t *testing.T) {
		out, err := execute(t, "", "history", "restore", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Restored text: hello world")

		p, err := backend.ReadCurrent(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "hello world", p.Text)

		_, err = execute(t, "", "history", "restore", "9")
		assert.Error(t, err)
	})

	t.Run("clear", func(t *testing.T) {
		backend.Reset()

		out, err := execute(t, "n\n", "history", "clear")
		require.NoError(t, err)
		assert.Contains(t, out, "Clear cancelled.")

		out, err = execute(t, "", "history", "clear", "--force")
		require.NoError(t, err)
		assert.Contains(t, out, "Cleared 2 entries")
		waitForSize(t, c.SocketPath(), 0)
	})
}

func TestConfigCommands(t *testing.T) {
	dir := isolate(t)
	configFile := filepath.Join(dir, "cfg", "config.yaml")

	out, err := execute(t, "", "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, configFile)
	assert.FileExists(t, configFile)

	_, err = execute(t, "", "config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = execute(t, "", "config", "init", "--force")
	require.NoError(t, err)

	out, err = execute(t, "", "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration is valid")

	t.Setenv("CLIPRECALL_HISTORY_CAPACITY", "7")
	out, err = execute(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "capacity: 7")

	out, err = execute(t, "", "--socket", "/tmp/other.sock", "config", "path")
	require.NoError(t, err)
	assert.Contains(t, out, "socket:  /tmp/other.sock")
	assert.Contains(t, out, "config:  "+configFile)
}

func TestConfigValidateRejectsBadFile(t *testing.T) {
	dir := isolate(t)
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("history:\n  capacity: 0\n"), 0644))

	_, err := execute(t, "", "config", "validate", bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
}

func TestResolveID(t *testing.T) {
	views := []types.RecordView{
		{ID: "a1b2c3d4-0000"},
		{ID: "a1ffffff-0000"},
		{ID: "b9999999-0000"},
	}

	tests := []struct {
		ref     string
		want    string
		wantErr bool
	}{
		{ref: "a1b2c3d4-0000", want: "a1b2c3d4-0000"},
		{ref: "b9", want: "b9999999-0000"},
		{ref: "a1", wantErr: true},
		{ref: "zz", wantErr: true},
		{ref: "3", want: "b9999999-0000"},
		{ref: "0", wantErr: true},
		{ref: "4", wantErr: true},
	}
	for _, tt := range tests {
		got, err := resolveID(views, tt.ref)
		if tt.wantErr {
			assert.Error(t, err, tt.ref)
			continue
		}
		require.NoError(t, err, tt.ref)
		assert.Equal(t, tt.want, got)
	}
}
