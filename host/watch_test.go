package host

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatchProjectReloads(t *testing.T) {
	l, err := New(testConfig())
	require.NoError(t, err)
	startLoop(t, l)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "demo.yaml")
	for _, line := range []string{"project.create demo", "project.save " + path} {
		res, err := l.Execute(ctx, line)
		require.NoError(t, err)
		require.True(t, res.OK(), res.Message)
	}

	wctx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- l.WatchProject(wctx, path) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})

	// Give the watcher time to register before editing the file.
	time.Sleep(50 * time.Millisecond)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	edited := strings.Replace(string(data), "name: Output", "name: Final", 1)
	require.NotEqual(t, string(data), edited)
	require.NoError(t, os.WriteFile(path, []byte(edited), 0o644))

	assert.Eventually(t, func() bool {
		res, err := l.Execute(ctx, "node.move Final 0 0")
		return err == nil && res.OK()
	}, 3*time.Second, 20*time.Millisecond)
}
