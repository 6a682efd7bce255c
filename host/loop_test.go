package host

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wayacreates/waya"
)

func testConfig() waya.Config {
	cfg := waya.DefaultConfig()
	cfg.FPS = 500
	return cfg
}

// startLoop runs l until the test ends.
func startLoop(t *testing.T, l *Loop) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-errc)
	})
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := waya.DefaultConfig()
	cfg.FPS = 0
	_, err := New(cfg)
	assert.Error(t, err)
}

func TestExecuteOnLoop(t *testing.T) {
	l, err := New(testConfig())
	require.NoError(t, err)
	startLoop(t, l)
	ctx := context.Background()

	res, err := l.Execute(ctx, "project.create demo")
	require.NoError(t, err)
	assert.True(t, res.OK(), res.Message)

	res, err = l.Execute(ctx, "node.add input Plate")
	require.NoError(t, err)
	assert.True(t, res.OK(), res.Message)

	var nodes int
	require.NoError(t, l.Do(ctx, func(l *Loop) error {
		s, err := l.Dispatcher().Session()
		if err != nil {
			return err
		}
		g, _ := s.Graph()
		nodes = g.NodeCount()
		return nil
	}))
	assert.Equal(t, 4, nodes)
}

func TestPlaybackAdvancesWithFrames(t *testing.T) {
	l, err := New(testConfig())
	require.NoError(t, err)
	startLoop(t, l)
	ctx := context.Background()

	for _, line := range []string{"project.create demo", "keyframe.add Cube x 10 1", "play"} {
		res, err := l.Execute(ctx, line)
		require.NoError(t, err)
		require.True(t, res.OK(), res.Message)
	}
	assert.Eventually(t, func() bool {
		var now float64
		_ = l.Do(ctx, func(l *Loop) error {
			s, _ := l.Dispatcher().Session()
			tl, _ := s.Timeline()
			now = tl.CurrentTime()
			return nil
		})
		return now > 0
	}, 2*time.Second, 5*time.Millisecond)
}

func TestPostAfterStop(t *testing.T) {
	l, err := New(testConfig())
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, l.Run(ctx))

	assert.ErrorIs(t, l.Post(context.Background(), func(*Loop) {}), ErrStopped)
	_, err = l.Execute(context.Background(), "status")
	assert.ErrorIs(t, err, ErrStopped)
}

func TestDoHonorsContext(t *testing.T) {
	l, err := New(testConfig())
	require.NoError(t, err)
	// No Run: the closure is queued but never executed.
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err = l.Do(ctx, func(*Loop) error { return nil })
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics("waya", reg)
	require.NoError(t, err)
	_, err = NewMetrics("waya", reg)
	assert.Error(t, err, "duplicate registration")

	l, err := New(testConfig(), WithMetrics(m))
	require.NoError(t, err)

	l.execute("project.create demo")
	l.execute("project.create demo")
	l.execute("bogus")
	l.Step(1.0 / 60)
	l.Step(1.0 / 60)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Frames))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Sessions))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("project.create", "handled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("project.create", "rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("invalid", "rejected")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.TickDuration))
}

func TestMetricsWithoutRegistry(t *testing.T) {
	m, err := NewMetrics("waya", nil)
	require.NoError(t, err)
	m.observeCommand("status", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Commands.WithLabelValues("status", "handled")))
}

func TestPumpDrainsMailboxThenSteps(t *testing.T) {
	l, err := New(testConfig())
	require.NoError(t, err)
	ctx := context.Background()

	var order []string
	require.NoError(t, l.Post(ctx, func(*Loop) { order = append(order, "a") }))
	require.NoError(t, l.Post(ctx, func(l *Loop) { order = append(order, "b") }))
	l.Pump(0.1)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, uint64(1), l.Frame())

	l.Pump(0.1)
	assert.Equal(t, uint64(2), l.Frame())
}
