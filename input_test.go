package waya

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHitCircleContains(t *testing.T) {
	c := HitCircle{CenterX: 10, CenterY: 10, Radius: 5}
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 10, 10, true},
		{"on edge", 15, 10, true},
		{"outside", 16, 10, false},
		{"diagonal outside", 14, 14, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Contains(tt.x, tt.y))
		})
	}
}

func TestPortAnchorAndBounds(t *testing.T) {
	l := DefaultConfig().Layout
	n := NewColorCorrectNode("cc")
	n.SetPosition(100, 50)

	in := n.Input(0).Anchor(l)
	assert.Equal(t, Vec2{X: 100, Y: 50 + l.HeaderHeight + l.PortSpacing/2}, in)
	out := n.Output(0).Anchor(l)
	assert.Equal(t, 100+l.NodeWidth, out.X)

	b := n.Bounds(l)
	assert.Equal(t, Rect{X: 100, Y: 50, Width: l.NodeWidth, Height: l.HeaderHeight + l.PortSpacing}, b)
}

func TestFindPortAt(t *testing.T) {
	g := newTestGraph()
	n := NewColorCorrectNode("cc")
	n.SetPosition(0, 0)
	mustAdd(t, g, n)
	l := g.Layout()

	a := n.Output(0).Anchor(l)
	p, ok := g.FindPortAt(a.X+l.PortHitRadius-1, a.Y)
	require.True(t, ok)
	assert.Same(t, n.Output(0), p)

	_, ok = g.FindPortAt(a.X+l.PortHitRadius+1, a.Y)
	assert.False(t, ok)
}

func TestFindPortAtTopmostWins(t *testing.T) {
	g := newTestGraph()
	below, above := NewColorCorrectNode("below"), NewColorCorrectNode("above")
	mustAdd(t, g, below, above)
	l := g.Layout()

	a := below.Input(0).Anchor(l)
	p, ok := g.FindPortAt(a.X, a.Y)
	require.True(t, ok)
	assert.Same(t, above.Input(0), p, "stacked nodes resolve to the last inserted")
}

func TestNodeAt(t *testing.T) {
	g := newTestGraph()
	a, b := NewInputNode("a"), NewInputNode("b")
	a.SetPosition(0, 0)
	b.SetPosition(50, 10)
	mustAdd(t, g, a, b)

	n, ok := g.NodeAt(60, 20)
	require.True(t, ok)
	assert.Same(t, b, n)
	n, ok = g.NodeAt(10, 10)
	require.True(t, ok)
	assert.Same(t, a, n)
	_, ok = g.NodeAt(-5, -5)
	assert.False(t, ok)
}

// --- PointerTracker ---

func TestPointerTrackerConnect(t *testing.T) {
	g := newTestGraph()
	in, out := NewInputNode("in"), NewOutputNode("out")
	in.SetPosition(0, 0)
	out.SetPosition(300, 0)
	mustAdd(t, g, in, out)
	l := g.Layout()

	tr := NewPointerTracker(g)
	from := in.Output(0).Anchor(l)
	to := out.Input(0).Anchor(l)
	assert.Equal(t, GestureConnect, tr.Press(from.X, from.Y))
	tr.Move(150, 40)
	src, cur, ok := tr.PendingWire()
	require.True(t, ok)
	assert.Same(t, in.Output(0), src)
	assert.Equal(t, Vec2{150, 40}, cur)

	c, err := tr.Release(to.X, to.Y)
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Same(t, in.Output(0), c.Source)
	assert.Equal(t, GestureNone, tr.Active())
}

func TestPointerTrackerConnectFromInput(t *testing.T) {
	g := newTestGraph()
	in, out := NewInputNode("in"), NewOutputNode("out")
	out.SetPosition(300, 0)
	mustAdd(t, g, in, out)
	l := g.Layout()

	tr := NewPointerTracker(g)
	from := out.Input(0).Anchor(l)
	to := in.Output(0).Anchor(l)
	tr.Press(from.X, from.Y)
	c, err := tr.Release(to.X, to.Y)
	require.NoError(t, err)
	assert.Same(t, in.Output(0), c.Source, "reverse gesture still yields output as source")
}

func TestPointerTrackerRejectsInvalid(t *testing.T) {
	g := newTestGraph()
	a, b := NewOutputNode("a"), NewOutputNode("b")
	b.SetPosition(300, 0)
	mustAdd(t, g, a, b)
	l := g.Layout()

	tr := NewPointerTracker(g)
	from, to := a.Input(0).Anchor(l), b.Input(0).Anchor(l)
	tr.Press(from.X, from.Y)
	_, err := tr.Release(to.X, to.Y)
	assert.ErrorIs(t, err, ErrInvalidConnection)
	assert.Zero(t, g.ConnectionCount())
}

func TestPointerTrackerReleaseOnEmpty(t *testing.T) {
	g := newTestGraph()
	in := NewInputNode("in")
	mustAdd(t, g, in)
	l := g.Layout()

	tr := NewPointerTracker(g)
	a := in.Output(0).Anchor(l)
	tr.Press(a.X, a.Y)
	c, err := tr.Release(900, 900)
	assert.NoError(t, err)
	assert.Nil(t, c)
}

func TestPointerTrackerMoveDeadZone(t *testing.T) {
	g := newTestGraph()
	n := NewInputNode("n")
	n.SetPosition(10, 10)
	mustAdd(t, g, n)

	tr := NewPointerTracker(g)
	require.Equal(t, GestureMove, tr.Press(40, 15))
	tr.Move(41, 16)
	assert.Equal(t, 10.0, n.X, "within dead zone")
	tr.Move(60, 35)
	assert.Equal(t, 30.0, n.X)
	assert.Equal(t, 30.0, n.Y)
	_, err := tr.Release(60, 35)
	assert.NoError(t, err)
	assert.Equal(t, GestureNone, tr.Active())
}
