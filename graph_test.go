package waya

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph() *NodeGraph {
	return NewNodeGraph(DefaultConfig())
}

func mustAdd(t *testing.T, g *NodeGraph, nodes ...*Node) {
	t.Helper()
	for _, n := range nodes {
		require.NoError(t, g.AddNode(n))
	}
}

// --- AddNode ---

func TestAddNodeGeneratesID(t *testing.T) {
	g := newTestGraph()
	a, b := NewInputNode("a"), NewInputNode("b")
	mustAdd(t, g, a, b)
	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Same(t, g, a.Graph())
	assert.Same(t, a, g.Node(a.ID))
}

func TestAddNodeDuplicateID(t *testing.T) {
	g := newTestGraph()
	a := NewInputNode("a")
	a.ID = "fixed"
	mustAdd(t, g, a)

	b := NewInputNode("b")
	b.ID = "fixed"
	err := g.AddNode(b)
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 1, g.NodeCount())
}

func TestAddNodeTwice(t *testing.T) {
	g := newTestGraph()
	a := NewInputNode("a")
	mustAdd(t, g, a)
	assert.Error(t, g.AddNode(a))
	assert.Error(t, g.AddNode(nil))
}

func TestNodesInsertionOrder(t *testing.T) {
	g := newTestGraph()
	var want []*Node
	for _, name := range []string{"c", "a", "b"} {
		n := NewInputNode(name)
		mustAdd(t, g, n)
		want = append(want, n)
	}
	assert.Equal(t, want, g.Nodes())
	assert.Same(t, want[1], g.NodeByName("a"))
}

// --- Scenario A ---

func TestScenarioInputColorCorrectOutput(t *testing.T) {
	g := newTestGraph()
	in, cc, out := NewInputNode("Input"), NewColorCorrectNode("ColorCorrect"), NewOutputNode("Output")
	mustAdd(t, g, in, cc, out)

	c1, err := g.AddConnection(in.Output(0), cc.Input(0))
	require.NoError(t, err)
	c2, err := g.AddConnection(cc.Output(0), out.Input(0))
	require.NoError(t, err)
	assert.Equal(t, []*Connection{c1, c2}, g.Connections())

	_, err = g.AddConnection(out.Input(0), cc.Input(0))
	var ice *InvalidConnectionError
	require.ErrorAs(t, err, &ice)
	assert.Equal(t, RuleSameDirection, ice.Rule)
	assert.ErrorIs(t, err, ErrInvalidConnection)
	assert.Equal(t, 2, g.ConnectionCount())
}

// --- Scenario D ---

func TestScenarioRemoveNodeCascades(t *testing.T) {
	g := newTestGraph()
	in, cc, out := NewInputNode("Input"), NewColorCorrectNode("ColorCorrect"), NewOutputNode("Output")
	mustAdd(t, g, in, cc, out)
	_, err := g.AddConnection(in.Output(0), cc.Input(0))
	require.NoError(t, err)
	_, err = g.AddConnection(cc.Output(0), out.Input(0))
	require.NoError(t, err)

	require.True(t, g.RemoveNode(cc.ID))
	assert.Empty(t, g.Connections())
	assert.Empty(t, g.ConnectionsOf(in.ID))
	assert.Empty(t, g.ConnectionsOf(out.ID))
	assert.Nil(t, g.IncomingConnection(out.Input(0)))
	assert.Equal(t, []*Node{in, out}, g.Nodes())
	assert.Nil(t, cc.Graph())

	assert.False(t, g.RemoveNode(cc.ID), "second removal is a no-op")
}

// --- Connection rules ---

func TestAddConnectionNormalizesDirection(t *testing.T) {
	g := newTestGraph()
	in, out := NewInputNode("in"), NewOutputNode("out")
	mustAdd(t, g, in, out)

	c, err := g.AddConnection(out.Input(0), in.Output(0))
	require.NoError(t, err)
	assert.Same(t, in.Output(0), c.Source)
	assert.Same(t, out.Input(0), c.Dest)
}

func TestAddConnectionRules(t *testing.T) {
	g := newTestGraph()
	a, b, c := NewColorCorrectNode("a"), NewColorCorrectNode("b"), NewColorCorrectNode("c")
	mustAdd(t, g, a, b, c)
	_, err := g.AddConnection(a.Output(0), b.Input(0))
	require.NoError(t, err)

	tests := []struct {
		name string
		src  *Port
		dst  *Port
		rule ConnectionRule
	}{
		{"same node", a.Output(0), a.Input(0), RuleSameNode},
		{"output to output", a.Output(0), c.Output(0), RuleSameDirection},
		{"input to input", b.Input(0), c.Input(0), RuleSameDirection},
		{"fan-in", c.Output(0), b.Input(0), RuleFanIn},
		{"nil", nil, b.Input(0), RuleNilPort},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := append([]*Connection(nil), g.Connections()...)
			_, err := g.AddConnection(tt.src, tt.dst)
			var ice *InvalidConnectionError
			require.ErrorAs(t, err, &ice)
			assert.Equal(t, tt.rule, ice.Rule)
			assert.Equal(t, before, g.Connections(), "graph must be unchanged")
		})
	}
}

func TestAddConnectionFanOut(t *testing.T) {
	g := newTestGraph()
	src := NewInputNode("src")
	o1, o2 := NewOutputNode("o1"), NewOutputNode("o2")
	mustAdd(t, g, src, o1, o2)
	_, err := g.AddConnection(src.Output(0), o1.Input(0))
	require.NoError(t, err)
	_, err = g.AddConnection(src.Output(0), o2.Input(0))
	require.NoError(t, err)
	assert.Len(t, g.OutgoingConnections(src.Output(0)), 2)
}

func TestAddConnectionForeignPort(t *testing.T) {
	g := newTestGraph()
	in := NewInputNode("in")
	mustAdd(t, g, in)
	stray := NewOutputNode("stray")

	_, err := g.AddConnection(in.Output(0), stray.Input(0))
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "port", nf.Kind)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveConnectionAndDisconnect(t *testing.T) {
	g := newTestGraph()
	src := NewInputNode("src")
	o1, o2 := NewOutputNode("o1"), NewOutputNode("o2")
	mustAdd(t, g, src, o1, o2)
	c1, _ := g.AddConnection(src.Output(0), o1.Input(0))
	_, _ = g.AddConnection(src.Output(0), o2.Input(0))

	assert.True(t, g.RemoveConnection(c1.ID))
	assert.False(t, g.RemoveConnection(c1.ID))
	assert.Nil(t, g.Connection(c1.ID))
	assert.Nil(t, g.IncomingConnection(o1.Input(0)))

	// The freed input accepts a new connection.
	_, err := g.AddConnection(src.Output(0), o1.Input(0))
	require.NoError(t, err)

	assert.Equal(t, 2, g.Disconnect(src.Output(0)))
	assert.Zero(t, g.ConnectionCount())
	assert.Zero(t, g.Disconnect(src.Output(0)))
}

// --- Properties ---

// randomGraph builds n nodes of mixed kinds and tries a batch of random
// connections, ignoring rejections.
func randomGraph(r *rand.Rand, n int) *NodeGraph {
	g := newTestGraph()
	for i := 0; i < n; i++ {
		var node *Node
		switch r.Intn(4) {
		case 0:
			node = NewInputNode("in")
		case 1:
			node = NewColorCorrectNode("cc")
		case 2:
			node = NewEffectNode("fx", EffectInvert)
		default:
			node = NewOutputNode("out")
		}
		_ = g.AddNode(node)
	}
	ports := allPorts(g)
	for i := 0; i < n*3; i++ {
		_, _ = g.AddConnection(ports[r.Intn(len(ports))], ports[r.Intn(len(ports))])
	}
	return g
}

func allPorts(g *NodeGraph) []*Port {
	var ports []*Port
	for _, n := range g.Nodes() {
		ports = append(ports, n.Inputs()...)
		ports = append(ports, n.Outputs()...)
	}
	return ports
}

func TestPropertyValidPairsConnectOnce(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for iter := 0; iter < 50; iter++ {
		g := newTestGraph()
		for i := 0; i < 6; i++ {
			mustAdd(t, g, NewColorCorrectNode("cc"))
		}
		nodes := g.Nodes()
		a := nodes[r.Intn(len(nodes))]
		b := nodes[r.Intn(len(nodes))]
		if a == b {
			continue
		}
		c, err := g.AddConnection(a.Output(0), b.Input(0))
		require.NoError(t, err)
		count := 0
		for _, x := range g.Connections() {
			if x == c {
				count++
			}
		}
		assert.Equal(t, 1, count)
	}
}

func TestPropertyNoDanglingAfterRemove(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for iter := 0; iter < 50; iter++ {
		g := randomGraph(r, 8)
		for g.NodeCount() > 0 {
			nodes := g.Nodes()
			victim := nodes[r.Intn(len(nodes))]
			require.True(t, g.RemoveNode(victim.ID))
			for _, c := range g.Connections() {
				assert.NotSame(t, victim, c.Source.Node())
				assert.NotSame(t, victim, c.Dest.Node())
				assert.Same(t, c.Source.Node(), g.Node(c.Source.Node().ID))
				assert.Same(t, c.Dest.Node(), g.Node(c.Dest.Node().ID))
			}
		}
	}
}

func TestPropertyFanInAtMostOne(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	g := randomGraph(r, 12)
	seen := make(map[*Port]bool)
	for _, c := range g.Connections() {
		assert.Equal(t, PortOutput, c.Source.Direction)
		assert.Equal(t, PortInput, c.Dest.Direction)
		assert.False(t, seen[c.Dest], "input %s has two connections", c.Dest)
		seen[c.Dest] = true
	}
}

// --- Tick ---

func TestTickCallsOnTickInOrder(t *testing.T) {
	g := newTestGraph()
	var calls []string
	for _, name := range []string{"a", "b", "c"} {
		n := NewInputNode(name)
		if name != "b" {
			n.OnTick = func(dt float64) {
				calls = append(calls, n.Name)
				assert.Equal(t, 0.5, dt)
			}
		}
		mustAdd(t, g, n)
	}
	g.Tick(0.5)
	assert.Equal(t, []string{"a", "c"}, calls)
}

func TestTickRemovalDuringCallback(t *testing.T) {
	g := newTestGraph()
	a, b := NewInputNode("a"), NewInputNode("b")
	ran := false
	a.OnTick = func(float64) { g.RemoveNode(b.ID) }
	b.OnTick = func(float64) { ran = true }
	mustAdd(t, g, a, b)

	g.Tick(1)
	assert.False(t, ran, "b removed earlier in the same tick")
	assert.Equal(t, 1, g.NodeCount())

	var added *Node
	a.OnTick = func(float64) {
		if added == nil {
			added = NewInputNode("c")
			added.OnTick = func(float64) { ran = true }
			mustAdd(t, g, added)
		}
	}
	g.Tick(1)
	assert.False(t, ran, "nodes added during a tick wait for the next one")
	g.Tick(1)
	assert.True(t, ran)
}

func TestDefaultGraph(t *testing.T) {
	g := NewDefaultGraph(DefaultConfig())
	require.Equal(t, 3, g.NodeCount())
	require.Equal(t, 2, g.ConnectionCount())
	nodes := g.Nodes()
	assert.Equal(t, KindInput, nodes[0].Kind)
	assert.Equal(t, KindColorCorrect, nodes[1].Kind)
	assert.Equal(t, KindOutput, nodes[2].Kind)
	assert.Less(t, nodes[0].X, nodes[1].X)
}

func TestErrorsMatchSentinels(t *testing.T) {
	err := error(&NotFoundError{Kind: "node", ID: "x"})
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrInvalidConnection))
	assert.Contains(t, err.Error(), `node "x"`)
}
