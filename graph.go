package waya

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Connection is a directed edge from an output port to an input port on a
// different node. Ports are referenced by identity.
type Connection struct {
	ID     string
	Source *Port // always an output port
	Dest   *Port // always an input port
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s -> %s", c.Source, c.Dest)
}

// NodeGraph owns a set of nodes and the connections between their ports.
// Nodes and connections iterate in insertion order. A NodeGraph is not safe
// for concurrent use; the host serializes access.
type NodeGraph struct {
	nodes    []*Node
	byID     map[NodeID]*Node
	conns    []*Connection
	incoming map[*Port]*Connection

	evaluators map[string]Evaluator
	layout     Layout
	debug      bool
	log        *zap.Logger
}

// NewNodeGraph creates an empty graph using cfg's layout and logger.
func NewNodeGraph(cfg Config) *NodeGraph {
	return &NodeGraph{
		byID:       make(map[NodeID]*Node),
		incoming:   make(map[*Port]*Connection),
		evaluators: make(map[string]Evaluator),
		layout:     cfg.Layout,
		debug:      cfg.Debug,
		log:        cfg.logger().Named("graph"),
	}
}

// NewDefaultGraph creates the starter graph of a new project:
// Input -> ColorCorrect -> Output, laid out left to right.
func NewDefaultGraph(cfg Config) *NodeGraph {
	g := NewNodeGraph(cfg)
	in := NewInputNode("Input")
	cc := NewColorCorrectNode("Color Correct")
	out := NewOutputNode("Output")
	step := cfg.Layout.NodeWidth + 60
	in.SetPosition(40, 80)
	cc.SetPosition(40+step, 80)
	out.SetPosition(40+2*step, 80)
	for _, n := range []*Node{in, cc, out} {
		// Fresh ids cannot collide.
		_ = g.AddNode(n)
	}
	_, _ = g.AddConnection(in.Output(0), cc.Input(0))
	_, _ = g.AddConnection(cc.Output(0), out.Input(0))
	return g
}

// Layout returns the geometry used for hit testing.
func (g *NodeGraph) Layout() Layout {
	return g.layout
}

// AddNode inserts n into the graph. An empty ID is replaced by a generated
// one. A caller-supplied ID already in use returns ErrDuplicateID.
func (g *NodeGraph) AddNode(n *Node) error {
	if n == nil {
		return fmt.Errorf("waya: add node: nil node")
	}
	if n.graph != nil {
		return fmt.Errorf("waya: add node %q: already in a graph", n.ID)
	}
	if n.ID == "" {
		n.ID = newNodeID()
		for g.byID[n.ID] != nil {
			n.ID = newNodeID()
		}
	} else if g.byID[n.ID] != nil {
		return fmt.Errorf("waya: add node %q: %w", n.ID, ErrDuplicateID)
	}
	n.graph = g
	g.nodes = append(g.nodes, n)
	g.byID[n.ID] = n
	g.log.Debug("node added", zap.String("id", string(n.ID)), zap.Stringer("kind", n.Kind))
	g.debugCheck("add node")
	return nil
}

// RemoveNode removes the node and every connection touching any of its
// ports. It reports whether the node was present.
func (g *NodeGraph) RemoveNode(id NodeID) bool {
	n := g.byID[id]
	if n == nil {
		return false
	}
	kept := g.conns[:0]
	for _, c := range g.conns {
		if c.Source.node == n || c.Dest.node == n {
			delete(g.incoming, c.Dest)
			continue
		}
		kept = append(kept, c)
	}
	clearTail(g.conns, len(kept))
	g.conns = kept

	for i, m := range g.nodes {
		if m == n {
			copy(g.nodes[i:], g.nodes[i+1:])
			g.nodes[len(g.nodes)-1] = nil
			g.nodes = g.nodes[:len(g.nodes)-1]
			break
		}
	}
	delete(g.byID, id)
	n.graph = nil
	g.log.Debug("node removed", zap.String("id", string(id)))
	g.debugCheck("remove node")
	return true
}

// AddConnection connects two ports. The ports may be given in either order;
// the output port always becomes the Source. Both ports must belong to nodes
// in this graph. Rule violations return *InvalidConnectionError and leave the
// graph unchanged.
func (g *NodeGraph) AddConnection(a, b *Port) (*Connection, error) {
	if a == nil || b == nil {
		return nil, &InvalidConnectionError{Rule: RuleNilPort, Source: a, Dest: b}
	}
	for _, p := range [2]*Port{a, b} {
		if p.node == nil || g.byID[p.node.ID] != p.node {
			return nil, fmt.Errorf("waya: connect: %w", notFound("port", p.String()))
		}
	}
	if a.node == b.node {
		return nil, &InvalidConnectionError{Rule: RuleSameNode, Source: a, Dest: b}
	}
	if a.Direction == b.Direction {
		return nil, &InvalidConnectionError{Rule: RuleSameDirection, Source: a, Dest: b}
	}
	src, dst := a, b
	if src.Direction == PortInput {
		src, dst = dst, src
	}
	if g.incoming[dst] != nil {
		return nil, &InvalidConnectionError{Rule: RuleFanIn, Source: src, Dest: dst}
	}
	c := &Connection{ID: uuid.NewString(), Source: src, Dest: dst}
	g.conns = append(g.conns, c)
	g.incoming[dst] = c
	g.log.Debug("connected", zap.Stringer("conn", c))
	g.debugCheck("connect")
	return c, nil
}

// RemoveConnection removes a connection by id and reports whether it was
// present.
func (g *NodeGraph) RemoveConnection(id string) bool {
	for i, c := range g.conns {
		if c.ID == id {
			g.removeConnAt(i)
			return true
		}
	}
	return false
}

// Disconnect removes every connection touching p and returns how many were
// removed.
func (g *NodeGraph) Disconnect(p *Port) int {
	removed := 0
	for i := 0; i < len(g.conns); {
		c := g.conns[i]
		if c.Source == p || c.Dest == p {
			g.removeConnAt(i)
			removed++
			continue
		}
		i++
	}
	return removed
}

func (g *NodeGraph) removeConnAt(i int) {
	c := g.conns[i]
	delete(g.incoming, c.Dest)
	copy(g.conns[i:], g.conns[i+1:])
	g.conns[len(g.conns)-1] = nil
	g.conns = g.conns[:len(g.conns)-1]
	g.log.Debug("disconnected", zap.Stringer("conn", c))
	g.debugCheck("disconnect")
}

// Node returns the node with the given id, or nil.
func (g *NodeGraph) Node(id NodeID) *Node {
	return g.byID[id]
}

// NodeByName returns the first node with the given name, or nil.
func (g *NodeGraph) NodeByName(name string) *Node {
	for _, n := range g.nodes {
		if n.Name == name {
			return n
		}
	}
	return nil
}

// Nodes returns the nodes in insertion order. The returned slice MUST NOT be
// mutated.
func (g *NodeGraph) Nodes() []*Node {
	return g.nodes
}

// Connections returns the connections in insertion order. The returned slice
// MUST NOT be mutated.
func (g *NodeGraph) Connections() []*Connection {
	return g.conns
}

// Connection returns the connection with the given id, or nil.
func (g *NodeGraph) Connection(id string) *Connection {
	for _, c := range g.conns {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ConnectionsOf returns every connection touching a port of the given node.
func (g *NodeGraph) ConnectionsOf(id NodeID) []*Connection {
	n := g.byID[id]
	if n == nil {
		return nil
	}
	var out []*Connection
	for _, c := range g.conns {
		if c.Source.node == n || c.Dest.node == n {
			out = append(out, c)
		}
	}
	return out
}

// IncomingConnection returns the connection feeding input port p, or nil.
func (g *NodeGraph) IncomingConnection(p *Port) *Connection {
	return g.incoming[p]
}

// OutgoingConnections returns the connections leaving output port p.
func (g *NodeGraph) OutgoingConnections(p *Port) []*Connection {
	var out []*Connection
	for _, c := range g.conns {
		if c.Source == p {
			out = append(out, c)
		}
	}
	return out
}

// NodeCount returns the number of nodes.
func (g *NodeGraph) NodeCount() int { return len(g.nodes) }

// ConnectionCount returns the number of connections.
func (g *NodeGraph) ConnectionCount() int { return len(g.conns) }

// Tick calls each node's OnTick in insertion order. Nodes added by a callback
// are first ticked on the next tick; nodes removed by a callback are skipped
// for the rest of this one.
func (g *NodeGraph) Tick(dt float64) {
	if len(g.nodes) == 0 {
		return
	}
	snapshot := make([]*Node, len(g.nodes))
	copy(snapshot, g.nodes)
	for _, n := range snapshot {
		// Removed by an earlier callback this tick.
		if n.graph != g {
			continue
		}
		if n.OnTick != nil {
			n.OnTick(dt)
		}
	}
}

// clearTail nils out s[from:] so removed entries can be collected.
func clearTail[T any](s []*T, from int) {
	for i := from; i < len(s); i++ {
		s[i] = nil
	}
}
