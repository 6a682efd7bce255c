package waya

import "math"

const defaultDragDeadZone = 4.0 // editor units

// HitCircle is a circular hit area in editor space.
type HitCircle struct {
	CenterX, CenterY, Radius float64
}

// Contains reports whether (x, y) lies inside or on the circle.
func (c HitCircle) Contains(x, y float64) bool {
	dx := x - c.CenterX
	dy := y - c.CenterY
	return dx*dx+dy*dy <= c.Radius*c.Radius
}

// --- Geometry ---

// Anchor returns the port's connection point in editor space. Inputs sit on
// the node's left edge, outputs on its right edge, one row per index below
// the header.
func (p *Port) Anchor(l Layout) Vec2 {
	n := p.node
	x := n.X
	if p.Direction == PortOutput {
		x += l.NodeWidth
	}
	y := n.Y + l.HeaderHeight + l.PortSpacing*(float64(p.Index)+0.5)
	return Vec2{X: x, Y: y}
}

// Bounds returns the node's rectangle in editor space.
func (n *Node) Bounds(l Layout) Rect {
	rows := max(len(n.inputs), len(n.outputs), 1)
	return Rect{
		X:      n.X,
		Y:      n.Y,
		Width:  l.NodeWidth,
		Height: l.HeaderHeight + l.PortSpacing*float64(rows),
	}
}

// --- Hit testing ---

// FindPortAt returns the port whose anchor lies within the layout's hit
// radius of (x, y). Nodes are tested topmost first (last inserted).
func (g *NodeGraph) FindPortAt(x, y float64) (*Port, bool) {
	var best *Port
	bestDist := math.Inf(1)
	for i := len(g.nodes) - 1; i >= 0; i-- {
		n := g.nodes[i]
		for _, ports := range [2][]*Port{n.inputs, n.outputs} {
			for _, p := range ports {
				a := p.Anchor(g.layout)
				hit := HitCircle{CenterX: a.X, CenterY: a.Y, Radius: g.layout.PortHitRadius}
				if !hit.Contains(x, y) {
					continue
				}
				d := math.Hypot(x-a.X, y-a.Y)
				if d < bestDist {
					best, bestDist = p, d
				}
			}
		}
		if best != nil {
			return best, true
		}
	}
	return nil, false
}

// NodeAt returns the topmost node whose bounds contain (x, y).
func (g *NodeGraph) NodeAt(x, y float64) (*Node, bool) {
	for i := len(g.nodes) - 1; i >= 0; i-- {
		n := g.nodes[i]
		if n.Bounds(g.layout).Contains(x, y) {
			return n, true
		}
	}
	return nil, false
}

// --- Pointer gestures ---

// GestureKind identifies what a pointer press grabbed.
type GestureKind uint8

const (
	GestureNone    GestureKind = iota
	GestureConnect             // press started on a port
	GestureMove                // press started on a node body
)

// PointerTracker turns raw pointer press/move/release events into graph
// edits: press on a port and release on another port connects them; press
// on a node body and drag past the dead zone moves it. It holds no host
// state, so any frontend can feed it.
type PointerTracker struct {
	Graph        *NodeGraph
	DragDeadZone float64

	kind           GestureKind
	port           *Port
	node           *Node
	startX, startY float64
	offX, offY     float64
	dragging       bool
	curX, curY     float64
}

// NewPointerTracker creates a tracker for g with the default dead zone.
func NewPointerTracker(g *NodeGraph) *PointerTracker {
	return &PointerTracker{Graph: g, DragDeadZone: defaultDragDeadZone}
}

// Active reports the current gesture.
func (t *PointerTracker) Active() GestureKind {
	return t.kind
}

// PendingWire returns the source port and cursor position of an in-progress
// connect gesture, for drawing a rubber-band line.
func (t *PointerTracker) PendingWire() (*Port, Vec2, bool) {
	if t.kind != GestureConnect {
		return nil, Vec2{}, false
	}
	return t.port, Vec2{X: t.curX, Y: t.curY}, true
}

// Press starts a gesture at (x, y). Ports take priority over node bodies.
func (t *PointerTracker) Press(x, y float64) GestureKind {
	t.reset()
	t.startX, t.startY = x, y
	t.curX, t.curY = x, y
	if p, ok := t.Graph.FindPortAt(x, y); ok {
		t.kind, t.port = GestureConnect, p
		return t.kind
	}
	if n, ok := t.Graph.NodeAt(x, y); ok {
		t.kind, t.node = GestureMove, n
		t.offX, t.offY = x-n.X, y-n.Y
	}
	return t.kind
}

// Move updates the gesture with the current cursor position.
func (t *PointerTracker) Move(x, y float64) {
	t.curX, t.curY = x, y
	if t.kind != GestureMove {
		return
	}
	if !t.dragging {
		dx, dy := x-t.startX, y-t.startY
		if dx*dx+dy*dy < t.DragDeadZone*t.DragDeadZone {
			return
		}
		t.dragging = true
	}
	t.node.SetPosition(x-t.offX, y-t.offY)
}

// Release ends the gesture. A connect gesture released over another port
// attempts AddConnection and returns its result; otherwise both results are
// nil.
func (t *PointerTracker) Release(x, y float64) (*Connection, error) {
	defer t.reset()
	if t.kind != GestureConnect {
		t.Move(x, y)
		return nil, nil
	}
	target, ok := t.Graph.FindPortAt(x, y)
	if !ok || target == t.port {
		return nil, nil
	}
	return t.Graph.AddConnection(t.port, target)
}

// Cancel abandons the current gesture.
func (t *PointerTracker) Cancel() {
	t.reset()
}

func (t *PointerTracker) reset() {
	t.kind = GestureNone
	t.port = nil
	t.node = nil
	t.dragging = false
}
