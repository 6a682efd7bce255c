package waya

import (
	"fmt"

	"go.uber.org/zap"
)

// Evaluator computes a custom node's outputs from its inputs. It must return
// one color per output port; missing entries are treated as transparent.
type Evaluator func(n *Node, inputs []Color) []Color

// RegisterEvaluator binds an Evaluator to a KindCustom variant name.
// Registering the same name again replaces the previous function.
func (g *NodeGraph) RegisterEvaluator(variant string, fn Evaluator) {
	g.evaluators[variant] = fn
}

// TopologicalOrder returns the nodes ordered so that every connection's
// source node precedes its destination node. Ties are broken by insertion
// order. A cycle returns ErrCycle.
func (g *NodeGraph) TopologicalOrder() ([]*Node, error) {
	indeg := make(map[*Node]int, len(g.nodes))
	next := make(map[*Node][]*Node, len(g.nodes))
	for _, c := range g.conns {
		s, d := c.Source.node, c.Dest.node
		indeg[d]++
		next[s] = append(next[s], d)
	}

	order := make([]*Node, 0, len(g.nodes))
	done := make(map[*Node]bool, len(g.nodes))
	for len(order) < len(g.nodes) {
		var pick *Node
		for _, n := range g.nodes {
			if !done[n] && indeg[n] == 0 {
				pick = n
				break
			}
		}
		if pick == nil {
			return order, fmt.Errorf("waya: topological order: %w", ErrCycle)
		}
		done[pick] = true
		order = append(order, pick)
		for _, d := range next[pick] {
			indeg[d]--
		}
	}
	return order, nil
}

// Evaluate propagates colors through the graph in topological order and
// returns the color arriving at each output node. Unconnected inputs read as
// transparent black.
func (g *NodeGraph) Evaluate() (map[NodeID]Color, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	values := make(map[*Port]Color)
	results := make(map[NodeID]Color)
	for _, n := range order {
		in := make([]Color, len(n.inputs))
		for i, p := range n.inputs {
			if c := g.incoming[p]; c != nil {
				in[i] = values[c.Source]
			}
		}
		out := g.evalNode(n, in)
		for i, p := range n.outputs {
			if i < len(out) {
				values[p] = out[i]
			}
		}
		if n.Kind == KindOutput {
			var c Color
			if len(in) > 0 {
				c = in[0]
			}
			results[n.ID] = c
		}
	}
	return results, nil
}

func (g *NodeGraph) evalNode(n *Node, in []Color) []Color {
	first := func() Color {
		if len(in) > 0 {
			return in[0]
		}
		return Color{}
	}
	switch n.Kind {
	case KindInput:
		c := Color{
			R: n.Param("r", 1),
			G: n.Param("g", 1),
			B: n.Param("b", 1),
			A: n.Param("a", 1),
		}
		return fill(len(n.outputs), c.clamp01())
	case KindColorCorrect:
		return fill(len(n.outputs), colorCorrect(first(),
			n.Param("brightness", 0), n.Param("contrast", 1), n.Param("saturation", 1)))
	case KindEffect:
		return fill(len(n.outputs), applyEffect(first(), n.Variant, n.Param("mix", 1)))
	case KindOutput:
		return nil
	case KindCustom:
		if fn := g.evaluators[n.Variant]; fn != nil {
			return fn(n, in)
		}
		g.log.Debug("no evaluator, passing through", zap.String("variant", n.Variant))
		out := make([]Color, len(n.outputs))
		copy(out, in)
		return out
	}
	return nil
}

func fill(n int, c Color) []Color {
	out := make([]Color, n)
	for i := range out {
		out[i] = c
	}
	return out
}

func colorCorrect(c Color, brightness, contrast, saturation float64) Color {
	adj := func(v float64) float64 {
		return (v-0.5)*contrast + 0.5 + brightness
	}
	r, g, b := adj(c.R), adj(c.G), adj(c.B)
	l := 0.299*r + 0.587*g + 0.114*b
	return Color{
		R: l + (r-l)*saturation,
		G: l + (g-l)*saturation,
		B: l + (b-l)*saturation,
		A: c.A,
	}.clamp01()
}

func applyEffect(c Color, variant string, mix float64) Color {
	var fx Color
	switch variant {
	case EffectInvert:
		fx = Color{1 - c.R, 1 - c.G, 1 - c.B, c.A}
	case EffectGrayscale:
		l := c.Luma()
		fx = Color{l, l, l, c.A}
	case EffectSepia:
		fx = Color{
			R: 0.393*c.R + 0.769*c.G + 0.189*c.B,
			G: 0.349*c.R + 0.686*c.G + 0.168*c.B,
			B: 0.272*c.R + 0.534*c.G + 0.131*c.B,
			A: c.A,
		}
	default:
		return c
	}
	return lerpColor(c, fx, clamp(mix, 0, 1)).clamp01()
}
