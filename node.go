package waya

import (
	"fmt"

	"github.com/google/uuid"
)

// NodeID identifies a node within a graph.
type NodeID string

func newNodeID() NodeID {
	return NodeID(uuid.NewString())
}

// Effect variants understood by KindEffect nodes.
const (
	EffectInvert    = "invert"
	EffectGrayscale = "grayscale"
	EffectSepia     = "sepia"
)

// Port is a typed connection point owned by exactly one node. Ports are
// created with their node and never outlive it.
type Port struct {
	Name      string
	Direction PortDirection
	Type      DataType
	Index     int // stable position within the node's inputs or outputs

	node *Node
}

// Node returns the owning node.
func (p *Port) Node() *Node {
	return p.node
}

func (p *Port) String() string {
	if p == nil {
		return "<nil>"
	}
	owner := "?"
	if p.node != nil {
		owner = p.node.Name
	}
	return fmt.Sprintf("%s.%s(%s)", owner, p.Name, p.Direction)
}

// PortSpec describes a port for NewCustomNode.
type PortSpec struct {
	Name string
	Type DataType
}

// Node is a typed unit of the compositor graph. Position is layout only and
// has no effect on evaluation order.
type Node struct {
	ID      NodeID
	Name    string
	Kind    NodeKind
	Variant string // effect name for KindEffect, evaluator name for KindCustom

	X, Y float64

	// Params holds kind-specific numeric parameters.
	Params map[string]float64

	// OnTick, if set, is called once per NodeGraph.Tick with the frame delta.
	OnTick func(dt float64)

	inputs  []*Port
	outputs []*Port
	graph   *NodeGraph
}

func newNode(kind NodeKind, name string) *Node {
	return &Node{
		Name:   name,
		Kind:   kind,
		Params: make(map[string]float64),
	}
}

// NewInputNode creates a source node with a single image output. Its color
// comes from the r, g, b and a parameters (opaque white by default).
func NewInputNode(name string) *Node {
	n := newNode(KindInput, name)
	n.addPort(PortOutput, "image", DataImage)
	n.Params["r"], n.Params["g"], n.Params["b"], n.Params["a"] = 1, 1, 1, 1
	return n
}

// NewColorCorrectNode creates an image-in, image-out node with brightness,
// contrast and saturation parameters at their neutral values.
func NewColorCorrectNode(name string) *Node {
	n := newNode(KindColorCorrect, name)
	n.addPort(PortInput, "image", DataImage)
	n.addPort(PortOutput, "image", DataImage)
	n.Params["brightness"] = 0
	n.Params["contrast"] = 1
	n.Params["saturation"] = 1
	return n
}

// NewEffectNode creates an image-in, image-out node applying the named effect
// (EffectInvert, EffectGrayscale or EffectSepia) blended by the mix parameter.
func NewEffectNode(name, variant string) *Node {
	n := newNode(KindEffect, name)
	n.Variant = variant
	n.addPort(PortInput, "image", DataImage)
	n.addPort(PortOutput, "image", DataImage)
	n.Params["mix"] = 1
	return n
}

// NewOutputNode creates a terminal node with a single image input.
func NewOutputNode(name string) *Node {
	n := newNode(KindOutput, name)
	n.addPort(PortInput, "image", DataImage)
	return n
}

// NewCustomNode creates a node with caller-defined ports. Evaluation looks up
// variant in the graph's registered evaluators.
func NewCustomNode(name, variant string, inputs, outputs []PortSpec) *Node {
	n := newNode(KindCustom, name)
	n.Variant = variant
	for _, s := range inputs {
		n.addPort(PortInput, s.Name, s.Type)
	}
	for _, s := range outputs {
		n.addPort(PortOutput, s.Name, s.Type)
	}
	return n
}

func (n *Node) addPort(dir PortDirection, name string, typ DataType) *Port {
	p := &Port{Name: name, Direction: dir, Type: typ, node: n}
	if dir == PortInput {
		p.Index = len(n.inputs)
		n.inputs = append(n.inputs, p)
	} else {
		p.Index = len(n.outputs)
		n.outputs = append(n.outputs, p)
	}
	return p
}

// Inputs returns the node's input ports in order. The returned slice MUST NOT
// be mutated.
func (n *Node) Inputs() []*Port {
	return n.inputs
}

// Outputs returns the node's output ports in order. The returned slice MUST
// NOT be mutated.
func (n *Node) Outputs() []*Port {
	return n.outputs
}

// Input returns the input port at index i, or nil.
func (n *Node) Input(i int) *Port {
	if i < 0 || i >= len(n.inputs) {
		return nil
	}
	return n.inputs[i]
}

// Output returns the output port at index i, or nil.
func (n *Node) Output(i int) *Port {
	if i < 0 || i >= len(n.outputs) {
		return nil
	}
	return n.outputs[i]
}

// Port returns the port with the given direction and index, or nil.
func (n *Node) Port(dir PortDirection, i int) *Port {
	if dir == PortInput {
		return n.Input(i)
	}
	return n.Output(i)
}

// PortByName returns the first port with the given direction and name.
func (n *Node) PortByName(dir PortDirection, name string) *Port {
	ports := n.inputs
	if dir == PortOutput {
		ports = n.outputs
	}
	for _, p := range ports {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Graph returns the graph the node belongs to, or nil when detached.
func (n *Node) Graph() *NodeGraph {
	return n.graph
}

// SetPosition moves the node in editor space.
func (n *Node) SetPosition(x, y float64) {
	n.X, n.Y = x, y
}

// SetParam sets a kind-specific parameter.
func (n *Node) SetParam(key string, v float64) {
	n.Params[key] = v
}

// Param returns a parameter value, or def when unset.
func (n *Node) Param(key string, def float64) float64 {
	if v, ok := n.Params[key]; ok {
		return v
	}
	return def
}
