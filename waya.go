package waya

import "math"

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Colors are the values that flow along image and color ports during graph
// evaluation.
type Color struct {
	R float64 `yaml:"r"`
	G float64 `yaml:"g"`
	B float64 `yaml:"b"`
	A float64 `yaml:"a"`
}

// ColorWhite is opaque white.
var ColorWhite = Color{1, 1, 1, 1}

// clamp01 limits every channel to [0, 1].
func (c Color) clamp01() Color {
	return Color{clamp(c.R, 0, 1), clamp(c.G, 0, 1), clamp(c.B, 0, 1), clamp(c.A, 0, 1)}
}

// Luma returns the Rec. 601 luma of the color.
func (c Color) Luma() float64 {
	return 0.299*c.R + 0.587*c.G + 0.114*c.B
}

// lerpColor mixes a and b by t in [0, 1].
func lerpColor(a, b Color, t float64) Color {
	return Color{
		R: lerp(a.R, b.R, t),
		G: lerp(a.G, b.G, t),
		B: lerp(a.B, b.B, t),
		A: lerp(a.A, b.A, t),
	}
}

// Vec2 is a 2D vector used for editor-space positions and offsets.
type Vec2 struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in editor space. The origin is at the
// top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// NodeKind tags the behavior of a compositor node.
type NodeKind uint8

const (
	KindInput        NodeKind = iota // produces a color from its parameters
	KindColorCorrect                 // brightness / contrast / saturation
	KindEffect                       // named effect selected by Node.Variant
	KindOutput                       // terminal node; evaluation results are read here
	KindCustom                       // user-defined ports, evaluated by a registered Evaluator
)

var nodeKindNames = [...]string{
	KindInput:        "input",
	KindColorCorrect: "color-correct",
	KindEffect:       "effect",
	KindOutput:       "output",
	KindCustom:       "custom",
}

func (k NodeKind) String() string {
	if int(k) < len(nodeKindNames) {
		return nodeKindNames[k]
	}
	return "unknown"
}

// ParseNodeKind maps a kind name (as returned by String) back to a NodeKind.
func ParseNodeKind(s string) (NodeKind, bool) {
	for i, name := range nodeKindNames {
		if name == s {
			return NodeKind(i), true
		}
	}
	return 0, false
}

// PortDirection says whether a port consumes or produces a value.
type PortDirection uint8

const (
	PortInput  PortDirection = iota // accepts at most one incoming connection
	PortOutput                      // fans out to any number of inputs
)

func (d PortDirection) String() string {
	if d == PortOutput {
		return "output"
	}
	return "input"
}

// DataType tags the kind of value a port carries.
type DataType uint8

const (
	DataImage DataType = iota
	DataColor
	DataScalar
)

func (t DataType) String() string {
	switch t {
	case DataColor:
		return "color"
	case DataScalar:
		return "scalar"
	default:
		return "image"
	}
}

// ParseDataType maps a type name back to a DataType.
func ParseDataType(s string) (DataType, bool) {
	for _, t := range []DataType{DataImage, DataColor, DataScalar} {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// ObjectType tags a scene object.
type ObjectType uint8

const (
	ObjectMesh         ObjectType = iota // renderable geometry
	ObjectLight                          // light source
	ObjectCameraTarget                   // point the camera orbits or frames
	ObjectRig                            // animated rig / armature
)

var objectTypeNames = [...]string{
	ObjectMesh:         "mesh",
	ObjectLight:        "light",
	ObjectCameraTarget: "camera-target",
	ObjectRig:          "rig",
}

func (t ObjectType) String() string {
	if int(t) < len(objectTypeNames) {
		return objectTypeNames[t]
	}
	return "unknown"
}

// ParseObjectType maps a type name back to an ObjectType.
func ParseObjectType(s string) (ObjectType, bool) {
	for i, name := range objectTypeNames {
		if name == s {
			return ObjectType(i), true
		}
	}
	return 0, false
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteVec(v [3]float64) bool {
	return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2])
}
