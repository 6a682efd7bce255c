package waya

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// ProjectVersion is written to every project file.
const ProjectVersion = 1

// Project is the on-disk form of a session.
type Project struct {
	Version  int               `yaml:"version"`
	Name     string            `yaml:"name"`
	Settings map[string]string `yaml:"settings,omitempty"`
	Plugins  []string          `yaml:"plugins,omitempty"`
	Overlay  bool              `yaml:"overlay,omitempty"`
	Graph    GraphDoc          `yaml:"graph"`
	Timeline TimelineDoc       `yaml:"timeline"`
	Scene    SceneDoc          `yaml:"scene"`
	Camera   CameraDoc         `yaml:"camera"`
}

// GraphDoc lists nodes and connections in insertion order.
type GraphDoc struct {
	Nodes       []NodeDoc       `yaml:"nodes"`
	Connections []ConnectionDoc `yaml:"connections"`
}

// PortDoc declares one port of a custom node.
type PortDoc struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// NodeDoc is one node. Inputs and Outputs are set only for custom nodes;
// the built-in kinds recreate their own ports.
type NodeDoc struct {
	ID      string             `yaml:"id"`
	Name    string             `yaml:"name"`
	Kind    string             `yaml:"kind"`
	Variant string             `yaml:"variant,omitempty"`
	X       float64            `yaml:"x"`
	Y       float64            `yaml:"y"`
	Params  map[string]float64 `yaml:"params,omitempty"`
	Inputs  []PortDoc          `yaml:"inputs,omitempty"`
	Outputs []PortDoc          `yaml:"outputs,omitempty"`
}

// PortRef addresses a port by node id and index.
type PortRef struct {
	Node string `yaml:"node"`
	Port int    `yaml:"port"`
}

// ConnectionDoc joins an output port to an input port.
type ConnectionDoc struct {
	ID   string  `yaml:"id"`
	From PortRef `yaml:"from"`
	To   PortRef `yaml:"to"`
}

// TimelineDoc holds playback settings, the cursor and every keyframe.
type TimelineDoc struct {
	Speed     float64    `yaml:"speed"`
	StopAtEnd bool       `yaml:"stop_at_end"`
	Current   float64    `yaml:"current"`
	Keyframes []Keyframe `yaml:"keyframes"`
}

// ObjectDoc is one scene object with its transform.
type ObjectDoc struct {
	ID       string     `yaml:"id"`
	Name     string     `yaml:"name"`
	Type     string     `yaml:"type"`
	Position [3]float64 `yaml:"position"`
	Rotation [3]float64 `yaml:"rotation"`
	Scale    [3]float64 `yaml:"scale"`
	Visible  bool       `yaml:"visible"`
}

// SceneDoc lists scene objects and the selected object id.
type SceneDoc struct {
	Objects  []ObjectDoc `yaml:"objects"`
	Selected string      `yaml:"selected,omitempty"`
}

// CameraDoc stores camera placement and lens. Angles are in degrees.
type CameraDoc struct {
	Position [3]float64 `yaml:"position"`
	Pivot    [3]float64 `yaml:"pivot"`
	Yaw      float64    `yaml:"yaw"`
	Pitch    float64    `yaml:"pitch"`
	Roll     float64    `yaml:"roll"`
	FOV      float64    `yaml:"fov"`
	Near     float64    `yaml:"near"`
	Far      float64    `yaml:"far"`
}

// --- Snapshot ---

// Snapshot captures the session as a Project.
func (s *Session) Snapshot() (*Project, error) {
	if err := s.ready("snapshot"); err != nil {
		return nil, err
	}
	p := &Project{
		Version:  ProjectVersion,
		Name:     s.Name,
		Settings: s.Settings(),
		Plugins:  s.Plugins(),
		Overlay:  s.overlay,
	}

	for _, n := range s.graph.Nodes() {
		nd := NodeDoc{
			ID:      string(n.ID),
			Name:    n.Name,
			Kind:    n.Kind.String(),
			Variant: n.Variant,
			X:       n.X,
			Y:       n.Y,
			Params:  maps.Clone(n.Params),
		}
		if n.Kind == KindCustom {
			nd.Inputs = portDocs(n.Inputs())
			nd.Outputs = portDocs(n.Outputs())
		}
		p.Graph.Nodes = append(p.Graph.Nodes, nd)
	}
	for _, c := range s.graph.Connections() {
		p.Graph.Connections = append(p.Graph.Connections, ConnectionDoc{
			ID:   c.ID,
			From: PortRef{Node: string(c.Source.node.ID), Port: c.Source.Index},
			To:   PortRef{Node: string(c.Dest.node.ID), Port: c.Dest.Index},
		})
	}

	tl := s.timeline
	p.Timeline = TimelineDoc{
		Speed:     tl.Speed,
		StopAtEnd: tl.StopAtEnd,
		Current:   tl.CurrentTime(),
		Keyframes: tl.Keyframes(),
	}

	for _, o := range s.scene.Objects() {
		p.Scene.Objects = append(p.Scene.Objects, ObjectDoc{
			ID:       o.ID,
			Name:     o.Name,
			Type:     o.Type.String(),
			Position: o.Position,
			Rotation: o.Rotation,
			Scale:    o.Scale,
			Visible:  o.Visible,
		})
	}
	if sel := s.scene.Selected(); sel != nil {
		p.Scene.Selected = sel.ID
	}

	c := s.camera
	p.Camera = CameraDoc{
		Position: c.Position,
		Pivot:    c.Pivot,
		Yaw:      c.Yaw,
		Pitch:    c.Pitch,
		Roll:     c.Roll,
		FOV:      c.FOV,
		Near:     c.Near,
		Far:      c.Far,
	}
	return p, nil
}

func portDocs(ports []*Port) []PortDoc {
	out := make([]PortDoc, len(ports))
	for i, p := range ports {
		out[i] = PortDoc{Name: p.Name, Type: p.Type.String()}
	}
	return out
}

func portSpecs(docs []PortDoc) ([]PortSpec, error) {
	out := make([]PortSpec, len(docs))
	for i, d := range docs {
		t, ok := ParseDataType(d.Type)
		if !ok {
			return nil, fmt.Errorf("port %q: unknown type %q", d.Name, d.Type)
		}
		out[i] = PortSpec{Name: d.Name, Type: t}
	}
	return out, nil
}

// --- Restore ---

// Restore replaces the session's graph, timeline, scene and camera with the
// project's contents. On error the session is left unchanged.
func (s *Session) Restore(p *Project) error {
	if err := s.ready("restore"); err != nil {
		return err
	}
	if p.Version > ProjectVersion {
		return fmt.Errorf("waya: restore: project version %d is newer than %d", p.Version, ProjectVersion)
	}
	g, err := restoreGraph(s.cfg, p.Graph)
	if err != nil {
		return fmt.Errorf("waya: restore graph: %w", err)
	}
	// Evaluators are registered by the host, not stored in the file.
	g.evaluators = s.graph.evaluators

	tl := NewTimeline(s.cfg)
	if p.Timeline.Speed > 0 {
		tl.Speed = p.Timeline.Speed
	}
	tl.StopAtEnd = p.Timeline.StopAtEnd
	for _, kf := range p.Timeline.Keyframes {
		if err := tl.AddKeyframeEased(kf.Target, kf.Property, kf.Value, kf.Time, kf.Ease); err != nil {
			return fmt.Errorf("waya: restore timeline: %w", err)
		}
	}
	tl.SetCurrentTime(p.Timeline.Current)

	sc := NewScene(s.cfg)
	for _, od := range p.Scene.Objects {
		typ, ok := ParseObjectType(od.Type)
		if !ok {
			return fmt.Errorf("waya: restore object %q: unknown type %q", od.Name, od.Type)
		}
		o := &SceneObject{
			ID:       od.ID,
			Name:     od.Name,
			Type:     typ,
			Position: mgl64.Vec3(od.Position),
			Rotation: mgl64.Vec3(od.Rotation),
			Scale:    mgl64.Vec3(od.Scale),
			Visible:  od.Visible,
		}
		if err := sc.AddObject(o); err != nil {
			return fmt.Errorf("waya: restore scene: %w", err)
		}
	}
	if p.Scene.Selected != "" {
		sc.SelectObject(p.Scene.Selected)
	}

	cd := p.Camera
	if !finiteVec(cd.Position) || !finiteVec(cd.Pivot) ||
		!isFinite(cd.Yaw) || !isFinite(cd.Pitch) || !isFinite(cd.Roll) {
		return fmt.Errorf("waya: restore camera: non-finite value")
	}
	cam := NewCamera(s.cfg)
	if cd.FOV > 0 {
		cam.FOV = cd.FOV
	}
	if cd.Near > 0 && cd.Far > cd.Near {
		cam.Near, cam.Far = cd.Near, cd.Far
	}
	cam.Position = mgl64.Vec3(cd.Position)
	cam.Pivot = mgl64.Vec3(cd.Pivot)
	cam.Yaw, cam.Pitch, cam.Roll = cd.Yaw, clamp(cd.Pitch, -maxPitch, maxPitch), cd.Roll

	s.graph, s.timeline, s.scene, s.camera = g, tl, sc, cam
	s.settings = make(map[string]string, len(p.Settings))
	for k, v := range p.Settings {
		s.settings[k] = v
	}
	s.plugins = make(map[string]bool, len(p.Plugins))
	for _, name := range p.Plugins {
		s.plugins[name] = true
	}
	s.overlay = p.Overlay
	return nil
}

func restoreGraph(cfg Config, gd GraphDoc) (*NodeGraph, error) {
	g := NewNodeGraph(cfg)
	for _, nd := range gd.Nodes {
		kind, ok := ParseNodeKind(nd.Kind)
		if !ok {
			return nil, fmt.Errorf("node %q: unknown kind %q", nd.ID, nd.Kind)
		}
		var n *Node
		switch kind {
		case KindInput:
			n = NewInputNode(nd.Name)
		case KindColorCorrect:
			n = NewColorCorrectNode(nd.Name)
		case KindEffect:
			n = NewEffectNode(nd.Name, nd.Variant)
		case KindOutput:
			n = NewOutputNode(nd.Name)
		case KindCustom:
			ins, err := portSpecs(nd.Inputs)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", nd.ID, err)
			}
			outs, err := portSpecs(nd.Outputs)
			if err != nil {
				return nil, fmt.Errorf("node %q: %w", nd.ID, err)
			}
			n = NewCustomNode(nd.Name, nd.Variant, ins, outs)
		}
		n.ID = NodeID(nd.ID)
		n.SetPosition(nd.X, nd.Y)
		for k, v := range nd.Params {
			n.SetParam(k, v)
		}
		if err := g.AddNode(n); err != nil {
			return nil, err
		}
	}
	for _, cd := range gd.Connections {
		src, err := lookupPort(g, cd.From, PortOutput)
		if err != nil {
			return nil, err
		}
		dst, err := lookupPort(g, cd.To, PortInput)
		if err != nil {
			return nil, err
		}
		c, err := g.AddConnection(src, dst)
		if err != nil {
			return nil, err
		}
		if cd.ID != "" {
			c.ID = cd.ID
		}
	}
	return g, nil
}

func lookupPort(g *NodeGraph, ref PortRef, dir PortDirection) (*Port, error) {
	n := g.Node(NodeID(ref.Node))
	if n == nil {
		return nil, notFound("node", ref.Node)
	}
	p := n.Port(dir, ref.Port)
	if p == nil {
		return nil, notFound("port", fmt.Sprintf("%s[%s %d]", ref.Node, dir, ref.Port))
	}
	return p, nil
}

// --- Encoding ---

// EncodeProject writes p as YAML.
func EncodeProject(w io.Writer, p *Project) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("waya: encode project: %w", err)
	}
	return enc.Close()
}

// DecodeProject reads a YAML project.
func DecodeProject(r io.Reader) (*Project, error) {
	var p Project
	if err := yaml.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("waya: decode project: %w", err)
	}
	return &p, nil
}

// SaveProject snapshots s and writes it to path.
func SaveProject(path string, s *Session) error {
	p, err := s.Snapshot()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := EncodeProject(&buf, p); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("waya: save project: %w", err)
	}
	return nil
}

// LoadProject reads a project file from path.
func LoadProject(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("waya: load project: %w", err)
	}
	defer f.Close()
	return DecodeProject(f)
}
