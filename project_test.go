package waya

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildProjectSession fills a session with one of everything a project file
// carries.
func buildProjectSession(t *testing.T) *Session {
	t.Helper()
	r := NewSessions(DefaultConfig())
	s, err := r.Open("demo")
	require.NoError(t, err)

	g, _ := s.Graph()
	fx := NewEffectNode("Sepia", EffectSepia)
	fx.SetParam("mix", 0.5)
	custom := NewCustomNode("Mixer", "blend",
		[]PortSpec{{"a", DataImage}, {"t", DataScalar}},
		[]PortSpec{{"out", DataColor}})
	require.NoError(t, g.AddNode(fx))
	require.NoError(t, g.AddNode(custom))
	_, err = g.AddConnection(g.Nodes()[0].Output(0), custom.Input(0))
	require.NoError(t, err)

	tl, _ := s.Timeline()
	require.NoError(t, tl.AddKeyframe("Cube", "x", 1.5, 0))
	require.NoError(t, tl.AddKeyframeEased("Cube", "x", 4.0, 2, "out-quad"))
	require.NoError(t, tl.AddKeyframe("Light", "mode", "warm", 1))
	tl.SetCurrentTime(0.75)

	sc, _ := s.Scene()
	cube := NewSceneObject("Cube", ObjectMesh)
	cube.Position = mgl64.Vec3{1, 2, 3}
	require.NoError(t, sc.AddObject(cube))
	require.NoError(t, sc.AddObject(NewSceneObject("Light", ObjectLight)))
	sc.SelectObject(cube.ID)

	cam, _ := s.Camera()
	cam.SetPosition(mgl64.Vec3{5, 5, 5})
	cam.LookAt(mgl64.Vec3{})

	require.NoError(t, s.SetSetting("resolution", "1080p"))
	require.NoError(t, s.SetPlugin("bloom", true))
	return s
}

func TestProjectRoundTrip(t *testing.T) {
	src := buildProjectSession(t)
	p, err := src.Snapshot()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, EncodeProject(&buf, p))
	decoded, err := DecodeProject(&buf)
	require.NoError(t, err)

	dst, err := NewSessions(DefaultConfig()).Open("restored")
	require.NoError(t, err)
	require.NoError(t, dst.Restore(decoded))

	sg, _ := src.Graph()
	dg, _ := dst.Graph()
	require.Equal(t, sg.NodeCount(), dg.NodeCount())
	for i, n := range sg.Nodes() {
		m := dg.Nodes()[i]
		assert.Equal(t, n.ID, m.ID)
		assert.Equal(t, n.Kind, m.Kind)
		assert.Equal(t, n.Variant, m.Variant)
		assert.Equal(t, n.Params, m.Params)
		assert.Equal(t, len(n.Inputs()), len(m.Inputs()))
	}
	mixer := dg.NodeByName("Mixer")
	require.NotNil(t, mixer)
	assert.Equal(t, DataScalar, mixer.Input(1).Type)
	assert.Equal(t, DataColor, mixer.Output(0).Type)

	require.Equal(t, sg.ConnectionCount(), dg.ConnectionCount())
	for i, c := range sg.Connections() {
		d := dg.Connections()[i]
		assert.Equal(t, c.ID, d.ID)
		assert.Equal(t, c.Source.Node().ID, d.Source.Node().ID)
		assert.Equal(t, c.Dest.Index, d.Dest.Index)
	}

	dtl, _ := dst.Timeline()
	assert.Equal(t, []float64{0, 2}, times(dtl.Series("Cube", "x")))
	kf, _ := dtl.KeyframeAt("Cube", "x", 2)
	assert.Equal(t, "out-quad", kf.Ease)
	assert.Equal(t, 4.0, kf.Value)
	v, _ := dtl.ValueAt("Light", "mode", 1)
	assert.Equal(t, "warm", v)
	assert.Equal(t, 0.75, dtl.CurrentTime())

	dsc, _ := dst.Scene()
	require.Equal(t, 2, dsc.Len())
	require.NotNil(t, dsc.Selected())
	assert.Equal(t, "Cube", dsc.Selected().Name)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, dsc.Selected().Position)
	assert.Equal(t, ObjectLight, dsc.ObjectByName("Light").Type)

	scam, _ := src.Camera()
	dcam, _ := dst.Camera()
	assertVecNear(t, scam.Position, dcam.Position, 1e-12)
	assert.InDelta(t, scam.Yaw, dcam.Yaw, 1e-12)
	assert.InDelta(t, scam.Pitch, dcam.Pitch, 1e-12)

	val, ok, _ := dst.Setting("resolution")
	assert.True(t, ok)
	assert.Equal(t, "1080p", val)
	assert.True(t, dst.PluginEnabled("bloom"))
}

func TestSaveLoadProject(t *testing.T) {
	src := buildProjectSession(t)
	path := filepath.Join(t.TempDir(), "demo.yaml")
	require.NoError(t, SaveProject(path, src))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "version: 1\n"))

	p, err := LoadProject(path)
	require.NoError(t, err)
	assert.Equal(t, "demo", p.Name)
	assert.Len(t, p.Graph.Nodes, 5)

	_, err = LoadProject(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRestoreRejectsBadInputAtomically(t *testing.T) {
	s := buildProjectSession(t)
	before, _ := s.Graph()

	tests := []struct {
		name string
		doc  string
	}{
		{"unknown kind", "version: 1\ngraph:\n  nodes:\n    - {id: a, kind: blender}\n"},
		{"dangling connection", "version: 1\ngraph:\n  nodes:\n    - {id: a, kind: input}\n  connections:\n    - {from: {node: a, port: 0}, to: {node: zz, port: 0}}\n"},
		{"bad keyframe time", "version: 1\ntimeline:\n  keyframes:\n    - {time: -1, target: Cube, property: x, value: 1}\n"},
		{"future version", "version: 9\n"},
		{"unknown object type", "version: 1\nscene:\n  objects:\n    - {id: o, name: O, type: teapot}\n"},
		{"non-finite camera", "version: 1\ncamera:\n  position: [.nan, 0, 0]\n"},
		{"infinite pitch", "version: 1\ncamera:\n  pitch: .inf\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeProject(strings.NewReader(tt.doc))
			require.NoError(t, err)
			assert.Error(t, s.Restore(p))
			after, _ := s.Graph()
			assert.Same(t, before, after, "session unchanged")
		})
	}
}

func TestSnapshotCopiesParams(t *testing.T) {
	s := buildProjectSession(t)
	g, _ := s.Graph()
	n := g.Nodes()[0]
	n.SetParam("gain", 1)

	p, err := s.Snapshot()
	require.NoError(t, err)
	n.SetParam("gain", 2)
	assert.Equal(t, 1.0, p.Graph.Nodes[0].Params["gain"])
}

func TestSnapshotRequiresReady(t *testing.T) {
	r := NewSessions(DefaultConfig())
	s, _ := r.Get(r.Create("raw"))
	_, err := s.Snapshot()
	assert.ErrorIs(t, err, ErrNotReady)
	assert.ErrorIs(t, SaveProject(filepath.Join(t.TempDir(), "x.yaml"), s), ErrNotReady)
}
