package command

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/wayacreates/waya"
)

func registerBuiltins(d *Dispatcher) {
	for _, s := range []spec{
		{"project.create", "project.create <name>", "open a new project with the starter graph and make it active", cmdProjectCreate},
		{"project.close", "project.close", "close the active project", cmdProjectClose},
		{"project.save", "project.save <path>", "write the active project to a YAML file", cmdProjectSave},
		{"project.load", "project.load <path>", "load a YAML project into the active project, creating one if needed", cmdProjectLoad},
		{"editor.open", "editor.open <name>", "make an open project active", cmdEditorOpen},
		{"record.start", "record.start", "mark the project as recording", cmdRecord(true)},
		{"record.stop", "record.stop", "clear the recording mark", cmdRecord(false)},
		{"overlay.toggle", "overlay.toggle", "toggle the overlay flag", cmdOverlayToggle},
		{"plugin.enable", "plugin.enable <name>", "enable a plugin flag", cmdPlugin(true)},
		{"plugin.disable", "plugin.disable <name>", "disable a plugin flag", cmdPlugin(false)},
		{"setting.get", "setting.get <key>", "print a project setting", cmdSettingGet},
		{"setting.set", "setting.set <key> <value>", "store a project setting", cmdSettingSet},
		{"node.add", "node.add <kind> <name> [variant=<v>] [x=<x>] [y=<y>]", "add a node; kind is input, color-correct, effect, output or custom", cmdNodeAdd},
		{"node.remove", "node.remove <node>", "remove a node and its connections", cmdNodeRemove},
		{"node.move", "node.move <node> <x> <y>", "move a node in the editor", cmdNodeMove},
		{"node.set", "node.set <node> <param> <value>", "set a node parameter", cmdNodeSet},
		{"connect", "connect <node>[:<port>] <node>[:<port>]", "connect an output to an input; ports are names or indices", cmdConnect},
		{"disconnect", "disconnect <node>[:<port>]", "remove connections touching a node or one of its inputs", cmdDisconnect},
		{"eval", "eval", "evaluate the graph and print each output color", cmdEval},
		{"keyframe.add", "keyframe.add <target> <property> <time> <value> [ease=<name>]", "add or replace a keyframe", cmdKeyframeAdd},
		{"keyframe.remove", "keyframe.remove <target> <property> <time>", "remove a keyframe", cmdKeyframeRemove},
		{"play", "play", "start or resume playback", cmdPlay},
		{"pause", "pause", "pause playback", cmdPause},
		{"stop", "stop", "stop playback and rewind", cmdStop},
		{"seek", "seek <time>", "move the cursor and apply the timeline", cmdSeek},
		{"camera.lookat", "camera.lookat <x> <y> <z>", "aim the camera at a point", cmdCameraLookAt},
		{"camera.zoom", "camera.zoom <amount>", "move the camera along its view axis", cmdCameraZoom},
		{"camera.rotate", "camera.rotate <pitch> <yaw>", "turn the camera by degrees", cmdCameraRotate},
		{"camera.pan", "camera.pan <dx> <dy>", "pan the camera by screen pixels", cmdCameraPan},
		{"camera.fly", "camera.fly <x> <y> <z> [duration=<s>] [ease=<name>]", "animate the camera to a position, facing the pivot", cmdCameraFly},
		{"object.add", "object.add <type> <name> [x=<x>] [y=<y>] [z=<z>]", "add a scene object; type is mesh, light, camera-target or rig", cmdObjectAdd},
		{"object.select", "object.select <object>", "select a scene object", cmdObjectSelect},
		{"object.remove", "object.remove <object>", "remove a scene object", cmdObjectRemove},
		{"status", "status", "summarize the active project", cmdStatus},
		{"help", "help [command]", "list commands or describe one", cmdHelp},
	} {
		d.register(s)
	}
}

// --- argument helpers ---

func parseFloat(name, s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s: %q is not a finite number", name, s)
	}
	return f, nil
}

func parseFloats(names []string, in Invocation, from int) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		s := in.Arg(from + i)
		if s == "" {
			return nil, fmt.Errorf("missing %s", name)
		}
		f, err := parseFloat(name, s)
		if err != nil {
			return nil, err
		}
		out[i] = f
	}
	return out, nil
}

func optFloat(in Invocation, key string, def float64) (float64, error) {
	s, ok := in.Opts[key]
	if !ok {
		return def, nil
	}
	return parseFloat(key, s)
}

func resolveNode(g *waya.NodeGraph, ref string) (*waya.Node, error) {
	if n := g.Node(waya.NodeID(ref)); n != nil {
		return n, nil
	}
	if n := g.NodeByName(ref); n != nil {
		return n, nil
	}
	return nil, &waya.NotFoundError{Kind: "node", ID: ref}
}

// resolvePort parses "<node>" or "<node>:<port>" where port is a name or an
// index. A bare node resolves to its first port in dir.
func resolvePort(g *waya.NodeGraph, ref string, dir waya.PortDirection) (*waya.Port, error) {
	nodeRef, portRef, hasPort := strings.Cut(ref, ":")
	n, err := resolveNode(g, nodeRef)
	if err != nil {
		return nil, err
	}
	var p *waya.Port
	switch {
	case !hasPort:
		p = n.Port(dir, 0)
	default:
		if i, err := strconv.Atoi(portRef); err == nil {
			p = n.Port(dir, i)
		} else {
			p = n.PortByName(dir, portRef)
		}
	}
	if p == nil {
		return nil, &waya.NotFoundError{Kind: "port", ID: fmt.Sprintf("%s %s %s", n.Name, dir, portRef)}
	}
	return p, nil
}

func resolveObject(sc *waya.Scene, ref string) (*waya.SceneObject, error) {
	if o := sc.Object(ref); o != nil {
		return o, nil
	}
	if o := sc.ObjectByName(ref); o != nil {
		return o, nil
	}
	return nil, &waya.NotFoundError{Kind: "object", ID: ref}
}

func formatColor(c waya.Color) string {
	return fmt.Sprintf("rgba(%.3f, %.3f, %.3f, %.3f)", c.R, c.G, c.B, c.A)
}

// --- project ---

type nameArgs struct {
	Name string `validate:"required"`
}

type pathArgs struct {
	Path string `validate:"required"`
}

func cmdProjectCreate(d *Dispatcher, in Invocation) (string, error) {
	args := nameArgs{Name: in.Arg(0)}
	if err := d.check("project.create <name>", args); err != nil {
		return "", err
	}
	if _, exists := d.sessions.Find(args.Name); exists {
		return "", fmt.Errorf("project %q is already open", args.Name)
	}
	s, err := d.sessions.Open(args.Name)
	if err != nil {
		return "", err
	}
	d.active = s.ID
	return fmt.Sprintf("created project %q (%s)", s.Name, s.ID), nil
}

func cmdProjectClose(d *Dispatcher, _ Invocation) (string, error) {
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	d.sessions.Destroy(s.ID)
	d.active = waya.SessionID{}
	return fmt.Sprintf("closed project %q", s.Name), nil
}

func cmdProjectSave(d *Dispatcher, in Invocation) (string, error) {
	args := pathArgs{Path: in.Arg(0)}
	if err := d.check("project.save <path>", args); err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	if err := waya.SaveProject(args.Path, s); err != nil {
		return "", err
	}
	return fmt.Sprintf("saved %q to %s", s.Name, args.Path), nil
}

func cmdProjectLoad(d *Dispatcher, in Invocation) (string, error) {
	args := pathArgs{Path: in.Arg(0)}
	if err := d.check("project.load <path>", args); err != nil {
		return "", err
	}
	p, err := waya.LoadProject(args.Path)
	if err != nil {
		return "", err
	}
	s, err := d.Session()
	created := false
	if err != nil {
		name := p.Name
		if name == "" {
			name = "untitled"
		}
		if s, err = d.sessions.Open(name); err != nil {
			return "", err
		}
		created = true
	}
	if err := s.Restore(p); err != nil {
		if created {
			d.sessions.Destroy(s.ID)
		}
		return "", err
	}
	if created {
		d.active = s.ID
	}
	return fmt.Sprintf("loaded %s into %q", args.Path, s.Name), nil
}

func cmdEditorOpen(d *Dispatcher, in Invocation) (string, error) {
	args := nameArgs{Name: in.Arg(0)}
	if err := d.check("editor.open <name>", args); err != nil {
		return "", err
	}
	s, ok := d.sessions.Find(args.Name)
	if !ok {
		return "", &waya.NotFoundError{Kind: "project", ID: args.Name}
	}
	d.active = s.ID
	return fmt.Sprintf("editing %q", s.Name), nil
}

func cmdRecord(on bool) handler {
	return func(d *Dispatcher, _ Invocation) (string, error) {
		s, err := d.Session()
		if err != nil {
			return "", err
		}
		if s.Recording() == on {
			if on {
				return "", fmt.Errorf("already recording")
			}
			return "", fmt.Errorf("not recording")
		}
		if err := s.SetRecording(on); err != nil {
			return "", err
		}
		if on {
			return "recording started", nil
		}
		return "recording stopped", nil
	}
}

func cmdOverlayToggle(d *Dispatcher, _ Invocation) (string, error) {
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	on, err := s.ToggleOverlay()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("overlay %s", onOff(on)), nil
}

func cmdPlugin(enable bool) handler {
	return func(d *Dispatcher, in Invocation) (string, error) {
		args := nameArgs{Name: in.Arg(0)}
		if err := d.check("plugin.enable|disable <name>", args); err != nil {
			return "", err
		}
		s, err := d.Session()
		if err != nil {
			return "", err
		}
		if err := s.SetPlugin(args.Name, enable); err != nil {
			return "", err
		}
		return fmt.Sprintf("plugin %s %s", args.Name, onOff(enable)), nil
	}
}

type settingArgs struct {
	Key   string `validate:"required"`
	Value string
}

func cmdSettingGet(d *Dispatcher, in Invocation) (string, error) {
	args := settingArgs{Key: in.Arg(0)}
	if err := d.check("setting.get <key>", args); err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	v, ok, err := s.Setting(args.Key)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &waya.NotFoundError{Kind: "setting", ID: args.Key}
	}
	return fmt.Sprintf("%s = %s", args.Key, v), nil
}

func cmdSettingSet(d *Dispatcher, in Invocation) (string, error) {
	args := settingArgs{Key: in.Arg(0), Value: strings.Join(in.Args[min(1, len(in.Args)):], " ")}
	if err := d.check("setting.set <key> <value>", args); err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	if err := s.SetSetting(args.Key, args.Value); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s = %s", args.Key, args.Value), nil
}

// --- graph ---

type nodeAddArgs struct {
	Kind    string `validate:"required,oneof=input color-correct effect output custom"`
	Name    string `validate:"required"`
	Variant string `validate:"required_if=Kind effect"`
	X, Y    float64
}

func cmdNodeAdd(d *Dispatcher, in Invocation) (string, error) {
	const usage = "node.add <kind> <name> [variant=<v>] [x=<x>] [y=<y>]"
	args := nodeAddArgs{Kind: in.Arg(0), Name: in.Arg(1), Variant: in.Opts["variant"]}
	var err error
	if args.X, err = optFloat(in, "x", 0); err != nil {
		return "", err
	}
	if args.Y, err = optFloat(in, "y", 0); err != nil {
		return "", err
	}
	if err := d.check(usage, args); err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	g, _ := s.Graph()

	kind, _ := waya.ParseNodeKind(args.Kind)
	var n *waya.Node
	switch kind {
	case waya.KindInput:
		n = waya.NewInputNode(args.Name)
	case waya.KindColorCorrect:
		n = waya.NewColorCorrectNode(args.Name)
	case waya.KindEffect:
		n = waya.NewEffectNode(args.Name, args.Variant)
	case waya.KindOutput:
		n = waya.NewOutputNode(args.Name)
	case waya.KindCustom:
		n = waya.NewCustomNode(args.Name, args.Variant,
			[]waya.PortSpec{{Name: "image", Type: waya.DataImage}},
			[]waya.PortSpec{{Name: "image", Type: waya.DataImage}})
	}
	n.SetPosition(args.X, args.Y)
	if err := g.AddNode(n); err != nil {
		return "", err
	}
	return fmt.Sprintf("added %s node %q (%s)", n.Kind, n.Name, n.ID), nil
}

func cmdNodeRemove(d *Dispatcher, in Invocation) (string, error) {
	args := nameArgs{Name: in.Arg(0)}
	if err := d.check("node.remove <node>", args); err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	g, _ := s.Graph()
	n, err := resolveNode(g, args.Name)
	if err != nil {
		return "", err
	}
	dropped := len(g.ConnectionsOf(n.ID))
	g.RemoveNode(n.ID)
	return fmt.Sprintf("removed node %q and %d connection(s)", n.Name, dropped), nil
}

func cmdNodeMove(d *Dispatcher, in Invocation) (string, error) {
	args := nameArgs{Name: in.Arg(0)}
	if err := d.check("node.move <node> <x> <y>", args); err != nil {
		return "", err
	}
	xy, err := parseFloats([]string{"x", "y"}, in, 1)
	if err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	g, _ := s.Graph()
	n, err := resolveNode(g, args.Name)
	if err != nil {
		return "", err
	}
	n.SetPosition(xy[0], xy[1])
	return fmt.Sprintf("moved %q to (%g, %g)", n.Name, xy[0], xy[1]), nil
}

type nodeSetArgs struct {
	Node  string `validate:"required"`
	Param string `validate:"required"`
}

func cmdNodeSet(d *Dispatcher, in Invocation) (string, error) {
	args := nodeSetArgs{Node: in.Arg(0), Param: in.Arg(1)}
	if err := d.check("node.set <node> <param> <value>", args); err != nil {
		return "", err
	}
	v, err := parseFloats([]string{"value"}, in, 2)
	if err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	g, _ := s.Graph()
	n, err := resolveNode(g, args.Node)
	if err != nil {
		return "", err
	}
	n.SetParam(args.Param, v[0])
	return fmt.Sprintf("%s.%s = %g", n.Name, args.Param, v[0]), nil
}

type connectArgs struct {
	From string `validate:"required"`
	To   string `validate:"required"`
}

func cmdConnect(d *Dispatcher, in Invocation) (string, error) {
	args := connectArgs{From: in.Arg(0), To: in.Arg(1)}
	if err := d.check("connect <node>[:<port>] <node>[:<port>]", args); err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	g, _ := s.Graph()
	src, err := resolvePort(g, args.From, waya.PortOutput)
	if err != nil {
		return "", err
	}
	dst, err := resolvePort(g, args.To, waya.PortInput)
	if err != nil {
		return "", err
	}
	c, err := g.AddConnection(src, dst)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("connected %s", c), nil
}

func cmdDisconnect(d *Dispatcher, in Invocation) (string, error) {
	args := nameArgs{Name: in.Arg(0)}
	if err := d.check("disconnect <node>[:<port>]", args); err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	g, _ := s.Graph()
	if !strings.Contains(args.Name, ":") {
		n, err := resolveNode(g, args.Name)
		if err != nil {
			return "", err
		}
		removed := 0
		for _, c := range g.ConnectionsOf(n.ID) {
			if g.RemoveConnection(c.ID) {
				removed++
			}
		}
		return fmt.Sprintf("removed %d connection(s) from %q", removed, n.Name), nil
	}
	p, err := resolvePort(g, args.Name, waya.PortInput)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("removed %d connection(s) from %s", g.Disconnect(p), p), nil
}

func cmdEval(d *Dispatcher, _ Invocation) (string, error) {
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	g, _ := s.Graph()
	res, err := g.Evaluate()
	if err != nil {
		return "", err
	}
	var lines []string
	for _, n := range g.Nodes() {
		if c, ok := res[n.ID]; ok {
			lines = append(lines, fmt.Sprintf("%s: %s", n.Name, formatColor(c)))
		}
	}
	if len(lines) == 0 {
		return "no output nodes", nil
	}
	return strings.Join(lines, "\n"), nil
}

// --- timeline ---

type keyframeArgs struct {
	Target   string `validate:"required"`
	Property string `validate:"required"`
	Time     float64
	Ease     string
}

func cmdKeyframeAdd(d *Dispatcher, in Invocation) (string, error) {
	const usage = "keyframe.add <target> <property> <time> <value> [ease=<name>]"
	args := keyframeArgs{Target: in.Arg(0), Property: in.Arg(1), Ease: in.Opts["ease"]}
	if err := d.check(usage, args); err != nil {
		return "", err
	}
	t, err := parseFloats([]string{"time"}, in, 2)
	if err != nil {
		return "", err
	}
	raw := in.Arg(3)
	if raw == "" {
		return "", fmt.Errorf("missing value (usage: %s)", usage)
	}
	var value any = raw
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return "", fmt.Errorf("value: %q is not a finite number", raw)
		}
		value = f
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	tl, _ := s.Timeline()
	if err := tl.AddKeyframeEased(args.Target, args.Property, value, t[0], args.Ease); err != nil {
		return "", err
	}
	return fmt.Sprintf("keyframe %s.%s @ %gs = %v", args.Target, args.Property, t[0], value), nil
}

func cmdKeyframeRemove(d *Dispatcher, in Invocation) (string, error) {
	args := keyframeArgs{Target: in.Arg(0), Property: in.Arg(1)}
	if err := d.check("keyframe.remove <target> <property> <time>", args); err != nil {
		return "", err
	}
	t, err := parseFloats([]string{"time"}, in, 2)
	if err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	tl, _ := s.Timeline()
	if !tl.RemoveKeyframe(args.Target, args.Property, t[0]) {
		return "", &waya.NotFoundError{Kind: "keyframe", ID: fmt.Sprintf("%s.%s@%g", args.Target, args.Property, t[0])}
	}
	return fmt.Sprintf("removed keyframe %s.%s @ %gs", args.Target, args.Property, t[0]), nil
}

func transport(fn func(*waya.Timeline)) handler {
	return func(d *Dispatcher, _ Invocation) (string, error) {
		s, err := d.Session()
		if err != nil {
			return "", err
		}
		tl, _ := s.Timeline()
		fn(tl)
		return fmt.Sprintf("%s at %.3fs", tl.State(), tl.CurrentTime()), nil
	}
}

var (
	cmdPlay  = transport((*waya.Timeline).Play)
	cmdPause = transport((*waya.Timeline).Pause)
	cmdStop  = transport((*waya.Timeline).Stop)
)

type seekArgs struct {
	Time float64 `validate:"gte=0"`
}

func cmdSeek(d *Dispatcher, in Invocation) (string, error) {
	t, err := parseFloats([]string{"time"}, in, 0)
	if err != nil {
		return "", err
	}
	args := seekArgs{Time: t[0]}
	if err := d.check("seek <time>", args); err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	if err := s.UpdateToTime(args.Time); err != nil {
		return "", err
	}
	return fmt.Sprintf("cursor at %.3fs", args.Time), nil
}

// --- camera ---

func withCamera(d *Dispatcher, fn func(*waya.Camera) error) (string, error) {
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	cam, _ := s.Camera()
	if err := fn(cam); err != nil {
		return "", err
	}
	p := cam.Position
	return fmt.Sprintf("camera at (%.3f, %.3f, %.3f) yaw %.2f pitch %.2f", p.X(), p.Y(), p.Z(), cam.Yaw, cam.Pitch), nil
}

func cmdCameraLookAt(d *Dispatcher, in Invocation) (string, error) {
	v, err := parseFloats([]string{"x", "y", "z"}, in, 0)
	if err != nil {
		return "", err
	}
	return withCamera(d, func(c *waya.Camera) error {
		if !c.LookAt(mgl64.Vec3{v[0], v[1], v[2]}) {
			return fmt.Errorf("target is the camera position")
		}
		return nil
	})
}

func cmdCameraZoom(d *Dispatcher, in Invocation) (string, error) {
	v, err := parseFloats([]string{"amount"}, in, 0)
	if err != nil {
		return "", err
	}
	return withCamera(d, func(c *waya.Camera) error {
		c.Zoom(v[0])
		return nil
	})
}

func cmdCameraRotate(d *Dispatcher, in Invocation) (string, error) {
	v, err := parseFloats([]string{"pitch", "yaw"}, in, 0)
	if err != nil {
		return "", err
	}
	return withCamera(d, func(c *waya.Camera) error {
		c.Rotate(v[0], v[1])
		return nil
	})
}

func cmdCameraPan(d *Dispatcher, in Invocation) (string, error) {
	v, err := parseFloats([]string{"dx", "dy"}, in, 0)
	if err != nil {
		return "", err
	}
	return withCamera(d, func(c *waya.Camera) error {
		c.Pan(v[0], v[1])
		return nil
	})
}

type flyArgs struct {
	Duration float64 `validate:"gte=0,lte=600"`
	Ease     string
}

func cmdCameraFly(d *Dispatcher, in Invocation) (string, error) {
	v, err := parseFloats([]string{"x", "y", "z"}, in, 0)
	if err != nil {
		return "", err
	}
	args := flyArgs{Ease: in.Opts["ease"]}
	if args.Duration, err = optFloat(in, "duration", 1); err != nil {
		return "", err
	}
	if err := d.check("camera.fly <x> <y> <z> [duration=<s>] [ease=<name>]", args); err != nil {
		return "", err
	}
	fn, ok := waya.EaseFunc(args.Ease)
	if !ok {
		return "", fmt.Errorf("unknown ease %q (one of %s)", args.Ease, strings.Join(waya.EaseNames(), ", "))
	}
	return withCamera(d, func(c *waya.Camera) error {
		pivot := c.Pivot
		c.FlyTo(mgl64.Vec3{v[0], v[1], v[2]}, &pivot, float32(args.Duration), fn)
		return nil
	})
}

// --- scene ---

type objectAddArgs struct {
	Type string `validate:"required,oneof=mesh light camera-target rig"`
	Name string `validate:"required"`
}

func cmdObjectAdd(d *Dispatcher, in Invocation) (string, error) {
	args := objectAddArgs{Type: in.Arg(0), Name: in.Arg(1)}
	if err := d.check("object.add <type> <name> [x=<x>] [y=<y>] [z=<z>]", args); err != nil {
		return "", err
	}
	var pos mgl64.Vec3
	for i, key := range []string{"x", "y", "z"} {
		f, err := optFloat(in, key, 0)
		if err != nil {
			return "", err
		}
		pos[i] = f
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	sc, _ := s.Scene()
	typ, _ := waya.ParseObjectType(args.Type)
	o := waya.NewSceneObject(args.Name, typ)
	o.Position = pos
	if err := sc.AddObject(o); err != nil {
		return "", err
	}
	return fmt.Sprintf("added %s %q (%s)", o.Type, o.Name, o.ID), nil
}

func cmdObjectSelect(d *Dispatcher, in Invocation) (string, error) {
	args := nameArgs{Name: in.Arg(0)}
	if err := d.check("object.select <object>", args); err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	sc, _ := s.Scene()
	o, err := resolveObject(sc, args.Name)
	if err != nil {
		return "", err
	}
	sc.SelectObject(o.ID)
	return fmt.Sprintf("selected %q", o.Name), nil
}

func cmdObjectRemove(d *Dispatcher, in Invocation) (string, error) {
	args := nameArgs{Name: in.Arg(0)}
	if err := d.check("object.remove <object>", args); err != nil {
		return "", err
	}
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	sc, _ := s.Scene()
	o, err := resolveObject(sc, args.Name)
	if err != nil {
		return "", err
	}
	sc.RemoveObject(o.ID)
	return fmt.Sprintf("removed %q", o.Name), nil
}

// --- info ---

func cmdStatus(d *Dispatcher, _ Invocation) (string, error) {
	s, err := d.Session()
	if err != nil {
		return "", err
	}
	g, _ := s.Graph()
	tl, _ := s.Timeline()
	sc, _ := s.Scene()
	cam, _ := s.Camera()
	sel := "none"
	if o := sc.Selected(); o != nil {
		sel = o.Name
	}
	p := cam.Position
	var b strings.Builder
	fmt.Fprintf(&b, "project %q (%s)\n", s.Name, s.ID)
	fmt.Fprintf(&b, "graph: %d nodes, %d connections\n", g.NodeCount(), g.ConnectionCount())
	fmt.Fprintf(&b, "timeline: %s at %.3fs of %.3fs, %d keyframes\n", tl.State(), tl.CurrentTime(), tl.Duration(), tl.Len())
	fmt.Fprintf(&b, "scene: %d objects, selected %s\n", sc.Len(), sel)
	fmt.Fprintf(&b, "camera: (%.3f, %.3f, %.3f) yaw %.2f pitch %.2f fov %.1f\n", p.X(), p.Y(), p.Z(), cam.Yaw, cam.Pitch, cam.FOV)
	fmt.Fprintf(&b, "recording %s, overlay %s", onOff(s.Recording()), onOff(s.Overlay()))
	return b.String(), nil
}

func cmdHelp(d *Dispatcher, in Invocation) (string, error) {
	if name := in.Arg(0); name != "" {
		s, ok := d.specs[strings.ToLower(name)]
		if !ok {
			return "", fmt.Errorf("unknown command %q", name)
		}
		return fmt.Sprintf("%s\n  %s", s.usage, s.help), nil
	}
	specs := make([]spec, 0, len(d.specs))
	for _, s := range d.specs {
		specs = append(specs, s)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].name < specs[j].name })
	var b strings.Builder
	for i, s := range specs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-16s %s", s.name, s.help)
	}
	return b.String(), nil
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
