package waya

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// TweenGroup animates up to 4 float64 fields simultaneously. Call Update(dt)
// each frame; Done is set once every tween has finished.
//
// There is no global animation manager; owners call Update themselves.
type TweenGroup struct {
	tweens [4]*gween.Tween
	count  int
	fields [4]*float64
	Done   bool
}

// NewTweenGroup creates a group moving each field to the matching target.
// Extra fields beyond four are ignored.
func NewTweenGroup(fields []*float64, to []float64, duration float32, fn ease.TweenFunc) *TweenGroup {
	g := &TweenGroup{}
	for i := 0; i < len(fields) && i < len(to) && i < len(g.tweens); i++ {
		g.tweens[i] = gween.New(float32(*fields[i]), float32(to[i]), duration, fn)
		g.fields[i] = fields[i]
		g.count++
	}
	g.Done = g.count == 0
	return g
}

// Update advances all tweens by dt seconds and writes values to the fields.
func (g *TweenGroup) Update(dt float32) {
	if g.Done {
		return
	}
	allDone := true
	for i := 0; i < g.count; i++ {
		val, finished := g.tweens[i].Update(dt)
		*g.fields[i] = float64(val)
		if !finished {
			allDone = false
		}
	}
	g.Done = allDone
}

// flyAnim holds the active FlyTo tweens. Position and angles tween
// separately so they can use different target counts.
type flyAnim struct {
	pos    *TweenGroup
	angles *TweenGroup
	x, y   float64
	z      float64
	target mgl64.Vec3
	aim    bool
}

// FlyTo animates the camera to pos over duration seconds. When lookAt is
// non-nil the camera also turns to face it, ending with the same orientation
// LookAt would give. A zero or negative duration jumps immediately.
func (c *Camera) FlyTo(pos mgl64.Vec3, lookAt *mgl64.Vec3, duration float32, fn ease.TweenFunc) {
	if fn == nil {
		fn = ease.Linear
	}
	if duration <= 0 {
		c.fly = nil
		c.SetPosition(pos)
		if lookAt != nil {
			c.LookAt(*lookAt)
		}
		return
	}
	a := &flyAnim{x: c.Position.X(), y: c.Position.Y(), z: c.Position.Z()}
	a.pos = NewTweenGroup([]*float64{&a.x, &a.y, &a.z}, []float64{pos.X(), pos.Y(), pos.Z()}, duration, fn)
	if lookAt != nil {
		// Solve the end orientation on a scratch camera.
		end := *c
		end.fly = nil
		end.Position = pos
		if end.LookAt(*lookAt) {
			endYaw := c.Yaw + wrapDegrees(end.Yaw-c.Yaw)
			a.angles = NewTweenGroup([]*float64{&c.Pitch, &c.Yaw}, []float64{end.Pitch, endYaw}, duration, fn)
			a.target = *lookAt
			a.aim = true
		}
	}
	c.fly = a
}

// Flying reports whether a FlyTo animation is in progress.
func (c *Camera) Flying() bool {
	return c.fly != nil
}

// CancelFly stops any FlyTo animation where it is.
func (c *Camera) CancelFly() {
	c.fly = nil
}

// Update advances camera animations by dt seconds.
func (c *Camera) Update(dt float32) {
	a := c.fly
	if a == nil {
		return
	}
	a.pos.Update(dt)
	c.Position = mgl64.Vec3{a.x, a.y, a.z}
	done := a.pos.Done
	if a.angles != nil {
		a.angles.Update(dt)
		done = done && a.angles.Done
	}
	if !done {
		return
	}
	c.fly = nil
	if a.aim {
		c.LookAt(a.target)
	} else {
		c.SetPosition(c.Position)
	}
}

// CameraTarget is the timeline target name that animates the camera.
const CameraTarget = "camera"

// Apply samples the CameraTarget series of tl at time t. Recognized
// properties are x, y, z, yaw, pitch and fov. It returns the number of
// properties written.
func (c *Camera) Apply(tl *Timeline, t float64) int {
	n := 0
	for _, tr := range tl.Tracks() {
		if tr.Target != CameraTarget {
			continue
		}
		v, ok := tl.FloatAt(tr.Target, tr.Property, t)
		if !ok {
			continue
		}
		switch tr.Property {
		case PropX:
			c.Position[0] = v
		case PropY:
			c.Position[1] = v
		case PropZ:
			c.Position[2] = v
		case "yaw":
			c.Yaw = v
		case "pitch":
			c.Pitch = clamp(v, -maxPitch, maxPitch)
		case "fov":
			c.FOV = clamp(v, 1, 179)
		default:
			continue
		}
		n++
	}
	return n
}
