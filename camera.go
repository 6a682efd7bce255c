package waya

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const maxPitch = 89.0

// Camera is a perspective camera described by a position and Euler angles in
// degrees. Yaw 0, pitch 0 looks down -Z; positive pitch looks down; positive
// yaw turns toward +X. The view and projection matrices are pure functions of
// this state.
type Camera struct {
	Position mgl64.Vec3
	Yaw      float64
	Pitch    float64
	Roll     float64

	// FOV is the vertical field of view in degrees.
	FOV       float64
	Near, Far float64

	// Pivot is the point Zoom approaches and Orbit circles. LookAt sets it.
	Pivot mgl64.Vec3
	// MinDistance is the closest Zoom may bring the camera to Pivot along
	// the forward axis.
	MinDistance float64
	// PanSpeed converts screen pixels to world units in Pan.
	PanSpeed float64

	fly *flyAnim
}

// NewCamera creates a camera from cfg's defaults, aimed at the origin.
func NewCamera(cfg Config) *Camera {
	cc := cfg.Camera
	c := &Camera{
		FOV:         cc.FOV,
		Near:        cc.Near,
		Far:         cc.Far,
		MinDistance: cc.MinDistance,
		PanSpeed:    cc.PanSpeed,
	}
	c.SetPosition(mgl64.Vec3(cc.Position))
	if !c.LookAt(mgl64.Vec3{}) {
		c.Pivot = c.Position.Add(c.Forward())
	}
	return c
}

// SetPosition moves the camera without changing its orientation. The pivot
// is kept unless it would end up behind the camera, in which case it is
// placed one MinDistance ahead.
func (c *Camera) SetPosition(p mgl64.Vec3) {
	if !finiteVec(p) {
		return
	}
	c.Position = p
	if c.ForwardDistance() < c.MinDistance {
		c.Pivot = c.Position.Add(c.Forward().Mul(c.MinDistance))
	}
}

// Forward returns the unit view direction.
func (c *Camera) Forward() mgl64.Vec3 {
	yaw := mgl64.DegToRad(c.Yaw)
	pitch := mgl64.DegToRad(c.Pitch)
	return mgl64.Vec3{
		math.Sin(yaw) * math.Cos(pitch),
		-math.Sin(pitch),
		-math.Cos(yaw) * math.Cos(pitch),
	}
}

// Right returns the unit camera-space +X axis in world space.
func (c *Camera) Right() mgl64.Vec3 {
	return c.rotation().Row(0).Vec3()
}

// Up returns the unit camera-space +Y axis in world space.
func (c *Camera) Up() mgl64.Vec3 {
	return c.rotation().Row(1).Vec3()
}

// ForwardDistance is the signed distance from the camera to Pivot measured
// along the forward axis.
func (c *Camera) ForwardDistance() float64 {
	return c.Pivot.Sub(c.Position).Dot(c.Forward())
}

// LookAt orients the camera toward target and makes it the pivot. Roll is
// kept. It returns false and changes nothing when target equals the camera
// position or is not finite.
func (c *Camera) LookAt(target mgl64.Vec3) bool {
	if !finiteVec(target) {
		return false
	}
	d := target.Sub(c.Position)
	if d.Len() < 1e-12 {
		return false
	}
	d = d.Normalize()
	c.Pitch = mgl64.RadToDeg(math.Asin(clamp(-d.Y(), -1, 1)))
	c.Yaw = mgl64.RadToDeg(math.Atan2(d.X(), -d.Z()))
	c.Pivot = target
	return true
}

// Rotate turns the camera in place by the given angles in degrees. Pitch is
// clamped to ±89. The pivot follows the new view direction at the same
// distance. Non-finite angles are ignored.
func (c *Camera) Rotate(dPitch, dYaw float64) {
	if !isFinite(dPitch) || !isFinite(dYaw) {
		return
	}
	dist := math.Max(c.Pivot.Sub(c.Position).Len(), c.MinDistance)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
	c.Yaw = wrapDegrees(c.Yaw + dYaw)
	c.Pivot = c.Position.Add(c.Forward().Mul(dist))
}

// Orbit swings the camera around the pivot by the given angles in degrees,
// keeping it aimed at the pivot. Non-finite angles are ignored.
func (c *Camera) Orbit(dPitch, dYaw float64) {
	if !isFinite(dPitch) || !isFinite(dYaw) {
		return
	}
	dist := math.Max(c.Pivot.Sub(c.Position).Len(), c.MinDistance)
	c.Pitch = clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
	c.Yaw = wrapDegrees(c.Yaw + dYaw)
	c.Position = c.Pivot.Sub(c.Forward().Mul(dist))
}

// Pan moves the camera and pivot opposite a screen-space drag of (dx, dy)
// pixels, with y pointing down. Non-finite deltas are ignored.
func (c *Camera) Pan(dx, dy float64) {
	if !isFinite(dx) || !isFinite(dy) {
		return
	}
	offset := c.Right().Mul(-dx * c.PanSpeed).Add(c.Up().Mul(dy * c.PanSpeed))
	c.Position = c.Position.Add(offset)
	c.Pivot = c.Pivot.Add(offset)
}

// Zoom moves the camera along its forward axis by amount world units.
// Positive amounts move toward the pivot, never closer than MinDistance.
// Negative amounts move away without limit.
func (c *Camera) Zoom(amount float64) {
	if amount == 0 || !isFinite(amount) {
		return
	}
	if amount > 0 {
		amount = math.Min(amount, c.ForwardDistance()-c.MinDistance)
		if amount <= 0 {
			return
		}
	}
	c.Position = c.Position.Add(c.Forward().Mul(amount))
}

func (c *Camera) rotation() mgl64.Mat4 {
	return mgl64.HomogRotate3DZ(mgl64.DegToRad(c.Roll)).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(c.Pitch))).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(c.Yaw)))
}

// ViewMatrix returns the world-to-camera transform
// Rz(roll) · Rx(pitch) · Ry(yaw) · T(-position). Roll is applied after pitch
// and yaw; with roll 0 this is the X-then-Y rotation followed by translation.
// Roll is only set from project files.
func (c *Camera) ViewMatrix() mgl64.Mat4 {
	p := c.Position
	return c.rotation().Mul4(mgl64.Translate3D(-p.X(), -p.Y(), -p.Z()))
}

// ProjectionMatrix returns a right-handed perspective projection for the
// given width/height ratio. Non-positive aspect ratios are treated as 1.
func (c *Camera) ProjectionMatrix(aspect float64) mgl64.Mat4 {
	if !(aspect > 0) {
		aspect = 1
	}
	return mgl64.Perspective(mgl64.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

// ViewProjection returns ProjectionMatrix(aspect) · ViewMatrix().
func (c *Camera) ViewProjection(aspect float64) mgl64.Mat4 {
	return c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix())
}

// WorldToScreen projects a world point into a w×h viewport with y down. The
// second result is false when the point is behind the camera.
func (c *Camera) WorldToScreen(p mgl64.Vec3, w, h float64) (Vec2, bool) {
	clip := c.ViewProjection(w / h).Mul4x1(p.Vec4(1))
	if clip.W() <= 0 {
		return Vec2{}, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	return Vec2{
		X: (ndc.X() + 1) * 0.5 * w,
		Y: (1 - ndc.Y()) * 0.5 * h,
	}, true
}

func wrapDegrees(a float64) float64 {
	a = math.Mod(a+180, 360)
	if a < 0 {
		a += 360
	}
	return a - 180
}
