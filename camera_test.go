package waya

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCamera() *Camera {
	return NewCamera(DefaultConfig())
}

func assertVecNear(t *testing.T, want, got mgl64.Vec3, tol float64) {
	t.Helper()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], got[i], tol, "component %d: want %v got %v", i, want, got)
	}
}

// viewForward reads the world-space view direction out of a view matrix:
// the camera looks down its local -Z, so forward is -row 2.
func viewForward(m mgl64.Mat4) mgl64.Vec3 {
	return m.Row(2).Vec3().Mul(-1)
}

func TestNewCameraDefaults(t *testing.T) {
	c := newTestCamera()
	assertVecNear(t, mgl64.Vec3{0, 0, 5}, c.Position, 1e-12)
	assertVecNear(t, mgl64.Vec3{0, 0, -1}, c.Forward(), 1e-12)
	assert.InDelta(t, 5, c.ForwardDistance(), 1e-12)
	assert.Equal(t, 70.0, c.FOV)
}

// --- Scenario C ---

func TestScenarioLookAtOrigin(t *testing.T) {
	c := newTestCamera()
	c.SetPosition(mgl64.Vec3{5, 5, 5})
	require.True(t, c.LookAt(mgl64.Vec3{0, 0, 0}))

	want := mgl64.Vec3{-5, -5, -5}.Normalize()
	assertVecNear(t, want, c.Forward(), 1e-9)
	assert.InDelta(t, -45, c.Yaw, 1e-9)
	assert.InDelta(t, mgl64.RadToDeg(math.Asin(1/math.Sqrt(3))), c.Pitch, 1e-9)
	assertVecNear(t, want, viewForward(c.ViewMatrix()), 1e-9)
}

func TestLookAtSamePositionIsNoop(t *testing.T) {
	c := newTestCamera()
	yaw, pitch := c.Yaw, c.Pitch
	assert.False(t, c.LookAt(c.Position))
	assert.Equal(t, yaw, c.Yaw)
	assert.Equal(t, pitch, c.Pitch)
}

func TestPropertyLookAtViewForward(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	c := newTestCamera()
	for i := 0; i < 200; i++ {
		pos := mgl64.Vec3{r.Float64()*20 - 10, r.Float64()*20 - 10, r.Float64()*20 - 10}
		target := mgl64.Vec3{r.Float64()*20 - 10, r.Float64()*20 - 10, r.Float64()*20 - 10}
		dir := target.Sub(pos)
		if dir.Len() < 1e-3 || math.Abs(dir.Normalize().Y()) > 0.999 {
			continue
		}
		c.Roll = r.Float64()*90 - 45
		c.SetPosition(pos)
		require.True(t, c.LookAt(target))
		assertVecNear(t, dir.Normalize(), viewForward(c.ViewMatrix()), 1e-9)
	}
}

func TestViewMatrixMapsPositionToOrigin(t *testing.T) {
	c := newTestCamera()
	c.SetPosition(mgl64.Vec3{1, 2, 3})
	c.LookAt(mgl64.Vec3{4, 0, -2})
	v := c.ViewMatrix().Mul4x1(c.Position.Vec4(1))
	assertVecNear(t, mgl64.Vec3{}, v.Vec3(), 1e-9)

	// The pivot lies straight ahead on -Z.
	p := c.ViewMatrix().Mul4x1(c.Pivot.Vec4(1)).Vec3()
	assert.InDelta(t, 0, p.X(), 1e-9)
	assert.InDelta(t, 0, p.Y(), 1e-9)
	assert.Less(t, p.Z(), 0.0)
}

func TestViewMatrixRotationOrder(t *testing.T) {
	c := newTestCamera()
	c.Pitch, c.Yaw = 20, 30
	p := c.Position
	rx := mgl64.HomogRotate3DX(mgl64.DegToRad(20))
	ry := mgl64.HomogRotate3DY(mgl64.DegToRad(30))
	rz := mgl64.HomogRotate3DZ(mgl64.DegToRad(90))
	tr := mgl64.Translate3D(-p.X(), -p.Y(), -p.Z())

	want := rx.Mul4(ry).Mul4(tr)
	assert.True(t, want.ApproxEqualThreshold(c.ViewMatrix(), 1e-12), "X then Y then translate")

	c.Roll = 90
	want = rz.Mul4(rx).Mul4(ry).Mul4(tr)
	assert.True(t, want.ApproxEqualThreshold(c.ViewMatrix(), 1e-12), "roll applied last")
	assert.False(t, rx.Mul4(ry).Mul4(rz).Mul4(tr).ApproxEqualThreshold(c.ViewMatrix(), 1e-6))
}

func TestViewMatrixIsPure(t *testing.T) {
	c := newTestCamera()
	c.Rotate(10, 20)
	assert.Equal(t, c.ViewMatrix(), c.ViewMatrix())
	assert.Equal(t, c.ProjectionMatrix(1.5), c.ProjectionMatrix(1.5))
}

func TestProjectionMatrixAspect(t *testing.T) {
	c := newTestCamera()
	want := mgl64.Perspective(mgl64.DegToRad(70), 1, c.Near, c.Far)
	assert.Equal(t, want, c.ProjectionMatrix(0))
	assert.Equal(t, want, c.ProjectionMatrix(-3))
	assert.NotEqual(t, want, c.ProjectionMatrix(16.0/9.0))
}

// --- Zoom ---

func TestZoomClampsAtMinDistance(t *testing.T) {
	c := newTestCamera()
	c.Zoom(100)
	assert.InDelta(t, c.MinDistance, c.ForwardDistance(), 1e-9)
	assert.InDelta(t, 0.1, c.Position.Z(), 1e-9)

	c.Zoom(1)
	assert.InDelta(t, 0.1, c.Position.Z(), 1e-9, "further zoom-in is a no-op")

	c.Zoom(-2)
	assert.InDelta(t, 2.1, c.Position.Z(), 1e-9)
}

func TestPropertyZoomNeverBelowMin(t *testing.T) {
	r := rand.New(rand.NewSource(5))
	for iter := 0; iter < 100; iter++ {
		c := newTestCamera()
		for i := 0; i < 50; i++ {
			c.Zoom(r.Float64()*4 - 1)
			require.GreaterOrEqual(t, c.ForwardDistance(), c.MinDistance-1e-9)
			require.GreaterOrEqual(t, c.Position.Z(), 0.1-1e-9)
		}
	}
}

func TestZoomIgnoresNonFinite(t *testing.T) {
	c := newTestCamera()
	c.Zoom(math.NaN())
	c.Zoom(math.Inf(-1))
	assertVecNear(t, mgl64.Vec3{0, 0, 5}, c.Position, 0)
}

func TestMutatorsIgnoreNonFinite(t *testing.T) {
	nan, inf := math.NaN(), math.Inf(1)
	c := newTestCamera()
	pos, pivot, yaw, pitch := c.Position, c.Pivot, c.Yaw, c.Pitch

	c.Rotate(nan, 0)
	c.Rotate(0, inf)
	c.Orbit(nan, 10)
	c.Pan(inf, 0)
	c.Pan(0, nan)
	c.SetPosition(mgl64.Vec3{nan, 0, 0})
	assert.False(t, c.LookAt(mgl64.Vec3{0, inf, 0}))

	assert.Equal(t, pos, c.Position)
	assert.Equal(t, pivot, c.Pivot)
	assert.Equal(t, yaw, c.Yaw)
	assert.Equal(t, pitch, c.Pitch)
	assert.True(t, c.LookAt(mgl64.Vec3{0, 0, -1}), "camera still usable")
}

// --- Rotate / Orbit / Pan ---

func TestRotateClampsPitch(t *testing.T) {
	c := newTestCamera()
	c.Rotate(200, 0)
	assert.Equal(t, 89.0, c.Pitch)
	c.Rotate(-500, 0)
	assert.Equal(t, -89.0, c.Pitch)
}

func TestRotateKeepsPivotAhead(t *testing.T) {
	c := newTestCamera()
	c.Rotate(0, 90)
	assert.InDelta(t, 90, c.Yaw, 1e-9)
	assertVecNear(t, mgl64.Vec3{1, 0, 0}, c.Forward(), 1e-9)
	assert.InDelta(t, 5, c.ForwardDistance(), 1e-9)
	assertVecNear(t, mgl64.Vec3{0, 0, 5}, c.Position, 1e-12)
}

func TestRotateWrapsYaw(t *testing.T) {
	c := newTestCamera()
	c.Rotate(0, 270)
	assert.InDelta(t, -90, c.Yaw, 1e-9)
}

func TestOrbitKeepsDistanceAndAim(t *testing.T) {
	c := newTestCamera()
	c.Orbit(30, 45)
	assert.InDelta(t, 5, c.Position.Sub(c.Pivot).Len(), 1e-9)
	assertVecNear(t, c.Pivot.Sub(c.Position).Normalize(), c.Forward(), 1e-9)
}

func TestPanMovesPositionAndPivot(t *testing.T) {
	c := newTestCamera()
	c.PanSpeed = 0.5
	pivot := c.Pivot
	c.Pan(2, 4)
	assertVecNear(t, mgl64.Vec3{-1, 2, 5}, c.Position, 1e-9)
	assertVecNear(t, pivot.Add(mgl64.Vec3{-1, 2, 0}), c.Pivot, 1e-9)
	assertVecNear(t, mgl64.Vec3{0, 0, -1}, c.Forward(), 1e-12)
}

func TestWorldToScreen(t *testing.T) {
	c := newTestCamera()
	p, ok := c.WorldToScreen(mgl64.Vec3{}, 800, 600)
	require.True(t, ok)
	assert.InDelta(t, 400, p.X, 1e-6)
	assert.InDelta(t, 300, p.Y, 1e-6)

	_, ok = c.WorldToScreen(mgl64.Vec3{0, 0, 10}, 800, 600)
	assert.False(t, ok, "behind the camera")
}
