package waya

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
)

func TestModelMatrixIdentity(t *testing.T) {
	o := NewSceneObject("Cube", ObjectMesh)
	assert.True(t, o.ModelMatrix().ApproxEqual(mgl64.Ident4()))
}

func TestModelMatrixOrder(t *testing.T) {
	o := NewSceneObject("Cube", ObjectMesh)
	o.Scale = mgl64.Vec3{2, 2, 2}
	o.Rotation = mgl64.Vec3{0, 0, 90}
	o.Position = mgl64.Vec3{10, 0, 0}

	// Scale first: (1,0,0) -> (2,0,0); rotate 90° about Z -> (0,2,0);
	// translate -> (10,2,0).
	got := o.LocalToWorld(mgl64.Vec3{1, 0, 0})
	assertVecNear(t, mgl64.Vec3{10, 2, 0}, got, 1e-9)
}

func TestModelMatrixEulerOrder(t *testing.T) {
	o := NewSceneObject("Cube", ObjectMesh)
	o.Rotation = mgl64.Vec3{90, 90, 0}

	// X is applied before Y: (0,1,0) -Rx90-> (0,0,1) -Ry90-> (1,0,0).
	got := o.LocalToWorld(mgl64.Vec3{0, 1, 0})
	assertVecNear(t, mgl64.Vec3{1, 0, 0}, got, 1e-9)
}

func TestSetProperty(t *testing.T) {
	o := NewSceneObject("Cube", ObjectMesh)
	for i, prop := range TransformProperties {
		assert.True(t, o.SetProperty(prop, float64(i+1)), prop)
		v, ok := o.Property(prop)
		assert.True(t, ok)
		assert.Equal(t, float64(i+1), v)
	}
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, o.Position)
	assert.Equal(t, mgl64.Vec3{4, 5, 6}, o.Rotation)
	assert.Equal(t, mgl64.Vec3{7, 8, 9}, o.Scale)

	assert.False(t, o.SetProperty("w", 1))
	_, ok := o.Property("w")
	assert.False(t, ok)
}
