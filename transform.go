package waya

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Animatable scene object properties, in the order they appear in
// TransformProperties.
const (
	PropX  = "x"
	PropY  = "y"
	PropZ  = "z"
	PropRX = "rx"
	PropRY = "ry"
	PropRZ = "rz"
	PropSX = "sx"
	PropSY = "sy"
	PropSZ = "sz"
)

// TransformProperties lists the property names SetProperty accepts.
var TransformProperties = []string{PropX, PropY, PropZ, PropRX, PropRY, PropRZ, PropSX, PropSY, PropSZ}

// ModelMatrix returns the object-to-world transform. Composition order:
//
//	Scale -> RotateX -> RotateY -> RotateZ -> Translate
//
// so the matrix is T · Rz · Ry · Rx · S.
func (o *SceneObject) ModelMatrix() mgl64.Mat4 {
	p, r, s := o.Position, o.Rotation, o.Scale
	return mgl64.Translate3D(p.X(), p.Y(), p.Z()).
		Mul4(mgl64.HomogRotate3DZ(mgl64.DegToRad(r.Z()))).
		Mul4(mgl64.HomogRotate3DY(mgl64.DegToRad(r.Y()))).
		Mul4(mgl64.HomogRotate3DX(mgl64.DegToRad(r.X()))).
		Mul4(mgl64.Scale3D(s.X(), s.Y(), s.Z()))
}

// LocalToWorld transforms a point from object space to world space.
func (o *SceneObject) LocalToWorld(p mgl64.Vec3) mgl64.Vec3 {
	return o.ModelMatrix().Mul4x1(p.Vec4(1)).Vec3()
}

// propertyField maps a property name to the backing component.
func (o *SceneObject) propertyField(prop string) *float64 {
	switch prop {
	case PropX:
		return &o.Position[0]
	case PropY:
		return &o.Position[1]
	case PropZ:
		return &o.Position[2]
	case PropRX:
		return &o.Rotation[0]
	case PropRY:
		return &o.Rotation[1]
	case PropRZ:
		return &o.Rotation[2]
	case PropSX:
		return &o.Scale[0]
	case PropSY:
		return &o.Scale[1]
	case PropSZ:
		return &o.Scale[2]
	}
	return nil
}

// SetProperty writes one transform component by name and reports whether
// the name is known.
func (o *SceneObject) SetProperty(prop string, v float64) bool {
	f := o.propertyField(prop)
	if f == nil {
		return false
	}
	*f = v
	return true
}

// Property reads one transform component by name.
func (o *SceneObject) Property(prop string) (float64, bool) {
	f := o.propertyField(prop)
	if f == nil {
		return 0, false
	}
	return *f, true
}
