// Package spatial converts between the pose encodings used by robot
// description formats.
//
// Graph-style documents encode a pose as six numbers, x y z roll pitch yaw,
// where the angles rotate about the fixed X, Y and Z axes in that order.
// The in-memory model stores the same pose as a translation and a unit
// quaternion. Tree-style documents want an axis-angle rotation instead.
//
// All angles are radians.
package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Unit axes.
var (
	AxisX = mgl64.Vec3{1, 0, 0}
	AxisY = mgl64.Vec3{0, 1, 0}
	AxisZ = mgl64.Vec3{0, 0, 1}
)

const gimbalEpsilon = 1e-12

// Quat returns the orientation reached by rotating roll about the fixed X
// axis, then pitch about the fixed Y axis, then yaw about the fixed Z axis.
// The result equals qz(yaw) * qy(pitch) * qx(roll).
func Quat(roll, pitch, yaw float64) mgl64.Quat {
	ai, aj, ak := roll/2, pitch/2, yaw/2
	ci, si := math.Cos(ai), math.Sin(ai)
	cj, sj := math.Cos(aj), math.Sin(aj)
	ck, sk := math.Cos(ak), math.Sin(ak)
	cc, cs := ci*ck, ci*sk
	sc, ss := si*ck, si*sk

	return mgl64.Quat{
		W: cj*cc + sj*ss,
		V: mgl64.Vec3{
			cj*sc - sj*cs,
			cj*ss + sj*cc,
			cj*cs - sj*sc,
		},
	}
}

// Pose splits a six-component pose into its translation and orientation.
// v must hold exactly six values: x y z roll pitch yaw.
func Pose(v []float64) (mgl64.Vec3, mgl64.Quat) {
	return mgl64.Vec3{v[0], v[1], v[2]}, Quat(v[3], v[4], v[5])
}

// Euler is the inverse of Quat: it returns roll, pitch and yaw for q.
// Near pitch = ±π/2 the yaw is reported as zero and the whole rotation
// about the vertical is folded into roll.
func Euler(q mgl64.Quat) (roll, pitch, yaw float64) {
	m := q.Normalize().Mat4()
	cy := math.Sqrt(m.At(0, 0)*m.At(0, 0) + m.At(1, 0)*m.At(1, 0))
	if cy > gimbalEpsilon {
		roll = math.Atan2(m.At(2, 1), m.At(2, 2))
		pitch = math.Atan2(-m.At(2, 0), cy)
		yaw = math.Atan2(m.At(1, 0), m.At(0, 0))
		return roll, pitch, yaw
	}
	roll = math.Atan2(-m.At(1, 2), m.At(1, 1))
	pitch = math.Atan2(-m.At(2, 0), cy)
	return roll, pitch, 0
}

// AxisAngle returns the rotation axis and angle of q. The identity rotation
// is reported about +Z with a zero angle.
func AxisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	q = q.Normalize()
	if q.W < 0 {
		q = mgl64.Quat{W: -q.W, V: q.V.Mul(-1)}
	}
	w := math.Min(1, q.W)
	s := math.Sqrt(1 - w*w)
	if s < gimbalEpsilon {
		return AxisZ, 0
	}
	return q.V.Mul(1 / s), 2 * math.Acos(w)
}
