// Package vecmath provides the small set of vector and quaternion
// operations the snapshot pipeline needs: quantization, compression,
// and interpolation all bottom out in these primitives.
package vecmath

import "math"

type Vector3 struct {
	X, Y, Z float32
}

func (v Vector3) Add(o Vector3) Vector3 { return Vector3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vector3) Sub(o Vector3) Vector3 { return Vector3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vector3) Scale(s float32) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

func (v Vector3) Lerp(o Vector3, t float32) Vector3 {
	return Vector3{
		lerp(v.X, o.X, t),
		lerp(v.Y, o.Y, t),
		lerp(v.Z, o.Z, t),
	}
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }

// HermiteVector evaluates a cubic Hermite spline at t in [0,1] between p1 and p2
// with tangents derived from the neighboring points p0 and p3 (Catmull-Rom
// style tangents, scaled by 0.5).
func HermiteVector(p0, p1, p2, p3 Vector3, t float32) Vector3 {
	m1 := p2.Sub(p0).Scale(0.5)
	m2 := p3.Sub(p1).Scale(0.5)

	t2 := t * t
	t3 := t2 * t

	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2

	return p1.Scale(h00).Add(m1.Scale(h10)).Add(p2.Scale(h01)).Add(m2.Scale(h11))
}

// Quaternion is stored (x, y, z, w) to match the wire order of
// serialize_quaternion.
type Quaternion struct {
	X, Y, Z, W float32
}

func (q Quaternion) Component(i int) float32 {
	switch i {
	case 0:
		return q.X
	case 1:
		return q.Y
	case 2:
		return q.Z
	default:
		return q.W
	}
}

func (q Quaternion) Negate() Quaternion {
	return Quaternion{-q.X, -q.Y, -q.Z, -q.W}
}

func (q Quaternion) Dot(o Quaternion) float32 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

// Nlerp normalizes the linear interpolation between two unit quaternions.
// It takes the shortest path by flipping o when the dot product is negative.
func (q Quaternion) Nlerp(o Quaternion, t float32) Quaternion {
	if q.Dot(o) < 0 {
		o = o.Negate()
	}
	r := Quaternion{
		lerp(q.X, o.X, t),
		lerp(q.Y, o.Y, t),
		lerp(q.Z, o.Z, t),
		lerp(q.W, o.W, t),
	}
	return r.Normalized()
}

func (q Quaternion) LengthSquared() float32 {
	return q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W
}

func (q Quaternion) Normalized() Quaternion {
	lenSq := q.LengthSquared()
	if lenSq <= 0 {
		return Quaternion{0, 0, 0, 1}
	}
	inv := float32(1.0 / math.Sqrt(float64(lenSq)))
	return Quaternion{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// Identity is the identity rotation.
var Identity = Quaternion{0, 0, 0, 1}
