package bitstream

import (
	"testing"

	"github.com/ventosilenzioso/cubesync/internal/vecmath"
)

func roundTripQuaternion(t *testing.T, q vecmath.Quaternion) vecmath.Quaternion {
	t.Helper()
	w := NewWriter(16)
	w.SerializeCompressedQuaternion(&q, 9)
	w.Flush()

	r := NewReader(w.Bytes())
	var out vecmath.Quaternion
	r.SerializeCompressedQuaternion(&out, 9)
	return out
}

func TestCompressedQuaternionRoundTrip(t *testing.T) {
	cases := []vecmath.Quaternion{
		vecmath.Identity,
		{X: 1, Y: 0, Z: 0, W: 0},
		{X: -1, Y: 0, Z: 0, W: 0},
		{X: 0, Y: 0.70710678, Z: 0, W: 0.70710678},
		{X: 0.5, Y: 0.5, Z: 0.5, W: 0.5},
	}
	for _, q := range cases {
		got := roundTripQuaternion(t, q)
		if delta := got.Dot(q); delta < 0.999 && delta > -0.999 {
			t.Fatalf("quaternion %+v reconstructed as %+v (dot %.4f, want near +-1)", q, got, delta)
		}
	}
}

func TestCompressedQuaternionNegatesTowardPositiveLargest(t *testing.T) {
	q := vecmath.Quaternion{X: -1, Y: 0, Z: 0, W: 0}
	got := roundTripQuaternion(t, q)
	if got.X < 0 {
		t.Fatalf("expected reconstructed quaternion to have positive dropped component, got %+v", got)
	}
}
