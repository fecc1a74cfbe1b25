package bitstream

import (
	"math"

	"github.com/ventosilenzioso/cubesync/internal/vecmath"
)

// smallestThreeScale returns the integer bound M = (1<<bits)-1 that the
// three smallest components are scaled to.
func smallestThreeScale(bitsPerComponent int) int32 {
	return int32(1)<<uint(bitsPerComponent) - 1
}

const sqrt2Inv = 0.70710678118654752440 // 1/sqrt(2)

// SerializeCompressedQuaternion writes or reads a unit quaternion using
// the smallest-three scheme: the index of the largest-magnitude
// component is dropped and reconstructed on read from the unit-length
// constraint, negating the whole quaternion first if necessary since a
// unit quaternion and its negation represent the same rotation.
//
// Implemented as a BitStream method in the same style as
// SerializeCompressedVector3 (vector.go) rather than a free function, so the
// routine can be written once and shared by the write and read paths.
func (s *Stream) SerializeCompressedQuaternion(q *vecmath.Quaternion, bitsPerComponent int) {
	maxValue := smallestThreeScale(bitsPerComponent)

	var largest int32
	var a, b, c float32

	if s.IsWriting {
		largest, a, b, c = findLargestAndDrop(*q)
	}

	s.SerializeInt(&largest, 0, 3)

	s.serializeSmallestComponent(&a, maxValue)
	s.serializeSmallestComponent(&b, maxValue)
	s.serializeSmallestComponent(&c, maxValue)

	if !s.IsWriting {
		*q = reconstructQuaternion(largest, a, b, c)
	}
}

// findLargestAndDrop returns the index of the component with the
// largest absolute value and the remaining three components in fixed
// (skip-largest) order, negating the whole quaternion first if the
// largest component is negative.
func findLargestAndDrop(q vecmath.Quaternion) (largest int32, a, b, c float32) {
	values := [4]float32{q.X, q.Y, q.Z, q.W}

	largest = 0
	largestAbs := absf(values[0])
	for i := 1; i < 4; i++ {
		if abs := absf(values[i]); abs > largestAbs {
			largestAbs = abs
			largest = int32(i)
		}
	}

	if values[largest] < 0 {
		values[0], values[1], values[2], values[3] = -values[0], -values[1], -values[2], -values[3]
	}

	remaining := make([]float32, 0, 3)
	for i, v := range values {
		if int32(i) != largest {
			remaining = append(remaining, v)
		}
	}
	return largest, remaining[0], remaining[1], remaining[2]
}

func reconstructQuaternion(largest int32, a, b, c float32) vecmath.Quaternion {
	sumSq := a*a + b*b + c*c
	remainder := float32(1) - sumSq
	if remainder < 0 {
		remainder = 0
	}
	dropped := float32(math.Sqrt(float64(remainder)))

	values := [4]float32{}
	rest := [3]float32{a, b, c}
	ri := 0
	for i := 0; i < 4; i++ {
		if int32(i) == largest {
			values[i] = dropped
		} else {
			values[i] = rest[ri]
			ri++
		}
	}
	return vecmath.Quaternion{X: values[0], Y: values[1], Z: values[2], W: values[3]}
}

func (s *Stream) serializeSmallestComponent(value *float32, maxValue int32) {
	var intValue int32
	if s.IsWriting {
		scaled := *value / sqrt2Inv
		intValue = int32(scaled*float32(maxValue) + 0.5)
		if intValue < -maxValue {
			intValue = -maxValue
		}
		if intValue > maxValue {
			intValue = maxValue
		}
	}
	s.SerializeInt(&intValue, -maxValue, maxValue)
	if !s.IsWriting {
		*value = (float32(intValue) / float32(maxValue)) * sqrt2Inv
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
