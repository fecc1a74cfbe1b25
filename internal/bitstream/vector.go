package bitstream

import "github.com/ventosilenzioso/cubesync/internal/vecmath"

// SerializeVector3 writes or reads three raw 32-bit floats.
func (s *Stream) SerializeVector3(v *vecmath.Vector3) {
	s.SerializeFloat32(&v.X)
	s.SerializeFloat32(&v.Y)
	s.SerializeFloat32(&v.Z)
}

// SerializeQuaternion writes or reads four raw 32-bit floats.
func (s *Stream) SerializeQuaternion(q *vecmath.Quaternion) {
	s.SerializeFloat32(&q.X)
	s.SerializeFloat32(&q.Y)
	s.SerializeFloat32(&q.Z)
	s.SerializeFloat32(&q.W)
}

// SerializeCompressedVector3 writes or reads three ranged integers
// over [min, max] quantized to the given resolution.
func (s *Stream) SerializeCompressedVector3(v *vecmath.Vector3, min, max, resolution float32) {
	maxIntValue := int32((max - min) / resolution)
	s.serializeCompressedFloat(&v.X, min, maxIntValue, resolution)
	s.serializeCompressedFloat(&v.Y, min, maxIntValue, resolution)
	s.serializeCompressedFloat(&v.Z, min, maxIntValue, resolution)
}

func (s *Stream) serializeCompressedFloat(value *float32, min float32, maxIntValue int32, resolution float32) {
	var intValue int32
	if s.IsWriting {
		scaled := (*value - min) / resolution
		intValue = int32(scaled + 0.5)
		if intValue < 0 {
			intValue = 0
		}
		if intValue > maxIntValue {
			intValue = maxIntValue
		}
	}
	s.SerializeInt(&intValue, 0, maxIntValue)
	if !s.IsWriting {
		*value = min + float32(intValue)*resolution
	}
}
