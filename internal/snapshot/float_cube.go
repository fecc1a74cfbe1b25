package snapshot

import (
	"github.com/ventosilenzioso/cubesync/internal/bitstream"
	"github.com/ventosilenzioso/cubesync/internal/cube"
	"github.com/ventosilenzioso/cubesync/internal/vecmath"
)

// atRestThresholdSq is the squared-velocity threshold below which a
// cube is considered at rest and its velocity is omitted from the wire.
const atRestThresholdSq = 1e-6

// serializeFloatCube writes or reads one cube's body for the
// Uncompressed, Orientation and AtRest mode family. Position, and
// velocity when present, are raw 32-bit floats; orientation is raw
// under Uncompressed and smallest-three compressed otherwise.
func serializeFloatCube(s *bitstream.Stream, mode Mode, target *cube.State) {
	s.SerializeBool(&target.Interacting)
	s.SerializeVector3(&target.Position)

	if mode == Uncompressed {
		s.SerializeQuaternion(&target.Orientation)
	} else {
		s.SerializeCompressedQuaternion(&target.Orientation, 9)
	}

	if mode != AtRest {
		s.SerializeVector3(&target.LinearVelocity)
		return
	}

	atRest := false
	if s.IsWriting {
		atRest = target.LinearVelocity.LengthSquared() <= atRestThresholdSq
	}
	s.SerializeBool(&atRest)
	if atRest {
		if !s.IsWriting {
			target.LinearVelocity = vecmath.Vector3{}
		}
		return
	}
	s.SerializeVector3(&target.LinearVelocity)
}
