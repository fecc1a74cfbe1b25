package snapshot

import (
	"github.com/ventosilenzioso/cubesync/internal/bitstream"
	"github.com/ventosilenzioso/cubesync/internal/cube"
)

const (
	smallDeltaBound  = 63
	mediumDeltaBound = 511
)

// serializeQuantizedCube writes or reads one cube's body for the
// QuantizePosition and delta mode family (DeltaNotChanged,
// DeltaRelativePosition and its two enum aliases). baseline is the
// previously agreed cube this one is coded relative to; it is nil for
// QuantizePosition, which does not use a baseline, and non-nil for
// every delta mode.
func serializeQuantizedCube(s *bitstream.Stream, mode Mode, bounds cube.Bounds, baseline, target *cube.QuantizedState) {
	if mode == QuantizePosition {
		serializeAbsoluteQuantized(s, bounds, target)
		return
	}

	changed := true
	if s.IsWriting {
		changed = *target != *baseline
	}
	s.SerializeBool(&changed)

	if !changed {
		if !s.IsWriting {
			*target = *baseline
		}
		return
	}

	switch mode {
	case DeltaNotChanged:
		serializeAbsoluteQuantized(s, bounds, target)
	default: // DeltaRelativePosition and its enum aliases
		serializeRelativeQuantized(s, bounds, baseline, target)
	}
}

func serializeAbsoluteQuantized(s *bitstream.Stream, bounds cube.Bounds, target *cube.QuantizedState) {
	maxXY, maxZ := axisBounds(bounds)
	s.SerializeBool(&target.Interacting)
	s.SerializeInt(&target.PositionX, -maxXY, maxXY)
	s.SerializeInt(&target.PositionY, -maxXY, maxXY)
	s.SerializeInt(&target.PositionZ, 0, maxZ)
	s.SerializeCompressedQuaternion(&target.Orientation, 9)
}

func serializeRelativeQuantized(s *bitstream.Stream, bounds cube.Bounds, baseline, target *cube.QuantizedState) {
	maxXY, maxZ := axisBounds(bounds)

	var interacting bool
	var small, medium bool
	var dx, dy, dz int32

	if s.IsWriting {
		interacting = target.Interacting
		dx = target.PositionX - baseline.PositionX
		dy = target.PositionY - baseline.PositionY
		dz = target.PositionZ - baseline.PositionZ
		small = fitsIn(dx, smallDeltaBound) && fitsIn(dy, smallDeltaBound) && fitsIn(dz, smallDeltaBound)
		medium = fitsIn(dx, mediumDeltaBound) && fitsIn(dy, mediumDeltaBound) && fitsIn(dz, mediumDeltaBound)
	}

	s.SerializeBool(&interacting)
	s.SerializeBool(&small)

	if small {
		s.SerializeInt(&dx, -smallDeltaBound, smallDeltaBound)
		s.SerializeInt(&dy, -smallDeltaBound, smallDeltaBound)
		s.SerializeInt(&dz, -smallDeltaBound, smallDeltaBound)
		if !s.IsWriting {
			target.Interacting = interacting
			target.PositionX = baseline.PositionX + dx
			target.PositionY = baseline.PositionY + dy
			target.PositionZ = baseline.PositionZ + dz
		}
		s.SerializeCompressedQuaternion(&target.Orientation, 9)
		return
	}

	s.SerializeBool(&medium)

	if medium {
		s.SerializeInt(&dx, -mediumDeltaBound, mediumDeltaBound)
		s.SerializeInt(&dy, -mediumDeltaBound, mediumDeltaBound)
		s.SerializeInt(&dz, -mediumDeltaBound, mediumDeltaBound)
		if !s.IsWriting {
			target.Interacting = interacting
			target.PositionX = baseline.PositionX + dx
			target.PositionY = baseline.PositionY + dy
			target.PositionZ = baseline.PositionZ + dz
		}
		s.SerializeCompressedQuaternion(&target.Orientation, 9)
		return
	}

	s.SerializeInt(&target.PositionX, -maxXY, maxXY)
	s.SerializeInt(&target.PositionY, -maxXY, maxXY)
	s.SerializeInt(&target.PositionZ, 0, maxZ)
	if !s.IsWriting {
		target.Interacting = false
	}
	s.SerializeCompressedQuaternion(&target.Orientation, 9)
}

func fitsIn(v int32, bound int32) bool {
	return v >= -bound && v <= bound
}

func axisBounds(b cube.Bounds) (maxXY, maxZ int32) {
	maxXY = int32(b.PositionBoundXY) * b.UnitsPerMeter
	maxZ = int32(b.PositionBoundZ) * b.UnitsPerMeter
	return
}
