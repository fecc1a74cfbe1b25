// Package snapshot implements the eight-mode SnapshotPacket compression
// core: one Serialize routine per packet, driven by a compression
// mode, that writes or reads identically depending on the stream's
// IsWriting flag.
//
// Grounded on CompressionDemo.cpp's ProcessSnapshot / WriteCube /
// ReadCube family of mode branches in original_source, reshaped from
// one monolithic function with output parameters into small
// per-mode-group helpers, the way the bitstream package's Serialize*
// methods are themselves reshaped from the original's macro style.
package snapshot

import "github.com/ventosilenzioso/cubesync/internal/bitstream"

// Mode selects how a packet's cube bodies are encoded. The two
// reserved modes alias DELTA_RELATIVE_POSITION's body exactly, per the
// reference implementation: they exist so the enum range and the
// mode-switch logic survive extension without a wire format change.
type Mode int32

const (
	Uncompressed Mode = iota
	Orientation
	AtRest
	QuantizePosition
	DeltaNotChanged
	DeltaRelativePosition
	DeltaRelativeOrientation
	DeltaChangedIndices

	modeCount
)

// ModeCount is the number of defined compression modes.
const ModeCount = int32(modeCount)

func (m Mode) String() string {
	switch m {
	case Uncompressed:
		return "UNCOMPRESSED"
	case Orientation:
		return "ORIENTATION"
	case AtRest:
		return "AT_REST"
	case QuantizePosition:
		return "QUANTIZE_POSITION"
	case DeltaNotChanged:
		return "DELTA_NOT_CHANGED"
	case DeltaRelativePosition:
		return "DELTA_RELATIVE_POSITION"
	case DeltaRelativeOrientation:
		return "DELTA_RELATIVE_ORIENTATION"
	case DeltaChangedIndices:
		return "DELTA_CHANGED_INDICES"
	default:
		return "UNKNOWN"
	}
}

// IsQuantized reports whether a mode operates on the quantized
// (integer position) snapshot family rather than the raw float family.
func (m Mode) IsQuantized() bool {
	return m >= QuantizePosition
}

// IsDelta reports whether a mode copies unchanged cubes forward from a
// baseline instead of transmitting every cube in full.
func (m Mode) IsDelta() bool {
	return m >= DeltaNotChanged
}

// serializeMode writes or reads the mode as a ranged integer over the
// full enum range.
func serializeMode(s *bitstream.Stream, m *Mode) {
	v := int32(*m)
	s.SerializeInt(&v, 0, ModeCount-1)
	*m = Mode(v)
}
