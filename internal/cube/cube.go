// Package cube defines the rigid-body state types the snapshot pipeline
// moves around, and the fixed-point quantizer that turns a simulation's
// floating-point CubeState into the integer QuantizedCubeState carried
// on the wire.
//
// The quantize/dequantize split mirrors CompressionDemo.cpp's
// GetCubeState/quantized state helpers in original_source, adapted to
// return values instead of writing through output parameters.
package cube

import "github.com/ventosilenzioso/cubesync/internal/vecmath"

// State is one rigid body's uncompressed state at a simulation tick.
// Angular velocity is never transmitted.
type State struct {
	Interacting    bool
	Position       vecmath.Vector3
	Orientation    vecmath.Quaternion
	LinearVelocity vecmath.Vector3
}

// QuantizedState is one rigid body's state as it travels on the wire:
// integer positions in units of UnitsPerMeter, and a compressed
// orientation. Equality is bitwise field equality.
type QuantizedState struct {
	Interacting bool
	PositionX   int32
	PositionY   int32
	PositionZ   int32
	Orientation vecmath.Quaternion // kept as a float quaternion; codec compresses at wire time
}

// Bounds describes the axis-aligned box a quantized position is
// clamped into, in meters, before scaling by UnitsPerMeter.
type Bounds struct {
	UnitsPerMeter   int32
	PositionBoundXY float32
	PositionBoundZ  float32
}

// Quantizer converts between State and QuantizedState under a fixed
// set of axis bounds.
type Quantizer struct {
	Bounds Bounds
}

func NewQuantizer(b Bounds) Quantizer { return Quantizer{Bounds: b} }

// Quantize rounds position to the nearest UnitsPerMeter unit and clamps
// each axis to its declared bound. Orientation passes through
// unchanged — the quaternion codec performs the lossy compression at
// serialization time, not here. LinearVelocity is discarded: the
// quantized path never transmits it.
func (q Quantizer) Quantize(s State) QuantizedState {
	upm := float32(q.Bounds.UnitsPerMeter)
	xyBound := q.Bounds.PositionBoundXY * upm
	zBound := q.Bounds.PositionBoundZ * upm

	return QuantizedState{
		Interacting: s.Interacting,
		PositionX:   clampInt(roundScaled(s.Position.X, upm), -int32(xyBound), int32(xyBound)),
		PositionY:   clampInt(roundScaled(s.Position.Y, upm), -int32(xyBound), int32(xyBound)),
		PositionZ:   clampInt(roundScaled(s.Position.Z, upm), 0, int32(zBound)),
		Orientation: s.Orientation,
	}
}

// Dequantize inverts the position scaling. LinearVelocity is zeroed:
// the quantized path never carried it.
func (q Quantizer) Dequantize(qs QuantizedState) State {
	upm := float32(q.Bounds.UnitsPerMeter)
	return State{
		Interacting:    qs.Interacting,
		Position:       vecmath.Vector3{X: float32(qs.PositionX) / upm, Y: float32(qs.PositionY) / upm, Z: float32(qs.PositionZ) / upm},
		Orientation:    qs.Orientation,
		LinearVelocity: vecmath.Vector3{},
	}
}

func roundScaled(v float32, scale float32) int32 {
	scaled := v * scale
	if scaled >= 0 {
		return int32(scaled + 0.5)
	}
	return int32(scaled - 0.5)
}

func clampInt(v, min, max int32) int32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// Snapshot is the uncompressed state of every cube at one simulation
// tick. NumCubes is a run-time configuration value, not a compile-time
// constant: length is the source of truth, callers size it from
// Config.NumCubes.
type Snapshot []State

// QuantizedSnapshot is the quantized form of a Snapshot, same length
// and index correspondence.
type QuantizedSnapshot []QuantizedState

// QuantizeSnapshot applies Quantizer.Quantize to every cube, index for index.
func (q Quantizer) QuantizeSnapshot(s Snapshot) QuantizedSnapshot {
	out := make(QuantizedSnapshot, len(s))
	for i, cs := range s {
		out[i] = q.Quantize(cs)
	}
	return out
}

// DequantizeSnapshot applies Quantizer.Dequantize to every cube, index for index.
func (q Quantizer) DequantizeSnapshot(qs QuantizedSnapshot) Snapshot {
	out := make(Snapshot, len(qs))
	for i, c := range qs {
		out[i] = q.Dequantize(c)
	}
	return out
}
