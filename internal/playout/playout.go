// Package playout implements the fixed-latency jitter buffer that
// turns a stream of arriving, out-of-order snapshots into a smooth
// per-tick view: it holds incoming snapshots until the configured
// playout delay has elapsed, then interpolates between the two
// bracketing the current playback time.
//
// Grounded on CompressionDemo.cpp's view interpolation update
// (original_source) for the not_interpolating/interpolating state
// machine and the linear/hermite method split, and on the fixed-size
// ring plus click-minimizing cut logic in
// other_examples/.../bridge-pcm-playout_buffer.go.go (PCMPlayoutBuffer)
// for the general shape of "buffer until delay elapsed, then drain in
// order, stall rather than underrun" - here adapted from a fixed-size
// audio frame FIFO to a timestamped snapshot ring with interpolation
// in place of frame concatenation.
package playout

import (
	"github.com/ventosilenzioso/cubesync/internal/cube"
	"github.com/ventosilenzioso/cubesync/internal/vecmath"
)

// Method selects how a cube's state is interpolated between two
// bracketing snapshots.
type Method int

const (
	Linear Method = iota
	Hermite
)

// ObjectUpdate is one cube's interpolated state for the current frame.
type ObjectUpdate struct {
	Interacting bool
	Position    vecmath.Vector3
	Orientation vecmath.Quaternion
}

type entry struct {
	occupied  bool
	sequence  uint16
	timestamp float64
	cubes     cube.Snapshot
}

// Buffer is the fixed-size playout ring of capacity N, storing
// (sequence, timestamp, cubes) tuples as they arrive and emitting
// interpolated ObjectUpdates as playback time advances.
type Buffer struct {
	slots []entry

	playoutDelay  float64
	method        Method
	interpolating bool

	highestSequence uint16
	haveSequence    bool
}

// New returns an empty playout buffer of the given capacity, draining
// at playoutDelay seconds behind the arrival clock using the given
// interpolation method.
func New(capacity int, playoutDelay float64, method Method) *Buffer {
	return &Buffer{
		slots:        make([]entry, capacity),
		playoutDelay: playoutDelay,
		method:       method,
	}
}

// AddSnapshot records a decoded snapshot arriving at wall-clock time
// now, tagged with its wire sequence number. Slot index is sequence
// mod capacity, matching every other ring in the pipeline.
func (b *Buffer) AddSnapshot(now float64, sequence uint16, cubes cube.Snapshot) {
	idx := int(sequence) % len(b.slots)
	b.slots[idx] = entry{occupied: true, sequence: sequence, timestamp: now, cubes: cubes}

	if !b.haveSequence || sequenceGreaterThan(sequence, b.highestSequence) {
		b.highestSequence = sequence
		b.haveSequence = true
	}
}

func sequenceGreaterThan(a, b uint16) bool {
	return (a > b && a-b <= 32768) || (a < b && b-a > 32768)
}

// GetViewUpdate computes the per-cube interpolated view at time now.
// It returns (updates, ok); ok is false on a stall (no bracketing pair
// available), in which case the caller should keep showing the
// previous frame's updates and log a diagnostic.
func (b *Buffer) GetViewUpdate(now float64) ([]ObjectUpdate, bool) {
	tPlay := now - b.playoutDelay

	oldest, oldestOK := b.oldestOccupied()
	if !oldestOK {
		return nil, false
	}

	if !b.interpolating {
		if oldest.timestamp > tPlay {
			return nil, false
		}
		if !b.hasLaterThan(oldest.sequence) {
			return nil, false
		}
		b.interpolating = true
	}

	a, bEntry, ok := b.findBracket(tPlay)
	if !ok {
		return nil, false
	}

	span := bEntry.timestamp - a.timestamp
	var u float64
	if span > 0 {
		u = (tPlay - a.timestamp) / span
	}

	numCubes := len(a.cubes)
	updates := make([]ObjectUpdate, numCubes)

	before, beforeOK := b.find(prevSequence(a.sequence))
	after, afterOK := b.find(nextSequence(bEntry.sequence))
	useHermite := b.method == Hermite && beforeOK && afterOK && len(before.cubes) == numCubes && len(after.cubes) == numCubes

	for i := 0; i < numCubes; i++ {
		if useHermite {
			updates[i] = hermiteUpdate(before.cubes[i], a.cubes[i], bEntry.cubes[i], after.cubes[i], float32(u))
		} else {
			updates[i] = linearUpdate(a.cubes[i], bEntry.cubes[i], float32(u))
		}
	}
	return updates, true
}

func linearUpdate(a, b cube.State, u float32) ObjectUpdate {
	return ObjectUpdate{
		Interacting: a.Interacting,
		Position:    a.Position.Lerp(b.Position, u),
		Orientation: a.Orientation.Nlerp(b.Orientation, u),
	}
}

func hermiteUpdate(p0, p1, p2, p3 cube.State, u float32) ObjectUpdate {
	return ObjectUpdate{
		Interacting: p1.Interacting,
		Position:    vecmath.HermiteVector(p0.Position, p1.Position, p2.Position, p3.Position, u),
		Orientation: p1.Orientation.Nlerp(p2.Orientation, u),
	}
}

func prevSequence(s uint16) uint16 { return s - 1 }
func nextSequence(s uint16) uint16 { return s + 1 }

func (b *Buffer) find(sequence uint16) (entry, bool) {
	e := b.slots[int(sequence)%len(b.slots)]
	if !e.occupied || e.sequence != sequence {
		return entry{}, false
	}
	return e, true
}

func (b *Buffer) oldestOccupied() (entry, bool) {
	var best entry
	found := false
	for _, e := range b.slots {
		if !e.occupied {
			continue
		}
		if !found || e.timestamp < best.timestamp {
			best = e
			found = true
		}
	}
	return best, found
}

func (b *Buffer) hasLaterThan(sequence uint16) bool {
	for _, e := range b.slots {
		if e.occupied && sequenceGreaterThan(e.sequence, sequence) {
			return true
		}
	}
	return false
}

// findBracket returns the pair of occupied entries (a, b) with the
// smallest timestamp span such that a.timestamp <= tPlay < b.timestamp.
func (b *Buffer) findBracket(tPlay float64) (entry, entry, bool) {
	var a, bestB entry
	haveA, haveB := false, false

	for _, e := range b.slots {
		if !e.occupied {
			continue
		}
		if e.timestamp <= tPlay {
			if !haveA || e.timestamp > a.timestamp {
				a = e
				haveA = true
			}
		} else {
			if !haveB || e.timestamp < bestB.timestamp {
				bestB = e
				haveB = true
			}
		}
	}
	if !haveA || !haveB {
		return entry{}, entry{}, false
	}
	return a, bestB, true
}
