package snapshot

import (
	"errors"

	"github.com/ventosilenzioso/cubesync/internal/bitstream"
	"github.com/ventosilenzioso/cubesync/internal/cube"
	"github.com/ventosilenzioso/cubesync/internal/ring"
)

// ErrMissingBaseline is returned when a non-initial packet names a
// base_sequence the receiver's sequence buffer no longer holds: the
// sender is required by the ack policy to only reference baselines the
// receiver has acknowledged, so this indicates either a protocol
// violation or a receiver window that fell too far behind.
var ErrMissingBaseline = errors.New("snapshot: base sequence not present in sequence buffer")

// FloatWindow and QuantizedWindow/Buffer are the concrete ring types a
// Packet's context slots must hold.
type (
	FloatWindow     = ring.SlidingWindow[cube.Snapshot]
	FloatBuffer     = ring.SequenceBuffer[cube.Snapshot]
	QuantizedWindow = ring.SlidingWindow[cube.QuantizedSnapshot]
	QuantizedBuffer = ring.SequenceBuffer[cube.QuantizedSnapshot]
)

// Packet is one snapshot packet's header. Its cube payload is not
// carried as a field: per the wire schema, the payload lives in the
// sliding window slot (on write) or sequence buffer slot (on read)
// addressed by Sequence, reached through the stream's context array.
type Packet struct {
	Sequence     uint16
	Mode         Mode
	Initial      bool
	BaseSequence uint16
}

// Serialize writes or reads a full snapshot packet: header, baseline
// resolution, and the per-cube bodies for numCubes cubes. bounds gives
// the axis bounds used by every quantized-family mode.
func (p *Packet) Serialize(s *bitstream.Stream, bounds cube.Bounds, numCubes int) error {
	s.SerializeUint16(&p.Sequence)
	serializeMode(s, &p.Mode)
	s.SerializeBool(&p.Initial)
	if !p.Initial {
		s.SerializeUint16(&p.BaseSequence)
	}

	var err error
	if p.Mode.IsQuantized() {
		err = p.serializeQuantizedBody(s, bounds, numCubes)
	} else {
		err = p.serializeFloatBody(s, numCubes)
	}
	if err == nil && s.Overran() {
		err = bitstream.ErrTruncated
	}
	return err
}

func (p *Packet) serializeFloatBody(s *bitstream.Stream, numCubes int) error {
	var target *cube.Snapshot
	if s.IsWriting {
		win := s.GetContext(bitstream.ContextSnapshotSlidingWindow).(*FloatWindow)
		target = win.Get(p.Sequence)
	} else {
		buf := s.GetContext(bitstream.ContextSnapshotSequenceBuffer).(*FloatBuffer)
		target = buf.Insert(p.Sequence)
	}
	if !s.IsWriting && len(*target) != numCubes {
		*target = make(cube.Snapshot, numCubes)
	}

	for i := 0; i < numCubes; i++ {
		serializeFloatCube(s, p.Mode, &(*target)[i])
	}
	return nil
}

func (p *Packet) serializeQuantizedBody(s *bitstream.Stream, bounds cube.Bounds, numCubes int) error {
	var target *cube.QuantizedSnapshot
	if s.IsWriting {
		win := s.GetContext(bitstream.ContextQuantizedSlidingWindow).(*QuantizedWindow)
		target = win.Get(p.Sequence)
	} else {
		buf := s.GetContext(bitstream.ContextQuantizedSequenceBuffer).(*QuantizedBuffer)
		target = buf.Insert(p.Sequence)
	}
	if !s.IsWriting && len(*target) != numCubes {
		*target = make(cube.QuantizedSnapshot, numCubes)
	}

	baseline, err := p.resolveQuantizedBaseline(s, numCubes)
	if err != nil {
		return err
	}

	for i := 0; i < numCubes; i++ {
		var baselineCube *cube.QuantizedState
		if baseline != nil {
			baselineCube = &(*baseline)[i]
		}
		serializeQuantizedCube(s, p.Mode, bounds, baselineCube, &(*target)[i])
	}
	return nil
}

func (p *Packet) resolveQuantizedBaseline(s *bitstream.Stream, numCubes int) (*cube.QuantizedSnapshot, error) {
	if !p.Mode.IsDelta() {
		return nil, nil
	}
	if p.Initial {
		initial := s.GetContext(bitstream.ContextQuantizedInitialSnapshot).(*cube.QuantizedSnapshot)
		return initial, nil
	}
	if s.IsWriting {
		win := s.GetContext(bitstream.ContextQuantizedSlidingWindow).(*QuantizedWindow)
		return win.Get(p.BaseSequence), nil
	}
	buf := s.GetContext(bitstream.ContextQuantizedSequenceBuffer).(*QuantizedBuffer)
	baseline := buf.Find(p.BaseSequence)
	if baseline == nil {
		return nil, ErrMissingBaseline
	}
	return baseline, nil
}

// AckPacket is the other packet kind the factory produces: a bare
// acknowledgement of the highest sequence the sender of this ack has
// received.
type AckPacket struct {
	Ack uint16
}

// Serialize writes or reads the ack field.
func (a *AckPacket) Serialize(s *bitstream.Stream) {
	s.SerializeUint16(&a.Ack)
}
