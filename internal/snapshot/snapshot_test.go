package snapshot

import (
	"testing"

	"github.com/ventosilenzioso/cubesync/internal/bitstream"
	"github.com/ventosilenzioso/cubesync/internal/cube"
	"github.com/ventosilenzioso/cubesync/internal/ring"
	"github.com/ventosilenzioso/cubesync/internal/vecmath"
)

const testNumCubes = 3

func testBounds() cube.Bounds {
	return cube.Bounds{UnitsPerMeter: 512, PositionBoundXY: 256, PositionBoundZ: 32}
}

func sampleSnapshot() cube.Snapshot {
	return cube.Snapshot{
		{Interacting: true, Position: vecmath.Vector3{X: 1, Y: 2, Z: 3}, Orientation: vecmath.Identity, LinearVelocity: vecmath.Vector3{X: 0.1, Y: 0, Z: 0}},
		{Interacting: false, Position: vecmath.Vector3{X: -10, Y: 5, Z: 0}, Orientation: vecmath.Quaternion{X: 0, Y: 0.70710678, Z: 0, W: 0.70710678}, LinearVelocity: vecmath.Vector3{}},
		{Interacting: true, Position: vecmath.Vector3{X: 100, Y: -200, Z: 31}, Orientation: vecmath.Identity, LinearVelocity: vecmath.Vector3{X: 5, Y: 5, Z: 5}},
	}
}

func wireFloatContexts() (writerWin *FloatWindow, readerBuf *FloatBuffer) {
	return ring.NewSlidingWindow[cube.Snapshot](8), ring.NewSequenceBuffer[cube.Snapshot](8)
}

func TestSnapshotPacketFloatModesRoundTrip(t *testing.T) {
	modes := []Mode{Uncompressed, Orientation, AtRest}
	for _, mode := range modes {
		mode := mode
		t.Run(mode.String(), func(t *testing.T) {
			win, buf := wireFloatContexts()
			src := sampleSnapshot()
			slot, _ := win.Insert()
			*slot = src

			w := bitstream.NewWriter(128)
			w.SetContext(bitstream.ContextSnapshotSlidingWindow, win)
			p := Packet{Sequence: 0, Mode: mode, Initial: true}
			if err := p.Serialize(w, testBounds(), testNumCubes); err != nil {
				t.Fatalf("write: %v", err)
			}
			w.Flush()

			r := bitstream.NewReader(w.Bytes())
			r.SetContext(bitstream.ContextSnapshotSequenceBuffer, buf)
			var rp Packet
			if err := rp.Serialize(r, testBounds(), testNumCubes); err != nil {
				t.Fatalf("read: %v", err)
			}

			got := buf.Find(0)
			if got == nil {
				t.Fatalf("expected decoded snapshot in sequence buffer")
			}
			for i := 0; i < testNumCubes; i++ {
				if (*got)[i].Interacting != src[i].Interacting {
					t.Errorf("cube %d interacting mismatch", i)
				}
				if absf((*got)[i].Position.X-src[i].Position.X) > 0.001 {
					t.Errorf("cube %d position.X mismatch: got %v want %v", i, (*got)[i].Position.X, src[i].Position.X)
				}
			}
		})
	}
}

func TestSnapshotPacketQuantizedModesRoundTrip(t *testing.T) {
	bounds := testBounds()
	q := cube.NewQuantizer(bounds)
	src := q.QuantizeSnapshot(sampleSnapshot())

	modes := []Mode{QuantizePosition, DeltaNotChanged, DeltaRelativePosition}
	for _, mode := range modes {
		mode := mode
		t.Run(mode.String(), func(t *testing.T) {
			win := ring.NewSlidingWindow[cube.QuantizedSnapshot](8)
			buf := ring.NewSequenceBuffer[cube.QuantizedSnapshot](8)

			baseline := make(cube.QuantizedSnapshot, testNumCubes)
			copy(baseline, src)
			baseline[1].PositionX += 10 // small delta from "baseline" to exercise the delta path

			slot, seq := win.Insert()
			*slot = baseline
			baseSeq := seq

			slot2, seq2 := win.Insert()
			*slot2 = src
			targetSeq := seq2

			w := bitstream.NewWriter(128)
			w.SetContext(bitstream.ContextQuantizedSlidingWindow, win)
			p := Packet{Sequence: targetSeq, Mode: mode, Initial: false, BaseSequence: baseSeq}
			if err := p.Serialize(w, bounds, testNumCubes); err != nil {
				t.Fatalf("write: %v", err)
			}
			w.Flush()

			r := bitstream.NewReader(w.Bytes())
			r.SetContext(bitstream.ContextQuantizedSequenceBuffer, buf)
			rbaseSlot := buf.Insert(baseSeq)
			*rbaseSlot = baseline

			var rp Packet
			if err := rp.Serialize(r, bounds, testNumCubes); err != nil {
				t.Fatalf("read: %v", err)
			}

			got := buf.Find(targetSeq)
			if got == nil {
				t.Fatalf("expected decoded quantized snapshot in sequence buffer")
			}
			for i := 0; i < testNumCubes; i++ {
				if (*got)[i].PositionX != src[i].PositionX || (*got)[i].PositionY != src[i].PositionY || (*got)[i].PositionZ != src[i].PositionZ {
					t.Errorf("cube %d position mismatch: got (%d,%d,%d) want (%d,%d,%d)", i,
						(*got)[i].PositionX, (*got)[i].PositionY, (*got)[i].PositionZ,
						src[i].PositionX, src[i].PositionY, src[i].PositionZ)
				}
			}
		})
	}
}

func TestSnapshotPacketMissingBaselineErrors(t *testing.T) {
	bounds := testBounds()
	buf := ring.NewSequenceBuffer[cube.QuantizedSnapshot](8)

	w := bitstream.NewWriter(64)
	win := ring.NewSlidingWindow[cube.QuantizedSnapshot](8)
	baseSlot, baseSeq := win.Insert()
	*baseSlot = make(cube.QuantizedSnapshot, testNumCubes)
	slot, seq := win.Insert()
	*slot = make(cube.QuantizedSnapshot, testNumCubes)
	w.SetContext(bitstream.ContextQuantizedSlidingWindow, win)
	// The sender holds the baseline; the receiver's buffer never saw it.
	p := Packet{Sequence: seq, Mode: DeltaRelativePosition, Initial: false, BaseSequence: baseSeq}
	_ = p.Serialize(w, bounds, testNumCubes)
	w.Flush()

	r := bitstream.NewReader(w.Bytes())
	r.SetContext(bitstream.ContextQuantizedSequenceBuffer, buf)
	var rp Packet
	err := rp.Serialize(r, bounds, testNumCubes)
	if err != ErrMissingBaseline {
		t.Fatalf("expected ErrMissingBaseline, got %v", err)
	}
}

func TestAckPacketRoundTrip(t *testing.T) {
	w := bitstream.NewWriter(8)
	a := AckPacket{Ack: 1234}
	a.Serialize(w)
	w.Flush()

	r := bitstream.NewReader(w.Bytes())
	var got AckPacket
	got.Serialize(r)
	if got.Ack != a.Ack {
		t.Fatalf("expected ack %d, got %d", a.Ack, got.Ack)
	}
}

func absf(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
