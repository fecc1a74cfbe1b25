// Package bitstream implements the bit-level codec the rest of the
// pipeline serializes through: a single symmetric description of a
// value's wire layout drives both the write and the read path,
// selected by the stream's IsWriting flag, the way the source's
// PROTOCOL_SERIALIZE_OBJECT macro drove protocol::Stream.
//
// Grounded on the BitStream in this repository's former
// source/protocol/raknet.go (word-aligned buffer, explicit Read/Write pairs, a Flush
// step), generalized from whole-byte fields down to arbitrary bit
// widths and made symmetric: that BitStream has separate ReadX/WriteX
// method sets with no shared schema, which is exactly the duplication
// this package's Serialize* methods are built to avoid.
package bitstream

import (
	"fmt"
	"math"

	"github.com/ventosilenzioso/cubesync/internal/assert"
)

// ContextSlotCount is the number of opaque context pointers a stream
// can carry, replacing hidden globals: serialization routines reach
// the sliding window, sequence buffer and initial-snapshot context
// through GetContext instead.
const ContextSlotCount = 6

// Context slot indices, fixed by the snapshot packet schema.
const (
	ContextSnapshotSlidingWindow = iota
	ContextSnapshotSequenceBuffer
	ContextQuantizedSlidingWindow
	ContextQuantizedSequenceBuffer
	ContextQuantizedInitialSnapshot
)

// Stream is a word-aligned bit-level reader/writer. The same value can
// be "serialized" through a Stream in either direction; the IsWriting
// flag selects whether a Serialize* call reads from or writes to the
// backing buffer, so higher layers (SnapshotPacket) need only write
// the description once.
type Stream struct {
	IsWriting bool

	words     []uint32
	scratch   uint64
	scratchN  uint // number of valid bits held in scratch
	wordIndex int  // next word to flush (write) or consume (read)
	bitsUsed  int  // total bits written or read so far

	maxBits int // read-side: total valid bits in the buffer

	contexts [ContextSlotCount]any
}

// NewWriter returns a Stream that serializes into an internal buffer,
// growing it on demand. Call Bytes after Flush to get the wire bytes.
func NewWriter(capacityBytes int) *Stream {
	return &Stream{
		IsWriting: true,
		words:     make([]uint32, 0, (capacityBytes+3)/4),
	}
}

// NewReader returns a Stream that serializes out of data, which must
// be a whole number of 4-byte words (the writer always flushes a
// word-aligned, zero-padded buffer).
func NewReader(data []byte) *Stream {
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = uint32(data[i*4])<<24 | uint32(data[i*4+1])<<16 | uint32(data[i*4+2])<<8 | uint32(data[i*4+3])
	}
	return &Stream{
		IsWriting: false,
		words:     words,
		maxBits:   len(data) * 8,
	}
}

// SetContext installs an opaque context pointer at slot.
func (s *Stream) SetContext(slot int, ctx any) {
	s.contexts[slot] = ctx
}

// GetContext returns the opaque context pointer installed at slot, or
// nil if none was set.
func (s *Stream) GetContext(slot int) any {
	return s.contexts[slot]
}

// BitsProcessed returns the number of bits written or read so far.
func (s *Stream) BitsProcessed() int { return s.bitsUsed }

// BitsRequired returns ceil(log2(max-min+1)), the number of bits
// needed to represent every integer in [min, max].
func BitsRequired(min, max int64) int {
	if max <= min {
		return 1
	}
	span := uint64(max - min)
	bits := 0
	for span > 0 {
		bits++
		span >>= 1
	}
	if bits == 0 {
		bits = 1
	}
	return bits
}

// SerializeBits writes or reads the low `bits` bits of *value.
// 1 <= bits <= 32.
func (s *Stream) SerializeBits(value *uint32, bits int) {
	assert.True(bits >= 1 && bits <= 32, "SerializeBits: bits out of range: %d", bits)
	if s.IsWriting {
		assert.True(bits == 32 || (*value>>uint(bits)) == 0, "SerializeBits: value %d does not fit in %d bits", *value, bits)
		s.writeBits(*value, bits)
	} else {
		*value = s.readBits(bits)
	}
	s.bitsUsed += bits
}

// SerializeInt writes or reads value-min in BitsRequired(min,max) bits.
// On write, min <= *value <= max is a precondition; violation panics
// (programmer error, never recovered at runtime).
func (s *Stream) SerializeInt(value *int32, min, max int32) {
	bits := BitsRequired(int64(min), int64(max))
	if s.IsWriting {
		assert.True(*value >= min && *value <= max, "SerializeInt: value %d out of range [%d,%d]", *value, min, max)
		s.writeBits(uint32(*value-min), bits)
	} else {
		*value = int32(s.readBits(bits)) + min
	}
	s.bitsUsed += bits
}

// SerializeBool writes or reads one bit.
func (s *Stream) SerializeBool(value *bool) {
	var bit uint32
	if s.IsWriting {
		if *value {
			bit = 1
		}
		s.writeBits(bit, 1)
	} else {
		bit = s.readBits(1)
		*value = bit != 0
	}
	s.bitsUsed++
}

// SerializeUint16 writes or reads 16 raw bits.
func (s *Stream) SerializeUint16(value *uint16) {
	var v uint32
	if s.IsWriting {
		v = uint32(*value)
	}
	s.SerializeBits(&v, 16)
	if !s.IsWriting {
		*value = uint16(v)
	}
}

// SerializeUint32 writes or reads 32 raw bits.
func (s *Stream) SerializeUint32(value *uint32) {
	s.SerializeBits(value, 32)
}

// SerializeFloat32 writes or reads the raw 32-bit pattern of a float32.
func (s *Stream) SerializeFloat32(value *float32) {
	var bits uint32
	if s.IsWriting {
		bits = math.Float32bits(*value)
	}
	s.SerializeBits(&bits, 32)
	if !s.IsWriting {
		*value = math.Float32frombits(bits)
	}
}

// Flush pads and emits any partial word. It is a no-op on a reader.
func (s *Stream) Flush() {
	if !s.IsWriting {
		return
	}
	if s.scratchN > 0 {
		word := uint32(s.scratch << (32 - s.scratchN))
		s.words = append(s.words, word)
		s.scratch = 0
		s.scratchN = 0
	}
}

// Bytes returns the flushed, word-aligned, zero-padded wire bytes.
// Call Flush first.
func (s *Stream) Bytes() []byte {
	out := make([]byte, len(s.words)*4)
	for i, w := range s.words {
		out[i*4] = byte(w >> 24)
		out[i*4+1] = byte(w >> 16)
		out[i*4+2] = byte(w >> 8)
		out[i*4+3] = byte(w)
	}
	return out
}

// writeBits packs `bits` low bits of value MSB-first into the word
// stream: the scratch accumulator holds pending high-order bits and
// is flushed out a word at a time as it fills.
func (s *Stream) writeBits(value uint32, bits int) {
	v := uint64(value) & ((uint64(1) << uint(bits)) - 1)
	s.scratch = (s.scratch << uint(bits)) | v
	s.scratchN += uint(bits)
	for s.scratchN >= 32 {
		s.scratchN -= 32
		word := uint32(s.scratch >> s.scratchN)
		s.words = append(s.words, word)
	}
}

func (s *Stream) readBits(bits int) uint32 {
	for s.scratchN < uint(bits) {
		var word uint32
		if s.wordIndex < len(s.words) {
			word = s.words[s.wordIndex]
		}
		s.wordIndex++
		s.scratch = (s.scratch << 32) | uint64(word)
		s.scratchN += 32
	}
	s.scratchN -= uint(bits)
	value := uint32((s.scratch >> s.scratchN) & ((uint64(1) << uint(bits)) - 1))
	return value
}

// ErrTruncated is returned by higher-level decoders when a read ran
// past the bits actually present in the buffer.
var ErrTruncated = fmt.Errorf("bitstream: truncated buffer")

// Overran reports whether a reader has consumed more bits than the
// buffer held — used after a batch of Serialize* calls to detect a
// truncated packet without checking after every single field.
func (s *Stream) Overran() bool {
	return !s.IsWriting && s.bitsUsed > s.maxBits
}
