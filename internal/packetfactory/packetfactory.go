// Package packetfactory implements the tagged-packet variant and the
// factory that is its sole producer and destructor: Create(kind)
// returns a packet, Destroy releases it, and the factory is built with
// a packet-count upper bound. Go's garbage collector makes an explicit
// Destroy unnecessary for memory safety, but the live-count discipline
// is kept anyway: a pipeline that leaks packets (never calling
// Destroy) trips MaxPackets the same way the original allocator-backed
// factory would, catching the bug instead of hiding it behind the GC.
//
// Grounded on the Create/Destroy lifecycle in CompressionDemo.cpp's
// PacketFactory (original_source) and on the kind-tagged packet enum
// pattern in the RakNetPacket of this repository's former
// source/protocol/raknet.go, generalized from RakNet's packet IDs to the two
// kinds this pipeline defines.
package packetfactory

import (
	"fmt"
	"sync"

	"github.com/ventosilenzioso/cubesync/internal/snapshot"
)

// Kind tags which variant a Packet holds.
type Kind int32

const (
	KindSnapshot Kind = iota
	KindAck
)

// Packet is the tagged union the factory produces: exactly one of
// Snapshot or Ack is meaningful, selected by Kind.
type Packet struct {
	Kind     Kind
	Snapshot snapshot.Packet
	Ack      snapshot.AckPacket
}

// ErrExhausted is returned by Create when MaxPackets live packets are
// already outstanding.
var ErrExhausted = fmt.Errorf("packetfactory: live packet count at MaxPackets")

// Factory tracks how many packets it has handed out but not yet had
// returned via Destroy, refusing to exceed MaxPackets.
type Factory struct {
	mu          sync.Mutex
	maxPackets  int
	livePackets int
}

// New returns a factory that refuses to have more than maxPackets
// outstanding at once.
func New(maxPackets int) *Factory {
	return &Factory{maxPackets: maxPackets}
}

// Create returns a new zero-valued packet of the given kind, or
// ErrExhausted if MaxPackets are already live.
func (f *Factory) Create(kind Kind) (*Packet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.livePackets >= f.maxPackets {
		return nil, ErrExhausted
	}
	f.livePackets++
	return &Packet{Kind: kind}, nil
}

// Destroy releases a packet created by this factory. Every Create must
// be matched by exactly one Destroy; calling Destroy twice on the same
// packet, or on one from a different factory, is a programmer error.
func (f *Factory) Destroy(p *Packet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.livePackets == 0 {
		panic("packetfactory: Destroy called with no live packets outstanding")
	}
	f.livePackets--
}

// LiveCount reports how many packets are currently outstanding.
func (f *Factory) LiveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.livePackets
}
