// Package netsim implements the network simulator the pipeline sends
// packets through: per-link latency, jitter and packet loss, FIFO
// delivery once a packet's scheduled time has elapsed, and bandwidth
// accounting that can exclude specific packets (acks) on request.
//
// Grounded on CompressionDemo.cpp's NetworkSimulator in original_source
// (profile list via AddState/ClearStates, delayed FIFO delivery queue,
// bandwidth-excluded flag on individual sends) and shaped in the style
// of the Session type in this repository's former
// source/protocol/raknet.go: a small struct guarded by one mutex exposing imperative
// Send/Receive/Update methods rather than channels, since the whole
// pipeline runs single-threaded and cooperative.
package netsim

import (
	"container/heap"
	"math/rand"
	"sync"
	"time"
)

// Address identifies an endpoint: an IPv6 literal plus a UDP port.
// This package itself is address-agnostic; the pipeline's two fixed
// endpoints are just the values it happens to construct.
type Address struct {
	IP   string
	Port uint16
}

// State is one simulated network profile.
type State struct {
	Latency    time.Duration
	Jitter     time.Duration
	PacketLoss float64 // fraction in [0,1]
}

// Envelope is a packet in flight: its payload, addressing, and whether
// it should be excluded from bandwidth accounting.
type Envelope struct {
	Payload           []byte
	From, To          Address
	BandwidthExcluded bool
}

type scheduled struct {
	deliverAt time.Duration
	seq       uint64
	env       Envelope
}

type scheduledHeap []scheduled

func (h scheduledHeap) Len() int { return len(h) }
func (h scheduledHeap) Less(i, j int) bool {
	if h[i].deliverAt != h[j].deliverAt {
		return h[i].deliverAt < h[j].deliverAt
	}
	return h[i].seq < h[j].seq // FIFO among equal delivery times
}
func (h scheduledHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *scheduledHeap) Push(x any)        { *h = append(*h, x.(scheduled)) }
func (h *scheduledHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// bandwidthWindow is how far back GetBandwidth averages sent bytes.
const bandwidthWindow = time.Second

type bandwidthSample struct {
	at    time.Duration
	bytes int
}

// Simulator is a single in-process network link capable of carrying
// packets in both directions, delaying and dropping them according to
// its currently active State.
type Simulator struct {
	mu sync.Mutex

	now time.Duration

	states []State
	active int

	pending scheduledHeap
	nextSeq uint64

	samples []bandwidthSample

	rng *rand.Rand
}

// New returns a simulator with no packet loss, latency or jitter
// (state zero-value) until AddState/SetActiveState install a profile.
func New(seed int64) *Simulator {
	s := &Simulator{rng: rand.New(rand.NewSource(seed))}
	heap.Init(&s.pending)
	s.ClearStates()
	return s
}

// ClearStates resets the profile list to a single zero-latency,
// zero-loss state.
func (s *Simulator) ClearStates() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = []State{{}}
	s.active = 0
}

// AddState appends a profile to the list without changing which one is
// active.
func (s *Simulator) AddState(st State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states = append(s.states, st)
}

// SetActiveState selects which added profile governs subsequent sends.
func (s *Simulator) SetActiveState(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if index >= 0 && index < len(s.states) {
		s.active = index
	}
}

// Reset clears all in-flight packets, bandwidth samples and the clock,
// but keeps the installed profile list.
func (s *Simulator) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = s.pending[:0]
	s.samples = nil
	s.now = 0
	s.nextSeq = 0
}

// SendPacket schedules payload for delivery from 'from' to 'to',
// subject to the active profile's latency, jitter and packet loss.
// Packets marked bandwidthExcluded (acks) never appear in GetBandwidth.
func (s *Simulator) SendPacket(from, to Address, payload []byte, bandwidthExcluded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[s.active]
	if st.PacketLoss > 0 && s.rng.Float64() < st.PacketLoss {
		return
	}

	delay := st.Latency
	if st.Jitter > 0 {
		offset := time.Duration((s.rng.Float64()*2 - 1) * float64(st.Jitter))
		delay += offset
		if delay < 0 {
			delay = 0
		}
	}

	seq := s.nextSeq
	s.nextSeq++
	heap.Push(&s.pending, scheduled{
		deliverAt: s.now + delay,
		seq:       seq,
		env: Envelope{
			Payload:           payload,
			From:              from,
			To:                to,
			BandwidthExcluded: bandwidthExcluded,
		},
	})

	if !bandwidthExcluded {
		s.samples = append(s.samples, bandwidthSample{at: s.now, bytes: len(payload)})
	}
}

// Update advances the simulator's clock by dt. It does not itself
// deliver packets; ReceivePacket does that lazily, comparing against
// the advanced clock.
func (s *Simulator) Update(dt time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now += dt
	s.trimBandwidthSamplesLocked()
}

// ReceivePacket returns the earliest packet addressed to addr whose
// scheduled delivery time has elapsed, in FIFO order among ties, or
// false if none is ready.
func (s *Simulator) ReceivePacket(addr Address) (Envelope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deferred []scheduled
	var result Envelope
	found := false

	for s.pending.Len() > 0 {
		item := heap.Pop(&s.pending).(scheduled)
		if item.deliverAt > s.now {
			deferred = append(deferred, item)
			break // heap is ordered by deliverAt; nothing later is ready either
		}
		if item.env.To == addr {
			result = item.env
			found = true
			break
		}
		deferred = append(deferred, item)
	}
	for _, d := range deferred {
		heap.Push(&s.pending, d)
	}
	return result, found
}

// GetBandwidth returns the average send rate over the trailing
// bandwidthWindow, in kilobits per second, excluding packets sent with
// bandwidthExcluded=true.
func (s *Simulator) GetBandwidth() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trimBandwidthSamplesLocked()

	total := 0
	for _, sample := range s.samples {
		total += sample.bytes
	}
	seconds := bandwidthWindow.Seconds()
	return float64(total*8) / 1000 / seconds
}

func (s *Simulator) trimBandwidthSamplesLocked() {
	cutoff := s.now - bandwidthWindow
	i := 0
	for ; i < len(s.samples); i++ {
		if s.samples[i].at >= cutoff {
			break
		}
	}
	s.samples = s.samples[i:]
}
