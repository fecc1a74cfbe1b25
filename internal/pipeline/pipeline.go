// Package pipeline wires every other package into the per-tick
// send loop: reserve a sliding-window slot, build and send a snapshot
// packet, advance the network simulator, decode whatever arrived, ack
// it, and feed the playout buffer.
//
// Grounded on CompressionDemo.cpp's Update() in original_source for
// the six-step tick order (reserve, send, advance sim, drain, ack,
// feed playout) and on this repository's former core/main.go for
// how a long-running loop is structured around a single per-tick call.
package pipeline

import (
	"time"

	"github.com/ventosilenzioso/cubesync/internal/bitstream"
	"github.com/ventosilenzioso/cubesync/internal/config"
	"github.com/ventosilenzioso/cubesync/internal/cube"
	"github.com/ventosilenzioso/cubesync/internal/metrics"
	"github.com/ventosilenzioso/cubesync/internal/netsim"
	"github.com/ventosilenzioso/cubesync/internal/packetfactory"
	"github.com/ventosilenzioso/cubesync/internal/pipelineevents"
	"github.com/ventosilenzioso/cubesync/internal/playout"
	"github.com/ventosilenzioso/cubesync/internal/ring"
	"github.com/ventosilenzioso/cubesync/internal/snapshot"
	"github.com/ventosilenzioso/cubesync/pkg/logger"
)

// Pipeline drives one directional snapshot stream (sender -> receiver)
// and the ack stream flowing back, through a shared network simulator.
type Pipeline struct {
	cfg       config.Config
	mode      snapshot.Mode
	bounds    cube.Bounds
	quantizer cube.Quantizer
	numCubes  int

	sim     *netsim.Simulator
	factory *packetfactory.Factory
	metrics *metrics.Set
	events  *pipelineevents.Bus

	senderAddr, receiverAddr netsim.Address

	floatWindow *ring.SlidingWindow[cube.Snapshot]
	floatBuffer *ring.SequenceBuffer[cube.Snapshot]

	quantWindow         *ring.SlidingWindow[cube.QuantizedSnapshot]
	quantBuffer         *ring.SequenceBuffer[cube.QuantizedSnapshot]
	quantInitialSnapshot cube.QuantizedSnapshot

	sendAccumulator float64
	receivedAck     bool
	now             float64

	playoutBuf *playout.Buffer
}

// New builds a pipeline for the given configuration and compression
// mode, sharing the network simulator and metrics set sim/mset with
// whatever else drives them (a demo binary typically owns one of
// each per simulated link).
func New(cfg config.Config, mode snapshot.Mode, sim *netsim.Simulator, mset *metrics.Set) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		mode:      mode,
		bounds:    cfg.Bounds(),
		quantizer: cube.NewQuantizer(cfg.Bounds()),
		numCubes:  cfg.NumCubes,

		sim:     sim,
		factory: packetfactory.New(cfg.MaxPackets),
		metrics: mset,
		events:  pipelineevents.NewBus(),

		senderAddr:   netsim.Address{IP: "::1", Port: cfg.LeftPort},
		receiverAddr: netsim.Address{IP: "::1", Port: cfg.RightPort},

		floatWindow: ring.NewSlidingWindow[cube.Snapshot](cfg.SlidingWindowCapacity),
		floatBuffer: ring.NewSequenceBuffer[cube.Snapshot](cfg.SequenceBufferCapacity),

		quantWindow: ring.NewSlidingWindow[cube.QuantizedSnapshot](cfg.SlidingWindowCapacity),
		quantBuffer: ring.NewSequenceBuffer[cube.QuantizedSnapshot](cfg.SequenceBufferCapacity),

		playoutBuf: playout.New(cfg.PlayoutBufferCapacity, cfg.PlayoutDelay, cfg.InterpolationMethod(mode)),
	}
	p.quantInitialSnapshot = make(cube.QuantizedSnapshot, cfg.NumCubes)
	return p
}

// Events returns the bus diagnostics are published on: packet sent,
// packet received, packet dropped, ack advanced, playout stall.
// Subscribing is optional; the pipeline does not depend on any
// handler being registered.
func (p *Pipeline) Events() *pipelineevents.Bus { return p.events }

// SetMode switches the active compression mode mid-stream. The next
// packet built after a switch is implicitly "initial" again only if
// no ack has arrived under the new mode; ack history from the
// previous mode does not carry over because the two mode families
// address disjoint windows.
func (p *Pipeline) SetMode(mode snapshot.Mode) {
	p.mode = mode
	p.receivedAck = false
}

// Tick advances the pipeline by dt seconds: it may send a new
// snapshot, always advances the simulator, drains and acks arrivals,
// and returns the playout buffer's view update for this tick.
func (p *Pipeline) Tick(dt float64, current cube.Snapshot) ([]playout.ObjectUpdate, bool) {
	p.now += dt
	p.sendAccumulator += dt

	sendInterval := 1.0 / p.cfg.SendRateHz
	if p.sendAccumulator >= sendInterval {
		p.sendAccumulator = 0
		p.send(current)
	}

	p.sim.Update(time.Duration(dt * float64(time.Second)))
	p.drainSnapshots()
	p.drainAcks()

	if p.metrics != nil {
		p.metrics.BandwidthKbps.Set(p.sim.GetBandwidth())
	}

	updates, ok := p.playoutBuf.GetViewUpdate(p.now)
	if !ok {
		logger.Warn("pipeline: no snapshot to interpolate towards")
		if p.metrics != nil {
			p.metrics.PlayoutStalls.Inc()
		}
		p.events.Publish(pipelineevents.Event{Type: pipelineevents.TypePlayoutStall})
	}
	return updates, ok
}

func (p *Pipeline) send(current cube.Snapshot) {
	var seq uint16
	var baseSeq uint16

	if p.mode.IsQuantized() {
		quantized := p.quantizer.QuantizeSnapshot(current)
		slot, s := p.quantWindow.Insert()
		*slot = quantized
		seq = s
		baseSeq = p.quantWindow.GetAck() + 1
	} else {
		slot, s := p.floatWindow.Insert()
		*slot = current
		seq = s
		baseSeq = p.floatWindow.GetAck() + 1
	}

	pkt, err := p.factory.Create(packetfactory.KindSnapshot)
	if err != nil {
		logger.Warn("pipeline: dropping send at sequence %d: %v", seq, err)
		p.events.Publish(pipelineevents.Event{Type: pipelineevents.TypePacketDropped, Sequence: seq, Reason: err.Error()})
		return
	}
	pkt.Snapshot = snapshot.Packet{
		Sequence:     seq,
		Mode:         p.mode,
		Initial:      !p.receivedAck,
		BaseSequence: baseSeq,
	}

	w := bitstream.NewWriter(256)
	w.SetContext(bitstream.ContextSnapshotSlidingWindow, p.floatWindow)
	w.SetContext(bitstream.ContextQuantizedSlidingWindow, p.quantWindow)
	w.SetContext(bitstream.ContextQuantizedInitialSnapshot, &p.quantInitialSnapshot)

	if err := pkt.Snapshot.Serialize(w, p.bounds, p.numCubes); err != nil {
		logger.Error("pipeline: encode failed at sequence %d: %v", seq, err)
		p.events.Publish(pipelineevents.Event{Type: pipelineevents.TypePacketDropped, Sequence: seq, Reason: err.Error()})
		p.factory.Destroy(pkt)
		return
	}
	w.Flush()

	p.sim.SendPacket(p.senderAddr, p.receiverAddr, w.Bytes(), false)
	if p.metrics != nil {
		p.metrics.PacketsSent.Inc()
	}
	p.events.Publish(pipelineevents.Event{Type: pipelineevents.TypePacketSent, Sequence: seq})
	p.factory.Destroy(pkt)
}

func (p *Pipeline) drainSnapshots() {
	var highest uint16
	haveHighest := false

	for {
		env, ok := p.sim.ReceivePacket(p.receiverAddr)
		if !ok {
			break
		}

		pkt, err := p.factory.Create(packetfactory.KindSnapshot)
		if err != nil {
			logger.Warn("pipeline: dropping arrival, packet factory exhausted: %v", err)
			continue
		}

		r := bitstream.NewReader(env.Payload)
		r.SetContext(bitstream.ContextSnapshotSequenceBuffer, p.floatBuffer)
		r.SetContext(bitstream.ContextQuantizedSequenceBuffer, p.quantBuffer)
		r.SetContext(bitstream.ContextQuantizedInitialSnapshot, &p.quantInitialSnapshot)

		if err := pkt.Snapshot.Serialize(r, p.bounds, p.numCubes); err != nil {
			logger.Warn("pipeline: decode failed, dropping packet: %v", err)
			if p.metrics != nil {
				p.metrics.PacketsDropped.Inc()
			}
			p.events.Publish(pipelineevents.Event{Type: pipelineevents.TypePacketDropped, Sequence: pkt.Snapshot.Sequence, Reason: err.Error()})
			p.factory.Destroy(pkt)
			continue
		}

		seq := pkt.Snapshot.Sequence
		var cubes cube.Snapshot
		if pkt.Snapshot.Mode.IsQuantized() {
			qs := p.quantBuffer.Find(seq)
			cubes = p.quantizer.DequantizeSnapshot(*qs)
		} else {
			cubes = *p.floatBuffer.Find(seq)
		}
		p.playoutBuf.AddSnapshot(p.now, seq, cubes)

		if !haveHighest || ring.SequenceGreaterThan(seq, highest) {
			highest = seq
			haveHighest = true
		}
		if p.metrics != nil {
			p.metrics.PacketsReceived.Inc()
		}
		p.events.Publish(pipelineevents.Event{Type: pipelineevents.TypePacketReceived, Sequence: seq})
		p.factory.Destroy(pkt)
	}

	if haveHighest {
		p.sendAck(highest)
	}
}

func (p *Pipeline) sendAck(highest uint16) {
	pkt, err := p.factory.Create(packetfactory.KindAck)
	if err != nil {
		logger.Warn("pipeline: dropping ack for sequence %d: %v", highest, err)
		return
	}
	pkt.Ack = snapshot.AckPacket{Ack: highest}

	w := bitstream.NewWriter(8)
	pkt.Ack.Serialize(w)
	w.Flush()

	p.sim.SendPacket(p.receiverAddr, p.senderAddr, w.Bytes(), true)
	p.factory.Destroy(pkt)
}

func (p *Pipeline) drainAcks() {
	for {
		env, ok := p.sim.ReceivePacket(p.senderAddr)
		if !ok {
			break
		}
		pkt, err := p.factory.Create(packetfactory.KindAck)
		if err != nil {
			logger.Warn("pipeline: dropping ack arrival, packet factory exhausted: %v", err)
			continue
		}
		r := bitstream.NewReader(env.Payload)
		pkt.Ack.Serialize(r)

		// Deliberate off-by-one: the receiver reports the sequence it
		// received, and the sender treats everything strictly older as
		// acknowledged, leaving that sequence itself available as a
		// baseline until a later ack advances past it. Wraps like any
		// other sequence arithmetic when ack == 0.
		p.floatWindow.Ack(pkt.Ack.Ack - 1)
		p.quantWindow.Ack(pkt.Ack.Ack - 1)
		p.receivedAck = true
		if p.metrics != nil {
			p.metrics.AckSequence.Set(float64(p.floatWindow.GetAck()))
		}
		p.events.Publish(pipelineevents.Event{Type: pipelineevents.TypeAckAdvanced, Sequence: pkt.Ack.Ack})
		p.factory.Destroy(pkt)
	}
}
