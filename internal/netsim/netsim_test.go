package netsim

import (
	"testing"
	"time"
)

var sender = Address{IP: "::1", Port: 1000}
var receiver = Address{IP: "::1", Port: 1001}

func TestSendPacketZeroLatencyDeliversImmediately(t *testing.T) {
	s := New(1)
	s.SendPacket(sender, receiver, []byte("hello"), false)

	env, ok := s.ReceivePacket(receiver)
	if !ok {
		t.Fatalf("expected packet to be deliverable with zero latency")
	}
	if string(env.Payload) != "hello" {
		t.Fatalf("unexpected payload %q", env.Payload)
	}
}

func TestSendPacketRespectsLatency(t *testing.T) {
	s := New(1)
	s.ClearStates()
	s.states[0] = State{Latency: 50 * time.Millisecond}

	s.SendPacket(sender, receiver, []byte("x"), false)

	if _, ok := s.ReceivePacket(receiver); ok {
		t.Fatalf("expected packet not yet deliverable before latency elapses")
	}
	s.Update(60 * time.Millisecond)
	if _, ok := s.ReceivePacket(receiver); !ok {
		t.Fatalf("expected packet deliverable after latency elapses")
	}
}

func TestFIFOOrderAmongEqualDeliveryTimes(t *testing.T) {
	s := New(1)
	s.SendPacket(sender, receiver, []byte("first"), false)
	s.SendPacket(sender, receiver, []byte("second"), false)

	env1, _ := s.ReceivePacket(receiver)
	env2, _ := s.ReceivePacket(receiver)
	if string(env1.Payload) != "first" || string(env2.Payload) != "second" {
		t.Fatalf("expected FIFO delivery, got %q then %q", env1.Payload, env2.Payload)
	}
}

func TestPacketLossDropsAll(t *testing.T) {
	s := New(7)
	s.ClearStates()
	s.states[0] = State{PacketLoss: 1.0}
	for i := 0; i < 20; i++ {
		s.SendPacket(sender, receiver, []byte("x"), false)
	}
	if _, ok := s.ReceivePacket(receiver); ok {
		t.Fatalf("expected total packet loss to drop every packet")
	}
}

func TestBandwidthExcludesMarkedPackets(t *testing.T) {
	s := New(1)
	s.SendPacket(sender, receiver, make([]byte, 1000), false)
	s.SendPacket(sender, receiver, make([]byte, 1000), true)

	bw := s.GetBandwidth()
	if bw <= 0 {
		t.Fatalf("expected nonzero bandwidth from the non-excluded packet")
	}

	s.Reset()
	s.SendPacket(sender, receiver, make([]byte, 1000), true)
	if bw := s.GetBandwidth(); bw != 0 {
		t.Fatalf("expected zero bandwidth when only an excluded packet was sent, got %v", bw)
	}
}
