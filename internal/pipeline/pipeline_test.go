package pipeline

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ventosilenzioso/cubesync/internal/config"
	"github.com/ventosilenzioso/cubesync/internal/cube"
	"github.com/ventosilenzioso/cubesync/internal/metrics"
	"github.com/ventosilenzioso/cubesync/internal/netsim"
	"github.com/ventosilenzioso/cubesync/internal/snapshot"
	"github.com/ventosilenzioso/cubesync/internal/vecmath"
)

func testSnapshot(numCubes int, offset float32) cube.Snapshot {
	s := make(cube.Snapshot, numCubes)
	for i := range s {
		s[i] = cube.State{
			Interacting: i%2 == 0,
			Position:    vecmath.Vector3{X: float32(i) + offset, Y: offset, Z: 1},
			Orientation: vecmath.Identity,
		}
	}
	return s
}

func testConfig() config.Config {
	cfg := config.Default()
	cfg.NumCubes = 4
	cfg.SendRateHz = 60
	cfg.LatencyMillis = 0
	cfg.JitterMillis = 0
	cfg.PacketLossFrac = 0
	return cfg
}

func TestPipelineZeroLossUncompressedDelivers(t *testing.T) {
	cfg := testConfig()
	sim := netsim.New(1)
	mset := metrics.NewSet(prometheus.NewRegistry(), "test")
	p := New(cfg, snapshot.Uncompressed, sim, mset)

	dt := 1.0 / cfg.SendRateHz
	delivered := false
	for tick := 0; tick < 600; tick++ {
		snap := testSnapshot(cfg.NumCubes, float32(tick))
		updates, ok := p.Tick(dt, snap)
		if ok && len(updates) == cfg.NumCubes {
			delivered = true
		}
	}
	if !delivered {
		t.Fatalf("expected at least one delivered, fully-populated view update over 600 ticks")
	}
}

func TestPipelineDeltaRelativePositionConverges(t *testing.T) {
	cfg := testConfig()
	sim := netsim.New(2)
	mset := metrics.NewSet(prometheus.NewRegistry(), "delta-test")
	p := New(cfg, snapshot.DeltaRelativePosition, sim, mset)

	dt := 1.0 / cfg.SendRateHz
	delivered := false
	for tick := 0; tick < 300; tick++ {
		snap := testSnapshot(cfg.NumCubes, float32(tick)*0.01)
		_, ok := p.Tick(dt, snap)
		if ok {
			delivered = true
		}
	}
	if !delivered {
		t.Fatalf("expected delta-mode pipeline to eventually deliver view updates")
	}
}

func TestPipelineSetModeResetsReceivedAck(t *testing.T) {
	cfg := testConfig()
	sim := netsim.New(3)
	mset := metrics.NewSet(prometheus.NewRegistry(), "mode-switch-test")
	p := New(cfg, snapshot.QuantizePosition, sim, mset)

	dt := 1.0 / cfg.SendRateHz
	for tick := 0; tick < 30; tick++ {
		p.Tick(dt, testSnapshot(cfg.NumCubes, 0))
	}
	if !p.receivedAck {
		t.Fatalf("expected an ack to have arrived before the mode switch")
	}

	p.SetMode(snapshot.DeltaRelativePosition)
	if p.receivedAck {
		t.Fatalf("expected SetMode to reset receivedAck so the next packet is initial again")
	}
}
