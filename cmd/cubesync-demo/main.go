// cubesync-demo runs a headless two-endpoint demonstration of the
// snapshot compression pipeline: a synthetic cube simulation drives a
// sender, packets cross a simulated lossy link, and the receiver's
// playout buffer is logged each second.
//
// Adapted from this repository's former core/main.go: banner,
// config load, a goroutine running the main loop, and signal-driven
// graceful shutdown, generalized from a game server's listen loop to
// this pipeline's tick loop.
package main

import (
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ventosilenzioso/cubesync/internal/config"
	"github.com/ventosilenzioso/cubesync/internal/cube"
	"github.com/ventosilenzioso/cubesync/internal/metrics"
	"github.com/ventosilenzioso/cubesync/internal/netsim"
	"github.com/ventosilenzioso/cubesync/internal/pipeline"
	"github.com/ventosilenzioso/cubesync/internal/vecmath"
	"github.com/ventosilenzioso/cubesync/pkg/logger"
)

const version = "1.0.0"

func main() {
	configPath := flag.StringP("config", "c", "", "path to a YAML config file (defaults are used if omitted)")
	mode := flag.String("mode", "DELTA_RELATIVE_POSITION", "compression mode to demonstrate")
	duration := flag.Duration("duration", 10*time.Second, "how long to run the demo")
	logLevel := flag.String("log-level", config.Default().LogLevel, "log level: debug, info, warn, error")
	flag.Parse()

	logger.Banner("Snapshot Compression Pipeline", version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("loading config: %v", err)
	}
	cfg.CompressionMode = *mode
	cfg.LogLevel = *logLevel
	logger.SetLevel(cfg.LogLevel)

	parsedMode, err := cfg.Mode()
	if err != nil {
		logger.Fatal("resolving compression mode: %v", err)
	}

	logger.Info("Compression mode: %s", parsedMode)
	logger.Info("Cubes: %d  Send rate: %.0f Hz  Playout delay: %.3fs", cfg.NumCubes, cfg.SendRateHz, cfg.PlayoutDelay)
	logger.Info("Link: latency=%.0fms jitter=%.0fms loss=%.1f%%", cfg.LatencyMillis, cfg.JitterMillis, cfg.PacketLossFrac*100)

	sim := netsim.New(time.Now().UnixNano())
	sim.ClearStates()
	sim.AddState(netsim.State{
		Latency:    time.Duration(cfg.LatencyMillis) * time.Millisecond,
		Jitter:     time.Duration(cfg.JitterMillis) * time.Millisecond,
		PacketLoss: cfg.PacketLossFrac,
	})
	sim.SetActiveState(1)

	reg := prometheus.NewRegistry()
	mset := metrics.NewSet(reg, "demo")

	p := pipeline.New(cfg, parsedMode, sim, mset)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go runDemo(p, sim, cfg, *duration, done)

	select {
	case <-done:
		logger.Info("Demo finished after %s", *duration)
	case sig := <-sigChan:
		logger.Warn("Received signal: %v, shutting down", sig)
	}
}

// runDemo drives the pipeline at its configured send rate using a
// synthetic orbiting-cube simulation as the ground-truth snapshot
// source, logging bandwidth and playout status once a second.
func runDemo(p *pipeline.Pipeline, sim *netsim.Simulator, cfg config.Config, duration time.Duration, done chan<- struct{}) {
	tickInterval := time.Second / time.Duration(cfg.SendRateHz)
	dt := 1.0 / cfg.SendRateHz

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	deadline := time.Now().Add(duration)
	lastReport := time.Now()
	tick := 0

	for now := range ticker.C {
		if now.After(deadline) {
			close(done)
			return
		}
		tick++
		snap := syntheticSnapshot(cfg.NumCubes, float64(tick)*dt)
		updates, ok := p.Tick(dt, snap)

		if now.Sub(lastReport) >= time.Second {
			lastReport = now
			if ok {
				logger.Info("tick=%d bandwidth=%.1fkbps cubes_updated=%d", tick, sim.GetBandwidth(), len(updates))
			} else {
				logger.Warn("tick=%d bandwidth=%.1fkbps playout stalled", tick, sim.GetBandwidth())
			}
		}
	}
}

// syntheticSnapshot places numCubes cubes on a slowly rotating ring so
// the demo has visibly moving, non-degenerate state to compress.
func syntheticSnapshot(numCubes int, t float64) cube.Snapshot {
	snap := make(cube.Snapshot, numCubes)
	for i := range snap {
		angle := t + float64(i)*(2*math.Pi/float64(numCubes))
		snap[i] = cube.State{
			Interacting: i == 0,
			Position: vecmath.Vector3{
				X: float32(10 * math.Cos(angle)),
				Y: float32(10 * math.Sin(angle)),
				Z: float32(1 + float64(i%3)),
			},
			Orientation:    vecmath.Identity,
			LinearVelocity: vecmath.Vector3{X: float32(-10 * math.Sin(angle))},
		}
	}
	return snap
}
