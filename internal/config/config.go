// Package config defines the pipeline's run-time configuration and
// loads it from YAML, keeping every tunable knob as a struct field
// rather than a compile-time constant or environment variable:
// NumCubes included, since a simulation's cube count is a deployment
// choice here, not a #define.
//
// Grounded on the YAML-backed config structs used across the example
// pack (e.g. the m-lab-etl style typed config with defaults merged
// before validation) using gopkg.in/yaml.v3, the library version this
// module's go.mod already pins.
package config

import (
	"fmt"
	"os"

	"github.com/ventosilenzioso/cubesync/internal/cube"
	"github.com/ventosilenzioso/cubesync/internal/playout"
	"github.com/ventosilenzioso/cubesync/internal/snapshot"
	"gopkg.in/yaml.v3"
)

// Config is the complete set of tunables the pipeline needs. All
// fields carry sane defaults via Default(); Load merges a YAML file
// over those defaults.
type Config struct {
	NumCubes int `yaml:"num_cubes"`

	UnitsPerMeter   int32   `yaml:"units_per_meter"`
	PositionBoundXY float32 `yaml:"position_bound_xy"`
	PositionBoundZ  float32 `yaml:"position_bound_z"`

	CompressionMode string `yaml:"compression_mode"` // matches snapshot.Mode.String()

	SendRateHz    float64 `yaml:"send_rate_hz"`
	PlayoutDelay  float64 `yaml:"playout_delay_seconds"`
	Interpolation string  `yaml:"interpolation"` // "linear" or "hermite"; empty means "follow mode default"

	LatencyMillis  float64 `yaml:"latency_millis"`
	JitterMillis   float64 `yaml:"jitter_millis"`
	PacketLossFrac float64 `yaml:"packet_loss_fraction"`

	SlidingWindowCapacity  int `yaml:"sliding_window_capacity"`
	SequenceBufferCapacity int `yaml:"sequence_buffer_capacity"`
	PlayoutBufferCapacity  int `yaml:"playout_buffer_capacity"`
	MaxPackets             int `yaml:"max_packets"`

	LeftPort  uint16 `yaml:"left_port"`
	RightPort uint16 `yaml:"right_port"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the baseline configuration used when no file is given.
func Default() Config {
	return Config{
		NumCubes:        16,
		UnitsPerMeter:   512,
		PositionBoundXY: 256,
		PositionBoundZ:  32,

		CompressionMode: "DELTA_RELATIVE_POSITION",

		SendRateHz:    60,
		PlayoutDelay:  0.1,
		Interpolation: "",

		LatencyMillis:  0,
		JitterMillis:   float64(2) / 60 * 1000,
		PacketLossFrac: 0.05,

		SlidingWindowCapacity:  256,
		SequenceBufferCapacity: 256,
		PlayoutBufferCapacity:  256,
		MaxPackets:             1024,

		LeftPort:  1000,
		RightPort: 1001,

		LogLevel: "info",
	}
}

// Load reads a YAML file at path and merges it over Default(). A
// missing file is not an error: Default() alone is returned.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Bounds projects the quantization-relevant fields into a cube.Bounds.
func (c Config) Bounds() cube.Bounds {
	return cube.Bounds{
		UnitsPerMeter:   c.UnitsPerMeter,
		PositionBoundXY: c.PositionBoundXY,
		PositionBoundZ:  c.PositionBoundZ,
	}
}

// Mode parses CompressionMode into a snapshot.Mode.
func (c Config) Mode() (snapshot.Mode, error) {
	for m := snapshot.Uncompressed; m < snapshot.Mode(snapshot.ModeCount); m++ {
		if m.String() == c.CompressionMode {
			return m, nil
		}
	}
	return 0, fmt.Errorf("config: unknown compression_mode %q", c.CompressionMode)
}

// InterpolationMethod resolves the playout interpolation method for
// the given compression mode: an explicit Interpolation override wins;
// otherwise UNCOMPRESSED, ORIENTATION and AT_REST default to hermite
// and every other mode defaults to linear.
func (c Config) InterpolationMethod(mode snapshot.Mode) playout.Method {
	switch c.Interpolation {
	case "linear":
		return playout.Linear
	case "hermite":
		return playout.Hermite
	}
	if mode == snapshot.Uncompressed || mode == snapshot.Orientation || mode == snapshot.AtRest {
		return playout.Hermite
	}
	return playout.Linear
}
