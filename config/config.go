// Package config loads and holds runtime-tunable simulation configuration.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// EdgeMode controls how the simulation treats cells at the grid boundary.
type EdgeMode string

const (
	EdgeVoid  EdgeMode = "void"
	EdgeSolid EdgeMode = "solid"
	EdgeLoop  EdgeMode = "loop"
)

// GravityMode selects the per-particle gravity model (distinct from the
// optional Newtonian field solver, which is toggled separately).
type GravityMode string

const (
	GravityVertical GravityMode = "vertical"
	GravityOff      GravityMode = "off"
	GravityRadial   GravityMode = "radial"
	GravityCustom   GravityMode = "custom"
)

// AirMode controls which parts of the air solver run each tick.
type AirMode string

const (
	AirOn           AirMode = "on"
	AirPressureOff  AirMode = "pressureOff"
	AirVelocityOff  AirMode = "velocityOff"
	AirOff          AirMode = "off"
	AirNoUpdate     AirMode = "noUpdate"
)

// ColorSpace selects the blending space used by decoration operations.
type ColorSpace string

const (
	ColorSRGB    ColorSpace = "sRGB"
	ColorLinear  ColorSpace = "linear"
	ColorGamma22 ColorSpace = "gamma22"
	ColorGamma18 ColorSpace = "gamma18"
)

// TempScale selects the unit used when formatting temperatures for display
// (sign templates, HUD overlays).
type TempScale string

const (
	TempKelvin     TempScale = "Kelvin"
	TempCelsius    TempScale = "Celsius"
	TempFahrenheit TempScale = "Fahrenheit"
)

// GridConfig holds the size parameters fixed for the lifetime of a run
// (spec.md §3, §8 "{ CELL, CELLS }").
type GridConfig struct {
	Cell int `yaml:"cell"`
	Cx   int `yaml:"cx"`
	Cy   int `yaml:"cy"`
}

// Check validates grid parameters and returns CheckFailed on violation.
func (g GridConfig) Check() error {
	if g.Cell < 1 || g.Cell > 100 {
		return &CheckFailed{Which: "cell", Value: float64(g.Cell), Lo: 1, Hi: 100}
	}
	if g.Cx < 1 || g.Cx > 15000 {
		return &CheckFailed{Which: "cx", Value: float64(g.Cx), Lo: 1, Hi: 15000}
	}
	if g.Cy < 1 || g.Cy > 15000 {
		return &CheckFailed{Which: "cy", Value: float64(g.Cy), Lo: 1, Hi: 15000}
	}
	if g.Cx*g.Cell < 300 {
		return &CheckFailed{Which: "width", Value: float64(g.Cx * g.Cell), Lo: 300, Hi: 1e9}
	}
	if g.Cy*g.Cell < 60 {
		return &CheckFailed{Which: "height", Value: float64(g.Cy * g.Cell), Lo: 60, Hi: 1e9}
	}
	return nil
}

// CheckFailed reports a simulation configuration value outside its valid
// range (spec.md §7).
type CheckFailed struct {
	Which    string
	Value    float64
	Lo, Hi   float64
}

func (e *CheckFailed) Error() string {
	return fmt.Sprintf("config: %s=%v out of range [%v,%v]", e.Which, e.Value, e.Lo, e.Hi)
}

// RuntimeConfig holds the options that may be changed without a sim restart
// (spec.md §6 "At runtime the following are settable without re-init").
type RuntimeConfig struct {
	EdgeMode          EdgeMode    `yaml:"edge_mode"`
	GravityMode       GravityMode `yaml:"gravity_mode"`
	CustomGravityX    float32     `yaml:"custom_gravity_x"`
	CustomGravityY    float32     `yaml:"custom_gravity_y"`
	AirMode           AirMode     `yaml:"air_mode"`
	AmbientTemp       float32     `yaml:"ambient_temp"`
	LegacyHeat        bool        `yaml:"legacy_heat"`
	NewtonianGravity  bool        `yaml:"newtonian_gravity"`
	WaterEqualization bool        `yaml:"water_equalization"`
	AmbientHeat       bool        `yaml:"ambient_heat"`
	DecoColorSpace    ColorSpace  `yaml:"deco_color_space"`
	TempScale         TempScale   `yaml:"temp_scale"`
}

// Clamp enforces MIN_TEMP/MAX_TEMP on AmbientTemp (spec.md §6).
func (r *RuntimeConfig) Clamp() {
	if r.AmbientTemp < MinTemp {
		r.AmbientTemp = MinTemp
	}
	if r.AmbientTemp > MaxTemp {
		r.AmbientTemp = MaxTemp
	}
}

// History holds undo/redo ring tuning.
type History struct {
	UndoHistoryLimit int   `yaml:"undo_history_limit"`
	MaxBytes         int64 `yaml:"max_bytes"`
}

// Telemetry holds the supplemented stats/bookmark feature's tuning.
type Telemetry struct {
	StatsWindowTicks    int32 `yaml:"stats_window_ticks"`
	BookmarkHistorySize int   `yaml:"bookmark_history_size"`
}

// Solver holds the numeric constants driving the air/heat/gravity solvers.
// Exposed as config so cmd/tune can search them.
type Solver struct {
	AirVadv    float32 `yaml:"air_vadv"`
	AirPLoss   float32 `yaml:"air_ploss"`
	AirTStepP  float32 `yaml:"air_tstepp"`
	AirVLoss   float32 `yaml:"air_vloss"`
	AirTStepV  float32 `yaml:"air_tstepv"`
	StackingThreshold   int `yaml:"stacking_threshold"`
	StackingSweepPeriod int `yaml:"stacking_sweep_period"`
}

// Config is the root, file-loadable configuration tree.
type Config struct {
	Grid      GridConfig    `yaml:"grid"`
	Runtime   RuntimeConfig `yaml:"runtime"`
	History   History       `yaml:"history"`
	Telemetry Telemetry     `yaml:"telemetry"`
	Solver    Solver        `yaml:"solver"`
}

// Numeric constants from spec.md §6.
const (
	MaxVelocity = 1e4
	MaxPressure = 256
	MaxTemp     = 9999.0
	MinTemp     = 0.0
	GlassIOR    = 1.9
	GlassDisp   = 0.07
	MGrav       = 6.673e-1
	Channels    = 101
	MaxFighters = 100
)

// Load loads configuration from a YAML file, merging with embedded defaults,
// following the teacher's config.Load shape: start from embedded defaults,
// overlay only the fields present in the user file.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Grid.Check(); err != nil {
		return nil, err
	}
	cfg.Runtime.Clamp()

	return cfg, nil
}

// Sim implements the two-phase Applied/Pending config pattern: runtime
// toggles take effect immediately, but grid-size changes only take effect
// on the next ApplyPending (a new sim must be constructed either way, since
// grid size is immutable for the run — spec.md §3 "Lifecycle").
type Sim struct {
	Applied *Config
	Pending *Config
}

// NewSim seeds both Applied and Pending with the same starting config.
func NewSim(cfg *Config) *Sim {
	pending := *cfg
	return &Sim{Applied: cfg, Pending: &pending}
}

// SetRuntime updates the pending runtime config. Runtime fields apply
// immediately to Applied as well, since they don't require a restart.
func (s *Sim) SetRuntime(r RuntimeConfig) {
	r.Clamp()
	s.Pending.Runtime = r
	s.Applied.Runtime = r
}

// ApplyPending copies grid-affecting fields from Pending to Applied.
// Callers must construct a new sim afterward if Grid changed.
func (s *Sim) ApplyPending() (gridChanged bool) {
	if s.Pending.Grid != s.Applied.Grid {
		gridChanged = true
	}
	*s.Applied = *s.Pending
	return gridChanged
}
