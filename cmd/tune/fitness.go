package main

import (
	"math"

	"github.com/pthm-cable/cellsand/config"
	"github.com/pthm-cable/cellsand/element"
	"github.com/pthm-cable/cellsand/telemetry"
	"github.com/pthm-cable/cellsand/update"
)

// FitnessEvaluator runs a fixed headless pressure-pulse scenario under a
// candidate config.Solver and scores how cleanly the air field settles,
// the same "run headless, score survival/quality" shape as
// pthm-soup/cmd/optimize's FitnessEvaluator, substituted here for a
// single-tick-type scalar signal instead of an ecosystem run.
type FitnessEvaluator struct {
	params   *ParamVector
	ticks    int
	gridCx   int
	gridCy   int
	cellSize int
}

// NewFitnessEvaluator builds an evaluator over a fixed grid size and tick
// budget; both are small on purpose since CMA-ES calls Evaluate hundreds
// of times.
func NewFitnessEvaluator(params *ParamVector, ticks, cx, cy, cell int) *FitnessEvaluator {
	return &FitnessEvaluator{params: params, ticks: ticks, gridCx: cx, gridCy: cy, cellSize: cell}
}

// Evaluate returns a scalar fitness for a solver parameter vector (lower is
// better, matching optimize.Problem's minimization convention).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg := fe.buildConfig(x)
	sim := fe.newSim(cfg)

	fe.injectPulse(sim)

	peakAbsPressure := 0.0
	saturatedTicks := 0
	var finalStats telemetry.TickStats

	for t := 0; t < fe.ticks; t++ {
		sim.Step()
		stats := telemetry.Collect(sim, 0)
		abs := math.Abs(stats.MeanPressure)
		if abs > peakAbsPressure {
			peakAbsPressure = abs
		}
		if abs >= 0.98*float64(config.MaxPressure) {
			saturatedTicks++
		}
		finalStats = stats
	}

	return fe.score(peakAbsPressure, saturatedTicks, finalStats)
}

// score combines three penalties into one scalar: the field must actually
// respond to the pulse (not stay inert), it must not pin against
// MaxPressure for a meaningful fraction of the run (divergent), and it must
// have mostly settled by the end of the run (decaying, not oscillating
// forever).
func (fe *FitnessEvaluator) score(peak float64, saturatedTicks int, final telemetry.TickStats) float64 {
	if peak < 1e-6 {
		return 1e6 // never responded to the pulse at all
	}

	saturationPenalty := float64(saturatedTicks) / float64(fe.ticks)
	settledRatio := math.Abs(final.MeanPressure) / peak

	return 100*saturationPenalty + 50*settledRatio
}

func (fe *FitnessEvaluator) buildConfig(x []float64) *config.Config {
	cfg := &config.Config{
		Grid: config.GridConfig{Cell: fe.cellSize, Cx: fe.gridCx, Cy: fe.gridCy},
		Runtime: config.RuntimeConfig{
			EdgeMode:    config.EdgeSolid,
			GravityMode: config.GravityOff,
			AirMode:     config.AirOn,
			AmbientTemp: 295,
		},
		Solver: config.Solver{
			StackingThreshold:   3,
			StackingSweepPeriod: 20,
		},
	}
	fe.params.ApplyToSolver(&cfg.Solver, x)
	return cfg
}

func (fe *FitnessEvaluator) newSim(cfg *config.Config) *update.Sim {
	reg := element.NewRegistry()
	element.RegisterBuiltins(reg)
	return update.NewSim(config.NewSim(cfg), reg, 1)
}

// injectPulse seeds a single-cell pressure spike, the solver-only analogue
// of cmd/fieldpreview's probe.
func (fe *FitnessEvaluator) injectPulse(sim *update.Sim) {
	air := sim.Air()
	cx, cy := air.Cx/2, air.Cy/2
	air.Pv[cy*air.Cx+cx] = config.MaxPressure
}
