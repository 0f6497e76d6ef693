// Package telemetry is the supplemented feature SPEC_FULL.md §SUPPLEMENTED
// FEATURES adds as a peer of the history controller: a read-only observer
// of already-computed sim state that never participates in determinism
// (spec.md §8 property 3). Modeled on pthm-soup/telemetry's WindowStats /
// OutputManager / BookmarkDetector shape.
package telemetry

import (
	"github.com/pthm-cable/cellsand/grid"
	"github.com/pthm-cable/cellsand/update"
)

// TickStats is one tick's aggregate snapshot: total particle count, mean
// pressure and temperature, active cell count, and stacking events. Mirrors the
// teacher's WindowStats in shape (a flat struct of csv-tagged scalars) but
// at per-tick rather than per-window granularity, since the sim's own tick
// already bounds the sampling rate.
type TickStats struct {
	Tick            int64   `csv:"tick"`
	TotalParticles  int     `csv:"total_particles"`
	MeanPressure    float64 `csv:"mean_pressure"`
	MeanTemperature float64 `csv:"mean_temperature"`
	ActiveCells     int     `csv:"active_cells"`
	StackingEvents  int     `csv:"stacking_events"`
}

// Collect builds a TickStats from sim's current state. Read-only: it never
// mutates sim, so calling it has no bearing on spec.md §8 property 3
// (determinism).
func Collect(sim *update.Sim, stackingEvents int) TickStats {
	pool := sim.Pool()
	air := sim.Air()

	stats := TickStats{
		Tick:           sim.Tick(),
		StackingEvents: stackingEvents,
	}

	last := pool.LastActiveIndex()
	var pSum, tSum float64
	total := 0
	for i := 0; i <= last; i++ {
		p := pool.Particle(i)
		if p.IsVacant() {
			continue
		}
		total++
		tSum += float64(p.Temp)
	}
	stats.TotalParticles = total
	if total > 0 {
		stats.MeanTemperature = tSum / float64(total)
	}

	n := air.Cx * air.Cy
	active := 0
	for i := 0; i < n; i++ {
		pSum += float64(air.Pv[i])
		if air.Pv[i] != 0 || air.Vx[i] != 0 || air.Vy[i] != 0 {
			active++
		}
	}
	if n > 0 {
		stats.MeanPressure = pSum / float64(n)
	}
	stats.ActiveCells = active

	return stats
}

// ElementBreakdown is a secondary, non-CSV view of per-element live counts,
// for callers (e.g. cmd/sandbox's HUD) that want the full breakdown rather
// than the flat aggregate TickStats carries. Kept separate from TickStats
// because gocsv can't marshal a map column.
func ElementBreakdown(sim *update.Sim) map[grid.ElementID]int {
	counts := make(map[grid.ElementID]int)
	pool := sim.Pool()
	last := pool.LastActiveIndex()
	for i := 0; i <= last; i++ {
		p := pool.Particle(i)
		if p.IsVacant() {
			continue
		}
		counts[p.Type]++
	}
	return counts
}
