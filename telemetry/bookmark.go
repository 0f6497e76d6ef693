package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of automatically-detected bookmark,
// mirroring pthm-soup/telemetry's BookmarkType enum.
type BookmarkType string

const (
	BookmarkPressureSpike    BookmarkType = "pressure_spike"
	BookmarkStackingStorm    BookmarkType = "stacking_storm"
	BookmarkPopulationCrash  BookmarkType = "population_crash"
	BookmarkThermalRunaway   BookmarkType = "thermal_runaway"
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Tick        int64        `csv:"tick"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog, the way
// pthm-soup/telemetry.Bookmark.LogBookmark does.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"tick", b.Tick,
		"description", b.Description,
	)
}

// BookmarkDetector watches a rolling window of TickStats for interesting
// moments, the way pthm-soup/telemetry.BookmarkDetector watches
// WindowStats for hunt breakthroughs / population crashes.
type BookmarkDetector struct {
	history     []TickStats
	historySize int
	historyIdx  int
	historyFull bool

	recentParticlePeak int
}

// NewBookmarkDetector creates a detector with the given rolling history
// size (config.Telemetry.BookmarkHistorySize).
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < 5 {
		historySize = 5
	}
	return &BookmarkDetector{
		history:     make([]TickStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats against the rolling history and returns
// any triggered bookmarks, then records stats into that history.
func (bd *BookmarkDetector) Check(stats TickStats) []Bookmark {
	var bookmarks []Bookmark

	if bd.historyFull || bd.historyIdx > 0 {
		if b := bd.checkPressureSpike(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkStackingStorm(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkPopulationCrash(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
		if b := bd.checkThermalRunaway(stats); b != nil {
			bookmarks = append(bookmarks, *b)
		}
	}

	bd.addToHistory(stats)
	if stats.TotalParticles > bd.recentParticlePeak {
		bd.recentParticlePeak = stats.TotalParticles
	}

	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats TickStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

func (bd *BookmarkDetector) getHistory() []TickStats {
	if bd.historyFull {
		return bd.history
	}
	return bd.history[:bd.historyIdx]
}

func (bd *BookmarkDetector) rollingMeanPressure() float64 {
	history := bd.getHistory()
	if len(history) == 0 {
		return 0
	}
	sum := 0.0
	for _, h := range history {
		sum += h.MeanPressure
	}
	return sum / float64(len(history))
}

// checkPressureSpike fires when mean pressure magnitude exceeds 2x the
// rolling average and a meaningful absolute threshold (spec.md §6
// MAX_PRESSURE=256 bounds the field; a quarter of that is already notable).
func (bd *BookmarkDetector) checkPressureSpike(stats TickStats) *Bookmark {
	avg := bd.rollingMeanPressure()
	if avg == 0 {
		return nil
	}
	if abs64(stats.MeanPressure) > 64 && abs64(stats.MeanPressure) > 2*abs64(avg) {
		return &Bookmark{
			Type:        BookmarkPressureSpike,
			Tick:        stats.Tick,
			Description: fmt.Sprintf("mean pressure %.1f, 2x rolling average %.1f", stats.MeanPressure, avg),
		}
	}
	return nil
}

// checkStackingStorm fires when a single tick's stacking-sweep destroyed
// particles count exceeds a fixed threshold, flagging a packed, unstable
// region of the grid.
func (bd *BookmarkDetector) checkStackingStorm(stats TickStats) *Bookmark {
	if stats.StackingEvents > 50 {
		return &Bookmark{
			Type:        BookmarkStackingStorm,
			Tick:        stats.Tick,
			Description: fmt.Sprintf("%d cells resolved by the stacking sweep", stats.StackingEvents),
		}
	}
	return nil
}

// checkPopulationCrash fires when total particle count drops more than 50%
// from the recent peak.
func (bd *BookmarkDetector) checkPopulationCrash(stats TickStats) *Bookmark {
	if bd.recentParticlePeak < 20 {
		return nil
	}
	if stats.TotalParticles < bd.recentParticlePeak/2 {
		return &Bookmark{
			Type:        BookmarkPopulationCrash,
			Tick:        stats.Tick,
			Description: fmt.Sprintf("particle count %d, down from peak %d", stats.TotalParticles, bd.recentParticlePeak),
		}
	}
	return nil
}

// checkThermalRunaway fires when mean temperature approaches MAX_TEMP
// (spec.md §6 MAX_TEMP≈9999 K).
func (bd *BookmarkDetector) checkThermalRunaway(stats TickStats) *Bookmark {
	if stats.MeanTemperature > 5000 {
		return &Bookmark{
			Type:        BookmarkThermalRunaway,
			Tick:        stats.Tick,
			Description: fmt.Sprintf("mean temperature %.0fK", stats.MeanTemperature),
		}
	}
	return nil
}

func abs64(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
