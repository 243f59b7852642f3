package game

import (
	"log/slog"

	"github.com/pthm-cable/flock/flock"
)

// flushTelemetry checks if the stats window should be flushed and handles bookmarks.
func (g *Game) flushTelemetry() {
	step := g.scheduler.StepCount()
	if !g.collector.ShouldFlush(step) {
		return
	}

	if failed := g.collector.FailedSteps(); failed > 0 {
		slog.Warn("failed steps in window", "step", step, "failed", failed)
	}

	params := make([]flock.Params, len(g.flocks))
	for k, f := range g.flocks {
		params[k] = f.Params()
	}
	stats := g.collector.Flush(step, g.flocks, params)
	perfStats := g.perfCollector.Stats()
	g.lastStats = stats

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		for _, s := range stats {
			s.LogStats()
		}
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteStats(stats); err != nil {
		slog.Error("failed to write stats", "error", err)
	}
	if err := g.outputManager.WritePerf(perfStats, step); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	for k, s := range stats {
		for _, bm := range g.bookmarkDetectors[k].Check(s) {
			if g.logStats {
				bm.LogBookmark()
			}
			if err := g.outputManager.WriteBookmark(bm); err != nil {
				slog.Error("failed to write bookmark", "error", err)
			}
		}
	}
}
