package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkOrderOnset    BookmarkType = "order_onset"
	BookmarkFragmentation BookmarkType = "fragmentation"
	BookmarkSaturation    BookmarkType = "saturation"
	BookmarkSteadyCruise  BookmarkType = "steady_cruise"
)

// Detection thresholds.
const (
	orderedPolarization    = 0.8
	disorderedPolarization = 0.3
	steadyWindows          = 5
)

// Bookmark represents an automatically triggered bookmark.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Flock       string       `csv:"flock"`
	Step        int          `csv:"step"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"flock", b.Flock,
		"step", b.Step,
		"description", b.Description,
	)
}

// BookmarkDetector detects interesting moments in one ensemble's stats.
type BookmarkDetector struct {
	// Rolling history (circular buffer)
	history     []FlockStats
	historySize int
	historyIdx  int
	historyFull bool

	// State tracking
	ordered            bool // polarization above the order threshold
	saturated          bool // some enlarged list was at capacity
	steadyWindowsCount int  // consecutive windows with stable speed
}

// NewBookmarkDetector creates a detector with the given history size.
func NewBookmarkDetector(historySize int) *BookmarkDetector {
	if historySize < steadyWindows {
		historySize = steadyWindows
	}
	return &BookmarkDetector{
		history:     make([]FlockStats, historySize),
		historySize: historySize,
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats FlockStats) []Bookmark {
	var bookmarks []Bookmark

	if b := bd.checkOrder(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSaturation(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}
	if b := bd.checkSteadyCruise(stats); b != nil {
		bookmarks = append(bookmarks, *b)
	}

	bd.addToHistory(stats)
	return bookmarks
}

func (bd *BookmarkDetector) addToHistory(stats FlockStats) {
	bd.history[bd.historyIdx] = stats
	bd.historyIdx = (bd.historyIdx + 1) % bd.historySize
	if bd.historyIdx == 0 {
		bd.historyFull = true
	}
}

// recent returns up to n most recent history entries, oldest first.
func (bd *BookmarkDetector) recent(n int) []FlockStats {
	size := bd.historyIdx
	if bd.historyFull {
		size = bd.historySize
	}
	if n > size {
		n = size
	}
	out := make([]FlockStats, n)
	for k := 0; k < n; k++ {
		idx := (bd.historyIdx - n + k + bd.historySize) % bd.historySize
		out[k] = bd.history[idx]
	}
	return out
}

// checkOrder reports crossings of the polarization thresholds. The gap
// between them keeps noise around a single threshold from re-triggering.
func (bd *BookmarkDetector) checkOrder(stats FlockStats) *Bookmark {
	switch {
	case !bd.ordered && stats.Polarization >= orderedPolarization:
		bd.ordered = true
		return &Bookmark{
			Type:        BookmarkOrderOnset,
			Flock:       stats.Flock,
			Step:        stats.WindowEndStep,
			Description: fmt.Sprintf("Polarization reached %.2f", stats.Polarization),
		}
	case bd.ordered && stats.Polarization <= disorderedPolarization:
		bd.ordered = false
		return &Bookmark{
			Type:        BookmarkFragmentation,
			Flock:       stats.Flock,
			Step:        stats.WindowEndStep,
			Description: fmt.Sprintf("Polarization fell to %.2f", stats.Polarization),
		}
	}
	return nil
}

func (bd *BookmarkDetector) checkSaturation(stats FlockStats) *Bookmark {
	if stats.CappedAgents == 0 {
		bd.saturated = false
		return nil
	}
	if bd.saturated {
		return nil
	}
	bd.saturated = true
	return &Bookmark{
		Type:        BookmarkSaturation,
		Flock:       stats.Flock,
		Step:        stats.WindowEndStep,
		Description: fmt.Sprintf("%d agents hit the neighbor capacity", stats.CappedAgents),
	}
}

func (bd *BookmarkDetector) checkSteadyCruise(stats FlockStats) *Bookmark {
	if stats.SpeedMean <= 0 {
		bd.steadyWindowsCount = 0
		return nil
	}

	history := bd.recent(steadyWindows - 1)
	if len(history) < steadyWindows-1 {
		return nil
	}

	// Squared coefficient of variation of the mean speed over the recent
	// windows plus this one.
	var sum float64
	for _, h := range history {
		sum += h.SpeedMean
	}
	sum += stats.SpeedMean
	mean := sum / steadyWindows

	var variance float64
	for _, h := range history {
		d := h.SpeedMean - mean
		variance += d * d
	}
	d := stats.SpeedMean - mean
	variance = (variance + d*d) / steadyWindows

	if variance/(mean*mean) < 0.0025 { // CV < 5%
		bd.steadyWindowsCount++
	} else {
		bd.steadyWindowsCount = 0
	}

	if bd.steadyWindowsCount == 1 { // trigger once per steady stretch
		return &Bookmark{
			Type:        BookmarkSteadyCruise,
			Flock:       stats.Flock,
			Step:        stats.WindowEndStep,
			Description: fmt.Sprintf("Mean speed steady at %.2f over %d windows", mean, steadyWindows),
		}
	}
	return nil
}
