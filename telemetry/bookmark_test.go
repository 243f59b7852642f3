package telemetry

import "testing"

func hasBookmark(bookmarks []Bookmark, typ BookmarkType) bool {
	for _, bm := range bookmarks {
		if bm.Type == typ {
			return true
		}
	}
	return false
}

func TestBookmarkDetector_OrderOnsetAndFragmentation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if got := bd.Check(FlockStats{Flock: "f", WindowEndStep: 100, Polarization: 0.2}); hasBookmark(got, BookmarkOrderOnset) {
		t.Error("unexpected order_onset for a disordered flock")
	}

	got := bd.Check(FlockStats{Flock: "f", WindowEndStep: 200, Polarization: 0.9})
	if !hasBookmark(got, BookmarkOrderOnset) {
		t.Fatal("expected order_onset bookmark")
	}

	// noise between the thresholds does not re-trigger
	for _, pol := range []float64{0.7, 0.85, 0.5, 0.9} {
		got := bd.Check(FlockStats{Flock: "f", Polarization: pol})
		if hasBookmark(got, BookmarkOrderOnset) || hasBookmark(got, BookmarkFragmentation) {
			t.Errorf("unexpected bookmark at polarization %v", pol)
		}
	}

	got = bd.Check(FlockStats{Flock: "f", WindowEndStep: 900, Polarization: 0.1})
	if !hasBookmark(got, BookmarkFragmentation) {
		t.Error("expected fragmentation bookmark")
	}
}

func TestBookmarkDetector_Saturation(t *testing.T) {
	bd := NewBookmarkDetector(10)

	if !hasBookmark(bd.Check(FlockStats{CappedAgents: 3}), BookmarkSaturation) {
		t.Fatal("expected saturation bookmark")
	}
	if hasBookmark(bd.Check(FlockStats{CappedAgents: 5}), BookmarkSaturation) {
		t.Error("saturation should trigger once while it lasts")
	}
	bd.Check(FlockStats{CappedAgents: 0})
	if !hasBookmark(bd.Check(FlockStats{CappedAgents: 1}), BookmarkSaturation) {
		t.Error("expected saturation bookmark after recovery")
	}
}

func TestBookmarkDetector_SteadyCruise(t *testing.T) {
	bd := NewBookmarkDetector(10)

	// Ramp up: speed still changing
	for i, v := range []float64{1, 3, 6, 9} {
		if got := bd.Check(FlockStats{WindowEndStep: i, SpeedMean: v}); hasBookmark(got, BookmarkSteadyCruise) {
			t.Errorf("unexpected steady_cruise during ramp at %v", v)
		}
	}

	triggered := 0
	for i := 0; i < 10; i++ {
		if hasBookmark(bd.Check(FlockStats{WindowEndStep: 10 + i, SpeedMean: 10}), BookmarkSteadyCruise) {
			triggered++
		}
	}
	if triggered != 1 {
		t.Errorf("steady_cruise triggered %d times, want 1", triggered)
	}
}

func TestBookmarkDetector_MinimumHistory(t *testing.T) {
	bd := NewBookmarkDetector(1)
	if bd.historySize != steadyWindows {
		t.Errorf("history size = %d, want %d", bd.historySize, steadyWindows)
	}
}
