package camera

import (
	"math"
	"testing"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 0.01
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 0, 0, 72)

	if cam.X != 0 || cam.Y != 0 {
		t.Errorf("expected camera at (0, 0), got (%f, %f)", cam.X, cam.Y)
	}
	// 720 pixels across 72 world units
	if !near(cam.Zoom, 10) {
		t.Errorf("expected zoom 10, got %f", cam.Zoom)
	}
}

func TestWorldToScreenCentered(t *testing.T) {
	cam := New(1280, 720, 5, -3, 72)

	sx, sy := cam.WorldToScreen(5, -3)
	if !near(sx, 640) || !near(sy, 360) {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}

	sx, _ = cam.WorldToScreen(6, -3)
	if !near(sx, 650) {
		t.Errorf("one world unit right should be 10px right, got x=%f", sx)
	}
}

func TestScreenToWorldRoundtrip(t *testing.T) {
	cam := New(1280, 720, 12, 7, 50)

	testCases := []struct{ sx, sy float32 }{
		{640, 360},  // center
		{100, 100},  // top-left
		{1200, 600}, // near bottom-right
		{-50, 900},  // off screen
	}

	for _, tc := range testCases {
		wx, wy := cam.ScreenToWorld(tc.sx, tc.sy)
		sx, sy := cam.WorldToScreen(wx, wy)
		if !near(sx, tc.sx) || !near(sy, tc.sy) {
			t.Errorf("roundtrip failed: (%f,%f) -> (%f,%f) -> (%f,%f)",
				tc.sx, tc.sy, wx, wy, sx, sy)
		}
	}
}

func TestPan(t *testing.T) {
	cam := New(1280, 720, 0, 0, 72)

	// 100 pixels at 10 px/unit is 10 world units
	cam.Pan(100, -50)
	if !near(cam.X, 10) || !near(cam.Y, -5) {
		t.Errorf("expected (10, -5), got (%f, %f)", cam.X, cam.Y)
	}
}

func TestZoomClamp(t *testing.T) {
	cam := New(1280, 720, 0, 0, 72)

	cam.SetZoom(0)
	if cam.Zoom != cam.MinZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MinZoom, cam.Zoom)
	}
	cam.SetZoom(1e9)
	if cam.Zoom != cam.MaxZoom {
		t.Errorf("expected zoom clamped to %f, got %f", cam.MaxZoom, cam.Zoom)
	}
}

func TestZoomAtKeepsCursorPoint(t *testing.T) {
	cam := New(1280, 720, 0, 0, 72)

	wx, wy := cam.ScreenToWorld(1000, 200)
	cam.ZoomAt(1000, 200, 2)
	sx, sy := cam.WorldToScreen(wx, wy)
	if !near(sx, 1000) || !near(sy, 200) {
		t.Errorf("cursor point moved to (%f, %f)", sx, sy)
	}
	if !near(cam.Zoom, 20) {
		t.Errorf("expected zoom 20, got %f", cam.Zoom)
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 3, 4, 72)
	cam.Pan(500, 500)
	cam.ZoomBy(3)
	cam.Reset()

	if cam.X != 3 || cam.Y != 4 || !near(cam.Zoom, 10) {
		t.Errorf("reset failed: (%f, %f) zoom %f", cam.X, cam.Y, cam.Zoom)
	}
}

func TestIsVisible(t *testing.T) {
	cam := New(1280, 720, 0, 0, 72)

	// Visible half extents are 64 x 36 world units
	if !cam.IsVisible(60, 0, 0) {
		t.Error("point inside view should be visible")
	}
	if cam.IsVisible(70, 0, 1) {
		t.Error("point far right should not be visible")
	}
	if !cam.IsVisible(65, 0, 2) {
		t.Error("circle overlapping the edge should be visible")
	}
}

func TestVisibleWorldBounds(t *testing.T) {
	cam := New(1280, 720, 0, 0, 72)

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	if !near(minX, -64) || !near(maxX, 64) || !near(minY, -36) || !near(maxY, 36) {
		t.Errorf("unexpected bounds (%f,%f)-(%f,%f)", minX, minY, maxX, maxY)
	}
}
