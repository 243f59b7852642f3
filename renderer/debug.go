package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/pthm-cable/flock/camera"
	"github.com/pthm-cable/flock/flock"
	"github.com/pthm-cable/flock/ui"
)

// DebugOverlay shows the neighborhood of one selected agent.
type DebugOverlay struct {
	ShowReduced  bool
	ShowEnlarged bool
	Palette      ui.TierPalette
}

// NewDebugOverlay creates an overlay drawn in the default theme's tier colors.
func NewDebugOverlay() *DebugOverlay {
	return &DebugOverlay{
		ShowReduced: true,
		Palette:     ui.DefaultTheme().Tiers,
	}
}

// Draw renders the interaction and enlarged radius circles of agent i and
// lines to the members of its neighbor lists.
func (d *DebugOverlay) Draw(cam *camera.Camera, f *flock.Flock, i int) {
	if i < 0 || i >= f.Len() {
		return
	}
	pos := f.Positions()
	p := f.Params()
	sx, sy := cam.WorldToScreen(float32(pos[i].X), float32(pos[i].Y))

	pal := d.Palette
	rl.DrawCircleLines(int32(sx), int32(sy), cam.WorldLength(float32(p.InteractionRadius)), pal.Radius)
	if d.ShowEnlarged {
		rl.DrawCircleLines(int32(sx), int32(sy), cam.WorldLength(float32(2*p.InteractionRadius)), pal.Enlarged)
		d.drawLinks(cam, sx, sy, pos, f.EnlargedNeighbors(i), pal.Enlarged)
	}
	d.drawLinks(cam, sx, sy, pos, f.Neighbors(i), pal.Neighbor)
	if d.ShowReduced {
		d.drawLinks(cam, sx, sy, pos, f.ReducedNeighbors(i), pal.Reduced)
	}
	rl.DrawCircle(int32(sx), int32(sy), 4, rl.White)
}

func (d *DebugOverlay) drawLinks(cam *camera.Camera, sx, sy float32, pos []r2.Vec, l *flock.NeighborList, color rl.Color) {
	for _, j := range l.Items() {
		tx, ty := cam.WorldToScreen(float32(pos[j].X), float32(pos[j].Y))
		rl.DrawLine(int32(sx), int32(sy), int32(tx), int32(ty), color)
	}
}
