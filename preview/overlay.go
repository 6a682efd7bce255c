package preview

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// statsRefresh is how often the overlay text is rebuilt, in seconds.
const statsRefresh = 0.5

// statsOverlay shows frame rate and loop counters in the top-left corner.
// Its image is redrawn at most every statsRefresh seconds.
type statsOverlay struct {
	img     *ebiten.Image
	elapsed float64
	dirty   bool
}

func newStatsOverlay() *statsOverlay {
	// 180x48 fits three DebugPrint lines.
	return &statsOverlay{img: ebiten.NewImage(180, 48), dirty: true}
}

func (o *statsOverlay) update(dt float64, frame uint64, sessions int) {
	o.elapsed += dt
	if !o.dirty && o.elapsed < statsRefresh {
		return
	}
	o.elapsed = 0
	o.dirty = false

	o.img.Clear()
	o.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(o.img, fmt.Sprintf("FPS: %.1f\nTPS: %.1f\nframe %d, %d session(s)",
		ebiten.ActualFPS(), ebiten.ActualTPS(), frame, sessions))
}

func (o *statsOverlay) draw(screen *ebiten.Image) {
	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(4, 4)
	screen.DrawImage(o.img, op)
}
