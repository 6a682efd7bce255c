package preview

import (
	"math"

	"github.com/wayacreates/waya"
)

const (
	timelineHeight = 120
	viewportWidth  = 360
	viewportHeight = 264
	panelMargin    = 8
	minTimeSpan    = 5.0 // seconds shown when the timeline is shorter
	trackRowHeight = 14
)

// area is a screen region that owns pointer input.
type area uint8

const (
	areaGraph area = iota
	areaViewport
	areaTimeline
)

// screenLayout splits the window into the node editor, the 3D viewport
// panel in the top-right corner and the timeline strip along the bottom.
type screenLayout struct {
	width, height int
}

func (l screenLayout) viewport() waya.Rect {
	return waya.Rect{
		X:      float64(l.width - viewportWidth - panelMargin),
		Y:      panelMargin,
		Width:  viewportWidth,
		Height: viewportHeight,
	}
}

func (l screenLayout) timeline() waya.Rect {
	return waya.Rect{
		X:      0,
		Y:      float64(l.height - timelineHeight),
		Width:  float64(l.width),
		Height: timelineHeight,
	}
}

func (l screenLayout) areaAt(x, y float64) area {
	switch {
	case l.timeline().Contains(x, y):
		return areaTimeline
	case l.viewport().Contains(x, y):
		return areaViewport
	default:
		return areaGraph
	}
}

// timeSpan is the duration the strip shows for a timeline of length d.
func timeSpan(d float64) float64 {
	return math.Max(d, minTimeSpan)
}

func timeToX(t, span float64, r waya.Rect) float64 {
	return r.X + panelMargin + (r.Width-2*panelMargin)*t/span
}

func xToTime(x, span float64, r waya.Rect) float64 {
	w := r.Width - 2*panelMargin
	if w <= 0 {
		return 0
	}
	return math.Max(0, (x-r.X-panelMargin)/w*span)
}
