package preview

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/wayacreates/waya"
)

var (
	colorBackground = color.RGBA{0x1e, 0x1f, 0x24, 0xff}
	colorPanel      = color.RGBA{0x14, 0x15, 0x19, 0xff}
	colorNodeBody   = color.RGBA{0x33, 0x35, 0x3d, 0xf0}
	colorOutline    = color.RGBA{0x60, 0x63, 0x70, 0xff}
	colorGrid       = color.RGBA{0x3a, 0x3c, 0x44, 0xff}
	colorCursor     = color.RGBA{0xff, 0x5a, 0x4f, 0xff}
	colorKeyframe   = color.RGBA{0xf2, 0xc1, 0x4e, 0xff}
	colorSelected   = color.RGBA{0xff, 0xff, 0xff, 0xff}
	colorObject     = color.RGBA{0x8f, 0xb8, 0xde, 0xff}

	kindColors = map[waya.NodeKind]color.RGBA{
		waya.KindInput:        {0x3f, 0x8f, 0x5c, 0xff},
		waya.KindColorCorrect: {0x3f, 0x6c, 0x9f, 0xff},
		waya.KindEffect:       {0x8a, 0x4f, 0x9f, 0xff},
		waya.KindOutput:       {0xa8, 0x58, 0x3a, 0xff},
		waya.KindCustom:       {0x6b, 0x6b, 0x6b, 0xff},
	}
	typeColors = map[waya.DataType]color.RGBA{
		waya.DataImage:  {0xe0, 0xc0, 0x50, 0xff},
		waya.DataColor:  {0xd0, 0x70, 0xd0, 0xff},
		waya.DataScalar: {0x90, 0x90, 0x90, 0xff},
	}
)

func drawText(dst *ebiten.Image, s string, x, y int) {
	ebitenutil.DebugPrintAt(dst, s, x, y)
}

func toRGBA(c waya.Color) color.RGBA {
	return color.RGBA{
		R: uint8(c.R * c.A * 255),
		G: uint8(c.G * c.A * 255),
		B: uint8(c.B * c.A * 255),
		A: uint8(c.A * 255),
	}
}

func fillRect(dst *ebiten.Image, r waya.Rect, clr color.Color) {
	vector.DrawFilledRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), clr, false)
}

func strokeRect(dst *ebiten.Image, r waya.Rect, clr color.Color) {
	vector.StrokeRect(dst, float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height), 1, clr, false)
}

func line(dst *ebiten.Image, a, b waya.Vec2, width float32, clr color.Color) {
	vector.StrokeLine(dst, float32(a.X), float32(a.Y), float32(b.X), float32(b.Y), width, clr, true)
}

// --- Node editor ---

func (g *Game) drawGraph(screen *ebiten.Image, s *waya.Session) {
	graph, _ := s.Graph()
	l := graph.Layout()

	for _, c := range graph.Connections() {
		line(screen, c.Source.Anchor(l), c.Dest.Anchor(l), 2, typeColors[c.Source.Type])
	}
	if g.tracker != nil {
		if p, cur, ok := g.tracker.PendingWire(); ok {
			line(screen, p.Anchor(l), cur, 1, colorSelected)
		}
	}

	results, evalErr := graph.Evaluate()
	for _, n := range graph.Nodes() {
		b := n.Bounds(l)
		fillRect(screen, b, colorNodeBody)
		fillRect(screen, waya.Rect{X: b.X, Y: b.Y, Width: b.Width, Height: l.HeaderHeight}, kindColors[n.Kind])
		strokeRect(screen, b, colorOutline)
		drawText(screen, n.Name, int(b.X)+4, int(b.Y)+4)

		for _, p := range n.Inputs() {
			a := p.Anchor(l)
			vector.DrawFilledCircle(screen, float32(a.X), float32(a.Y), 4, typeColors[p.Type], true)
			drawText(screen, p.Name, int(a.X)+6, int(a.Y)-8)
		}
		for _, p := range n.Outputs() {
			a := p.Anchor(l)
			vector.DrawFilledCircle(screen, float32(a.X), float32(a.Y), 4, typeColors[p.Type], true)
		}

		if c, ok := results[n.ID]; ok {
			sw := waya.Rect{X: b.X + b.Width - 28, Y: b.Y + l.HeaderHeight + 4, Width: 20, Height: 12}
			fillRect(screen, sw, toRGBA(c))
			strokeRect(screen, sw, colorOutline)
		}
	}
	if evalErr != nil {
		drawText(screen, "evaluate: "+evalErr.Error(), 12, 60)
	}
}

// --- Viewport ---

func (g *Game) drawViewport(screen *ebiten.Image, s *waya.Session) {
	r := g.layout.viewport()
	fillRect(screen, r, colorPanel)
	strokeRect(screen, r, colorOutline)

	cam, _ := s.Camera()
	sc, _ := s.Scene()
	project := func(p mgl64.Vec3) (waya.Vec2, bool) {
		v, ok := cam.WorldToScreen(p, r.Width, r.Height)
		if !ok || !r.Contains(r.X+v.X, r.Y+v.Y) {
			return waya.Vec2{}, false
		}
		return waya.Vec2{X: r.X + v.X, Y: r.Y + v.Y}, true
	}

	// Ground grid on y = 0.
	for i := -5.0; i <= 5; i++ {
		for _, seg := range [2][2]mgl64.Vec3{
			{{i, 0, -5}, {i, 0, 5}},
			{{-5, 0, i}, {5, 0, i}},
		} {
			a, okA := project(seg[0])
			b, okB := project(seg[1])
			if okA && okB {
				line(screen, a, b, 1, colorGrid)
			}
		}
	}

	selected := sc.Selected()
	for _, o := range sc.Objects() {
		if !o.Visible {
			continue
		}
		p, ok := project(o.Position)
		if !ok {
			continue
		}
		clr := colorObject
		if o == selected {
			clr = colorSelected
		}
		vector.DrawFilledCircle(screen, float32(p.X), float32(p.Y), 5, clr, true)
		drawText(screen, o.Name, int(p.X)+7, int(p.Y)-7)
	}
}

// --- Timeline strip ---

func (g *Game) drawTimeline(screen *ebiten.Image, s *waya.Session) {
	tl, _ := s.Timeline()
	r := g.layout.timeline()
	fillRect(screen, r, colorPanel)
	strokeRect(screen, r, colorOutline)

	span := timeSpan(tl.Duration())
	for sec := 0.0; sec <= span; sec++ {
		x := timeToX(sec, span, r)
		line(screen, waya.Vec2{X: x, Y: r.Y}, waya.Vec2{X: x, Y: r.Y + 6}, 1, colorOutline)
	}

	rows := make(map[waya.Track]int)
	for i, k := range tl.Tracks() {
		rows[k] = i
		y := r.Y + 14 + float64(i)*trackRowHeight
		if y+trackRowHeight > r.Y+r.Height {
			break
		}
		drawText(screen, k.Target+"."+k.Property, int(r.X)+panelMargin, int(y)-2)
	}
	for _, kf := range tl.VisibleKeyframes(0, span) {
		i := rows[trackOf(kf)]
		y := r.Y + 14 + float64(i)*trackRowHeight + trackRowHeight/2
		if y > r.Y+r.Height {
			continue
		}
		x := timeToX(kf.Time, span, r)
		vector.DrawFilledRect(screen, float32(x-3), float32(y-3), 6, 6, colorKeyframe, false)
	}

	cx := timeToX(tl.CurrentTime(), span, r)
	line(screen, waya.Vec2{X: cx, Y: r.Y}, waya.Vec2{X: cx, Y: r.Y + r.Height}, 2, colorCursor)
}

func trackOf(kf waya.Keyframe) waya.Track {
	return waya.Track{Target: kf.Target, Property: kf.Property}
}

// --- HUD ---

func (g *Game) drawHUD(screen *ebiten.Image, s *waya.Session) {
	tl, _ := s.Timeline()
	cam, _ := s.Camera()
	p := cam.Position
	status := fmt.Sprintf("%s  |  %s %.2fs / %.2fs  |  cam (%.1f, %.1f, %.1f) yaw %.0f pitch %.0f",
		s.Name, tl.State(), tl.CurrentTime(), tl.Duration(), p.X(), p.Y(), p.Z(), cam.Yaw, cam.Pitch)
	if s.Recording() {
		status += "  |  REC"
	}
	drawText(screen, status, 12, g.layout.height-timelineHeight-36)
}
