// Package preview is an ebiten window onto a host loop: a node editor with
// drag-to-connect, a small 3D viewport and a timeline strip.
package preview

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/wayacreates/waya"
	"github.com/wayacreates/waya/host"
)

const (
	messageTTL   = 3.0 // seconds a status message stays on screen
	orbitDegrees = 0.3 // camera degrees per pixel of right-drag
	wheelZoom    = 0.5 // world units per wheel notch
)

// Options configures a Game.
type Options struct {
	Width, Height int
	ScreenshotDir string
	Logger        *zap.Logger
}

// Game implements ebiten.Game. It drives the loop with Pump, so the window's
// goroutine is the loop goroutine and may touch sessions directly.
type Game struct {
	loop   *host.Loop
	layout screenLayout

	tracker      *waya.PointerTracker
	trackerGraph *waya.NodeGraph

	dragging       bool
	dragArea       area
	lastX, lastY   float64
	message        string
	messageElapsed float64

	stats *statsOverlay
	shots *screenshots
	log   *zap.Logger
}

// New creates a preview of loop. The loop must not be running Run.
func New(loop *host.Loop, opts Options) *Game {
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = 1280, 720
	}
	if opts.ScreenshotDir == "" {
		opts.ScreenshotDir = "screenshots"
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("preview")
	return &Game{
		loop:   loop,
		layout: screenLayout{width: opts.Width, height: opts.Height},
		stats:  newStatsOverlay(),
		shots:  &screenshots{dir: opts.ScreenshotDir, log: log},
		log:    log,
	}
}

// Run opens the window and blocks until it closes.
func (g *Game) Run(title string) error {
	ebiten.SetWindowSize(g.layout.width, g.layout.height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Layout keeps the logical screen at the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.layout = screenLayout{width: outsideWidth, height: outsideHeight}
	return outsideWidth, outsideHeight
}

// Update pumps the loop, then applies keyboard and pointer input to the
// active session.
func (g *Game) Update() error {
	dt := 1 / float64(ebiten.TPS())
	g.loop.Pump(dt)
	g.stats.update(dt, g.loop.Frame(), g.loop.Sessions().Len())
	if g.message != "" {
		g.messageElapsed += dt
		if g.messageElapsed > messageTTL {
			g.message = ""
		}
	}

	s, err := g.loop.Dispatcher().Session()
	if err != nil {
		g.tracker, g.trackerGraph = nil, nil
		return nil
	}
	graph, _ := s.Graph()
	if graph != g.trackerGraph {
		// project.load swaps the graph out.
		g.tracker, g.trackerGraph = waya.NewPointerTracker(graph), graph
	}

	g.handleKeys(s)
	g.handlePointer(s)
	return nil
}

func (g *Game) say(format string, args ...any) {
	g.message = fmt.Sprintf(format, args...)
	g.messageElapsed = 0
}

func (g *Game) handleKeys(s *waya.Session) {
	tl, _ := s.Timeline()
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		if tl.State() == waya.Playing {
			tl.Pause()
		} else {
			tl.Play()
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		tl.Stop()
		_ = s.UpdateToTime(0)
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		_, _ = s.ToggleOverlay()
	case inpututil.IsKeyJustPressed(ebiten.KeyF12):
		g.shots.request(s.Name)
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.tracker.Cancel()
		g.dragging = false
	}
}

func (g *Game) handlePointer(s *waya.Session) {
	cx, cy := ebiten.CursorPosition()
	x, y := float64(cx), float64(cy)
	defer func() { g.lastX, g.lastY = x, y }()

	cam, _ := s.Camera()
	if _, wy := ebiten.Wheel(); wy != 0 && g.layout.areaAt(x, y) == areaViewport {
		cam.Zoom(wy * wheelZoom)
	}

	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) && g.layout.areaAt(x, y) == areaViewport {
		g.dragging, g.dragArea = true, areaViewport
	}
	if g.dragging && g.dragArea == areaViewport {
		if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight) {
			g.dragging = false
		} else if dx, dy := x-g.lastX, y-g.lastY; dx != 0 || dy != 0 {
			if ebiten.IsKeyPressed(ebiten.KeyShift) {
				cam.Pan(dx, dy)
			} else {
				cam.Orbit(-dy*orbitDegrees, dx*orbitDegrees)
			}
		}
		return
	}

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		g.dragArea = g.layout.areaAt(x, y)
		g.dragging = true
		switch g.dragArea {
		case areaGraph:
			g.tracker.Press(x, y)
		case areaTimeline:
			g.seek(s, x)
		}
	case g.dragging && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		switch g.dragArea {
		case areaGraph:
			g.tracker.Move(x, y)
		case areaTimeline:
			g.seek(s, x)
		}
	case g.dragging && inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		g.dragging = false
		if g.dragArea != areaGraph {
			return
		}
		c, err := g.tracker.Release(x, y)
		switch {
		case err != nil:
			g.say("%v", err)
		case c != nil:
			g.say("connected %s", c)
		}
	}
}

func (g *Game) seek(s *waya.Session, x float64) {
	tl, _ := s.Timeline()
	t := xToTime(x, timeSpan(tl.Duration()), g.layout.timeline())
	_ = s.UpdateToTime(t)
}

// Draw renders the active session. Queued screenshots are captured last.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)
	if s, err := g.loop.Dispatcher().Session(); err == nil {
		g.drawGraph(screen, s)
		g.drawViewport(screen, s)
		g.drawTimeline(screen, s)
		g.drawHUD(screen, s)
		if s.Overlay() {
			g.stats.draw(screen)
		}
	} else {
		drawText(screen, "no project open; type project.create <name> in the console", 12, 12)
	}
	if g.message != "" {
		drawText(screen, g.message, 12, g.layout.height-timelineHeight-20)
	}
	g.shots.flush(screen)
}
