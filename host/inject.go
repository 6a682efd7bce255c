package host

import (
	"go.uber.org/zap"

	"github.com/wayacreates/waya"
)

type pointerPhase uint8

const (
	phasePress pointerPhase = iota
	phaseMove
	phaseRelease
)

// pointerEvent is one synthetic pointer event in editor coordinates.
type pointerEvent struct {
	x, y  float64
	phase pointerPhase
}

// InjectPress queues a pointer press at (x, y) in editor space. Injected
// events are consumed one per frame and fed to a PointerTracker on the
// active session's graph. Loop goroutine only.
func (l *Loop) InjectPress(x, y float64) {
	l.injectQueue = append(l.injectQueue, pointerEvent{x, y, phasePress})
}

// InjectMove queues a pointer move with the button held.
func (l *Loop) InjectMove(x, y float64) {
	l.injectQueue = append(l.injectQueue, pointerEvent{x, y, phaseMove})
}

// InjectRelease queues a pointer release at (x, y).
func (l *Loop) InjectRelease(x, y float64) {
	l.injectQueue = append(l.injectQueue, pointerEvent{x, y, phaseRelease})
}

// InjectClick queues a press and a release at the same point. It consumes
// two frames.
func (l *Loop) InjectClick(x, y float64) {
	l.InjectPress(x, y)
	l.InjectRelease(x, y)
}

// InjectDrag queues a press at (fromX, fromY), frames-2 evenly spaced moves
// and a release at (toX, toY). frames is raised to 2 when smaller.
func (l *Loop) InjectDrag(fromX, fromY, toX, toY float64, frames int) {
	if frames < 2 {
		frames = 2
	}
	l.InjectPress(fromX, fromY)
	steps := frames - 2
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps+1)
		l.InjectMove(fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	l.InjectRelease(toX, toY)
}

// Injecting reports whether injected events are still queued.
func (l *Loop) Injecting() bool {
	return len(l.injectQueue) > 0
}

// processInjected feeds one queued event to the tracker. Events are dropped
// while no project is active.
func (l *Loop) processInjected() {
	if len(l.injectQueue) == 0 {
		return
	}
	evt := l.injectQueue[0]
	copy(l.injectQueue, l.injectQueue[1:])
	l.injectQueue = l.injectQueue[:len(l.injectQueue)-1]

	s, err := l.dispatcher.Session()
	if err != nil {
		l.log.Debug("injected event dropped", zap.Error(err))
		return
	}
	g, _ := s.Graph()
	if l.tracker == nil || l.tracker.Graph != g {
		l.tracker = waya.NewPointerTracker(g)
	}

	switch evt.phase {
	case phasePress:
		kind := l.tracker.Press(evt.x, evt.y)
		l.log.Debug("injected press", zap.Float64("x", evt.x), zap.Float64("y", evt.y), zap.Uint8("gesture", uint8(kind)))
	case phaseMove:
		l.tracker.Move(evt.x, evt.y)
	case phaseRelease:
		c, err := l.tracker.Release(evt.x, evt.y)
		switch {
		case err != nil:
			l.log.Info("injected connect rejected", zap.Error(err))
		case c != nil:
			l.log.Info("injected connect", zap.Stringer("connection", c))
		}
	}
}
