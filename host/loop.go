// Package host runs waya sessions on a single goroutine at a fixed frame
// rate. Everything that touches a session goes through the loop's mailbox.
package host

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/wayacreates/waya"
	"github.com/wayacreates/waya/command"
)

// ErrStopped is returned when work is posted to a loop that is not running.
var ErrStopped = errors.New("host: loop stopped")

// mailboxSize bounds how many posted closures may wait between frames.
const mailboxSize = 64

// Loop owns a session registry and the dispatcher that edits it. Run drives
// frames and drains the mailbox; Post and Do hand work to it from any
// goroutine.
type Loop struct {
	cfg        waya.Config
	sessions   *waya.Sessions
	dispatcher *command.Dispatcher
	metrics    *Metrics

	mailbox chan func(*Loop)
	done    chan struct{}
	frame   uint64
	script  *scriptRun

	injectQueue []pointerEvent
	tracker     *waya.PointerTracker

	log *zap.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithMetrics records frame and command metrics on m.
func WithMetrics(m *Metrics) Option {
	return func(l *Loop) { l.metrics = m }
}

// New creates a stopped loop with an empty registry. cfg must validate.
func New(cfg waya.Config, opts ...Option) (*Loop, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	sessions := waya.NewSessions(cfg)
	l := &Loop{
		cfg:        cfg,
		sessions:   sessions,
		dispatcher: command.NewDispatcher(sessions, log),
		mailbox:    make(chan func(*Loop), mailboxSize),
		done:       make(chan struct{}),
		log:        log.Named("host"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Sessions returns the registry. Only touch it from the loop goroutine,
// inside a Post or Do closure.
func (l *Loop) Sessions() *waya.Sessions { return l.sessions }

// Dispatcher returns the command dispatcher. Same rules as Sessions.
func (l *Loop) Dispatcher() *command.Dispatcher { return l.dispatcher }

// Frame returns the number of frames stepped so far. Loop goroutine only.
func (l *Loop) Frame() uint64 { return l.frame }

// Run steps frames at cfg.FPS until ctx is done. It must be called at most
// once. Pending closures still in the mailbox when Run returns are dropped.
func (l *Loop) Run(ctx context.Context) error {
	defer close(l.done)

	interval := time.Second / time.Duration(l.cfg.FPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	l.log.Info("loop started", zap.Int("fps", l.cfg.FPS))
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			l.log.Info("loop stopped", zap.Uint64("frames", l.frame))
			if l.script != nil {
				l.script.finish(ctx.Err())
				l.script = nil
			}
			return nil
		case fn := <-l.mailbox:
			fn(l)
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			l.Step(dt)
		}
	}
}

// Step feeds one injected pointer event, plays one step of the attached
// script if any, and advances every session by dt seconds. Run calls it once
// per frame; tests may call it directly when no Run is active.
func (l *Loop) Step(dt float64) {
	start := time.Now()
	l.frame++
	l.processInjected()
	if l.script != nil && l.script.step(l) {
		l.script = nil
	}
	l.sessions.Tick(dt)
	if l.metrics != nil {
		l.metrics.observeFrame(time.Since(start), l.sessions.Len())
	}
}

// Pump runs every closure waiting in the mailbox, then steps one frame. It
// lets a host that owns its own frame loop, such as a window, drive the Loop
// instead of Run. Never mix Pump and Run on one Loop.
func (l *Loop) Pump(dt float64) {
	for {
		select {
		case fn := <-l.mailbox:
			fn(l)
		default:
			l.Step(dt)
			return
		}
	}
}

// Post queues fn to run on the loop goroutine. It blocks while the mailbox is
// full and returns ErrStopped once the loop has exited.
func (l *Loop) Post(ctx context.Context, fn func(*Loop)) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.mailbox <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs fn on the loop goroutine and waits for its result.
func (l *Loop) Do(ctx context.Context, fn func(*Loop) error) error {
	errc := make(chan error, 1)
	if err := l.Post(ctx, func(l *Loop) { errc <- fn(l) }); err != nil {
		return err
	}
	select {
	case err := <-errc:
		return err
	case <-l.done:
		// The closure may have run just before shutdown.
		select {
		case err := <-errc:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Execute runs one command line on the loop goroutine.
func (l *Loop) Execute(ctx context.Context, line string) (command.Result, error) {
	resc := make(chan command.Result, 1)
	err := l.Do(ctx, func(l *Loop) error {
		resc <- l.execute(line)
		return nil
	})
	if err != nil {
		return command.Result{}, err
	}
	return <-resc, nil
}

func (l *Loop) execute(line string) command.Result {
	res := l.dispatcher.Execute(line)
	if l.metrics != nil {
		name := "invalid"
		if in, err := command.Parse(line); err == nil && l.dispatcher.Has(in.Name) {
			name = in.Name
		}
		l.metrics.observeCommand(name, res.OK())
	}
	if !res.OK() {
		l.log.Debug("command rejected", zap.String("line", line), zap.String("reason", res.Message))
	}
	return res
}
