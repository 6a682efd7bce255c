package host

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wayacreates/waya/command"
)

// ErrScriptBusy is returned by Play while another script is still running.
var ErrScriptBusy = errors.New("host: a script is already running")

// Step is one entry of a script: an optional command, an optional injected
// click or drag in editor coordinates, then an optional pause of Wait frames.
// Expect, when set, is "ok" or "error" and fails the script if the command's
// result disagrees. A drag of [fromX, fromY, toX, toY] spans Frames frames.
type Step struct {
	Run    string    `yaml:"run,omitempty"`
	Click  []float64 `yaml:"click,omitempty" validate:"omitempty,len=2"`
	Drag   []float64 `yaml:"drag,omitempty" validate:"omitempty,len=4"`
	Frames int       `yaml:"frames,omitempty" validate:"gte=0"`
	Wait   int       `yaml:"wait,omitempty" validate:"gte=0"`
	Expect string    `yaml:"expect,omitempty" validate:"omitempty,oneof=ok error"`
}

// Script is a list of steps replayed one per frame.
type Script struct {
	Name  string `yaml:"name,omitempty"`
	Steps []Step `yaml:"steps" validate:"required,min=1,dive"`
}

var validate = validator.New()

// ParseScript decodes and validates a YAML script.
func ParseScript(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return &s, nil
}

// LoadScript reads a YAML script from path.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScript(data)
}

// ScriptError reports the step that failed an expectation.
type ScriptError struct {
	Step   int
	Line   string
	Result command.Result
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("script step %d %q: unexpected result: %s", e.Step, e.Line, e.Result)
}

// scriptRun sequences a script across frames.
type scriptRun struct {
	script    *Script
	cursor    int
	waitCount int
	results   []command.Result
	err       error
	done      chan struct{}
}

func newScriptRun(s *Script) *scriptRun {
	return &scriptRun{script: s, done: make(chan struct{})}
}

// step advances the script by one frame and reports whether it finished.
// Queued pointer events drain before the next step runs.
func (r *scriptRun) step(l *Loop) bool {
	if l.Injecting() {
		return false
	}
	if r.waitCount > 0 {
		r.waitCount--
		return false
	}
	if r.cursor >= len(r.script.Steps) {
		r.finish(nil)
		return true
	}

	st := r.script.Steps[r.cursor]
	r.cursor++
	if st.Run != "" {
		res := l.execute(st.Run)
		r.results = append(r.results, res)
		if (st.Expect == "ok" && !res.OK()) || (st.Expect == "error" && res.OK()) {
			l.log.Warn("script step failed", zap.Int("step", r.cursor-1), zap.String("line", st.Run))
			r.finish(&ScriptError{Step: r.cursor - 1, Line: st.Run, Result: res})
			return true
		}
	}
	if len(st.Click) == 2 {
		l.InjectClick(st.Click[0], st.Click[1])
	}
	if len(st.Drag) == 4 {
		l.InjectDrag(st.Drag[0], st.Drag[1], st.Drag[2], st.Drag[3], st.Frames)
	}
	if st.Wait > 0 {
		r.waitCount = st.Wait - 1 // this frame counts as one
	}

	if r.cursor >= len(r.script.Steps) && r.waitCount == 0 && !l.Injecting() {
		r.finish(nil)
		return true
	}
	return false
}

func (r *scriptRun) finish(err error) {
	select {
	case <-r.done:
		return
	default:
	}
	r.err = err
	close(r.done)
}

func (l *Loop) attach(r *scriptRun) error {
	if l.script != nil {
		return ErrScriptBusy
	}
	l.script = r
	l.log.Info("script attached", zap.String("name", r.script.Name), zap.Int("steps", len(r.script.Steps)))
	return nil
}

// Play runs s on the loop, one step per frame, and waits for it to finish.
// It returns every command result in order. A failed expectation stops the
// script and returns a *ScriptError along with the results so far.
func (l *Loop) Play(ctx context.Context, s *Script) ([]command.Result, error) {
	r := newScriptRun(s)
	if err := l.Do(ctx, func(l *Loop) error { return l.attach(r) }); err != nil {
		return nil, err
	}
	select {
	case <-r.done:
		return r.results, r.err
	case <-l.done:
		<-r.done
		return r.results, ErrStopped
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
