// Package command turns text command lines into edits on a waya session.
// Every command answers with a Result whose Code is 1 when handled and 0 when
// rejected; rejections carry the reason in Message.
package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/wayacreates/waya"
)

// Result codes.
const (
	Rejected = 0
	Handled  = 1
)

// Result is the outcome of one command.
type Result struct {
	Code    int
	Message string
}

// OK reports whether the command was handled.
func (r Result) OK() bool { return r.Code == Handled }

func (r Result) String() string {
	if r.OK() {
		return r.Message
	}
	return "error: " + r.Message
}

// ErrNoProject is returned by commands that need an active project when none
// is open.
var ErrNoProject = errors.New("no active project; run project.create first")

// Invocation is a parsed command line: positional arguments plus key=value
// options.
type Invocation struct {
	Name string
	Args []string
	Opts map[string]string
}

// Arg returns positional argument i, or "".
func (in Invocation) Arg(i int) string {
	if i < 0 || i >= len(in.Args) {
		return ""
	}
	return in.Args[i]
}

type handler func(d *Dispatcher, in Invocation) (string, error)

type spec struct {
	name  string
	usage string
	help  string
	run   handler
}

// Dispatcher executes commands against the active session of a registry. It
// is not safe for concurrent use; hosts run it on their loop goroutine.
type Dispatcher struct {
	sessions *waya.Sessions
	active   waya.SessionID
	specs    map[string]spec
	validate *validator.Validate
	log      *zap.Logger
}

// NewDispatcher creates a dispatcher bound to sessions with the built-in
// command set.
func NewDispatcher(sessions *waya.Sessions, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	d := &Dispatcher{
		sessions: sessions,
		specs:    make(map[string]spec),
		validate: validator.New(),
		log:      log.Named("command"),
	}
	registerBuiltins(d)
	return d
}

func (d *Dispatcher) register(s spec) {
	d.specs[s.name] = s
}

// Commands returns the registered command names, sorted.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.specs))
	for name := range d.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether name is a registered command.
func (d *Dispatcher) Has(name string) bool {
	_, ok := d.specs[strings.ToLower(name)]
	return ok
}

// Active returns the active session id, which is zero when none is open.
func (d *Dispatcher) Active() waya.SessionID {
	return d.active
}

// Session returns the active Ready session.
func (d *Dispatcher) Session() (*waya.Session, error) {
	if d.active.IsZero() {
		return nil, ErrNoProject
	}
	s, err := d.sessions.Get(d.active)
	if err != nil {
		d.active = waya.SessionID{}
		return nil, ErrNoProject
	}
	if s.State() != waya.SessionReady {
		return nil, fmt.Errorf("project %q: %w", s.Name, waya.ErrNotReady)
	}
	return s, nil
}

// Execute parses and runs one command line.
func (d *Dispatcher) Execute(line string) Result {
	in, err := Parse(line)
	if err != nil {
		return d.reject(line, err)
	}
	if in.Name == "" {
		return Result{Code: Rejected, Message: "empty command"}
	}
	s, ok := d.specs[in.Name]
	if !ok {
		return d.reject(line, fmt.Errorf("unknown command %q (try help)", in.Name))
	}
	msg, err := s.run(d, in)
	if err != nil {
		return d.reject(line, err)
	}
	d.log.Debug("handled", zap.String("line", line))
	return Result{Code: Handled, Message: msg}
}

func (d *Dispatcher) reject(line string, err error) Result {
	d.log.Debug("rejected", zap.String("line", line), zap.Error(err))
	return Result{Code: Rejected, Message: err.Error()}
}

// check validates an argument struct and flattens validator errors into one
// readable message.
func (d *Dispatcher) check(usage string, args any) error {
	err := d.validate.Struct(args)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", strings.ToLower(fe.Field()), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s is %s", strings.ToLower(fe.Field()), fe.Tag()))
		}
	}
	return fmt.Errorf("%s (usage: %s)", strings.Join(parts, "; "), usage)
}

// Parse splits a command line into name, positional arguments and key=value
// options. Double quotes group words; a backslash escapes the next rune.
func Parse(line string) (Invocation, error) {
	tokens, err := tokenize(line)
	if err != nil {
		return Invocation{}, err
	}
	in := Invocation{Opts: make(map[string]string)}
	if len(tokens) == 0 {
		return in, nil
	}
	in.Name = strings.ToLower(tokens[0].text)
	for _, tok := range tokens[1:] {
		if !tok.quoted {
			if k, v, ok := strings.Cut(tok.text, "="); ok && k != "" {
				in.Opts[strings.ToLower(k)] = v
				continue
			}
		}
		in.Args = append(in.Args, tok.text)
	}
	return in, nil
}

type token struct {
	text   string
	quoted bool
}

func tokenize(line string) ([]token, error) {
	var (
		out     []token
		cur     strings.Builder
		inQuote bool
		quoted  bool
		escape  bool
		started bool
	)
	flush := func() {
		if started {
			out = append(out, token{text: cur.String(), quoted: quoted})
		}
		cur.Reset()
		started, quoted = false, false
	}
	for _, r := range line {
		switch {
		case escape:
			cur.WriteRune(r)
			escape = false
		case r == '\\':
			escape, started = true, true
		case r == '"':
			inQuote = !inQuote
			quoted, started = true, true
		case !inQuote && (r == ' ' || r == '\t' || r == '\n' || r == '\r'):
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if inQuote {
		return nil, errors.New("unterminated quote")
	}
	if escape {
		return nil, errors.New("trailing backslash")
	}
	flush()
	return out, nil
}
