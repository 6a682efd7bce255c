package waya

import (
	"fmt"

	"go.uber.org/zap"
)

// SessionID addresses a slot in a Sessions arena. A destroyed session's id
// goes stale: its slot may be reused, but with a higher Generation.
type SessionID struct {
	Index      uint32
	Generation uint32
}

func (id SessionID) String() string {
	return fmt.Sprintf("%d:%d", id.Index, id.Generation)
}

// IsZero reports whether id is the zero value, which no live session has.
func (id SessionID) IsZero() bool {
	return id == SessionID{}
}

// SessionState is the lifecycle of a Session.
type SessionState uint8

const (
	SessionUninitialized SessionState = iota
	SessionReady
	SessionClosed
)

func (s SessionState) String() string {
	switch s {
	case SessionReady:
		return "ready"
	case SessionClosed:
		return "closed"
	default:
		return "uninitialized"
	}
}

// Session is one editing context: a node graph, a timeline, a scene and a
// camera, plus per-session settings and toggles. Components exist only while
// the session is Ready.
type Session struct {
	ID   SessionID
	Name string

	state SessionState

	graph    *NodeGraph
	timeline *Timeline
	scene    *Scene
	camera   *Camera

	settings  map[string]string
	recording bool
	overlay   bool
	plugins   map[string]bool

	cfg Config
	log *zap.Logger
}

// Init creates the session's components and moves it to Ready. With
// defaultGraph set the graph starts as Input -> ColorCorrect -> Output.
// Calling Init on a Ready or Closed session returns an error.
func (s *Session) Init(defaultGraph bool) error {
	if s.state != SessionUninitialized {
		return fmt.Errorf("waya: init session %s: already %s", s.ID, s.state)
	}
	if defaultGraph {
		s.graph = NewDefaultGraph(s.cfg)
	} else {
		s.graph = NewNodeGraph(s.cfg)
	}
	s.timeline = NewTimeline(s.cfg)
	s.scene = NewScene(s.cfg)
	s.camera = NewCamera(s.cfg)
	s.settings = make(map[string]string)
	s.plugins = make(map[string]bool)
	s.state = SessionReady
	s.log.Debug("session ready")
	return nil
}

// State returns the lifecycle state.
func (s *Session) State() SessionState {
	return s.state
}

func (s *Session) ready(op string) error {
	if s.state != SessionReady {
		return fmt.Errorf("waya: %s on session %s (%s): %w", op, s.ID, s.state, ErrNotReady)
	}
	return nil
}

// Graph returns the node graph.
func (s *Session) Graph() (*NodeGraph, error) {
	if err := s.ready("graph"); err != nil {
		return nil, err
	}
	return s.graph, nil
}

// Timeline returns the timeline.
func (s *Session) Timeline() (*Timeline, error) {
	if err := s.ready("timeline"); err != nil {
		return nil, err
	}
	return s.timeline, nil
}

// Scene returns the scene.
func (s *Session) Scene() (*Scene, error) {
	if err := s.ready("scene"); err != nil {
		return nil, err
	}
	return s.scene, nil
}

// Camera returns the camera.
func (s *Session) Camera() (*Camera, error) {
	if err := s.ready("camera"); err != nil {
		return nil, err
	}
	return s.camera, nil
}

// Setting returns a session setting.
func (s *Session) Setting(key string) (string, bool, error) {
	if err := s.ready("setting"); err != nil {
		return "", false, err
	}
	v, ok := s.settings[key]
	return v, ok, nil
}

// SetSetting stores a session setting.
func (s *Session) SetSetting(key, value string) error {
	if err := s.ready("set setting"); err != nil {
		return err
	}
	s.settings[key] = value
	return nil
}

// Settings returns a copy of all settings.
func (s *Session) Settings() map[string]string {
	out := make(map[string]string, len(s.settings))
	for k, v := range s.settings {
		out[k] = v
	}
	return out
}

// SetRecording toggles the recording flag. Recording only marks intent; no
// capture happens here.
func (s *Session) SetRecording(on bool) error {
	if err := s.ready("record"); err != nil {
		return err
	}
	s.recording = on
	return nil
}

// Recording reports the recording flag.
func (s *Session) Recording() bool { return s.recording }

// ToggleOverlay flips the overlay flag and returns the new value.
func (s *Session) ToggleOverlay() (bool, error) {
	if err := s.ready("overlay"); err != nil {
		return false, err
	}
	s.overlay = !s.overlay
	return s.overlay, nil
}

// Overlay reports the overlay flag.
func (s *Session) Overlay() bool { return s.overlay }

// SetPlugin enables or disables a named plugin flag.
func (s *Session) SetPlugin(name string, enabled bool) error {
	if err := s.ready("plugin"); err != nil {
		return err
	}
	if enabled {
		s.plugins[name] = true
	} else {
		delete(s.plugins, name)
	}
	return nil
}

// PluginEnabled reports a plugin flag.
func (s *Session) PluginEnabled(name string) bool {
	return s.plugins[name]
}

// Plugins returns the enabled plugin names in no particular order.
func (s *Session) Plugins() []string {
	out := make([]string, 0, len(s.plugins))
	for name := range s.plugins {
		out = append(out, name)
	}
	return out
}

// UpdateToTime moves the timeline cursor to t and applies the timeline to
// the scene and camera at the new cursor.
func (s *Session) UpdateToTime(t float64) error {
	if err := s.ready("update to time"); err != nil {
		return err
	}
	s.timeline.SetCurrentTime(t)
	s.applyTimeline()
	return nil
}

func (s *Session) applyTimeline() {
	now := s.timeline.CurrentTime()
	s.scene.Apply(s.timeline, now)
	if !s.camera.Flying() {
		s.camera.Apply(s.timeline, now)
	}
}

// Tick advances the session by dt seconds: timeline, graph, then camera
// animation. Values are re-applied on every frame that started playing, so
// the frame on which playback stops at the end still lands on the last
// keyframe.
func (s *Session) Tick(dt float64) error {
	if err := s.ready("tick"); err != nil {
		return err
	}
	wasPlaying := s.timeline.State() == Playing
	s.timeline.Tick(dt)
	s.graph.Tick(dt)
	s.camera.Update(float32(dt))
	if wasPlaying || s.timeline.State() == Playing {
		s.applyTimeline()
	}
	return nil
}

// Close releases the components. A closed session cannot be reopened.
func (s *Session) Close() {
	if s.state == SessionClosed {
		return
	}
	s.state = SessionClosed
	s.graph, s.timeline, s.scene, s.camera = nil, nil, nil, nil
	s.log.Debug("session closed")
}

// --- Registry ---

type sessionSlot struct {
	gen     uint32
	session *Session
}

// Sessions is an arena of sessions addressed by generational ids. It is not
// safe for concurrent use.
type Sessions struct {
	slots []sessionSlot
	free  []uint32
	live  int
	cfg   Config
	log   *zap.Logger
}

// NewSessions creates an empty registry. Every session it creates uses cfg.
func NewSessions(cfg Config) *Sessions {
	return &Sessions{cfg: cfg, log: cfg.logger().Named("sessions")}
}

// Create allocates an Uninitialized session and returns its id. Call Init
// on the session, or use Open, to make it Ready.
func (r *Sessions) Create(name string) SessionID {
	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, sessionSlot{})
	}
	slot := &r.slots[idx]
	slot.gen++
	id := SessionID{Index: idx, Generation: slot.gen}
	slot.session = &Session{
		ID:   id,
		Name: name,
		cfg:  r.cfg,
		log:  r.log.With(zap.Stringer("session", id), zap.String("name", name)),
	}
	r.live++
	r.log.Debug("session created", zap.Stringer("id", id))
	return id
}

// Open creates a session and initializes it with the default graph.
func (r *Sessions) Open(name string) (*Session, error) {
	id := r.Create(name)
	s, _ := r.Get(id)
	if err := s.Init(true); err != nil {
		r.Destroy(id)
		return nil, err
	}
	return s, nil
}

// Get returns the live session for id. Stale or unknown ids return a
// *NotFoundError.
func (r *Sessions) Get(id SessionID) (*Session, error) {
	if int(id.Index) >= len(r.slots) {
		return nil, notFound("session", id.String())
	}
	slot := r.slots[id.Index]
	if slot.session == nil || slot.gen != id.Generation {
		return nil, notFound("session", id.String())
	}
	return slot.session, nil
}

// Destroy closes and frees the session. It reports whether id was live.
func (r *Sessions) Destroy(id SessionID) bool {
	s, err := r.Get(id)
	if err != nil {
		return false
	}
	s.Close()
	r.slots[id.Index].session = nil
	r.free = append(r.free, id.Index)
	r.live--
	r.log.Debug("session destroyed", zap.Stringer("id", id))
	return true
}

// Len returns the number of live sessions.
func (r *Sessions) Len() int {
	return r.live
}

// Each calls fn for every live session in slot order. Returning false stops
// the walk.
func (r *Sessions) Each(fn func(*Session) bool) {
	for i := range r.slots {
		if s := r.slots[i].session; s != nil {
			if !fn(s) {
				return
			}
		}
	}
}

// Find returns the first live session with the given name.
func (r *Sessions) Find(name string) (*Session, bool) {
	var found *Session
	r.Each(func(s *Session) bool {
		if s.Name == name {
			found = s
			return false
		}
		return true
	})
	return found, found != nil
}

// UpdateToTime moves the session's cursor to t and applies the timeline.
func (r *Sessions) UpdateToTime(id SessionID, t float64) error {
	s, err := r.Get(id)
	if err != nil {
		return err
	}
	return s.UpdateToTime(t)
}

// Tick advances every Ready session by dt seconds.
func (r *Sessions) Tick(dt float64) {
	r.Each(func(s *Session) bool {
		if s.state == SessionReady {
			_ = s.Tick(dt)
		}
		return true
	})
}
