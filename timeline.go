package waya

import (
	"fmt"
	"math"
	"sort"

	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

// Keyframe is a value for a (target, property) pair at a time offset in
// seconds. Numeric values are stored as float64; anything else is opaque and
// held until the next keyframe.
type Keyframe struct {
	Time     float64 `yaml:"time"`
	Target   string  `yaml:"target"`
	Property string  `yaml:"property"`
	Value    any     `yaml:"value"`

	// Ease names the easing of the segment that ends at this keyframe.
	// Empty means linear.
	Ease string `yaml:"ease,omitempty"`
}

// Track identifies one keyframe series.
type Track struct {
	Target   string
	Property string
}

var eases = map[string]ease.TweenFunc{
	"linear":        ease.Linear,
	"in-quad":       ease.InQuad,
	"out-quad":      ease.OutQuad,
	"in-out-quad":   ease.InOutQuad,
	"in-cubic":      ease.InCubic,
	"out-cubic":     ease.OutCubic,
	"in-out-cubic":  ease.InOutCubic,
	"in-sine":       ease.InSine,
	"out-sine":      ease.OutSine,
	"in-out-sine":   ease.InOutSine,
	"out-bounce":    ease.OutBounce,
	"out-elastic":   ease.OutElastic,
	"in-out-expo":   ease.InOutExpo,
	"out-back":      ease.OutBack,
	"in-out-circle": ease.InOutCirc,
}

// EaseFunc returns the gween easing registered under name. The empty name
// maps to linear.
func EaseFunc(name string) (ease.TweenFunc, bool) {
	if name == "" {
		return ease.Linear, true
	}
	fn, ok := eases[name]
	return fn, ok
}

// EaseNames returns the accepted easing names, sorted.
func EaseNames() []string {
	names := make([]string, 0, len(eases))
	for name := range eases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PlaybackState is the timeline's transport state.
type PlaybackState uint8

const (
	Stopped PlaybackState = iota
	Playing
	Paused
)

func (s PlaybackState) String() string {
	switch s {
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	default:
		return "stopped"
	}
}

// Timeline stores keyframe series and a playback cursor. Series iterate in
// the order they were first created; keyframes within a series are kept in
// strictly increasing time order.
type Timeline struct {
	series map[Track][]Keyframe
	tracks []Track

	current float64
	state   PlaybackState

	// Speed scales the dt passed to Tick.
	Speed float64
	// StopAtEnd stops playback when the cursor reaches Duration.
	StopAtEnd bool

	debug bool
	log   *zap.Logger
}

// NewTimeline creates an empty, stopped timeline.
func NewTimeline(cfg Config) *Timeline {
	return &Timeline{
		series:    make(map[Track][]Keyframe),
		Speed:     cfg.Timeline.Speed,
		StopAtEnd: cfg.Timeline.StopAtEnd,
		debug:     cfg.Debug,
		log:       cfg.logger().Named("timeline"),
	}
}

// --- Editing ---

// AddKeyframe inserts a linear keyframe. See AddKeyframeEased.
func (tl *Timeline) AddKeyframe(target, property string, value any, t float64) error {
	return tl.AddKeyframeEased(target, property, value, t, "")
}

// AddKeyframeEased inserts a keyframe in time order. A keyframe already at
// exactly t for the same pair is replaced in place. Negative or non-finite
// times return ErrInvalidTime.
func (tl *Timeline) AddKeyframeEased(target, property string, value any, t float64, easeName string) error {
	if !isFinite(t) || t < 0 {
		return fmt.Errorf("waya: keyframe %s.%s at %v: %w", target, property, t, ErrInvalidTime)
	}
	if _, ok := EaseFunc(easeName); !ok {
		return fmt.Errorf("waya: keyframe %s.%s: unknown ease %q", target, property, easeName)
	}
	if f, ok := toFloat(value); ok {
		if !isFinite(f) {
			return fmt.Errorf("waya: keyframe %s.%s at %v: %w", target, property, t, ErrInvalidValue)
		}
		value = f
	}
	k := Track{target, property}
	kf := Keyframe{Time: t, Target: target, Property: property, Value: value, Ease: easeName}

	s, exists := tl.series[k]
	if !exists {
		tl.tracks = append(tl.tracks, k)
	}
	i := sort.Search(len(s), func(i int) bool { return s[i].Time >= t })
	if i < len(s) && s[i].Time == t {
		s[i] = kf
		tl.log.Debug("keyframe replaced", zap.String("target", target), zap.String("property", property), zap.Float64("time", t))
		return nil
	}
	s = append(s, Keyframe{})
	copy(s[i+1:], s[i:])
	s[i] = kf
	tl.series[k] = s
	tl.debugCheck("add keyframe")
	return nil
}

// RemoveKeyframe removes the keyframe at exactly t and reports whether one
// was there.
func (tl *Timeline) RemoveKeyframe(target, property string, t float64) bool {
	k := Track{target, property}
	s := tl.series[k]
	i := sort.Search(len(s), func(i int) bool { return s[i].Time >= t })
	if i >= len(s) || s[i].Time != t {
		return false
	}
	s = append(s[:i], s[i+1:]...)
	if len(s) == 0 {
		tl.dropTrack(k)
	} else {
		tl.series[k] = s
	}
	tl.debugCheck("remove keyframe")
	return true
}

// MoveKeyframe retimes the keyframe at from to to, keeping its value and
// easing. A keyframe already at to is replaced.
func (tl *Timeline) MoveKeyframe(target, property string, from, to float64) error {
	kf, ok := tl.KeyframeAt(target, property, from)
	if !ok {
		return fmt.Errorf("waya: move keyframe: %w", notFound("keyframe", fmt.Sprintf("%s.%s@%v", target, property, from)))
	}
	if !isFinite(to) || to < 0 {
		return fmt.Errorf("waya: move keyframe to %v: %w", to, ErrInvalidTime)
	}
	tl.RemoveKeyframe(target, property, from)
	return tl.AddKeyframeEased(target, property, kf.Value, to, kf.Ease)
}

// RemoveTarget drops every series of target and returns how many keyframes
// were removed.
func (tl *Timeline) RemoveTarget(target string) int {
	removed := 0
	for _, k := range append([]Track(nil), tl.tracks...) {
		if k.Target == target {
			removed += len(tl.series[k])
			tl.dropTrack(k)
		}
	}
	return removed
}

// Clear removes all keyframes. Playback state is unchanged.
func (tl *Timeline) Clear() {
	tl.series = make(map[Track][]Keyframe)
	tl.tracks = nil
}

func (tl *Timeline) dropTrack(k Track) {
	delete(tl.series, k)
	for i, t := range tl.tracks {
		if t == k {
			tl.tracks = append(tl.tracks[:i], tl.tracks[i+1:]...)
			break
		}
	}
}

// --- Queries ---

// Series returns a copy of the keyframes for the pair in time order.
func (tl *Timeline) Series(target, property string) []Keyframe {
	s := tl.series[Track{target, property}]
	if len(s) == 0 {
		return nil
	}
	out := make([]Keyframe, len(s))
	copy(out, s)
	return out
}

// Tracks returns every (target, property) pair in creation order.
func (tl *Timeline) Tracks() []Track {
	out := make([]Track, len(tl.tracks))
	copy(out, tl.tracks)
	return out
}

// Keyframes returns all keyframes, grouped by track in creation order.
func (tl *Timeline) Keyframes() []Keyframe {
	var out []Keyframe
	for _, k := range tl.tracks {
		out = append(out, tl.series[k]...)
	}
	return out
}

// Len returns the total number of keyframes.
func (tl *Timeline) Len() int {
	n := 0
	for _, s := range tl.series {
		n += len(s)
	}
	return n
}

// VisibleKeyframes returns keyframes with from <= Time <= to, sorted by time.
// Keyframes at equal times keep track order.
func (tl *Timeline) VisibleKeyframes(from, to float64) []Keyframe {
	var out []Keyframe
	for _, k := range tl.tracks {
		for _, kf := range tl.series[k] {
			if kf.Time >= from && kf.Time <= to {
				out = append(out, kf)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// KeyframeAt returns the keyframe at exactly t.
func (tl *Timeline) KeyframeAt(target, property string, t float64) (Keyframe, bool) {
	s := tl.series[Track{target, property}]
	i := sort.Search(len(s), func(i int) bool { return s[i].Time >= t })
	if i < len(s) && s[i].Time == t {
		return s[i], true
	}
	return Keyframe{}, false
}

// Duration returns the time of the latest keyframe, or 0 when empty.
func (tl *Timeline) Duration() float64 {
	d := 0.0
	for _, s := range tl.series {
		if n := len(s); n > 0 && s[n-1].Time > d {
			d = s[n-1].Time
		}
	}
	return d
}

// ValueAt samples the pair's series at time t. Before the first keyframe and
// after the last, the end values hold. Between two numeric keyframes the
// value is interpolated using the later keyframe's easing; otherwise the
// earlier value holds.
func (tl *Timeline) ValueAt(target, property string, t float64) (any, bool) {
	s := tl.series[Track{target, property}]
	if len(s) == 0 {
		return nil, false
	}
	if t <= s[0].Time {
		return s[0].Value, true
	}
	last := s[len(s)-1]
	if t >= last.Time {
		return last.Value, true
	}
	i := sort.Search(len(s), func(i int) bool { return s[i].Time > t }) - 1
	a, b := s[i], s[i+1]
	av, aok := a.Value.(float64)
	bv, bok := b.Value.(float64)
	if !aok || !bok {
		return a.Value, true
	}
	span := b.Time - a.Time
	elapsed := t - a.Time
	if b.Ease == "" || b.Ease == "linear" {
		return lerp(av, bv, elapsed/span), true
	}
	fn, _ := EaseFunc(b.Ease)
	return float64(fn(float32(elapsed), float32(av), float32(bv-av), float32(span))), true
}

// FloatAt is ValueAt for numeric series.
func (tl *Timeline) FloatAt(target, property string, t float64) (float64, bool) {
	v, ok := tl.ValueAt(target, property, t)
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}

// --- Playback ---

// State returns the transport state.
func (tl *Timeline) State() PlaybackState {
	return tl.state
}

// CurrentTime returns the cursor position in seconds.
func (tl *Timeline) CurrentTime() float64 {
	return tl.current
}

// SetCurrentTime moves the cursor. Negative times clamp to 0; NaN is ignored.
func (tl *Timeline) SetCurrentTime(t float64) {
	if math.IsNaN(t) {
		return
	}
	tl.current = math.Max(0, t)
}

// Play starts or resumes playback. With StopAtEnd set and the cursor already
// at the end, playback restarts from 0.
func (tl *Timeline) Play() {
	if tl.state == Playing {
		return
	}
	if tl.StopAtEnd && tl.current >= tl.Duration() {
		tl.current = 0
	}
	tl.setState(Playing)
}

// Pause holds the cursor. It has no effect unless playing.
func (tl *Timeline) Pause() {
	if tl.state == Playing {
		tl.setState(Paused)
	}
}

// Stop halts playback and rewinds the cursor to 0.
func (tl *Timeline) Stop() {
	tl.current = 0
	tl.setState(Stopped)
}

func (tl *Timeline) setState(s PlaybackState) {
	if tl.state == s {
		return
	}
	tl.log.Debug("state", zap.Stringer("from", tl.state), zap.Stringer("to", s))
	tl.state = s
}

// Tick advances the cursor by dt*Speed while playing. With StopAtEnd the
// cursor stops at Duration and the state becomes Stopped without rewinding.
func (tl *Timeline) Tick(dt float64) {
	if tl.state != Playing || !(dt > 0) {
		return
	}
	tl.current += dt * tl.Speed
	if tl.StopAtEnd {
		if d := tl.Duration(); tl.current >= d {
			tl.current = d
			tl.setState(Stopped)
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	}
	return 0, false
}
