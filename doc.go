// Package waya is the editing core of a node-based compositor with a
// keyframe timeline and a 3D viewport.
//
// It holds three cooperating in-memory models and nothing that draws pixels:
//
//   - [NodeGraph]: typed nodes with ordered ports, validated connections,
//     cascading removal, hit testing and color evaluation.
//   - [Timeline]: time-ordered keyframe series per (target, property) pair
//     with a Stopped/Playing/Paused cursor.
//   - [Scene] and [Camera]: named 3D objects with a selection, and a
//     perspective camera with lookAt, rotate, pan and zoom.
//
// A [Session] bundles one of each; [Sessions] is the registry that owns
// them, addressed by generational [SessionID]s.
//
// # Quick start
//
//	cfg := waya.DefaultConfig()
//	sessions := waya.NewSessions(cfg)
//	s, _ := sessions.Open("demo")
//
//	g, _ := s.Graph()
//	fx := waya.NewEffectNode("Invert", waya.EffectInvert)
//	_ = g.AddNode(fx)
//
//	tl, _ := s.Timeline()
//	_ = tl.AddKeyframe("Cube", "x", 0.0, 0)
//	_ = tl.AddKeyframe("Cube", "x", 4.0, 2)
//	tl.Play()
//
//	// once per frame, on one goroutine:
//	sessions.Tick(1.0 / 60)
//
// # Threading
//
// Nothing in this package is safe for concurrent use. A host drives it from
// a single goroutine; see the host package for a loop that serializes
// commands onto that goroutine.
//
// # Configuration
//
// Every constructor takes a [Config]. The package never reads the
// environment or global state on its own; [Config.ApplyEnv] and
// [LoadConfig] exist for hosts that want that.
//
// # Errors
//
// Rejected edits return [*InvalidConnectionError] or [*NotFoundError],
// which match [ErrInvalidConnection] and [ErrNotFound] under errors.Is.
// Nothing here panics on bad input.
package waya
