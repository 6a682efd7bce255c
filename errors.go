package waya

import (
	"errors"
	"fmt"
)

// Sentinel errors. Typed errors below match these with errors.Is.
var (
	ErrInvalidConnection = errors.New("waya: invalid connection")
	ErrNotFound          = errors.New("waya: not found")
	ErrDuplicateID       = errors.New("waya: duplicate id")
	ErrCycle             = errors.New("waya: graph contains a cycle")
	ErrInvalidTime       = errors.New("waya: invalid keyframe time")
	ErrInvalidValue      = errors.New("waya: non-finite keyframe value")
	ErrNotReady          = errors.New("waya: session not ready")
)

// ConnectionRule names the rule a rejected connection broke.
type ConnectionRule string

const (
	RuleSameNode      ConnectionRule = "ports belong to the same node"
	RuleSameDirection ConnectionRule = "ports have the same direction"
	RuleFanIn         ConnectionRule = "destination port already connected"
	RuleNilPort       ConnectionRule = "port is nil"
)

// InvalidConnectionError is returned when a connection attempt violates the
// direction, node-distinctness or fan-in rules. The graph is left unchanged.
type InvalidConnectionError struct {
	Rule   ConnectionRule
	Source *Port
	Dest   *Port
}

func (e *InvalidConnectionError) Error() string {
	return fmt.Sprintf("waya: invalid connection %s -> %s: %s", e.Source, e.Dest, e.Rule)
}

// Is lets errors.Is(err, ErrInvalidConnection) match.
func (e *InvalidConnectionError) Is(target error) bool {
	return target == ErrInvalidConnection
}

// NotFoundError reports an operation on an id that is no longer present.
type NotFoundError struct {
	Kind string // "node", "port", "connection", "object", "session", "keyframe"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("waya: %s %q not found", e.Kind, e.ID)
}

// Is lets errors.Is(err, ErrNotFound) match.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(kind, id string) error {
	return &NotFoundError{Kind: kind, ID: id}
}
