package waya

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// debugMaxNodes is the node count above which debug mode warns.
const debugMaxNodes = 1000

// CheckInvariants verifies the graph's structural rules and returns every
// violation found, joined. A nil result means the graph is consistent.
func (g *NodeGraph) CheckInvariants() error {
	var errs []error
	fanIn := make(map[*Port]int)
	for _, c := range g.conns {
		for _, p := range [2]*Port{c.Source, c.Dest} {
			if p == nil || p.node == nil || g.byID[p.node.ID] != p.node {
				errs = append(errs, fmt.Errorf("connection %s references a port outside the graph", c.ID))
			}
		}
		if c.Source == nil || c.Dest == nil {
			continue
		}
		if c.Source.Direction != PortOutput || c.Dest.Direction != PortInput {
			errs = append(errs, fmt.Errorf("connection %s is not output -> input", c.ID))
		}
		if c.Source.node == c.Dest.node {
			errs = append(errs, fmt.Errorf("connection %s loops on one node", c.ID))
		}
		fanIn[c.Dest]++
		if g.incoming[c.Dest] != c {
			errs = append(errs, fmt.Errorf("connection %s missing from the incoming index", c.ID))
		}
	}
	for p, n := range fanIn {
		if n > 1 {
			errs = append(errs, fmt.Errorf("input %s has %d connections", p, n))
		}
	}
	if len(g.incoming) != len(g.conns) {
		errs = append(errs, fmt.Errorf("incoming index has %d entries for %d connections", len(g.incoming), len(g.conns)))
	}
	if len(g.byID) != len(g.nodes) {
		errs = append(errs, fmt.Errorf("node index has %d entries for %d nodes", len(g.byID), len(g.nodes)))
	}
	return errors.Join(errs...)
}

// CheckInvariants verifies that every series is strictly time ordered and
// that keyframes carry their own track key.
func (tl *Timeline) CheckInvariants() error {
	var errs []error
	for k, s := range tl.series {
		for i, kf := range s {
			if kf.Target != k.Target || kf.Property != k.Property {
				errs = append(errs, fmt.Errorf("keyframe %v filed under %s.%s", kf.Time, k.Target, k.Property))
			}
			if i > 0 && s[i-1].Time >= kf.Time {
				errs = append(errs, fmt.Errorf("series %s.%s out of order at %v", k.Target, k.Property, kf.Time))
			}
		}
	}
	if len(tl.tracks) != len(tl.series) {
		errs = append(errs, fmt.Errorf("track list has %d entries for %d series", len(tl.tracks), len(tl.series)))
	}
	return errors.Join(errs...)
}

// debugCheck runs the invariant checks after a mutation when debug mode is
// on and logs anything it finds.
func (g *NodeGraph) debugCheck(op string) {
	if !g.debug {
		return
	}
	if err := g.CheckInvariants(); err != nil {
		g.log.Error("graph invariant violated", zap.String("op", op), zap.Error(err))
	}
	if len(g.nodes) > debugMaxNodes {
		g.log.Warn("large graph", zap.Int("nodes", len(g.nodes)), zap.Int("threshold", debugMaxNodes))
	}
}

func (tl *Timeline) debugCheck(op string) {
	if !tl.debug {
		return
	}
	if err := tl.CheckInvariants(); err != nil {
		tl.log.Error("timeline invariant violated", zap.String("op", op), zap.Error(err))
	}
}
