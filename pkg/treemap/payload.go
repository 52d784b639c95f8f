package treemap

import (
	"fmt"

	"github.com/matzehuels/treemap/pkg/geom"
)

// Kind is the interaction that triggers a layout pass.
type Kind int

const (
	// Init is the first render.
	Init Kind = iota
	// Resize follows a viewport change. It is laid out like Init.
	Resize
	// ZoomToNode enlarges the root so that the target fills a fraction of
	// the viewport, and centers the target. The view root is unchanged.
	ZoomToNode
	// RootToNode makes the target the new view root.
	RootToNode
	// Move pans: the last layout is reused and only the root position changes.
	Move
	// Render lays out at an explicit root rectangle, as after a pan ends.
	Render
)

var kindNames = [...]string{"init", "resize", "zoomToNode", "rootToNode", "move", "render"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Direction records how a RootToNode pass moved the view root.
type Direction int

const (
	NoDirection Direction = iota
	DrillDown
	RollUp
)

func (d Direction) String() string {
	switch d {
	case DrillDown:
		return "drillDown"
	case RollUp:
		return "rollUp"
	}
	return ""
}

// Payload describes one interaction.
type Payload struct {
	Kind Kind

	// Target references a node by ID or name, for ZoomToNode and RootToNode.
	Target string

	// RootRect carries the root rectangle for Move and Render. RootToNode
	// also honors it as the root size when set.
	RootRect *geom.Rect
}

// InitPayload returns an Init payload.
func InitPayload() Payload { return Payload{Kind: Init} }

// ResizePayload returns a Resize payload.
func ResizePayload() Payload { return Payload{Kind: Resize} }

// ZoomTo returns a ZoomToNode payload.
func ZoomTo(target string) Payload { return Payload{Kind: ZoomToNode, Target: target} }

// RootTo returns a RootToNode payload.
func RootTo(target string) Payload { return Payload{Kind: RootToNode, Target: target} }

// MoveTo returns a Move payload.
func MoveTo(rect geom.Rect) Payload { return Payload{Kind: Move, RootRect: &rect} }

// RenderAt returns a Render payload.
func RenderAt(rect geom.Rect) Payload { return Payload{Kind: Render, RootRect: &rect} }

func (p Payload) needsTarget() bool {
	return p.Kind == ZoomToNode || p.Kind == RootToNode
}
