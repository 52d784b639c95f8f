package pipeline

import (
	"math"
	"strconv"
	"strings"

	"github.com/matzehuels/treemap/pkg/errors"
	"github.com/matzehuels/treemap/pkg/geom"
	"github.com/matzehuels/treemap/pkg/treemap"
)

// ParseInteraction parses one interaction of a replay sequence:
//
//	init                  full layout at the current view root
//	resize                same as init, after a viewport change
//	zoom:<node>           zoomToNode, node by ID or name
//	root:<node>           rootToNode
//	move:x,y,w,h          pan the root rectangle
//	render:x,y,w,h        relayout at the given root rectangle
func ParseInteraction(s string) (treemap.Payload, error) {
	kind, arg, _ := strings.Cut(strings.TrimSpace(s), ":")
	kind = strings.ToLower(kind)
	switch kind {
	case "init":
		return treemap.InitPayload(), nil
	case "resize":
		return treemap.ResizePayload(), nil
	case "zoom", "zoomtonode":
		if err := errors.ValidateNodeID(arg); err != nil {
			return treemap.Payload{}, errors.Wrap(errors.ErrCodeInvalidPayload, err, "interaction %q", s)
		}
		return treemap.ZoomTo(arg), nil
	case "root", "roottonode":
		if err := errors.ValidateNodeID(arg); err != nil {
			return treemap.Payload{}, errors.Wrap(errors.ErrCodeInvalidPayload, err, "interaction %q", s)
		}
		return treemap.RootTo(arg), nil
	case "move", "render":
		r, err := parseRect(arg)
		if err != nil {
			return treemap.Payload{}, errors.Wrap(errors.ErrCodeInvalidPayload, err, "interaction %q", s)
		}
		if kind == "move" {
			return treemap.MoveTo(r), nil
		}
		return treemap.RenderAt(r), nil
	}
	return treemap.Payload{}, errors.New(errors.ErrCodeInvalidPayload,
		"unknown interaction %q (must be init, resize, zoom:<node>, root:<node>, move:x,y,w,h or render:x,y,w,h)", s)
}

// ParseInteractions parses a whole sequence.
func ParseInteractions(list []string) ([]treemap.Payload, error) {
	out := make([]treemap.Payload, 0, len(list))
	for _, s := range list {
		p, err := ParseInteraction(s)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func parseRect(s string) (geom.Rect, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return geom.Rect{}, errors.New(errors.ErrCodeInvalidPayload, "rectangle must be x,y,w,h")
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return geom.Rect{}, err
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return geom.Rect{}, errors.New(errors.ErrCodeInvalidPayload, "rectangle must be finite")
		}
		v[i] = f
	}
	if v[2] < 0 || v[3] < 0 {
		return geom.Rect{}, errors.New(errors.ErrCodeInvalidPayload, "rectangle size must not be negative")
	}
	return geom.Rect{X: v[0], Y: v[1], Width: v[2], Height: v[3]}, nil
}
