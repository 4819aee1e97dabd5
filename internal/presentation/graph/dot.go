package graph

import (
	"fmt"
	"strconv"

	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/awalterschulze/gographviz"
)

const dotGraphName = "workflow"

var dotShapes = map[domain.NodeType]string{
	domain.NodeTypeStart:       "circle",
	domain.NodeTypeEnd:         "doublecircle",
	domain.NodeTypeForm:        "parallelogram",
	domain.NodeTypeConditional: "diamond",
	domain.NodeTypeAPI:         "component",
}

// GenerateDOT renders the workflow as a Graphviz digraph. With an overlay,
// blocks on a complete path are filled and protected endpoints drawn bold red.
func GenerateDOT(g domain.Graph, overlay *Overlay) (string, error) {
	out := gographviz.NewGraph()
	if err := out.SetName(dotGraphName); err != nil {
		return "", err
	}
	if err := out.SetDir(true); err != nil {
		return "", err
	}
	if err := out.AddAttr(dotGraphName, "rankdir", "LR"); err != nil {
		return "", err
	}

	for _, n := range g.Nodes {
		attrs := map[string]string{
			"label": strconv.Quote(displayName(n)),
			"shape": "box",
		}
		if shape, ok := dotShapes[n.Type]; ok {
			attrs["shape"] = shape
		}
		if overlay != nil {
			if overlay.OnValidPath[n.ID] {
				attrs["style"] = "filled"
				attrs["fillcolor"] = strconv.Quote("#e1f5fe")
			}
			if deletable, known := overlay.Deletable[n.ID]; known && !deletable {
				attrs["color"] = "red"
				attrs["penwidth"] = "2"
			}
		}
		if err := out.AddNode(dotGraphName, strconv.Quote(n.ID), attrs); err != nil {
			return "", fmt.Errorf("dot node %q: %w", n.ID, err)
		}
	}

	for _, e := range g.Edges {
		attrs := map[string]string{}
		if e.Label != "" {
			attrs["label"] = strconv.Quote(e.Label)
		}
		if err := out.AddEdge(strconv.Quote(e.Source), strconv.Quote(e.Target), true, attrs); err != nil {
			return "", fmt.Errorf("dot edge %q: %w", e.ID, err)
		}
	}

	return out.String(), nil
}
