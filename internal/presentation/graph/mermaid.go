package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/blockflow/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart for the workflow.
// Shapes follow the block type:
// - Start: ((Circle))
// - End: (((Double circle)))
// - Form: [/Parallelogram/]
// - Conditional: {Rhombus}
// - API: [[Subroutine]]
// Overlay classes mark blocks on a complete path and protected endpoints.
func GenerateMermaid(g domain.Graph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for _, node := range g.Nodes {
		opener, closer := "[", "]"
		switch node.Type {
		case domain.NodeTypeStart:
			opener, closer = "((", "))"
		case domain.NodeTypeEnd:
			opener, closer = "(((", ")))"
		case domain.NodeTypeForm:
			opener, closer = "[/", "/]"
		case domain.NodeTypeConditional:
			opener, closer = "{", "}"
		case domain.NodeTypeAPI:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(node.ID), opener, escapeLabel(displayName(node)), closer)
	}

	for _, e := range g.Edges {
		arrow := "-->"
		if e.Label != "" {
			arrow = fmt.Sprintf("-- \"%s\" -->", escapeLabel(e.Label))
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", sanitizeMermaidID(e.Source), arrow, sanitizeMermaidID(e.Target))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps contrast on light fills in both themes.
		sb.WriteString("    classDef onpath fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef protected stroke:#c62828,stroke-width:4px,color:#000;\n")

		for _, node := range g.Nodes {
			if overlay.OnValidPath[node.ID] {
				fmt.Fprintf(&sb, "    class %s onpath;\n", sanitizeMermaidID(node.ID))
			}
		}
		for _, node := range g.Nodes {
			if deletable, known := overlay.Deletable[node.ID]; known && !deletable {
				fmt.Fprintf(&sb, "    class %s protected;\n", sanitizeMermaidID(node.ID))
			}
		}
	}

	return sb.String()
}

func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_").Replace(id)
}
