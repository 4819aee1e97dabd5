// Package graph exports workflows as Mermaid flowcharts and Graphviz DOT,
// optionally highlighting the valid-path set and the protected endpoints.
package graph
