package domain

// Edge is a directed connection between two nodes.
// Parallel edges between the same pair are allowed.
type Edge struct {
	ID     string `json:"id" yaml:"id" mapstructure:"id"`
	Source string `json:"source" yaml:"source" mapstructure:"source"`
	Target string `json:"target" yaml:"target" mapstructure:"target"`
	Label  string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool {
	return e.Source == e.Target
}
