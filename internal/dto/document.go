package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/aretw0/blockflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Format is a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the encoding from a file extension; anything that is
// not .yaml/.yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// RawDocument mirrors the persisted document, but keeps node data loosely
// typed so hand-written or exported files decode even when scalars are quoted
// differently ("required": "true", numeric request-body values).
type RawDocument struct {
	Nodes    []RawNode     `json:"nodes" yaml:"nodes"`
	Edges    []domain.Edge `json:"edges" yaml:"edges"`
	Metadata RawMetadata   `json:"metadata" yaml:"metadata"`
}

// RawNode is a node whose data is still a generic map.
type RawNode struct {
	ID       string          `json:"id" yaml:"id"`
	Type     string          `json:"type" yaml:"type"`
	Position domain.Position `json:"position" yaml:"position"`
	Data     map[string]any  `json:"data" yaml:"data"`
}

// RawMetadata keeps the timestamp as text until it is parsed.
type RawMetadata struct {
	Name    string `json:"name" yaml:"name"`
	Version string `json:"version" yaml:"version"`
	Created string `json:"created" yaml:"created"`
}

// Decode parses a workflow document in the given format.
func Decode(data []byte, format Format) (*domain.Document, error) {
	var raw RawDocument
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to parse yaml document: %w", err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to parse json document: %w", err)
		}
	}
	return raw.ToDomain()
}

// ToDomain converts the raw document, decoding each node's data.
func (r RawDocument) ToDomain() (*domain.Document, error) {
	doc := &domain.Document{
		Nodes: make([]domain.NodeRecord, 0, len(r.Nodes)),
		Edges: r.Edges,
		Metadata: domain.Metadata{
			Name:    r.Metadata.Name,
			Version: r.Metadata.Version,
		},
	}
	if doc.Edges == nil {
		doc.Edges = []domain.Edge{}
	}

	if r.Metadata.Created != "" {
		created, err := time.Parse(time.RFC3339, r.Metadata.Created)
		if err != nil {
			return nil, fmt.Errorf("invalid metadata.created %q: %w", r.Metadata.Created, err)
		}
		doc.Metadata.Created = created
	}

	for _, n := range r.Nodes {
		data, err := DecodeNodeData(n.Data)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", n.ID, err)
		}
		doc.Nodes = append(doc.Nodes, domain.NodeRecord{
			ID:       n.ID,
			Type:     domain.NodeType(n.Type),
			Position: n.Position,
			Data:     data,
		})
	}
	return doc, nil
}

// DecodeNodeData turns a generic data map into NodeData. Unknown keys are
// ignored; scalars are converted weakly (e.g. "true" -> true, 42 -> "42").
func DecodeNodeData(raw map[string]any) (domain.NodeData, error) {
	var data domain.NodeData
	if len(raw) == 0 {
		return data, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
		Result:           &data,
	})
	if err != nil {
		return data, err
	}
	if err := dec.Decode(raw); err != nil {
		return data, fmt.Errorf("failed to decode node data: %w", err)
	}
	return data, nil
}

// Encode writes the document in the given format.
func Encode(doc *domain.Document, format Format) ([]byte, error) {
	if format == FormatYAML {
		return yaml.Marshal(doc)
	}
	return json.MarshalIndent(doc, "", "  ")
}
