package http

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawSpec []byte

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawSpec)
	if err != nil {
		return nil, fmt.Errorf("failed to load openapi spec: %w", err)
	}
	if err := doc.Validate(context.Background()); err != nil {
		return nil, fmt.Errorf("invalid openapi spec: %w", err)
	}
	return doc, nil
}

// schemaValidator checks decoded JSON against a named component schema.
type schemaValidator struct {
	spec *openapi3.T
}

func (v schemaValidator) validate(name string, value any) error {
	if v.spec == nil || v.spec.Components == nil {
		return nil
	}
	ref, ok := v.spec.Components.Schemas[name]
	if !ok || ref.Value == nil {
		return fmt.Errorf("unknown schema %q", name)
	}
	return ref.Value.VisitJSON(value)
}
