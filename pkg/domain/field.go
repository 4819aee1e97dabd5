package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// FieldType is the input type of a form field. The empty value means "not chosen yet".
type FieldType string

const (
	FieldTypeUnset  FieldType = ""
	FieldTypeText   FieldType = "text"
	FieldTypeEmail  FieldType = "email"
	FieldTypeNumber FieldType = "number"
)

// ParseFieldType accepts the field types a form offers, including the unset value.
func ParseFieldType(s string) (FieldType, error) {
	switch FieldType(s) {
	case FieldTypeUnset, FieldTypeText, FieldTypeEmail, FieldTypeNumber:
		return FieldType(s), nil
	default:
		return "", fmt.Errorf("unsupported field type %q", s)
	}
}

// FormField is a single input declared by a Form block.
type FormField struct {
	ID       string    `json:"id" yaml:"id" mapstructure:"id"`
	Name     string    `json:"name" yaml:"name" mapstructure:"name"`
	Type     FieldType `json:"type" yaml:"type" mapstructure:"type"`
	Required bool      `json:"required" yaml:"required" mapstructure:"required"`
}

// HasName reports whether the field has a non-blank name.
func (f FormField) HasName() bool {
	return strings.TrimSpace(f.Name) != ""
}

// HasType reports whether a field type was chosen.
func (f FormField) HasType() bool {
	return f.Type != FieldTypeUnset
}

// HasKnownType reports whether the field type is one ParseFieldType accepts.
func (f FormField) HasKnownType() bool {
	_, err := ParseFieldType(string(f.Type))
	return err == nil
}

// IsWellFormed reports whether the field can be saved.
func (f FormField) IsWellFormed() bool {
	return f.HasName() && f.HasType() && f.HasKnownType()
}

// NormalizedName is the request-body key for this field:
// lower-cased, with every run of non-alphanumerics collapsed to "_".
func (f FormField) NormalizedName() string {
	var sb strings.Builder
	pendingSep := false
	for _, r := range strings.ToLower(strings.TrimSpace(f.Name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingSep && sb.Len() > 0 {
				sb.WriteByte('_')
			}
			pendingSep = false
			sb.WriteRune(r)
			continue
		}
		pendingSep = true
	}
	return sb.String()
}

// Placeholder is the request-body value used when the field is selected.
func (f FormField) Placeholder() string {
	return "{{" + f.NormalizedName() + "}}"
}
