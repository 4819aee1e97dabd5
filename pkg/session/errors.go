package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Messages attached to individual inputs of the block configuration dialogs.
const (
	MsgFieldRequired     = "This field is required."
	MsgFieldTypeRequired = "Field type is required."
	MsgInvalidFieldType  = "Field type must be text, email or number."
	MsgNeedOneField      = "At least one field is required."
	MsgInvalidURL        = "Please enter a valid URL."
	MsgInvalidMethod     = "HTTP method must be PUT or POST."
)

// FieldErrorNone is the key used when the form has no fields at all.
const FieldErrorNone = "none"

// FieldErrors maps dialog inputs to their error message. Keys are "none",
// "<fieldID>_name", "<fieldID>_type", "customName", "httpMethod" and "url".
// A configuration call that returns FieldErrors leaves the node untouched.
type FieldErrors struct {
	Fields map[string]string `json:"fields"`
}

func (e *FieldErrors) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "invalid block configuration: " + strings.Join(parts, "; ")
}

func (e *FieldErrors) add(key, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[key] = msg
}

func (e *FieldErrors) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

// ErrSessionNotOpen is returned by Close for sessions the Manager does not hold.
var ErrSessionNotOpen = errors.New("session is not open")
