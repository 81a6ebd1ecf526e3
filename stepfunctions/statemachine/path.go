package statemachine

import (
	"encoding/json"
	"strings"
)

// JSONPath is an ASL path field. The zero of *JSONPath (nil) means the
// field is omitted, which the engine treats as "$"; NullPath is an
// explicit null, which discards the value.
type JSONPath struct {
	path string
	null bool
}

func Path(p string) *JSONPath {
	return &JSONPath{path: p}
}

func NullPath() *JSONPath {
	return &JSONPath{null: true}
}

func (p *JSONPath) IsNull() bool {
	return p != nil && p.null
}

// String returns the path, "$" for an omitted path and "" for null.
func (p *JSONPath) String() string {
	if p == nil {
		return "$"
	}
	if p.null {
		return ""
	}
	return p.path
}

func (p JSONPath) MarshalJSON() ([]byte, error) {
	if p.null {
		return []byte("null"), nil
	}
	return json.Marshal(p.path)
}

// ReferencePathSuffix marks a Parameters key whose value is a path into the state input.
const ReferencePathSuffix = ".$"

// IsReferenceKey reports whether a Parameters key takes its value from a path.
func IsReferenceKey(key string) bool {
	return strings.HasSuffix(key, ReferencePathSuffix)
}
