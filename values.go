package confres

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goliatone/go-confres/layering"
)

// Values is an open configuration tree as delivered by retrieval. Nested
// objects are map[string]any.
type Values map[string]any

// Clone returns a deep copy. A nil receiver yields nil.
func (v Values) Clone() Values {
	if v == nil {
		return nil
	}
	return layering.Clone(v)
}

// Lookup walks path and returns the value found there.
func (v Values) Lookup(path ...string) (any, bool) {
	if len(path) == 0 || v == nil {
		return nil, false
	}
	var current any = map[string]any(v)
	for _, segment := range path {
		node, ok := asMap(current)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Set assigns value at path, replacing any non-map node met on the way.
func (v Values) Set(value any, path ...string) {
	if len(path) == 0 || v == nil {
		return
	}
	node := map[string]any(v)
	for _, segment := range path[:len(path)-1] {
		next, ok := asMap(node[segment])
		if !ok {
			next = map[string]any{}
			node[segment] = next
		}
		node = next
	}
	node[path[len(path)-1]] = value
}

func asMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case Values:
		return map[string]any(typed), true
	default:
		return nil, false
	}
}

// FieldDescriptor describes a leaf path and its inferred type.
type FieldDescriptor struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

// Describe flattens v into sorted leaf descriptors.
func Describe(v Values) []FieldDescriptor {
	descriptors := describe(map[string]any(v), "")
	if descriptors == nil {
		return []FieldDescriptor{}
	}
	return descriptors
}

func describe(value any, prefix string) []FieldDescriptor {
	if value == nil {
		if prefix == "" {
			return nil
		}
		return []FieldDescriptor{{Path: prefix, Type: "nil"}}
	}

	if node, ok := asMap(value); ok {
		if len(node) == 0 {
			if prefix == "" {
				return nil
			}
			return []FieldDescriptor{{Path: prefix, Type: "object"}}
		}
		keys := make([]string, 0, len(node))
		for key := range node {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		var fields []FieldDescriptor
		for _, key := range keys {
			fields = append(fields, describe(node[key], joinPath(prefix, key))...)
		}
		return fields
	}

	if list, ok := value.([]any); ok {
		elementType := "any"
		if len(list) > 0 {
			elementType = typeName(list[0])
		}
		return []FieldDescriptor{{Path: prefix, Type: "[]" + elementType}}
	}
	return []FieldDescriptor{{Path: prefix, Type: typeName(value)}}
}

func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "nil"
	case string:
		return "string"
	case bool:
		return "bool"
	case float64, int, int64:
		return "number"
	default:
		if _, ok := asMap(value); ok {
			return "object"
		}
		return fmt.Sprintf("%T", value)
	}
}

func joinPath(prefix, segment string) string {
	if prefix == "" {
		return segment
	}
	return strings.Join([]string{prefix, segment}, ".")
}
