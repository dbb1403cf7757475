// Package datatree implements the path-keyed value containers attached to
// node ports.
//
// A [Tree] maps branch paths to ordered lists of typed values. A path is a
// multi-dimensional branch address rendered as "{0;1;2}". Branch insertion
// order and value order are both meaningful: they define the order in which
// solved values are joined, so both survive JSON round trips.
package datatree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Value is a single typed leaf. Simple values use Value; structured
// payloads (geometry, records) use Data.
type Value struct {
	Type  string `json:"type"`
	Value any    `json:"value,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// Number returns a numeric leaf.
func Number(v float64) Value { return Value{Type: "number", Value: v} }

// Text returns a text leaf.
func Text(s string) Value { return Value{Type: "text", Value: s} }

// PathString renders branch indices as a path, e.g. PathString(0, 1) == "{0;1}".
func PathString(indices ...int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx)
	}
	return "{" + strings.Join(parts, ";") + "}"
}

// ParsePath parses a path produced by [PathString].
func ParsePath(path string) ([]int, error) {
	if !strings.HasPrefix(path, "{") || !strings.HasSuffix(path, "}") {
		return nil, fmt.Errorf("invalid path %q: missing braces", path)
	}
	inner := path[1 : len(path)-1]
	if inner == "" {
		return []int{}, nil
	}
	parts := strings.Split(inner, ";")
	out := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid path %q: %w", path, err)
		}
		out[i] = n
	}
	return out, nil
}

// Tree is an ordered mapping from branch path to values.
// The zero value is an empty tree ready to use.
type Tree struct {
	paths    []string
	branches map[string][]Value
}

// New returns an empty tree.
func New() *Tree { return &Tree{} }

// Single returns a tree holding one value on the root branch {0}.
func Single(v Value) *Tree {
	t := New()
	t.Append(PathString(0), v)
	return t
}

// Append adds values to the end of the branch at path, creating the branch
// after all existing ones if needed.
func (t *Tree) Append(path string, values ...Value) {
	if t.branches == nil {
		t.branches = make(map[string][]Value)
	}
	if _, ok := t.branches[path]; !ok {
		t.paths = append(t.paths, path)
	}
	t.branches[path] = append(t.branches[path], values...)
}

// Set replaces the values at path, keeping the branch's original position.
func (t *Tree) Set(path string, values []Value) {
	if t.branches == nil {
		t.branches = make(map[string][]Value)
	}
	if _, ok := t.branches[path]; !ok {
		t.paths = append(t.paths, path)
	}
	t.branches[path] = slices.Clone(values)
}

// Remove deletes the branch at path. It is a no-op for unknown paths.
func (t *Tree) Remove(path string) {
	if _, ok := t.branches[path]; !ok {
		return
	}
	delete(t.branches, path)
	t.paths = slices.DeleteFunc(t.paths, func(p string) bool { return p == path })
}

// Branch returns the values at path.
func (t *Tree) Branch(path string) ([]Value, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.branches[path]
	return v, ok
}

// Paths returns the branch paths in insertion order.
func (t *Tree) Paths() []string {
	if t == nil {
		return nil
	}
	return slices.Clone(t.paths)
}

// Len returns the number of branches.
func (t *Tree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.paths)
}

// Count returns the total number of values across all branches.
func (t *Tree) Count() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, v := range t.branches {
		n += len(v)
	}
	return n
}

// Flatten joins all branches into one list, in branch order.
func (t *Tree) Flatten() []Value {
	if t == nil {
		return nil
	}
	out := make([]Value, 0, t.Count())
	for _, p := range t.paths {
		out = append(out, t.branches[p]...)
	}
	return out
}

// Clone returns a copy of t. Leaf Value and Data payloads are shared.
func (t *Tree) Clone() *Tree {
	if t == nil {
		return nil
	}
	c := &Tree{paths: slices.Clone(t.paths)}
	if t.branches != nil {
		c.branches = make(map[string][]Value, len(t.branches))
		for p, v := range t.branches {
			c.branches[p] = slices.Clone(v)
		}
	}
	return c
}

// MarshalJSON encodes the tree as a JSON object whose keys appear in
// branch order.
func (t *Tree) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range t.paths {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(p)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		values := t.branches[p]
		if values == nil {
			values = []Value{}
		}
		data, err := json.Marshal(values)
		if err != nil {
			return nil, fmt.Errorf("branch %s: %w", p, err)
		}
		buf.Write(data)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, preserving key order as branch order.
func (t *Tree) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("data tree: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("data tree: expected object, got %v", tok)
	}

	*t = Tree{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("data tree: %w", err)
		}
		path, ok := tok.(string)
		if !ok {
			return fmt.Errorf("data tree: expected path key, got %v", tok)
		}
		var values []Value
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("data tree branch %s: %w", path, err)
		}
		t.Set(path, values)
	}
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("data tree: %w", err)
	}
	return nil
}
