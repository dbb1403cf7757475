package graph

import (
	"encoding/json"
	"sort"

	"github.com/matzehuels/flowpen/pkg/element"
)

// Unset is the placeholder id and name of a manifest that was never restored.
const Unset = "unset"

// Well-known keys of [Manifest.Files].
const (
	FileJSON     = "json"
	FileSnapshot = "snapshot"
	FileSolution = "solution"
)

// Manifest is the canonical serialization of a graph.
type Manifest struct {
	ID     string            `json:"id"`
	Name   string            `json:"name"`
	Author Author            `json:"author"`
	Graph  Graph             `json:"graph"`
	Files  map[string]string `json:"files"`
}

// Author identifies the owner of a graph.
type Author struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// Graph is the element map plus the last solution the solver produced.
// The engine never interprets Solution.
type Graph struct {
	Elements element.Map    `json:"elements"`
	Solution json.RawMessage `json:"solution,omitempty"`
}

// New returns an empty manifest with the given id.
func New(id string) Manifest {
	return Manifest{
		ID:     id,
		Name:   Unset,
		Author: Author{Name: Unset, ID: "N/A"},
		Graph:  Graph{Elements: element.Map{}},
		Files:  map[string]string{},
	}
}

// ElementIDs returns the element ids in sorted order.
func (m Manifest) ElementIDs() []string {
	ids := make([]string, 0, len(m.Graph.Elements))
	for id := range m.Graph.Elements {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Counts tallies elements by type.
func (m Manifest) Counts() map[element.Type]int {
	out := make(map[element.Type]int)
	for _, e := range m.Graph.Elements {
		out[e.Type()]++
	}
	return out
}

// Clone deep-copies the manifest.
func (m Manifest) Clone() Manifest {
	out := m
	out.Graph.Elements = m.Graph.Elements.Clone()
	out.Graph.Solution = append(json.RawMessage(nil), m.Graph.Solution...)
	out.Files = make(map[string]string, len(m.Files))
	for k, v := range m.Files {
		out.Files[k] = v
	}
	return out
}
