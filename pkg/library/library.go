package library

import (
	"encoding/json"
	"sort"
	"strings"
)

// Component is a node template.
type Component struct {
	GUID        string      `json:"guid"`
	Name        string      `json:"name"`
	Nickname    string      `json:"nickname"`
	Description string      `json:"description"`
	Icon        string      `json:"icon,omitempty"`
	LibraryName string      `json:"libraryName,omitempty"`
	Category    string      `json:"category,omitempty"`
	Subcategory string      `json:"subcategory,omitempty"`
	IsObsolete  bool        `json:"isObsolete"`
	IsVariable  bool        `json:"isVariable"`
	Inputs      []Parameter `json:"inputs"`
	Outputs     []Parameter `json:"outputs"`
}

// Parameter is a port definition on a template. Its position in the
// template's Inputs or Outputs slice is the port order.
type Parameter struct {
	Name        string `json:"name"`
	Nickname    string `json:"nickname"`
	Description string `json:"description"`
	Type        string `json:"type"`
	IsOptional  bool   `json:"isOptional"`
}

// Library is an immutable, GUID-indexed set of templates that preserves the
// order templates were loaded in.
type Library struct {
	components []Component
	byGUID     map[string]int
}

// New builds a Library. Later duplicates of a GUID replace earlier ones in
// place, so the first occurrence keeps its position.
func New(components []Component) *Library {
	l := &Library{byGUID: make(map[string]int, len(components))}
	for _, c := range components {
		if i, ok := l.byGUID[c.GUID]; ok {
			l.components[i] = c
			continue
		}
		l.byGUID[c.GUID] = len(l.components)
		l.components = append(l.components, c)
	}
	return l
}

// Lookup returns the template with the given GUID.
func (l *Library) Lookup(guid string) (Component, bool) {
	if l == nil {
		return Component{}, false
	}
	i, ok := l.byGUID[guid]
	if !ok {
		return Component{}, false
	}
	return l.components[i], true
}

// All returns every template in load order.
func (l *Library) All() []Component {
	if l == nil {
		return nil
	}
	return append([]Component(nil), l.components...)
}

// Len returns the number of templates.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.components)
}

// Search returns templates whose name, nickname or category contains query,
// ignoring case. Obsolete templates are excluded. An empty query matches
// everything that is not obsolete.
func (l *Library) Search(query string) []Component {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []Component
	for _, c := range l.All() {
		if c.IsObsolete {
			continue
		}
		if q == "" ||
			strings.Contains(strings.ToLower(c.Name), q) ||
			strings.Contains(strings.ToLower(c.Nickname), q) ||
			strings.Contains(strings.ToLower(c.Category), q) {
			out = append(out, c)
		}
	}
	return out
}

// Categories returns the distinct template categories, sorted.
func (l *Library) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range l.All() {
		if c.Category == "" || seen[c.Category] {
			continue
		}
		seen[c.Category] = true
		out = append(out, c.Category)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the library as a plain array of templates.
func (l *Library) MarshalJSON() ([]byte, error) {
	all := l.All()
	if all == nil {
		all = []Component{}
	}
	return json.Marshal(all)
}
