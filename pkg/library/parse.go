package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/matzehuels/flowpen/pkg/errors"
)

// installedComponents is the payload shape of the getInstalledComponents
// GraphQL query, with or without the top-level "data" envelope.
type installedComponents struct {
	Data struct {
		Components []Component `json:"getInstalledComponents"`
	} `json:"data"`
	Components []Component `json:"getInstalledComponents"`
	Errors     []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// Parse decodes a JSON template library. It accepts a plain array of
// components, a GraphQL response ({"data":{"getInstalledComponents":[...]}})
// or the bare query result ({"getInstalledComponents":[...]}).
func Parse(data []byte) (*Library, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidLibrary, "empty library document")
	}

	if trimmed[0] == '[' {
		var components []Component
		if err := json.Unmarshal(trimmed, &components); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidLibrary, err, "decode component array")
		}
		return validate(components)
	}

	var doc installedComponents
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidLibrary, err, "decode library response")
	}
	if len(doc.Errors) > 0 {
		return nil, errors.New(errors.ErrCodeInvalidLibrary, "graphql: %s", doc.Errors[0].Message)
	}
	components := doc.Data.Components
	if components == nil {
		components = doc.Components
	}
	if components == nil {
		return nil, errors.New(errors.ErrCodeInvalidLibrary, "document has no getInstalledComponents field")
	}
	return validate(components)
}

func validate(components []Component) (*Library, error) {
	for i, c := range components {
		if c.GUID == "" {
			return nil, errors.New(errors.ErrCodeInvalidLibrary, "component %d (%q) has no guid", i, c.Name)
		}
	}
	return New(components), nil
}

type hclLibraryFile struct {
	Components []*hclComponent `hcl:"component,block"`
}

type hclComponent struct {
	GUID        string          `hcl:"guid,label"`
	Name        string          `hcl:"name"`
	Nickname    string          `hcl:"nickname,optional"`
	Description string          `hcl:"description,optional"`
	Icon        string          `hcl:"icon,optional"`
	Library     string          `hcl:"library,optional"`
	Category    string          `hcl:"category,optional"`
	Subcategory string          `hcl:"subcategory,optional"`
	Obsolete    bool            `hcl:"obsolete,optional"`
	Variable    bool            `hcl:"variable,optional"`
	Inputs      []*hclParameter `hcl:"input,block"`
	Outputs     []*hclParameter `hcl:"output,block"`
}

type hclParameter struct {
	Name        string `hcl:"name,label"`
	Nickname    string `hcl:"nickname,optional"`
	Description string `hcl:"description,optional"`
	Type        string `hcl:"type,optional"`
	Optional    bool   `hcl:"optional,optional"`
}

// ParseHCL decodes an HCL template library. filename is used in diagnostics.
func ParseHCL(data []byte, filename string) (*Library, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, filename)
	if diags.HasErrors() {
		return nil, errors.Wrap(errors.ErrCodeInvalidLibrary, diags, "parse %s", filename)
	}

	var parsed hclLibraryFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return nil, errors.Wrap(errors.ErrCodeInvalidLibrary, diags, "decode %s", filename)
	}

	components := make([]Component, 0, len(parsed.Components))
	for _, c := range parsed.Components {
		components = append(components, Component{
			GUID:        c.GUID,
			Name:        c.Name,
			Nickname:    orDefault(c.Nickname, c.Name),
			Description: c.Description,
			Icon:        c.Icon,
			LibraryName: c.Library,
			Category:    c.Category,
			Subcategory: c.Subcategory,
			IsObsolete:  c.Obsolete,
			IsVariable:  c.Variable,
			Inputs:      convertParameters(c.Inputs),
			Outputs:     convertParameters(c.Outputs),
		})
	}
	return validate(components)
}

func convertParameters(in []*hclParameter) []Parameter {
	out := make([]Parameter, 0, len(in))
	for _, p := range in {
		out = append(out, Parameter{
			Name:        p.Name,
			Nickname:    orDefault(p.Nickname, p.Name),
			Description: p.Description,
			Type:        orDefault(p.Type, "Generic Data"),
			IsOptional:  p.Optional,
		})
	}
	return out
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Load reads a library file, choosing the HCL parser for .hcl files and the
// JSON parser otherwise.
func Load(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read library: %w", err)
	}
	if strings.EqualFold(filepath.Ext(path), ".hcl") {
		return ParseHCL(data, filepath.Base(path))
	}
	return Parse(data)
}
