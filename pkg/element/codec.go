package element

import (
	"encoding/json"

	"github.com/matzehuels/flowpen/pkg/errors"
)

// envelope is used to peek at the variant tag before decoding.
type envelope struct {
	ID       string `json:"id"`
	Template struct {
		Type Type `json:"type"`
	} `json:"template"`
}

// Unmarshal decodes a single element of any variant.
func Unmarshal(data []byte) (Element, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode element")
	}
	if env.ID == "" {
		return nil, errors.New(errors.ErrCodeInvalidManifest, "element has no id")
	}

	var e Element
	switch env.Template.Type {
	case TypeComponent:
		e = &Component{}
	case TypeParameter:
		e = &Parameter{}
	case TypeSlider:
		e = &Slider{}
	case TypePanel:
		e = &Panel{}
	case TypeRegion:
		e = &Region{}
	case TypeAnnotation:
		e = &Annotation{}
	case TypeWire:
		e = &Wire{}
	default:
		return nil, errors.New(errors.ErrCodeInvalidManifest, "element %s has unknown type %q", env.ID, env.Template.Type)
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode %s element %s", env.Template.Type, env.ID)
	}
	if node, ok := AsNode(e); ok {
		node.normalize()
	}
	return e, nil
}

// Map is an id-keyed element set that decodes polymorphically.
type Map map[string]Element

// UnmarshalJSON decodes {"id": element, ...}. Keys must match element ids.
func (m *Map) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode element map")
	}
	out := make(Map, len(raw))
	for key, msg := range raw {
		e, err := Unmarshal(msg)
		if err != nil {
			return err
		}
		if e.ID() != key {
			return errors.New(errors.ErrCodeInvalidManifest, "element keyed %q has id %q", key, e.ID())
		}
		out[key] = e
	}
	*m = out
	return nil
}

// Clone deep-copies every element.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for id, e := range m {
		out[id] = e.Clone()
	}
	return out
}

// Wires returns every wire in the map.
func (m Map) Wires() []*Wire {
	var out []*Wire
	for _, e := range m {
		if w, ok := AsWire(e); ok {
			out = append(out, w)
		}
	}
	return out
}
