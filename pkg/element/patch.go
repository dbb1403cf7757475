package element

import (
	"encoding/json"

	"github.com/matzehuels/flowpen/pkg/errors"
)

// Patch is a partial current state. Each top-level key replaces the field
// of the same JSON name; nested objects are not merged.
type Patch map[string]json.RawMessage

// PatchOf builds a Patch from Go values.
func PatchOf(fields map[string]any) (Patch, error) {
	p := make(Patch, len(fields))
	for k, v := range fields {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPatch, err, "encode field %q", k)
		}
		p[k] = raw
	}
	return p, nil
}

// Merge shallow-merges p into the current state of e. On error e is left
// unchanged.
func Merge(e Element, p Patch) error {
	if len(p) == 0 {
		return nil
	}
	raw, err := json.Marshal(e.current())
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode current state of %s", e.ID())
	}
	fields := make(map[string]json.RawMessage)
	if err := json.Unmarshal(raw, &fields); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "decode current state of %s", e.ID())
	}
	for k, v := range p {
		fields[k] = v
	}
	merged, err := json.Marshal(fields)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPatch, err, "encode merged state of %s", e.ID())
	}
	if err := e.replaceCurrent(merged); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPatch, err, "patch does not fit %s element %s", e.Type(), e.ID())
	}
	return nil
}
