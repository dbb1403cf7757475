package engine

import (
	"slices"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/errors"
)

func (a UpdateSelection) apply(r *reducer) error {
	var staged []string
	switch a.Type {
	case ByID:
		staged = slices.Clone(a.IDs)
	case ByRegion:
		staged = r.stageRegion(a)
	default:
		return errors.New(errors.ErrCodeInvalidAction, "unknown selection criterion %q", a.Type)
	}

	current := r.state.Selection
	var next []string

	switch a.Mode {
	case SelectDefault, "":
		next = staged
	case SelectAdd:
		next = slices.Clone(current)
		for _, id := range staged {
			if !slices.Contains(next, id) {
				next = append(next, id)
			}
		}
	case SelectRemove:
		next = slices.DeleteFunc(slices.Clone(current), func(id string) bool {
			return slices.Contains(staged, id)
		})
	case SelectToggle:
		next = slices.Clone(current)
		for _, id := range staged {
			if i := slices.Index(next, id); i >= 0 {
				next = slices.Delete(next, i, i+1)
			} else {
				next = append(next, id)
			}
		}
	default:
		return errors.New(errors.ErrCodeInvalidAction, "unknown selection mode %q", a.Mode)
	}

	if next == nil {
		next = []string{}
	}
	r.prepareMotion(next)
	r.state.Selection = next
	return nil
}

// stageRegion collects the selectable elements the drag rectangle covers.
// Full containment wins over intersection, so each element is staged once.
func (r *reducer) stageRegion(a UpdateSelection) []string {
	var staged []string
	for _, id := range sortedIDs(r.state.Elements) {
		e := r.state.Elements[id]
		if !element.IsSelectable(e.Type()) {
			continue
		}
		extents, ok := element.Extents(e)
		if !ok {
			continue
		}
		if a.Region.Contains(extents) {
			staged = append(staged, id)
			continue
		}
		if a.IncludeIntersection && a.Region.Intersects(extents) {
			staged = append(staged, id)
		}
	}
	return staged
}
