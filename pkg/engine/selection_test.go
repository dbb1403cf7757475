package engine

import (
	"slices"
	"testing"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/geom"
)

func TestRegionSelection(t *testing.T) {
	s := newTestStore()
	inside := addComponent(t, s, geom.Pt(0, 0))
	overlapping := addComponent(t, s, geom.Pt(55, 0))
	outside := addComponent(t, s, geom.Pt(500, 500))
	mustDispatch(t, s, AddElement{Type: element.TypeRegion, Position: geom.Pt(0, 0)})

	region := geom.Region{From: geom.Pt(-10, -10), To: geom.Pt(60, 60)}

	tests := []struct {
		name         string
		intersection bool
		want         []string
	}{
		{"containment only", false, []string{inside}},
		{"with intersection", true, []string{inside, overlapping}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustDispatch(t, s, UpdateSelection{Type: ByRegion, Region: region, IncludeIntersection: tt.intersection, Mode: SelectDefault})
			got := s.Selection()
			slices.Sort(got)
			want := slices.Clone(tt.want)
			slices.Sort(want)
			if !slices.Equal(got, want) {
				t.Errorf("Selection() = %v, want %v", got, want)
			}
			if slices.Contains(got, outside) {
				t.Errorf("selected %s outside the region", outside)
			}
		})
	}
}

func TestRegionSelectionIgnoresUnselectable(t *testing.T) {
	s := newTestStore()
	slider := addSlider(t, s, geom.Pt(0, 0))
	comp := addComponent(t, s, geom.Pt(400, 0))
	drag(t, s, ref(slider, element.PortOutput), ref(comp, port(t, s, comp, element.Input, "A")), EndDefault)
	mustDispatch(t, s, AddLiveElement{Type: element.TypeAnnotation, Position: geom.Pt(10, 10), Dimensions: element.Dimensions{Width: 5, Height: 5}})

	everything := geom.Region{From: geom.Pt(-1000, -1000), To: geom.Pt(1000, 1000)}
	mustDispatch(t, s, UpdateSelection{Type: ByRegion, Region: everything, Mode: SelectDefault})

	got := s.Selection()
	slices.Sort(got)
	want := []string{slider, comp}
	slices.Sort(want)
	if !slices.Equal(got, want) {
		t.Errorf("Selection() = %v, want only nodes %v", got, want)
	}
}

func TestSelectionModes(t *testing.T) {
	tests := []struct {
		name    string
		initial []string
		staged  []string
		mode    SelectionMode
		want    []string
	}{
		{"default replaces", []string{"a", "b"}, []string{"c"}, SelectDefault, []string{"c"}},
		{"add appends new", []string{"a", "b"}, []string{"b", "c"}, SelectAdd, []string{"a", "b", "c"}},
		{"remove subtracts", []string{"a", "b", "c"}, []string{"b", "x"}, SelectRemove, []string{"a", "c"}},
		{"toggle flips", []string{"a", "b"}, []string{"b", "c"}, SelectToggle, []string{"a", "c"}},
		{"default to empty", []string{"a"}, nil, SelectDefault, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			mustDispatch(t, s,
				UpdateSelection{Type: ByID, IDs: tt.initial, Mode: SelectDefault},
				UpdateSelection{Type: ByID, IDs: tt.staged, Mode: tt.mode},
			)
			if got := s.Selection(); !slices.Equal(got, tt.want) {
				t.Errorf("Selection() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToggleIsInvolution(t *testing.T) {
	initials := [][]string{{}, {"a"}, {"a", "b"}, {"c", "a"}}
	staged := []string{"a", "b", "d"}

	for _, initial := range initials {
		s := newTestStore()
		mustDispatch(t, s,
			UpdateSelection{Type: ByID, IDs: initial, Mode: SelectDefault},
			UpdateSelection{Type: ByID, IDs: staged, Mode: SelectToggle},
			UpdateSelection{Type: ByID, IDs: staged, Mode: SelectToggle},
		)
		got := s.Selection()
		want := slices.Clone(initial)
		slices.Sort(got)
		slices.Sort(want)
		if !slices.Equal(got, want) {
			t.Errorf("toggle twice from %v = %v", initial, got)
		}
	}
}

func TestSelectionRejectsUnknownMode(t *testing.T) {
	s := newTestStore()
	if err := s.Dispatch(UpdateSelection{Type: ByID, IDs: []string{"a"}, Mode: "invert"}); err == nil {
		t.Error("expected error for unknown mode")
	}
	if err := s.Dispatch(UpdateSelection{Type: "lasso", Mode: SelectDefault}); err == nil {
		t.Error("expected error for unknown criterion")
	}
	if got := s.Selection(); len(got) != 0 {
		t.Errorf("Selection() = %v after rejected updates", got)
	}
}

func TestDeletePrunesSelection(t *testing.T) {
	s := newTestStore()
	a := addComponent(t, s, geom.Pt(0, 0))
	b := addComponent(t, s, geom.Pt(100, 0))
	mustDispatch(t, s,
		UpdateSelection{Type: ByID, IDs: []string{a, b}, Mode: SelectDefault},
		DeleteElements{IDs: []string{a}},
	)
	if got := s.Selection(); !slices.Equal(got, []string{b}) {
		t.Errorf("Selection() = %v, want [%s]", got, b)
	}
}
