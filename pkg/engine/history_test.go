package engine

import (
	"testing"

	"github.com/matzehuels/flowpen/pkg/element"
	"github.com/matzehuels/flowpen/pkg/geom"
)

func TestSnapshotEqual(t *testing.T) {
	base := func() snapshot {
		return snapshot{
			Elements: element.Map{
				"s1": element.NewSlider("s1", numberSlider, geom.Pt(0, 0)),
				"s2": element.NewSlider("s2", numberSlider, geom.Pt(100, 0)),
			},
			Selection: []string{"s1"},
		}
	}

	tests := []struct {
		name   string
		change func(*snapshot)
		want   bool
	}{
		{"identical", func(*snapshot) {}, true},
		{"selection cleared", func(s *snapshot) { s.Selection = nil }, false},
		{"selection changed", func(s *snapshot) { s.Selection = []string{"s2"} }, false},
		{"element added", func(s *snapshot) {
			s.Elements["s3"] = element.NewSlider("s3", numberSlider, geom.Pt(200, 0))
		}, false},
		{"element swapped", func(s *snapshot) {
			delete(s.Elements, "s2")
			s.Elements["s3"] = element.NewSlider("s3", numberSlider, geom.Pt(100, 0))
		}, false},
		{"element moved", func(s *snapshot) {
			p, _ := element.Position(s.Elements["s2"])
			*p = geom.Pt(150, 0)
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := base(), base()
			tt.change(&b)
			if got := a.equal(b); got != tt.want {
				t.Errorf("equal() = %v, want %v", got, tt.want)
			}
			if got := b.equal(a); got != tt.want {
				t.Errorf("reversed equal() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotEqualIgnoresSelectionNilness(t *testing.T) {
	a := snapshot{Elements: element.Map{}, Selection: nil}
	b := snapshot{Elements: element.Map{}, Selection: []string{}}
	if !a.equal(b) {
		t.Error("nil and empty selections compared unequal")
	}
}
