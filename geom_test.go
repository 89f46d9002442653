package formlayout_test

import (
	"testing"

	fl "github.com/lvillar/formlayout"
)

func TestRectIntersects(t *testing.T) {
	base := fl.Rect{X: 10, Y: 10, W: 100, H: 20}
	tests := []struct {
		name  string
		other fl.Rect
		want  bool
	}{
		{"same", base, true},
		{"inside", fl.Rect{X: 20, Y: 15, W: 10, H: 5}, true},
		{"partial", fl.Rect{X: 100, Y: 25, W: 50, H: 50}, true},
		{"touching right edge", fl.Rect{X: 110, Y: 10, W: 10, H: 20}, false},
		{"touching top edge", fl.Rect{X: 10, Y: 30, W: 100, H: 20}, false},
		{"below", fl.Rect{X: 10, Y: -20, W: 100, H: 20}, false},
		{"empty", fl.Rect{X: 20, Y: 15, W: 0, H: 5}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := base.Intersects(tt.other); got != tt.want {
				t.Errorf("Intersects(%s) = %v, want %v", tt.other, got, tt.want)
			}
			if got := tt.other.Intersects(base); got != tt.want {
				t.Errorf("Intersects is not symmetric for %s", tt.other)
			}
		})
	}
}

func TestRectAccessors(t *testing.T) {
	r := fl.Rect{X: 40, Y: 100, W: 515, H: 80}
	if r.Top() != 180 || r.Right() != 555 {
		t.Errorf("Top/Right = %v/%v", r.Top(), r.Right())
	}
	if r.TopLeft() != fl.Pt(40, 180) {
		t.Errorf("TopLeft = %v", r.TopLeft())
	}
	if !r.Contains(fl.Rect{X: 50, Y: 110, W: 10, H: 10}) {
		t.Error("expected containment")
	}
	if r.Contains(fl.Rect{X: 50, Y: 170, W: 10, H: 20}) {
		t.Error("unexpected containment")
	}
	if got := r.String(); got != "[40.00 100.00 515.00 80.00]" {
		t.Errorf("String() = %q", got)
	}
}
