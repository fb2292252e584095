package platform

import "testing"

func TestRectEdges(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 50}
	if r.Right() != 110 || r.Bottom() != 70 {
		t.Fatalf("unexpected edges %d,%d", r.Right(), r.Bottom())
	}
	if r.Empty() || !(Rect{Width: 0, Height: 5}).Empty() {
		t.Fatalf("Empty() mismatch")
	}
}

func TestRectContainsIsHalfOpen(t *testing.T) {
	r := Rect{X: 0, Y: 0, Width: 10, Height: 10}
	cases := []struct {
		x, y int
		want bool
	}{
		{0, 0, true},
		{9, 9, true},
		{10, 5, false},
		{5, 10, false},
		{-1, 0, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.x, c.y); got != c.want {
			t.Fatalf("Contains(%d,%d) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}
